package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDimension(t *testing.T) {
	tests := map[string]int{
		"":        0,
		"   ":     0,
		"abc":     0,
		"640":     640,
		" 480 ":   480,
		"12.9":    12,
		"-5":      0,
		"NaN":     0,
		"1e3":     1000,
		"Inf":     MaxDimension,
		"9999999": MaxDimension,
	}

	for raw, want := range tests {
		assert.Equalf(t, want, ParseDimension(raw), "ParseDimension(%q)", raw)
	}
}

func TestEditWidthLockedUsesSourceRatio(t *testing.T) {
	source := OutputDimensions{Width: 1920, Height: 1080}
	d := source

	d = d.EditWidth(640, true, source)
	assert.Equal(t, OutputDimensions{Width: 640, Height: 360}, d)

	d = d.EditWidth(333, true, source)
	assert.Equal(t, OutputDimensions{Width: 333, Height: 187}, d)
}

func TestEditHeightLockedUsesSourceRatio(t *testing.T) {
	source := OutputDimensions{Width: 300, Height: 200}
	d := source.EditHeight(101, true, source)
	// 101 * 300 / 200 = 151.5 rounds up.
	assert.Equal(t, OutputDimensions{Width: 152, Height: 101}, d)
}

func TestEditUnlockedAxesAreIndependent(t *testing.T) {
	source := OutputDimensions{Width: 300, Height: 200}
	d := source.EditWidth(50, false, source)
	assert.Equal(t, OutputDimensions{Width: 50, Height: 200}, d)

	d = d.EditHeight(7, false, source)
	assert.Equal(t, OutputDimensions{Width: 50, Height: 7}, d)
}

func TestEditWithoutSourceIgnoresLock(t *testing.T) {
	d := OutputDimensions{}.EditWidth(120, true, OutputDimensions{})
	assert.Equal(t, OutputDimensions{Width: 120, Height: 0}, d)
}

func TestLockedWidthEditsDoNotDrift(t *testing.T) {
	source := OutputDimensions{Width: 1366, Height: 769}
	d := source

	for w := 1; w <= 2000; w += 7 {
		d = d.EditWidth(w, true, source)
		want := int(math.Floor(float64(w)*float64(source.Height)/float64(source.Width) + 0.5))
		if d.Height != want {
			t.Fatalf("width %d: expected height %d, got %d", w, want, d.Height)
		}
		// Editing the derived height back and forth must not move the width
		// ratio anchor.
		d = d.EditHeight(d.Height, false, source)
	}

	d = d.EditWidth(1366, true, source)
	assert.Equal(t, source, d)
}

func TestLockedHeightHalfRoundsUp(t *testing.T) {
	source := OutputDimensions{Width: 4, Height: 2}
	assert.Equal(t, 1, LockedHeight(1, source))
	assert.Equal(t, 2, LockedHeight(3, source))
	assert.Equal(t, 3, LockedWidth(1, OutputDimensions{Width: 5, Height: 2}))
	assert.Equal(t, 0, LockedWidth(10, OutputDimensions{}))
}
