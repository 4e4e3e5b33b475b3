package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIdentityIsPixelIdentical(t *testing.T) {
	src := &SourceImage{Width: 40, Height: 30, Pixels: testImage(40, 30)}

	surface := Render(src, src.Dimensions(), domain.IdentityAdjustments())
	require.True(t, surface.Loaded)
	require.NotNil(t, surface.Pixels)
	assert.Equal(t, "none", surface.Filter.CSS())
	assert.Equal(t, src.Pixels.Pix, surface.Pixels.Pix)
	assert.NotSame(t, src.Pixels, surface.Pixels)
}

func TestRenderIdentityMatchesUnfilteredDrawAtOutputSize(t *testing.T) {
	src := &SourceImage{Width: 40, Height: 30, Pixels: testImage(40, 30)}
	dims := domain.OutputDimensions{Width: 20, Height: 15}

	surface := Render(src, dims, domain.IdentityAdjustments())
	unfiltered := drawScaled(src.Pixels, dims)

	assert.Equal(t, unfiltered.Pix, surface.Pixels.Pix)
}

func TestRenderResizesToExactDimensions(t *testing.T) {
	src := &SourceImage{Width: 64, Height: 48, Pixels: testImage(64, 48)}

	for _, dims := range []domain.OutputDimensions{{Width: 32, Height: 24}, {Width: 100, Height: 7}, {Width: 1, Height: 1}} {
		surface := Render(src, dims, domain.IdentityAdjustments())
		require.NotNil(t, surface.Pixels)
		assert.Equal(t, image.Rect(0, 0, dims.Width, dims.Height), surface.Pixels.Bounds())
		assert.Equal(t, dims.Width, surface.Width)
		assert.Equal(t, dims.Height, surface.Height)
	}
}

func TestRenderNeverWritesSource(t *testing.T) {
	src := &SourceImage{Width: 16, Height: 16, Pixels: testImage(16, 16)}
	before := append([]uint8(nil), src.Pixels.Pix...)

	params := domain.IdentityAdjustments()
	params.Preset = domain.PresetInvert
	params.Blur = 3
	_ = Render(src, src.Dimensions(), params)
	_ = Render(src, domain.OutputDimensions{Width: 8, Height: 8}, params)

	assert.Equal(t, before, src.Pixels.Pix)
}

func TestRenderIsIdempotentFromSource(t *testing.T) {
	src := &SourceImage{Width: 16, Height: 16, Pixels: testImage(16, 16)}
	params := domain.IdentityAdjustments()
	params.Brightness = 140
	params.Hue = 45

	first := Render(src, src.Dimensions(), params)
	second := Render(src, src.Dimensions(), params)
	assert.Equal(t, first.Pixels.Pix, second.Pixels.Pix)
}

func TestRenderAppliesComposedFilter(t *testing.T) {
	src := &SourceImage{Width: 2, Height: 2, Pixels: image.NewNRGBA(image.Rect(0, 0, 2, 2))}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Pixels.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	params := domain.IdentityAdjustments()
	params.Preset = domain.PresetInvert

	surface := Render(src, src.Dimensions(), params)
	assert.Equal(t, "invert(100%)", surface.Filter.String())
	assert.Equal(t, color.NRGBA{R: 245, G: 235, B: 225, A: 255}, surface.Pixels.NRGBAAt(0, 0))
}

func TestRenderWithoutSource(t *testing.T) {
	surface := Render(nil, domain.OutputDimensions{Width: 10, Height: 10}, domain.IdentityAdjustments())
	assert.False(t, surface.Loaded)
	assert.Nil(t, surface.Pixels)
}

func TestRenderEmptyOrOversizedDimensions(t *testing.T) {
	src := &SourceImage{Width: 4, Height: 4, Pixels: testImage(4, 4)}

	surface := Render(src, domain.OutputDimensions{Width: 0, Height: 4}, domain.IdentityAdjustments())
	assert.True(t, surface.Loaded)
	assert.Nil(t, surface.Pixels)

	surface = Render(src, domain.OutputDimensions{Width: domain.MaxDimension, Height: domain.MaxDimension}, domain.IdentityAdjustments())
	assert.True(t, surface.Loaded)
	assert.Nil(t, surface.Pixels)
}
