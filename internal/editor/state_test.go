package editor

import (
	"testing"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateStartsInUploadMode(t *testing.T) {
	s := NewState(domain.ExportSettings{})

	assert.Equal(t, ModeUpload, s.Mode)
	assert.Nil(t, s.Source)
	assert.True(t, s.AspectLock)
	assert.True(t, s.Adjustments.IsIdentity())
	assert.Equal(t, domain.DefaultExportSettings(), s.Export)
	assert.Equal(t, "none", s.Filter().CSS())
}

func TestReduceFileLoadedEntersEditMode(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, AdjustmentSet{Param: domain.AdjustBrightness, Value: 150})
	s = Reduce(s, DragHovered{Over: true})

	src := &pipeline.SourceImage{Width: 800, Height: 600}
	s = Reduce(s, FileLoaded{Source: src})

	assert.Equal(t, ModeEdit, s.Mode)
	assert.Same(t, src, s.Source)
	assert.Equal(t, domain.OutputDimensions{Width: 800, Height: 600}, s.Dimensions)
	assert.True(t, s.Adjustments.IsIdentity())
	assert.False(t, s.Highlight)
}

func TestReduceFileLoadedNilSourceIsIgnored(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	assert.Equal(t, s, Reduce(s, FileLoaded{}))
}

func TestReduceExportSettingsResetOnEditorEntryOnly(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, ExportSelected{Settings: domain.ExportSettings{Format: domain.FormatPNG, Quality: 40}})

	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 10, Height: 10}})
	assert.Equal(t, domain.DefaultExportSettings(), s.Export)

	s = Reduce(s, ExportSelected{Settings: domain.ExportSettings{Format: domain.FormatWebP, Quality: 70}})
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 20, Height: 20}})
	assert.Equal(t, domain.ExportSettings{Format: domain.FormatWebP, Quality: 70}, s.Export)
}

func TestReduceNeverModifiesInput(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 100, Height: 50}})
	before := s

	_ = Reduce(s, AdjustmentSet{Param: domain.AdjustHue, Value: 90})
	_ = Reduce(s, WidthEdited{Width: 10})
	_ = Reduce(s, SessionReset{})

	assert.Equal(t, before, s)
}

func TestReduceAdjustmentsClampToRange(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())

	s = Reduce(s, AdjustmentSet{Param: domain.AdjustBrightness, Value: 500})
	s = Reduce(s, AdjustmentSet{Param: domain.AdjustBlur, Value: -3})
	s = Reduce(s, AdjustmentSet{Param: domain.Adjustment("gamma"), Value: 10})

	assert.Equal(t, 200, s.Adjustments.Brightness)
	assert.Equal(t, 0, s.Adjustments.Blur)
}

func TestReducePresetSelection(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())

	s = Reduce(s, PresetSelected{Preset: domain.PresetVintage})
	assert.Equal(t, domain.PresetVintage, s.Adjustments.Preset)

	s = Reduce(s, PresetSelected{Preset: domain.Preset("polaroid")})
	assert.Equal(t, domain.PresetVintage, s.Adjustments.Preset)

	s = Reduce(s, PresetSelected{Preset: ""})
	assert.Equal(t, domain.PresetNone, s.Adjustments.Preset)
}

func TestReduceLockedEditsDeriveFromSource(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 1920, Height: 1080}})

	s = Reduce(s, WidthEdited{Width: 1000})
	assert.Equal(t, domain.OutputDimensions{Width: 1000, Height: 563}, s.Dimensions)

	s = Reduce(s, HeightEdited{Height: 540})
	assert.Equal(t, domain.OutputDimensions{Width: 960, Height: 540}, s.Dimensions)

	for i := 0; i < 50; i++ {
		s = Reduce(s, WidthEdited{Width: 1000})
		s = Reduce(s, HeightEdited{Height: s.Dimensions.Height})
	}
	assert.Equal(t, domain.OutputDimensions{Width: 1000, Height: 563}, Reduce(s, WidthEdited{Width: 1000}).Dimensions)
}

func TestReduceUnlockedEditsAreIndependent(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 400, Height: 300}})
	s = Reduce(s, AspectLockSet{Locked: false})

	s = Reduce(s, WidthEdited{Width: 50})
	assert.Equal(t, domain.OutputDimensions{Width: 50, Height: 300}, s.Dimensions)
	s = Reduce(s, HeightEdited{Height: 7})
	assert.Equal(t, domain.OutputDimensions{Width: 50, Height: 7}, s.Dimensions)
}

func TestReduceDimensionsSet(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 200, Height: 100}})

	tests := []struct {
		name string
		in   DimensionsSet
		want domain.OutputDimensions
	}{
		{name: "unlocked", in: DimensionsSet{Width: 31, Height: 77}, want: domain.OutputDimensions{Width: 31, Height: 77}},
		{name: "locked width changed", in: DimensionsSet{Width: 100, Height: 100, Lock: true}, want: domain.OutputDimensions{Width: 100, Height: 50}},
		{name: "locked height changed", in: DimensionsSet{Width: 200, Height: 30, Lock: true}, want: domain.OutputDimensions{Width: 60, Height: 30}},
		{name: "locked both changed width wins", in: DimensionsSet{Width: 50, Height: 99, Lock: true}, want: domain.OutputDimensions{Width: 50, Height: 25}},
		{name: "locked unchanged", in: DimensionsSet{Width: 200, Height: 100, Lock: true}, want: domain.OutputDimensions{Width: 200, Height: 100}},
		{name: "negative", in: DimensionsSet{Width: -4, Height: -1}, want: domain.OutputDimensions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(s, tt.in)
			assert.Equal(t, tt.want, got.Dimensions)
			assert.Equal(t, tt.in.Lock, got.AspectLock)
		})
	}
}

func TestReduceDimensionsSetWithoutSourceKeepsBothAxes(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())

	got := Reduce(s, DimensionsSet{Width: 100, Height: 50, Lock: true})
	assert.Equal(t, domain.OutputDimensions{Width: 100, Height: 50}, got.Dimensions)
	assert.True(t, got.AspectLock)
}

func TestReduceAxisEditSetsLockFirst(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 200, Height: 100}})

	unlocked, locked := false, true
	s = Reduce(s, WidthEdited{Width: 50, Lock: &unlocked})
	assert.Equal(t, domain.OutputDimensions{Width: 50, Height: 100}, s.Dimensions)
	assert.False(t, s.AspectLock)

	s = Reduce(s, HeightEdited{Height: 40, Lock: &locked})
	assert.Equal(t, domain.OutputDimensions{Width: 80, Height: 40}, s.Dimensions)
	assert.True(t, s.AspectLock)

	s = Reduce(s, WidthEdited{Width: 20})
	assert.Equal(t, domain.OutputDimensions{Width: 20, Height: 10}, s.Dimensions)
	assert.True(t, s.AspectLock)
}

func TestReduceResets(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 64, Height: 32}})
	s = Reduce(s, WidthEdited{Width: 16})
	s = Reduce(s, PresetSelected{Preset: domain.PresetSepia})
	s = Reduce(s, AdjustmentSet{Param: domain.AdjustHue, Value: 45})

	enhanced := Reduce(s, EnhancementsReset{})
	assert.True(t, enhanced.Adjustments.IsIdentity())
	assert.Equal(t, domain.OutputDimensions{Width: 16, Height: 8}, enhanced.Dimensions)

	restored := Reduce(s, ImageReset{})
	assert.True(t, restored.Adjustments.IsIdentity())
	assert.Equal(t, domain.OutputDimensions{Width: 64, Height: 32}, restored.Dimensions)
	assert.Same(t, s.Source, restored.Source)

	cleared := Reduce(s, SessionReset{})
	assert.Equal(t, NewState(domain.DefaultExportSettings()), cleared)
}

func TestReduceImageResetWithoutImage(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, AdjustmentSet{Param: domain.AdjustContrast, Value: 20})

	assert.Equal(t, s, Reduce(s, ImageReset{}))
}

func TestReduceAutoEnhance(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	s = Reduce(s, AdjustmentSet{Param: domain.AdjustHue, Value: 30})
	s = Reduce(s, AutoEnhanced{})

	assert.Equal(t, 110, s.Adjustments.Brightness)
	assert.Equal(t, 115, s.Adjustments.Contrast)
	assert.Equal(t, 110, s.Adjustments.Saturation)
	assert.Equal(t, 30, s.Adjustments.Hue)
	assert.Equal(t, "brightness(110%) contrast(115%) saturate(110%) hue-rotate(30deg)", s.Filter().String())
}

func TestRenderInputsChanged(t *testing.T) {
	s := NewState(domain.DefaultExportSettings())
	require.False(t, renderInputsChanged(s, Reduce(s, DragHovered{Over: true})))
	require.False(t, renderInputsChanged(s, Reduce(s, ExportSelected{Settings: domain.ExportSettings{Format: domain.FormatPNG}})))
	require.True(t, renderInputsChanged(s, Reduce(s, AdjustmentSet{Param: domain.AdjustBlur, Value: 2})))
	require.True(t, renderInputsChanged(s, Reduce(s, FileLoaded{Source: &pipeline.SourceImage{Width: 1, Height: 1}})))
}
