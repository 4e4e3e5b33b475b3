package editor

import (
	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/filter"
	"github.com/dunamismax/pixelpro/internal/pipeline"
)

type Mode string

const (
	ModeUpload Mode = "upload"
	ModeEdit   Mode = "edit"
)

// State is the whole editing session. Reduce is the only way it changes.
type State struct {
	Mode        Mode
	Source      *pipeline.SourceImage
	Dimensions  domain.OutputDimensions
	AspectLock  bool
	Adjustments domain.AdjustmentParameters
	Export      domain.ExportSettings
	// Highlight is set while a drag hovers over the drop target.
	Highlight bool

	exportDefaults domain.ExportSettings
}

func NewState(exportDefaults domain.ExportSettings) State {
	exportDefaults = exportDefaults.Normalize()
	return State{
		Mode:           ModeUpload,
		AspectLock:     true,
		Adjustments:    domain.IdentityAdjustments(),
		Export:         exportDefaults,
		exportDefaults: exportDefaults,
	}
}

func (s State) SourceDimensions() domain.OutputDimensions {
	return s.Source.Dimensions()
}

func (s State) Filter() filter.Chain {
	return filter.Compose(s.Adjustments)
}

type Event interface {
	isEvent()
}

type FileLoaded struct{ Source *pipeline.SourceImage }

type AdjustmentSet struct {
	Param domain.Adjustment
	Value int
}

type PresetSelected struct{ Preset domain.Preset }

// WidthEdited is an edit of the width field. A non-nil Lock sets the aspect
// lock before the edit is applied.
type WidthEdited struct {
	Width int
	Lock  *bool
}

type HeightEdited struct {
	Height int
	Lock   *bool
}

type DimensionsSet struct {
	Width  int
	Height int
	Lock   bool
}

type AspectLockSet struct{ Locked bool }

type EnhancementsReset struct{}

type AutoEnhanced struct{}

type ImageReset struct{}

type SessionReset struct{}

type ExportSelected struct{ Settings domain.ExportSettings }

type DragHovered struct{ Over bool }

func (FileLoaded) isEvent()        {}
func (AdjustmentSet) isEvent()     {}
func (PresetSelected) isEvent()    {}
func (WidthEdited) isEvent()       {}
func (HeightEdited) isEvent()      {}
func (DimensionsSet) isEvent()     {}
func (AspectLockSet) isEvent()     {}
func (EnhancementsReset) isEvent() {}
func (AutoEnhanced) isEvent()      {}
func (ImageReset) isEvent()        {}
func (SessionReset) isEvent()      {}
func (ExportSelected) isEvent()    {}
func (DragHovered) isEvent()       {}

// Reduce returns the state after e. It never modifies s and has no side
// effects; events carrying invalid values leave the state unchanged.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case FileLoaded:
		if e.Source == nil {
			return s
		}
		if s.Mode != ModeEdit {
			s.Export = s.exportDefaults
		}
		s.Mode = ModeEdit
		s.Source = e.Source
		s.Dimensions = e.Source.Dimensions()
		s.Adjustments = domain.IdentityAdjustments()
		s.Highlight = false
	case AdjustmentSet:
		if next, err := s.Adjustments.With(e.Param, e.Value); err == nil {
			s.Adjustments = next
		}
	case PresetSelected:
		if _, err := domain.ParsePreset(string(e.Preset)); err == nil {
			s.Adjustments.Preset = e.Preset
			if e.Preset == "" {
				s.Adjustments.Preset = domain.PresetNone
			}
		}
	case WidthEdited:
		if e.Lock != nil {
			s.AspectLock = *e.Lock
		}
		s.Dimensions = s.Dimensions.EditWidth(e.Width, s.AspectLock, s.SourceDimensions())
	case HeightEdited:
		if e.Lock != nil {
			s.AspectLock = *e.Lock
		}
		s.Dimensions = s.Dimensions.EditHeight(e.Height, s.AspectLock, s.SourceDimensions())
	case DimensionsSet:
		s.AspectLock = e.Lock
		s.Dimensions = setDimensions(s.Dimensions, e, s.SourceDimensions())
	case AspectLockSet:
		s.AspectLock = e.Locked
	case EnhancementsReset:
		s.Adjustments = domain.IdentityAdjustments()
	case AutoEnhanced:
		s.Adjustments = s.Adjustments.AutoEnhance()
	case ImageReset:
		if s.Source == nil {
			return s
		}
		s.Dimensions = s.Source.Dimensions()
		s.Adjustments = domain.IdentityAdjustments()
	case SessionReset:
		return NewState(s.exportDefaults)
	case ExportSelected:
		s.Export = e.Settings.Normalize()
	case DragHovered:
		s.Highlight = e.Over
	}
	return s
}

// setDimensions resolves a combined edit. With the lock on, the axis that
// changed drives the other one; width wins when both changed. Without a
// source there is no ratio and both axes are taken as given.
func setDimensions(cur domain.OutputDimensions, e DimensionsSet, source domain.OutputDimensions) domain.OutputDimensions {
	w := domain.NormalizeDimension(e.Width)
	h := domain.NormalizeDimension(e.Height)

	switch {
	case !e.Lock || source.Empty():
		return domain.OutputDimensions{Width: w, Height: h}
	case w != cur.Width:
		return cur.EditWidth(w, true, source)
	case h != cur.Height:
		return cur.EditHeight(h, true, source)
	default:
		return cur
	}
}

func renderInputsChanged(prev, next State) bool {
	return prev.Source != next.Source ||
		prev.Dimensions != next.Dimensions ||
		prev.Adjustments != next.Adjustments
}
