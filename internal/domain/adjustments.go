package domain

import (
	"fmt"
	"strings"
)

type Adjustment string

const (
	AdjustBrightness Adjustment = "brightness"
	AdjustContrast   Adjustment = "contrast"
	AdjustSaturation Adjustment = "saturation"
	AdjustHue        Adjustment = "hue"
	AdjustBlur       Adjustment = "blur"
)

type Preset string

const (
	PresetNone      Preset = "none"
	PresetGrayscale Preset = "grayscale"
	PresetSepia     Preset = "sepia"
	PresetInvert    Preset = "invert"
	PresetVintage   Preset = "vintage"
	PresetDramatic  Preset = "dramatic"
)

// Presets lists every selectable preset in display order.
var Presets = []Preset{
	PresetNone,
	PresetGrayscale,
	PresetSepia,
	PresetInvert,
	PresetVintage,
	PresetDramatic,
}

const (
	IdentityBrightness = 100
	IdentityContrast   = 100
	IdentitySaturation = 100
	IdentityHue        = 0
	IdentityBlur       = 0
)

type AdjustmentParameters struct {
	Brightness int    `json:"brightness"`
	Contrast   int    `json:"contrast"`
	Saturation int    `json:"saturation"`
	Hue        int    `json:"hue"`
	Blur       int    `json:"blur"`
	Preset     Preset `json:"preset"`
}

func IdentityAdjustments() AdjustmentParameters {
	return AdjustmentParameters{
		Brightness: IdentityBrightness,
		Contrast:   IdentityContrast,
		Saturation: IdentitySaturation,
		Hue:        IdentityHue,
		Blur:       IdentityBlur,
		Preset:     PresetNone,
	}
}

// AutoEnhance applies the fixed one-click enhancement. Hue, blur and the
// preset keep their current values.
func (p AdjustmentParameters) AutoEnhance() AdjustmentParameters {
	p.Brightness = 110
	p.Contrast = 115
	p.Saturation = 110
	return p
}

func (p AdjustmentParameters) IsIdentity() bool {
	return p.Brightness == IdentityBrightness &&
		p.Contrast == IdentityContrast &&
		p.Saturation == IdentitySaturation &&
		p.Hue == IdentityHue &&
		p.Blur == IdentityBlur &&
		p.PresetOrNone() == PresetNone
}

// PresetOrNone treats the zero value as no preset.
func (p AdjustmentParameters) PresetOrNone() Preset {
	if p.Preset == "" {
		return PresetNone
	}
	return p.Preset
}

// With returns a copy with param set to value, clamped to the slider range.
func (p AdjustmentParameters) With(param Adjustment, value int) (AdjustmentParameters, error) {
	lo, hi, err := param.Range()
	if err != nil {
		return p, err
	}
	value = clampInt(value, lo, hi)

	switch param {
	case AdjustBrightness:
		p.Brightness = value
	case AdjustContrast:
		p.Contrast = value
	case AdjustSaturation:
		p.Saturation = value
	case AdjustHue:
		p.Hue = value
	case AdjustBlur:
		p.Blur = value
	}
	return p, nil
}

func (p AdjustmentParameters) Value(param Adjustment) (int, error) {
	switch param {
	case AdjustBrightness:
		return p.Brightness, nil
	case AdjustContrast:
		return p.Contrast, nil
	case AdjustSaturation:
		return p.Saturation, nil
	case AdjustHue:
		return p.Hue, nil
	case AdjustBlur:
		return p.Blur, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAdjustment, param)
	}
}

func (a Adjustment) Range() (lo, hi int, err error) {
	switch a {
	case AdjustBrightness, AdjustContrast, AdjustSaturation:
		return 0, 200, nil
	case AdjustHue:
		return 0, 360, nil
	case AdjustBlur:
		return 0, 10, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownAdjustment, a)
	}
}

func ParseAdjustment(name string) (Adjustment, error) {
	a := Adjustment(strings.ToLower(strings.TrimSpace(name)))
	if _, _, err := a.Range(); err != nil {
		return "", err
	}
	return a, nil
}

// ParsePreset accepts any known preset name; an empty name selects none.
func ParsePreset(name string) (Preset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return PresetNone, nil
	}
	for _, p := range Presets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
