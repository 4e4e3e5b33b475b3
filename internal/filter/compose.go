// Package filter composes adjustment parameters into an ordered chain of
// CSS filter functions and applies that chain to pixels.
//
// Filter functions do not commute, so a chain is always applied in the order
// it is composed: preset terms first, then brightness, contrast, saturation,
// hue rotation and blur, each present only when it differs from identity.
package filter

import (
	"fmt"
	"strings"

	"github.com/dunamismax/pixelpro/internal/domain"
)

type Func string

const (
	FuncGrayscale  Func = "grayscale"
	FuncSepia      Func = "sepia"
	FuncInvert     Func = "invert"
	FuncBrightness Func = "brightness"
	FuncContrast   Func = "contrast"
	FuncSaturate   Func = "saturate"
	FuncHueRotate  Func = "hue-rotate"
	FuncBlur       Func = "blur"
)

// Term is one filter function with its amount in the function's unit.
type Term struct {
	Func   Func
	Amount int
}

func (t Term) Unit() string {
	switch t.Func {
	case FuncHueRotate:
		return "deg"
	case FuncBlur:
		return "px"
	default:
		return "%"
	}
}

func (t Term) String() string {
	return fmt.Sprintf("%s(%d%s)", t.Func, t.Amount, t.Unit())
}

type Chain []Term

// String joins the terms with single spaces. An empty chain is "".
func (c Chain) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// CSS is the value for a canvas filter property: "none" when empty.
func (c Chain) CSS() string {
	if len(c) == 0 {
		return "none"
	}
	return c.String()
}

var presetTerms = map[domain.Preset]Chain{
	domain.PresetGrayscale: {{FuncGrayscale, 100}},
	domain.PresetSepia:     {{FuncSepia, 100}},
	domain.PresetInvert:    {{FuncInvert, 100}},
	domain.PresetVintage:   {{FuncSepia, 50}, {FuncContrast, 120}, {FuncBrightness, 110}},
	domain.PresetDramatic:  {{FuncContrast, 150}, {FuncBrightness, 90}, {FuncSaturate, 120}},
}

// PresetTerms returns a copy of the fixed sequence for p. Unknown presets and
// none have no terms.
func PresetTerms(p domain.Preset) Chain {
	terms := presetTerms[p]
	if len(terms) == 0 {
		return nil
	}
	out := make(Chain, len(terms))
	copy(out, terms)
	return out
}

func Compose(p domain.AdjustmentParameters) Chain {
	chain := PresetTerms(p.PresetOrNone())

	if p.Brightness != domain.IdentityBrightness {
		chain = append(chain, Term{FuncBrightness, p.Brightness})
	}
	if p.Contrast != domain.IdentityContrast {
		chain = append(chain, Term{FuncContrast, p.Contrast})
	}
	if p.Saturation != domain.IdentitySaturation {
		chain = append(chain, Term{FuncSaturate, p.Saturation})
	}
	if p.Hue != domain.IdentityHue {
		chain = append(chain, Term{FuncHueRotate, p.Hue})
	}
	if p.Blur > domain.IdentityBlur {
		chain = append(chain, Term{FuncBlur, p.Blur})
	}
	return chain
}
