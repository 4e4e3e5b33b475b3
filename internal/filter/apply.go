package filter

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Apply runs every term over img in chain order and returns the result. The
// input is never modified; an empty chain returns img itself.
//
// Color terms follow the Filter Effects shorthand definitions evaluated in
// sRGB on straight (non-premultiplied) channels, clamping after each term.
// Alpha is left untouched. Blur is a Gaussian with the term amount as its
// standard deviation in pixels.
func (c Chain) Apply(img *image.NRGBA) *image.NRGBA {
	if len(c) == 0 || img.Bounds().Empty() {
		return img
	}

	out := img
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

func (t Term) Apply(img *image.NRGBA) *image.NRGBA {
	if t.Func == FuncBlur {
		if t.Amount <= 0 {
			return imaging.Clone(img)
		}
		return imaging.Blur(img, float64(t.Amount))
	}
	return imaging.AdjustFunc(img, t.pixelFunc())
}

func (t Term) pixelFunc() func(color.NRGBA) color.NRGBA {
	amount := float64(t.Amount) / 100

	switch t.Func {
	case FuncGrayscale:
		return grayscaleMatrix(clamp01(amount)).apply
	case FuncSepia:
		return sepiaMatrix(clamp01(amount)).apply
	case FuncSaturate:
		return saturateMatrix(math.Max(0, amount)).apply
	case FuncHueRotate:
		return hueRotateMatrix(float64(t.Amount)).apply
	case FuncInvert:
		a := clamp01(amount)
		return transfer{slope: 1 - 2*a, intercept: a}.apply
	case FuncBrightness:
		return transfer{slope: math.Max(0, amount)}.apply
	case FuncContrast:
		a := math.Max(0, amount)
		return transfer{slope: a, intercept: 0.5 - 0.5*a}.apply
	default:
		return func(c color.NRGBA) color.NRGBA { return c }
	}
}

// colorMatrix is the RGB part of an feColorMatrix; the alpha row and the
// offset column are identity for every shorthand that uses it.
type colorMatrix [3][3]float64

func (m colorMatrix) apply(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	return color.NRGBA{
		R: toByte(m[0][0]*r + m[0][1]*g + m[0][2]*b),
		G: toByte(m[1][0]*r + m[1][1]*g + m[1][2]*b),
		B: toByte(m[2][0]*r + m[2][1]*g + m[2][2]*b),
		A: c.A,
	}
}

// transfer is a linear feComponentTransfer applied to R, G and B.
type transfer struct {
	slope     float64
	intercept float64
}

func (f transfer) apply(c color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: toByte(f.slope*float64(c.R)/255 + f.intercept),
		G: toByte(f.slope*float64(c.G)/255 + f.intercept),
		B: toByte(f.slope*float64(c.B)/255 + f.intercept),
		A: c.A,
	}
}

func grayscaleMatrix(a float64) colorMatrix {
	k := 1 - a
	return colorMatrix{
		{0.2126 + 0.7874*k, 0.7152 - 0.7152*k, 0.0722 - 0.0722*k},
		{0.2126 - 0.2126*k, 0.7152 + 0.2848*k, 0.0722 - 0.0722*k},
		{0.2126 - 0.2126*k, 0.7152 - 0.7152*k, 0.0722 + 0.9278*k},
	}
}

func sepiaMatrix(a float64) colorMatrix {
	k := 1 - a
	return colorMatrix{
		{0.393 + 0.607*k, 0.769 - 0.769*k, 0.189 - 0.189*k},
		{0.349 - 0.349*k, 0.686 + 0.314*k, 0.168 - 0.168*k},
		{0.272 - 0.272*k, 0.534 - 0.534*k, 0.131 + 0.869*k},
	}
}

func saturateMatrix(s float64) colorMatrix {
	return colorMatrix{
		{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
	}
}

func hueRotateMatrix(deg float64) colorMatrix {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return colorMatrix{
		{0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928},
		{0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283},
		{0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072},
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
