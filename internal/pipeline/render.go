package pipeline

import (
	"image"
	"image/draw"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/filter"
	xdraw "golang.org/x/image/draw"
)

// MaxSurfacePixels is the largest area a surface is allocated for. Larger
// requests yield a surface without pixels, which cannot be exported.
const MaxSurfacePixels = 16384 * 16384

// Surface is the rendered output. It is derived state: Render rebuilds it
// from the source on every change.
type Surface struct {
	// Loaded is false when no source image exists.
	Loaded bool
	Width  int
	Height int
	Filter filter.Chain
	// Pixels is nil when the requested size has no area or is too large to
	// allocate.
	Pixels *image.NRGBA
}

// Render draws src at dims and applies the filter chain composed from
// params. It reads src and never writes to it.
func Render(src *SourceImage, dims domain.OutputDimensions, params domain.AdjustmentParameters) Surface {
	chain := filter.Compose(params)
	if src == nil || src.Pixels == nil {
		return Surface{Filter: chain}
	}

	out := Surface{
		Loaded: true,
		Width:  dims.Width,
		Height: dims.Height,
		Filter: chain,
	}
	if dims.Empty() || int64(dims.Width)*int64(dims.Height) > MaxSurfacePixels {
		return out
	}

	out.Pixels = chain.Apply(drawScaled(src.Pixels, dims))
	return out
}

func drawScaled(src *image.NRGBA, dims domain.OutputDimensions) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	srcBounds := src.Bounds()

	if srcBounds.Dx() == dims.Width && srcBounds.Dy() == dims.Height {
		draw.Draw(dst, dst.Bounds(), src, srcBounds.Min, draw.Src)
		return dst
	}

	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, srcBounds, xdraw.Src, nil)
	return dst
}
