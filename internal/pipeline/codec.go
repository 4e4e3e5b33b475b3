package pipeline

import (
	"context"
	"image"

	"github.com/dunamismax/pixelpro/internal/domain"
)

// Codec turns file bytes into pixels and pixels into file bytes. The build
// selects the implementation: pure Go by default, libvips with the govips tag.
type Codec interface {
	Decode(ctx context.Context, data []byte) (img image.Image, format string, err error)
	Encode(ctx context.Context, img image.Image, format domain.Format, quality int) ([]byte, error)
}

// MaxSourcePixels bounds the decoded area so a small compressed file cannot
// expand into an unbounded allocation.
const MaxSourcePixels = 16384 * 16384

func normalizeSourceFormat(format string) string {
	switch format {
	case "jpg":
		return "jpeg"
	case "":
		return "unknown"
	default:
		return format
	}
}
