//go:build govips && cgo

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/dunamismax/pixelpro/internal/domain"
)

type govipsCodec struct{}

func (c govipsCodec) Decode(ctx context.Context, data []byte) (image.Image, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	default:
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, "", fmt.Errorf("load image: %w", err)
	}
	defer ref.Close()

	if int64(ref.Width())*int64(ref.Height()) > MaxSourcePixels {
		return nil, "", fmt.Errorf("image is %dx%d, larger than %d pixels", ref.Width(), ref.Height(), MaxSourcePixels)
	}
	if err := ref.AutoRotate(); err != nil {
		return nil, "", fmt.Errorf("apply orientation: %w", err)
	}

	// Round-trip through lossless PNG to hand Go a plain image.Image.
	raw, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, "", fmt.Errorf("export decoded pixels: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decode exported pixels: %w", err)
	}

	return img, sourceFormatName(vips.DetermineImageType(data)), nil
}

func (c govipsCodec) Encode(ctx context.Context, img image.Image, format domain.Format, quality int) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var staged bytes.Buffer
	if err := png.Encode(&staged, img); err != nil {
		return nil, fmt.Errorf("stage pixels: %w", err)
	}

	ref, err := vips.NewImageFromBuffer(staged.Bytes())
	if err != nil {
		return nil, fmt.Errorf("load staged pixels: %w", err)
	}
	defer ref.Close()

	return exportGovipsImage(ref, format, quality)
}

func sourceFormatName(t vips.ImageType) string {
	switch t {
	case vips.ImageTypeJPEG:
		return "jpeg"
	case vips.ImageTypePNG:
		return "png"
	case vips.ImageTypeWEBP:
		return "webp"
	case vips.ImageTypeGIF:
		return "gif"
	case vips.ImageTypeTIFF:
		return "tiff"
	case vips.ImageTypeHEIF:
		return "heif"
	case vips.ImageTypeAVIF:
		return "avif"
	default:
		return "unknown"
	}
}

// exportGovipsImage never forwards quality to the PNG exporter: lossless
// output must not depend on it.
func exportGovipsImage(img *vips.ImageRef, format domain.Format, quality int) ([]byte, error) {
	if quality < domain.MinQuality || quality > domain.MaxQuality {
		quality = domain.DefaultQuality
	}

	switch format {
	case domain.FormatJPEG:
		params := vips.NewJpegExportParams()
		params.Quality = quality
		data, _, err := img.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case domain.FormatPNG:
		data, _, err := img.ExportPng(vips.NewPngExportParams())
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	case domain.FormatWebP:
		params := vips.NewWebpExportParams()
		params.Quality = quality
		data, _, err := img.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}
}
