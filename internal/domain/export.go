package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductName prefixes every exported filename.
const ProductName = "pixelpro"

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

var Formats = []Format{FormatJPEG, FormatPNG, FormatWebP}

const (
	DefaultQuality = 90
	MinQuality     = 1
	MaxQuality     = 100
)

type ExportSettings struct {
	Format  Format `json:"format"`
	Quality int    `json:"quality"`
}

func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Format:  FormatJPEG,
		Quality: DefaultQuality,
	}
}

// Normalize fills an empty format with jpeg and clamps quality into 1-100.
// A zero quality selects the default.
func (s ExportSettings) Normalize() ExportSettings {
	if s.Format == "" {
		s.Format = FormatJPEG
	}
	if s.Quality == 0 {
		s.Quality = DefaultQuality
	}
	s.Quality = clampInt(s.Quality, MinQuality, MaxQuality)
	return s
}

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

func (f Format) MediaType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Lossy reports whether quality has any effect on the encoded bytes.
func (f Format) Lossy() bool {
	return f != FormatPNG
}

// ExportFilename builds "<product>-<epoch-millis>.<ext>".
func ExportFilename(format Format, at time.Time) string {
	return fmt.Sprintf("%s-%d.%s", ProductName, at.UnixMilli(), format.Extension())
}
