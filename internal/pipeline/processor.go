package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelpro/internal/domain"
)

// MaxUploadBytes is the ingestion ceiling (50 MiB).
const MaxUploadBytes int64 = 50 * 1024 * 1024

// File is a user-selected file as a host delivers it: from a picker, a drop
// event or a multipart upload.
type File interface {
	Name() string
	MediaType() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// SourceImage is the decoded original. Pixels is never written after
// Ingest returns it.
type SourceImage struct {
	Name   string
	Format string
	Width  int
	Height int
	Bytes  int64
	Pixels *image.NRGBA
}

func (s *SourceImage) Dimensions() domain.OutputDimensions {
	if s == nil {
		return domain.OutputDimensions{}
	}
	return domain.OutputDimensions{Width: s.Width, Height: s.Height}
}

// Download is an encoded export ready to be saved by the host.
type Download struct {
	Filename  string
	MediaType string
	Format    domain.Format
	Quality   int
	Width     int
	Height    int
	Data      []byte
}

type Processor struct {
	codec Codec
	now   func() time.Time
}

type ProcessorOption func(*Processor)

// WithClock sets the clock used to name exported files.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// DefaultCodec returns the codec selected at build time.
func DefaultCodec() (Codec, error) {
	return newCodec()
}

// NewProcessor builds a Processor on DefaultCodec.
func NewProcessor(opts ...ProcessorOption) (*Processor, error) {
	codec, err := DefaultCodec()
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}
	p := NewProcessorWithCodec(codec, time.Now)
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func NewProcessorWithCodec(codec Codec, now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{codec: codec, now: now}
}

// Ingest validates and decodes f. Type and declared size are checked before
// any byte is read; the size is checked again while reading.
func (p *Processor) Ingest(ctx context.Context, f File) (*SourceImage, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no file", domain.ErrUnsupportedType)
	}
	mediaType := strings.ToLower(strings.TrimSpace(f.MediaType()))
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, f.MediaType())
	}
	if f.Size() > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrTooLarge, f.Size(), MaxUploadBytes)
	}

	data, err := readLimited(f)
	if err != nil {
		return nil, err
	}

	decoded, format, err := p.codec.Decode(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	pixels := imaging.Clone(decoded)
	bounds := pixels.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: image has no pixels", domain.ErrDecode)
	}

	return &SourceImage{
		Name:   f.Name(),
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Bytes:  int64(len(data)),
		Pixels: pixels,
	}, nil
}

func readLimited(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrDecode, f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrDecode, f.Name(), err)
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: more than %d bytes read", domain.ErrTooLarge, MaxUploadBytes)
	}
	return data, nil
}

// Export encodes the surface. Quality is only forwarded for lossy formats.
func (p *Processor) Export(ctx context.Context, surface Surface, settings domain.ExportSettings) (Download, error) {
	if !surface.Loaded {
		return Download{}, domain.ErrNoImageLoaded
	}
	if surface.Pixels == nil {
		return Download{}, fmt.Errorf("%w: surface is %dx%d and has no pixels", domain.ErrEncode, surface.Width, surface.Height)
	}

	settings = settings.Normalize()
	quality := settings.Quality
	if !settings.Format.Lossy() {
		quality = 0
	}

	data, err := p.codec.Encode(ctx, surface.Pixels, settings.Format, quality)
	if err != nil {
		if ctx.Err() != nil {
			return Download{}, ctx.Err()
		}
		return Download{}, fmt.Errorf("%w: %w", domain.ErrEncode, err)
	}
	if len(data) == 0 {
		return Download{}, fmt.Errorf("%w: encoder produced no bytes", domain.ErrEncode)
	}

	return Download{
		Filename:  domain.ExportFilename(settings.Format, p.now()),
		MediaType: settings.Format.MediaType(),
		Format:    settings.Format,
		Quality:   settings.Quality,
		Width:     surface.Width,
		Height:    surface.Height,
		Data:      data,
	}, nil
}

type bytesFile struct {
	name      string
	mediaType string
	data      []byte
}

// NewBytesFile wraps in-memory bytes as a File whose size is len(data).
func NewBytesFile(name, mediaType string, data []byte) File {
	return bytesFile{name: name, mediaType: mediaType, data: data}
}

func (f bytesFile) Name() string      { return f.name }
func (f bytesFile) MediaType() string { return f.mediaType }
func (f bytesFile) Size() int64       { return int64(len(f.data)) }

func (f bytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
