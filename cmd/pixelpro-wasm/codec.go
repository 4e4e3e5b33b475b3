//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"image"
	"syscall/js"

	"github.com/disintegration/imaging"
	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/pipeline"
)

// canvasCodec encodes WebP with the browser's canvas encoder, which the pure
// Go codec lacks. Everything else goes to base.
type canvasCodec struct {
	base pipeline.Codec
}

func (c canvasCodec) Decode(ctx context.Context, data []byte) (image.Image, string, error) {
	return c.base.Decode(ctx, data)
}

func (c canvasCodec) Encode(ctx context.Context, img image.Image, format domain.Format, quality int) ([]byte, error) {
	if format != domain.FormatWebP {
		return c.base.Encode(ctx, img, format, quality)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !js.Global().Get("OffscreenCanvas").Truthy() {
		return nil, fmt.Errorf("webp export needs OffscreenCanvas")
	}

	pixels := imaging.Clone(img)
	w, h := pixels.Rect.Dx(), pixels.Rect.Dy()
	canvas := js.Global().Get("OffscreenCanvas").New(w, h)
	data := js.Global().Get("Uint8ClampedArray").New(len(pixels.Pix))
	js.CopyBytesToJS(data, pixels.Pix)
	canvas.Call("getContext", "2d").Call("putImageData", js.Global().Get("ImageData").New(data, w, h), 0, 0)

	opts := js.Global().Get("Object").New()
	opts.Set("type", format.MediaType())
	opts.Set("quality", float64(quality)/100)
	blob, err := await(canvas.Call("convertToBlob", opts))
	if err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	// Browsers without a WebP encoder silently fall back to PNG.
	if got := blob.Get("type").String(); got != format.MediaType() {
		return nil, fmt.Errorf("browser encoded %s instead of %s", got, format.MediaType())
	}

	buf, err := await(blob.Call("arrayBuffer"))
	if err != nil {
		return nil, fmt.Errorf("read webp blob: %w", err)
	}
	view := js.Global().Get("Uint8Array").New(buf)
	out := make([]byte, view.Length())
	js.CopyBytesToGo(out, view)
	return out, nil
}
