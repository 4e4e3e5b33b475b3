//go:build js && wasm

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"syscall/js"

	"github.com/dunamismax/pixelpro/internal/editor"
	"github.com/dunamismax/pixelpro/internal/pipeline"
)

// domTarget adapts a DOM element to editor.DropTarget. The browser default
// is cancelled inside the listener; the handler itself runs on the page's
// event queue, followed by after.
type domTarget struct {
	el     js.Value
	events chan<- func()
	after  func()
}

func (t domTarget) Listen(kind editor.DragKind, handler func(editor.DragEvent)) func() {
	listener := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := args[0]
		ev.Call("preventDefault")
		ev.Call("stopPropagation")

		e := editor.DragEvent{Kind: kind}
		if kind == editor.Drop {
			// dataTransfer is emptied once the listener returns.
			e.Files = filesOf(ev.Get("dataTransfer"))
		}
		t.events <- func() {
			handler(e)
			if t.after != nil {
				t.after()
			}
		}
		return nil
	})
	t.el.Call("addEventListener", string(kind), listener)

	return func() {
		t.el.Call("removeEventListener", string(kind), listener)
		listener.Release()
	}
}

func filesOf(transfer js.Value) []pipeline.File {
	if !transfer.Truthy() {
		return nil
	}
	list := transfer.Get("files")
	files := make([]pipeline.File, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		files = append(files, jsFile{v: list.Index(i)})
	}
	return files
}

// jsFile is a browser File or Blob.
type jsFile struct {
	v js.Value
}

func (f jsFile) Name() string {
	if name := f.v.Get("name"); name.Type() == js.TypeString {
		return name.String()
	}
	return ""
}

func (f jsFile) MediaType() string { return f.v.Get("type").String() }

func (f jsFile) Size() int64 { return int64(f.v.Get("size").Float()) }

// Open reads the whole blob. It waits on a promise, so it must not run on
// the JS event loop.
func (f jsFile) Open() (io.ReadCloser, error) {
	buf, err := await(f.v.Call("arrayBuffer"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	view := js.Global().Get("Uint8Array").New(buf)
	data := make([]byte, view.Length())
	js.CopyBytesToGo(data, view)
	return io.NopCloser(bytes.NewReader(data)), nil
}

func await(promise js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	done := make(chan result, 1)

	onResolve := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- result{v: args[0]}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- result{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)
	r := <-done
	return r.v, r.err
}

// paint copies the surface into canvas. The surface is non-premultiplied
// RGBA, the same layout ImageData uses.
func paint(canvas js.Value, surface pipeline.Surface) {
	if surface.Pixels == nil {
		canvas.Set("width", 0)
		canvas.Set("height", 0)
		return
	}
	w, h := surface.Pixels.Rect.Dx(), surface.Pixels.Rect.Dy()
	canvas.Set("width", w)
	canvas.Set("height", h)

	pixels := js.Global().Get("Uint8ClampedArray").New(len(surface.Pixels.Pix))
	js.CopyBytesToJS(pixels, surface.Pixels.Pix)
	imageData := js.Global().Get("ImageData").New(pixels, w, h)
	canvas.Call("getContext", "2d").Call("putImageData", imageData, 0, 0)
}

// save hands the encoded bytes to the browser as a file download.
func save(d pipeline.Download) {
	data := js.Global().Get("Uint8Array").New(len(d.Data))
	js.CopyBytesToJS(data, d.Data)

	opts := js.Global().Get("Object").New()
	opts.Set("type", d.MediaType)
	blob := js.Global().Get("Blob").New([]any{data}, opts)

	url := js.Global().Get("URL").Call("createObjectURL", blob)
	defer js.Global().Get("URL").Call("revokeObjectURL", url)

	document := js.Global().Get("document")
	link := document.Call("createElement", "a")
	link.Set("href", url)
	link.Set("download", d.Filename)
	document.Get("body").Call("appendChild", link)
	link.Call("click")
	link.Call("remove")
}
