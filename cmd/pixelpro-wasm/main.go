//go:build js && wasm

// Command pixelpro-wasm runs the editor inside the browser page. It exposes
// the session on globalThis.pixelpro and wires #dropzone, #file-input and
// #canvas when the page has them.
package main

import (
	"context"
	"encoding/json"
	"os"
	"syscall/js"
	"time"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/editor"
	"github.com/dunamismax/pixelpro/internal/pipeline"
	"github.com/dunamismax/pixelpro/internal/telemetry"
	"github.com/rs/zerolog"
)

const highlightClass = "is-dragover"

func main() {
	logger := telemetry.NewLogger(os.Stdout, telemetry.LogConfig{Service: domain.ProductName, Level: "info"})

	base, err := pipeline.DefaultCodec()
	if err != nil {
		logger.Fatal().Err(err).Msg("codec setup failed")
	}
	processor := pipeline.NewProcessorWithCodec(canvasCodec{base: base}, time.Now)
	controller, err := editor.NewController(processor, editor.Options{
		Logger:         &logger,
		ExportDefaults: domain.DefaultExportSettings(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("editor setup failed")
	}

	page := newPage(controller, logger)
	js.Global().Set("pixelpro", page.exports())
	page.mount(context.Background())

	logger.Info().Str("codec", pipeline.CodecName()).Msg("editor ready")
	select {}
}

type page struct {
	controller *editor.Controller
	logger     zerolog.Logger
	document   js.Value
	events     chan func()
}

func newPage(controller *editor.Controller, logger zerolog.Logger) *page {
	p := &page{
		controller: controller,
		logger:     logger,
		document:   js.Global().Get("document"),
		events:     make(chan func(), 256),
	}
	go func() {
		for fn := range p.events {
			fn()
		}
	}()
	return p
}

// mount wires the optional page elements. Listeners stay attached for the
// life of the page.
func (p *page) mount(ctx context.Context) {
	if zone := p.element("#dropzone"); zone.Truthy() {
		target := domTarget{el: zone, events: p.events, after: p.sync}
		editor.NewDropzone(p.controller, p.notify).Mount(ctx, target)
	}
	if input := p.element("#file-input"); input.Truthy() {
		onChange := js.FuncOf(func(this js.Value, _ []js.Value) any {
			files := this.Get("files")
			if files.Length() == 0 {
				return nil
			}
			file := jsFile{v: files.Index(0)}
			p.events <- func() {
				if _, err := p.controller.SubmitFile(ctx, file); err != nil {
					p.notify(err)
				}
				p.sync()
			}
			return nil
		})
		input.Call("addEventListener", "change", onChange)
	}
}

func (p *page) element(selector string) js.Value {
	if !p.document.Truthy() {
		return js.Undefined()
	}
	return p.document.Call("querySelector", selector)
}

// sync paints the surface into #canvas and toggles the drop highlight.
func (p *page) sync() {
	state := p.controller.State()
	if zone := p.element("#dropzone"); zone.Truthy() {
		zone.Get("classList").Call("toggle", highlightClass, state.Highlight)
	}
	if canvas := p.element("#canvas"); canvas.Truthy() {
		paint(canvas, p.controller.Surface())
	}
	p.dispatch("pixelpro:state", viewValue(state))
}

func (p *page) notify(err error) {
	p.logger.Warn().Err(err).Str("kind", domain.Kind(err)).Msg("operation failed")
	p.dispatch("pixelpro:error", jsError(err))
}

func (p *page) dispatch(name string, detail js.Value) {
	init := js.Global().Get("Object").New()
	init.Set("detail", detail)
	js.Global().Call("dispatchEvent", js.Global().Get("CustomEvent").New(name, init))
}

// exports builds the globalThis.pixelpro object. Every method returns a
// promise; most resolve to the session view.
func (p *page) exports() js.Value {
	api := js.Global().Get("Object").New()
	p.method(api, "state", func([]js.Value) (js.Value, error) {
		return viewValue(p.controller.State()), nil
	})
	p.method(api, "submitFile", func(args []js.Value) (js.Value, error) {
		if len(args) == 0 || !args[0].Truthy() {
			return js.Undefined(), domain.ErrUnsupportedType
		}
		state, err := p.controller.SubmitFile(context.Background(), jsFile{v: args[0]})
		return viewValue(state), err
	})
	p.method(api, "setAdjustment", func(args []js.Value) (js.Value, error) {
		state, err := p.controller.SetAdjustment(argString(args, 0), argInt(args, 1))
		return viewValue(state), err
	})
	p.method(api, "setPreset", func(args []js.Value) (js.Value, error) {
		state, err := p.controller.SetPreset(argString(args, 0))
		return viewValue(state), err
	})
	p.method(api, "setWidth", func(args []js.Value) (js.Value, error) {
		return viewValue(p.controller.SetWidth(argString(args, 0))), nil
	})
	p.method(api, "setHeight", func(args []js.Value) (js.Value, error) {
		return viewValue(p.controller.SetHeight(argString(args, 0))), nil
	})
	p.method(api, "setAspectLock", func(args []js.Value) (js.Value, error) {
		return viewValue(p.controller.SetAspectLock(len(args) > 0 && args[0].Truthy())), nil
	})
	p.method(api, "resetEnhancements", func([]js.Value) (js.Value, error) {
		return viewValue(p.controller.ResetEnhancements()), nil
	})
	p.method(api, "autoEnhance", func([]js.Value) (js.Value, error) {
		return viewValue(p.controller.AutoEnhance()), nil
	})
	p.method(api, "resetImage", func([]js.Value) (js.Value, error) {
		return viewValue(p.controller.ResetImage()), nil
	})
	p.method(api, "resetSession", func([]js.Value) (js.Value, error) {
		return viewValue(p.controller.ResetSession()), nil
	})
	p.method(api, "selectExport", func(args []js.Value) (js.Value, error) {
		state, err := p.controller.SelectExport(argString(args, 0), argInt(args, 1))
		return viewValue(state), err
	})
	p.method(api, "exportImage", func(args []js.Value) (js.Value, error) {
		var (
			download pipeline.Download
			err      error
		)
		if len(args) == 0 {
			download, err = p.controller.Export(context.Background())
		} else {
			download, err = p.controller.RequestExport(context.Background(), argString(args, 0), argInt(args, 1))
		}
		if err != nil {
			return js.Undefined(), err
		}
		save(download)
		return downloadValue(download), nil
	})
	return api
}

// method adds name to api. Every call is queued behind earlier events and
// runs off the JS event loop, so an ingest awaiting a browser promise never
// blocks the page; the caller gets a promise for the result.
func (p *page) method(api js.Value, name string, fn func(args []js.Value) (js.Value, error)) {
	api.Set(name, js.FuncOf(func(_ js.Value, args []js.Value) any {
		var executor js.Func
		executor = js.FuncOf(func(_ js.Value, settle []js.Value) any {
			resolve, reject := settle[0], settle[1]
			p.events <- func() {
				defer executor.Release()
				v, err := fn(args)
				if err != nil {
					p.notify(err)
					reject.Invoke(jsError(err))
					return
				}
				p.sync()
				resolve.Invoke(v)
			}
			return nil
		})
		return js.Global().Get("Promise").New(executor)
	}))
}

func viewValue(state editor.State) js.Value {
	data, err := json.Marshal(editor.NewView(state))
	if err != nil {
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func downloadValue(d pipeline.Download) js.Value {
	v := js.Global().Get("Object").New()
	v.Set("filename", d.Filename)
	v.Set("mediaType", d.MediaType)
	v.Set("width", d.Width)
	v.Set("height", d.Height)
	v.Set("bytes", len(d.Data))
	return v
}

func jsError(err error) js.Value {
	v := js.Global().Get("Error").New(err.Error())
	v.Set("kind", domain.Kind(err))
	return v
}

func argString(args []js.Value, i int) string {
	if i >= len(args) || args[i].IsUndefined() || args[i].IsNull() {
		return ""
	}
	if args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return args[i].Call("toString").String()
}

func argInt(args []js.Value, i int) int {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return 0
	}
	return args[i].Int()
}
