package editor

import (
	"context"
	"sync"

	"github.com/dunamismax/pixelpro/internal/pipeline"
)

type DragKind string

const (
	DragEnter DragKind = "dragenter"
	DragOver  DragKind = "dragover"
	DragLeave DragKind = "dragleave"
	Drop      DragKind = "drop"
)

var dragKinds = []DragKind{DragEnter, DragOver, DragLeave, Drop}

// DragEvent is a drag event as the host delivers it. Files is only set for
// Drop.
type DragEvent struct {
	Kind  DragKind
	Files []pipeline.File
}

// DropTarget is the element files are dropped on. Listen must stop the
// platform default for kind (navigating to the dropped file) before calling
// handler, and returns a func that detaches handler.
type DropTarget interface {
	Listen(kind DragKind, handler func(DragEvent)) (remove func())
}

// Dropzone routes drag events from a DropTarget into a Controller. A drop
// goes through the same ingestion as a picked file.
type Dropzone struct {
	controller *Controller
	onError    func(error)
}

func NewDropzone(controller *Controller, onError func(error)) *Dropzone {
	if onError == nil {
		onError = func(error) {}
	}
	return &Dropzone{controller: controller, onError: onError}
}

// Mount attaches listeners for every drag kind and returns the func that
// detaches them. Unmount is safe to call more than once, and runs by itself
// when ctx is done.
func (d *Dropzone) Mount(ctx context.Context, target DropTarget) func() {
	removers := make([]func(), 0, len(dragKinds))
	for _, kind := range dragKinds {
		removers = append(removers, target.Listen(kind, func(e DragEvent) {
			d.handle(ctx, e)
		}))
	}

	var once sync.Once
	detach := func() {
		once.Do(func() {
			for _, remove := range removers {
				if remove != nil {
					remove()
				}
			}
			d.controller.SetHighlight(false)
		})
	}

	stop := context.AfterFunc(ctx, detach)
	return func() {
		stop()
		detach()
	}
}

func (d *Dropzone) handle(ctx context.Context, e DragEvent) {
	switch e.Kind {
	case DragEnter, DragOver:
		d.controller.SetHighlight(true)
	case DragLeave:
		d.controller.SetHighlight(false)
	case Drop:
		d.controller.SetHighlight(false)
		if len(e.Files) == 0 {
			return
		}
		if _, err := d.controller.SubmitFile(ctx, e.Files[0]); err != nil {
			d.onError(err)
		}
	}
}
