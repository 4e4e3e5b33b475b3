package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/pipeline"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Logger         *zerolog.Logger
	Observer       Observer
	Tracer         trace.Tracer
	ExportDefaults domain.ExportSettings
}

// Controller owns one editing session. Hosts may call it from several
// goroutines; every operation runs under one lock, so the session sees a
// single ordered stream of events.
type Controller struct {
	mu        sync.Mutex
	processor *pipeline.Processor
	logger    zerolog.Logger
	observer  Observer
	tracer    trace.Tracer
	state     State
	surface   pipeline.Surface
}

func NewController(processor *pipeline.Processor, opts Options) (*Controller, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}

	c := &Controller{
		processor: processor,
		logger:    zerolog.Nop(),
		observer:  opts.Observer,
		tracer:    opts.Tracer,
		state:     NewState(opts.ExportDefaults),
	}
	if opts.Logger != nil {
		c.logger = opts.Logger.With().Str("component", "editor").Logger()
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("pixelpro/editor")
	}
	c.surface = pipeline.Render(nil, domain.OutputDimensions{}, c.state.Adjustments)
	return c, nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Surface returns the latest render. Its pixels are replaced, never written,
// by later renders.
func (c *Controller) Surface() pipeline.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface
}

// SubmitFile ingests f and starts a new session on it. On failure the
// previous session, if any, is left as it was.
func (c *Controller) SubmitFile(ctx context.Context, f pipeline.File) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	startedAt := time.Now()
	ctx, span := c.tracer.Start(ctx, "editor.ingest")
	defer span.End()
	if f != nil {
		span.SetAttributes(
			attribute.String("file.name", f.Name()),
			attribute.String("file.media_type", f.MediaType()),
			attribute.Int64("file.size", f.Size()),
		)
	}

	source, err := c.processor.Ingest(ctx, f)
	var size int64
	if source != nil {
		size = source.Bytes
	}
	c.observer.ObserveIngest(outcomeOf(err), size, time.Since(startedAt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingest failed")
		c.logger.Warn().Err(err).Str("kind", domain.Kind(err)).Msg("file rejected")
		return c.state, err
	}

	span.SetAttributes(
		attribute.Int("image.width", source.Width),
		attribute.Int("image.height", source.Height),
		attribute.String("image.format", source.Format),
	)
	c.logger.Info().
		Str("name", source.Name).
		Str("format", source.Format).
		Int("width", source.Width).
		Int("height", source.Height).
		Int64("bytes", source.Bytes).
		Msg("image loaded")

	return c.apply(ctx, FileLoaded{Source: source}), nil
}

func (c *Controller) SetAdjustment(name string, value int) (State, error) {
	param, err := domain.ParseAdjustment(name)
	if err != nil {
		return c.State(), err
	}
	return c.dispatch(AdjustmentSet{Param: param, Value: value}), nil
}

func (c *Controller) SetPreset(name string) (State, error) {
	preset, err := domain.ParsePreset(name)
	if err != nil {
		return c.State(), err
	}
	return c.dispatch(PresetSelected{Preset: preset}), nil
}

// SetWidth applies raw width field input. Non-numeric input counts as 0.
func (c *Controller) SetWidth(raw string) State {
	return c.dispatch(WidthEdited{Width: domain.ParseDimension(raw)})
}

func (c *Controller) SetHeight(raw string) State {
	return c.dispatch(HeightEdited{Height: domain.ParseDimension(raw)})
}

// EditWidth sets the aspect lock and applies raw width input in one step.
func (c *Controller) EditWidth(raw string, lock bool) State {
	return c.dispatch(WidthEdited{Width: domain.ParseDimension(raw), Lock: &lock})
}

func (c *Controller) EditHeight(raw string, lock bool) State {
	return c.dispatch(HeightEdited{Height: domain.ParseDimension(raw), Lock: &lock})
}

func (c *Controller) SetOutputDimensions(width, height int, lock bool) State {
	return c.dispatch(DimensionsSet{Width: width, Height: height, Lock: lock})
}

func (c *Controller) SetAspectLock(locked bool) State {
	return c.dispatch(AspectLockSet{Locked: locked})
}

func (c *Controller) ResetEnhancements() State {
	return c.dispatch(EnhancementsReset{})
}

func (c *Controller) AutoEnhance() State {
	return c.dispatch(AutoEnhanced{})
}

// ResetImage restores the native size and identity adjustments while
// keeping the loaded image.
func (c *Controller) ResetImage() State {
	return c.dispatch(ImageReset{})
}

// ResetSession drops the image and returns to upload mode.
func (c *Controller) ResetSession() State {
	state := c.dispatch(SessionReset{})
	c.logger.Info().Msg("session reset")
	return state
}

func (c *Controller) SetHighlight(over bool) State {
	return c.dispatch(DragHovered{Over: over})
}

func (c *Controller) SelectExport(format string, quality int) (State, error) {
	settings, err := exportSettings(format, quality)
	if err != nil {
		return c.State(), err
	}
	return c.dispatch(ExportSelected{Settings: settings}), nil
}

// Export encodes the current surface with the selected export settings.
func (c *Controller) Export(ctx context.Context) (pipeline.Download, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.export(ctx, c.state.Export)
}

// RequestExport encodes the current surface as format at quality. The
// settings become the session's selection only when encoding succeeds.
func (c *Controller) RequestExport(ctx context.Context, format string, quality int) (pipeline.Download, error) {
	settings, err := exportSettings(format, quality)
	if err != nil {
		return pipeline.Download{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	download, err := c.export(ctx, settings)
	if err != nil {
		return pipeline.Download{}, err
	}
	c.state = Reduce(c.state, ExportSelected{Settings: settings})
	return download, nil
}

// Preview encodes the current surface as PNG without touching the export
// selection.
func (c *Controller) Preview(ctx context.Context) (pipeline.Download, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "editor.preview")
	defer span.End()

	download, err := c.processor.Export(ctx, c.surface, domain.ExportSettings{Format: domain.FormatPNG})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "preview failed")
		return pipeline.Download{}, err
	}
	return download, nil
}

func (c *Controller) export(ctx context.Context, settings domain.ExportSettings) (pipeline.Download, error) {
	startedAt := time.Now()
	ctx, span := c.tracer.Start(ctx, "editor.export")
	span.SetAttributes(
		attribute.String("export.format", string(settings.Format)),
		attribute.Int("export.quality", settings.Quality),
		attribute.Int("export.width", c.surface.Width),
		attribute.Int("export.height", c.surface.Height),
	)
	defer span.End()

	download, err := c.processor.Export(ctx, c.surface, settings)
	c.observer.ObserveExport(settings.Format, outcomeOf(err), len(download.Data), time.Since(startedAt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		c.logger.Warn().Err(err).Str("kind", domain.Kind(err)).Str("format", string(settings.Format)).Msg("export failed")
		return pipeline.Download{}, err
	}

	span.SetAttributes(attribute.Int("export.bytes", len(download.Data)))
	c.logger.Info().
		Str("filename", download.Filename).
		Str("format", string(download.Format)).
		Int("quality", download.Quality).
		Int("bytes", len(download.Data)).
		Msg("image exported")
	return download, nil
}

func (c *Controller) dispatch(e Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(context.Background(), e)
}

// apply runs the reducer and re-renders from the source when an input of the
// render changed. Callers hold c.mu.
func (c *Controller) apply(ctx context.Context, e Event) State {
	prev := c.state
	c.state = Reduce(prev, e)
	if renderInputsChanged(prev, c.state) {
		c.render(ctx)
	}
	return c.state
}

func (c *Controller) render(ctx context.Context) {
	startedAt := time.Now()
	_, span := c.tracer.Start(ctx, "editor.render")
	defer span.End()

	c.surface = pipeline.Render(c.state.Source, c.state.Dimensions, c.state.Adjustments)
	span.SetAttributes(
		attribute.Int("surface.width", c.surface.Width),
		attribute.Int("surface.height", c.surface.Height),
		attribute.String("surface.filter", c.surface.Filter.CSS()),
	)
	if c.surface.Loaded {
		c.observer.ObserveRender(c.surface.Width, c.surface.Height, time.Since(startedAt))
	}
	c.logger.Debug().
		Int("width", c.surface.Width).
		Int("height", c.surface.Height).
		Str("filter", c.surface.Filter.CSS()).
		Dur("elapsed", time.Since(startedAt)).
		Msg("surface rendered")
}

func exportSettings(format string, quality int) (domain.ExportSettings, error) {
	parsed, err := domain.ParseFormat(format)
	if err != nil {
		return domain.ExportSettings{}, err
	}
	return domain.ExportSettings{Format: parsed, Quality: quality}.Normalize(), nil
}
