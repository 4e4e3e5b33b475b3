package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/dunamismax/pixelpro/internal/editor"
	"github.com/dunamismax/pixelpro/internal/pipeline"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	routeHealthz          = "/healthz"
	routeMetrics          = "/metrics"
	routeSession          = "/v1/session"
	routeSessionFile      = "/v1/session/file"
	routeAdjustments      = "/v1/session/adjustments"
	routeAdjustmentsReset = "/v1/session/adjustments/reset"
	routeAdjustmentsAuto  = "/v1/session/adjustments/auto"
	routePreset           = "/v1/session/preset"
	routeDimensions       = "/v1/session/dimensions"
	routeResetImage       = "/v1/session/reset-image"
	routePreview          = "/v1/session/preview"
	routeExport           = "/v1/session/export"
)

// maxMultipartMemory is how much of an upload is buffered in memory before
// the rest spills to a temp file.
const maxMultipartMemory = 8 << 20

// Server exposes one editing session over loopback HTTP. It is a thin shell:
// every request maps to a single controller operation.
type Server struct {
	logger     zerolog.Logger
	controller *editor.Controller
	metrics    *Metrics
	tracer     trace.Tracer
	mux        *http.ServeMux
}

func NewServer(logger zerolog.Logger, controller *editor.Controller, metrics *Metrics) *Server {
	s := &Server{
		logger:     logger.With().Str("component", "api").Logger(),
		controller: controller,
		metrics:    metrics,
		tracer:     otel.Tracer("pixelpro/api"),
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	handler := s.withTracing(s.mux)
	if s.metrics != nil {
		handler = s.metrics.withHTTPMetrics(handler)
	}
	return handler
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET "+routeHealthz, s.handleHealthz)
	if s.metrics != nil {
		s.mux.Handle("GET "+routeMetrics, s.metrics.Handler())
	}

	s.mux.HandleFunc("GET "+routeSession, s.handleGetSession)
	s.mux.HandleFunc("DELETE "+routeSession, s.handleResetSession)
	s.mux.HandleFunc("POST "+routeSessionFile, s.handleSubmitFile)
	s.mux.HandleFunc("PUT "+routeAdjustments, s.handleSetAdjustment)
	s.mux.HandleFunc("POST "+routeAdjustmentsReset, s.handleResetEnhancements)
	s.mux.HandleFunc("POST "+routeAdjustmentsAuto, s.handleAutoEnhance)
	s.mux.HandleFunc("PUT "+routePreset, s.handleSetPreset)
	s.mux.HandleFunc("PUT "+routeDimensions, s.handleSetDimensions)
	s.mux.HandleFunc("POST "+routeResetImage, s.handleResetImage)
	s.mux.HandleFunc("GET "+routePreview, s.handlePreview)
	s.mux.HandleFunc("PUT "+routeExport, s.handleSelectExport)
	s.mux.HandleFunc("POST "+routeExport, s.handleExport)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "codec": pipeline.CodecName()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, editor.NewView(s.controller.State()))
}

func (s *Server) handleResetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, editor.NewView(s.controller.ResetSession()))
}

func (s *Server) handleSubmitFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, pipeline.MaxUploadBytes+maxMultipartMemory)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, fmt.Errorf("%w: request body over %d bytes", domain.ErrTooLarge, tooLarge.Limit))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, "expected multipart form with a file field"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	_, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, "missing file field"))
		return
	}

	state, err := s.controller.SubmitFile(r.Context(), multipartFile{header: header})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editor.NewView(state))
}

type adjustmentRequest struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (s *Server) handleSetAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, err.Error()))
		return
	}
	state, err := s.controller.SetAdjustment(req.Name, req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editor.NewView(state))
}

func (s *Server) handleResetEnhancements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, editor.NewView(s.controller.ResetEnhancements()))
}

func (s *Server) handleAutoEnhance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, editor.NewView(s.controller.AutoEnhance()))
}

type presetRequest struct {
	Preset string `json:"preset"`
}

func (s *Server) handleSetPreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, err.Error()))
		return
	}
	state, err := s.controller.SetPreset(req.Preset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editor.NewView(state))
}

// fieldInput is a dimension as typed into a field. It accepts a JSON string
// or number.
type fieldInput string

func (f *fieldInput) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*f = fieldInput(raw)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("dimension must be a string or number")
	}
	*f = fieldInput(n.String())
	return nil
}

type dimensionsRequest struct {
	Width      *fieldInput `json:"width"`
	Height     *fieldInput `json:"height"`
	AspectLock *bool       `json:"aspect_lock"`
}

// handleSetDimensions mirrors the resize fields: one axis is an edit of that
// field, both axes are a combined edit, and aspect_lock alone toggles the
// lock.
func (s *Server) handleSetDimensions(w http.ResponseWriter, r *http.Request) {
	var req dimensionsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, err.Error()))
		return
	}

	var state editor.State
	switch {
	case req.Width != nil && req.Height != nil:
		lock := s.controller.State().AspectLock
		if req.AspectLock != nil {
			lock = *req.AspectLock
		}
		state = s.controller.SetOutputDimensions(domain.ParseDimension(string(*req.Width)), domain.ParseDimension(string(*req.Height)), lock)
	case req.Width != nil && req.AspectLock != nil:
		state = s.controller.EditWidth(string(*req.Width), *req.AspectLock)
	case req.Width != nil:
		state = s.controller.SetWidth(string(*req.Width))
	case req.Height != nil && req.AspectLock != nil:
		state = s.controller.EditHeight(string(*req.Height), *req.AspectLock)
	case req.Height != nil:
		state = s.controller.SetHeight(string(*req.Height))
	case req.AspectLock != nil:
		state = s.controller.SetAspectLock(*req.AspectLock)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, "width, height or aspect_lock is required"))
		return
	}
	writeJSON(w, http.StatusOK, editor.NewView(state))
}

func (s *Server) handleResetImage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, editor.NewView(s.controller.ResetImage()))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	download, err := s.controller.Preview(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeBytes(w, download.MediaType, download.Data)
}

type exportRequest struct {
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

func (s *Server) handleSelectExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, err.Error()))
		return
	}
	state, err := s.controller.SelectExport(req.Format, req.Quality)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editor.NewView(state))
}

// handleExport encodes the surface and returns it as an attachment. Without
// a body the session's current export selection is used.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var (
		download pipeline.Download
		err      error
	)
	if r.ContentLength == 0 {
		download, err = s.controller.Export(r.Context())
	} else {
		var req exportRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(domain.KindInvalidInput, err.Error()))
			return
		}
		download, err = s.controller.RequestExport(r.Context(), req.Format, req.Quality)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	w.Header().Set("X-Pixelpro-Width", strconv.Itoa(download.Width))
	w.Header().Set("X-Pixelpro-Height", strconv.Itoa(download.Height))
	writeBytes(w, download.MediaType, download.Data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	kind := domain.Kind(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("kind", kind).Msg("request failed")
	}
	writeJSON(w, status, errorBody(kind, err.Error()))
}

func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch domain.Kind(err) {
	case domain.KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case domain.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.KindDecodeError:
		return http.StatusUnprocessableEntity
	case domain.KindNoImageLoaded:
		return http.StatusConflict
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(kind, message string) map[string]string {
	return map[string]string{"kind": kind, "error": message}
}

type multipartFile struct {
	header *multipart.FileHeader
}

func (f multipartFile) Name() string { return f.header.Filename }

func (f multipartFile) MediaType() string {
	return strings.TrimSpace(f.header.Header.Get("Content-Type"))
}

func (f multipartFile) Size() int64 { return f.header.Size }

func (f multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

func decodeJSON(r *http.Request, into any) error {
	const maxBodyBytes = 1 << 20
	limited := io.LimitReader(r.Body, maxBodyBytes)
	decoder := json.NewDecoder(limited)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(into); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON body: multiple JSON values are not allowed")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeBytes(w http.ResponseWriter, mediaType string, data []byte) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
