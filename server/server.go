// Package server binds a designgen controller to HTTP: an HTML designer
// page plus a small JSON API the page drives.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	// DefaultAddr is the default address the server listens on.
	DefaultAddr = ":8080"

	// MaxRequestBodySize bounds PUT /api/prompt bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024
)

// Designer is the controller surface the server drives.
// *designgen.Controller implements it.
type Designer interface {
	Snapshot() designgen.View
	SetPrompt(prompt string)
	Generate() bool
	Export(ctx context.Context, storage designgen.Storage, name string) (*designgen.ExportResult, error)
}

var _ Designer = (*designgen.Controller)(nil)

// Config holds listener settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the designer page and API.
type Server struct {
	designer   Designer
	storage    designgen.Storage
	backend    string
	exportName string

	collector *metrics.Collector
	gatherer  prometheus.Gatherer

	logger    *slog.Logger
	templates *template.Template
	router    *mux.Router
	server    *http.Server
	cfg       Config
}

// Option configures a Server.
type Option func(*Server)

// WithStorage enables POST /api/export. backend names the sink in metrics.
func WithStorage(storage designgen.Storage, backend string) Option {
	return func(s *Server) {
		s.storage = storage
		s.backend = backend
	}
}

// WithExportName sets the file name (without extension) of downloads.
func WithExportName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.exportName = name
		}
	}
}

// WithMetrics instruments requests and exports and serves gatherer on /metrics.
func WithMetrics(collector *metrics.Collector, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.collector = collector
		s.gatherer = gatherer
	}
}

// WithLogger sets a structured logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server for designer.
func New(designer Designer, cfg Config, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	s := &Server{
		designer:   designer,
		exportName: designgen.DefaultExportName,
		logger:     slog.Default(),
		templates:  tmpl,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.routes()
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	if s.collector != nil {
		r.Use(s.collector.Middleware)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/prompt", s.handlePrompt).Methods(http.MethodPut)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/design", s.handleDesign).Methods(http.MethodGet)
	api.HandleFunc("/export", s.handleExport).Methods(http.MethodPost)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting web server", "addr", s.cfg.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down web server")
		timeout := lo.Ternary(s.cfg.ShutdownTimeout > 0, s.cfg.ShutdownTimeout, 10*time.Second)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil

	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// stateResponse is the JSON form of a view plus the derived UI flags.
type stateResponse struct {
	designgen.View
	CanGenerate     bool   `json:"can_generate"`
	CanExport       bool   `json:"can_export"`
	ShowPlaceholder bool   `json:"show_placeholder"`
	DownloadName    string `json:"download_name,omitempty"`
}

func (s *Server) state() stateResponse {
	v := s.designer.Snapshot()
	resp := stateResponse{
		View:            v,
		CanGenerate:     v.CanGenerate(),
		CanExport:       v.CanExport(),
		ShowPlaceholder: v.Display().ShowPlaceholder(),
	}
	if resp.CanExport {
		resp.DownloadName = designgen.ExportFileName(s.exportName, v.ImageRef)
	}
	return resp
}

type indexTemplateData struct {
	stateResponse
	ShowImage   bool
	ImageURL    template.URL
	Placeholder string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st := s.state()
	data := indexTemplateData{
		stateResponse: st,
		ShowImage:     st.Display().ShowImage(),
		// Refs are data URIs built by designgen.NewImageRef.
		ImageURL:    template.URL(st.ImageRef.String()),
		Placeholder: designgen.PlaceholderText,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("failed to execute template", "error", err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.state())
}

type promptRequest struct {
	Prompt *string `json:"prompt"`
}

// handlePrompt replaces the prompt text. It accepts JSON {"prompt": "..."}
// or a form field named prompt. An empty prompt is allowed.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var prompt string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "failed to parse form")
			return
		}
		if _, ok := r.Form["prompt"]; !ok {
			s.writeError(w, http.StatusBadRequest, "missing prompt")
			return
		}
		prompt = r.FormValue("prompt")
	default:
		var req promptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, http.StatusRequestEntityTooLarge, "prompt too long")
				return
			}
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Prompt == nil {
			s.writeError(w, http.StatusBadRequest, "missing prompt")
			return
		}
		prompt = *req.Prompt
	}

	s.designer.SetPrompt(prompt)
	s.writeJSON(w, http.StatusOK, s.state())
}

type generateResponse struct {
	Started bool          `json:"started"`
	State   stateResponse `json:"state"`
}

// handleGenerate presses the generate button. A press the controller
// ignores (empty prompt, already generating) is not an error.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	started := s.designer.Generate()
	status := lo.Ternary(started, http.StatusAccepted, http.StatusOK)
	s.writeJSON(w, status, generateResponse{Started: started, State: s.state()})
}

// handleDesign downloads the current design.
func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	v := s.designer.Snapshot()
	if !v.CanExport() {
		s.writeError(w, http.StatusConflict, designgen.ErrNothingToExport.Error())
		return
	}

	data, mimeType, err := v.ImageRef.Decode()
	if err != nil {
		s.logger.Error("failed to decode design", "generation_id", v.GenerationID, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "design could not be decoded")
		return
	}

	name := designgen.ExportFileName(s.exportName, v.ImageRef)
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write design", "generation_id", v.GenerationID, "error", err.Error())
	}
}

type exportResponse struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

// handleExport pushes the current design to the configured sink.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.writeError(w, http.StatusServiceUnavailable, designgen.ErrStorageNotConfigured.Error())
		return
	}

	result, err := s.designer.Export(r.Context(), s.storage, s.exportName)
	if errors.Is(err, designgen.ErrNothingToExport) {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if s.collector != nil {
		s.collector.RecordExport(s.backend, err)
	}
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	s.writeJSON(w, http.StatusOK, exportResponse{
		URL:      result.URL,
		Path:     result.Path,
		MIMEType: result.MIMEType,
		Size:     result.Size,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: strings.TrimSpace(message)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err.Error())
	}
}
