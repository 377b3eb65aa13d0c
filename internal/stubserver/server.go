// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stubserver is a development backend that speaks the same upload
// and results contract as the real conversion service.
//
//	POST /upload             multipart field "file" -> {"conversion_id": "..."}
//	GET  /results/{id}       HTML results page
//	GET  /api/results/{id}   {"pseudocode", "explanation", "flowchart"}
//
// Conversions are kept in memory for the lifetime of the server.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pdiddy/cobol-lens/internal/logging"
	"github.com/pdiddy/cobol-lens/internal/validate"
	"github.com/pdiddy/cobol-lens/pkg/types"
)

// DefaultMaxBytes bounds an upload request body.
const DefaultMaxBytes = 16 << 20

const memoryLimit = 4 << 20

// Converter turns COBOL source into a conversion result. The ID field of
// the returned value is ignored.
type Converter interface {
	Convert(ctx context.Context, source string) (types.ConversionResult, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(ctx context.Context, source string) (types.ConversionResult, error)

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, source string) (types.ConversionResult, error) {
	return f(ctx, source)
}

// Server holds the router and the in-memory result store.
type Server struct {
	conv     Converter
	log      logging.Logger
	maxBytes int64
	newID    func() string

	mu      sync.RWMutex
	results map[string]types.ConversionResult
}

// Option configures a Server.
type Option func(*Server)

// WithConverter replaces the placeholder converter.
func WithConverter(c Converter) Option { return func(s *Server) { s.conv = c } }

// WithLogger sets the request logger.
func WithLogger(l logging.Logger) Option { return func(s *Server) { s.log = l } }

// WithMaxBytes sets the upload body limit.
func WithMaxBytes(n int64) Option { return func(s *Server) { s.maxBytes = n } }

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		conv:     Placeholder{},
		log:      logging.Discard(),
		maxBytes: DefaultMaxBytes,
		newID:    uuid.NewString,
		results:  make(map[string]types.ConversionResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Post("/upload", s.handleUpload)
	r.Get("/results/{id}", s.handleResultsPage)
	r.Get("/api/results/{id}", s.handleResultsAPI)
	return r
}

// Lookup returns a stored conversion.
func (s *Server) Lookup(id string) (types.ConversionResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	return r, ok
}

// ListenAndServe serves on addr until ctx is cancelled. If ready is not
// nil it receives the bound address once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if ready != nil {
		ready(ln.Addr())
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	// A part named "file" without a filename parses as a plain value.
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	header := headers[0]
	if !validate.Accepts(header.Filename) {
		writeError(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file")
		return
	}
	source := string(data)
	if strings.TrimSpace(source) == "" {
		writeError(w, http.StatusBadRequest, "Empty file content")
		return
	}

	result, err := s.conv.Convert(r.Context(), source)
	if err != nil {
		s.log.Error(r.Context(), "processing error", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal processing error: "+err.Error())
		return
	}

	id := s.newID()
	result.ID = id
	s.mu.Lock()
	s.results[id] = result
	s.mu.Unlock()

	s.log.Info(r.Context(), "conversion stored", "conversion_id", id, "file", header.Filename, "bytes", len(data))
	writeJSON(w, http.StatusOK, map[string]string{"conversion_id": id})
}

var resultsPage = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html>
<head><title>Conversion {{.ID}}</title></head>
<body>
<h1>Conversion results</h1>
<h2>Pseudocode</h2>
<pre>{{.Pseudocode}}</pre>
<h2>Explanation</h2>
<p>{{.Explanation}}</p>
<p><a href="/api/results/{{.ID}}">Raw results</a></p>
</body>
</html>
`))

func (s *Server) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	result, ok := s.Lookup(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Results not found or have expired.", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultsPage.Execute(w, result); err != nil {
		s.log.Warn(r.Context(), "rendering results page", "error", err)
	}
}

func (s *Server) handleResultsAPI(w http.ResponseWriter, r *http.Request) {
	result, ok := s.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Results not found or expired")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// requestLog logs one line per request through the server's logger.
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
