// Package server serves the finding dashboard: the HTML page and the JSON
// filter endpoint.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"findingboard/internal/domain"
	"findingboard/internal/pivot"
)

const maxFilterBody = 1 << 20

//go:embed templates/index.html
var indexHTML string

// RecordSource supplies the cached table.
type RecordSource interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

type Server struct {
	addr  string
	store RecordSource
	tmpl  *template.Template
}

func New(addr string, store RecordSource) (*Server, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":5000"
	}
	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, err
	}
	return &Server{addr: addr, store: store, tmpl: tmpl}, nil
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/filter", s.handleFilter)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "ok")
	})
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("Dashboard listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Records(r.Context())
	if err != nil {
		log.Printf("Index load error: %v", err)
		http.Error(w, "data source unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	view := pivot.Compute(records, domain.Selection{})
	logUnphased(view)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, view); err != nil {
		log.Printf("Index render error: %v", err)
	}
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFilterBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, fmt.Errorf("reading request body: %w", err))
		return
	}
	sel, err := domain.ParseSelection(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := s.store.Records(r.Context())
	if err != nil {
		log.Printf("Filter load error: %v", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	view := pivot.Compute(records, sel)
	logUnphased(view)
	writeJSON(w, http.StatusOK, view)
}

func logUnphased(view domain.View) {
	if view.UnphasedCount > 0 {
		log.Printf("View rows=%d unphased=%d (excluded from pivot, kept in detail map)", view.RowCount, view.UnphasedCount)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Encode response error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
