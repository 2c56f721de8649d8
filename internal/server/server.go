// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes deck generation over HTTP: POST /api/generate
// returns the finished .pptx as an attachment, GET /health reports
// liveness. Error kinds map to status codes at this boundary and nowhere
// else.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/casedeck/internal/deck"
	"github.com/pdiddy/casedeck/internal/history"
	"github.com/pdiddy/casedeck/pkg/types"
)

const pptxMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Generator runs one generation request end to end.
type Generator interface {
	Generate(ctx context.Context, profile types.CompanyProfile, ptype types.PresentationType, w io.Writer) (*deck.Result, error)
}

// Recorder appends completed generations to the history log.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Server handles the HTTP boundary.
type Server struct {
	gen  Generator
	hist Recorder // nil disables history
	log  *zap.Logger
	cfg  types.ServerConfig
}

// New builds a Server. hist may be nil; log must not be.
func New(gen Generator, hist Recorder, log *zap.Logger, cfg types.ServerConfig) *Server {
	return &Server{gen: gen, hist: hist, log: log, cfg: cfg}
}

// Handler returns the routed handler with request logging attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// generateRequest is the POST /api/generate body.
type generateRequest struct {
	CompanyName        string `json:"company_name"`
	CompanyDescription string `json:"company_description"`
	PresentationType   int    `json:"presentation_type"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	profile := types.CompanyProfile{Name: req.CompanyName, Description: req.CompanyDescription}
	ptype := types.PresentationType(req.PresentationType)

	// Reject bad input here, before any selection work starts.
	if err := profile.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ptype.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.gen.Generate(r.Context(), profile, ptype, io.Discard)
	if err != nil {
		status := statusFor(err)
		s.log.Warn("generation failed",
			zap.String("company", profile.Name),
			zap.Int("status", status),
			zap.Error(err),
		)
		s.writeError(w, status, err.Error())
		return
	}

	s.record(r.Context(), profile, ptype, res)

	w.Header().Set("Content-Type", pptxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// record logs the generation to history. Failures are warnings only; the
// deck has already been produced.
func (s *Server) record(ctx context.Context, profile types.CompanyProfile, ptype types.PresentationType, res *deck.Result) {
	if s.hist == nil {
		return
	}
	err := s.hist.Record(ctx, history.Entry{
		CompanyName: profile.Name,
		Type:        ptype,
		CaseIDs:     res.Selection.IDs,
		Source:      res.Selection.Source,
		Filename:    res.Filename,
		CreatedAt:   res.GeneratedAt,
	})
	if err != nil {
		s.log.Warn("history write failed", zap.Error(err))
	}
}

// statusFor maps the error taxonomy to HTTP statuses. FormatError never
// reaches this boundary; the selector resolves it internally.
func statusFor(err error) int {
	var (
		verr *types.ValidationError
		uerr *types.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &uerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
