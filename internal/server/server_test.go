// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/casedeck/internal/deck"
	"github.com/pdiddy/casedeck/internal/history"
	"github.com/pdiddy/casedeck/pkg/types"
)

type stubGenerator struct {
	result *deck.Result
	err    error
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, _ types.CompanyProfile, _ types.PresentationType, _ io.Writer) (*deck.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubRecorder struct {
	entries []history.Entry
	err     error
}

func (s *stubRecorder) Record(_ context.Context, e history.Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func deckResult() *deck.Result {
	return &deck.Result{
		Data:     []byte("PK-deck"),
		Filename: "medtech_solutions_4-cases_20260314_150926.pptx",
		Selection: types.SelectionResult{
			IDs:    []string{"a", "b", "c", "d"},
			Source: types.SourceModel,
		},
		GeneratedAt: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
}

func postGenerate(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{
	"company_name": "MedTech Solutions",
	"company_description": "A healthcare technology company modernizing clinical reporting.",
	"presentation_type": 4
}`

func TestGenerateEndpoint(t *testing.T) {
	gen := &stubGenerator{result: deckResult()}
	rec := &stubRecorder{}
	srv := New(gen, rec, zap.NewNop(), types.ServerConfig{})

	resp := postGenerate(t, srv.Handler(), validBody)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pptxMIME, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), `attachment; filename="medtech_solutions_4-cases_20260314_150926.pptx"`)
	assert.Equal(t, "PK-deck", resp.Body.String())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, rec.entries[0].CaseIDs)
	assert.Equal(t, types.SourceModel, rec.entries[0].Source)
}

func TestGenerateEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"company_name": `},
		{"empty name", `{"company_name": "", "company_description": "long enough description", "presentation_type": 4}`},
		{"short description", `{"company_name": "Acme", "company_description": "too short", "presentation_type": 4}`},
		{"bad type", `{"company_name": "Acme", "company_description": "long enough description", "presentation_type": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{result: deckResult()}
			srv := New(gen, nil, zap.NewNop(), types.ServerConfig{})

			resp := postGenerate(t, srv.Handler(), tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			// Rejected input never reaches the generator.
			assert.Equal(t, 0, gen.calls)

			var body map[string]string
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGenerateEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"upstream unavailable", &types.UpstreamError{Err: errors.New("timeout")}, http.StatusBadGateway},
		{"selection failed", &types.SelectionError{Err: errors.New("no valid ids")}, http.StatusInternalServerError},
		{"render failed", &types.RenderError{Reason: "bad template"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&stubGenerator{err: tt.err}, nil, zap.NewNop(), types.ServerConfig{})
			resp := postGenerate(t, srv.Handler(), validBody)
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestGenerateEndpointHistoryFailureIsNonFatal(t *testing.T) {
	rec := &stubRecorder{err: errors.New("disk full")}
	srv := New(&stubGenerator{result: deckResult()}, rec, zap.NewNop(), types.ServerConfig{})

	resp := postGenerate(t, srv.Handler(), validBody)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "PK-deck", resp.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	srv := New(&stubGenerator{}, nil, zap.NewNop(), types.ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMethodRouting(t *testing.T) {
	srv := New(&stubGenerator{result: deckResult()}, nil, zap.NewNop(), types.ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
