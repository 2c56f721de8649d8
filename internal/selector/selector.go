// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector chooses the 4 catalog entries most relevant to a
// company profile. The primary path delegates ranking to a generative AI
// model; a deterministic keyword-overlap heuristic takes over when the
// model is unavailable or keeps returning invalid output.
package selector

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/casedeck/internal/catalog"
	"github.com/pdiddy/casedeck/pkg/types"
)

// Ranker abstracts the ranking model so tests can supply a mock. The
// prompt already carries the profile and catalog summaries; the model
// returns its pick of catalog ids, most relevant first.
type Ranker interface {
	Rank(ctx context.Context, prompt string) (RankResponse, error)
}

// RankResponse is the structured response expected from the model.
type RankResponse struct {
	Reasoning string   `json:"reasoning"`
	IDs       []string `json:"ids"`
}

const defaultTimeout = 10 * time.Second

// Selector runs the two-path selection against a fixed catalog.
type Selector struct {
	ranker Ranker
	store  *catalog.Store
	cfg    types.SelectorConfig
}

// New builds a Selector. A nil ranker forces the fallback path, which is
// how deployments without an API key run.
func New(ranker Ranker, store *catalog.Store, cfg types.SelectorConfig) *Selector {
	return &Selector{ranker: ranker, store: store, cfg: cfg}
}

// Select returns exactly 4 distinct case studies in relevance order.
// Progress notes go to w (model attempt, retry, fallback), matching the
// pipeline convention of narrating degradations without failing them.
func (s *Selector) Select(ctx context.Context, profile types.CompanyProfile, w io.Writer) (*types.SelectionResult, error) {
	if s.ranker != nil {
		if result, err := s.rankWithModel(ctx, profile, w); err == nil {
			return result, nil
		} else if s.cfg.DisableFallback {
			return nil, err
		} else {
			fmt.Fprintf(w, "ranking model unavailable, using fallback: %v\n", err)
		}
	} else if s.cfg.DisableFallback {
		return nil, &types.UpstreamError{Err: fmt.Errorf("no ranking backend configured")}
	}

	return s.fallback(profile)
}

// rankWithModel runs the delegated path: one call, then at most one retry
// with a stricter instruction when the response shape is invalid.
func (s *Selector) rankWithModel(ctx context.Context, profile types.CompanyProfile, w io.Writer) (*types.SelectionResult, error) {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt, err := buildPrompt(profile, s.store.All())
	if err != nil {
		return nil, fmt.Errorf("building ranking prompt: %w", err)
	}

	resp, err := s.ranker.Rank(ctx, prompt)
	if err != nil {
		return nil, &types.UpstreamError{Err: err}
	}

	result, verr := s.validate(resp)
	if verr == nil {
		return result, nil
	}

	// One retry with a stricter instruction; never re-parse the same
	// malformed output.
	fmt.Fprintf(w, "ranking response invalid, retrying once: %v\n", verr)
	resp, err = s.ranker.Rank(ctx, prompt+strictInstruction)
	if err != nil {
		return nil, &types.UpstreamError{Err: err}
	}
	result, verr = s.validate(resp)
	if verr == nil {
		return result, nil
	}
	return nil, &types.SelectionError{Err: verr}
}

// validate enforces the response contract: exactly 4 ids, every id in the
// catalog, pairwise distinct. Any violation is a recoverable FormatError.
func (s *Selector) validate(resp RankResponse) (*types.SelectionResult, error) {
	if len(resp.IDs) != types.SelectionSize {
		return nil, &types.FormatError{Reason: fmt.Sprintf("expected %d ids, got %d", types.SelectionSize, len(resp.IDs))}
	}
	seen := make(map[string]bool, types.SelectionSize)
	for _, id := range resp.IDs {
		if seen[id] {
			return nil, &types.FormatError{Reason: fmt.Sprintf("duplicate id %q", id)}
		}
		seen[id] = true
		if _, ok := s.store.Get(id); !ok {
			return nil, &types.FormatError{Reason: fmt.Sprintf("unknown id %q", id)}
		}
	}

	cases, err := s.store.Resolve(resp.IDs)
	if err != nil {
		return nil, &types.FormatError{Reason: err.Error()}
	}
	return &types.SelectionResult{IDs: resp.IDs, Cases: cases, Source: types.SourceModel}, nil
}

// fallback runs the deterministic heuristic. It cannot fail on a
// validated catalog, which always holds at least 4 entries.
func (s *Selector) fallback(profile types.CompanyProfile) (*types.SelectionResult, error) {
	ids := rankByOverlap(profile.Description, s.store.All())
	cases, err := s.store.Resolve(ids)
	if err != nil {
		return nil, &types.SelectionError{Err: err}
	}
	return &types.SelectionResult{IDs: ids, Cases: cases, Source: types.SourceFallback}, nil
}
