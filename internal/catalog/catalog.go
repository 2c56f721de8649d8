// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads and validates the case-study catalog from its
// tabular source and exposes it as an immutable in-memory store.
package catalog

import (
	"fmt"

	"github.com/pdiddy/casedeck/pkg/types"
)

// Store is the read-only case-study collection, order-stable from the
// source file. Safe for unlimited concurrent readers after construction.
type Store struct {
	cases []types.CaseStudy
	byID  map[string]int
}

// New validates records and builds a Store. Violations are configuration
// defects: the caller aborts startup rather than serving requests.
func New(records []types.CaseStudy) (*Store, error) {
	if len(records) == 0 {
		return nil, &types.ConfigError{Reason: "catalog is empty"}
	}
	if len(records) < types.SelectionSize {
		return nil, &types.ConfigError{
			Reason: fmt.Sprintf("catalog has %d entries, need at least %d", len(records), types.SelectionSize),
		}
	}

	byID := make(map[string]int, len(records))
	for i, cs := range records {
		if cs.ID == "" {
			return nil, &types.ConfigError{Reason: fmt.Sprintf("entry %d has empty id", i)}
		}
		if prev, dup := byID[cs.ID]; dup {
			return nil, &types.ConfigError{Reason: fmt.Sprintf("duplicate id %q (entries %d and %d)", cs.ID, prev, i)}
		}
		if cs.Organization == "" {
			return nil, &types.ConfigError{Reason: fmt.Sprintf("entry %q has empty organization", cs.ID)}
		}
		if !types.ValidSectors[cs.Sector] {
			return nil, &types.ConfigError{Reason: fmt.Sprintf("entry %q has unknown sector %q", cs.ID, cs.Sector)}
		}
		if n := len(cs.Metrics); n < 1 || n > 4 {
			return nil, &types.ConfigError{Reason: fmt.Sprintf("entry %q has %d metrics, want 1-4", cs.ID, n)}
		}
		byID[cs.ID] = i
	}

	cases := make([]types.CaseStudy, len(records))
	copy(cases, records)
	return &Store{cases: cases, byID: byID}, nil
}

// Len returns the number of catalog entries.
func (s *Store) Len() int { return len(s.cases) }

// All returns the entries in source order. The slice is a copy; the store
// itself is never mutated.
func (s *Store) All() []types.CaseStudy {
	out := make([]types.CaseStudy, len(s.cases))
	copy(out, s.cases)
	return out
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (types.CaseStudy, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.CaseStudy{}, false
	}
	return s.cases[i], true
}

// Resolve maps ids to records, preserving order. Unknown ids are an error;
// selector validation should have rejected them already.
func (s *Store) Resolve(ids []string) ([]types.CaseStudy, error) {
	out := make([]types.CaseStudy, 0, len(ids))
	for _, id := range ids {
		cs, ok := s.Get(id)
		if !ok {
			return nil, fmt.Errorf("unknown case study id %q", id)
		}
		out = append(out, cs)
	}
	return out, nil
}
