// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for casedeck: catalog
// records, request inputs, selection results, and configuration.
package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sector categorizes a case study into one of the fixed industry buckets.
type Sector string

const (
	SectorInfrastructure Sector = "infrastructure"
	SectorLogistics      Sector = "logistics"
	SectorMedia          Sector = "media"
	SectorRetail         Sector = "retail"
	SectorHealthcare     Sector = "healthcare"
	SectorFinancial      Sector = "financial"
	SectorTechnology     Sector = "technology"
	SectorPublicSector   Sector = "public-sector"
)

// ValidSectors is the set of accepted Sector values.
var ValidSectors = map[Sector]bool{
	SectorInfrastructure: true,
	SectorLogistics:      true,
	SectorMedia:          true,
	SectorRetail:         true,
	SectorHealthcare:     true,
	SectorFinancial:      true,
	SectorTechnology:     true,
	SectorPublicSector:   true,
}

// Metric is one headline figure on a case study card, e.g. {"320", "Hours Saved"}.
type Metric struct {
	// Value is the displayed number or figure (e.g. "320", "x2.5", "-80%").
	Value string `json:"value" yaml:"value"`

	// Label describes the figure (e.g. "Hours Saved per Month").
	Label string `json:"label" yaml:"label"`
}

// CaseStudy is one pre-authored catalog entry eligible for selection.
type CaseStudy struct {
	// ID is a stable identifier unique across the catalog.
	ID string `json:"id" yaml:"id"`

	// Organization is the client's display name.
	Organization string `json:"organization" yaml:"organization"`

	// Title is the engagement headline shown on the slide.
	Title string `json:"title" yaml:"title"`

	// Sector is the industry bucket, one of ValidSectors.
	Sector Sector `json:"sector" yaml:"sector"`

	// Challenge, Solution, and Impact are free-text narrative blocks.
	Challenge string `json:"challenge" yaml:"challenge"`
	Solution  string `json:"solution" yaml:"solution"`
	Impact    string `json:"impact" yaml:"impact"`

	// Metrics holds 1-4 headline figures in display order.
	Metrics []Metric `json:"metrics" yaml:"metrics"`

	// LogoRef optionally names a logo asset; resolved against the asset
	// store at render time, never sent to the ranking model.
	LogoRef string `json:"logo,omitempty" yaml:"logo,omitempty"`

	// Summary is the short ranking-prompt text for this entry.
	Summary string `json:"summary" yaml:"summary"`
}

// Profile bounds enforced before any selection runs.
const (
	MaxNameLength        = 200
	MinDescriptionLength = 10
	MaxDescriptionLength = 2000
)

// CompanyProfile is the request input: who the deck is for.
type CompanyProfile struct {
	// Name is the target company's name.
	Name string `json:"company_name" yaml:"company_name"`

	// Description is free text about the company, used as ranking signal.
	Description string `json:"company_description" yaml:"company_description"`
}

// Validate trims both fields and enforces length bounds. Bounds count
// runes, not bytes, so accented names are not penalized. A profile that
// fails here must never reach the selector.
func (p *CompanyProfile) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)

	if p.Name == "" {
		return &ValidationError{Field: "company_name", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return &ValidationError{Field: "company_name", Reason: fmt.Sprintf("longer than %d characters", MaxNameLength)}
	}
	if n := utf8.RuneCountInString(p.Description); n < MinDescriptionLength {
		return &ValidationError{Field: "company_description", Reason: fmt.Sprintf("shorter than %d characters", MinDescriptionLength)}
	} else if n > MaxDescriptionLength {
		return &ValidationError{Field: "company_description", Reason: fmt.Sprintf("longer than %d characters", MaxDescriptionLength)}
	}
	return nil
}

// SelectionSource records which path produced a selection.
type SelectionSource string

const (
	SourceModel    SelectionSource = "model"
	SourceFallback SelectionSource = "fallback"
)

// SelectionResult is an ordered choice of exactly 4 distinct case studies,
// most relevant first. Request-scoped; discarded after placeholder mapping.
type SelectionResult struct {
	// IDs are the chosen catalog IDs in relevance order.
	IDs []string `json:"ids" yaml:"ids"`

	// Cases are the resolved records, parallel to IDs.
	Cases []CaseStudy `json:"-" yaml:"-"`

	// Source identifies the ranking path that produced the result.
	Source SelectionSource `json:"source" yaml:"source"`
}

// SelectionSize is the number of case studies every selection carries,
// regardless of how many the chosen slide group displays.
const SelectionSize = 4
