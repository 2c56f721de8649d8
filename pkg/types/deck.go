// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// PresentationType selects which slide group(s) of the template survive in
// the output: 1 = single-case slide, 2 = two-case slide, 4 = four-case
// overview, 0 = all groups in canonical order (4, 2, 1).
type PresentationType int

const (
	PresentationAll  PresentationType = 0
	PresentationOne  PresentationType = 1
	PresentationTwo  PresentationType = 2
	PresentationFour PresentationType = 4
)

// Validate rejects values outside {0, 1, 2, 4}.
func (t PresentationType) Validate() error {
	switch t {
	case PresentationAll, PresentationOne, PresentationTwo, PresentationFour:
		return nil
	}
	return &ValidationError{Field: "presentation_type", Reason: fmt.Sprintf("must be 0, 1, 2, or 4, got %d", int(t))}
}

// Cases returns how many of the 4 selected case studies the chosen slide
// group displays. PresentationAll shows all 4 on the overview group.
func (t PresentationType) Cases() int {
	if t == PresentationAll {
		return SelectionSize
	}
	return int(t)
}

// FilenameSuffix is the slide-selection part of a generated filename.
func (t PresentationType) FilenameSuffix() string {
	if t == PresentationAll {
		return "all-slides"
	}
	return fmt.Sprintf("%d-cases", int(t))
}

// ValueKind distinguishes text from image placeholder values.
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueImage
)

// PlaceholderValue is the substitution payload for one template token:
// either literal text or image bytes with a format hint.
type PlaceholderValue struct {
	Kind ValueKind

	// Text is the replacement string for ValueText.
	Text string

	// Image holds encoded PNG or JPEG bytes for ValueImage. Empty bytes
	// mean "resolved to nothing": the placeholder shape is blanked.
	Image []byte

	// ImageFormat is "png" or "jpeg" when Image is non-empty.
	ImageFormat string
}

// TextValue wraps a string as a PlaceholderValue.
func TextValue(s string) PlaceholderValue {
	return PlaceholderValue{Kind: ValueText, Text: s}
}

// ImageValue wraps encoded image bytes as a PlaceholderValue.
func ImageValue(data []byte, format string) PlaceholderValue {
	return PlaceholderValue{Kind: ValueImage, Image: data, ImageFormat: format}
}

// PlaceholderMap maps literal template token names to their substitution
// values. Built per request and consumed exactly once by the engine.
type PlaceholderMap map[string]PlaceholderValue

// SetText is a convenience for the common text case.
func (m PlaceholderMap) SetText(key, value string) {
	m[key] = TextValue(value)
}
