// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// The error taxonomy separates startup defects from per-request outcomes so
// the HTTP/CLI boundary can map each kind to a status code. Missing
// placeholder values and unresolvable logos are deliberately not errors:
// they degrade to literal tokens or blank shapes.

// ValidationError reports rejected request input. Boundary-level 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigError reports a startup-time defect: empty catalog, duplicate IDs,
// fewer entries than a selection needs, or an unreadable template. Fatal;
// aborts process startup rather than surfacing per request.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Reason
}

// FormatError reports a malformed ranking response. Recoverable: the
// selector retries once with a stricter instruction, then falls back to
// the heuristic. Never surfaced to the caller on its own.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "ranking response: " + e.Reason
}

// SelectionError means neither the ranking model nor the fallback could
// produce 4 distinct IDs. Boundary-level 500.
type SelectionError struct {
	Err error
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("selecting case studies: %v", e.Err)
}

func (e *SelectionError) Unwrap() error { return e.Err }

// UpstreamError means the ranking capability was unreachable or timed out
// while the fallback path is disabled. Boundary-level 502.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ranking service: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RenderError reports an unparseable template or a template missing a
// required slide group. A packaging defect, not transient; never retried.
// Boundary-level 500.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rendering template: %s: %v", e.Reason, e.Err)
	}
	return "rendering template: " + e.Reason
}

func (e *RenderError) Unwrap() error { return e.Err }
