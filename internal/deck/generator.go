// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package deck orchestrates a generation request: it runs the relevance
// selection, maps the picks onto the template's placeholder tokens, and
// renders the final presentation bytes.
package deck

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/casedeck/pkg/types"
)

// Engine renders a presentation from a placeholder map.
type Engine interface {
	Render(ptype types.PresentationType, values types.PlaceholderMap) ([]byte, error)
}

// CaseSelector produces the ordered four-case selection for a profile.
type CaseSelector interface {
	Select(ctx context.Context, profile types.CompanyProfile, w io.Writer) (*types.SelectionResult, error)
}

// LogoSource resolves an organization name to embeddable image bytes.
// ok=false means no logo; generation continues with a blank shape.
type LogoSource interface {
	Render(org string) (data []byte, format string, ok bool)
}

// Generator wires the selector, template engine, logo store, and token
// table into the end-to-end generation flow.
type Generator struct {
	engine   Engine
	selector CaseSelector
	logos    LogoSource
	tokens   *TokenTable

	// Now stamps the generation; overridable in tests.
	Now func() time.Time
}

// Result is one completed generation.
type Result struct {
	// Data is the finished .pptx.
	Data []byte

	// Filename is the suggested download name.
	Filename string

	// Selection records which case studies were chosen and by which path.
	Selection types.SelectionResult

	// GeneratedAt is the single timestamp used for both the filename and
	// the generation_date placeholder.
	GeneratedAt time.Time
}

// New builds a Generator. A nil tokens table uses the embedded default.
func New(engine Engine, sel CaseSelector, logos LogoSource, tokens *TokenTable) *Generator {
	if tokens == nil {
		tokens = DefaultTokenTable()
	}
	return &Generator{
		engine:   engine,
		selector: sel,
		logos:    logos,
		tokens:   tokens,
		Now:      time.Now,
	}
}

// Generate runs one request end to end. The selection always carries four
// case studies; the presentation type only controls which slide group of
// the template survives. Progress lines go to w.
func (g *Generator) Generate(ctx context.Context, profile types.CompanyProfile, ptype types.PresentationType, w io.Writer) (*Result, error) {
	if w == nil {
		w = io.Discard
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := ptype.Validate(); err != nil {
		return nil, err
	}

	sel, err := g.selector.Select(ctx, profile, w)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Selected case studies (%s): %s\n", sel.Source, strings.Join(sel.IDs, ", "))

	at := g.Now()
	values := g.buildPlaceholders(profile, sel, at)

	fmt.Fprintf(w, "Rendering %s deck...\n", ptype.FilenameSuffix())
	data, err := g.engine.Render(ptype, values)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    Filename(profile.Name, ptype, at),
		Selection:   *sel,
		GeneratedAt: at,
	}, nil
}

// maxFilenameBase caps the sanitized company-name portion of a filename.
const maxFilenameBase = 50

// Filename derives the download name: the lowercased company name with
// punctuation stripped and runs of spaces, hyphens, and underscores
// collapsed to a single underscore, capped at 50 characters, then the
// slide-subset suffix and the generation timestamp.
func Filename(company string, ptype types.PresentationType, at time.Time) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(strings.TrimSpace(company)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			sep = true
		}
	}
	name := []rune(b.String())
	if len(name) > maxFilenameBase {
		name = name[:maxFilenameBase]
		for len(name) > 0 && name[len(name)-1] == '_' {
			name = name[:len(name)-1]
		}
	}
	return fmt.Sprintf("%s_%s_%s.pptx", string(name), ptype.FilenameSuffix(), at.Format("20060102_150405"))
}
