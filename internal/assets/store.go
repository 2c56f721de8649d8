// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assets resolves organization names to logo images. Lookups are
// tolerant (case, diacritics, punctuation) and every failure mode
// degrades to "no logo" rather than an error: a missing or broken logo
// must never abort deck generation.
package assets

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// rasterExts are embedded directly; .svg goes through the converter.
var rasterExts = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
}

// asset is one discovered logo file.
type asset struct {
	path string
	ext  string
	key  string // normalized file stem
}

// Store is a read-only index of logo files in a directory, keyed by
// normalized file stem. Built once at startup.
type Store struct {
	assets    []asset
	converter Converter
}

// NewStore scans dir for .svg/.png/.jpg/.jpeg files. A missing directory
// yields an empty store: logos are optional everywhere.
func NewStore(dir string, converter Converter) (*Store, error) {
	s := &Store{converter: converter}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, raster := rasterExts[ext]; !raster && ext != ".svg" {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		s.assets = append(s.assets, asset{
			path: filepath.Join(dir, entry.Name()),
			ext:  ext,
			key:  Normalize(stem),
		})
	}
	return s, nil
}

// Len returns the number of indexed assets.
func (s *Store) Len() int { return len(s.assets) }

// Resolve finds the asset for an organization name. Resolution order:
// exact normalized match, then partial match (substring either way).
// A miss returns ok=false, never an error.
func (s *Store) Resolve(org string) (string, bool) {
	key := Normalize(org)
	if key == "" {
		return "", false
	}

	for _, a := range s.assets {
		if a.key == key {
			return a.path, true
		}
	}
	for _, a := range s.assets {
		if a.key == "" {
			continue
		}
		if strings.Contains(a.key, key) || strings.Contains(key, a.key) {
			return a.path, true
		}
	}
	return "", false
}

// Render resolves an organization's logo and returns embeddable image
// bytes with their format ("png" or "jpeg"). ok=false means no logo:
// no matching asset, an unreadable file, or a failed SVG conversion.
func (s *Store) Render(org string) (data []byte, format string, ok bool) {
	path, found := s.Resolve(org)
	if !found {
		return nil, "", false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", false
	}

	ext := strings.ToLower(filepath.Ext(path))
	if format, isRaster := rasterExts[ext]; isRaster {
		out, outFormat, err := normalizeRaster(raw, format)
		if err != nil {
			return nil, "", false
		}
		return out, outFormat, true
	}

	if s.converter == nil {
		return nil, "", false
	}
	png, err := s.converter.Rasterize(raw, VectorTargetPx, VectorTargetPx)
	if err != nil {
		return nil, "", false
	}
	return png, "png", true
}

// Normalize folds case and diacritics and strips everything but letters
// and digits, so "Acme Corp" matches "acme_corp.svg".
func Normalize(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
