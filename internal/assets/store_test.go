// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
<rect x="0" y="0" width="100" height="50" fill="#1a73e8"/>
</svg>`

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func testAssetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme_corp.svg"), []byte(sampleSVG), 0o644))
	writePNG(t, filepath.Join(dir, "sword-health.png"), 64, 64)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	return dir
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "acmecorp"},
		{"acme_corp", "acmecorp"},
		{"Farmácias", "farmacias"},
		{"Câmara Municipal", "camaramunicipal"},
		{"24 horas", "24horas"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestResolve(t *testing.T) {
	store, err := NewStore(testAssetDir(t), SVGConverter{})
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	t.Run("exact case-insensitive match", func(t *testing.T) {
		path, ok := store.Resolve("Acme Corp")
		require.True(t, ok)
		assert.Equal(t, "acme_corp.svg", filepath.Base(path))
	})

	t.Run("partial match either direction", func(t *testing.T) {
		path, ok := store.Resolve("Sword Health Portugal")
		require.True(t, ok)
		assert.Equal(t, "sword-health.png", filepath.Base(path))

		path, ok = store.Resolve("Acme")
		require.True(t, ok)
		assert.Equal(t, "acme_corp.svg", filepath.Base(path))
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := store.Resolve("Unknown Org")
		assert.False(t, ok)
	})

	t.Run("empty name", func(t *testing.T) {
		_, ok := store.Resolve("   ")
		assert.False(t, ok)
	})
}

func TestRenderVector(t *testing.T) {
	store, err := NewStore(testAssetDir(t), SVGConverter{})
	require.NoError(t, err)

	data, format, ok := store.Render("Acme Corp")
	require.True(t, ok)
	assert.Equal(t, "png", format)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	assert.LessOrEqual(t, b.Dx(), VectorTargetPx)
	assert.LessOrEqual(t, b.Dy(), VectorTargetPx)
	// The 2:1 viewBox fits the 200x200 target at full width.
	assert.Equal(t, VectorTargetPx, b.Dx())
}

func TestRenderRasterPassthrough(t *testing.T) {
	store, err := NewStore(testAssetDir(t), SVGConverter{})
	require.NoError(t, err)

	data, format, ok := store.Render("Sword Health")
	require.True(t, ok)
	assert.Equal(t, "png", format)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestRenderOversizedRasterIsDownscaled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bigcorp.png"), 2048, 1024)
	store, err := NewStore(dir, nil)
	require.NoError(t, err)

	data, _, ok := store.Render("BigCorp")
	require.True(t, ok)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, maxRasterDim, img.Bounds().Dx())
	assert.Equal(t, maxRasterDim/2, img.Bounds().Dy())
}

func TestRenderDegradations(t *testing.T) {
	t.Run("no matching asset", func(t *testing.T) {
		store, err := NewStore(testAssetDir(t), SVGConverter{})
		require.NoError(t, err)
		_, _, ok := store.Render("Unknown Org")
		assert.False(t, ok)
	})

	t.Run("broken svg is a miss, not an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.svg"), []byte("<svg"), 0o644))
		store, err := NewStore(dir, SVGConverter{})
		require.NoError(t, err)
		_, _, ok := store.Render("Broken")
		assert.False(t, ok)
	})

	t.Run("vector without converter is a miss", func(t *testing.T) {
		store, err := NewStore(testAssetDir(t), nil)
		require.NoError(t, err)
		_, _, ok := store.Render("Acme Corp")
		assert.False(t, ok)
	})

	t.Run("missing assets dir is an empty store", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "nope"), SVGConverter{})
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
	})
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name                   string
		srcW, srcH, boxW, boxH float64
		wantW, wantH           float64
		wantX, wantY           float64
	}{
		{"wide source letterboxes", 200, 100, 100, 100, 100, 50, 0, 25},
		{"tall source pillarboxes", 100, 200, 100, 100, 50, 100, 25, 0},
		{"exact fit", 100, 100, 100, 100, 100, 100, 0, 0},
		{"upscales small source", 10, 10, 100, 100, 100, 100, 0, 0},
		{"degenerate source", 0, 100, 100, 100, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, x, y := FitRect(tt.srcW, tt.srcH, tt.boxW, tt.boxH)
			assert.InDelta(t, tt.wantW, w, 0.01)
			assert.InDelta(t, tt.wantH, h, 0.01)
			assert.InDelta(t, tt.wantX, x, 0.01)
			assert.InDelta(t, tt.wantY, y, 0.01)
		})
	}
}
