// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// VectorTargetPx is the fixed raster resolution for converted vector
// logos, in logical pixels per side.
const VectorTargetPx = 200

// maxRasterDim caps embedded raster logos; larger sources are downscaled
// so decks stay small.
const maxRasterDim = 512

// Converter rasterizes a vector image. The production implementation is
// in-process; a nil converter means vector assets resolve to nothing.
type Converter interface {
	// Rasterize renders SVG bytes into a PNG of at most w x h pixels,
	// preserving the drawing's aspect ratio.
	Rasterize(svg []byte, w, h int) ([]byte, error)
}

// SVGConverter rasterizes SVGs with oksvg and rasterx.
type SVGConverter struct{}

// Rasterize implements Converter.
func (SVGConverter) Rasterize(svg []byte, w, h int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		return nil, fmt.Errorf("svg has no usable viewbox")
	}

	fitW, fitH, _, _ := FitRect(vw, vh, float64(w), float64(h))
	outW, outH := int(fitW), int(fitH)
	if outW < 1 || outH < 1 {
		return nil, fmt.Errorf("svg fit collapsed to zero size")
	}

	icon.SetTarget(0, 0, float64(outW), float64(outH))
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(outW, outH, scanner), 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeRaster re-encodes oversized raster logos down to maxRasterDim.
// Images already within bounds pass through untouched.
func normalizeRaster(raw []byte, format string) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", format, err)
	}

	b := img.Bounds()
	if b.Dx() <= maxRasterDim && b.Dy() <= maxRasterDim {
		return raw, format, nil
	}

	fitW, fitH, _, _ := FitRect(float64(b.Dx()), float64(b.Dy()), maxRasterDim, maxRasterDim)
	dst := image.NewRGBA(image.Rect(0, 0, int(fitW), int(fitH)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	default:
		format = "png"
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, "", fmt.Errorf("re-encoding %s: %w", format, err)
	}
	return buf.Bytes(), format, nil
}

// FitRect scales a source rectangle to fit inside a box preserving aspect
// ratio, centered, never stretched. Returns the fitted size and offsets.
func FitRect(srcW, srcH, boxW, boxH float64) (w, h, offX, offY float64) {
	if srcW <= 0 || srcH <= 0 || boxW <= 0 || boxH <= 0 {
		return 0, 0, 0, 0
	}
	scale := boxW / srcW
	if s := boxH / srcH; s < scale {
		scale = s
	}
	w = srcW * scale
	h = srcH * scale
	offX = (boxW - w) / 2
	offY = (boxH - h) / 2
	return w, h, offX, offY
}
