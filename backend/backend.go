// Package backend provides switchable offscreen rendering backends.
//
// A Backend turns width/height into a Canvas figures draw onto. One
// backend is current for the whole process; Switch selects it. The
// "image" backend (registered by this package) is a pure-Go raster
// canvas and is always available — it is the deterministic backend
// image-comparison tests require. Alternative backends (SVG, GPU) live
// in sub-packages and register themselves on import.
package backend

import (
	"image"
	"image/color"
)

// Point is a position in canvas pixel coordinates.
type Point struct {
	X, Y float64
}

// Canvas is an offscreen drawing target produced by a Backend.
//
// Canvases are not safe for concurrent use. Stroke widths are in
// pixels; text positions name the baseline origin of the first glyph.
type Canvas interface {
	// Clear fills the whole canvas with c.
	Clear(c color.Color)

	// FillRect fills an axis-aligned rectangle.
	FillRect(x, y, w, h float64, c color.Color)

	// StrokeLine strokes a single line segment.
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)

	// StrokePolyline strokes connected line segments through pts.
	StrokePolyline(pts []Point, width float64, c color.Color)

	// StrokeRect strokes the outline of an axis-aligned rectangle.
	StrokeRect(x, y, w, h, width float64, c color.Color)

	// DrawText draws s with its baseline origin at (x, y) at the given
	// size in points, honoring the rc hinting and antialias parameters.
	DrawText(s string, x, y, size float64, c color.Color)

	// DrawImage draws img with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y int)

	// Flush completes pending drawing. A no-op for CPU canvases.
	Flush() error

	// Snapshot returns a copy of the current pixels.
	Snapshot() *image.RGBA

	// Close releases canvas resources. Idempotent.
	Close() error
}

// Backend creates canvases and owns whatever process resources they
// share (fonts, GPU devices). Backends are long-lived: Init runs once
// when the backend first becomes current, Close when the process is
// done with it.
type Backend interface {
	// Name returns the backend identifier ("image", "svg", "gpu").
	Name() string

	// Available reports whether the backend can run on this system.
	// It must be cheap and must not allocate device resources.
	Available() bool

	// Init allocates backend resources. Called by Switch; idempotent.
	Init() error

	// NewCanvas creates a drawing target of the given pixel size.
	NewCanvas(width, height int) (Canvas, error)

	// ClearFontCache drops cached glyph or font state so hinting
	// configuration changes cannot leak into later renderings.
	ClearFontCache()

	// Close releases backend resources.
	Close()
}
