// Package figure provides offscreen figures and the process-global
// registry of open ones.
//
// A Figure records draw operations; Render plays them onto a canvas
// from the current backend, so the same figure produces pixels from
// whichever backend is active. New registers the figure open and
// Close/CloseAll retire it; the comparison harness uses Fignums to
// detect figures leaked by a test that skipped cleanup.
package figure

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/gofig/figtest/backend"
	"github.com/gofig/figtest/rc"
)

// op is one recorded draw operation, played back onto a canvas.
type op func(c backend.Canvas)

// Figure is an offscreen drawing target. Drawing methods record
// operations; Render replays them. Figures are not safe for
// concurrent use.
type Figure struct {
	num        int
	width      int
	height     int
	dpi        float64
	background color.Color
	ops        []op
}

// New creates a figure of the given pixel size, registers it open,
// and assigns it the next figure number. DPI and background come from
// the rc parameters at creation time.
func New(width, height int) *Figure {
	f := &Figure{
		width:      width,
		height:     height,
		dpi:        rc.GetFloat(rc.DPI),
		background: parseHexColor(rc.GetString(rc.Background)),
	}
	f.num = register(f)
	return f
}

// Number returns the figure's registry number.
func (f *Figure) Number() int { return f.num }

// Width returns the figure width in pixels.
func (f *Figure) Width() int { return f.width }

// Height returns the figure height in pixels.
func (f *Figure) Height() int { return f.height }

// DPI returns the figure resolution captured at creation.
func (f *Figure) DPI() float64 { return f.dpi }

// Clear drops all recorded operations.
func (f *Figure) Clear() {
	f.ops = nil
}

// FillRect records a filled axis-aligned rectangle.
func (f *Figure) FillRect(x, y, w, h float64, c color.Color) {
	f.ops = append(f.ops, func(cv backend.Canvas) { cv.FillRect(x, y, w, h, c) })
}

// Line records a stroked line segment. A width of 0 uses rc.LineWidth.
func (f *Figure) Line(x0, y0, x1, y1, width float64, c color.Color) {
	f.ops = append(f.ops, func(cv backend.Canvas) { cv.StrokeLine(x0, y0, x1, y1, width, c) })
}

// Polyline records connected stroked segments through pts.
func (f *Figure) Polyline(pts []backend.Point, width float64, c color.Color) {
	copied := make([]backend.Point, len(pts))
	copy(copied, pts)
	f.ops = append(f.ops, func(cv backend.Canvas) { cv.StrokePolyline(copied, width, c) })
}

// Rect records a stroked rectangle outline.
func (f *Figure) Rect(x, y, w, h, width float64, c color.Color) {
	f.ops = append(f.ops, func(cv backend.Canvas) { cv.StrokeRect(x, y, w, h, width, c) })
}

// Text records a text label with its baseline origin at (x, y).
// A size of 0 uses rc.FontSize.
func (f *Figure) Text(s string, x, y, size float64, c color.Color) {
	f.ops = append(f.ops, func(cv backend.Canvas) {
		if size <= 0 {
			size = rc.GetFloat(rc.FontSize)
		}
		cv.DrawText(s, x, y, size, c)
	})
}

// Image records drawing img with its top-left corner at (x, y).
func (f *Figure) Image(img image.Image, x, y int) {
	f.ops = append(f.ops, func(cv backend.Canvas) { cv.DrawImage(img, x, y) })
}

// Render plays the recorded operations onto a fresh canvas from the
// current backend and returns the pixels. The figure itself is not
// consumed; rendering twice produces identical images.
func (f *Figure) Render() (*image.RGBA, error) {
	b := backend.Current()
	if b == nil {
		return nil, backend.ErrNoBackend
	}

	canvas, err := b.NewCanvas(f.width, f.height)
	if err != nil {
		return nil, fmt.Errorf("figure: new canvas: %w", err)
	}
	defer canvas.Close()

	canvas.Clear(f.background)
	for _, o := range f.ops {
		o(canvas)
	}
	if err := canvas.Flush(); err != nil {
		return nil, fmt.Errorf("figure: flush: %w", err)
	}
	return canvas.Snapshot(), nil
}

// SavePNG renders the figure and writes it as a PNG file.
func (f *Figure) SavePNG(path string) error {
	img, err := f.Render()
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("figure: create %q: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("figure: encode %q: %w", path, err)
	}
	return file.Close()
}

// Close unregisters the figure. Idempotent.
func (f *Figure) Close() {
	unregister(f.num)
}

// parseHexColor parses "#RRGGBB" or "#RGB". Anything unparseable
// yields white, the default figure background.
func parseHexColor(s string) color.Color {
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return color.White
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return color.White
		}
		r *= 17
		g *= 17
		b *= 17
	default:
		return color.White
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
