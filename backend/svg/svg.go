// Package svg provides a vector backend producing SVG documents.
//
// The SVG backend exists for artifact export, not for pixel
// comparison: Snapshot returns only the flat background, because
// faithful SVG rasterization is a renderer of its own and comparisons
// run on the deterministic "image" backend anyway. Canvases expose
// the generated document via Bytes.
//
// Importing the package registers the backend:
//
//	import _ "github.com/gofig/figtest/backend/svg"
package svg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gofig/figtest/backend"
	"github.com/gofig/figtest/rc"
	"github.com/gofig/figtest/text"
)

func init() {
	backend.Register("svg", func() backend.Backend { return New() })
}

// Backend is the SVG vector backend.
type Backend struct {
	// faces caches resolved font sources by family name, so repeated
	// labels do not re-run family lookup. This is the backend's font
	// cache; the harness clears it between tests.
	faces *text.Cache[string, *text.Source]
}

// New creates an SVG backend.
func New() *Backend {
	return &Backend{faces: text.NewCache[string, *text.Source](64)}
}

func (*Backend) Name() string    { return "svg" }
func (*Backend) Available() bool { return true }
func (*Backend) Init() error     { return nil }
func (*Backend) Close()          {}

// ClearFontCache drops the cached font source metadata.
func (b *Backend) ClearFontCache() {
	b.faces.Clear()
}

func (b *Backend) NewCanvas(width, height int) (backend.Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg: invalid canvas size %dx%d", width, height)
	}
	return &canvas{backend: b, width: width, height: height}, nil
}

// canvas accumulates SVG elements. Element order is draw order, which
// SVG renders back-to-front like the raster backends do.
type canvas struct {
	backend    *Backend
	width      int
	height     int
	background color.Color
	body       bytes.Buffer
}

// lookupSource resolves a font family through the backend face cache.
func (c *canvas) lookupSource(family string) *text.Source {
	return c.backend.faces.GetOrCreate(family, func() *text.Source {
		src, err := text.Lookup(family)
		if err != nil {
			return text.Default()
		}
		return src
	})
}

func (c *canvas) Clear(col color.Color) {
	c.background = col
	c.body.Reset()
}

func (c *canvas) FillRect(x, y, w, h float64, col color.Color) {
	fmt.Fprintf(&c.body,
		"  <rect x=%q y=%q width=%q height=%q fill=%q/>\n",
		coord(x), coord(y), coord(w), coord(h), hexColor(col))
}

func (c *canvas) StrokeLine(x0, y0, x1, y1, width float64, col color.Color) {
	if width <= 0 {
		width = rc.GetFloat(rc.LineWidth)
	}
	fmt.Fprintf(&c.body,
		"  <line x1=%q y1=%q x2=%q y2=%q stroke=%q stroke-width=%q/>\n",
		coord(x0), coord(y0), coord(x1), coord(y1), hexColor(col), coord(width))
}

func (c *canvas) StrokePolyline(pts []backend.Point, width float64, col color.Color) {
	if len(pts) < 2 {
		return
	}
	if width <= 0 {
		width = rc.GetFloat(rc.LineWidth)
	}
	var points bytes.Buffer
	for i, p := range pts {
		if i > 0 {
			points.WriteByte(' ')
		}
		fmt.Fprintf(&points, "%s,%s", coord(p.X), coord(p.Y))
	}
	fmt.Fprintf(&c.body,
		"  <polyline points=%q fill=\"none\" stroke=%q stroke-width=%q/>\n",
		points.String(), hexColor(col), coord(width))
}

func (c *canvas) StrokeRect(x, y, w, h, width float64, col color.Color) {
	if width <= 0 {
		width = rc.GetFloat(rc.LineWidth)
	}
	fmt.Fprintf(&c.body,
		"  <rect x=%q y=%q width=%q height=%q fill=\"none\" stroke=%q stroke-width=%q/>\n",
		coord(x), coord(y), coord(w), coord(h), hexColor(col), coord(width))
}

func (c *canvas) DrawText(s string, x, y, size float64, col color.Color) {
	if s == "" {
		return
	}
	family := rc.GetString(rc.FontFamily)
	src := c.lookupSource(family)

	// Record the measured width so consumers that cannot shape the
	// family themselves still get correct label bounds.
	width := text.Measure(s, text.Face{
		Source:  src,
		Size:    size,
		Hinting: rc.GetBool(rc.TextHinting),
	})

	fmt.Fprintf(&c.body,
		"  <text x=%q y=%q font-family=%q font-size=%q textLength=%q fill=%q>%s</text>\n",
		coord(x), coord(y), family, coord(size), coord(width), hexColor(col), escape(s))
}

func (c *canvas) DrawImage(img image.Image, x, y int) {
	// Raster content inside vector output would need base64 data URIs;
	// figure comparisons never route through SVG, so record a marker
	// rectangle with the image bounds instead.
	b := img.Bounds()
	fmt.Fprintf(&c.body,
		"  <!-- raster image %dx%d -->\n  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"#888888\"/>\n",
		b.Dx(), b.Dy(), x, y, b.Dx(), b.Dy())
}

func (c *canvas) Flush() error { return nil }

// Snapshot returns only the flat background. SVG output is not
// pixel-comparable; use Bytes for the document.
func (c *canvas) Snapshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	bg := c.background
	if bg == nil {
		bg = color.White
	}
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

func (c *canvas) Close() error { return nil }

// Bytes returns the complete SVG document for the canvas.
func (c *canvas) Bytes() []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out,
		"<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\">\n",
		c.width, c.height)
	if c.background != nil {
		fmt.Fprintf(&out,
			"  <rect width=\"100%%\" height=\"100%%\" fill=%q/>\n",
			hexColor(c.background))
	}
	out.Write(c.body.Bytes())
	out.WriteString("</svg>\n")
	return out.Bytes()
}

// coord formats a coordinate with trailing zeros trimmed.
func coord(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = trimRight(s, '0')
	return trimRight(s, '.')
}

func trimRight(s string, b byte) string {
	for len(s) > 0 && s[len(s)-1] == b {
		s = s[:len(s)-1]
	}
	return s
}

// hexColor formats a color as #rrggbb.
func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// escape substitutes the XML metacharacters in text content.
func escape(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			out.WriteString("&amp;")
		case '<':
			out.WriteString("&lt;")
		case '>':
			out.WriteString("&gt;")
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
