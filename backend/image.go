package backend

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/gofig/figtest/rc"
	"github.com/gofig/figtest/text"
)

// imageBackend is the pure-Go offscreen raster backend. It has no
// system dependencies and renders identically everywhere, which makes
// it the backend pixel comparisons run on.
type imageBackend struct{}

func init() {
	Register("image", func() Backend { return &imageBackend{} })
}

func (*imageBackend) Name() string    { return "image" }
func (*imageBackend) Available() bool { return true }
func (*imageBackend) Init() error     { return nil }
func (*imageBackend) Close()          {}

// ClearFontCache drops the rasterized glyph masks. Glyphs are hinted
// at rasterization time, so masks cached under one hinting setting
// must not survive into a test that uses another.
func (*imageBackend) ClearFontCache() {
	text.ClearGlyphCache()
}

func (*imageBackend) NewCanvas(width, height int) (Canvas, error) {
	return NewRasterCanvas(width, height)
}

// RasterCanvas draws onto an in-memory RGBA image. Shapes go through
// the x/image/vector rasterizer for antialiased coverage; text goes
// through the text package, which honors the rc hinting and antialias
// parameters.
//
// RasterCanvas is exported so other backends can reuse the CPU raster
// path while layering their own resources (the GPU backend draws onto
// a RasterCanvas and mirrors it into device textures).
type RasterCanvas struct {
	img    *image.RGBA
	closed bool
}

// NewRasterCanvas creates a CPU raster canvas of the given pixel size.
func NewRasterCanvas(width, height int) (*RasterCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("backend: invalid canvas size %dx%d", width, height)
	}
	return &RasterCanvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// RGBA returns the live pixel buffer the canvas draws onto.
func (c *RasterCanvas) RGBA() *image.RGBA { return c.img }

func (c *RasterCanvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// fillPath rasterizes the path accumulated in r over the canvas.
func (c *RasterCanvas) fillPath(r *vector.Rasterizer, col color.Color) {
	r.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
}

func (c *RasterCanvas) FillRect(x, y, w, h float64, col color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r := vector.NewRasterizer(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	r.MoveTo(float32(x), float32(y))
	r.LineTo(float32(x+w), float32(y))
	r.LineTo(float32(x+w), float32(y+h))
	r.LineTo(float32(x), float32(y+h))
	r.ClosePath()
	c.fillPath(r, col)
}

// appendSegment adds the quad covering a stroked segment to r.
func appendSegment(r *vector.Rasterizer, x0, y0, x1, y1, width float64) {
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// Perpendicular half-width offset.
	px := -dy / length * width / 2
	py := dx / length * width / 2

	r.MoveTo(float32(x0+px), float32(y0+py))
	r.LineTo(float32(x1+px), float32(y1+py))
	r.LineTo(float32(x1-px), float32(y1-py))
	r.LineTo(float32(x0-px), float32(y0-py))
	r.ClosePath()
}

func (c *RasterCanvas) StrokeLine(x0, y0, x1, y1, width float64, col color.Color) {
	if width <= 0 {
		width = rc.GetFloat(rc.LineWidth)
	}
	r := vector.NewRasterizer(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	appendSegment(r, x0, y0, x1, y1, width)
	c.fillPath(r, col)
}

func (c *RasterCanvas) StrokePolyline(pts []Point, width float64, col color.Color) {
	if len(pts) < 2 {
		return
	}
	if width <= 0 {
		width = rc.GetFloat(rc.LineWidth)
	}
	// One rasterizer for the whole polyline: overlapping joint quads
	// accumulate into a single coverage pass instead of double-blending.
	r := vector.NewRasterizer(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	for i := 1; i < len(pts); i++ {
		appendSegment(r, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width)
	}
	c.fillPath(r, col)
}

func (c *RasterCanvas) StrokeRect(x, y, w, h, width float64, col color.Color) {
	c.StrokePolyline([]Point{
		{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}, {x, y},
	}, width, col)
}

func (c *RasterCanvas) DrawText(s string, x, y, size float64, col color.Color) {
	if s == "" {
		return
	}
	src, err := text.Lookup(rc.GetString(rc.FontFamily))
	if err != nil {
		// Unknown family configured; fall back to the embedded default
		// rather than dropping the label.
		src = text.Default()
	}
	face := text.Face{
		Source:    src,
		Size:      size,
		Hinting:   rc.GetBool(rc.TextHinting),
		Antialias: rc.GetBool(rc.TextAntialias),
	}
	text.DrawString(c.img, s, x, y, face, col)
}

func (c *RasterCanvas) DrawImage(img image.Image, x, y int) {
	b := img.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, dst, img, b.Min, draw.Over)
}

func (c *RasterCanvas) Flush() error { return nil }

func (c *RasterCanvas) Snapshot() *image.RGBA {
	out := image.NewRGBA(c.img.Bounds())
	copy(out.Pix, c.img.Pix)
	return out
}

func (c *RasterCanvas) Close() error {
	c.closed = true
	return nil
}
