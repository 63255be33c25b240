package backend

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func newTestCanvas(t *testing.T, w, h int) *RasterCanvas {
	t.Helper()
	c, err := NewRasterCanvas(w, h)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFillRectPixels(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	c.Clear(color.White)
	c.FillRect(4, 4, 8, 8, color.RGBA{R: 255, A: 255})

	// Interior is solid red, exterior stays white. Pixels on the
	// rectangle edge are antialiased and not asserted.
	if got := c.RGBA().RGBAAt(8, 8); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("interior pixel = %v, want solid red", got)
	}
	if got := c.RGBA().RGBAAt(1, 1); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("exterior pixel = %v, want white", got)
	}
}

func TestFillRectDegenerate(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	c.Clear(color.White)
	c.FillRect(2, 2, 0, 4, color.Black)
	c.FillRect(2, 2, 4, -1, color.Black)

	if got := c.RGBA().RGBAAt(3, 3); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("degenerate fill touched pixel: %v", got)
	}
}

func TestStrokeLineCoversPath(t *testing.T) {
	c := newTestCanvas(t, 16, 16)
	c.Clear(color.White)
	c.StrokeLine(0, 8, 16, 8, 4, color.Black)

	// The center of a 4px horizontal stroke is fully covered.
	if got := c.RGBA().RGBAAt(8, 8); got != (color.RGBA{A: 255}) {
		t.Errorf("stroke center = %v, want solid black", got)
	}
	if got := c.RGBA().RGBAAt(8, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel off the stroke = %v, want white", got)
	}
}

func TestStrokePolylineShortInput(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	c.Clear(color.White)
	c.StrokePolyline(nil, 1, color.Black)
	c.StrokePolyline([]Point{{4, 4}}, 1, color.Black)

	if got := c.RGBA().RGBAAt(4, 4); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("short polyline touched pixel: %v", got)
	}
}

func TestDrawImageComposites(t *testing.T) {
	c := newTestCanvas(t, 8, 8)
	c.Clear(color.White)

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	c.DrawImage(src, 3, 3)

	if got := c.RGBA().RGBAAt(3, 3); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("composited pixel = %v, want green", got)
	}
}

func TestDrawTextRendersGlyphs(t *testing.T) {
	c := newTestCanvas(t, 64, 32)
	c.Clear(color.White)
	c.DrawText("Ag", 4, 24, 16, color.Black)

	inked := 0
	img := c.RGBA()
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			px := img.RGBAAt(x, y)
			if px.R != 255 || px.G != 255 || px.B != 255 {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("DrawText left the canvas blank")
	}
}

func TestCanvasDeterministic(t *testing.T) {
	render := func() *image.RGBA {
		c := newTestCanvas(t, 48, 32)
		c.Clear(color.White)
		c.FillRect(2, 2, 20, 10, color.RGBA{B: 200, A: 255})
		c.StrokePolyline([]Point{{2, 28}, {16, 10}, {30, 20}, {44, 6}}, 2, color.Black)
		c.DrawText("x", 4, 26, 12, color.Black)
		if err := c.Flush(); err != nil {
			t.Fatalf("Flush() = %v", err)
		}
		return c.Snapshot()
	}

	a, b := render(), render()
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("identical draw sequences produced different pixels")
	}
}
