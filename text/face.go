package text

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Face is a Source at a size with the rendering flags that change
// pixel output. Faces are small values; create them freely.
type Face struct {
	Source *Source

	// Size is the text size in points (at 72 DPI, pixels per em).
	Size float64

	// Hinting snaps glyph outlines to the pixel grid.
	Hinting bool

	// Antialias smooths glyph edges. When false, glyph coverage is
	// thresholded to fully opaque or fully transparent.
	Antialias bool
}

// Metrics describes the vertical extents of a face, in pixels,
// positive down from the baseline for Descent and up for Ascent.
type Metrics struct {
	Ascent  float64
	Descent float64
	Height  float64
}

func (f Face) source() *Source {
	if f.Source == nil {
		return Default()
	}
	return f.Source
}

func (f Face) fontHinting() font.Hinting {
	if f.Hinting {
		return font.HintingFull
	}
	return font.HintingNone
}

// Metrics returns the face's vertical metrics.
func (f Face) Metrics() Metrics {
	otFace, err := opentype.NewFace(f.source().ot, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: f.fontHinting(),
	})
	if err != nil {
		return Metrics{}
	}
	defer otFace.Close()

	m := otFace.Metrics()
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		Height:  fixedToFloat(m.Height),
	}
}

// Glyph is a rasterized glyph: an alpha mask with its bounds relative
// to the baseline origin and the horizontal advance in pixels.
type Glyph struct {
	Mask    *image.Alpha
	Bounds  image.Rectangle
	Advance float64
}

// RasterizeRune renders one rune of the face to an alpha mask. It is
// intended for backends that maintain their own glyph atlases; normal
// text drawing goes through DrawString and the package glyph cache.
// Returns nil when the face cannot produce the glyph.
func RasterizeRune(f Face, r rune) *Glyph {
	otFace, err := opentype.NewFace(f.source().ot, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: f.fontHinting(),
	})
	if err != nil {
		return nil
	}
	defer otFace.Close()

	bounds, advance, ok := otFace.GlyphBounds(r)
	if !ok {
		return nil
	}

	rect := image.Rect(
		int(bounds.Min.X)>>6,
		int(bounds.Min.Y)>>6,
		int(bounds.Max.X+63)>>6,
		int(bounds.Max.Y+63)>>6,
	)
	mask := image.NewAlpha(rect)

	// The mask rect is in baseline-origin coordinates, so drawing with
	// the dot at the origin lands the glyph exactly inside it.
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: otFace,
		Dot:  fixed.Point26_6{},
	}
	drawer.DrawString(string(r))

	if !f.Antialias {
		threshold(mask)
	}

	return &Glyph{Mask: mask, Bounds: rect, Advance: fixedToFloat(advance)}
}

// threshold hardens an antialiased mask to binary coverage.
func threshold(mask *image.Alpha) {
	for i, v := range mask.Pix {
		if v >= 128 {
			mask.Pix[i] = 255
		} else {
			mask.Pix[i] = 0
		}
	}
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// floatToFixed converts a float64 to fixed.Int26_6.
func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
