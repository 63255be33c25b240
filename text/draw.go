package text

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// shaperPool pools HarfbuzzShaper instances. A shaper has internal
// mutable state and is not safe for concurrent use, but reusing one
// across sequential calls avoids reallocating its buffers.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// positionedGlyph is one shaped glyph ready to rasterize: the rune it
// covers and its pen position relative to the string origin.
type positionedGlyph struct {
	r       rune
	x, y    float64
	advance float64
}

// shape runs HarfBuzz shaping over s and returns positioned glyphs.
// Shaping resolves kerning and ligature advances, so label widths
// match what a full text stack would produce.
func shape(s string, f Face) []positionedGlyph {
	if s == "" {
		return nil
	}

	runes := []rune(s)

	// gotext.Face is not safe for concurrent use; wrap the shared
	// read-only Font per call. NewFace is cheap.
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gotext.NewFace(f.source().shaped),
		Size:      floatToFixed(f.Size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	shaperPool.Put(shaper)

	out := make([]positionedGlyph, 0, len(output.Glyphs))
	var x, y float64
	for _, g := range output.Glyphs {
		idx := g.TextIndex()
		if idx < 0 || idx >= len(runes) {
			continue
		}
		adv := fixedToFloat(g.Advance)
		out = append(out, positionedGlyph{
			r:       runes[idx],
			x:       x + fixedToFloat(g.XOffset),
			y:       y + fixedToFloat(g.YOffset),
			advance: adv,
		})
		x += adv
	}
	return out
}

// detectScript returns the script of the first non-space rune, which
// is what the shaper needs for glyph substitution. Mixed-script text
// should be split into runs by the caller.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// DrawString draws s onto dst with the baseline origin of the first
// glyph at (x, y). Glyph masks come from the glyph cache; hinting and
// antialiasing follow the face.
func DrawString(dst draw.Image, s string, x, y float64, f Face, col color.Color) {
	src := image.NewUniform(col)

	for _, pg := range shape(s, f) {
		key := glyphKey{
			family:    f.source().Name(),
			r:         pg.r,
			size:      f.Size,
			hinting:   f.Hinting,
			antialias: f.Antialias,
		}
		glyph := glyphCache.GetOrCreate(key, func() *Glyph {
			return RasterizeRune(f, pg.r)
		})
		if glyph == nil || glyph.Mask == nil {
			continue
		}

		// Glyph bounds are baseline-relative; shift them under the pen.
		offset := image.Pt(
			int(math.Round(x+pg.x)),
			int(math.Round(y+pg.y)),
		)
		rect := glyph.Bounds.Add(offset)
		draw.DrawMask(dst, rect, src, image.Point{}, glyph.Mask, glyph.Bounds.Min, draw.Over)
	}
}

// Measure returns the advance width of s in pixels, from the measure
// cache when possible.
func Measure(s string, f Face) float64 {
	key := measureKey{
		family:  f.source().Name(),
		size:    f.Size,
		hinting: f.Hinting,
		text:    s,
	}
	return measureCache.GetOrCreate(key, func() float64 {
		var w float64
		for _, pg := range shape(s, f) {
			w += pg.advance
		}
		return w
	})
}
