package text

// glyphKey identifies a rasterized glyph mask. Hinting and antialias
// state are part of the key: the same rune at the same size produces
// different pixels under different settings.
type glyphKey struct {
	family    string
	r         rune
	size      float64
	hinting   bool
	antialias bool
}

// measureKey identifies a measured string width. Antialiasing does not
// move advances, so it is not part of the key; hinting is.
type measureKey struct {
	family  string
	size    float64
	hinting bool
	text    string
}

var (
	glyphCache   = NewCache[glyphKey, *Glyph](1024)
	measureCache = NewCache[measureKey, float64](4096)
)

// ClearGlyphCache drops every cached glyph mask.
func ClearGlyphCache() { glyphCache.Clear() }

// ClearMeasureCache drops every cached string measurement.
func ClearMeasureCache() { measureCache.Clear() }

// ClearCaches drops all package caches. The comparison harness calls
// this between tests so hinting state cannot travel across them.
func ClearCaches() {
	ClearGlyphCache()
	ClearMeasureCache()
}

// GlyphCacheLen reports the number of cached glyph masks.
func GlyphCacheLen() int { return glyphCache.Len() }

// MeasureCacheLen reports the number of cached measurements.
func MeasureCacheLen() int { return measureCache.Len() }
