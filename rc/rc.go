// Package rc holds the process-wide rendering configuration.
//
// Rendering honors a small set of typed parameters (text hinting,
// antialiasing, font size, DPI, ...). Parameters live in a single
// process-global store so that every canvas produced by the current
// backend sees the same configuration, mirroring how a chart library
// exposes one mutable rc state to all open figures.
//
// Tests that compare rendered output against baseline images must start
// from a known state: call Reset to restore defaults, then pin the
// parameters the comparison depends on:
//
//	rc.Reset()
//	rc.Set(rc.TextHinting, true)
//	rc.Set(rc.TextAntialias, true)
package rc

import (
	"fmt"
	"sync"
)

// Key identifies a rendering parameter.
type Key string

// Rendering parameters.
const (
	// TextHinting enables glyph hinting during text rasterization.
	// Hinting changes pixel output; comparison tests pin it to true.
	TextHinting Key = "text.hinting"

	// TextAntialias enables antialiased glyph edges. When false, glyph
	// coverage is thresholded to fully opaque or fully transparent.
	TextAntialias Key = "text.antialias"

	// FontSize is the default text size in points.
	FontSize Key = "font.size"

	// FontFamily is the default font family name resolved by the text
	// package ("sans" maps to the embedded Go Regular face).
	FontFamily Key = "font.family"

	// DPI is the figure resolution in dots per inch.
	DPI Key = "figure.dpi"

	// Background is the figure background color as a hex string.
	Background Key = "figure.background"

	// LineWidth is the default stroke width in pixels.
	LineWidth Key = "line.width"
)

// kind describes the value type a key accepts.
type kind int

const (
	kindBool kind = iota
	kindFloat
	kindString
)

// schema maps every known key to its type and default value.
var schema = map[Key]struct {
	kind kind
	def  any
}{
	TextHinting:   {kindBool, true},
	TextAntialias: {kindBool, true},
	FontSize:      {kindFloat, 10.0},
	FontFamily:    {kindString, "sans"},
	DPI:           {kindFloat, 100.0},
	Background:    {kindString, "#FFFFFF"},
	LineWidth:     {kindFloat, 1.5},
}

var (
	mu     sync.RWMutex
	params = defaults()
)

// defaults builds a fresh parameter map from the schema.
func defaults() map[Key]any {
	m := make(map[Key]any, len(schema))
	for k, s := range schema {
		m[k] = s.def
	}
	return m
}

// Defaults returns a copy of the default configuration.
func Defaults() map[Key]any {
	return defaults()
}

// Keys returns all known parameter keys.
func Keys() []Key {
	keys := make([]Key, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	return keys
}

// Set stores a parameter value. The value must match the key's type.
// Unknown keys and mistyped values are reported as errors, never panics,
// so a misconfigured test fails with a readable message.
func Set(key Key, value any) error {
	s, ok := schema[key]
	if !ok {
		return fmt.Errorf("rc: unknown parameter %q", key)
	}

	switch s.kind {
	case kindBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("rc: parameter %q wants bool, got %T", key, value)
		}
	case kindFloat:
		switch v := value.(type) {
		case float64:
		case int:
			value = float64(v)
		default:
			return fmt.Errorf("rc: parameter %q wants float64, got %T", key, value)
		}
	case kindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("rc: parameter %q wants string, got %T", key, value)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	params[key] = value
	return nil
}

// MustSet is Set for static keys whose types are known at the call site.
// It panics on error; use it only with compile-time constant arguments.
func MustSet(key Key, value any) {
	if err := Set(key, value); err != nil {
		panic(err)
	}
}

// Get returns the current value for key, or nil for unknown keys.
func Get(key Key) any {
	mu.RLock()
	defer mu.RUnlock()
	return params[key]
}

// GetBool returns a bool parameter. Unknown or mistyped keys return false.
func GetBool(key Key) bool {
	v, _ := Get(key).(bool)
	return v
}

// GetFloat returns a float parameter. Unknown or mistyped keys return 0.
func GetFloat(key Key) float64 {
	v, _ := Get(key).(float64)
	return v
}

// GetString returns a string parameter. Unknown or mistyped keys return "".
func GetString(key Key) string {
	v, _ := Get(key).(string)
	return v
}

// Reset restores every parameter to its default value.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	params = defaults()
}

// Snapshot returns a copy of the current configuration, useful for
// save/restore around code that mutates parameters.
func Snapshot() map[Key]any {
	mu.RLock()
	defer mu.RUnlock()
	m := make(map[Key]any, len(params))
	for k, v := range params {
		m[k] = v
	}
	return m
}

// Restore replaces the current configuration with a snapshot taken by
// Snapshot. Keys missing from the snapshot fall back to their defaults.
func Restore(snap map[Key]any) {
	mu.Lock()
	defer mu.Unlock()
	params = defaults()
	for k, v := range snap {
		if _, known := schema[k]; known {
			params[k] = v
		}
	}
}
