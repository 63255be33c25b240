package text

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrEmptyFontData is returned when a font is registered with no bytes.
var ErrEmptyFontData = errors.New("text: empty font data")

// Source is a parsed font. One Source serves every size; it is
// heavyweight and shared. The same bytes are parsed twice on purpose:
// go-text/typesetting drives shaping (glyph selection, advances,
// kerning) while x/image/font/opentype drives rasterization, and the
// two libraries keep incompatible representations.
//
// Source is immutable after creation and safe for concurrent use.
type Source struct {
	name string
	data []byte

	shaped *gotext.Font   // typesetting font, read-only, concurrency-safe
	ot     *opentype.Font // sfnt font for glyph rasterization
}

// Parse parses TTF or OTF font data into a Source. name is the family
// name the source is looked up under.
func Parse(name string, data []byte) (*Source, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: parse font %q: %w", name, err)
	}

	ot, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: parse font %q: %w", name, err)
	}

	return &Source{name: name, data: data, shaped: face.Font, ot: ot}, nil
}

// Name returns the family name the source was registered under.
func (s *Source) Name() string { return s.name }

var (
	defaultOnce sync.Once
	defaultSrc  *Source

	sourceMu sync.RWMutex
	sources  = map[string]*Source{}
)

// Default returns the embedded Go Regular face. It is the fallback for
// the "sans" family and the face used when a configured family is
// unknown, so label rendering never depends on installed system fonts.
func Default() *Source {
	defaultOnce.Do(func() {
		src, err := Parse("sans", goregular.TTF)
		if err != nil {
			// The embedded font is known-good; failing to parse it is
			// a build corruption, not a runtime condition.
			panic(fmt.Sprintf("text: embedded font: %v", err))
		}
		defaultSrc = src
	})
	return defaultSrc
}

// RegisterSource makes a parsed font available under its family name.
func RegisterSource(src *Source) {
	sourceMu.Lock()
	defer sourceMu.Unlock()
	sources[src.name] = src
}

// Lookup resolves a family name to a registered Source. The empty name
// and "sans" resolve to the embedded default.
func Lookup(name string) (*Source, error) {
	if name == "" || name == "sans" {
		return Default(), nil
	}

	sourceMu.RLock()
	src, ok := sources[name]
	sourceMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("text: unknown font family %q", name)
	}
	return src, nil
}

// Families returns the registered family names plus the built-in
// "sans" default.
func Families() []string {
	sourceMu.RLock()
	defer sourceMu.RUnlock()

	names := make([]string, 0, len(sources)+1)
	names = append(names, "sans")
	for name := range sources {
		if name != "sans" {
			names = append(names, name)
		}
	}
	return names
}
