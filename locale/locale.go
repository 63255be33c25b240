// Package locale controls the language used when figures format numbers
// for tick and annotation labels.
//
// Baseline images are rendered under a fixed locale; a comparison test
// running under a different one would disagree on decimal separators and
// digit grouping. The harness therefore pins the process locale before
// every comparison. The locale is process-global and guarded for
// concurrent readers; tests mutate it only through the harness.
package locale

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// fallback is the locale baseline images are produced under.
var fallback = language.AmericanEnglish

var (
	mu      sync.RWMutex
	current = fallback
	printer = message.NewPrinter(fallback)
)

// windowsNames maps legacy Windows locale spellings (language_region, as
// accepted by C runtimes on Windows) to BCP-47 tags. Only spellings that
// showed up in real baseline suites are listed; everything else must come
// in as POSIX ("en_US.UTF-8") or BCP-47 ("en-US").
var windowsNames = map[string]language.Tag{
	"english_united states":  language.AmericanEnglish,
	"english_united kingdom": language.BritishEnglish,
	"german_germany":         language.German,
	"french_france":          language.French,
}

// normalize converts a platform locale spelling to something
// language.Parse accepts.
func normalize(name string) (language.Tag, error) {
	trimmed := name
	// Strip a codeset or codepage suffix: "en_US.UTF-8", "....1252".
	if i := strings.IndexByte(trimmed, '.'); i >= 0 {
		trimmed = trimmed[:i]
	}

	if tag, ok := windowsNames[strings.ToLower(trimmed)]; ok {
		return tag, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("locale: cannot parse %q: %w", name, err)
	}
	return tag, nil
}

// Set switches the process locale. The name may be a BCP-47 tag
// ("en-US"), a POSIX spelling ("en_US.UTF-8"), or a legacy Windows
// spelling ("English_United States.1252").
func Set(name string) error {
	tag, err := normalize(name)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	current = tag
	printer = message.NewPrinter(tag)
	return nil
}

// TrySet attempts each spelling in order and keeps the first that parses.
// It returns nil on the first success; if every spelling fails, the
// locale is left untouched and the last error is returned.
func TrySet(names ...string) error {
	var err error
	for _, name := range names {
		if err = Set(name); err == nil {
			return nil
		}
	}
	if err == nil {
		err = fmt.Errorf("locale: no spellings given")
	}
	return err
}

// Reset restores the default en-US locale.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = fallback
	printer = message.NewPrinter(fallback)
}

// Current returns the active locale tag.
func Current() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Printer returns a message printer for the active locale.
func Printer() *message.Printer {
	mu.RLock()
	defer mu.RUnlock()
	return printer
}

// FormatFloat renders v with exactly prec fraction digits under the
// active locale. Chart code uses this for tick labels so that grouping
// and decimal separators follow the pinned locale.
func FormatFloat(v float64, prec int) string {
	return Printer().Sprint(number.Decimal(v,
		number.MinFractionDigits(prec),
		number.MaxFractionDigits(prec)))
}

// FormatInt renders n under the active locale.
func FormatInt(n int) string {
	return Printer().Sprint(number.Decimal(n))
}
