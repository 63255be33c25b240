package figtest

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/gofig/figtest/backend"
	"github.com/gofig/figtest/figure"
	"github.com/gofig/figtest/locale"
	"github.com/gofig/figtest/rc"
	"github.com/gofig/figtest/summary"
	"github.com/gofig/figtest/text"
)

// comparisonBackend is the deterministic offscreen backend every pixel
// comparison runs on. Setup refuses to proceed on anything else.
const comparisonBackend = "image"

// localeSpellings are tried in order by Setup. The first is the POSIX
// form, the second the legacy Windows one.
var localeSpellings = []string{"en_US.UTF-8", "English_United States.1252"}

// WrongBackendError reports that the deterministic offscreen backend
// was not active after switching. The whole test run is invalid: a
// different backend produces different pixels for the same figure.
type WrongBackendError struct {
	// Name is the backend that was active instead.
	Name string
}

func (e *WrongBackendError) Error() string {
	return fmt.Sprintf("figtest: comparison tests require the %q backend, but %q is active",
		comparisonBackend, e.Name)
}

// OpenFiguresError reports figures left open by a previous test. That
// is a programmer error — a rendering test ran without the cleanup
// wrapper — and the leaked state would contaminate this comparison.
type OpenFiguresError struct {
	// Nums are the open figure numbers, ascending.
	Nums []int
}

func (e *OpenFiguresError) Error() string {
	nums := make([]string, len(e.Nums))
	for i, n := range e.Nums {
		nums[i] = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("figtest: figures [%s] are still open from a previous test; wrap rendering tests in figtest.Run so they are closed",
		strings.Join(nums, ", "))
}

// Setup normalizes the process-global rendering environment for one
// comparison test:
//
//  1. pins the locale to US English (non-fatal when unavailable; the
//     test proceeds with reduced date/number formatting fidelity),
//  2. switches to the offscreen "image" backend and verifies the
//     switch took effect,
//  3. resets the rendering configuration and fixes text hinting and
//     antialiasing, which change pixel output,
//  4. clears the font caches so glyph hinting state cannot travel
//     between tests,
//  5. verifies no figures leaked from a previous test.
//
// Any returned error invalidates the test; callers should treat it as
// fatal. Most tests use Run instead of calling Setup directly.
func Setup() error {
	if err := locale.TrySet(localeSpellings...); err != nil {
		warnf("figtest: could not set locale to %s: %v; date and number formatting may differ from baselines",
			strings.Join(localeSpellings, " or "), err)
	}

	if err := backend.Switch(comparisonBackend); err != nil {
		return fmt.Errorf("figtest: switch backend: %w", err)
	}
	if err := verifyComparisonBackend(backend.CurrentName()); err != nil {
		return err
	}

	rc.Reset()
	// Hardcoded: baselines are rendered with hinted, antialiased text.
	rc.MustSet(rc.TextHinting, true)
	rc.MustSet(rc.TextAntialias, true)

	text.ClearCaches()
	backend.ClearFontCaches()

	if nums := figure.Fignums(); len(nums) > 0 {
		return &OpenFiguresError{Nums: nums}
	}
	return nil
}

// verifyComparisonBackend checks, case-insensitively, that the active
// backend really is the deterministic one comparisons require. The
// registry key and a backend's Name can disagree when a package
// registers a backend under the wrong name; a comparison must abort
// then rather than take pixels from an unknown renderer.
func verifyComparisonBackend(name string) error {
	if !strings.EqualFold(name, comparisonBackend) {
		return &WrongBackendError{Name: name}
	}
	return nil
}

// Teardown closes every open figure and removes any warning filters
// the test installed, so neither leaks into the next test.
func Teardown() {
	figure.CloseAll()
	ResetWarningFilters()
}

// Run executes fn between Setup and Teardown. Teardown is registered
// via t.Cleanup, so it runs even when fn fails or panics. A Setup
// failure is fatal.
func Run(t *testing.T, fn func(*testing.T)) {
	t.Helper()
	t.Cleanup(Teardown)
	if err := Setup(); err != nil {
		t.Fatal(err)
	}
	fn(t)
}

// FlushSummary writes the records collected by Compare in this process
// as figtest-summary.json under the result root, where the figtest CLI
// reads them. Call it once per test binary after all comparisons ran;
// Main does it automatically.
func FlushSummary() error {
	return summary.Flush(ResultRoot())
}

// Main runs a package's tests and flushes the comparison summary
// before exiting. Packages with comparison tests use it as their
// TestMain so every run leaves a summary behind for figtest report
// and figtest triage:
//
//	func TestMain(m *testing.M) {
//		figtest.Main(m)
//	}
func Main(m *testing.M) {
	code := m.Run()
	if err := FlushSummary(); err != nil {
		Logger().Warn("flush comparison summary", "error", err)
	}
	os.Exit(code)
}

// Cleanup wraps a test function so that Run's setup and teardown
// bracket it. It exists for table-driven suites that register subtests
// by function value:
//
//	t.Run("scatter", figtest.Cleanup(testScatter))
func Cleanup(fn func(*testing.T)) func(*testing.T) {
	return func(t *testing.T) {
		t.Helper()
		Run(t, fn)
	}
}
