package figtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/gofig/figtest/compare"
	"github.com/gofig/figtest/figure"
	"github.com/gofig/figtest/summary"
)

// DefaultTolerance is the RMS difference a comparison tolerates when no
// explicit tolerance is given. The value matches the baseline suites
// the harness was built for; individual tests tighten or loosen it via
// WithTolerance or Target.
const DefaultTolerance = 17.0

// Plot is the opaque chart object under test: anything that can produce
// a renderable figure on demand. The harness only reads it.
type Plot interface {
	Draw() (*figure.Figure, error)
}

// Target names a baseline with an explicit tolerance for Equal. A Tol
// of zero (the zero value) compares with DefaultTolerance; exact-match
// comparisons go through Compare or AssertImageEqual with
// WithTolerance(0), which honors the zero as given.
type Target struct {
	Name string
	Tol  float64
}

// MissingBaselineError reports an absent baseline fixture. It is a
// setup failure, not an image mismatch: the comparison never ran.
type MissingBaselineError struct {
	Path string

	// DirMissing is set when the whole per-test-file baseline
	// directory is absent, which usually means the test data was
	// never installed rather than one fixture being forgotten.
	DirMissing bool
}

func (e *MissingBaselineError) Error() string {
	if e.DirMissing {
		return fmt.Sprintf("figtest: Baseline image %s is missing (baseline directory %s does not exist; are the test fixtures installed?)",
			e.Path, filepath.Dir(e.Path))
	}
	return fmt.Sprintf("figtest: Baseline image %s is missing", e.Path)
}

// config carries per-comparison settings.
type config struct {
	tol      float64
	testFile string
}

// Option adjusts one comparison.
type Option func(*config)

// WithTolerance sets the maximum RMS difference the comparison accepts.
func WithTolerance(tol float64) Option {
	return func(c *config) { c.tol = tol }
}

// WithTestFile overrides the test source file used to derive the
// baseline and result subdirectories. Without it the file of the
// calling test is discovered via runtime.Caller.
func WithTestFile(path string) Option {
	return func(c *config) { c.testFile = path }
}

// callerFile returns the source file of the caller skip+1 frames up,
// or "unknown_test.go" if the stack cannot be resolved.
func callerFile(skip int) string {
	if _, file, _, ok := runtime.Caller(skip + 1); ok {
		return file
	}
	return "unknown_test.go"
}

// lastDiag stashes the most recent comparison diagnostic for the
// failure-message formatter. Read-once: LastDiagnostic clears it.
var (
	diagMu   sync.Mutex
	lastDiag *compare.Result
)

func stashDiag(r *compare.Result) {
	diagMu.Lock()
	defer diagMu.Unlock()
	lastDiag = r
}

// LastDiagnostic returns the diagnostic payload of the most recent
// failed comparison and clears the stash. It returns nil when the last
// comparison matched or no comparison has run.
func LastDiagnostic() *compare.Result {
	diagMu.Lock()
	defer diagMu.Unlock()
	r := lastDiag
	lastDiag = nil
	return r
}

// Compare renders p, saves it under the result directory, and compares
// the pixels against the stored baseline for name.
//
// A nil *compare.Result with a nil error means the images matched
// within the tolerance. A non-nil Result is the mismatch diagnostic.
// A missing baseline is reported as a *MissingBaselineError, distinct
// from a mismatch: it signals a missing fixture, not a regression.
//
// The result image is written before the baseline is checked, so a
// newly added test leaves its rendering behind ready to be promoted to
// a baseline.
func Compare(p Plot, name string, opts ...Option) (*compare.Result, error) {
	cfg := config{tol: DefaultTolerance, testFile: callerFile(1)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return compareWith(p, name, cfg)
}

func compareWith(p Plot, name string, cfg config) (*compare.Result, error) {
	fig, err := p.Draw()
	if err != nil {
		return nil, fmt.Errorf("figtest: draw %q: %w", name, err)
	}

	names, err := MakeImageFilenames(name, cfg.testFile)
	if err != nil {
		return nil, err
	}

	if err := fig.SavePNG(names.Result); err != nil {
		return nil, fmt.Errorf("figtest: save result %q: %w", names.Result, err)
	}

	if _, err := os.Stat(names.Baseline); err != nil {
		missing := &MissingBaselineError{Path: names.Baseline}
		if _, derr := os.Stat(filepath.Dir(names.Baseline)); derr != nil {
			missing.DirMissing = true
		}
		return nil, missing
	}

	if err := copyFile(names.Baseline, names.Expected); err != nil {
		return nil, fmt.Errorf("figtest: copy expected image: %w", err)
	}

	res, err := compare.Compare(names.Baseline, names.Result, cfg.tol)
	if err != nil {
		return nil, err
	}

	rec := summary.Record{
		Name:       name,
		Subdir:     filepath.Base(filepath.Dir(names.Result)),
		Baseline:   names.Baseline,
		Result:     names.Result,
		Expected:   names.Expected,
		Tol:        cfg.tol,
		OK:         res == nil,
		RecordedAt: time.Now(),
	}
	if res != nil {
		rec.RMS = res.RMS
		rec.Diff = res.Diff
		Logger().Debug("image mismatch",
			"name", name, "rms", res.RMS, "tol", cfg.tol)
	}
	summary.Add(rec)

	return res, nil
}

// Equal reports whether p renders equal to the named baseline. right is
// either a bare name string or a Target carrying an explicit tolerance;
// a bare name compares with DefaultTolerance.
//
// Equal swallows setup errors into false so it can sit inside a plain
// assertion; the diagnostic (or error) is stashed for LastDiagnostic.
// Prefer AssertImageEqual in tests, which keeps missing fixtures and
// render failures distinct from mismatches.
func Equal(p Plot, right any) bool {
	name, tol, ok := resolveTarget(right)
	if !ok {
		return false
	}
	return equalWith(p, name, config{tol: tol, testFile: callerFile(1)})
}

// resolveTarget maps Equal's right operand to a baseline name and
// tolerance. Unsupported operand types report ok false.
func resolveTarget(right any) (name string, tol float64, ok bool) {
	switch v := right.(type) {
	case string:
		return v, DefaultTolerance, true
	case Target:
		tol = v.Tol
		if tol <= 0 {
			tol = DefaultTolerance
		}
		return v.Name, tol, true
	default:
		return "", 0, false
	}
}

func equalWith(p Plot, name string, cfg config) bool {
	res, err := compareWith(p, name, cfg)
	if err != nil {
		stashDiag(&compare.Result{
			Actual: name,
			Detail: err.Error(),
			Tol:    cfg.tol,
		})
		return false
	}
	stashDiag(res)
	return res == nil
}

// AssertImageEqual renders p and fails t when the pixels do not match
// the stored baseline for name. Missing baselines and render or setup
// failures are fatal; a pixel mismatch is reported as a test error with
// the RMS metric and the paths of both images.
func AssertImageEqual(t testing.TB, p Plot, name string, opts ...Option) {
	t.Helper()

	cfg := config{tol: DefaultTolerance, testFile: callerFile(1)}
	for _, opt := range opts {
		opt(&cfg)
	}

	res, err := compareWith(p, name, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Error(res.Message())
	}
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
