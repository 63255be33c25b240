package figtest

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofig/figtest/figure"
	"github.com/gofig/figtest/summary"
)

// stubPlot draws a small deterministic chart-like figure.
type stubPlot struct {
	label string
}

func (p *stubPlot) Draw() (*figure.Figure, error) {
	f := figure.New(120, 80)
	f.FillRect(10, 10, 40, 50, color.RGBA{R: 200, G: 60, B: 60, A: 255})
	f.Line(10, 70, 110, 70, 2, color.Black)
	f.Text(p.label, 12, 68, 10, color.Black)
	return f, nil
}

// shiftedPlot renders visibly different pixels from stubPlot.
type shiftedPlot struct{}

func (*shiftedPlot) Draw() (*figure.Figure, error) {
	f := figure.New(120, 80)
	f.FillRect(40, 10, 40, 50, color.RGBA{R: 60, G: 60, B: 200, A: 255})
	return f, nil
}

// setupCompareTest pins the environment, points the result root into a
// temp dir, and returns the fake test-file path the comparison keys
// its subdirectories on.
func setupCompareTest(t *testing.T) string {
	t.Helper()
	t.Cleanup(Teardown)
	t.Cleanup(func() { SetResultRoot(""); summary.Reset() })
	if err := Setup(); err != nil {
		t.Fatal(err)
	}

	tmp := t.TempDir()
	SetResultRoot(filepath.Join(tmp, "result_images"))
	return filepath.Join(tmp, "test_plots.go")
}

// writeBaseline renders p and installs the pixels as the baseline for
// name, so a later comparison of the same plot matches exactly.
func writeBaseline(t *testing.T, p Plot, name, testFile string) {
	t.Helper()
	fig, err := p.Draw()
	if err != nil {
		t.Fatal(err)
	}
	defer fig.Close()

	dir := filepath.Join(filepath.Dir(testFile), "baseline_images", "test_plots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := fig.SavePNG(filepath.Join(dir, name+".png")); err != nil {
		t.Fatal(err)
	}
}

func TestCompareMatch(t *testing.T) {
	testFile := setupCompareTest(t)
	p := &stubPlot{label: "scatter"}
	writeBaseline(t, p, "scatter", testFile)

	res, err := Compare(p, "scatter", WithTestFile(testFile))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res != nil {
		t.Fatalf("want match, got mismatch: %s", res.Message())
	}

	// Result and expected copies are left behind for inspection.
	resultDir := filepath.Join(ResultRoot(), "test_plots")
	for _, name := range []string{"scatter.png", "scatter-expected.png"} {
		if _, err := os.Stat(filepath.Join(resultDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}

func TestCompareMismatch(t *testing.T) {
	testFile := setupCompareTest(t)
	writeBaseline(t, &stubPlot{label: "scatter"}, "scatter", testFile)

	res, err := Compare(&shiftedPlot{}, "scatter", WithTestFile(testFile), WithTolerance(1))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res == nil {
		t.Fatal("want mismatch, got match")
	}
	if res.RMS <= 1 {
		t.Errorf("RMS = %v, want > tolerance 1", res.RMS)
	}
	if !strings.Contains(res.Message(), "images not close") {
		t.Errorf("Message() = %q, want it to mention images not close", res.Message())
	}
	if res.Diff == "" {
		t.Error("mismatch should write a diff image")
	} else if _, err := os.Stat(res.Diff); err != nil {
		t.Errorf("diff image missing: %v", err)
	}
}

func TestCompareMissingBaseline(t *testing.T) {
	testFile := setupCompareTest(t)

	_, err := Compare(&stubPlot{label: "x"}, "never-rendered", WithTestFile(testFile))
	if err == nil {
		t.Fatal("want missing-baseline error, got nil")
	}
	var missing *MissingBaselineError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingBaselineError", err)
	}
	if !strings.Contains(err.Error(), "Baseline image") || !strings.Contains(err.Error(), "is missing") {
		t.Errorf("error = %q, want it to name the missing baseline", err)
	}
	if !missing.DirMissing {
		t.Error("whole baseline directory is absent; DirMissing should be set")
	}

	// The result image must still have been rendered, ready to be
	// promoted to a baseline.
	if _, statErr := os.Stat(filepath.Join(ResultRoot(), "test_plots", "never-rendered.png")); statErr != nil {
		t.Errorf("result image not written before baseline check: %v", statErr)
	}
}

func TestEqual(t *testing.T) {
	testFile := setupCompareTest(t)
	p := &stubPlot{label: "eq"}
	writeBaseline(t, p, "eq", testFile)

	cfgFile := WithTestFile(testFile)

	t.Run("bare name matches", func(t *testing.T) {
		res, err := Compare(p, "eq", cfgFile)
		if err != nil || res != nil {
			t.Fatalf("Compare = (%v, %v), want match", res, err)
		}
	})

	t.Run("equal true iff payload empty", func(t *testing.T) {
		if !equalWith(p, "eq", config{tol: DefaultTolerance, testFile: testFile}) {
			t.Error("Equal = false for matching plot")
		}
		if got := LastDiagnostic(); got != nil {
			t.Errorf("diagnostic after match = %+v, want nil", got)
		}

		if equalWith(&shiftedPlot{}, "eq", config{tol: 1, testFile: testFile}) {
			t.Error("Equal = true for mismatching plot")
		}
		diag := LastDiagnostic()
		if diag == nil {
			t.Fatal("no diagnostic stashed for mismatch")
		}
		if diag.RMS <= 0 {
			t.Errorf("diagnostic RMS = %v, want > 0", diag.RMS)
		}
		// Read-once: the stash is cleared.
		if LastDiagnostic() != nil {
			t.Error("diagnostic stash not cleared after read")
		}
	})

	t.Run("target tolerance", func(t *testing.T) {
		// An enormous tolerance lets even the shifted plot pass.
		if !equalWith(&shiftedPlot{}, "eq", config{tol: 10000, testFile: testFile}) {
			t.Error("Equal = false under huge tolerance")
		}
	})
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name     string
		right    any
		wantName string
		wantTol  float64
		wantOK   bool
	}{
		{"bare name", "scatter", "scatter", DefaultTolerance, true},
		{"explicit tolerance", Target{Name: "bars", Tol: 5}, "bars", 5, true},
		{"zero tolerance means default", Target{Name: "bars"}, "bars", DefaultTolerance, true},
		{"negative tolerance means default", Target{Name: "bars", Tol: -1}, "bars", DefaultTolerance, true},
		{"unsupported operand", 42, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, tol, ok := resolveTarget(tt.right)
			if name != tt.wantName || tol != tt.wantTol || ok != tt.wantOK {
				t.Errorf("resolveTarget(%v) = (%q, %v, %v), want (%q, %v, %v)",
					tt.right, name, tol, ok, tt.wantName, tt.wantTol, tt.wantOK)
			}
		})
	}
}

func TestWithToleranceZeroIsExact(t *testing.T) {
	testFile := setupCompareTest(t)
	p := &stubPlot{label: "exact"}
	writeBaseline(t, p, "exact", testFile)

	// Identical renders survive a zero tolerance; the option's zero is
	// used as given, not replaced by the default.
	res, err := Compare(p, "exact", WithTestFile(testFile), WithTolerance(0))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res != nil {
		t.Errorf("identical renders failed an exact comparison: %s", res.Message())
	}

	res, err = Compare(&shiftedPlot{}, "exact", WithTestFile(testFile), WithTolerance(0))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if res == nil {
		t.Error("different renders passed an exact comparison")
	}
}

func TestFlushSummary(t *testing.T) {
	testFile := setupCompareTest(t)
	summary.Reset()
	p := &stubPlot{label: "flush"}
	writeBaseline(t, p, "flush", testFile)

	if _, err := Compare(p, "flush", WithTestFile(testFile)); err != nil {
		t.Fatal(err)
	}
	if err := FlushSummary(); err != nil {
		t.Fatalf("FlushSummary: %v", err)
	}

	// The summary lands under the result root, where the CLI looks.
	if _, err := os.Stat(filepath.Join(ResultRoot(), summary.FileName)); err != nil {
		t.Fatalf("summary file not written: %v", err)
	}
	s, err := summary.Load(ResultRoot())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Meta.Total != 1 || s.Meta.Passed != 1 {
		t.Errorf("Meta = %+v, want 1 total, 1 passed", s.Meta)
	}
	if len(s.Records) != 1 || s.Records[0].Name != "flush" {
		t.Errorf("Records = %+v, want the flushed comparison", s.Records)
	}
}

func TestAssertImageEqual(t *testing.T) {
	testFile := setupCompareTest(t)
	p := &stubPlot{label: "assert"}
	writeBaseline(t, p, "assert", testFile)

	AssertImageEqual(t, p, "assert", WithTestFile(testFile))
}

func TestCompareRecordsSummary(t *testing.T) {
	testFile := setupCompareTest(t)
	summary.Reset()
	p := &stubPlot{label: "rec"}
	writeBaseline(t, p, "rec", testFile)

	if _, err := Compare(p, "rec", WithTestFile(testFile)); err != nil {
		t.Fatal(err)
	}
	recs := summary.Records()
	if len(recs) != 1 {
		t.Fatalf("summary records = %d, want 1", len(recs))
	}
	if recs[0].Name != "rec" || !recs[0].OK || recs[0].Subdir != "test_plots" {
		t.Errorf("unexpected record: %+v", recs[0])
	}

	if _, err := Compare(&shiftedPlot{}, "rec", WithTestFile(testFile), WithTolerance(1)); err != nil {
		t.Fatal(err)
	}
	recs = summary.Records()
	if len(recs) != 2 || recs[1].OK {
		t.Fatalf("mismatch record missing or marked OK: %+v", recs)
	}
}
