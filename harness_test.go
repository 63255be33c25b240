package figtest

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofig/figtest/backend"
	"github.com/gofig/figtest/figure"
	"github.com/gofig/figtest/rc"
)

func TestSetupActivatesImageBackend(t *testing.T) {
	t.Cleanup(Teardown)

	if err := Setup(); err != nil {
		t.Fatalf("Setup() = %v", err)
	}
	if got := backend.CurrentName(); got != comparisonBackend {
		t.Errorf("active backend = %q, want %q", got, comparisonBackend)
	}
}

func TestSetupPinsRenderingConfig(t *testing.T) {
	t.Cleanup(Teardown)

	// Dirty the config; Setup must reset and re-pin it.
	rc.MustSet(rc.TextHinting, false)
	rc.MustSet(rc.TextAntialias, false)
	rc.MustSet(rc.FontSize, 42.0)

	if err := Setup(); err != nil {
		t.Fatalf("Setup() = %v", err)
	}
	if !rc.GetBool(rc.TextHinting) {
		t.Error("text hinting not pinned on after Setup")
	}
	if !rc.GetBool(rc.TextAntialias) {
		t.Error("text antialiasing not pinned on after Setup")
	}
	if got := rc.GetFloat(rc.FontSize); got != 10.0 {
		t.Errorf("font size = %v after Setup, want default 10", got)
	}
}

func TestSetupDetectsOpenFigures(t *testing.T) {
	t.Cleanup(Teardown)

	if err := Setup(); err != nil {
		t.Fatalf("first Setup() = %v", err)
	}

	// Simulate a preceding test that leaked its figures.
	a := figure.New(2, 2)
	b := figure.New(2, 2)

	err := Setup()
	var leaked *OpenFiguresError
	if !errors.As(err, &leaked) {
		t.Fatalf("Setup() with open figures = %v, want *OpenFiguresError", err)
	}
	want := []int{a.Number(), b.Number()}
	if len(leaked.Nums) != len(want) || leaked.Nums[0] != want[0] || leaked.Nums[1] != want[1] {
		t.Errorf("leaked.Nums = %v, want %v", leaked.Nums, want)
	}
	if msg := err.Error(); !strings.Contains(msg, "still open") {
		t.Errorf("error %q does not mention open figures", msg)
	}
}

func TestVerifyComparisonBackend(t *testing.T) {
	// The name match is case-insensitive.
	for _, name := range []string{"image", "Image", "IMAGE"} {
		if err := verifyComparisonBackend(name); err != nil {
			t.Errorf("verifyComparisonBackend(%q) = %v, want nil", name, err)
		}
	}

	// Anything else aborts the run, naming the offender — the registry
	// key and a backend's Name can disagree when a backend is
	// registered under the wrong name.
	for _, name := range []string{"svg", "gpu", ""} {
		err := verifyComparisonBackend(name)
		var wrong *WrongBackendError
		if !errors.As(err, &wrong) {
			t.Fatalf("verifyComparisonBackend(%q) = %v, want *WrongBackendError", name, err)
		}
		if wrong.Name != name {
			t.Errorf("WrongBackendError.Name = %q, want %q", wrong.Name, name)
		}
	}
}

func TestWrongBackendErrorMessage(t *testing.T) {
	err := &WrongBackendError{Name: "svg"}
	msg := err.Error()
	for _, want := range []string{`"image"`, `"svg"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not contain %s", msg, want)
		}
	}
}

func TestRunClosesFiguresOnFailure(t *testing.T) {
	// Run registers Teardown via t.Cleanup, so figures are closed even
	// when the body fails. The subtest fails deliberately; observe the
	// registry from the parent after it finishes.
	res := t.Run("leaky", func(t *testing.T) {
		Run(t, func(t *testing.T) {
			figure.New(2, 2)
			t.Skip("bail out with the figure still open")
		})
	})
	if !res {
		t.Fatal("subtest failed unexpectedly")
	}
	if nums := figure.Fignums(); len(nums) != 0 {
		t.Errorf("figures %v still open after Run", nums)
	}
}

func TestCleanupWrapsRun(t *testing.T) {
	ran := false
	t.Run("wrapped", Cleanup(func(t *testing.T) {
		ran = true
		if got := backend.CurrentName(); got != comparisonBackend {
			t.Errorf("active backend = %q, want %q", got, comparisonBackend)
		}
		figure.New(2, 2)
	}))
	if !ran {
		t.Fatal("wrapped test body never ran")
	}
	if nums := figure.Fignums(); len(nums) != 0 {
		t.Errorf("figures %v still open after wrapped test", nums)
	}
}

func TestFilterWarnings(t *testing.T) {
	t.Cleanup(ResetWarningFilters)

	if err := FilterWarnings("["); err == nil {
		t.Error("FilterWarnings with a bad pattern did not error")
	}
	if err := FilterWarnings("locale"); err != nil {
		t.Fatalf("FilterWarnings() = %v", err)
	}

	warnMu.Lock()
	n := len(warnFilters)
	warnMu.Unlock()
	if n != 1 {
		t.Fatalf("installed filters = %d, want 1", n)
	}

	Teardown()

	warnMu.Lock()
	n = len(warnFilters)
	warnMu.Unlock()
	if n != 0 {
		t.Errorf("filters after Teardown = %d, want 0", n)
	}
}
