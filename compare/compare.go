// Package compare implements the pixel comparison behind image tests.
//
// Two PNGs count as equal when the root-mean-square difference of
// their 8-bit RGBA channels is within a tolerance. On mismatch an
// amplified difference image is written next to the actual image so
// failures can be inspected by eye.
package compare

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// Result is the diagnostic payload of a failed comparison. A matching
// comparison produces no Result at all.
type Result struct {
	// RMS is the root-mean-square per-channel difference.
	RMS float64

	// Tol is the tolerance the comparison ran with.
	Tol float64

	// Expected and Actual are the compared file paths.
	Expected string
	Actual   string

	// Diff is the path of the written difference image, when one was
	// produced.
	Diff string

	// Detail carries a textual descriptor for mismatches the RMS
	// metric cannot express, such as differing image sizes.
	Detail string
}

// OK reports whether the comparison was within tolerance. It is valid
// on the nil Result a matching comparison produces.
func (r *Result) OK() bool { return r == nil }

// Message formats the failure the way assertion output reports it.
func (r *Result) Message() string {
	if r.Detail != "" {
		return fmt.Sprintf("images not close: %s vs. %s (%s)", r.Actual, r.Expected, r.Detail)
	}
	return fmt.Sprintf("images not close: %s vs. %s (RMS %.2f)", r.Actual, r.Expected, r.RMS)
}

// Compare loads both PNGs and compares them with the given tolerance.
//
// A nil Result with nil error means the images match. A non-nil Result
// is the mismatch diagnostic: differing sizes are an immediate
// mismatch, otherwise the RMS metric decides. Unreadable files are
// errors, not mismatches.
//
// Setting FIGTEST_SAVE_DIFFS=1 writes the difference image even for
// matching comparisons, which helps when tuning a tolerance.
func Compare(expected, actual string, tol float64) (*Result, error) {
	exp, err := loadPNG(expected)
	if err != nil {
		return nil, fmt.Errorf("compare: expected image: %w", err)
	}
	act, err := loadPNG(actual)
	if err != nil {
		return nil, fmt.Errorf("compare: actual image: %w", err)
	}

	saveAlways := os.Getenv("FIGTEST_SAVE_DIFFS") == "1"

	if !exp.Bounds().Size().Eq(act.Bounds().Size()) {
		return &Result{
			Tol:      tol,
			Expected: expected,
			Actual:   actual,
			Detail: fmt.Sprintf("sizes do not match: %dx%d vs. %dx%d",
				act.Bounds().Dx(), act.Bounds().Dy(),
				exp.Bounds().Dx(), exp.Bounds().Dy()),
		}, nil
	}

	rms := rmsDiff(exp, act)
	if rms <= tol && !saveAlways {
		return nil, nil
	}

	diffPath := diffImagePath(actual)
	if err := writeDiffImage(diffPath, exp, act); err != nil {
		// The diff image is a debugging aid; its failure must not mask
		// the comparison verdict.
		diffPath = ""
	}

	if rms <= tol {
		return nil, nil
	}
	return &Result{
		RMS:      rms,
		Tol:      tol,
		Expected: expected,
		Actual:   actual,
		Diff:     diffPath,
	}, nil
}

// loadPNG decodes a PNG into RGBA.
func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba, nil
}

// rmsDiff computes the root-mean-square difference over all 8-bit
// RGBA channels of two same-sized images.
func rmsDiff(a, b *image.RGBA) float64 {
	w := a.Bounds().Dx()
	h := a.Bounds().Dy()

	var sum float64
	for y := 0; y < h; y++ {
		ao := a.PixOffset(a.Bounds().Min.X, a.Bounds().Min.Y+y)
		bo := b.PixOffset(b.Bounds().Min.X, b.Bounds().Min.Y+y)
		for i := 0; i < w*4; i++ {
			d := float64(a.Pix[ao+i]) - float64(b.Pix[bo+i])
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(w*h*4))
}

// diffImagePath derives the difference image path from the actual
// image path: <base>-failed-diff<ext>.
func diffImagePath(actual string) string {
	ext := filepath.Ext(actual)
	return strings.TrimSuffix(actual, ext) + "-failed-diff" + ext
}

// diffGain amplifies per-channel differences in the diff image so
// near-tolerance mismatches are visible.
const diffGain = 10

// writeDiffImage writes the amplified absolute difference of two
// same-sized images.
func writeDiffImage(path string, a, b *image.RGBA) error {
	bounds := a.Bounds()
	diff := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pa := a.RGBAAt(x, y)
			pb := b.RGBAAt(x, y)
			diff.SetRGBA(x, y, color.RGBA{
				R: amplify(pa.R, pb.R),
				G: amplify(pa.G, pb.G),
				B: amplify(pa.B, pb.B),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, diff); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// amplify returns the gained absolute difference of two channel
// values, clamped to 255.
func amplify(a, b uint8) uint8 {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	d *= diffGain
	if d > 255 {
		d = 255
	}
	return uint8(d)
}
