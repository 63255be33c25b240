package figtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ImageFilenames holds the three paths one comparison works with: the
// accepted baseline next to the test source, the freshly rendered
// result, and a copy of the baseline placed beside the result so the
// two can be diffed by eye.
type ImageFilenames struct {
	Baseline string
	Result   string
	Expected string
}

var (
	resultMu   sync.RWMutex
	resultRoot = defaultResultRoot()
)

func defaultResultRoot() string {
	if dir := os.Getenv("FIGTEST_RESULT_DIR"); dir != "" {
		return dir
	}
	return "result_images"
}

// SetResultRoot overrides the directory result images are written
// under. The default is "result_images" relative to the working
// directory, or $FIGTEST_RESULT_DIR when set.
func SetResultRoot(dir string) {
	resultMu.Lock()
	defer resultMu.Unlock()
	if dir == "" {
		dir = defaultResultRoot()
	}
	resultRoot = dir
}

// ResultRoot returns the current result image root directory.
func ResultRoot() string {
	resultMu.RLock()
	defer resultMu.RUnlock()
	return resultRoot
}

// MakeImageFilenames derives the baseline, result, and expected-copy
// paths for one comparison. name may omit the ".png" suffix; it is
// appended at most once. testFile is the path of the test source file
// the comparison lives in; its base name (extension stripped) becomes
// the per-file subdirectory under both baseline_images and the result
// root. The result directory is created if absent; creation is
// idempotent and its failure is the only error path.
func MakeImageFilenames(name, testFile string) (ImageFilenames, error) {
	if !strings.Contains(name, ".png") {
		name += ".png"
	}

	subdir := strings.TrimSuffix(filepath.Base(testFile), filepath.Ext(testFile))

	baseline := filepath.Join(filepath.Dir(testFile), "baseline_images", subdir, name)

	resultDir := filepath.Join(ResultRoot(), subdir)
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return ImageFilenames{}, fmt.Errorf("figtest: create result dir: %w", err)
	}
	result := filepath.Join(resultDir, name)

	// Split at the last dot so dots embedded in the name stay in the base.
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	expected := filepath.Join(resultDir, base+"-expected"+ext)

	return ImageFilenames{Baseline: baseline, Result: result, Expected: expected}, nil
}
