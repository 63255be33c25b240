package figtest

import (
	"fmt"
	"regexp"
	"sync"
)

// Harness warnings (currently only the locale warning) go through a
// filter list before reaching the logger, so a test that deliberately
// provokes a warning can silence it. Filters installed by a test are
// cleared by Teardown; they never leak into the next test.
var (
	warnMu      sync.Mutex
	warnFilters []*regexp.Regexp
)

// FilterWarnings suppresses harness warnings whose message matches the
// given regular expression for the remainder of the current test.
// Teardown removes all installed filters.
func FilterWarnings(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("figtest: bad warning filter: %w", err)
	}
	warnMu.Lock()
	defer warnMu.Unlock()
	warnFilters = append(warnFilters, re)
	return nil
}

// ResetWarningFilters removes every installed warning filter.
// Teardown calls this so filter state cannot travel between tests.
func ResetWarningFilters() {
	warnMu.Lock()
	defer warnMu.Unlock()
	warnFilters = nil
}

// warnf emits a harness warning unless a filter suppresses it.
func warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	warnMu.Lock()
	for _, re := range warnFilters {
		if re.MatchString(msg) {
			warnMu.Unlock()
			return
		}
	}
	warnMu.Unlock()

	Logger().Warn(msg)
}
