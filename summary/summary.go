// Package summary collects one record per image comparison and
// persists the run summary as JSON under the result image root, where
// the figtest CLI reads it for reporting and triage.
package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// FileName is the summary file written into the result image root.
const FileName = "figtest-summary.json"

// Record describes one image comparison.
type Record struct {
	Name     string `json:"name"`
	Subdir   string `json:"subdir"`
	Baseline string `json:"baseline"`
	Result   string `json:"result"`
	Expected string `json:"expected"`
	Diff     string `json:"diff,omitempty"`

	// RMS is zero for matching comparisons; the metric is only
	// computed into the record on mismatch.
	RMS float64 `json:"rms"`
	Tol float64 `json:"tol"`
	OK  bool    `json:"ok"`

	RecordedAt time.Time `json:"recorded_at"`
}

// Meta summarizes a whole run.
type Meta struct {
	Total     int       `json:"total"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Duration  string    `json:"duration"`
	WrittenAt time.Time `json:"written_at"`
}

// Summary is the persisted form: run metadata plus every record.
type Summary struct {
	Meta    Meta     `json:"meta"`
	Records []Record `json:"records"`
}

var collector = struct {
	mu      sync.Mutex
	records []Record
	started time.Time
}{}

// Add appends one comparison record to the in-process collector.
func Add(r Record) {
	collector.mu.Lock()
	defer collector.mu.Unlock()
	if collector.started.IsZero() {
		collector.started = time.Now()
	}
	collector.records = append(collector.records, r)
}

// Records returns a copy of the collected records.
func Records() []Record {
	collector.mu.Lock()
	defer collector.mu.Unlock()
	out := make([]Record, len(collector.records))
	copy(out, collector.records)
	return out
}

// Reset drops all collected records.
func Reset() {
	collector.mu.Lock()
	defer collector.mu.Unlock()
	collector.records = nil
	collector.started = time.Time{}
}

// Flush writes the collected records as a summary file under dir,
// creating dir if needed. Flushing with no records writes an empty
// summary, which the CLI reports as a clean run.
func Flush(dir string) error {
	collector.mu.Lock()
	records := make([]Record, len(collector.records))
	copy(records, collector.records)
	started := collector.started
	collector.mu.Unlock()

	passed := 0
	for _, r := range records {
		if r.OK {
			passed++
		}
	}

	var duration time.Duration
	if !started.IsZero() {
		duration = time.Since(started)
	}

	s := Summary{
		Meta: Meta{
			Total:     len(records),
			Passed:    passed,
			Failed:    len(records) - passed,
			Duration:  duration.String(),
			WrittenAt: time.Now(),
		},
		Records: records,
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal summary")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create summary dir")
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write summary %s", path)
	}
	return nil
}

// Load reads a summary file from dir.
func Load(dir string) (*Summary, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read summary %s", path)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parse summary %s", path)
	}
	return &s, nil
}
