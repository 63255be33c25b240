package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List baseline images and flag orphans",
	Long:  "Walk the baseline images under the package directory and pair each with its result image. Baselines with no result and results with no baseline are flagged as orphans.",
	RunE:  runList,
}

// imagePair is one comparison name with which sides exist on disk.
type imagePair struct {
	subdir      string
	name        string
	hasBaseline bool
	hasResult   bool
}

func runList(cmd *cobra.Command, _ []string) error {
	pairs, err := collectPairs()
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		color.Yellow("No baseline or result images found under %s", cfg.Pkg)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, p := range pairs {
		switch {
		case p.hasBaseline && p.hasResult:
			fmt.Fprintf(out, "  %s/%s\n", p.subdir, p.name)
		case p.hasBaseline:
			fmt.Fprintf(out, "%s %s/%s (baseline only; no result rendered)\n",
				color.YellowString("?"), p.subdir, p.name)
		default:
			fmt.Fprintf(out, "%s %s/%s (result only; promote with 'figtest approve %s')\n",
				color.YellowString("?"), p.subdir, p.name, strings.TrimSuffix(p.name, ".png"))
		}
	}
	return nil
}

// collectPairs walks both image trees and merges them by subdir/name,
// skipping the generated -expected and -failed-diff artifacts.
func collectPairs() ([]imagePair, error) {
	merged := map[string]*imagePair{}

	walk := func(root string, mark func(p *imagePair)) error {
		if _, err := os.Stat(root); err != nil {
			return nil // absent tree contributes nothing
		}
		return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || filepath.Ext(path) != ".png" {
				return err
			}
			name := filepath.Base(path)
			if strings.Contains(name, "-expected.") || strings.Contains(name, "-failed-diff.") {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			key := filepath.ToSlash(rel)
			p, ok := merged[key]
			if !ok {
				p = &imagePair{subdir: filepath.Dir(key), name: name}
				merged[key] = p
			}
			mark(p)
			return nil
		})
	}

	baselineRoot := filepath.Join(cfg.Pkg, cfg.BaselineDirName)
	if err := walk(baselineRoot, func(p *imagePair) { p.hasBaseline = true }); err != nil {
		return nil, err
	}
	if err := walk(cfg.ResultDir, func(p *imagePair) { p.hasResult = true }); err != nil {
		return nil, err
	}

	pairs := make([]imagePair, 0, len(merged))
	for _, p := range merged {
		pairs = append(pairs, *p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].subdir != pairs[j].subdir {
			return pairs[i].subdir < pairs[j].subdir
		}
		return pairs[i].name < pairs[j].name
	})
	return pairs, nil
}
