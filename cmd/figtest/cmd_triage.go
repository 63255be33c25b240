package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/gofig/figtest/summary"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Walk failed comparisons interactively",
	Long:  "Open a terminal UI over the failed comparisons of the last run. 'a' approves the selected result as the new baseline, 's' skips to the next failure, 'q' quits.",
	RunE:  runTriage,
}

func runTriage(_ *cobra.Command, _ []string) error {
	s, err := summary.Load(cfg.ResultDir)
	if err != nil {
		return err
	}

	var failed []summary.Record
	for _, r := range s.Records {
		if !r.OK {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		color.Green("No failed comparisons to triage")
		return nil
	}

	app := tview.NewApplication()
	approved := make(map[int]bool)

	list := tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true)
	list.SetBorder(true).SetTitle(fmt.Sprintf(" %d failed ", len(failed)))

	detail := tview.NewTextView().SetDynamicColors(true)
	detail.SetBorder(true).SetTitle(" comparison ")

	itemText := func(i int) string {
		r := failed[i]
		if approved[i] {
			return fmt.Sprintf("[green]✓[-] %s/%s", r.Subdir, r.Name)
		}
		return fmt.Sprintf("[red]✗[-] %s/%s", r.Subdir, r.Name)
	}

	showDetail := func(i int) {
		r := failed[i]
		detail.Clear()
		fmt.Fprintf(detail, "[yellow]%s[-]\n\n", r.Name)
		fmt.Fprintf(detail, "RMS       [red]%.2f[-] (tolerance %.0f)\n\n", r.RMS, r.Tol)
		fmt.Fprintf(detail, "baseline  %s\n", r.Baseline)
		fmt.Fprintf(detail, "result    %s\n", r.Result)
		fmt.Fprintf(detail, "expected  %s\n", r.Expected)
		if r.Diff != "" {
			fmt.Fprintf(detail, "diff      %s\n", r.Diff)
		}
		if approved[i] {
			fmt.Fprintf(detail, "\n[green]approved as new baseline[-]\n")
		}
		fmt.Fprintf(detail, "\n[a][-] approve  [s][-] skip  [q][-] quit\n")
	}

	for i := range failed {
		list.AddItem(itemText(i), "", 0, nil)
	}
	list.SetChangedFunc(func(i int, _ string, _ string, _ rune) {
		if i >= 0 && i < len(failed) {
			showDetail(i)
		}
	})
	showDetail(0)

	var triageErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		i := list.GetCurrentItem()
		switch event.Rune() {
		case 'a':
			if i >= 0 && i < len(failed) && !approved[i] {
				r := failed[i]
				dst := r.Baseline
				if dst == "" {
					dst = filepath.Join(cfg.Pkg, cfg.BaselineDirName, r.Subdir, r.Name)
				}
				if err := copyImage(r.Result, dst); err != nil {
					triageErr = err
					app.Stop()
					return nil
				}
				approved[i] = true
				list.SetItemText(i, itemText(i), "")
				showDetail(i)
			}
			return nil
		case 's':
			if i < list.GetItemCount()-1 {
				list.SetCurrentItem(i + 1)
			}
			return nil
		case 'q':
			app.Stop()
			return nil
		}
		return event
	})

	flex := tview.NewFlex().
		AddItem(list, 0, 1, true).
		AddItem(detail, 0, 2, false)

	if err := app.SetRoot(flex, true).Run(); err != nil {
		return err
	}
	if triageErr != nil {
		return triageErr
	}

	if n := len(approved); n > 0 {
		color.Green("Approved %d baseline(s)", n)
	}
	return nil
}
