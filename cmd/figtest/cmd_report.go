package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gofig/figtest/summary"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the outcome of the last comparison run",
	Long:  "Read the run summary from the result directory and print one line per comparison. Exits non-zero when the run had failures.",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	s, err := summary.Load(cfg.ResultDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tNAME\tRMS\tTOL\tDIFF")
	for _, r := range s.Records {
		status := color.GreenString("ok")
		rms := "-"
		diff := ""
		if !r.OK {
			status = color.RedString("FAIL")
			rms = fmt.Sprintf("%.2f", r.RMS)
			diff = fitToWidth(out, r.Diff)
		}
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%.0f\t%s\n", status, r.Subdir, r.Name, rms, r.Tol, diff)
	}
	tw.Flush()

	fmt.Fprintf(out, "\n%d comparisons, %s, %s (in %s)\n",
		s.Meta.Total,
		color.GreenString("%d passed", s.Meta.Passed),
		color.RedString("%d failed", s.Meta.Failed),
		s.Meta.Duration)

	if s.Meta.Failed > 0 {
		return fmt.Errorf("%d comparison(s) failed", s.Meta.Failed)
	}
	return nil
}

// fitToWidth truncates a path so report rows do not wrap in the
// terminal the command writes to. Non-terminal output (pipes, CI logs,
// redirected writers) is left untruncated.
func fitToWidth(out io.Writer, s string) string {
	f, ok := out.(*os.File)
	if !ok {
		return s
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return s
	}
	max := cols / 2
	if len(s) <= max || max < 4 {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
