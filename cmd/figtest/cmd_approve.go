package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var approveFlags struct {
	all bool
}

var approveCmd = &cobra.Command{
	Use:   "approve [name ...]",
	Short: "Promote result images to baselines",
	Long:  "Copy result images over their baselines, accepting the current rendering as the new reference. Names may omit the .png suffix and the subdirectory; --all approves every result that has a baseline counterpart location.",
	RunE:  runApprove,
}

func init() {
	approveCmd.Flags().BoolVar(&approveFlags.all, "all", false, "approve every result image")
}

func runApprove(cmd *cobra.Command, args []string) error {
	if !approveFlags.all && len(args) == 0 {
		return fmt.Errorf("nothing to approve: give image names or --all")
	}

	pairs, err := collectPairs()
	if err != nil {
		return err
	}

	var selected []imagePair
	if approveFlags.all {
		for _, p := range pairs {
			if p.hasResult {
				selected = append(selected, p)
			}
		}
	} else {
		for _, arg := range args {
			p, err := matchPair(pairs, arg)
			if err != nil {
				return err
			}
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		color.Yellow("No result images to approve")
		return nil
	}

	bar := progressbar.NewOptions(len(selected),
		progressbar.OptionSetDescription(color.CyanString("Approving baselines")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(os.Stderr, "\n") }),
	)

	var g errgroup.Group
	g.SetLimit(4)
	for _, p := range selected {
		g.Go(func() error {
			src := filepath.Join(cfg.ResultDir, p.subdir, p.name)
			dst := filepath.Join(cfg.Pkg, cfg.BaselineDirName, p.subdir, p.name)
			if err := copyImage(src, dst); err != nil {
				return err
			}
			logrus.Debugf("approved %s", dst)
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	color.Green("Approved %d baseline(s)", len(selected))
	return nil
}

// matchPair resolves a user-given name to exactly one result image.
// Bare names match any subdirectory; subdir/name pins one.
func matchPair(pairs []imagePair, arg string) (imagePair, error) {
	want := arg
	if !strings.Contains(want, ".png") {
		want += ".png"
	}

	var matches []imagePair
	for _, p := range pairs {
		if p.name == want || p.subdir+"/"+p.name == want {
			matches = append(matches, p)
		}
	}
	switch {
	case len(matches) == 0:
		return imagePair{}, fmt.Errorf("no image named %q", arg)
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.subdir + "/" + m.name
		}
		return imagePair{}, fmt.Errorf("%q is ambiguous: %s", arg, strings.Join(names, ", "))
	case !matches[0].hasResult:
		return imagePair{}, fmt.Errorf("%q has no result image to approve; run the tests first", arg)
	}
	return matches[0], nil
}

// copyImage copies src over dst, creating the destination directory.
func copyImage(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
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
