package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/tools/imports"
)

var scaffoldFlags struct {
	output string
}

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold",
	Short: "Generate a comparison test skeleton from existing baselines",
	Long:  "Walk the baseline images under the package directory and emit a _test.go skeleton with one harness-wrapped comparison test per baseline. The body of each test is left for the author; the assertion and cleanup wiring is in place.",
	RunE:  runScaffold,
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldFlags.output, "output", "o", "", "write to file instead of stdout")
}

func runScaffold(cmd *cobra.Command, _ []string) error {
	baselineRoot := filepath.Join(cfg.Pkg, cfg.BaselineDirName)
	bySubdir := map[string][]string{}

	err := filepath.Walk(baselineRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".png" {
			return err
		}
		rel, err := filepath.Rel(baselineRoot, path)
		if err != nil {
			return err
		}
		subdir := filepath.ToSlash(filepath.Dir(rel))
		bySubdir[subdir] = append(bySubdir[subdir], filepath.Base(rel))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walk %s", baselineRoot)
	}
	if len(bySubdir) == 0 {
		return fmt.Errorf("no baseline images under %s", baselineRoot)
	}

	src, err := generateTestFile(bySubdir)
	if err != nil {
		return err
	}

	if scaffoldFlags.output != "" {
		return os.WriteFile(scaffoldFlags.output, src, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(src)
	return err
}

// generateTestFile renders the skeleton and runs it through the
// imports formatter, which both gofmts and prunes the import list.
func generateTestFile(bySubdir map[string][]string) ([]byte, error) {
	subdirs := make([]string, 0, len(bySubdir))
	for s := range bySubdir {
		subdirs = append(subdirs, s)
	}
	sort.Strings(subdirs)

	var buf bytes.Buffer
	buf.WriteString("// Code generated by figtest scaffold; edit the test bodies.\n\n")
	buf.WriteString("package plots_test\n\n")
	buf.WriteString("import (\n\t\"testing\"\n\n\t\"github.com/gofig/figtest\"\n)\n\n")

	// TestMain flushes the run summary that figtest report and triage read.
	buf.WriteString("func TestMain(m *testing.M) {\n\tfigtest.Main(m)\n}\n\n")

	for _, subdir := range subdirs {
		names := bySubdir[subdir]
		sort.Strings(names)
		for _, name := range names {
			base := strings.TrimSuffix(name, ".png")
			fmt.Fprintf(&buf, "func Test%s(t *testing.T) {\n", exportName(base))
			buf.WriteString("\tfigtest.Run(t, func(t *testing.T) {\n")
			fmt.Fprintf(&buf, "\t\tvar p figtest.Plot // TODO: build the %q plot\n", base)
			if cfg.Tolerance != 17 {
				fmt.Fprintf(&buf, "\t\tfigtest.AssertImageEqual(t, p, %q, figtest.WithTolerance(%v))\n", base, cfg.Tolerance)
			} else {
				fmt.Fprintf(&buf, "\t\tfigtest.AssertImageEqual(t, p, %q)\n", base)
			}
			buf.WriteString("\t})\n}\n\n")
		}
	}

	src, err := imports.Process("scaffold_test.go", buf.Bytes(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "format scaffold")
	}
	return src, nil
}

// exportName turns an image base name into an exported Go identifier:
// "bar-chart_2" becomes "BarChart2".
func exportName(base string) string {
	var out strings.Builder
	up := true
	for _, r := range base {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ':
			up = true
		case up:
			out.WriteRune(unicode.ToUpper(r))
			up = false
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
