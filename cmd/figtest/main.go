// figtest manages the image-comparison artifacts of a rendering test
// suite: reporting a run, listing and approving baselines, triaging
// failures, and scaffolding new comparison tests.
//
// Usage:
//
//	figtest report   [--dir result_images]
//	figtest list     [--pkg .]
//	figtest approve  [name ...] [--all] [--pkg .]
//	figtest triage   [--dir result_images] [--pkg .]
//	figtest clean    --yes [--dir result_images]
//	figtest scaffold [--pkg .] [-o file]
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootFlags struct {
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:     "figtest",
	Short:   "Manage image-comparison baselines and results",
	Long:    "figtest inspects the artifacts of an image-comparison test run: the stored baseline images, the freshly rendered results, and the run summary. It reports outcomes, promotes results to baselines, and scaffolds new comparison tests.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
		if rootFlags.verbose || os.Getenv("FIGTEST_LOG") == "debug" {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return loadConfig(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&cfg.ResultDir, "dir", "", "result images directory (default result_images)")
	pf.StringVar(&cfg.Pkg, "pkg", "", "package directory containing baseline_images (default .)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(scaffoldCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
