package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the resolved CLI configuration. Precedence, lowest to
// highest: built-in defaults, environment (after .env autoload),
// figtest.yaml, command-line flags.
type Config struct {
	// ResultDir is where result images and the run summary live.
	ResultDir string `yaml:"result_dir"`

	// Pkg is the package directory holding baseline_images.
	Pkg string `yaml:"pkg"`

	// BaselineDirName is the baseline directory name under Pkg.
	BaselineDirName string `yaml:"baseline_dir"`

	// Tolerance is the default RMS tolerance scaffolded tests use.
	Tolerance float64 `yaml:"tolerance"`
}

var cfg Config

// configFile is looked up in the working directory.
const configFile = "figtest.yaml"

// loadConfig resolves the configuration. Flag values already bound
// into cfg by cobra win over everything, so the file and environment
// only fill fields the flags left empty.
func loadConfig(cmd *cobra.Command) error {
	flagResultDir := cfg.ResultDir
	flagPkg := cfg.Pkg

	cfg = Config{
		ResultDir:       "result_images",
		Pkg:             ".",
		BaselineDirName: "baseline_images",
		Tolerance:       17,
	}

	// .env autoload; a missing file is the normal case.
	if err := godotenv.Load(); err == nil {
		logrus.Debug("loaded .env")
	}
	if dir := os.Getenv("FIGTEST_RESULT_DIR"); dir != "" {
		cfg.ResultDir = dir
	}

	if data, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return errors.Wrapf(err, "parse %s", configFile)
		}
		logrus.Debugf("loaded %s", configFile)
	}

	if flagResultDir != "" {
		cfg.ResultDir = flagResultDir
	}
	if flagPkg != "" {
		cfg.Pkg = flagPkg
	}
	if cfg.BaselineDirName == "" {
		cfg.BaselineDirName = "baseline_images"
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 17
	}
	return nil
}
