package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanFlags struct {
	yes bool
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the result images directory",
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanFlags.yes, "yes", false, "confirm deletion")
}

func runClean(_ *cobra.Command, _ []string) error {
	if !cleanFlags.yes {
		return fmt.Errorf("refusing to delete %s without --yes", cfg.ResultDir)
	}
	if _, err := os.Stat(cfg.ResultDir); os.IsNotExist(err) {
		color.Yellow("%s does not exist; nothing to clean", cfg.ResultDir)
		return nil
	}
	if err := os.RemoveAll(cfg.ResultDir); err != nil {
		return err
	}
	color.Green("Removed %s", cfg.ResultDir)
	return nil
}
