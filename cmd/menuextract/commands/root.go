// Package commands implements the menuextract cobra CLI: run a document
// through the extraction core and print the resulting structured
// payload, or drive the text-only fallback path directly.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "menuextract",
	Short: "Menu extraction core CLI",
	Long:  "menuextract rasterizes a PDF or image menu, runs it through the OCR/layout/grammar extraction core, and prints a structured menu payload.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug|info|warn|error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
