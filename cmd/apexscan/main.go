package main

import (
	"fmt"
	"os"

	"github.com/forcemetrics/apexscan/internal/logging"
	"github.com/forcemetrics/apexscan/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = version.Version

	rootDebug bool
	rootQuiet bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "apexscan",
		Short: "apexscan - Apex antipattern scanner",
		Long: `apexscan is a static analyzer for Salesforce Apex code.
It detects performance antipatterns and can enrich finding severities with
the org's production runtime telemetry.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(os.Stderr, logging.LevelFromVerbosity(rootDebug, rootQuiet), logging.FormatText)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false,
		"Suppress log output")

	// Add subcommands
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		// Handle custom exit codes from the scan command
		if exitErr, ok := err.(*ScanExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			// Silently exit with the specified code (output already printed)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
