package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/forcemetrics/apexscan/app"
	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/config"
	"github.com/forcemetrics/apexscan/service"
	"github.com/spf13/cobra"
)

// ScanExitError is a custom error type for scan command exit codes
type ScanExitError struct {
	Code    int
	Message string
}

func (e *ScanExitError) Error() string {
	return e.Message
}

var (
	scanFormat      string
	scanOutputPath  string
	scanConfigPath  string
	scanMinSeverity string
	scanSortBy      string
	scanRules       []string
	scanShowDetails bool
	scanTelemetry   bool
	scanOrgID       string
	scanEndpoint    string
	scanConcurrency int
	scanNoRecursive bool
	scanNoProgress  bool
	scanFailOn      string
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "Scan Apex sources for performance antipatterns",
		Long: `Scan Apex classes and triggers for performance antipatterns.

Findings carry a static severity derived from code structure alone. With
--telemetry, severities are recomputed from the org's production runtime
data and findings gain observed execution metrics.

Exit codes:
  0 - Scan completed, no findings at or above --fail-on
  1 - Findings at or above the --fail-on severity
  2 - Scan error (file not found, bad configuration, etc.)

Examples:
  # Scan a directory
  apexscan scan force-app/

  # JSON report to a file
  apexscan scan --format json --output report.json force-app/

  # Enrich severities with production telemetry
  apexscan scan --telemetry --org 00D000000000001 force-app/

  # Fail the build on critical findings
  apexscan scan --fail-on CRITICAL force-app/

  # Restrict the scan to one rule
  apexscan scan --rules UnboundedSOQLQuery force-app/`,
		RunE:          runScan,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVarP(&scanFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv")
	cmd.Flags().StringVarP(&scanOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringVarP(&scanConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&scanMinSeverity, "min-severity", "",
		"Minimum severity to report: MINOR, MAJOR, CRITICAL")
	cmd.Flags().StringVar(&scanSortBy, "sort", "",
		"Sort findings by: severity, line, unit, type")
	cmd.Flags().StringSliceVar(&scanRules, "rules", nil,
		"Restrict the scan to the named antipattern rules (comma-separated)")
	cmd.Flags().BoolVar(&scanShowDetails, "details", false,
		"Include runtime metrics and fix instructions in text output")
	cmd.Flags().BoolVar(&scanTelemetry, "telemetry", false,
		"Enrich finding severities with production runtime data")
	cmd.Flags().StringVar(&scanOrgID, "org", "",
		"Org whose runtime profile is requested")
	cmd.Flags().StringVar(&scanEndpoint, "endpoint", "",
		"Base URL of the telemetry service")
	cmd.Flags().IntVar(&scanConcurrency, "concurrency", 0,
		"Number of units scanned in parallel (0 = auto-detect)")
	cmd.Flags().BoolVar(&scanNoRecursive, "no-recursive", false,
		"Do not descend into subdirectories")
	cmd.Flags().BoolVar(&scanNoProgress, "no-progress", false,
		"Disable the progress bar")
	cmd.Flags().StringVar(&scanFailOn, "fail-on", "",
		"Exit with code 1 when findings at or above this severity remain")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &ScanExitError{Code: 2, Message: "no paths specified"}
	}

	var failOn domain.Severity
	if scanFailOn != "" {
		parsed, ok := domain.ParseSeverity(scanFailOn)
		if !ok {
			return &ScanExitError{Code: 2,
				Message: fmt.Sprintf("invalid --fail-on severity: %s (must be one of: MINOR, MAJOR, CRITICAL)", scanFailOn)}
		}
		failOn = parsed
	}

	// Engine thresholds come straight from the config file; request-level
	// defaults go through the configuration loader so flag overrides merge
	// in one place.
	cfg, err := config.LoadConfigWithTarget(scanConfigPath, args[0])
	if err != nil {
		return &ScanExitError{Code: 2, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	loader := service.NewConfigurationLoader()
	var base *domain.ScanRequest
	if scanConfigPath != "" {
		base, err = loader.LoadConfig(scanConfigPath)
		if err != nil {
			return &ScanExitError{Code: 2, Message: err.Error()}
		}
	} else {
		base = loader.LoadDefaultConfig()
	}

	req := loader.MergeConfig(base, scanOverride(cmd, args))
	if scanNoRecursive {
		req.Recursive = false
	}
	if err := loader.ValidateConfig(req); err != nil {
		return &ScanExitError{Code: 2, Message: err.Error()}
	}

	// Progress renders to stderr and only for interactive text runs
	pm := service.NewProgressManager(!scanNoProgress && req.OutputFormat == domain.OutputFormatText)
	defer pm.Close()

	svc, err := service.NewScanServiceWithProgress(cfg, pm)
	if err != nil {
		return &ScanExitError{Code: 2, Message: err.Error()}
	}

	formatter := service.NewOutputFormatterWithDetails(req.ShowDetails)
	useCase := app.NewScanUseCase(svc, formatter)

	ctx := context.Background()
	response, err := useCase.Execute(ctx, *req)
	if err != nil {
		return &ScanExitError{Code: 2, Message: err.Error()}
	}

	if req.OutputPath != "" {
		absPath, _ := filepath.Abs(req.OutputPath)
		fmt.Printf("Report saved to: %s\n", absPath)
	}

	if failOn != "" {
		if count := findingsAtLeast(response.Summary, failOn); count > 0 {
			return &ScanExitError{Code: 1,
				Message: fmt.Sprintf("%d findings at or above %s severity", count, failOn)}
		}
	}

	return nil
}

// scanOverride builds the request fragment holding only what the flags
// explicitly set, so unset flags never clobber configuration values.
func scanOverride(cmd *cobra.Command, args []string) *domain.ScanRequest {
	override := &domain.ScanRequest{
		Paths:               args,
		OutputPath:          scanOutputPath,
		ShowDetails:         scanShowDetails,
		Rules:               scanRules,
		ConfigPath:          scanConfigPath,
		EnrichWithTelemetry: scanTelemetry,
		OrgID:               scanOrgID,
		TelemetryEndpoint:   scanEndpoint,
		Concurrency:         scanConcurrency,
	}

	if cmd.Flags().Changed("format") {
		override.OutputFormat = domain.OutputFormat(scanFormat)
	}
	// Unknown severity and sort values pass through uppercased/raw and are
	// rejected by request validation with a full message.
	if scanMinSeverity != "" {
		override.MinSeverity = domain.Severity(strings.ToUpper(scanMinSeverity))
	}
	if scanSortBy != "" {
		override.SortBy = domain.SortCriteria(scanSortBy)
	}

	return override
}

// findingsAtLeast counts the findings in the summary at or above the
// given severity.
func findingsAtLeast(summary domain.ScanSummary, min domain.Severity) int {
	count := 0
	for name, n := range summary.FindingsBySeverity {
		if sev, ok := domain.ParseSeverity(name); ok && sev.AtLeast(min) {
			count += n
		}
	}
	return count
}
