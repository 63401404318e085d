package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/config"
)

// ConfigurationLoaderImpl implements the ConfigurationLoader interface
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.ScanRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}

	return c.convertToScanRequest(cfg), nil
}

// LoadDefaultConfig loads the default configuration, using a discovered
// .apexscan.yaml when one exists
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.ScanRequest {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return c.convertToScanRequest(cfg)
	}

	// Fall back to hardcoded default configuration
	cfg = config.DefaultConfig()
	return c.convertToScanRequest(cfg)
}

// FindDefaultConfigFile searches for a default configuration file
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile() string {
	// Possible config file names in order of preference
	configFiles := []string{
		".apexscan.yaml",
		".apexscan.yml",
		"apexscan.yaml",
		"apexscan.yml",
	}

	// Check current directory
	for _, file := range configFiles {
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	// Check parent directories up to root
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, file := range configFiles {
			configPath := filepath.Join(currentDir, file)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// MergeConfig merges CLI flags with configuration file
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.ScanRequest, override *domain.ScanRequest) *domain.ScanRequest {
	// Start with base configuration
	merged := *base

	// Always override paths as they come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}

	// Output configuration
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}

	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}

	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}

	if override.ShowDetails {
		merged.ShowDetails = override.ShowDetails
	}

	// Filtering and sorting
	if override.MinSeverity != "" {
		merged.MinSeverity = override.MinSeverity
	}

	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}

	if len(override.Rules) > 0 {
		merged.Rules = override.Rules
	}

	// Config path is always from override if provided
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	// Telemetry enrichment
	if override.EnrichWithTelemetry {
		merged.EnrichWithTelemetry = override.EnrichWithTelemetry
	}

	if override.OrgID != "" {
		merged.OrgID = override.OrgID
	}

	if override.TelemetryEndpoint != "" {
		merged.TelemetryEndpoint = override.TelemetryEndpoint
	}

	// Scan options
	if override.Recursive {
		merged.Recursive = override.Recursive
	}

	if override.Concurrency > 0 {
		merged.Concurrency = override.Concurrency
	}

	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}

	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}

	return &merged
}

// convertToScanRequest converts a Config to ScanRequest
func (c *ConfigurationLoaderImpl) convertToScanRequest(cfg *config.Config) *domain.ScanRequest {
	minSeverity, ok := domain.ParseSeverity(cfg.Output.MinSeverity)
	if !ok {
		minSeverity = domain.SeverityMinor
	}

	return &domain.ScanRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		// Output settings
		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		ShowDetails:  cfg.Output.ShowDetails,
		MinSeverity:  minSeverity,
		SortBy:       domain.SortCriteria(cfg.Output.SortBy),

		// Rule selection
		Rules: cfg.Scan.Rules,

		// Telemetry settings
		EnrichWithTelemetry: cfg.Telemetry.Enabled,
		OrgID:               cfg.Telemetry.OrgID,
		TelemetryEndpoint:   cfg.Telemetry.Endpoint,

		// Scan options
		Recursive:       cfg.Scan.Recursive,
		Concurrency:     cfg.Scan.Concurrency,
		IncludePatterns: cfg.Scan.IncludePatterns,
		ExcludePatterns: cfg.Scan.ExcludePatterns,
	}
}

// ValidateConfig validates the request produced by configuration loading
func (c *ConfigurationLoaderImpl) ValidateConfig(req *domain.ScanRequest) error {
	validFormats := map[domain.OutputFormat]bool{
		domain.OutputFormatText: true,
		domain.OutputFormatJSON: true,
		domain.OutputFormatYAML: true,
		domain.OutputFormatCSV:  true,
	}
	if !validFormats[req.OutputFormat] {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv)",
			req.OutputFormat)
	}

	validSorts := map[domain.SortCriteria]bool{
		domain.SortBySeverity: true,
		domain.SortByLine:     true,
		domain.SortByUnit:     true,
		domain.SortByType:     true,
	}
	if !validSorts[req.SortBy] {
		return fmt.Errorf("invalid sort criteria: %s (must be one of: severity, line, unit, type)",
			req.SortBy)
	}

	if req.MinSeverity != "" {
		if _, ok := domain.ParseSeverity(string(req.MinSeverity)); !ok {
			return fmt.Errorf("invalid minimum severity: %s (must be one of: MINOR, MAJOR, CRITICAL)",
				req.MinSeverity)
		}
	}

	if req.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative, got %d", req.Concurrency)
	}

	return nil
}
