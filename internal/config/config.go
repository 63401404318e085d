package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default severity thresholds for runtime-enriched findings
const (
	// DefaultMajorCountThreshold is the execution count above which a
	// runtime-enriched finding escalates to MAJOR
	DefaultMajorCountThreshold int64 = 1000

	// DefaultCriticalCountThreshold is the execution count above which a
	// runtime-enriched finding escalates to CRITICAL
	DefaultCriticalCountThreshold int64 = 10_000_000

	// DefaultCriticalAvgCpuTimeMs is the average CPU time in milliseconds
	// above which an entrypoint marks a method-level finding CRITICAL
	DefaultCriticalAvgCpuTimeMs float64 = 2000
)

// Default telemetry settings
const (
	// DefaultTelemetryRetryAttempts is the number of retries after the
	// initial runtime data request fails
	DefaultTelemetryRetryAttempts = 2

	// DefaultTelemetryTimeoutSeconds is the per-request timeout for the
	// telemetry backend
	DefaultTelemetryTimeoutSeconds = 30
)

// Default output settings
const (
	// DefaultOutputFormat is the report format used when none is requested
	DefaultOutputFormat = "text"

	// DefaultMinSeverity is the minimum severity level to report
	DefaultMinSeverity = "MINOR"

	// DefaultSortBy is the default ordering for findings in reports
	DefaultSortBy = "severity"
)

// Config represents the main configuration structure
type Config struct {
	// Scan holds source collection and scheduling configuration
	Scan ScanConfig `json:"scan" mapstructure:"scan" yaml:"scan"`

	// Severity holds the runtime severity thresholds
	Severity SeverityConfig `json:"severity" mapstructure:"severity" yaml:"severity"`

	// Telemetry holds the runtime data backend configuration
	Telemetry TelemetryConfig `json:"telemetry" mapstructure:"telemetry" yaml:"telemetry"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`
}

// ScanConfig holds configuration for source collection and scan scheduling
type ScanConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to scan directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// FollowSymlinks controls whether to follow symbolic links
	FollowSymlinks bool `json:"follow_symlinks" mapstructure:"follow_symlinks" yaml:"follow_symlinks"`

	// Concurrency is the number of units scanned in parallel; 0 uses the CPU count
	Concurrency int `json:"concurrency" mapstructure:"concurrency" yaml:"concurrency"`

	// Rules restricts the scan to the named antipattern types; empty means all
	Rules []string `json:"rules" mapstructure:"rules" yaml:"rules"`
}

// SeverityConfig holds the thresholds applied when findings are enriched
// with production telemetry
type SeverityConfig struct {
	// MajorCountThreshold is the execution count above which severity is MAJOR
	MajorCountThreshold int64 `json:"major_count_threshold" mapstructure:"major_count_threshold" yaml:"major_count_threshold"`

	// CriticalCountThreshold is the execution count above which severity is CRITICAL
	CriticalCountThreshold int64 `json:"critical_count_threshold" mapstructure:"critical_count_threshold" yaml:"critical_count_threshold"`

	// CriticalAvgCpuTimeMs marks method-level findings CRITICAL when any
	// production entrypoint averages more CPU milliseconds than this
	CriticalAvgCpuTimeMs float64 `json:"critical_avg_cpu_time_ms" mapstructure:"critical_avg_cpu_time_ms" yaml:"critical_avg_cpu_time_ms"`
}

// TelemetryConfig holds configuration for the runtime data backend
type TelemetryConfig struct {
	// Enabled controls whether findings are enriched with runtime data
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the base URL of the org's telemetry REST service
	Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`

	// OrgID identifies the org whose runtime profile is requested
	OrgID string `json:"org_id" mapstructure:"org_id" yaml:"org_id"`

	// AuthToken is the bearer token sent with runtime data requests
	AuthToken string `json:"auth_token,omitempty" mapstructure:"auth_token" yaml:"auth_token,omitempty"`

	// RetryAttempts is the number of retries after a failed request
	RetryAttempts int `json:"retry_attempts" mapstructure:"retry_attempts" yaml:"retry_attempts"`

	// TimeoutSeconds is the per-request timeout
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails controls whether to show per-finding breakdowns
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// SortBy specifies how to sort findings: severity, line, unit, type
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by"`

	// MinSeverity is the minimum severity level to report
	MinSeverity string `json:"min_severity" mapstructure:"min_severity" yaml:"min_severity"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			IncludePatterns: []string{
				"**/*.cls",
				"**/*.trigger",
			},
			ExcludePatterns: []string{
				".git",
				".sfdx",
				".localdevserver",
				"node_modules",
			},
			Recursive:      true,
			FollowSymlinks: false,
			Concurrency:    0,
			Rules:          []string{},
		},
		Severity: SeverityConfig{
			MajorCountThreshold:    DefaultMajorCountThreshold,
			CriticalCountThreshold: DefaultCriticalCountThreshold,
			CriticalAvgCpuTimeMs:   DefaultCriticalAvgCpuTimeMs,
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			RetryAttempts:  DefaultTelemetryRetryAttempts,
			TimeoutSeconds: DefaultTelemetryTimeoutSeconds,
		},
		Output: OutputConfig{
			Format:      DefaultOutputFormat,
			ShowDetails: false,
			SortBy:      DefaultSortBy,
			MinSeverity: DefaultMinSeverity,
		},
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// discoverConfigFile finds the appropriate config file path
// Single responsibility: configuration file discovery only
func discoverConfigFile(targetPath string) string {
	return findDefaultConfig(targetPath)
}

// loadConfigFromFile reads and parses a configuration file
// Single responsibility: file loading and parsing only
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	v.SetConfigFile(configPath)

	v.SetEnvPrefix("APEXSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Explicit binds so values provided only through the environment
	// survive Unmarshal (APEXSCAN_TELEMETRY_ENDPOINT and friends).
	for _, key := range []string{"telemetry.endpoint", "telemetry.org_id", "telemetry.auth_token"} {
		_ = v.BindEnv(key)
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigWithTarget loads configuration with target path context
// Orchestrates discovery and loading but delegates specific concerns
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	// If no config path specified, discover one
	if configPath == "" {
		configPath = discoverConfigFile(targetPath)
	}

	// Load the configuration from the determined path
	return loadConfigFromFile(configPath)
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations
// targetPath is the path being scanned (e.g., the Apex file or directory)
func findDefaultConfig(targetPath string) string {
	candidates := []string{
		".apexscan.yaml",
		".apexscan.yml",
		"apexscan.yaml",
		"apexscan.yml",
	}

	// If targetPath is provided, search from there upward
	if targetPath != "" {
		// Convert to absolute path
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			// Search from target directory up to root with robust termination
			// Handle Windows edge cases: volume roots (C:\), UNC paths (\\server\share), long paths
			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				// Robust termination conditions for cross-platform compatibility
				parent := filepath.Dir(dir)
				if parent == dir || // Unix-style root reached (/), Windows UNC root (\\server)
					dir == volume || // Windows volume root reached (C:\)
					(volume != "" && dir == volume+string(filepath.Separator)) { // Alternative volume root format
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "apexscan"), candidates); config != "" {
			return config
		}
	}

	// Check ~/.config/apexscan/ (XDG default)
	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", "apexscan")
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}

		// Check home directory (backward compatibility)
		if config := searchConfigInDirectory(home, candidates); config != "" {
			return config
		}
	}

	// Check APEXSCAN_CONFIG environment variable as fallback
	if envConfig := os.Getenv("APEXSCAN_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	// Validate include patterns (at least one must be specified)
	if len(c.Scan.IncludePatterns) == 0 {
		return fmt.Errorf("scan.include_patterns cannot be empty")
	}

	if c.Scan.Concurrency < 0 {
		return fmt.Errorf("scan.concurrency must be >= 0, got %d", c.Scan.Concurrency)
	}

	// Validate severity thresholds
	if c.Severity.MajorCountThreshold < 1 {
		return fmt.Errorf("severity.major_count_threshold must be >= 1, got %d", c.Severity.MajorCountThreshold)
	}

	if c.Severity.CriticalCountThreshold <= c.Severity.MajorCountThreshold {
		return fmt.Errorf("severity.critical_count_threshold (%d) must be > major_count_threshold (%d)",
			c.Severity.CriticalCountThreshold, c.Severity.MajorCountThreshold)
	}

	if c.Severity.CriticalAvgCpuTimeMs <= 0 {
		return fmt.Errorf("severity.critical_avg_cpu_time_ms must be > 0, got %v", c.Severity.CriticalAvgCpuTimeMs)
	}

	// Validate telemetry settings
	if c.Telemetry.RetryAttempts < 0 {
		return fmt.Errorf("telemetry.retry_attempts must be >= 0, got %d", c.Telemetry.RetryAttempts)
	}

	if c.Telemetry.TimeoutSeconds < 1 {
		return fmt.Errorf("telemetry.timeout_seconds must be >= 1, got %d", c.Telemetry.TimeoutSeconds)
	}

	// Validate output format
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}

	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	// Validate sort options
	validSortBy := map[string]bool{
		"severity": true,
		"line":     true,
		"unit":     true,
		"type":     true,
	}

	if !validSortBy[c.Output.SortBy] {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: severity, line, unit, type", c.Output.SortBy)
	}

	// Validate minimum severity
	validSeverities := map[string]bool{
		"MINOR":    true,
		"MAJOR":    true,
		"CRITICAL": true,
	}

	if !validSeverities[strings.ToUpper(c.Output.MinSeverity)] {
		return fmt.Errorf("invalid output.min_severity '%s', must be one of: MINOR, MAJOR, CRITICAL", c.Output.MinSeverity)
	}

	return nil
}

// RuleEnabled reports whether the named antipattern type should be scanned.
// An empty rule list enables every registered type.
func (c *ScanConfig) RuleEnabled(name string) bool {
	if len(c.Rules) == 0 {
		return true
	}
	for _, rule := range c.Rules {
		if strings.EqualFold(rule, name) {
			return true
		}
	}
	return false
}

// ResolveConcurrency returns the effective worker count for parallel scans
func (c *ScanConfig) ResolveConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// HasConnection reports whether enough connection details are configured to
// reach the telemetry backend
func (c *TelemetryConfig) HasConnection() bool {
	return c.Endpoint != "" && c.OrgID != ""
}

// Timeout returns the per-request timeout as a duration
func (c *TelemetryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set all config values in viper
	v.Set("scan", config.Scan)
	v.Set("severity", config.Severity)
	v.Set("telemetry", config.Telemetry)
	v.Set("output", config.Output)

	return v.WriteConfig()
}
