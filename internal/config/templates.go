package config

import "strconv"

// ProjectLayout represents the directory layout of a Salesforce project
type ProjectLayout string

const (
	ProjectLayoutGeneric ProjectLayout = "generic"
	ProjectLayoutSFDX    ProjectLayout = "sfdx"
	ProjectLayoutMDAPI   ProjectLayout = "mdapi"
)

// Strictness represents the severity threshold strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// LayoutPreset holds source patterns for different project layouts
type LayoutPreset struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// StrictnessPreset holds threshold values for different strictness levels
type StrictnessPreset struct {
	MajorCountThreshold    int64
	CriticalCountThreshold int64
	CriticalAvgCpuTimeMs   float64
}

// GetLayoutPresets returns presets for different project layouts
func GetLayoutPresets() map[ProjectLayout]LayoutPreset {
	return map[ProjectLayout]LayoutPreset{
		ProjectLayoutGeneric: {
			IncludePatterns: []string{
				"**/*.cls",
				"**/*.trigger",
			},
			ExcludePatterns: []string{
				".git",
				".sfdx",
				"node_modules",
			},
		},
		ProjectLayoutSFDX: {
			IncludePatterns: []string{
				"force-app/**/*.cls",
				"force-app/**/*.trigger",
			},
			ExcludePatterns: []string{
				".git",
				".sfdx",
				".localdevserver",
				"node_modules",
			},
		},
		ProjectLayoutMDAPI: {
			IncludePatterns: []string{
				"src/classes/**/*.cls",
				"src/triggers/**/*.trigger",
			},
			ExcludePatterns: []string{
				".git",
			},
		},
	}
}

// GetStrictnessPresets returns presets for different strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			MajorCountThreshold:    10_000,
			CriticalCountThreshold: 50_000_000,
			CriticalAvgCpuTimeMs:   5000,
		},
		StrictnessStandard: {
			MajorCountThreshold:    DefaultMajorCountThreshold,
			CriticalCountThreshold: DefaultCriticalCountThreshold,
			CriticalAvgCpuTimeMs:   DefaultCriticalAvgCpuTimeMs,
		},
		StrictnessStrict: {
			MajorCountThreshold:    100,
			CriticalCountThreshold: 1_000_000,
			CriticalAvgCpuTimeMs:   1000,
		},
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(layout ProjectLayout, strictness Strictness) string {
	layoutPresets := GetLayoutPresets()
	strictnessPresets := GetStrictnessPresets()

	preset := layoutPresets[layout]
	strict := strictnessPresets[strictness]

	includePatterns := formatYAMLList(preset.IncludePatterns)
	excludePatterns := formatYAMLList(preset.ExcludePatterns)

	return `# apexscan configuration
# Documentation: https://github.com/forcemetrics/apexscan

# ==============================================================================
# SCAN SCOPE
# ==============================================================================
# Controls which Apex sources are scanned
scan:
  # File patterns to include (glob patterns)
  include_patterns:
` + includePatterns + `
  # File patterns to exclude (glob patterns)
  exclude_patterns:
` + excludePatterns + `
  # Scan directories recursively
  recursive: true

  # Number of units scanned in parallel (0 = auto-detect based on CPU)
  concurrency: 0

  # Restrict the scan to specific antipattern types (empty = all)
  # rules:
  #   - ExpensiveGlobalDescribe
  #   - UnboundedSOQLQuery
  #   - UnusedSOQLFields

# ==============================================================================
# RUNTIME SEVERITY THRESHOLDS
# ==============================================================================
# Applied when findings are enriched with production telemetry
severity:
  # Execution count above which a finding escalates to MAJOR
  major_count_threshold: ` + strconv.FormatInt(strict.MajorCountThreshold, 10) + `

  # Execution count above which a finding escalates to CRITICAL
  critical_count_threshold: ` + strconv.FormatInt(strict.CriticalCountThreshold, 10) + `

  # Average entrypoint CPU time (ms) that marks a method-level finding CRITICAL
  critical_avg_cpu_time_ms: ` + strconv.FormatFloat(strict.CriticalAvgCpuTimeMs, 'f', -1, 64) + `

# ==============================================================================
# TELEMETRY
# ==============================================================================
# Connection to the org's runtime data service
telemetry:
  # Enrich findings with production runtime data
  enabled: false

  # Base URL of the telemetry REST service
  # endpoint: https://yourinstance.my.salesforce.com

  # Org whose runtime profile is requested
  # org_id: 00D000000000001

  # Retries after a failed request
  retry_attempts: 2

  # Per-request timeout in seconds
  timeout_seconds: 30

# ==============================================================================
# OUTPUT SETTINGS
# ==============================================================================
output:
  # Output format: text, json, yaml, csv
  format: text

  # Show per-finding breakdowns, including fix instructions
  show_details: false

  # Sort findings by: severity, line, unit, type
  sort_by: severity

  # Minimum severity level to report: MINOR, MAJOR, CRITICAL
  min_severity: MINOR
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# apexscan configuration (minimal)
# See full options: https://github.com/forcemetrics/apexscan

scan:
  include_patterns:
    - "**/*.cls"
    - "**/*.trigger"

severity:
  major_count_threshold: 1000
  critical_count_threshold: 10000000

output:
  format: text
  min_severity: MINOR
`
}

// formatYAMLList formats a string slice as an indented YAML sequence
func formatYAMLList(items []string) string {
	result := ""
	for _, item := range items {
		result += `    - "` + item + `"` + "\n"
	}
	return result
}
