package domain

import (
	"context"
	"io"
	"strings"
)

// AntipatternType identifies a specific antipattern rule. It is the join key
// across detectors, recommenders, enrichers, and registries.
type AntipatternType string

const (
	// AntipatternExpensiveGlobalDescribe flags call sites of
	// Schema.getGlobalDescribe(), which is expensive in orgs with many objects.
	AntipatternExpensiveGlobalDescribe AntipatternType = "ExpensiveGlobalDescribe"

	// AntipatternUnboundedSOQLQuery flags SOQL queries that have neither a
	// WHERE clause nor a LIMIT clause.
	AntipatternUnboundedSOQLQuery AntipatternType = "UnboundedSOQLQuery"

	// AntipatternUnusedSOQLFields flags SOQL queries that project fields the
	// surrounding code never reads.
	AntipatternUnusedSOQLFields AntipatternType = "UnusedSOQLFields"
)

// Severity is the ordered severity scale for detected antipatterns.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityMajor    Severity = "MAJOR"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the ordinal position of the severity, with unknown values
// ranked below MINOR. Higher rank means more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityMajor:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether s is at least as severe as min.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// ParseSeverity converts a string to a Severity, accepting any casing.
// The second return value reports whether the input named a known level.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToUpper(s)) {
	case SeverityMinor:
		return SeverityMinor, true
	case SeverityMajor:
		return SeverityMajor, true
	case SeverityCritical:
		return SeverityCritical, true
	default:
		return "", false
	}
}

// SeveritySource records which stage of the pipeline assigned the current
// severity of a finding.
type SeveritySource string

const (
	// SeveritySourceStatic marks a severity derived from code structure alone.
	SeveritySourceStatic SeveritySource = "static"

	// SeveritySourceRuntime marks a severity recomputed from production
	// runtime telemetry.
	SeveritySourceRuntime SeveritySource = "runtime"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for sorting scan findings
type SortCriteria string

const (
	SortBySeverity SortCriteria = "severity"
	SortByLine     SortCriteria = "line"
	SortByUnit     SortCriteria = "unit"
	SortByType     SortCriteria = "type"
)

// DetectedAntipattern is a single occurrence of an antipattern in one
// compilation unit. Field names follow the established report contract, so
// serialized output stays compatible with existing consumers.
type DetectedAntipattern struct {
	// UnitName is the compilation unit (class or trigger) identifier
	UnitName string `json:"unitName" yaml:"unitName"`

	// MemberName is the enclosing method, when one exists. Enrichers use it
	// as a join key against method-level telemetry.
	MemberName string `json:"memberName,omitempty" yaml:"memberName,omitempty"`

	// LineNumber is the 1-indexed source line of the occurrence
	LineNumber int `json:"lineNumber" yaml:"lineNumber"`

	// SnippetBefore is the exact source substring that triggered detection
	SnippetBefore string `json:"snippetBefore" yaml:"snippetBefore"`

	// Severity is the current severity; static until an enricher recomputes it
	Severity Severity `json:"severity" yaml:"severity"`

	// SeveritySource is set once an enricher has acted; empty means the
	// finding is static-only
	SeveritySource SeveritySource `json:"severitySource,omitempty" yaml:"severitySource,omitempty"`

	// RuntimeMetrics is a formatted display string attached by enrichers
	RuntimeMetrics string `json:"runtimeMetrics,omitempty" yaml:"runtimeMetrics,omitempty"`

	// TypeMetadata carries detector-specific structured data for the
	// detector's own recommender (e.g. unused vs. original query fields)
	TypeMetadata map[string]any `json:"typeMetadata,omitempty" yaml:"typeMetadata,omitempty"`
}

// AntipatternResult groups all occurrences of one antipattern type found in a
// single scan, with the shared fix instruction for that type. Immutable after
// construction.
type AntipatternResult struct {
	// AntipatternType identifies the rule that produced these instances
	AntipatternType AntipatternType `json:"antipatternType" yaml:"antipatternType"`

	// FixInstruction is the per-type guidance text, shared by all instances
	FixInstruction string `json:"fixInstruction" yaml:"fixInstruction"`

	// DetectedInstances are the individual occurrences
	DetectedInstances []DetectedAntipattern `json:"detectedInstances" yaml:"detectedInstances"`
}

// ScanResult is the aggregate of all antipattern results for one compilation
// unit, assembled by the caller that ran each registered module.
type ScanResult struct {
	AntipatternResults []AntipatternResult `json:"antipatternResults" yaml:"antipatternResults"`
}

// TotalFindings returns the number of detected instances across all types.
func (r ScanResult) TotalFindings() int {
	total := 0
	for _, ar := range r.AntipatternResults {
		total += len(ar.DetectedInstances)
	}
	return total
}

// ScanRequest represents a request for an antipattern scan
type ScanRequest struct {
	// Input files or directories to scan
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string // Path to save output file, empty means the writer
	ShowDetails  bool

	// Filtering and sorting
	MinSeverity Severity
	SortBy      SortCriteria

	// Rules restricts the scan to the named antipattern types; empty means all
	Rules []string

	// Configuration
	ConfigPath string

	// Telemetry enrichment
	EnrichWithTelemetry bool
	OrgID               string
	TelemetryEndpoint   string

	// Scan options
	Recursive       bool
	Concurrency     int
	IncludePatterns []string
	ExcludePatterns []string
}

// UnitScanResult pairs one compilation unit with its scan outcome
type UnitScanResult struct {
	// UnitName is the compilation unit identifier derived from the file name
	UnitName string `json:"unit_name" yaml:"unit_name"`

	// FilePath is the path of the scanned source file
	FilePath string `json:"file_path" yaml:"file_path"`

	// ScanResult holds the per-type antipattern results
	ScanResult ScanResult `json:"scan_result" yaml:"scan_result"`
}

// ScanSummary represents aggregate statistics for a scan
type ScanSummary struct {
	TotalUnits        int `json:"total_units" yaml:"total_units"`
	UnitsWithFindings int `json:"units_with_findings" yaml:"units_with_findings"`
	TotalFindings     int `json:"total_findings" yaml:"total_findings"`

	// Findings distribution
	FindingsBySeverity map[string]int `json:"findings_by_severity,omitempty" yaml:"findings_by_severity,omitempty"`
	FindingsByType     map[string]int `json:"findings_by_type,omitempty" yaml:"findings_by_type,omitempty"`

	// RuntimeEnriched counts findings whose severity came from telemetry
	RuntimeEnriched int `json:"runtime_enriched" yaml:"runtime_enriched"`
}

// ScanResponse represents the complete scan result across all units
type ScanResponse struct {
	// Scan results
	Units   []UnitScanResult `json:"units" yaml:"units"`
	Summary ScanSummary      `json:"summary" yaml:"summary"`

	// TelemetryStatus reports the outcome of the runtime data fetch; empty
	// when enrichment was not requested
	TelemetryStatus RuntimeStatus `json:"telemetry_status,omitempty" yaml:"telemetry_status,omitempty"`

	// Warnings and issues
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Metadata
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// ScanService defines the core business logic for antipattern scanning
type ScanService interface {
	// Scan performs an antipattern scan on the given request
	Scan(ctx context.Context, req ScanRequest) (*ScanResponse, error)

	// ScanFile scans a single Apex source file
	ScanFile(ctx context.Context, filePath string, req ScanRequest) (*ScanResponse, error)
}

// ApexFileReader defines Apex-specific file operations
type ApexFileReader interface {
	CollectApexFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidApexFile(path string) bool
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting scan results
type OutputFormatter interface {
	// Format formats the scan response according to the specified format
	Format(response *ScanResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *ScanResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader defines the interface for loading configuration
type ConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*ScanRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *ScanRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *ScanRequest, override *ScanRequest) *ScanRequest
}
