package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
	"gopkg.in/yaml.v3"
)

// maxSnippetWidth bounds the source snippet column in text output
const maxSnippetWidth = 100

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	showDetails bool
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// NewOutputFormatterWithDetails creates a formatter that includes runtime
// metrics and fix instructions in text output
func NewOutputFormatterWithDetails(showDetails bool) *OutputFormatterImpl {
	return &OutputFormatterImpl{showDetails: showDetails}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Format formats the scan response according to the specified format
func (f *OutputFormatterImpl) Format(response *domain.ScanResponse, format domain.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(response, format, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write writes the scan response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.ScanResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return f.writeYAML(response, writer)
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer)
	case domain.OutputFormatText:
		return f.writeText(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeYAML writes the scan response as YAML
func (f *OutputFormatterImpl) writeYAML(response *domain.ScanResponse, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(response); err != nil {
		return err
	}
	return encoder.Close()
}

// writeCSV writes one row per finding, flattened across units and types
func (f *OutputFormatterImpl) writeCSV(response *domain.ScanResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{"unit_name", "file_path", "antipattern_type", "line_number", "member_name", "severity", "severity_source", "snippet"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, unit := range response.Units {
		for _, result := range unit.ScanResult.AntipatternResults {
			for _, instance := range result.DetectedInstances {
				row := []string{
					unit.UnitName,
					unit.FilePath,
					string(result.AntipatternType),
					strconv.Itoa(instance.LineNumber),
					instance.MemberName,
					string(instance.Severity),
					string(instance.SeveritySource),
					instance.SnippetBefore,
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
	}

	w.Flush()
	return w.Error()
}

// writeText writes the scan response as plain text
func (f *OutputFormatterImpl) writeText(response *domain.ScanResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Apex Antipattern Scan ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n", response.Version)
	if response.TelemetryStatus != "" {
		fmt.Fprintf(writer, "Telemetry: %s\n", response.TelemetryStatus)
	}
	fmt.Fprintf(writer, "\n")

	// Summary
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Units scanned: %d\n", response.Summary.TotalUnits)
	fmt.Fprintf(writer, "  Units with findings: %d\n", response.Summary.UnitsWithFindings)
	fmt.Fprintf(writer, "  Total findings: %d\n", response.Summary.TotalFindings)
	fmt.Fprintf(writer, "  Runtime enriched: %d\n", response.Summary.RuntimeEnriched)
	fmt.Fprintf(writer, "\n")

	// Severity distribution
	if len(response.Summary.FindingsBySeverity) > 0 {
		fmt.Fprintf(writer, "Severity Distribution:\n")
		for _, severity := range []domain.Severity{domain.SeverityCritical, domain.SeverityMajor, domain.SeverityMinor} {
			if count, ok := response.Summary.FindingsBySeverity[string(severity)]; ok {
				fmt.Fprintf(writer, "  %s: %d\n", severity, count)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	// Unit details
	for _, unit := range response.Units {
		if unit.ScanResult.TotalFindings() == 0 {
			continue
		}
		fmt.Fprintf(writer, "%s (%s):\n", unit.UnitName, unit.FilePath)
		for _, result := range unit.ScanResult.AntipatternResults {
			fmt.Fprintf(writer, "  %s:\n", result.AntipatternType)
			for _, instance := range result.DetectedInstances {
				fmt.Fprintf(writer, "    Line %d: %s%s\n",
					instance.LineNumber,
					compactSnippet(instance.SnippetBefore, maxSnippetWidth),
					severityIndicator(instance))
				if f.showDetails {
					if instance.MemberName != "" {
						fmt.Fprintf(writer, "      Method: %s\n", instance.MemberName)
					}
					if instance.RuntimeMetrics != "" {
						writeIndented(writer, instance.RuntimeMetrics, "      ")
					}
				}
			}
			if f.showDetails && result.FixInstruction != "" {
				fmt.Fprintf(writer, "    Fix:\n")
				writeIndented(writer, result.FixInstruction, "      ")
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if response.Summary.TotalFindings == 0 {
		fmt.Fprintf(writer, "No antipatterns found.\n")
	}

	// Warnings
	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "\nWarnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	// Errors
	if len(response.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(writer, "  - %s\n", e)
		}
	}

	return nil
}

// severityIndicator renders a finding's severity, marking severities
// recomputed from runtime data
func severityIndicator(instance domain.DetectedAntipattern) string {
	if instance.SeveritySource == domain.SeveritySourceRuntime {
		return fmt.Sprintf(" [%s (runtime)]", instance.Severity)
	}
	return fmt.Sprintf(" [%s]", instance.Severity)
}

// compactSnippet collapses a source snippet onto one line and truncates it
func compactSnippet(snippet string, max int) string {
	compact := strings.Join(strings.Fields(snippet), " ")
	if len(compact) > max {
		return compact[:max] + "..."
	}
	return compact
}

// writeIndented writes a possibly multi-line value with each line prefixed
func writeIndented(writer io.Writer, value, prefix string) {
	for _, line := range strings.Split(strings.TrimRight(value, "\n"), "\n") {
		fmt.Fprintf(writer, "%s%s\n", prefix, line)
	}
}
