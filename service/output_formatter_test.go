package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/forcemetrics/apexscan/domain"
	"gopkg.in/yaml.v3"
)

func sampleScanResponse() *domain.ScanResponse {
	return &domain.ScanResponse{
		Units: []domain.UnitScanResult{
			{
				UnitName: "AccountService",
				FilePath: "classes/AccountService.cls",
				ScanResult: domain.ScanResult{
					AntipatternResults: []domain.AntipatternResult{
						{
							AntipatternType: domain.AntipatternExpensiveGlobalDescribe,
							FixInstruction:  "Cache the describe result outside the loop.",
							DetectedInstances: []domain.DetectedAntipattern{
								{
									UnitName:       "AccountService",
									MemberName:     "buildFieldMap",
									LineNumber:     12,
									SnippetBefore:  "Schema.getGlobalDescribe()",
									Severity:       domain.SeverityCritical,
									SeveritySource: domain.SeveritySourceRuntime,
									RuntimeMetrics: "AccountTrigger: avg 2400.0ms CPU",
								},
							},
						},
					},
				},
			},
		},
		Summary: domain.ScanSummary{
			TotalUnits:         1,
			UnitsWithFindings:  1,
			TotalFindings:      1,
			FindingsBySeverity: map[string]int{"CRITICAL": 1},
			FindingsByType:     map[string]int{"ExpensiveGlobalDescribe": 1},
			RuntimeEnriched:    1,
		},
		TelemetryStatus: domain.RuntimeStatusSuccess,
		GeneratedAt:     time.Now().Format(time.RFC3339),
		Version:         "test",
	}
}

func TestWriteJSON(t *testing.T) {
	data := map[string]interface{}{
		"name":  "test",
		"value": 42,
	}

	var buf bytes.Buffer
	err := WriteJSON(&buf, data)
	if err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	// Check that it's valid JSON
	var result map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &result)
	if err != nil {
		t.Fatalf("Failed to parse output as JSON: %v", err)
	}

	if result["name"] != "test" {
		t.Errorf("Expected name to be 'test', got %v", result["name"])
	}
}

func TestOutputFormatterWriteScanJSON(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatJSON, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify JSON structure round-trips
	var result domain.ScanResponse
	err = json.Unmarshal(buf.Bytes(), &result)
	if err != nil {
		t.Fatalf("Failed to parse output as JSON: %v", err)
	}

	if len(result.Units) != 1 {
		t.Errorf("Expected 1 unit, got %d", len(result.Units))
	}
	if result.Units[0].UnitName != "AccountService" {
		t.Errorf("Expected unit name 'AccountService', got %s", result.Units[0].UnitName)
	}
	if result.Summary.TotalFindings != 1 {
		t.Errorf("Expected 1 finding, got %d", result.Summary.TotalFindings)
	}
	if result.TelemetryStatus != domain.RuntimeStatusSuccess {
		t.Errorf("Expected telemetry status SUCCESS, got %s", result.TelemetryStatus)
	}
}

func TestOutputFormatterWriteScanText(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatText, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	output := buf.String()

	// Check for expected content
	if !strings.Contains(output, "Apex Antipattern Scan") {
		t.Error("Expected output to contain 'Apex Antipattern Scan'")
	}
	if !strings.Contains(output, "AccountService (classes/AccountService.cls):") {
		t.Error("Expected output to contain the unit header")
	}
	if !strings.Contains(output, "Total findings: 1") {
		t.Error("Expected output to contain 'Total findings: 1'")
	}
	if !strings.Contains(output, "Line 12: Schema.getGlobalDescribe() [CRITICAL (runtime)]") {
		t.Errorf("Expected output to contain the finding line, got:\n%s", output)
	}
	if !strings.Contains(output, "Telemetry: SUCCESS") {
		t.Error("Expected output to contain the telemetry status")
	}
}

func TestOutputFormatterWriteScanText_Details(t *testing.T) {
	formatter := NewOutputFormatterWithDetails(true)
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatText, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Method: buildFieldMap") {
		t.Error("Expected detailed output to contain the member name")
	}
	if !strings.Contains(output, "AccountTrigger: avg 2400.0ms CPU") {
		t.Error("Expected detailed output to contain runtime metrics")
	}
	if !strings.Contains(output, "Fix:") {
		t.Error("Expected detailed output to contain the fix instruction")
	}
	if !strings.Contains(output, "Cache the describe result outside the loop.") {
		t.Error("Expected detailed output to contain the instruction text")
	}
}

func TestOutputFormatterWriteScanText_NoDetails(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatText, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	output := buf.String()

	if strings.Contains(output, "Method: buildFieldMap") {
		t.Error("Default output should not contain the member name")
	}
	if strings.Contains(output, "Fix:") {
		t.Error("Default output should not contain fix instructions")
	}
}

func TestOutputFormatterWriteScanText_NoFindings(t *testing.T) {
	formatter := NewOutputFormatter()
	response := &domain.ScanResponse{
		Summary: domain.ScanSummary{
			TotalUnits: 2,
		},
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     "test",
	}

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatText, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if !strings.Contains(buf.String(), "No antipatterns found.") {
		t.Error("Expected output to contain 'No antipatterns found.'")
	}
}

func TestOutputFormatterWriteScanText_WarningsAndErrors(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()
	response.Warnings = []string{"runtime data unavailable (API_ERROR): severities are static"}
	response.Errors = []string{"[Broken.cls] Failed to read file: permission denied"}

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatText, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Warnings:") {
		t.Error("Expected output to contain a warnings section")
	}
	if !strings.Contains(output, "runtime data unavailable") {
		t.Error("Expected output to contain the warning text")
	}
	if !strings.Contains(output, "Errors:") {
		t.Error("Expected output to contain an errors section")
	}
}

func TestOutputFormatterWriteScanYAML(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatYAML, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Verify YAML structure round-trips
	var result domain.ScanResponse
	err = yaml.Unmarshal(buf.Bytes(), &result)
	if err != nil {
		t.Fatalf("Failed to parse output as YAML: %v", err)
	}

	if len(result.Units) != 1 {
		t.Errorf("Expected 1 unit, got %d", len(result.Units))
	}
	if result.Units[0].UnitName != "AccountService" {
		t.Errorf("Expected unit name 'AccountService', got %s", result.Units[0].UnitName)
	}
	if result.Summary.RuntimeEnriched != 1 {
		t.Errorf("Expected 1 runtime enriched finding, got %d", result.Summary.RuntimeEnriched)
	}
}

func TestOutputFormatterWriteScanCSV(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormatCSV, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse output as CSV: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected header plus 1 row, got %d records", len(records))
	}
	if records[0][0] != "unit_name" {
		t.Errorf("Expected first header column 'unit_name', got %s", records[0][0])
	}
	row := records[1]
	if row[0] != "AccountService" {
		t.Errorf("Expected unit 'AccountService', got %s", row[0])
	}
	if row[3] != "12" {
		t.Errorf("Expected line number '12', got %s", row[3])
	}
	if row[5] != "CRITICAL" {
		t.Errorf("Expected severity 'CRITICAL', got %s", row[5])
	}
	if row[6] != "runtime" {
		t.Errorf("Expected severity source 'runtime', got %s", row[6])
	}
}

func TestOutputFormatterFormat(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	output, err := formatter.Format(response, domain.OutputFormatText)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	if !strings.Contains(output, "AccountService") {
		t.Error("Expected formatted output to contain the unit name")
	}
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	formatter := NewOutputFormatter()
	response := sampleScanResponse()

	var buf bytes.Buffer
	err := formatter.Write(response, domain.OutputFormat("xml"), &buf)
	if err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestCompactSnippet(t *testing.T) {
	tests := []struct {
		name     string
		snippet  string
		max      int
		expected string
	}{
		{
			name:     "short snippet unchanged",
			snippet:  "Schema.getGlobalDescribe()",
			max:      100,
			expected: "Schema.getGlobalDescribe()",
		},
		{
			name:     "newlines collapsed",
			snippet:  "SELECT Id, Name\nFROM Account\nWHERE Name = 'x'",
			max:      100,
			expected: "SELECT Id, Name FROM Account WHERE Name = 'x'",
		},
		{
			name:     "long snippet truncated",
			snippet:  strings.Repeat("a", 120),
			max:      100,
			expected: strings.Repeat("a", 100) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compactSnippet(tt.snippet, tt.max)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
