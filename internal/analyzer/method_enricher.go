package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
)

// maxReportedEntrypoints caps how many entrypoints a finding's runtime
// metrics list.
const maxReportedEntrypoints = 3

// MethodRuntimeEnricher joins findings to telemetry by enclosing method
// name and recomputes severity from entrypoint latency.
type MethodRuntimeEnricher struct {
	types      []domain.AntipatternType
	thresholds LatencyThresholds
}

// NewMethodRuntimeEnricher creates the method-keyed latency enricher.
func NewMethodRuntimeEnricher(thresholds LatencyThresholds) *MethodRuntimeEnricher {
	return &MethodRuntimeEnricher{
		types:      []domain.AntipatternType{domain.AntipatternExpensiveGlobalDescribe},
		thresholds: thresholds,
	}
}

// Types implements RuntimeEnricher.
func (e *MethodRuntimeEnricher) Types() []domain.AntipatternType {
	return append([]domain.AntipatternType(nil), e.types...)
}

// Enrich implements RuntimeEnricher. Findings without a member name, such
// as calls in field initializers, cannot join and pass through unchanged.
func (e *MethodRuntimeEnricher) Enrich(detections []domain.DetectedAntipattern, data domain.ClassRuntimeData, unitName string) []domain.DetectedAntipattern {
	byMethod := methodsByName(data.Methods)

	enriched := make([]domain.DetectedAntipattern, len(detections))
	for i, det := range detections {
		enriched[i] = det
		if det.MemberName == "" {
			continue
		}
		m, ok := byMethod[strings.ToLower(det.MemberName)]
		if !ok {
			continue
		}
		enriched[i].Severity = LatencySeverity(m.Entrypoints, e.thresholds)
		enriched[i].SeveritySource = domain.SeveritySourceRuntime
		enriched[i].RuntimeMetrics = formatEntrypoints(m.Entrypoints)
	}
	return enriched
}

// methodsByName indexes telemetry case-insensitively, matching how Apex
// resolves method names.
func methodsByName(methods []domain.MethodRuntimeData) map[string]domain.MethodRuntimeData {
	byName := make(map[string]domain.MethodRuntimeData, len(methods))
	for _, m := range methods {
		byName[strings.ToLower(m.MethodName)] = m
	}
	return byName
}

// formatEntrypoints renders the heaviest entrypoints one per line,
// ordered by average CPU time descending.
func formatEntrypoints(entrypoints []domain.EntrypointData) string {
	if len(entrypoints) == 0 {
		return "No production entrypoints reached this method in the sampled window."
	}

	sorted := append([]domain.EntrypointData(nil), entrypoints...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvgCpuTime > sorted[j].AvgCpuTime
	})
	if len(sorted) > maxReportedEntrypoints {
		sorted = sorted[:maxReportedEntrypoints]
	}

	lines := make([]string, 0, len(sorted))
	for _, ep := range sorted {
		lines = append(lines, fmt.Sprintf("%s: avg CPU %.0f ms, avg DB %.0f ms",
			ep.EntrypointName, ep.AvgCpuTime, ep.AvgDbTime))
	}
	return strings.Join(lines, "\n")
}
