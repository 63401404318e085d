package analyzer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
)

// LineRuntimeEnricher joins query findings to production telemetry by
// source line and recomputes severity from observed execution frequency.
// It serves every query-family antipattern, since query telemetry is
// keyed by query site and not by rule.
type LineRuntimeEnricher struct {
	types      []domain.AntipatternType
	thresholds FrequencyThresholds
}

// NewLineRuntimeEnricher creates the line-keyed query enricher.
func NewLineRuntimeEnricher(thresholds FrequencyThresholds) *LineRuntimeEnricher {
	return &LineRuntimeEnricher{
		types: []domain.AntipatternType{
			domain.AntipatternUnboundedSOQLQuery,
			domain.AntipatternUnusedSOQLFields,
		},
		thresholds: thresholds,
	}
}

// Types implements RuntimeEnricher.
func (e *LineRuntimeEnricher) Types() []domain.AntipatternType {
	return append([]domain.AntipatternType(nil), e.types...)
}

// Enrich implements RuntimeEnricher.
func (e *LineRuntimeEnricher) Enrich(detections []domain.DetectedAntipattern, data domain.ClassRuntimeData, unitName string) []domain.DetectedAntipattern {
	byLine := queriesByLine(data.SOQLRuntimeData, unitName)

	enriched := make([]domain.DetectedAntipattern, len(detections))
	for i, det := range detections {
		enriched[i] = det
		q, ok := byLine[det.LineNumber]
		if !ok {
			continue
		}
		enriched[i].Severity = FrequencySeverity(q.RepresentativeCount, e.thresholds)
		enriched[i].SeveritySource = domain.SeveritySourceRuntime
		enriched[i].RuntimeMetrics = fmt.Sprintf(
			"Observed %d executions in production, %.0f ms total query time.",
			q.RepresentativeCount, q.TotalQueryExecutionTime)
	}
	return enriched
}

// queriesByLine indexes query telemetry by source line. Identifiers have
// the form "<unitName>.<suffix>.<line>" with a single-segment suffix, so
// exactly two segments must follow the unit name. Entries for other
// units, including dotted unit names that merely share a prefix, and
// entries with malformed identifiers are skipped; a finding whose line
// has no entry stays static.
func queriesByLine(queries []domain.QueryRuntimeData, unitName string) map[int]domain.QueryRuntimeData {
	byLine := make(map[int]domain.QueryRuntimeData, len(queries))
	prefix := unitName + "."
	for _, q := range queries {
		if !strings.HasPrefix(q.UniqueQueryIdentifier, prefix) {
			continue
		}
		suffix, lineText, ok := strings.Cut(q.UniqueQueryIdentifier[len(prefix):], ".")
		if !ok || suffix == "" || strings.ContainsRune(lineText, '.') {
			continue
		}
		line, err := strconv.Atoi(lineText)
		if err != nil || line <= 0 {
			continue
		}
		byLine[line] = q
	}
	return byLine
}
