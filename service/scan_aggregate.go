package service

import (
	"sort"

	"github.com/forcemetrics/apexscan/domain"
)

// filterUnits applies the minimum severity threshold to every unit's
// findings. Antipattern results left with no instances are dropped; units
// themselves survive even when filtering empties them, so the summary
// still reflects what was scanned.
func filterUnits(units []domain.UnitScanResult, minSeverity domain.Severity) []domain.UnitScanResult {
	if minSeverity == "" {
		return units
	}

	filtered := make([]domain.UnitScanResult, 0, len(units))
	for _, unit := range units {
		var results []domain.AntipatternResult
		for _, result := range unit.ScanResult.AntipatternResults {
			var instances []domain.DetectedAntipattern
			for _, instance := range result.DetectedInstances {
				if instance.Severity.AtLeast(minSeverity) {
					instances = append(instances, instance)
				}
			}
			if len(instances) == 0 {
				continue
			}
			results = append(results, domain.AntipatternResult{
				AntipatternType:   result.AntipatternType,
				FixInstruction:    result.FixInstruction,
				DetectedInstances: instances,
			})
		}
		unit.ScanResult = domain.ScanResult{AntipatternResults: results}
		filtered = append(filtered, unit)
	}
	return filtered
}

// sortUnits orders the scan output deterministically. Units follow the
// requested criteria; within a unit, results are grouped by type name and
// instances ordered by severity or line.
func sortUnits(units []domain.UnitScanResult, sortBy domain.SortCriteria) {
	sort.Slice(units, func(i, j int) bool {
		switch sortBy {
		case domain.SortByLine:
			li, lj := firstFindingLine(units[i]), firstFindingLine(units[j])
			if li != lj {
				return li < lj
			}
			return units[i].UnitName < units[j].UnitName
		case domain.SortByUnit, domain.SortByType:
			return units[i].UnitName < units[j].UnitName
		case domain.SortBySeverity:
			fallthrough
		default:
			si, sj := unitMaxSeverity(units[i]), unitMaxSeverity(units[j])
			if si != sj {
				return si > sj
			}
			return units[i].UnitName < units[j].UnitName
		}
	})

	for ui := range units {
		results := units[ui].ScanResult.AntipatternResults
		sort.Slice(results, func(i, j int) bool {
			return results[i].AntipatternType < results[j].AntipatternType
		})
		for ri := range results {
			sortInstances(results[ri].DetectedInstances, sortBy)
		}
	}
}

// sortInstances orders one result's findings. Severity sorting is
// descending with line as tie-breaker; everything else orders by line.
func sortInstances(instances []domain.DetectedAntipattern, sortBy domain.SortCriteria) {
	sort.Slice(instances, func(i, j int) bool {
		if sortBy == domain.SortBySeverity || sortBy == "" {
			ri, rj := instances[i].Severity.Rank(), instances[j].Severity.Rank()
			if ri != rj {
				return ri > rj
			}
		}
		return instances[i].LineNumber < instances[j].LineNumber
	})
}

// buildScanSummary computes aggregate statistics over the filtered units
func buildScanSummary(units []domain.UnitScanResult) domain.ScanSummary {
	summary := domain.ScanSummary{
		TotalUnits:         len(units),
		FindingsBySeverity: make(map[string]int),
		FindingsByType:     make(map[string]int),
	}

	for _, unit := range units {
		findings := unit.ScanResult.TotalFindings()
		if findings > 0 {
			summary.UnitsWithFindings++
		}
		summary.TotalFindings += findings

		for _, result := range unit.ScanResult.AntipatternResults {
			summary.FindingsByType[string(result.AntipatternType)] += len(result.DetectedInstances)
			for _, instance := range result.DetectedInstances {
				summary.FindingsBySeverity[string(instance.Severity)]++
				if instance.SeveritySource == domain.SeveritySourceRuntime {
					summary.RuntimeEnriched++
				}
			}
		}
	}

	if len(summary.FindingsBySeverity) == 0 {
		summary.FindingsBySeverity = nil
	}
	if len(summary.FindingsByType) == 0 {
		summary.FindingsByType = nil
	}
	return summary
}

// unitMaxSeverity returns the highest severity rank among a unit's findings
func unitMaxSeverity(unit domain.UnitScanResult) int {
	maxRank := 0
	for _, result := range unit.ScanResult.AntipatternResults {
		for _, instance := range result.DetectedInstances {
			if rank := instance.Severity.Rank(); rank > maxRank {
				maxRank = rank
			}
		}
	}
	return maxRank
}

// firstFindingLine returns the smallest line number among a unit's
// findings, or -1 when the unit has none
func firstFindingLine(unit domain.UnitScanResult) int {
	first := -1
	for _, result := range unit.ScanResult.AntipatternResults {
		for _, instance := range result.DetectedInstances {
			if first == -1 || instance.LineNumber < first {
				first = instance.LineNumber
			}
		}
	}
	return first
}
