package analyzer

import "github.com/forcemetrics/apexscan/domain"

// Default thresholds for the runtime severity policies
const (
	// DefaultMajorCountThreshold and DefaultCriticalCountThreshold bound
	// the frequency tiers: execution counts above the first are MAJOR,
	// above the second CRITICAL.
	DefaultMajorCountThreshold    int64 = 1000
	DefaultCriticalCountThreshold int64 = 10_000_000

	// DefaultCriticalAvgCpuTime is the average CPU time in milliseconds
	// above which a single entrypoint marks a method CRITICAL.
	DefaultCriticalAvgCpuTime float64 = 2000
)

// FrequencyThresholds parameterizes FrequencySeverity.
type FrequencyThresholds struct {
	MajorCount    int64
	CriticalCount int64
}

// DefaultFrequencyThresholds returns the standard frequency tiers.
func DefaultFrequencyThresholds() FrequencyThresholds {
	return FrequencyThresholds{
		MajorCount:    DefaultMajorCountThreshold,
		CriticalCount: DefaultCriticalCountThreshold,
	}
}

// LatencyThresholds parameterizes LatencySeverity.
type LatencyThresholds struct {
	CriticalAvgCpuTime float64
}

// DefaultLatencyThresholds returns the standard latency cutoff.
func DefaultLatencyThresholds() LatencyThresholds {
	return LatencyThresholds{CriticalAvgCpuTime: DefaultCriticalAvgCpuTime}
}

// FrequencySeverity maps an observed execution count onto the severity
// scale. The mapping is total and monotonic: a higher count never yields
// a lower severity.
func FrequencySeverity(count int64, t FrequencyThresholds) domain.Severity {
	switch {
	case count > t.CriticalCount:
		return domain.SeverityCritical
	case count > t.MajorCount:
		return domain.SeverityMajor
	default:
		return domain.SeverityMinor
	}
}

// LatencySeverity maps observed entrypoint latencies onto the severity
// scale. A method no production entrypoint reaches is MINOR. One with any
// entrypoint whose average CPU time exceeds the cutoff is CRITICAL.
// Anything else observed in production is MAJOR.
func LatencySeverity(entrypoints []domain.EntrypointData, t LatencyThresholds) domain.Severity {
	if len(entrypoints) == 0 {
		return domain.SeverityMinor
	}
	for _, ep := range entrypoints {
		if ep.AvgCpuTime > t.CriticalAvgCpuTime {
			return domain.SeverityCritical
		}
	}
	return domain.SeverityMajor
}
