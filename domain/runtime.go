package domain

// The types in this file mirror the telemetry backend's wire contract.
// JSON field names must stay exactly as declared for interop with the
// existing runtime data endpoint.

// EntrypointData aggregates execution-path metrics for one external trigger
// path into a method. Times are in milliseconds.
type EntrypointData struct {
	EntrypointName string  `json:"entrypointName" yaml:"entrypointName"`
	AvgCpuTime     float64 `json:"avgCpuTime" yaml:"avgCpuTime"`
	AvgDbTime      float64 `json:"avgDbTime" yaml:"avgDbTime"`
	SumCpuTime     float64 `json:"sumCpuTime" yaml:"sumCpuTime"`
	SumDbTime      float64 `json:"sumDbTime" yaml:"sumDbTime"`
}

// MethodRuntimeData holds the observed entrypoints that reach one method.
type MethodRuntimeData struct {
	MethodName  string           `json:"methodName" yaml:"methodName"`
	Entrypoints []EntrypointData `json:"entrypoints" yaml:"entrypoints"`
}

// QueryRuntimeData holds aggregated production samples for one query site.
// UniqueQueryIdentifier has the form "<unitName>.<suffix>.<lineNumber>";
// RepresentativeCount is a proxy for how often the query executes.
type QueryRuntimeData struct {
	UniqueQueryIdentifier   string  `json:"uniqueQueryIdentifier" yaml:"uniqueQueryIdentifier"`
	RepresentativeCount     int64   `json:"representativeCount" yaml:"representativeCount"`
	TotalQueryExecutionTime float64 `json:"totalQueryExecutionTime" yaml:"totalQueryExecutionTime"`
}

// ClassRuntimeData is the telemetry snapshot for one compilation unit.
type ClassRuntimeData struct {
	Methods         []MethodRuntimeData `json:"methods" yaml:"methods"`
	SOQLRuntimeData []QueryRuntimeData  `json:"soqlRuntimeData" yaml:"soqlRuntimeData"`
}

// ReportStatus is the status field of the telemetry backend's response
// envelope. Only SUCCESS has defined meaning; any other value is an error
// envelope whose message explains the failure.
type ReportStatus string

// ReportStatusSuccess marks a successful telemetry response envelope.
const ReportStatusSuccess ReportStatus = "SUCCESS"

// RuntimeReport is the telemetry backend's response envelope for a batch of
// compilation units.
type RuntimeReport struct {
	Status    ReportStatus                `json:"status" yaml:"status"`
	Message   string                      `json:"message,omitempty" yaml:"message,omitempty"`
	ClassData map[string]ClassRuntimeData `json:"classData" yaml:"classData"`
}

// ClassDataFor looks up the telemetry snapshot for one unit. Coverage is
// best-effort and partial, so a missing unit is a normal outcome.
func (r *RuntimeReport) ClassDataFor(unitName string) (ClassRuntimeData, bool) {
	if r == nil || r.ClassData == nil {
		return ClassRuntimeData{}, false
	}
	data, ok := r.ClassData[unitName]
	return data, ok
}

// RuntimeDataRequest is the request body sent to the telemetry backend.
type RuntimeDataRequest struct {
	RequestID string   `json:"requestId" yaml:"requestId"`
	OrgID     string   `json:"orgId" yaml:"orgId"`
	Classes   []string `json:"classes" yaml:"classes"`
}

// RuntimeStatus classifies the outcome of a runtime data fetch. It is a
// returned status, never an error: telemetry unavailability must degrade a
// scan to static-only severity instead of failing it.
type RuntimeStatus string

const (
	// RuntimeStatusSuccess means a report was fetched and attached
	RuntimeStatusSuccess RuntimeStatus = "SUCCESS"

	// RuntimeStatusAccessDenied means the org rejected the request for
	// missing permissions
	RuntimeStatusAccessDenied RuntimeStatus = "ACCESS_DENIED"

	// RuntimeStatusAPIError covers transport failures after retries and
	// non-success envelopes that are not permission problems
	RuntimeStatusAPIError RuntimeStatus = "API_ERROR"

	// RuntimeStatusNoOrgConnection is reserved for callers that cannot
	// establish a connection at all; the fetch itself never returns it
	RuntimeStatusNoOrgConnection RuntimeStatus = "NO_ORG_CONNECTION"
)

// RuntimeDataResult is the classified outcome of a runtime data fetch.
type RuntimeDataResult struct {
	Status  RuntimeStatus  `json:"status" yaml:"status"`
	Report  *RuntimeReport `json:"report,omitempty" yaml:"report,omitempty"`
	Message string         `json:"message,omitempty" yaml:"message,omitempty"`
}
