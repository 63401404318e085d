package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forcemetrics/apexscan/domain"
)

const (
	// RuntimeDataPath is the backend route serving aggregated runtime
	// data for a batch of compilation units.
	RuntimeDataPath = "/services/apexrest/apexscan/runtime-data"

	// DefaultRetryAttempts is how many times a failed fetch is retried
	// after the first attempt.
	DefaultRetryAttempts = 2

	// DefaultRetryDelay is the pause between attempts.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Service fetches runtime reports and classifies the outcome.
type Service struct {
	retryAttempts int
	retryDelay    time.Duration
	logger        *slog.Logger
}

// NewService creates a runtime data service. retryAttempts is the number
// of retries after the first attempt; 0 is valid and means a single
// attempt.
func NewService(retryAttempts int) *Service {
	return NewServiceWithDelay(retryAttempts, DefaultRetryDelay)
}

// NewServiceWithDelay creates a runtime data service with a custom pause
// between attempts.
func NewServiceWithDelay(retryAttempts int, retryDelay time.Duration) *Service {
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	return &Service{
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		logger:        slog.Default(),
	}
}

// NewRequest assembles a runtime data request for the given org and
// units, with a fresh request id for backend-side correlation.
func NewRequest(orgID string, classes []string) domain.RuntimeDataRequest {
	return domain.RuntimeDataRequest{
		RequestID: uuid.NewString(),
		OrgID:     orgID,
		Classes:   classes,
	}
}

// FetchRuntimeData fetches the runtime report for the requested units.
// Transport errors are retried up to the configured attempts with a
// pause in between; a non-success envelope is classified immediately and
// never retried. Context cancellation during the pause ends the fetch
// with an API_ERROR result.
func (s *Service) FetchRuntimeData(ctx context.Context, conn Connection, req domain.RuntimeDataRequest) domain.RuntimeDataResult {
	var lastErr error

	for attempt := 0; attempt <= s.retryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying runtime data fetch",
				"requestId", req.RequestID,
				"attempt", attempt+1,
				"attempts", s.retryAttempts+1)
			select {
			case <-ctx.Done():
				return domain.RuntimeDataResult{
					Status:  domain.RuntimeStatusAPIError,
					Message: ctx.Err().Error(),
				}
			case <-time.After(s.retryDelay):
			}
		}

		report, err := conn.Request(ctx, http.MethodPost, RuntimeDataPath, req)
		if err != nil {
			lastErr = err
			continue
		}
		return classifyReport(report)
	}

	return domain.RuntimeDataResult{
		Status:  domain.RuntimeStatusAPIError,
		Message: lastErr.Error(),
	}
}

// classifyReport maps a response envelope onto a runtime status.
func classifyReport(report *domain.RuntimeReport) domain.RuntimeDataResult {
	if report == nil {
		return domain.RuntimeDataResult{
			Status:  domain.RuntimeStatusAPIError,
			Message: "empty response from telemetry backend",
		}
	}
	if report.Status == domain.ReportStatusSuccess {
		return domain.RuntimeDataResult{
			Status: domain.RuntimeStatusSuccess,
			Report: report,
		}
	}
	if isAccessDenied(report.Message) {
		return domain.RuntimeDataResult{
			Status:  domain.RuntimeStatusAccessDenied,
			Message: report.Message,
		}
	}
	return domain.RuntimeDataResult{
		Status:  domain.RuntimeStatusAPIError,
		Message: report.Message,
	}
}

// isAccessDenied recognizes permission failures from the envelope
// message text. The backend has no dedicated status for them.
func isAccessDenied(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "access denied") || strings.Contains(m, "permission")
}

// ClassData looks up one unit's telemetry in a fetched report. A missing
// unit is a normal outcome: backend coverage is partial.
func ClassData(report *domain.RuntimeReport, unitName string) (domain.ClassRuntimeData, bool) {
	return report.ClassDataFor(unitName)
}
