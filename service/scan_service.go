package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/analyzer"
	"github.com/forcemetrics/apexscan/internal/config"
	"github.com/forcemetrics/apexscan/internal/telemetry"
	"github.com/forcemetrics/apexscan/internal/version"
)

// ScanServiceImpl implements the ScanService interface
type ScanServiceImpl struct {
	config    *config.Config
	progress  domain.ProgressManager
	registry  *analyzer.AntipatternRegistry
	telemetry *telemetry.Service
	conn      telemetry.Connection
}

// NewScanService creates a new scan service implementation. Module
// assembly is validated here so that misconfigured rules fail before any
// file is read.
func NewScanService(cfg *config.Config) (*ScanServiceImpl, error) {
	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return &ScanServiceImpl{
		config:    cfg,
		registry:  registry,
		telemetry: telemetry.NewService(cfg.Telemetry.RetryAttempts),
	}, nil
}

// NewScanServiceWithProgress creates a new scan service with progress reporting
func NewScanServiceWithProgress(cfg *config.Config, pm domain.ProgressManager) (*ScanServiceImpl, error) {
	svc, err := NewScanService(cfg)
	if err != nil {
		return nil, err
	}
	svc.progress = pm
	return svc, nil
}

// SetConnection overrides the telemetry connection used for enrichment.
// When unset, an HTTP connection is built from the request and
// configuration at scan time.
func (s *ScanServiceImpl) SetConnection(conn telemetry.Connection) {
	s.conn = conn
}

// Registry exposes the assembled antipattern modules.
func (s *ScanServiceImpl) Registry() *analyzer.AntipatternRegistry {
	return s.registry
}

// BuildRegistry assembles the antipattern modules enabled by the
// configuration. Severity thresholds parameterize the runtime enrichers;
// rule wiring errors surface immediately as configuration errors.
func BuildRegistry(cfg *config.Config) (*analyzer.AntipatternRegistry, error) {
	frequency := analyzer.FrequencyThresholds{
		MajorCount:    cfg.Severity.MajorCountThreshold,
		CriticalCount: cfg.Severity.CriticalCountThreshold,
	}
	latency := analyzer.LatencyThresholds{
		CriticalAvgCpuTime: cfg.Severity.CriticalAvgCpuTimeMs,
	}

	registry := analyzer.NewAntipatternRegistry()

	if cfg.Scan.RuleEnabled(string(domain.AntipatternExpensiveGlobalDescribe)) {
		recommender, err := analyzer.NewInstructionRecommender(domain.AntipatternExpensiveGlobalDescribe)
		if err != nil {
			return nil, err
		}
		module, err := analyzer.NewAntipatternModule(
			analyzer.NewCallSiteDetector(analyzer.DefaultGlobalDescribeConfig()),
			analyzer.WithEnricher(analyzer.NewMethodRuntimeEnricher(latency)),
			analyzer.WithRecommender(recommender),
		)
		if err != nil {
			return nil, err
		}
		registry.Register(module)
	}

	if cfg.Scan.RuleEnabled(string(domain.AntipatternUnboundedSOQLQuery)) {
		recommender, err := analyzer.NewInstructionRecommender(domain.AntipatternUnboundedSOQLQuery)
		if err != nil {
			return nil, err
		}
		module, err := analyzer.NewAntipatternModule(
			analyzer.NewQueryShapeDetector(analyzer.QueryShapeConfig{}),
			analyzer.WithEnricher(analyzer.NewLineRuntimeEnricher(frequency)),
			analyzer.WithRecommender(recommender),
		)
		if err != nil {
			return nil, err
		}
		registry.Register(module)
	}

	if cfg.Scan.RuleEnabled(string(domain.AntipatternUnusedSOQLFields)) {
		module, err := analyzer.NewAntipatternModule(
			analyzer.NewUnusedFieldsDetector(analyzer.UnusedFieldsConfig{}),
			analyzer.WithEnricher(analyzer.NewLineRuntimeEnricher(frequency)),
			analyzer.WithRecommender(analyzer.NewQueryTrimRecommender()),
		)
		if err != nil {
			return nil, err
		}
		registry.Register(module)
	}

	return registry, nil
}

// Scan performs an antipattern scan on the given request
func (s *ScanServiceImpl) Scan(ctx context.Context, req domain.ScanRequest) (*domain.ScanResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewValidationError("no files to scan")
	}

	modules := s.enabledModules(req)
	if len(modules) == 0 {
		return nil, domain.NewConfigError("no antipattern rules enabled", nil)
	}

	var warnings []string
	var errors []string

	unitNames := make([]string, len(req.Paths))
	for i, filePath := range req.Paths {
		unitNames[i] = UnitNameFromPath(filePath)
	}

	// Fetch runtime data for the whole batch up front. Any non-success
	// outcome degrades the scan to static severities instead of failing it.
	var report *domain.RuntimeReport
	var telemetryStatus domain.RuntimeStatus
	if req.EnrichWithTelemetry {
		result := s.fetchRuntimeData(ctx, req, unitNames)
		telemetryStatus = result.Status
		if result.Status == domain.RuntimeStatusSuccess {
			report = result.Report
		} else {
			warning := fmt.Sprintf("runtime data unavailable (%s): severities are static", result.Status)
			if result.Message != "" {
				warning += ": " + result.Message
			}
			warnings = append(warnings, warning)
		}
	}

	// Fan out one task per file; results are collected under a mutex
	// because tasks complete in arbitrary order.
	var mu sync.Mutex
	units := make([]domain.UnitScanResult, 0, len(req.Paths))

	tasks := make([]domain.ExecutableTask, 0, len(req.Paths))
	for i, filePath := range req.Paths {
		unitName := unitNames[i]
		tasks = append(tasks, &scanTask{
			name: filePath,
			run: func(taskCtx context.Context) error {
				unit, err := s.scanUnit(taskCtx, filePath, unitName, modules, report)
				if err != nil {
					return err
				}
				mu.Lock()
				units = append(units, unit)
				mu.Unlock()
				return nil
			},
		})
	}

	executor := NewParallelExecutorWithProgress(&s.config.Scan, s.progress)
	if req.Concurrency > 0 {
		executor.SetMaxConcurrency(req.Concurrency)
	}
	var aggregated *AggregatedError
	if err := executor.Execute(ctx, tasks); err != nil {
		var ok bool
		if aggregated, ok = err.(*AggregatedError); !ok {
			return nil, domain.NewScanError("scan execution failed", err)
		}
		for _, taskErr := range aggregated.Errors {
			errors = append(errors, taskErr.Error())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	if len(units) == 0 && aggregated != nil {
		return nil, domain.NewScanError("no files could be scanned", aggregated)
	}

	filtered := filterUnits(units, req.MinSeverity)
	sortUnits(filtered, req.SortBy)
	summary := buildScanSummary(filtered)

	return &domain.ScanResponse{
		Units:           filtered,
		Summary:         summary,
		TelemetryStatus: telemetryStatus,
		Warnings:        warnings,
		Errors:          errors,
		GeneratedAt:     time.Now().Format(time.RFC3339),
		Version:         version.Version,
	}, nil
}

// ScanFile scans a single Apex source file
func (s *ScanServiceImpl) ScanFile(ctx context.Context, filePath string, req domain.ScanRequest) (*domain.ScanResponse, error) {
	singleFileReq := req
	singleFileReq.Paths = []string{filePath}

	return s.Scan(ctx, singleFileReq)
}

// scanUnit runs every module against one compilation unit. Antipattern
// types with no occurrences are dropped from the unit's result.
func (s *ScanServiceImpl) scanUnit(ctx context.Context, filePath, unitName string, modules []*analyzer.AntipatternModule, report *domain.RuntimeReport) (domain.UnitScanResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return domain.UnitScanResult{}, fmt.Errorf("[%s] Failed to read file: %v", filePath, err)
	}

	var runtimeData *domain.ClassRuntimeData
	if report != nil {
		if data, ok := telemetry.ClassData(report, unitName); ok {
			runtimeData = &data
		}
	}

	var scanResult domain.ScanResult
	for _, module := range modules {
		select {
		case <-ctx.Done():
			return domain.UnitScanResult{}, ctx.Err()
		default:
		}

		result := module.Scan(unitName, string(content), runtimeData)
		if len(result.DetectedInstances) == 0 {
			continue
		}
		scanResult.AntipatternResults = append(scanResult.AntipatternResults, result)
	}

	return domain.UnitScanResult{
		UnitName:   unitName,
		FilePath:   filePath,
		ScanResult: scanResult,
	}, nil
}

// fetchRuntimeData resolves the org connection and fetches telemetry for
// the batch. Request fields override configuration; missing connection
// details classify as NO_ORG_CONNECTION without touching the network.
func (s *ScanServiceImpl) fetchRuntimeData(ctx context.Context, req domain.ScanRequest, unitNames []string) domain.RuntimeDataResult {
	endpoint := req.TelemetryEndpoint
	if endpoint == "" {
		endpoint = s.config.Telemetry.Endpoint
	}
	orgID := req.OrgID
	if orgID == "" {
		orgID = s.config.Telemetry.OrgID
	}
	if endpoint == "" || orgID == "" {
		return domain.RuntimeDataResult{
			Status:  domain.RuntimeStatusNoOrgConnection,
			Message: "telemetry endpoint and org id are required for enrichment",
		}
	}

	conn := s.conn
	if conn == nil {
		httpConn := telemetry.NewHTTPConnection(endpoint, s.config.Telemetry.Timeout())
		if s.config.Telemetry.AuthToken != "" {
			httpConn.SetAuthToken(s.config.Telemetry.AuthToken)
		}
		conn = httpConn
	}

	return s.telemetry.FetchRuntimeData(ctx, conn, telemetry.NewRequest(orgID, unitNames))
}

// enabledModules applies the request's rule restriction to the registry.
// An empty restriction enables every registered module.
func (s *ScanServiceImpl) enabledModules(req domain.ScanRequest) []*analyzer.AntipatternModule {
	modules := s.registry.AllModules()
	if len(req.Rules) == 0 {
		return modules
	}

	enabled := make([]*analyzer.AntipatternModule, 0, len(modules))
	for _, module := range modules {
		for _, rule := range req.Rules {
			if strings.EqualFold(string(module.Type()), rule) {
				enabled = append(enabled, module)
				break
			}
		}
	}
	return enabled
}

// UnitNameFromPath derives the compilation unit identifier from a source
// file path. Telemetry keys units by this name, so it must match the
// name the org reports.
func UnitNameFromPath(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// scanTask adapts one file scan to the executor's task interface
type scanTask struct {
	name string
	run  func(ctx context.Context) error
}

// Name returns the scanned file path
func (t *scanTask) Name() string {
	return t.name
}

// Execute runs the file scan
func (t *scanTask) Execute(ctx context.Context) (interface{}, error) {
	return nil, t.run(ctx)
}

// IsEnabled always returns true; rule filtering happens before task creation
func (t *scanTask) IsEnabled() bool {
	return true
}
