package app

import (
	"context"
	"fmt"
	"os"

	"github.com/forcemetrics/apexscan/domain"
)

// ScanUseCase orchestrates the antipattern scan workflow
type ScanUseCase struct {
	service    domain.ScanService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewScanUseCase creates a new scan use case
func NewScanUseCase(service domain.ScanService, formatter domain.OutputFormatter) *ScanUseCase {
	return &ScanUseCase{
		service:    service,
		formatter:  formatter,
		fileHelper: NewFileHelper(),
	}
}

// Execute performs the complete scan workflow: validates the request,
// resolves the Apex sources, runs the scan, and writes the formatted
// report. The response is returned so callers can evaluate the summary,
// for example for CI severity gates.
func (uc *ScanUseCase) Execute(ctx context.Context, req domain.ScanRequest) (*domain.ScanResponse, error) {
	// Validate input
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	// Resolve file paths
	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}

	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no Apex files found in the specified paths", nil)
	}

	// Update request with collected files
	req.Paths = files

	// Perform the scan
	response, err := uc.service.Scan(ctx, req)
	if err != nil {
		return nil, domain.NewScanError("antipattern scan failed", err)
	}

	if err := uc.writeResponse(response, req); err != nil {
		return nil, err
	}

	return response, nil
}

// ScanFile scans a single Apex source file without writing output
func (uc *ScanUseCase) ScanFile(ctx context.Context, filePath string, req domain.ScanRequest) (*domain.ScanResponse, error) {
	// Validate file
	if !uc.fileHelper.IsValidApexFile(filePath) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not an Apex class or trigger: %s", filePath), nil)
	}

	// Check if file exists
	exists, err := uc.fileHelper.FileExists(filePath)
	if err != nil {
		return nil, domain.NewFileNotFoundError(filePath, err)
	}
	if !exists {
		return nil, domain.NewFileNotFoundError(filePath, fmt.Errorf("file does not exist"))
	}

	// Perform the scan
	return uc.service.ScanFile(ctx, filePath, req)
}

// writeResponse writes the formatted report to the request's destination.
// An output path takes precedence over the writer; with neither set the
// report goes to stdout.
func (uc *ScanUseCase) writeResponse(response *domain.ScanResponse, req domain.ScanRequest) error {
	writer := req.OutputWriter
	if req.OutputPath != "" {
		file, err := os.Create(req.OutputPath)
		if err != nil {
			return domain.NewOutputError("failed to create output file", err)
		}
		defer file.Close()
		writer = file
	}
	if writer == nil {
		writer = os.Stdout
	}

	if err := uc.formatter.Write(response, req.OutputFormat, writer); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// validateRequest validates the scan request
func (uc *ScanUseCase) validateRequest(req domain.ScanRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}

	if req.MinSeverity != "" {
		if _, ok := domain.ParseSeverity(string(req.MinSeverity)); !ok {
			return fmt.Errorf("unknown minimum severity: %s", req.MinSeverity)
		}
	}

	if req.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}

	if req.OrgID != "" && !req.EnrichWithTelemetry {
		return fmt.Errorf("org id given but telemetry enrichment is disabled")
	}

	return nil
}

// ScanUseCaseBuilder provides a builder pattern for creating ScanUseCase
type ScanUseCaseBuilder struct {
	service    domain.ScanService
	formatter  domain.OutputFormatter
	fileHelper *FileHelper
}

// NewScanUseCaseBuilder creates a new builder
func NewScanUseCaseBuilder() *ScanUseCaseBuilder {
	return &ScanUseCaseBuilder{}
}

// WithService sets the scan service
func (b *ScanUseCaseBuilder) WithService(service domain.ScanService) *ScanUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *ScanUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ScanUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithFileHelper sets the file helper
func (b *ScanUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *ScanUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// Build creates the ScanUseCase with the configured dependencies
func (b *ScanUseCaseBuilder) Build() (*ScanUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("scan service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := &ScanUseCase{
		service:    b.service,
		formatter:  b.formatter,
		fileHelper: b.fileHelper,
	}

	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}

	return uc, nil
}
