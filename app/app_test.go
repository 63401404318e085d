package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forcemetrics/apexscan/domain"
)

// stubScanService records the request it receives and returns a canned
// response
type stubScanService struct {
	response *domain.ScanResponse
	err      error
	lastReq  domain.ScanRequest
}

func (s *stubScanService) Scan(ctx context.Context, req domain.ScanRequest) (*domain.ScanResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubScanService) ScanFile(ctx context.Context, filePath string, req domain.ScanRequest) (*domain.ScanResponse, error) {
	req.Paths = []string{filePath}
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type stubFormatter struct {
	writeErr error
	writes   int
}

func (f *stubFormatter) Format(response *domain.ScanResponse, format domain.OutputFormat) (string, error) {
	return fmt.Sprintf("units:%d", len(response.Units)), nil
}

func (f *stubFormatter) Write(response *domain.ScanResponse, format domain.OutputFormat, writer io.Writer) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	_, err := fmt.Fprintf(writer, "units:%d\n", len(response.Units))
	return err
}

func emptyResponse() *domain.ScanResponse {
	return &domain.ScanResponse{
		Units: []domain.UnitScanResult{{UnitName: "AccountService"}},
	}
}

func TestFileHelperCollectApexFiles(t *testing.T) {
	// Create temp directory with test files
	tempDir := t.TempDir()

	testFiles := []string{"AccountService.cls", "AccountTrigger.trigger", "InvoiceService.cls", "notes.txt", "schema.json"}
	for _, f := range testFiles {
		path := filepath.Join(tempDir, f)
		if err := os.WriteFile(path, []byte("// test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectApexFiles([]string{tempDir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectApexFiles failed: %v", err)
	}

	// Should find 2 classes and 1 trigger
	if len(files) != 3 {
		t.Errorf("Expected 3 Apex files, got %d", len(files))
	}
}

func TestFileHelperIsValidApexFile(t *testing.T) {
	helper := NewFileHelper()

	tests := []struct {
		path     string
		expected bool
	}{
		{"AccountService.cls", true},
		{"AccountTrigger.trigger", true},
		{"AccountService.CLS", true},
		{"AccountService.cls-meta.xml", false},
		{"test.js", false},
		{"test.go", false},
		{"notes.txt", false},
	}

	for _, tt := range tests {
		result := helper.IsValidApexFile(tt.path)
		if result != tt.expected {
			t.Errorf("IsValidApexFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestFileHelperFileExists(t *testing.T) {
	helper := NewFileHelper()

	// Create temp file
	tempFile, err := os.CreateTemp("", "test*.cls")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tempFile.Close()
	defer os.Remove(tempFile.Name())

	// Test existing file
	exists, err := helper.FileExists(tempFile.Name())
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected file to exist")
	}

	// Test non-existing file
	exists, err = helper.FileExists("/nonexistent/AccountService.cls")
	if err != nil {
		t.Fatalf("FileExists failed: %v", err)
	}
	if exists {
		t.Error("Expected file to not exist")
	}
}

func TestFileHelperIsExcluded(t *testing.T) {
	helper := NewFileHelper()

	tests := []struct {
		path            string
		excludePatterns []string
		expected        bool
	}{
		{"AccountService.cls", []string{"*Test.cls"}, false},
		{"AccountServiceTest.cls", []string{"*Test.cls"}, true},
		{".sfdx/tools/Generated.cls", []string{".sfdx"}, true},
		{"src/AccountService.cls", []string{".sfdx"}, false},
	}

	for _, tt := range tests {
		result := helper.isExcluded(tt.path, tt.excludePatterns)
		if result != tt.expected {
			t.Errorf("isExcluded(%s, %v) = %v, expected %v", tt.path, tt.excludePatterns, result, tt.expected)
		}
	}
}

func TestFileHelperExcludeDirectories(t *testing.T) {
	// Create temp directory structure with excluded directories
	tempDir := t.TempDir()

	dirs := []string{"classes", ".sfdx", "node_modules"}
	for _, dir := range dirs {
		dirPath := filepath.Join(tempDir, dir)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			t.Fatalf("Failed to create %s dir: %v", dir, err)
		}
		file := filepath.Join(dirPath, "Handler.cls")
		if err := os.WriteFile(file, []byte("// "+dir), 0644); err != nil {
			t.Fatalf("Failed to create file in %s: %v", dir, err)
		}
	}

	helper := NewFileHelper()

	excludePatterns := []string{".sfdx", "node_modules"}
	files, err := helper.CollectApexFiles([]string{tempDir}, true, nil, excludePatterns)
	if err != nil {
		t.Fatalf("CollectApexFiles failed: %v", err)
	}

	// Should only find 1 file (classes/Handler.cls)
	if len(files) != 1 {
		t.Errorf("Expected 1 file (excluding .sfdx and node_modules), got %d", len(files))
	}
}

func TestFileHelperHonorsGitignore(t *testing.T) {
	tempDir := t.TempDir()

	gitignore := filepath.Join(tempDir, ".gitignore")
	if err := os.WriteFile(gitignore, []byte("*Generated.cls\nbuild/**\n"), 0644); err != nil {
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	buildDir := filepath.Join(tempDir, "build")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		t.Fatalf("Failed to create build dir: %v", err)
	}

	sources := map[string]string{
		filepath.Join(tempDir, "AccountService.cls"):          "// kept",
		filepath.Join(tempDir, "AccountServiceGenerated.cls"): "// ignored by pattern",
		filepath.Join(buildDir, "Packaged.cls"):               "// ignored by directory",
	}
	for path, content := range sources {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectApexFiles([]string{tempDir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectApexFiles failed: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected 1 file after .gitignore filtering, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "AccountService.cls" {
		t.Errorf("Expected AccountService.cls to survive, got %s", files[0])
	}
}

func TestFileHelperHonorsForceignore(t *testing.T) {
	tempDir := t.TempDir()

	forceignore := filepath.Join(tempDir, ".forceignore")
	if err := os.WriteFile(forceignore, []byte("LegacyHandler.cls\n"), 0644); err != nil {
		t.Fatalf("Failed to write .forceignore: %v", err)
	}

	for _, name := range []string{"LegacyHandler.cls", "ModernHandler.cls"} {
		path := filepath.Join(tempDir, name)
		if err := os.WriteFile(path, []byte("// test"), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}

	helper := NewFileHelper()

	files, err := helper.CollectApexFiles([]string{tempDir}, true, nil, nil)
	if err != nil {
		t.Fatalf("CollectApexFiles failed: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected 1 file after .forceignore filtering, got %d: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "ModernHandler.cls" {
		t.Errorf("Expected ModernHandler.cls to survive, got %s", files[0])
	}
}

func TestFileHelperNonRecursive(t *testing.T) {
	tempDir := t.TempDir()

	subDir := filepath.Join(tempDir, "classes")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create sub dir: %v", err)
	}

	topFile := filepath.Join(tempDir, "Top.cls")
	if err := os.WriteFile(topFile, []byte("// top"), 0644); err != nil {
		t.Fatalf("Failed to create top file: %v", err)
	}
	nestedFile := filepath.Join(subDir, "Nested.cls")
	if err := os.WriteFile(nestedFile, []byte("// nested"), 0644); err != nil {
		t.Fatalf("Failed to create nested file: %v", err)
	}

	helper := NewFileHelper()

	files, err := helper.CollectApexFiles([]string{tempDir}, false, nil, nil)
	if err != nil {
		t.Fatalf("CollectApexFiles failed: %v", err)
	}

	if len(files) != 1 {
		t.Errorf("Expected 1 top-level file without recursion, got %d", len(files))
	}
}

func TestResolveFilePaths(t *testing.T) {
	// Create temp directory with test files
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "AccountService.cls")
	if err := os.WriteFile(testFile, []byte("// test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	helper := NewFileHelper()

	// Test with existing file
	files, err := ResolveFilePaths(helper, []string{testFile}, true, nil, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file, got %d", len(files))
	}

	// Test with directory
	files, err = ResolveFilePaths(helper, []string{tempDir}, true, nil, nil)
	if err != nil {
		t.Fatalf("ResolveFilePaths failed: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("Expected 1 file, got %d", len(files))
	}
}

func TestScanUseCase_Execute(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "AccountService.cls")
	if err := os.WriteFile(testFile, []byte("public class AccountService {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	svc := &stubScanService{response: emptyResponse()}
	formatter := &stubFormatter{}
	uc := NewScanUseCase(svc, formatter)

	var buf bytes.Buffer
	resp, err := uc.Execute(context.Background(), domain.ScanRequest{
		Paths:        []string{tempDir},
		Recursive:    true,
		OutputFormat: domain.OutputFormatText,
		OutputWriter: &buf,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if resp == nil {
		t.Fatal("Expected response to be returned")
	}
	if len(svc.lastReq.Paths) != 1 || svc.lastReq.Paths[0] != testFile {
		t.Errorf("Expected resolved file paths in request, got %v", svc.lastReq.Paths)
	}
	if formatter.writes != 1 {
		t.Errorf("Expected 1 formatter write, got %d", formatter.writes)
	}
	if !strings.Contains(buf.String(), "units:1") {
		t.Errorf("Expected formatted output in writer, got %q", buf.String())
	}
}

func TestScanUseCase_Execute_OutputPath(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "AccountService.cls")
	if err := os.WriteFile(testFile, []byte("public class AccountService {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	svc := &stubScanService{response: emptyResponse()}
	uc := NewScanUseCase(svc, &stubFormatter{})

	outputPath := filepath.Join(tempDir, "report.txt")
	_, err := uc.Execute(context.Background(), domain.ScanRequest{
		Paths:        []string{testFile},
		OutputFormat: domain.OutputFormatText,
		OutputPath:   outputPath,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	if !strings.Contains(string(content), "units:1") {
		t.Errorf("Expected formatted output in report file, got %q", string(content))
	}
}

func TestScanUseCase_Execute_ValidationErrors(t *testing.T) {
	uc := NewScanUseCase(&stubScanService{response: emptyResponse()}, &stubFormatter{})

	tests := []struct {
		name string
		req  domain.ScanRequest
	}{
		{
			name: "no paths",
			req:  domain.ScanRequest{},
		},
		{
			name: "unknown severity",
			req: domain.ScanRequest{
				Paths:       []string{"AccountService.cls"},
				MinSeverity: domain.Severity("BLOCKER"),
			},
		},
		{
			name: "negative concurrency",
			req: domain.ScanRequest{
				Paths:       []string{"AccountService.cls"},
				Concurrency: -1,
			},
		},
		{
			name: "org id without telemetry",
			req: domain.ScanRequest{
				Paths: []string{"AccountService.cls"},
				OrgID: "00D000000000001",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Execute(context.Background(), tt.req); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestScanUseCase_Execute_NoApexFiles(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	uc := NewScanUseCase(&stubScanService{response: emptyResponse()}, &stubFormatter{})

	_, err := uc.Execute(context.Background(), domain.ScanRequest{
		Paths:     []string{tempDir},
		Recursive: true,
	})
	if err == nil {
		t.Error("Expected error when no Apex files found")
	}
}

func TestScanUseCase_Execute_ServiceError(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "AccountService.cls")
	if err := os.WriteFile(testFile, []byte("public class AccountService {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	svc := &stubScanService{err: fmt.Errorf("parser exploded")}
	formatter := &stubFormatter{}
	uc := NewScanUseCase(svc, formatter)

	_, err := uc.Execute(context.Background(), domain.ScanRequest{Paths: []string{testFile}})
	if err == nil {
		t.Fatal("Expected service error to propagate")
	}
	if formatter.writes != 0 {
		t.Errorf("Expected no output on failure, got %d writes", formatter.writes)
	}
}

func TestScanUseCase_ScanFile(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "AccountService.cls")
	if err := os.WriteFile(testFile, []byte("public class AccountService {}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	svc := &stubScanService{response: emptyResponse()}
	uc := NewScanUseCase(svc, &stubFormatter{})

	resp, err := uc.ScanFile(context.Background(), testFile, domain.ScanRequest{})
	if err != nil {
		t.Fatalf("ScanFile failed: %v", err)
	}
	if resp == nil {
		t.Fatal("Expected response")
	}
	if len(svc.lastReq.Paths) != 1 || svc.lastReq.Paths[0] != testFile {
		t.Errorf("Expected single file request, got %v", svc.lastReq.Paths)
	}
}

func TestScanUseCase_ScanFile_NotApex(t *testing.T) {
	uc := NewScanUseCase(&stubScanService{response: emptyResponse()}, &stubFormatter{})

	if _, err := uc.ScanFile(context.Background(), "script.js", domain.ScanRequest{}); err == nil {
		t.Error("Expected error for non-Apex file")
	}
}

func TestScanUseCase_ScanFile_Missing(t *testing.T) {
	uc := NewScanUseCase(&stubScanService{response: emptyResponse()}, &stubFormatter{})

	if _, err := uc.ScanFile(context.Background(), "/nonexistent/AccountService.cls", domain.ScanRequest{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestScanUseCaseBuilder(t *testing.T) {
	svc := &stubScanService{response: emptyResponse()}
	formatter := &stubFormatter{}

	uc, err := NewScanUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if uc.fileHelper == nil {
		t.Error("Expected default file helper")
	}
}

func TestScanUseCaseBuilder_MissingService(t *testing.T) {
	_, err := NewScanUseCaseBuilder().
		WithFormatter(&stubFormatter{}).
		Build()
	if err == nil {
		t.Error("Expected error when service is missing")
	}
}

func TestScanUseCaseBuilder_MissingFormatter(t *testing.T) {
	_, err := NewScanUseCaseBuilder().
		WithService(&stubScanService{}).
		Build()
	if err == nil {
		t.Error("Expected error when formatter is missing")
	}
}

func TestScanUseCaseBuilder_CustomFileHelper(t *testing.T) {
	helper := NewFileHelper()

	uc, err := NewScanUseCaseBuilder().
		WithService(&stubScanService{}).
		WithFormatter(&stubFormatter{}).
		WithFileHelper(helper).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if uc.fileHelper != helper {
		t.Error("Expected the provided file helper to be used")
	}
}
