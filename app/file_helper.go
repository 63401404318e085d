package app

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/forcemetrics/apexscan/internal/constants"
)

// ignoreFileNames are the ignore files honored at each scan root.
// .forceignore is the sfdx deployment exclusion list; sources excluded
// there are typically generated or vendored metadata.
var ignoreFileNames = []string{".gitignore", ".forceignore"}

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// CollectApexFiles collects Apex class and trigger files from paths
func (h *FileHelper) CollectApexFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if h.isApexFile(path) && !h.isExcluded(path, excludePatterns) {
				files = append(files, path)
			}
			continue
		}

		matcher := loadIgnoreMatcher(path)

		// Directory handling
		if recursive {
			root := path
			err = filepath.Walk(path, func(filePath string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}

				// Skip excluded directories early
				if info.IsDir() {
					if filePath == root {
						return nil
					}
					dirName := filepath.Base(filePath)
					for _, pattern := range excludePatterns {
						// Check for exact directory name match
						if pattern == dirName {
							return filepath.SkipDir
						}
						// Check for directory name with glob pattern
						if matched, _ := filepath.Match(pattern, dirName); matched {
							return filepath.SkipDir
						}
					}
					if matcher.ignored(root, filePath) {
						return filepath.SkipDir
					}
					return nil
				}

				if h.isApexFile(filePath) && !h.isExcluded(filePath, excludePatterns) && !matcher.ignored(root, filePath) {
					files = append(files, filePath)
				}

				return nil
			})
		} else {
			entries, err := os.ReadDir(path)
			if err != nil {
				return nil, err
			}

			for _, entry := range entries {
				if !entry.IsDir() {
					filePath := filepath.Join(path, entry.Name())
					if h.isApexFile(filePath) && !h.isExcluded(filePath, excludePatterns) && !matcher.ignored(path, filePath) {
						files = append(files, filePath)
					}
				}
			}
		}

		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// IsValidApexFile checks if a file is an Apex class or trigger
func (h *FileHelper) IsValidApexFile(path string) bool {
	return h.isApexFile(path)
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// ReadFile reads file content
func (h *FileHelper) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// isApexFile checks if a file is an Apex source based on extension
func (h *FileHelper) isApexFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == constants.ClassFileExt || ext == constants.TriggerFileExt
}

// isExcluded checks if a path matches any exclude pattern
func (h *FileHelper) isExcluded(path string, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
		// Also check full path matching
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// ignoreMatcher applies the ignore rules found at one scan root. Paths
// are matched relative to that root, the way git and sfdx interpret
// their ignore files.
type ignoreMatcher struct {
	rules []*ignore.GitIgnore
}

// loadIgnoreMatcher compiles the ignore files present at root. Missing
// files are skipped.
func loadIgnoreMatcher(root string) *ignoreMatcher {
	m := &ignoreMatcher{}
	for _, name := range ignoreFileNames {
		rules, err := ignore.CompileIgnoreFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		m.rules = append(m.rules, rules)
	}
	return m
}

// ignored reports whether any compiled ignore file excludes the path
func (m *ignoreMatcher) ignored(root, path string) bool {
	if len(m.rules) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, rules := range m.rules {
		if rules.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// ResolveFilePaths resolves file paths, returning existing files directly
// or collecting files from directories
func ResolveFilePaths(
	fileHelper *FileHelper,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
) ([]string, error) {
	// Check if all paths are already files
	allFiles := true
	for _, path := range paths {
		exists, err := fileHelper.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	// If all paths are already files, no need to collect again
	if allFiles {
		return paths, nil
	}

	// Collect files from directories
	return fileHelper.CollectApexFiles(paths, recursive, includePatterns, excludePatterns)
}
