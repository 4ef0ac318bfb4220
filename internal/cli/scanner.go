package cli

import (
	"github.com/toyz/apimod/internal/utils"
)

// SourceExtension is the extension of interface declaration files
const SourceExtension = ".apimod"

// DirectoryScanner finds .apimod files below Go-style path patterns
type DirectoryScanner struct {
	processor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(processor *utils.FileProcessor) *DirectoryScanner {
	return &DirectoryScanner{processor: processor}
}

// ScanDirectories returns the .apimod files matched by the patterns, sorted.
// "./..." scans recursively, a plain directory only scans that directory.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	targets, err := utils.ParsePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return s.processor.FindFiles(targets, utils.ExtensionFilter(SourceExtension))
}
