package utils

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/apimod/internal/errors"
)

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct {
	fileReader *FileReader
}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{
		fileReader: NewFileReader(),
	}
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader) *FileProcessor {
	return &FileProcessor{
		fileReader: reader,
	}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// ScanTarget is one command line path: a directory, scanned recursively when
// it was given with the "/..." suffix
type ScanTarget struct {
	Dir       string
	Recursive bool
}

// ParsePatterns turns Go-style path patterns ("./...", "./api", "hv/...")
// into absolute scan targets
func ParsePatterns(patterns []string) ([]ScanTarget, error) {
	var targets []ScanTarget
	for _, pattern := range patterns {
		target := ScanTarget{Dir: pattern}
		if pattern == "..." || strings.HasSuffix(pattern, "/...") {
			target.Recursive = true
			target.Dir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		}
		if target.Dir == "" {
			target.Dir = "."
		}

		abs, err := filepath.Abs(target.Dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("resolve", target.Dir, err)
		}
		target.Dir = abs
		targets = append(targets, target)
	}
	return targets, nil
}

// ExtensionFilter matches regular files with the given extension
func ExtensionFilter(ext string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && filepath.Ext(info.Name()) == ext
	}
}

// NameFilter matches regular files with exactly the given name
func NameFilter(name string) FileFilter {
	return func(path string, info os.DirEntry) bool {
		return !info.IsDir() && info.Name() == name
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
		"target":       true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// Skip hidden directories
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// WalkFiles walks through files in a directory tree with filtering
func (fp *FileProcessor) WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matchedFiles []string

	err := filepath.WalkDir(rootDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if entry.IsDir() {
			// the root is always entered, whatever its name
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, entry) {
			matchedFiles = append(matchedFiles, path)
		}
		return nil
	})

	return matchedFiles, err
}

// FindFiles returns the files matching filter below the given targets,
// sorted and without duplicates
func (fp *FileProcessor) FindFiles(targets []ScanTarget, filter FileFilter) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, target := range targets {
		info, err := os.Stat(target.Dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", target.Dir, err).
				WithSuggestion("Check that the directory exists")
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.FileSystemErrorCode, "not a directory: %s", target.Dir)
		}

		var found []string
		if target.Recursive {
			found, err = fp.WalkFiles(target.Dir, FileWalkOptions{
				FileFilter:      filter,
				DirectoryFilter: DefaultDirectoryFilter(),
			})
		} else {
			found, err = fp.listDirectory(target.Dir, filter)
		}
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", target.Dir, err)
		}

		for _, file := range found {
			if !seen[file] {
				seen[file] = true
				files = append(files, file)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (fp *FileProcessor) listDirectory(dir string, filter FileFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !entry.IsDir() && filter(path, entry) {
			files = append(files, path)
		}
	}
	return files, nil
}

// RemoveGeneratedFiles removes the files named fileName below the targets
// whose content starts with header. Files with the right name but another
// header were not written by the generator and are left alone.
func (fp *FileProcessor) RemoveGeneratedFiles(targets []ScanTarget, fileName string, header []byte) ([]string, error) {
	candidates, err := fp.FindFiles(targets, NameFilter(fileName))
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, path := range candidates {
		generated, err := fp.fileReader.HasPrefix(path, header)
		if err != nil {
			return removed, err
		}
		if !generated {
			continue
		}

		if err := os.Remove(path); err != nil {
			return removed, errors.WrapFileSystemError("remove", path, err)
		}
		fp.fileReader.InvalidateFile(path)
		removed = append(removed, path)
	}
	return removed, nil
}

// FileReader returns the underlying FileReader
func (fp *FileProcessor) FileReader() *FileReader {
	return fp.fileReader
}
