package utils

import (
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/toyz/apimod/internal/errors"
)

// GoModParser provides utilities for parsing go.mod files
type GoModParser struct {
	fileReader *FileReader
	modCache   *Cache[string, *modfile.File]
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{
		fileReader: fileReader,
		modCache:   NewCache[string, *modfile.File](),
	}
}

// Parse parses a go.mod file. Results are cached until the file changes.
func (p *GoModParser) Parse(goModPath string) (*modfile.File, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, errors.Newf(errors.ResolutionErrorCode, "file is not a go.mod file: %s", goModPath)
	}

	return p.modCache.Load(cleanPath, cleanPath, func() (*modfile.File, error) {
		content, err := p.fileReader.ReadFile(cleanPath)
		if err != nil {
			return nil, err
		}

		modFile, err := modfile.ParseLax(cleanPath, content, nil)
		if err != nil {
			return nil, errors.WrapParseError(cleanPath, err)
		}
		if modFile.Module == nil {
			return nil, errors.Newf(errors.ResolutionErrorCode, "no module declaration found in %s", cleanPath)
		}
		return modFile, nil
	})
}

// ParseModuleName extracts the module name from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	modFile, err := p.Parse(goModPath)
	if err != nil {
		return "", err
	}
	return modFile.Module.Mod.Path, nil
}

// Requires reports whether the go.mod file requires modulePath
func (p *GoModParser) Requires(goModPath, modulePath string) (bool, error) {
	modFile, err := p.Parse(goModPath)
	if err != nil {
		return false, err
	}
	for _, req := range modFile.Require {
		if req.Mod.Path == modulePath {
			return true, nil
		}
	}
	return false, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", startDir, err)
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.fileReader.ReadFile(goModPath); err == nil && len(content) > 0 {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", errors.Newf(errors.ResolutionErrorCode, "go.mod file not found above %s", startDir).
		WithSuggestion("Run apimod inside a Go module, or create one with 'go mod init'")
}
