package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/apimod/internal/errors"
)

// FileReader reads source files and keeps their contents until they change
type FileReader struct {
	contentCache *Cache[string, []byte]
}

// NewFileReader creates a new FileReader instance with caching
func NewFileReader() *FileReader {
	return &FileReader{
		contentCache: NewCache[string, []byte](),
	}
}

// ReadFile reads a file with caching. The returned slice is shared with the
// cache and must not be modified.
func (fr *FileReader) ReadFile(filePath string) ([]byte, error) {
	cleanPath, err := fr.validateAndCleanPath(filePath)
	if err != nil {
		return nil, err
	}

	return fr.contentCache.Load(cleanPath, cleanPath, func() ([]byte, error) {
		content, err := os.ReadFile(cleanPath)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", cleanPath, err)
		}
		return content, nil
	})
}

// HasPrefix reports whether the file starts with prefix. Missing files report false.
func (fr *FileReader) HasPrefix(filePath string, prefix []byte) (bool, error) {
	content, err := fr.ReadFile(filePath)
	if err != nil {
		if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
			return false, nil
		}
		return false, err
	}
	return bytes.HasPrefix(content, prefix), nil
}

// ClearCache clears all cached files
func (fr *FileReader) ClearCache() {
	fr.contentCache.Clear()
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.contentCache.Delete(filepath.Clean(filePath))
}

// CachedFiles returns the number of cached files
func (fr *FileReader) CachedFiles() int {
	return fr.contentCache.Size()
}

// validateAndCleanPath validates and cleans a file path
func (fr *FileReader) validateAndCleanPath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", errors.Wrap(errors.FileSystemErrorCode, "invalid file path", err)
	}

	cleanPath := filepath.Clean(filePath)

	// .. is only allowed at the beginning of a relative path
	if strings.Contains(cleanPath, "..") && !strings.HasPrefix(cleanPath, "..") {
		return "", errors.Newf(errors.FileSystemErrorCode, "path traversal not allowed in file path: %s", filePath)
	}

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return "", errors.Newf(errors.FileSystemErrorCode, "file does not exist: %s", cleanPath).
			WithContext("path", cleanPath)
	}

	return cleanPath, nil
}
