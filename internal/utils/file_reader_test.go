package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileReaderCaching(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "hv.apimod")
	testContent := "//apimod:define\npub mod memory {}\n"

	if err := os.WriteFile(testFile, []byte(testContent), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	reader := NewFileReader()

	first, err := reader.ReadFile(testFile)
	if err != nil {
		t.Fatalf("First read failed: %v", err)
	}
	if string(first) != testContent {
		t.Errorf("unexpected content %q", first)
	}
	if reader.CachedFiles() != 1 {
		t.Errorf("expected 1 cached file, got %d", reader.CachedFiles())
	}

	updated := "//apimod:define\npub mod memory { extern func Reset() }\n"
	if err := os.WriteFile(testFile, []byte(updated), 0644); err != nil {
		t.Fatalf("Failed to update test file: %v", err)
	}

	second, err := reader.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Second read failed: %v", err)
	}
	if string(second) != updated {
		t.Errorf("cache was not invalidated, got %q", second)
	}

	reader.InvalidateFile(testFile)
	if reader.CachedFiles() != 0 {
		t.Errorf("expected empty cache after invalidation, got %d", reader.CachedFiles())
	}
}

func TestFileReaderErrors(t *testing.T) {
	reader := NewFileReader()

	if _, err := reader.ReadFile(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := reader.ReadFile(filepath.Join(t.TempDir(), "missing.apimod")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileReaderHasPrefix(t *testing.T) {
	dir := t.TempDir()
	generated := filepath.Join(dir, "apimod_gen.go")
	handwritten := filepath.Join(dir, "memory.go")

	if err := os.WriteFile(generated, []byte("// Code generated by apimod. DO NOT EDIT.\n\npackage memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(handwritten, []byte("package memory\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reader := NewFileReader()
	prefix := []byte("// Code generated by apimod.")

	ok, err := reader.HasPrefix(generated, prefix)
	if err != nil || !ok {
		t.Errorf("expected generated file to match, got %v, %v", ok, err)
	}

	ok, err = reader.HasPrefix(handwritten, prefix)
	if err != nil || ok {
		t.Errorf("expected handwritten file not to match, got %v, %v", ok, err)
	}

	ok, err = reader.HasPrefix(filepath.Join(dir, "missing.go"), prefix)
	if err != nil || ok {
		t.Errorf("expected missing file to report false, got %v, %v", ok, err)
	}
}
