package models

import "github.com/toyz/apimod/internal/errors"

// SourceFile is the parsed form of one .apimod file
type SourceFile struct {
	Path            string
	Definitions     []*ApiModuleDefinition
	Implementations []*ApiModuleImplementation
	// Diagnostics holds the problems of modules that were skipped. A
	// skipped module never appears in Definitions or Implementations.
	Diagnostics *errors.MultipleErrors
}

// ModuleCount returns the number of modules that parsed cleanly
func (f *SourceFile) ModuleCount() int {
	return len(f.Definitions) + len(f.Implementations)
}
