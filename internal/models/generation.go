package models

import "github.com/toyz/apimod/internal/errors"

// ModuleKind tells which entry point produced a generated file
type ModuleKind string

const (
	KindDefinition     ModuleKind = "definition"
	KindImplementation ModuleKind = "implementation"
)

// GeneratedFile is one apimod_gen.go ready to be written
type GeneratedFile struct {
	Kind       ModuleKind
	Module     string // module name, also the package name
	Source     errors.SourceLocation
	PackageDir string // directory the file goes to
	ImportPath string // import path of PackageDir
	FilePath   string
	Content    []byte
	Interface  string   // derived interface name
	Target     string   // resolved target import path, implementations only
	Functions  []string // api function names in order
	// Diagnostics are problems that did not stop the file from being
	// produced, such as an implementee path embedded as a compile error.
	Diagnostics *errors.MultipleErrors
}

// SupportLibraryKind is the outcome of locating the runtime package
type SupportLibraryKind int

const (
	SupportItself SupportLibraryKind = iota
	SupportNamed
	SupportNotFound
)

func (k SupportLibraryKind) String() string {
	switch k {
	case SupportItself:
		return "itself"
	case SupportNamed:
		return "named"
	default:
		return "not found"
	}
}

// SupportLibrary tells generated code how to reach the runtime package
type SupportLibrary struct {
	Kind       SupportLibraryKind
	ImportPath string
}

// GenerationContext describes where an .apimod file lives. It is resolved
// once per file and shared by every module of that file.
type GenerationContext struct {
	SourceFile       string
	SourceDir        string
	SourceImportPath string // import path of SourceDir
	ModuleRoot       string // directory holding go.mod
	ModulePath       string
	Support          SupportLibrary
}
