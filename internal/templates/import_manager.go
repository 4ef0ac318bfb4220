package templates

import (
	"fmt"
	"sort"
	"strings"
)

// ImportManager collects the imports the generator adds to a file. Imports
// written by the module author are passed through verbatim and never go
// through the manager.
type ImportManager struct {
	standardImports map[string]bool
	packageImports  map[string]string // alias -> path
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		standardImports: make(map[string]bool),
		packageImports:  make(map[string]string),
	}
}

// AddImport adds an import without alias
func (im *ImportManager) AddImport(importPath string) {
	if importPath != "" {
		im.standardImports[importPath] = true
	}
}

// AddPackageImport adds a package import with alias
func (im *ImportManager) AddPackageImport(alias, path string) {
	if alias != "" && path != "" {
		im.packageImports[alias] = path
	}
}

// Len returns the number of imports collected so far
func (im *ImportManager) Len() int {
	return len(im.standardImports) + len(im.packageImports)
}

// GenerateImports generates the import declaration, or "" when there is nothing to import
func (im *ImportManager) GenerateImports() string {
	if im.Len() == 0 {
		return ""
	}

	var imports []string

	var stdImports []string
	for imp := range im.standardImports {
		stdImports = append(stdImports, fmt.Sprintf("%q", imp))
	}
	sort.Strings(stdImports)
	imports = append(imports, stdImports...)

	var aliases []string
	for alias := range im.packageImports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		imports = append(imports, fmt.Sprintf("%s %q", alias, im.packageImports[alias]))
	}

	if len(imports) == 1 {
		return fmt.Sprintf("import %s\n", imports[0])
	}

	var result strings.Builder
	result.WriteString("import (\n")
	for _, imp := range imports {
		result.WriteString(fmt.Sprintf("\t%s\n", imp))
	}
	result.WriteString(")\n")

	return result.String()
}
