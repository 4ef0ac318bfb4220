package generator

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/templates"
	"github.com/toyz/apimod/internal/utils"
)

// CodeGenerator turns parsed api modules into Go packages
type CodeGenerator interface {
	GenerateFile(ctx models.GenerationContext, file *models.SourceFile) ([]*models.GeneratedFile, error)
	GenerateDefinition(ctx models.GenerationContext, m *models.ApiModuleDefinition) (*models.GeneratedFile, error)
	GenerateImplementation(ctx models.GenerationContext, m *models.ApiModuleImplementation) (*models.GeneratedFile, error)
}

// Generator implements the CodeGenerator interface
type Generator struct {
	templates *templates.TemplateRegistry
}

// NewGenerator creates a new code generator instance
func NewGenerator() *Generator {
	return &Generator{templates: templates.DefaultTemplateRegistry}
}

// GenerateFile generates every module of a source file. A module that fails
// to generate is reported and skipped; the others are still returned.
func (g *Generator) GenerateFile(ctx models.GenerationContext, file *models.SourceFile) ([]*models.GeneratedFile, error) {
	var files []*models.GeneratedFile
	errs := errors.NewMultipleErrors()

	for _, def := range file.Definitions {
		generated, err := g.GenerateDefinition(ctx, def)
		if err != nil {
			errs.Add(asApimodError(err, def.Name))
			continue
		}
		files = append(files, generated)
	}

	for _, impl := range file.Implementations {
		generated, err := g.GenerateImplementation(ctx, impl)
		if err != nil {
			errs.Add(asApimodError(err, impl.Name))
			continue
		}
		files = append(files, generated)
	}

	return files, errs.ErrOrNil()
}

// PackageDir returns the directory and import path a module is generated into.
// Public modules sit next to the .apimod file, private ones under its
// internal directory and crate-scoped ones under the module root's internal
// directory, so Go's internal rule matches the declared visibility.
func PackageDir(ctx models.GenerationContext, name string, vis models.Visibility) (dir, importPath string) {
	switch vis.Kind {
	case models.Public:
		return filepath.Join(ctx.SourceDir, name), path.Join(ctx.SourceImportPath, name)
	case models.Scoped:
		return filepath.Join(ctx.ModuleRoot, "internal", name), path.Join(ctx.ModulePath, "internal", name)
	default:
		return filepath.Join(ctx.SourceDir, "internal", name), path.Join(ctx.SourceImportPath, "internal", name)
	}
}

// ResolveTarget returns the import path an implementee path refers to.
// Relative paths are resolved against the import path of the .apimod file's
// directory.
func ResolveTarget(ctx models.GenerationContext, p models.ImplPath) string {
	if p.Absolute {
		return strings.Join(p.Segments, "/")
	}
	return path.Join(ctx.SourceImportPath, p.Raw)
}

// runtimeQualifier returns the prefix generated code puts in front of the
// runtime registry functions and records the runtime import when one is needed
func runtimeQualifier(support models.SupportLibrary, importPath string, im *templates.ImportManager) string {
	if support.Kind == models.SupportNotFound {
		return SupportNotFoundMarker + "."
	}
	if support.ImportPath == importPath {
		return ""
	}
	im.AddPackageImport(RuntimeAlias, support.ImportPath)
	return RuntimeAlias + "."
}

func newFile(kind models.ModuleKind, ctx models.GenerationContext, name string, vis models.Visibility, loc errors.SourceLocation) *models.GeneratedFile {
	dir, importPath := PackageDir(ctx, name, vis)
	return &models.GeneratedFile{
		Kind:        kind,
		Module:      name,
		Source:      loc,
		PackageDir:  dir,
		ImportPath:  importPath,
		FilePath:    filepath.Join(dir, GeneratedFileName),
		Diagnostics: errors.NewMultipleErrors(),
	}
}

// render executes a template and formats the result. When formatting fails
// the unformatted source is kept so it can still be inspected.
func (g *Generator) render(file *models.GeneratedFile, name string, data any) error {
	source, err := g.templates.Execute(name, data)
	if err != nil {
		return err
	}

	formatted, err := utils.FormatGoCode(file.FilePath, []byte(source))
	if err != nil {
		file.Content = []byte(source)
		return errors.WrapGenerateError(file.ImportPath, err).
			WithContext("file", file.FilePath).
			WithSuggestion("Check the regular items and function bodies of the module for Go syntax errors")
	}
	file.Content = formatted
	return nil
}

func header(m models.Attributes, pkg, doc string, userImports []*models.RegularItem, im *templates.ImportManager) templates.FileHeader {
	h := templates.FileHeader{
		BuildConstraints: m.BuildConstraints(),
		Doc:              doc,
		Package:          pkg,
		Imports:          im.GenerateImports(),
	}
	for _, item := range userImports {
		h.UserImports = append(h.UserImports, item.Text)
	}
	return h
}

func declarations(items []*models.RegularItem) []string {
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}
	return texts
}

func asApimodError(err error, module string) errors.ApimodError {
	if apimodErr, ok := err.(errors.ApimodError); ok {
		return apimodErr
	}
	return errors.WrapGenerateError("module "+module, err)
}
