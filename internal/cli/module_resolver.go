package cli

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/utils"
)

const (
	// SupportModulePath is the module that ships the runtime support package
	SupportModulePath = "github.com/toyz/apimod"
	// SupportPackagePath is the import path of the runtime support package
	SupportPackagePath = SupportModulePath + "/pkg/apimod"
)

// ModuleResolver handles resolving Go module information for .apimod files
type ModuleResolver struct {
	goMod   *utils.GoModParser
	runtime string
	logger  *zap.SugaredLogger
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver(fileReader *utils.FileReader, logger *zap.SugaredLogger) *ModuleResolver {
	return &ModuleResolver{
		goMod:  utils.NewGoModParser(fileReader),
		logger: logger,
	}
}

// SetRuntime overrides the import path of the support package. An override
// always resolves to a named support library.
func (r *ModuleResolver) SetRuntime(importPath string) {
	r.runtime = importPath
}

// Resolve builds the generation context of one .apimod file
func (r *ModuleResolver) Resolve(sourceFile string) (models.GenerationContext, error) {
	absFile, err := filepath.Abs(sourceFile)
	if err != nil {
		return models.GenerationContext{}, errors.WrapFileSystemError("resolve", sourceFile, err)
	}
	sourceDir := filepath.Dir(absFile)

	goModPath, err := r.goMod.FindGoModFile(sourceDir)
	if err != nil {
		return models.GenerationContext{}, err
	}
	modulePath, err := r.goMod.ParseModuleName(goModPath)
	if err != nil {
		return models.GenerationContext{}, errors.WrapResolutionError("module name", err).
			WithContext("go.mod", goModPath)
	}

	moduleRoot := filepath.Dir(goModPath)
	importPath, err := r.BuildPackagePath(modulePath, moduleRoot, sourceDir)
	if err != nil {
		return models.GenerationContext{}, err
	}

	support, err := r.ResolveSupport(goModPath, modulePath)
	if err != nil {
		return models.GenerationContext{}, err
	}

	r.logger.Debugw("Resolved generation context",
		"file", absFile,
		"import_path", importPath,
		"module_root", moduleRoot,
		"support", support.Kind.String(),
		"runtime", support.ImportPath)

	return models.GenerationContext{
		SourceFile:       absFile,
		SourceDir:        sourceDir,
		SourceImportPath: importPath,
		ModuleRoot:       moduleRoot,
		ModulePath:       modulePath,
		Support:          support,
	}, nil
}

// ResolveSupport decides how generated code reaches the support package
func (r *ModuleResolver) ResolveSupport(goModPath, modulePath string) (models.SupportLibrary, error) {
	if r.runtime != "" {
		return models.SupportLibrary{Kind: models.SupportNamed, ImportPath: r.runtime}, nil
	}
	if modulePath == SupportModulePath {
		return models.SupportLibrary{Kind: models.SupportItself, ImportPath: SupportPackagePath}, nil
	}

	required, err := r.goMod.Requires(goModPath, SupportModulePath)
	if err != nil {
		return models.SupportLibrary{}, err
	}
	if required {
		return models.SupportLibrary{Kind: models.SupportNamed, ImportPath: SupportPackagePath}, nil
	}
	return models.SupportLibrary{Kind: models.SupportNotFound}, nil
}

// BuildPackagePath builds the full import path for a directory inside the module
func (r *ModuleResolver) BuildPackagePath(modulePath, moduleRoot, dir string) (string, error) {
	relPath, err := filepath.Rel(moduleRoot, dir)
	if err != nil {
		return "", errors.WrapResolutionError("package path", err).
			WithContext("directory", dir)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return modulePath, nil
	}
	if importPath == ".." || len(importPath) > 3 && importPath[:3] == "../" {
		return "", errors.Newf(errors.ResolutionErrorCode, "directory %s is outside module root %s", dir, moduleRoot)
	}

	return modulePath + "/" + importPath, nil
}

// SupportNotFoundWarning reports that generated code of a module cannot
// reach the support package
func SupportNotFoundWarning(ctx models.GenerationContext) *errors.BaseError {
	return errors.Wrap(errors.ResolutionErrorCode,
		"apimod support library not found; generated code will not compile",
		errors.WithStack(errors.ErrSupportLibraryNotFound)).
		AsWarning().
		WithLocation(errors.SourceLocation{File: filepath.Join(ctx.ModuleRoot, "go.mod")}).
		WithContext("module", ctx.ModulePath).
		WithSuggestions(
			"Run 'go get "+SupportModulePath+"' in the module",
			"Or set runtime in "+ConfigFileName+" to the import path of the support package",
		)
}
