package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/generator"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/parser"
	"github.com/toyz/apimod/internal/utils"
)

// ErrDiagnosticsReported is returned by a run that reported at least one
// error diagnostic. The diagnostics themselves have already been printed.
var ErrDiagnosticsReported = errors.WithStack(errors.New(errors.GenerationErrorCode, "apimod reported errors"))

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	SourceFiles     int      `yaml:"source_files"`
	Definitions     int      `yaml:"definitions"`
	Implementations int      `yaml:"implementations"`
	Functions       int      `yaml:"functions"`
	Warnings        int      `yaml:"warnings"`
	Errors          int      `yaml:"errors"`
	GeneratedFiles  []string `yaml:"generated_files,omitempty"`
}

// Generator coordinates the CLI generation process
type Generator struct {
	config        *Config
	fileReader    *utils.FileReader
	scanner       *DirectoryScanner
	resolver      *ModuleResolver
	codeGenerator generator.CodeGenerator
	reporter      *DiagnosticReporter
	diagnostics   *utils.DiagnosticSystem
	logger        *zap.SugaredLogger
	summary       GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(config *Config, diagnostics *utils.DiagnosticSystem, logger *zap.SugaredLogger) *Generator {
	fileReader := utils.NewFileReader()
	resolver := NewModuleResolver(fileReader, logger.Named("resolver"))
	resolver.SetRuntime(config.Runtime)

	return &Generator{
		config:        config,
		fileReader:    fileReader,
		scanner:       NewDirectoryScanner(utils.NewFileProcessorWithReader(fileReader)),
		resolver:      resolver,
		codeGenerator: generator.NewGenerator(),
		reporter:      NewDiagnosticReporter(config.Verbose || config.Debug),
		diagnostics:   diagnostics,
		logger:        logger,
	}
}

// Reporter returns the reporter diagnostics are printed with
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Generate scans the configured paths, generates every module and writes
// the resulting packages
func (g *Generator) Generate() error {
	return g.run(true)
}

// Check runs the whole pipeline without writing any file
func (g *Generator) Check() error {
	return g.run(false)
}

func (g *Generator) run(write bool) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}

	if write {
		g.diagnostics.Header("Generating API modules")
	} else {
		g.diagnostics.Header("Checking API modules")
	}
	paths := g.config.Paths
	if len(paths) == 0 {
		paths = []string{"./..."}
	}
	g.diagnostics.SourcePath(strings.Join(paths, " "))

	sources, err := g.scanner.ScanDirectories(g.config.Paths)
	if err != nil {
		g.diagnostics.Error("Failed to scan directories: %v", err)
		return err
	}
	if len(sources) == 0 {
		g.diagnostics.Warn("No %s files found in %v", SourceExtension, g.config.Paths)
		return nil
	}
	g.summary.SourceFiles = len(sources)

	g.diagnostics.PhaseHeader("Parsing")
	all := errors.NewMultipleErrors()
	var files []*models.GeneratedFile
	warnedModules := make(map[string]bool)

	for _, source := range sources {
		g.diagnostics.PhaseProgress(source)
		generated := g.processFile(source, all, warnedModules)
		files = append(files, generated...)
	}

	for _, finding := range CheckConsistency(files, g.config.Strict) {
		all.Add(finding)
	}

	if write {
		g.diagnostics.PhaseHeader("Writing")
		for _, file := range files {
			if err := g.writeFile(file); err != nil {
				all.Add(asApimodError(err))
				continue
			}
			g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, file.FilePath)
			g.diagnostics.PhaseProgress("Writing " + file.FilePath)
		}
	}

	g.collectSummaryInfo(files, all)
	g.reporter.ReportAll(all)

	if g.config.Report != "" {
		if err := WriteReport(g.config.Report, NewReport(g.summary, files, all)); err != nil {
			g.reporter.ReportError(err)
			return ErrDiagnosticsReported
		}
		g.diagnostics.Verbose("Report written to %s", g.config.Report)
	}

	g.diagnostics.Summary("Summary", map[string]interface{}{
		"Source files":    g.summary.SourceFiles,
		"Definitions":     g.summary.Definitions,
		"Implementations": g.summary.Implementations,
		"API functions":   g.summary.Functions,
		"Warnings":        g.summary.Warnings,
		"Errors":          g.summary.Errors,
	})
	g.logger.Debugw("Run finished",
		"duration", time.Since(startTime),
		"files", len(files),
		"errors", g.summary.Errors)

	if all.HasErrors() {
		g.diagnostics.Error("%d error(s) reported", g.summary.Errors)
		return ErrDiagnosticsReported
	}
	if write {
		g.diagnostics.GenerationComplete()
	}
	return nil
}

// processFile parses, resolves and generates one .apimod file. Every problem
// is added to diags; the files that could be generated are returned.
func (g *Generator) processFile(source string, diags *errors.MultipleErrors, warnedModules map[string]bool) []*models.GeneratedFile {
	content, err := g.fileReader.ReadFile(source)
	if err != nil {
		diags.Add(asApimodError(err))
		return nil
	}

	parsed, err := parser.ParseFile(source, content)
	if err != nil {
		addAll(diags, err)
		return nil
	}
	addAll(diags, parsed.Diagnostics.ErrOrNil())
	g.logger.Debugw("Parsed source file",
		"file", source,
		"definitions", len(parsed.Definitions),
		"implementations", len(parsed.Implementations))

	if parsed.ModuleCount() == 0 {
		return nil
	}

	ctx, err := g.resolver.Resolve(source)
	if err != nil {
		addAll(diags, err)
		return nil
	}
	if ctx.Support.Kind == models.SupportNotFound && !warnedModules[ctx.ModuleRoot] {
		warnedModules[ctx.ModuleRoot] = true
		diags.Add(SupportNotFoundWarning(ctx))
	}

	files, err := g.codeGenerator.GenerateFile(ctx, parsed)
	addAll(diags, err)
	for _, file := range files {
		addAll(diags, file.Diagnostics.ErrOrNil())
		g.diagnostics.PhaseItem(fmt.Sprintf("%s %s -> %s", file.Kind, file.Module, file.ImportPath))
		g.logger.Debugw("Generated module",
			"module", file.Module,
			"kind", string(file.Kind),
			"package", file.ImportPath)
	}
	return files
}

// writeFile writes a generated package file, creating its directory
func (g *Generator) writeFile(file *models.GeneratedFile) error {
	dir := filepath.Dir(file.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WrapFileSystemError("create directory for", file.FilePath, err)
	}
	if err := os.WriteFile(file.FilePath, file.Content, 0644); err != nil {
		return errors.WrapFileSystemError("write", file.FilePath, err)
	}
	g.fileReader.InvalidateFile(file.FilePath)
	return nil
}

func (g *Generator) collectSummaryInfo(files []*models.GeneratedFile, diags *errors.MultipleErrors) {
	for _, file := range files {
		switch file.Kind {
		case models.KindDefinition:
			g.summary.Definitions++
		case models.KindImplementation:
			g.summary.Implementations++
		}
		g.summary.Functions += len(file.Functions)
	}
	for _, diagnostic := range diags.Errors {
		if SeverityOf(diagnostic) == errors.SeverityWarning {
			g.summary.Warnings++
		} else {
			g.summary.Errors++
		}
	}
}

// addAll adds err to diags, flattening collections
func addAll(diags *errors.MultipleErrors, err error) {
	if err == nil {
		return
	}
	if multi, ok := err.(*errors.MultipleErrors); ok {
		for _, e := range multi.Errors {
			diags.Add(e)
		}
		return
	}
	diags.Add(asApimodError(err))
}

func asApimodError(err error) errors.ApimodError {
	var apimodErr errors.ApimodError
	if errors.As(err, &apimodErr) {
		return apimodErr
	}
	return errors.Wrap(errors.UnknownErrorCode, err.Error(), err)
}
