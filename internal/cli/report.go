package cli

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
)

// Report is the machine-readable summary written with --report
type Report struct {
	Summary     GenerationSummary  `yaml:"summary"`
	Files       []ReportFile       `yaml:"files"`
	Diagnostics []ReportDiagnostic `yaml:"diagnostics,omitempty"`
}

// ReportFile describes one generated package
type ReportFile struct {
	Source    string   `yaml:"source"`
	Module    string   `yaml:"module"`
	Kind      string   `yaml:"kind"`
	Package   string   `yaml:"package"`
	Output    string   `yaml:"output"`
	Interface string   `yaml:"interface,omitempty"`
	Target    string   `yaml:"target,omitempty"`
	Functions []string `yaml:"functions,omitempty"`
}

// ReportDiagnostic is one error or warning of the run
type ReportDiagnostic struct {
	Severity string                `yaml:"severity"`
	Code     string                `yaml:"code"`
	Message  string                `yaml:"message"`
	Location errors.SourceLocation `yaml:"location,omitempty"`
	Hints    []string              `yaml:"hints,omitempty"`
}

// NewReport builds the report of a finished run
func NewReport(summary GenerationSummary, files []*models.GeneratedFile, diagnostics *errors.MultipleErrors) *Report {
	report := &Report{Summary: summary}

	for _, file := range files {
		report.Files = append(report.Files, ReportFile{
			Source:    file.Source.String(),
			Module:    file.Module,
			Kind:      string(file.Kind),
			Package:   file.ImportPath,
			Output:    file.FilePath,
			Interface: file.Interface,
			Target:    file.Target,
			Functions: file.Functions,
		})
	}

	if diagnostics != nil {
		for _, diagnostic := range diagnostics.Errors {
			report.Diagnostics = append(report.Diagnostics, ReportDiagnostic{
				Severity: SeverityOf(diagnostic).String(),
				Code:     diagnostic.ErrorCode().String(),
				Message:  message(diagnostic),
				Location: diagnostic.Location(),
				Hints:    dedupe(diagnostic.Suggestions()),
			})
		}
	}

	return report
}

// WriteReport writes the report as YAML
func WriteReport(path string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return errors.WrapGenerateError("report", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	return nil
}
