package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/apimod/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose   bool
	out       io.Writer
	useColors bool
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose:   verbose,
		out:       os.Stderr,
		useColors: !color.NoColor,
	}
}

// SetOutput redirects the reporter and turns colors off
func (r *DiagnosticReporter) SetOutput(out io.Writer) {
	r.out = out
	r.useColors = false
}

// ReportAll reports every collected diagnostic in order
func (r *DiagnosticReporter) ReportAll(diagnostics *errors.MultipleErrors) {
	if diagnostics == nil {
		return
	}
	for _, diagnostic := range diagnostics.Errors {
		r.Report(diagnostic)
	}
}

// ReportError reports any error, using the rich format when the error
// chain holds an ApimodError
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	if multi, ok := err.(*errors.MultipleErrors); ok {
		r.ReportAll(multi)
		return
	}

	var apimodErr errors.ApimodError
	if errors.As(err, &apimodErr) {
		r.Report(apimodErr)
		return
	}

	r.colored(color.FgRed, color.Bold).Fprint(r.out, "error: ")
	fmt.Fprintf(r.out, "%s\n", err.Error())
	for _, hint := range errors.GetAllHints(err) {
		r.printHint(hint)
	}
}

// Report prints one diagnostic: location, severity, message, hints and, in
// verbose mode, its context and cause chain
func (r *DiagnosticReporter) Report(diagnostic errors.ApimodError) {
	if loc := diagnostic.Location(); !loc.IsEmpty() {
		r.colored(color.Bold).Fprintf(r.out, "%s: ", loc.String())
	}

	severity := SeverityOf(diagnostic)
	if severity == errors.SeverityWarning {
		r.colored(color.FgYellow, color.Bold).Fprint(r.out, "warning: ")
	} else {
		r.colored(color.FgRed, color.Bold).Fprint(r.out, "error: ")
	}
	fmt.Fprintf(r.out, "%s\n", message(diagnostic))

	for _, hint := range dedupe(diagnostic.Suggestions()) {
		r.printHint(hint)
	}

	if r.verbose {
		r.printContext(diagnostic.Context())
		r.printCauses(diagnostic.Unwrap())
	}
}

// SeverityOf returns the severity of a diagnostic; only BaseError can be a warning
func SeverityOf(diagnostic errors.ApimodError) errors.Severity {
	if base, ok := diagnostic.(*errors.BaseError); ok && base.IsWarning() {
		return errors.SeverityWarning
	}
	return errors.SeverityError
}

func message(diagnostic errors.ApimodError) string {
	if base, ok := diagnostic.(*errors.BaseError); ok {
		return base.Message
	}
	return diagnostic.Error()
}

func (r *DiagnosticReporter) printHint(hint string) {
	lines := strings.Split(hint, "\n")
	r.colored(color.FgCyan).Fprint(r.out, "  hint: ")
	fmt.Fprintf(r.out, "%s\n", lines[0])
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(r.out, "        %s\n", line)
		}
	}
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	if len(context) == 0 {
		return
	}

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", formatContextKey(key), context[key])
	}
}

func (r *DiagnosticReporter) printCauses(cause error) {
	level := 1
	for cause != nil {
		fmt.Fprintf(r.out, "  cause %d: %s\n", level, cause.Error())
		unwrapper, ok := cause.(interface{ Unwrap() error })
		if !ok {
			return
		}
		cause = unwrapper.Unwrap()
		level++
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) colored(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !r.useColors {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}
