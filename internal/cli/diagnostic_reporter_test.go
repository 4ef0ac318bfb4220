package cli

import (
	"bytes"
	"testing"

	crdb "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/toyz/apimod/internal/errors"
)

func newTestReporter(verbose bool) (*DiagnosticReporter, *bytes.Buffer) {
	var out bytes.Buffer
	reporter := NewDiagnosticReporter(verbose)
	reporter.SetOutput(&out)
	return reporter, &out
}

func TestDiagnosticReporter_Report(t *testing.T) {
	loc := errors.SourceLocation{File: "hv.apimod", Line: 3, Column: 13}

	t.Run("error with hint", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.Report(errors.NewAuthoringError(loc, errors.ErrReceiverParameter, "Method").
			WithSuggestion("Remove the receiver"))

		assert.Equal(t,
			"hv.apimod:3:13: error: api functions cannot take a receiver: Method\n"+
				"  hint: Remove the receiver\n",
			out.String())
	})

	t.Run("warning", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.Report(errors.New(errors.ConsistencyErrorCode, "not implemented").WithLocation(loc).AsWarning())

		assert.Equal(t, "hv.apimod:3:13: warning: not implemented\n", out.String())
	})

	t.Run("no location", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.Report(errors.New(errors.GenerationErrorCode, "failed"))

		assert.Equal(t, "error: failed\n", out.String())
	})

	t.Run("multi-line hints and duplicates", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.Report(errors.New(errors.ResolutionErrorCode, "failed").
			WithSuggestions("first line\nsecond line", "first line\nsecond line"))

		assert.Equal(t, "error: failed\n  hint: first line\n        second line\n", out.String())
	})

	t.Run("verbose shows context and causes", func(t *testing.T) {
		reporter, out := newTestReporter(true)
		reporter.Report(errors.WrapFileSystemError("write", "/work/memory/apimod_gen.go", crdb.New("disk full")))

		output := out.String()
		assert.Contains(t, output, "error: failed to write file '/work/memory/apimod_gen.go'\n")
		assert.Contains(t, output, "  Operation: write\n")
		assert.Contains(t, output, "  Path: /work/memory/apimod_gen.go\n")
		assert.Contains(t, output, "  cause 1: disk full\n")
	})
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	t.Run("plain error with hints", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.ReportError(crdb.WithHint(crdb.New("boom"), "try again"))

		assert.Equal(t, "error: boom\n  hint: try again\n", out.String())
	})

	t.Run("wrapped apimod error", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.ReportError(crdb.Wrap(errors.New(errors.GenerationErrorCode, "inner"), "outer"))

		assert.Equal(t, "error: inner\n", out.String())
	})

	t.Run("collection", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		all := errors.NewMultipleErrors()
		all.Add(errors.New(errors.SyntaxErrorCode, "one"))
		all.Add(errors.New(errors.SyntaxErrorCode, "two").AsWarning())
		reporter.ReportError(all)

		assert.Equal(t, "error: one\nwarning: two\n", out.String())
	})

	t.Run("nil", func(t *testing.T) {
		reporter, out := newTestReporter(false)
		reporter.ReportError(nil)
		assert.Empty(t, out.String())
	})
}
