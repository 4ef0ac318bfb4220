package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// ApimodError defines the base interface for all errors reported by the generator
type ApimodError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	// SyntaxErrorCode marks malformed .apimod input
	SyntaxErrorCode
	// AuthoringErrorCode marks well-formed input that breaks an interface rule
	AuthoringErrorCode
	ResolutionErrorCode
	GenerationErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
	ConsistencyErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case AuthoringErrorCode:
		return "AuthoringError"
	case ResolutionErrorCode:
		return "ResolutionError"
	case GenerationErrorCode:
		return "GenerationError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case ConsistencyErrorCode:
		return "ConsistencyError"
	default:
		return "UnknownError"
	}
}

// Severity tells the reporter whether a diagnostic fails the run
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// SourceLocation represents where an error occurred in source code
type SourceLocation struct {
	File   string `yaml:"file"`
	Line   int    `yaml:"line,omitempty"`
	Column int    `yaml:"column,omitempty"`
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the ApimodError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Severity    Severity               // error unless downgraded with AsWarning
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Loc.IsEmpty() {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), e.Message)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns the hints attached to this error followed by any
// hints carried by its cause chain.
func (e *BaseError) Suggestions() []string {
	hints := append([]string(nil), e.Hints...)
	if e.Cause != nil {
		hints = append(hints, crdb.GetAllHints(e.Cause)...)
	}
	return hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// IsWarning reports whether the error was downgraded to a warning
func (e *BaseError) IsWarning() bool {
	return e.Severity == SeverityWarning
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// WithSuggestions adds multiple helpful suggestions
func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// AsWarning downgrades the error to a warning
func (e *BaseError) AsWarning() *BaseError {
	e.Severity = SeverityWarning
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []ApimodError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// ErrorCode returns the error code (uses the first error's code)
func (e *MultipleErrors) ErrorCode() ErrorCode {
	if len(e.Errors) == 0 {
		return UnknownErrorCode
	}
	return e.Errors[0].ErrorCode()
}

// Location returns the location of the first error
func (e *MultipleErrors) Location() SourceLocation {
	if len(e.Errors) == 0 {
		return SourceLocation{}
	}
	return e.Errors[0].Location()
}

// Unwrap returns every collected error so errors.Is and errors.As see all of them
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err ApimodError) {
	e.Errors = append(e.Errors, err)
}

// IsEmpty returns true if there are no errors
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Count returns the number of errors
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// HasErrors reports whether any collected entry is not a warning
func (e *MultipleErrors) HasErrors() bool {
	for _, err := range e.Errors {
		if base, ok := err.(*BaseError); ok && base.IsWarning() {
			continue
		}
		return true
	}
	return false
}

// HasCode returns true if any error of the specified type exists
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns nil for an empty collection
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]ApimodError, 0),
	}
}
