package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Sentinels for errors.Is checks on generator diagnostics.
var (
	ErrReceiverParameter      = crdb.New("api functions cannot take a receiver")
	ErrTypeParameters         = crdb.New("api functions cannot declare type parameters")
	ErrUnexportedFunction     = crdb.New("api functions must be exported")
	ErrUnexpectedBody         = crdb.New("api function declarations cannot have a body")
	ErrMissingBody            = crdb.New("api function implementations need a body")
	ErrInvalidImplementeePath = crdb.New("invalid implementee path")
	ErrSupportLibraryNotFound = crdb.New("apimod support library not found")
)

// Re-exports so callers need a single errors import.
var (
	Is          = crdb.Is
	As          = crdb.As
	WithStack   = crdb.WithStack
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	GetAllHints = crdb.GetAllHints
)

// NewSyntaxError reports malformed input at loc
func NewSyntaxError(loc SourceLocation, format string, args ...interface{}) *BaseError {
	return Newf(SyntaxErrorCode, format, args...).WithLocation(loc)
}

// NewAuthoringError reports a rule violation at loc; sentinel becomes the cause
// so callers can match it with Is.
func NewAuthoringError(loc SourceLocation, sentinel error, detail string) *BaseError {
	message := sentinel.Error()
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	return Wrap(AuthoringErrorCode, message, crdb.WithStack(sentinel)).WithLocation(loc)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause)
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause).
		WithContext("target", item)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// WrapResolutionError wraps module and import path resolution errors
func WrapResolutionError(what string, cause error) *BaseError {
	return Wrap(ResolutionErrorCode, fmt.Sprintf("failed to resolve %s", what), cause)
}
