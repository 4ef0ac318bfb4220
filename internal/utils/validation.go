package utils

import (
	"fmt"

	"golang.org/x/mod/module"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		return nil
	}
}

// IsImportPath validates that a string is a well-formed Go import path
func IsImportPath(field string) Validator[string] {
	return func(value string) error {
		if err := module.CheckImportPath(value); err != nil {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: err.Error(),
			}
		}
		return nil
	}
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be one of %v", allowed),
		}
	}
}

// Custom creates a custom validator with a custom function
func Custom[T any](field string, message string, validatorFunc func(T) bool) Validator[T] {
	return func(value T) error {
		if !validatorFunc(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: message,
			}
		}
		return nil
	}
}

// Optional skips validation of the zero value
func Optional[T comparable](validator Validator[T]) Validator[T] {
	return func(value T) error {
		var zero T
		if value == zero {
			return nil
		}
		return validator(value)
	}
}
