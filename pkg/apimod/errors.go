package apimod

import "github.com/cockroachdb/errors"

var (
	// ErrNotInterface is returned when a registered type is not an interface type
	ErrNotInterface = errors.New("apimod: type is not an interface")

	// ErrAlreadyDefined is returned when an interface is defined twice
	ErrAlreadyDefined = errors.New("apimod: interface already defined")

	// ErrNotDefined is returned when an interface was never defined
	ErrNotDefined = errors.New("apimod: interface not defined")

	// ErrAlreadyImplemented is returned when a second implementation is registered
	ErrAlreadyImplemented = errors.New("apimod: interface already implemented")

	// ErrNotImplemented is returned when an interface has no implementation
	ErrNotImplemented = errors.New("apimod: interface not implemented")

	// ErrInvalidImplementation is returned when a value does not implement the interface
	ErrInvalidImplementation = errors.New("apimod: value does not implement the interface")
)
