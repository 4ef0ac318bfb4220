// Package apimod is the runtime support library of generated apimod code.
//
// A definition package registers its interface with [DefineInterface] and
// forwards every API call through [CallInterface]. An implementation package
// registers the one value implementing that interface with [ImplInterface].
// Both registrations run from package init functions, so a program gets its
// implementation by importing the implementing package, usually with a blank
// import in main:
//
//	import _ "example.com/hv/internal/memory_impl"
package apimod
