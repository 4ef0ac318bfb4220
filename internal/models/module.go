package models

import (
	"strings"

	"github.com/toyz/apimod/internal/errors"
)

// Attribute is one comment group attached to a module or an item, kept verbatim
type Attribute struct {
	Text string
	Loc  errors.SourceLocation
}

// Attributes is an ordered list of attributes
type Attributes []Attribute

// IsBuildConstraint reports whether the attribute is a //go:build or // +build line
func (a Attribute) IsBuildConstraint() bool {
	return strings.HasPrefix(a.Text, "//go:build ") || strings.HasPrefix(a.Text, "// +build ")
}

// BuildConstraints returns the build constraint lines in source order
func (a Attributes) BuildConstraints() []string {
	var lines []string
	for _, attr := range a {
		if attr.IsBuildConstraint() {
			lines = append(lines, attr.Text)
		}
	}
	return lines
}

// Docs returns every attribute that is not a build constraint
func (a Attributes) Docs() Attributes {
	var docs Attributes
	for _, attr := range a {
		if !attr.IsBuildConstraint() {
			docs = append(docs, attr)
		}
	}
	return docs
}

// Text joins the attributes with newlines, ready to be placed above a declaration
func (a Attributes) Text() string {
	parts := make([]string, len(a))
	for i, attr := range a {
		parts[i] = attr.Text
	}
	return strings.Join(parts, "\n")
}

// VisibilityKind is the scope marker written before `mod`
type VisibilityKind int

const (
	Private VisibilityKind = iota
	Public
	Scoped
)

// Visibility carries the scope marker of a module through to the output layout
type Visibility struct {
	Kind  VisibilityKind
	Scope string // set for Scoped, e.g. "crate"
}

func (v Visibility) String() string {
	switch v.Kind {
	case Public:
		return "pub"
	case Scoped:
		return "pub(" + v.Scope + ")"
	default:
		return ""
	}
}

// Param is one parameter group of a signature
type Param struct {
	Names    []string // empty for an unnamed parameter
	Type     string   // verbatim, without the variadic ellipsis
	Variadic bool
}

// Signature is the function header of an api function
type Signature struct {
	Name    string
	Params  []Param
	Results string // verbatim, empty when the function returns nothing
	// Header is the source text from the opening parenthesis of the
	// parameter list to the end of the results, byte for byte.
	Header string
	Loc    errors.SourceLocation
}

// HasResults reports whether the function returns anything
func (s Signature) HasResults() bool {
	return s.Results != ""
}

// NoBody is the body type of a definition-context api function
type NoBody struct{}

// Body is the verbatim block of an implementation-context api function
type Body struct {
	Text string
	Loc  errors.SourceLocation
}

// ApiFn is an item written with the `extern func` prefix
type ApiFn[B any] struct {
	Attrs Attributes
	Sig   Signature
	Body  B
}

// ApiFnDecl is an api function declared in a definition module
type ApiFnDecl = ApiFn[NoBody]

// ApiFnImpl is an api function implemented in an implementation module
type ApiFnImpl = ApiFn[Body]

// RegularKind classifies passthrough items
type RegularKind int

const (
	RegularDecl RegularKind = iota
	RegularImport
	RegularComment
)

// RegularItem is any module item other than an api function. Text is the
// verbatim source of the item including its leading comments.
type RegularItem struct {
	Kind RegularKind
	Text string
	Loc  errors.SourceLocation
}

// Item is either a regular item or an api function
type Item[B any] struct {
	Regular *RegularItem
	Fn      *ApiFn[B]
}

// IsApiFn reports whether the item is an api function
func (i Item[B]) IsApiFn() bool {
	return i.Fn != nil
}

// ApiModule is one `mod name { ... }` block
type ApiModule[B any] struct {
	Attrs Attributes
	Vis   Visibility
	Name  string
	Loc   errors.SourceLocation
	Items []Item[B]
}

// Functions returns the api functions in declaration order
func (m *ApiModule[B]) Functions() []*ApiFn[B] {
	var fns []*ApiFn[B]
	for _, item := range m.Items {
		if item.Fn != nil {
			fns = append(fns, item.Fn)
		}
	}
	return fns
}

// Imports returns the import items in source order
func (m *ApiModule[B]) Imports() []*RegularItem {
	return m.regular(func(kind RegularKind) bool { return kind == RegularImport })
}

// Declarations returns the non-import regular items in source order
func (m *ApiModule[B]) Declarations() []*RegularItem {
	return m.regular(func(kind RegularKind) bool { return kind != RegularImport })
}

func (m *ApiModule[B]) regular(keep func(RegularKind) bool) []*RegularItem {
	var items []*RegularItem
	for _, item := range m.Items {
		if item.Regular != nil && keep(item.Regular.Kind) {
			items = append(items, item.Regular)
		}
	}
	return items
}

// ApiModuleDefinition is a module handed to the Define entry point
type ApiModuleDefinition = ApiModule[NoBody]

// ApiModuleImplementation is a module handed to the Implement entry point
type ApiModuleImplementation struct {
	ApiModule[Body]
	Target ImplPath
}
