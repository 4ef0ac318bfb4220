package generator

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/apimod/internal/models"
)

const (
	// GeneratedFileName is the file every module is written to
	GeneratedFileName = "apimod_gen.go"

	// RuntimeAlias is the name the runtime package is imported under
	RuntimeAlias = "__apimod"

	// SupportNotFoundMarker replaces the runtime qualifier when the runtime
	// package cannot be located. It is undefined on purpose, so the build
	// fails at the first use.
	SupportNotFoundMarker = "__apimod_support_library_not_found__"

	// InvalidPathMarker is the whole body of an implementation whose target
	// path cannot name a package
	InvalidPathMarker = "__apimod_invalid_implementee_path__"

	// ImplTypeName is the receiver type carrying the implemented methods
	ImplTypeName = "__Impl"

	interfaceSuffix = "ApiTrait"
	absAliasPrefix  = "__apimod_implementee_abs"
	relAliasPrefix  = "__apimod_implementee_rel"
	argPrefix       = "__apimod_arg"
)

// Capitalize upper-cases the first letter of name
func Capitalize(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// InterfaceName derives the interface type name of a module
func InterfaceName(module string) string {
	return Capitalize(module) + interfaceSuffix
}

// ReuseAlias derives the import alias an implementation uses for its target
func ReuseAlias(p models.ImplPath) string {
	var b strings.Builder
	if p.Absolute {
		b.WriteString(absAliasPrefix)
	} else {
		b.WriteString(relAliasPrefix)
	}
	for _, segment := range p.Segments {
		b.WriteByte('_')
		encodeSegment(&b, segment)
	}
	return b.String()
}

// encodeSegment keeps ASCII letters, digits and '_' and hex-escapes every
// other byte, so the result always continues a Go identifier.
func encodeSegment(b *strings.Builder, segment string) {
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		default:
			fmt.Fprintf(b, "_%02x", c)
		}
	}
}

// ValidTarget reports whether an implementee path can name a package
func ValidTarget(p models.ImplPath) bool {
	return !p.IsEmpty() && token.IsIdentifier(p.Last())
}

// argName is the synthesized name of the n-th unnamed parameter
func argName(n int) string {
	return fmt.Sprintf("%s%d", argPrefix, n)
}
