package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/mod/module"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
)

// DirectivePrefix starts every entry-point directive comment
const DirectivePrefix = "//apimod:"

// DirectiveKind selects the entry point a module is handed to
type DirectiveKind int

const (
	DefineDirective DirectiveKind = iota
	ImplDirective
)

func (k DirectiveKind) String() string {
	if k == ImplDirective {
		return "impl"
	}
	return "define"
}

// Directive is a parsed //apimod: comment
type Directive struct {
	Kind   DirectiveKind
	Target models.ImplPath // set for ImplDirective
	Loc    errors.SourceLocation
}

// directiveAST is the participle grammar root
type directiveAST struct {
	Tool string     `parser:"'//' @Segment ':'"`
	Kind string     `parser:"@Segment"`
	Args []*pathAST `parser:"@@*"`
}

// pathAST is one whitespace separated argument
type pathAST struct {
	Pos   lexer.Position
	Parts []string `parser:"@(Dot | Segment) ( '/' @(Dot | Segment) )*"`
}

var directiveParser = participle.MustBuild[directiveAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//`},
		{Name: "Dot", Pattern: `\.\.?`},
		{Name: "Segment", Pattern: `[A-Za-z0-9_~+\-][A-Za-z0-9_.~+\-]*`},
		{Name: "Slash", Pattern: `/`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Whitespace", Pattern: `\s+`},
	})),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// IsDirective reports whether a comment is an apimod directive
func IsDirective(comment string) bool {
	return strings.HasPrefix(comment, DirectivePrefix)
}

// ParseDirective parses a directive comment found at loc
func ParseDirective(comment string, loc errors.SourceLocation) (*Directive, error) {
	if !IsDirective(comment) {
		return nil, errors.NewSyntaxError(loc, "not an apimod directive: %q", comment)
	}

	ast, err := directiveParser.ParseString(loc.File, comment)
	if err != nil {
		return nil, errors.Wrap(errors.SyntaxErrorCode, "malformed apimod directive", err).
			WithLocation(loc).
			WithSuggestion("use //apimod:define or //apimod:impl <package path>")
	}

	directive := &Directive{Loc: loc}
	switch ast.Kind {
	case "define":
		directive.Kind = DefineDirective
		if len(ast.Args) != 0 {
			return nil, errors.NewSyntaxError(shift(loc, ast.Args[0].Pos), "define takes no arguments")
		}
	case "impl":
		directive.Kind = ImplDirective
		if len(ast.Args) != 1 {
			return nil, errors.NewSyntaxError(loc, "impl takes exactly one package path, got %d", len(ast.Args)).
				WithSuggestion("write //apimod:impl ./memory or //apimod:impl example.com/hv/memory")
		}
		target, err := interpretPath(ast.Args[0], shift(loc, ast.Args[0].Pos))
		if err != nil {
			return nil, err
		}
		directive.Target = target
	default:
		return nil, errors.NewSyntaxError(loc, "unknown apimod directive %q", ast.Kind).
			WithSuggestion("known directives are define and impl")
	}
	return directive, nil
}

// interpretPath turns the raw parts into an ImplPath. Leading "." and ".."
// parts make the path relative; a dot part anywhere else is rejected.
func interpretPath(arg *pathAST, loc errors.SourceLocation) (models.ImplPath, error) {
	p := models.ImplPath{
		Raw:      strings.Join(arg.Parts, "/"),
		Absolute: !isDot(arg.Parts[0]),
		Loc:      loc,
	}

	leading := true
	for _, part := range arg.Parts {
		if !isDot(part) {
			leading = false
			p.Segments = append(p.Segments, part)
			continue
		}
		if !leading || p.Absolute {
			return models.ImplPath{}, errors.NewSyntaxError(loc, "%q may only lead a relative path: %s", part, p.Raw)
		}
		if part == ".." {
			p.Segments = append(p.Segments, part)
		}
	}

	if p.Absolute {
		if err := module.CheckImportPath(p.Raw); err != nil {
			return models.ImplPath{}, errors.Wrap(errors.SyntaxErrorCode, fmt.Sprintf("invalid import path %q", p.Raw), err).
				WithLocation(loc)
		}
	}
	return p, nil
}

func isDot(part string) bool {
	return part == "." || part == ".."
}

func shift(loc errors.SourceLocation, pos lexer.Position) errors.SourceLocation {
	if loc.Column > 0 && pos.Column > 0 {
		loc.Column += pos.Column - 1
	}
	return loc
}
