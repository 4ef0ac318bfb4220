package parser

import (
	"go/token"

	"github.com/toyz/apimod/internal/annotations"
	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
)

// fileParser holds the state for one .apimod file
type fileParser struct {
	filename string
	src      []byte
	file     *token.File
	toks     []tok
	diags    *errors.MultipleErrors
}

// ParseFile parses an .apimod source. The returned error is set when the
// file as a whole cannot be read (scanner errors, unbalanced brackets or a
// malformed module header). Problems confined to a single module are
// recorded in SourceFile.Diagnostics and the module is left out.
func ParseFile(filename string, src []byte) (*models.SourceFile, error) {
	fset := token.NewFileSet()
	file := fset.AddFile(filename, fset.Base(), len(src))

	toks, err := tokenize(file, src)
	if err != nil {
		return nil, err
	}

	p := &fileParser{
		filename: filename,
		src:      src,
		file:     file,
		toks:     toks,
		diags:    errors.NewMultipleErrors(),
	}
	result := &models.SourceFile{Path: filename, Diagnostics: p.diags}

	c := newCursor(toks)
	for {
		c = c.skipSemicolons()
		if c.skipComments().done() {
			break
		}

		header, err := p.parseHeader(c)
		if err != nil {
			return nil, err
		}
		c = c.bounded(header.close+1, len(toks))

		if err := p.parseModule(header, result); err != nil {
			p.diags.Add(err)
		}
	}

	return result, nil
}

// moduleHeader is everything up to and including the opening brace
type moduleHeader struct {
	attrs     models.Attributes
	directive *annotations.Directive
	dirErr    *errors.BaseError
	vis       models.Visibility
	name      string
	loc       errors.SourceLocation
	open      int
	close     int
}

// parseHeader reads `attrs [pub[(scope)]] mod name {` and finds the matching
// closing brace of the body.
func (p *fileParser) parseHeader(c cursor) (*moduleHeader, error) {
	h := &moduleHeader{}

	var directives []models.Attribute
	for _, group := range p.leadingComments(c) {
		var attrs models.Attributes
		for _, comment := range group {
			if annotations.IsDirective(comment.Text) {
				directives = append(directives, comment)
				continue
			}
			attrs = append(attrs, comment)
		}
		// blank lines between doc groups become paragraph breaks
		if len(attrs.Docs()) > 0 && len(h.attrs.Docs()) > 0 {
			h.attrs = append(h.attrs, models.Attribute{Text: "//", Loc: attrs[0].Loc})
		}
		h.attrs = append(h.attrs, attrs...)
	}
	c = c.skipComments()

	start := c.peek()
	switch {
	case start.is(token.IDENT, keywordPub):
		h.vis.Kind = models.Public
		c = c.advance(1)
		if c.peek().Tok == token.LPAREN {
			scope := c.peekN(1)
			if scope.Tok != token.IDENT || c.peekN(2).Tok != token.RPAREN {
				return nil, errors.NewSyntaxError(p.loc(scope.Off), "expected pub(<scope>), found %s", describe(scope))
			}
			if scope.Lit != "crate" {
				return nil, errors.NewSyntaxError(p.loc(scope.Off), "unsupported visibility scope %q", scope.Lit).
					WithSuggestion("use pub, pub(crate) or no visibility marker")
			}
			h.vis = models.Visibility{Kind: models.Scoped, Scope: scope.Lit}
			c = c.advance(3)
		}
	case start.is(token.IDENT, keywordMod):
	default:
		return nil, errors.NewSyntaxError(p.loc(start.Off), "expected module, found %s", describe(start)).
			WithSuggestion("an .apimod file holds only `mod name { ... }` blocks")
	}

	if kw := c.peek(); !kw.is(token.IDENT, keywordMod) {
		return nil, errors.NewSyntaxError(p.loc(kw.Off), "expected mod, found %s", describe(kw))
	}
	name := c.peekN(1)
	if name.Tok != token.IDENT {
		return nil, errors.NewSyntaxError(p.loc(name.Off), "expected module name, found %s", describe(name))
	}
	h.name = name.Lit
	h.loc = p.loc(name.Off)
	if h.name == "_" {
		return nil, errors.NewSyntaxError(h.loc, "module name cannot be _")
	}

	c = c.advance(2)
	if brace := c.peek(); brace.Tok != token.LBRACE {
		return nil, errors.NewSyntaxError(p.loc(brace.Off), "expected { after module name, found %s", describe(brace))
	}
	h.open = c.pos
	closeIdx, err := p.matchBrackets(h.open)
	if err != nil {
		return nil, err
	}
	h.close = closeIdx

	switch len(directives) {
	case 0:
		h.dirErr = errors.NewSyntaxError(h.loc, "module %s has no apimod directive", h.name).
			WithSuggestion("add //apimod:define or //apimod:impl <package path> above the module")
	case 1:
		directive, err := annotations.ParseDirective(directives[0].Text, directives[0].Loc)
		if err != nil {
			var baseErr *errors.BaseError
			if errors.As(err, &baseErr) {
				h.dirErr = baseErr
			} else {
				h.dirErr = errors.WrapParseError("apimod directive", err).WithLocation(directives[0].Loc)
			}
		}
		h.directive = directive
	default:
		h.dirErr = errors.NewSyntaxError(directives[1].Loc, "module %s has more than one apimod directive", h.name)
	}

	return h, nil
}

// parseModule parses the body of a module and hands it to the entry point
// its directive selects.
func (p *fileParser) parseModule(h *moduleHeader, out *models.SourceFile) *errors.BaseError {
	if h.dirErr != nil {
		return h.dirErr
	}

	switch h.directive.Kind {
	case annotations.DefineDirective:
		items, err := parseItems[models.NoBody](p, declContext{}, h.open+1, h.close)
		if err != nil {
			return err
		}
		out.Definitions = append(out.Definitions, &models.ApiModuleDefinition{
			Attrs: h.attrs,
			Vis:   h.vis,
			Name:  h.name,
			Loc:   h.loc,
			Items: items,
		})
	case annotations.ImplDirective:
		items, err := parseItems[models.Body](p, implContext{}, h.open+1, h.close)
		if err != nil {
			return err
		}
		out.Implementations = append(out.Implementations, &models.ApiModuleImplementation{
			ApiModule: models.ApiModule[models.Body]{
				Attrs: h.attrs,
				Vis:   h.vis,
				Name:  h.name,
				Loc:   h.loc,
				Items: items,
			},
			Target: h.directive.Target,
		})
	}
	return nil
}

// leadingComments returns the comments before the first non-comment token,
// split into groups at blank lines. A comment on the same line as the
// preceding token belongs to that token and is left out.
func (p *fileParser) leadingComments(c cursor) []models.Attributes {
	start := c.pos
	end := c.skipComments().pos
	if end >= len(p.toks) {
		return nil
	}

	prev := start - 1
	for prev >= 0 && p.toks[prev].auto() {
		prev--
	}

	var groups []models.Attributes
	lastLine := -1
	for i := start; i < end; i++ {
		t := p.toks[i]
		line := p.line(t.Off)
		if prev >= 0 && p.toks[prev].Tok != token.COMMENT && line == p.line(p.toks[prev].End) {
			continue
		}
		if len(groups) == 0 || line > lastLine+1 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], models.Attribute{Text: t.Lit, Loc: p.loc(t.Off)})
		lastLine = p.line(t.End)
	}
	return groups
}

// matchBrackets returns the index of the token closing the bracket at open
func (p *fileParser) matchBrackets(open int) (int, error) {
	var stack []int
	for i := open; i < len(p.toks); i++ {
		t := p.toks[i]
		switch t.Tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			stack = append(stack, i)
		case token.RPAREN, token.RBRACK, token.RBRACE:
			top := p.toks[stack[len(stack)-1]]
			if closing(top.Tok) != t.Tok {
				return 0, errors.NewSyntaxError(p.loc(t.Off), "unexpected %s, expected %s", t.Lit, closing(top.Tok)).
					WithContext("opened_at", p.loc(top.Off).String())
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, nil
			}
		}
	}
	top := p.toks[stack[len(stack)-1]]
	return 0, errors.NewSyntaxError(p.loc(top.Off), "unclosed %s at end of file", top.Lit)
}

func closing(open token.Token) token.Token {
	switch open {
	case token.LPAREN:
		return token.RPAREN
	case token.LBRACK:
		return token.RBRACK
	default:
		return token.RBRACE
	}
}

func (p *fileParser) loc(off int) errors.SourceLocation {
	pos := p.file.Position(p.file.Pos(off))
	return errors.SourceLocation{File: p.filename, Line: pos.Line, Column: pos.Column}
}

func (p *fileParser) line(off int) int {
	return p.file.Line(p.file.Pos(off))
}

func describe(t tok) string {
	switch {
	case t.Tok == token.EOF:
		return "end of file"
	case t.auto():
		return "newline"
	default:
		return "'" + t.Lit + "'"
	}
}
