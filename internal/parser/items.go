package parser

import (
	goast "go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"strings"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
)

// fnContext decides what an api function body must look like and turns it
// into the body type of the module being parsed. text starts at source
// offset base.
type fnContext[B any] interface {
	body(p *fileParser, fd *goast.FuncDecl, text string, base int) (B, *errors.BaseError)
}

// fragmentOffset converts a position of a parsed fragment into an offset in
// the fragment text (positions count from 1 and include validationPrefix)
func fragmentOffset(pos token.Pos) int {
	return int(pos) - 1 - len(validationPrefix)
}

// declContext is used for definition modules: bodies are not allowed
type declContext struct{}

func (declContext) body(p *fileParser, fd *goast.FuncDecl, _ string, base int) (models.NoBody, *errors.BaseError) {
	if fd.Body != nil {
		return models.NoBody{}, errors.NewAuthoringError(p.loc(base+fragmentOffset(fd.Body.Lbrace)), errors.ErrUnexpectedBody, fd.Name.Name).
			WithSuggestion("move the body into a module marked //apimod:impl")
	}
	return models.NoBody{}, nil
}

// implContext is used for implementation modules: every function needs a body
type implContext struct{}

func (implContext) body(p *fileParser, fd *goast.FuncDecl, text string, base int) (models.Body, *errors.BaseError) {
	if fd.Body == nil {
		return models.Body{}, errors.NewAuthoringError(p.loc(base+fragmentOffset(fd.Name.Pos())), errors.ErrMissingBody, fd.Name.Name).
			WithSuggestion("implementations must supply a body")
	}
	start, end := fragmentOffset(fd.Body.Lbrace), fragmentOffset(fd.Body.Rbrace)+1
	return models.Body{Text: text[start:end], Loc: p.loc(base + start)}, nil
}

// parseItems parses the module body between the braces, tokens [from, limit)
func parseItems[B any](p *fileParser, ctx fnContext[B], from, limit int) ([]models.Item[B], *errors.BaseError) {
	var items []models.Item[B]
	c := newCursor(p.toks).bounded(from, limit)

	for {
		c = c.skipSemicolons()
		if c.done() {
			break
		}

		start := c.pos
		first := c.skipComments()
		if first.done() {
			// comments after the last item
			items = append(items, models.Item[B]{Regular: p.regularSpan(start, limit-1, models.RegularComment)})
			break
		}

		end := p.itemEnd(first, limit)
		if isApiFn(c) {
			fn, err := parseApiFn(p, ctx, start, first.pos, end)
			if err != nil {
				return nil, err
			}
			items = append(items, models.Item[B]{Fn: fn})
		} else {
			item, err := p.parseRegular(start, end)
			if err != nil {
				return nil, err
			}
			items = append(items, models.Item[B]{Regular: item})
		}
		c = c.bounded(end+1, limit)
	}

	return items, nil
}

// itemEnd returns the index of the last token of the item starting at c:
// the token before a depth-zero semicolon or the token before limit. A line
// comment on the same line as that token is part of the item.
func (p *fileParser) itemEnd(c cursor, limit int) int {
	depth := 0
	i := c.pos
	for ; i < limit; i++ {
		t := p.toks[i]
		switch t.Tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.SEMICOLON:
			if depth == 0 {
				return p.trailingComment(i-1, i, limit)
			}
		}
	}
	return limit - 1
}

// trailingComment extends last over the semicolon at semi when a comment
// follows on the same line
func (p *fileParser) trailingComment(last, semi, limit int) int {
	next := semi + 1
	if next < limit && p.toks[next].Tok == token.COMMENT &&
		p.line(p.toks[next].Off) == p.line(p.toks[last].End) {
		return next
	}
	return last
}

// regularSpan builds a regular item from the source text of tokens [from, to]
func (p *fileParser) regularSpan(from, to int, kind models.RegularKind) *models.RegularItem {
	text := string(p.src[p.toks[from].Off:p.toks[to].End])
	return &models.RegularItem{Kind: kind, Text: text, Loc: p.loc(p.toks[from].Off)}
}

// parseRegular validates a passthrough item against the Go grammar
func (p *fileParser) parseRegular(from, to int) (*models.RegularItem, *errors.BaseError) {
	item := p.regularSpan(from, to, models.RegularDecl)

	f, err := p.parseFragment(item.Text, p.toks[from].Off)
	if err != nil {
		return nil, err
	}

	switch {
	case len(f.Decls) == 0:
		item.Kind = models.RegularComment
	case len(f.Decls) > 1:
		return nil, errors.NewSyntaxError(p.loc(p.toks[from].Off), "expected one declaration per item, found %d", len(f.Decls))
	default:
		if gen, ok := f.Decls[0].(*goast.GenDecl); ok && gen.Tok == token.IMPORT {
			item.Kind = models.RegularImport
		}
	}
	return item, nil
}

// parseApiFn parses `extern func ...` spanning tokens [start, end]; externIdx
// is the index of the extern keyword.
func parseApiFn[B any](p *fileParser, ctx fnContext[B], start, externIdx, end int) (*models.ApiFn[B], *errors.BaseError) {
	fn := &models.ApiFn[B]{}
	for i := start; i < externIdx; i++ {
		fn.Attrs = append(fn.Attrs, models.Attribute{Text: p.toks[i].Lit, Loc: p.loc(p.toks[i].Off)})
	}

	funcTok := p.toks[externIdx+1]
	base := funcTok.Off
	text := string(p.src[base:p.toks[end].End])

	f, err := p.parseFragment(text, base)
	if err != nil {
		return nil, err
	}
	if len(f.Decls) != 1 {
		return nil, errors.NewSyntaxError(p.loc(base), "expected a single function after extern")
	}
	fd, ok := f.Decls[0].(*goast.FuncDecl)
	if !ok {
		return nil, errors.NewSyntaxError(p.loc(base), "expected a function after extern")
	}

	at := func(pos token.Pos) errors.SourceLocation { return p.loc(base + fragmentOffset(pos)) }

	name := fd.Name.Name
	if fd.Recv != nil {
		return nil, errors.NewAuthoringError(at(fd.Recv.Opening), errors.ErrReceiverParameter, name).
			WithSuggestion("api functions are free functions; drop the receiver")
	}
	if fd.Type.TypeParams != nil {
		return nil, errors.NewAuthoringError(at(fd.Type.TypeParams.Opening), errors.ErrTypeParameters, name).
			WithSuggestion("Go interfaces cannot have generic methods")
	}
	if !goast.IsExported(name) {
		return nil, errors.NewAuthoringError(at(fd.Name.Pos()), errors.ErrUnexportedFunction, name).
			WithSuggestion("capitalize the function name")
	}

	body, berr := ctx.body(p, fd, text, base)
	if berr != nil {
		return nil, berr
	}

	src := func(from, to token.Pos) string { return text[fragmentOffset(from):fragmentOffset(to)] }
	sig := models.Signature{
		Name:   name,
		Header: src(fd.Type.Params.Opening, fd.Type.End()),
		Loc:    at(fd.Name.Pos()),
	}
	for _, field := range fd.Type.Params.List {
		param := models.Param{}
		for _, ident := range field.Names {
			param.Names = append(param.Names, ident.Name)
		}
		typ := field.Type
		if ellipsis, ok := typ.(*goast.Ellipsis); ok {
			param.Variadic = true
			typ = ellipsis.Elt
		}
		param.Type = src(typ.Pos(), typ.End())
		sig.Params = append(sig.Params, param)
	}
	if results := fd.Type.Results; results != nil {
		sig.Results = src(results.Pos(), results.End())
	}

	// a comment on the same line follows the leading ones
	if last := p.toks[end]; last.Tok == token.COMMENT && end > externIdx {
		fn.Attrs = append(fn.Attrs, models.Attribute{Text: last.Lit, Loc: p.loc(last.Off)})
	}

	fn.Sig = sig
	fn.Body = body
	return fn, nil
}

// parseFragment runs go/parser over a single item. base is the source offset
// of text; error positions are mapped back onto the .apimod file.
func (p *fileParser) parseFragment(text string, base int) (*goast.File, *errors.BaseError) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, p.filename, validationPrefix+text, goparser.ParseComments|goparser.SkipObjectResolution)
	if err == nil {
		return f, nil
	}

	loc := p.loc(base)
	msg := err.Error()
	if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
		msg = list[0].Msg
		if list[0].Pos.Offset >= len(validationPrefix) {
			loc = p.loc(base + list[0].Pos.Offset - len(validationPrefix))
		}
	}
	return nil, errors.NewSyntaxError(loc, "%s", strings.TrimSpace(msg))
}
