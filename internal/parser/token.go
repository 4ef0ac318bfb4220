package parser

import (
	"go/scanner"
	"go/token"

	"github.com/toyz/apimod/internal/errors"
)

// tok is one scanned token with its byte extent in the source
type tok struct {
	Tok token.Token
	Lit string
	Off int
	End int
}

// auto reports whether the token is a semicolon inserted at a newline or EOF
func (t tok) auto() bool {
	return t.Tok == token.SEMICOLON && t.Lit != ";"
}

func (t tok) is(kind token.Token, lit string) bool {
	return t.Tok == kind && (lit == "" || t.Lit == lit)
}

// tokenize scans src with Go's scanner, keeping comments
func tokenize(file *token.File, src []byte) ([]tok, error) {
	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, src, func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, scanner.ScanComments)

	var toks []tok
	for {
		pos, kind, lit := s.Scan()
		if kind == token.EOF {
			break
		}
		off := file.Offset(pos)
		t := tok{Tok: kind, Lit: lit, Off: off}
		switch {
		case kind == token.SEMICOLON && lit != ";":
			t.End = off
		case lit != "":
			t.End = off + len(lit)
		default:
			t.End = off + len(kind.String())
			t.Lit = kind.String()
		}
		toks = append(toks, t)
	}

	if errs.Len() > 0 {
		first := errs[0]
		return nil, errors.NewSyntaxError(errors.SourceLocation{
			File:   first.Pos.Filename,
			Line:   first.Pos.Line,
			Column: first.Pos.Column,
		}, "%s", first.Msg)
	}
	return toks, nil
}

// cursor is a read-only position in a token slice. It is passed by value so
// looking ahead never moves the caller.
type cursor struct {
	toks  []tok
	pos   int
	limit int
}

func newCursor(toks []tok) cursor {
	return cursor{toks: toks, limit: len(toks)}
}

// bounded returns a cursor over [from, limit)
func (c cursor) bounded(from, limit int) cursor {
	return cursor{toks: c.toks, pos: from, limit: limit}
}

func (c cursor) done() bool {
	return c.pos >= c.limit
}

// peekN returns the token n positions ahead, or an EOF token past the limit
func (c cursor) peekN(n int) tok {
	if c.pos+n >= c.limit {
		end := 0
		if c.limit > 0 && c.limit <= len(c.toks) {
			end = c.toks[c.limit-1].End
		}
		return tok{Tok: token.EOF, Off: end, End: end}
	}
	return c.toks[c.pos+n]
}

func (c cursor) peek() tok {
	return c.peekN(0)
}

func (c cursor) advance(n int) cursor {
	c.pos += n
	return c
}

func (c cursor) skipComments() cursor {
	for !c.done() && c.peek().Tok == token.COMMENT {
		c.pos++
	}
	return c
}

// skipSemicolons steps over empty statements, explicit or inserted
func (c cursor) skipSemicolons() cursor {
	for !c.done() && c.peek().Tok == token.SEMICOLON {
		c.pos++
	}
	return c
}
