package parser

import "go/token"

// isApiFn reports whether the item at c is written with the `extern func`
// prefix. Leading comments are skipped on a copy of the cursor.
func isApiFn(c cursor) bool {
	c = c.skipComments()
	return c.peekN(0).is(token.IDENT, keywordExtern) && c.peekN(1).Tok == token.FUNC
}
