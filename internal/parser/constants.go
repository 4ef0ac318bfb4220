package parser

const (
	// FileExtension marks interface module sources
	FileExtension = ".apimod"

	// keywords of the module grammar; none of them is a Go keyword
	keywordMod    = "mod"
	keywordPub    = "pub"
	keywordExtern = "extern"

	// pseudo package clause used to validate items with go/parser
	validationPrefix = "package p\n"
)
