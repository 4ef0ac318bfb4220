package utils

import "golang.org/x/tools/imports"

// formatOptions keeps imports untouched apart from sorting. Generated files
// must import exactly what the module author wrote plus the runtime.
var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

// FormatGoCode formats Go source code the way gofmt does and sorts import blocks
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	return imports.Process(filename, source, formatOptions)
}
