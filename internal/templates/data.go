package templates

// FileHeader is everything above the first declaration of a generated file
type FileHeader struct {
	BuildConstraints []string
	Doc              string // package doc comment, comment markers included
	Package          string
	UserImports      []string // import declarations written by the module author
	Imports          string   // import declaration added by the generator
}

// DefinitionData feeds the "definition" template
type DefinitionData struct {
	Header       FileHeader
	Declarations []string
	Runtime      string // qualifier of the runtime package, dot included
	Interface    string
	Functions    []ForwardingFunc
}

// ForwardingFunc is one declared API function
type ForwardingFunc struct {
	Doc    string
	Name   string
	Params string // signature of the forwarding function
	Method string // signature of the interface method, verbatim
	Args   string
	Return bool
}

// ImplementationData feeds the "implementation" template
type ImplementationData struct {
	Header       FileHeader
	Declarations []string
	Runtime      string
	Alias        string
	Interface    string
	Methods      []ImplMethod
}

// ImplMethod is one implemented API function
type ImplMethod struct {
	Doc    string
	Name   string
	Header string
	Body   string
}

// InvalidImplementationData feeds the "invalid-implementation" template
type InvalidImplementationData struct {
	Header FileHeader
	Marker string
}
