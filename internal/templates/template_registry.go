package templates

import (
	"bytes"
	"sync"
	"text/template"

	"github.com/toyz/apimod/internal/errors"
)

// GeneratedHeader is the first line of every file written by apimod
const GeneratedHeader = "// Code generated by apimod. DO NOT EDIT."

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string

	once   sync.Once
	parsed *template.Template
	err    error
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerDefinitionTemplates()
	registry.registerImplementationTemplates()

	return registry
}

// Get retrieves a template by name
func (tr *TemplateRegistry) Get(name string) (string, bool) {
	text, exists := tr.templates[name]
	return text, exists
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	text, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return text
}

// Execute renders the named template. Templates may include each other by name.
func (tr *TemplateRegistry) Execute(name string, data any) (string, error) {
	if _, ok := tr.templates[name]; !ok {
		return "", errors.Newf(errors.GenerationErrorCode, "template not found: %s", name)
	}

	tr.once.Do(tr.parse)
	if tr.err != nil {
		return "", tr.err
	}

	var buf bytes.Buffer
	if err := tr.parsed.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.WrapGenerateError("template "+name, err)
	}
	return buf.String(), nil
}

func (tr *TemplateRegistry) parse() {
	root := template.New("apimod")
	for name, text := range tr.templates {
		if _, err := root.New(name).Parse(text); err != nil {
			tr.err = errors.WrapParseError("template "+name, err)
			return
		}
	}
	tr.parsed = root
}

// registerFileTemplates registers the parts shared by every generated file
func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file-header"] = GeneratedHeader + `

{{range .BuildConstraints}}{{.}}
{{end}}{{if .BuildConstraints}}
{{end}}{{with .Doc}}{{.}}
{{end}}package {{.Package}}
{{range .UserImports}}
{{.}}
{{end}}{{with .Imports}}
{{.}}{{end}}`

	tr.templates["declarations"] = `{{range .Declarations}}
{{.}}
{{end}}`
}

// registerDefinitionTemplates registers the templates of definition packages
func (tr *TemplateRegistry) registerDefinitionTemplates() {
	tr.templates["definition"] = `{{template "file-header" .Header}}{{template "declarations" .}}{{range .Functions}}
{{with .Doc}}{{.}}
{{end}}func {{.Name}}{{.Params}} {
	{{if .Return}}return {{end}}{{$.Runtime}}CallInterface[{{$.Interface}}]().{{.Name}}({{.Args}})
}
{{end}}{{if .Functions}}
// {{.Interface}} lists the API functions declared by this package.
type {{.Interface}} interface {
{{range .Functions}}{{with .Doc}}{{.}}
{{end}}	{{.Name}}{{.Method}}
{{end}}}

func init() {
	{{.Runtime}}DefineInterface[{{.Interface}}]()
}
{{end}}`
}

// registerImplementationTemplates registers the templates of implementation packages
func (tr *TemplateRegistry) registerImplementationTemplates() {
	tr.templates["implementation"] = `{{template "file-header" .Header}}{{template "declarations" .}}
// __Impl implements {{.Alias}}.{{.Interface}}.
type __Impl struct{}
{{range .Methods}}
{{with .Doc}}{{.}}
{{end}}func (__Impl) {{.Name}}{{.Header}} {{.Body}}
{{end}}
var _ {{.Alias}}.{{.Interface}} = __Impl{}

func init() {
	{{.Runtime}}ImplInterface[{{.Alias}}.{{.Interface}}](__Impl{})
}
`

	tr.templates["invalid-implementation"] = `{{template "file-header" .Header}}
var _ = {{.Marker}}
`
}

// Global template registry instance
var DefaultTemplateRegistry = NewTemplateRegistry()
