package generator

import (
	"fmt"
	"strings"

	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/templates"
)

// GenerateDefinition generates the package of a definition module: the
// regular items, one forwarding function per declared api function, the
// interface type collecting them and its registration with the runtime.
func (g *Generator) GenerateDefinition(ctx models.GenerationContext, m *models.ApiModuleDefinition) (*models.GeneratedFile, error) {
	file := newFile(models.KindDefinition, ctx, m.Name, m.Vis, m.Loc)
	file.Interface = InterfaceName(m.Name)

	fns := m.Functions()
	for _, fn := range fns {
		file.Functions = append(file.Functions, fn.Sig.Name)
	}

	im := templates.NewImportManager()
	data := templates.DefinitionData{
		Declarations: declarations(m.Declarations()),
		Interface:    file.Interface,
	}
	if len(fns) > 0 {
		data.Runtime = runtimeQualifier(ctx.Support, file.ImportPath, im)
	}
	for _, fn := range fns {
		data.Functions = append(data.Functions, forwardingFunc(fn))
	}
	data.Header = header(m.Attrs, m.Name, definitionDoc(m.Attrs, file.Functions), m.Imports(), im)

	if err := g.render(file, "definition", data); err != nil {
		return nil, err
	}
	return file, nil
}

// definitionDoc builds the package doc comment: the module's own
// documentation followed by the list of declared functions
func definitionDoc(attrs models.Attributes, fns []string) string {
	var lines []string
	if docs := attrs.Docs(); len(docs) > 0 {
		lines = append(lines, docs.Text(), "//")
	}

	switch len(fns) {
	case 0:
		lines = append(lines, "// This package declares no API functions.")
	case 1:
		lines = append(lines, "// This package declares 1 API function:", "//")
	default:
		lines = append(lines, fmt.Sprintf("// This package declares %d API functions:", len(fns)), "//")
	}
	for _, fn := range fns {
		lines = append(lines, "//   - ["+fn+"]")
	}
	return strings.Join(lines, "\n")
}

func forwardingFunc(fn *models.ApiFnDecl) templates.ForwardingFunc {
	params, args := forwardingParams(fn.Sig)
	return templates.ForwardingFunc{
		Doc:    fn.Attrs.Text(),
		Name:   fn.Sig.Name,
		Params: params,
		Method: fn.Sig.Header,
		Args:   args,
		Return: fn.Sig.HasResults(),
	}
}

// forwardingParams returns the signature of a forwarding function and the
// argument list it passes on. The original header is reused when every
// parameter has a usable name; otherwise the parameter list is rebuilt with
// synthesized names for the unnamed or blank ones.
func forwardingParams(sig models.Signature) (params, args string) {
	var (
		groups  []string
		argList []string
		rebuild bool
		n       int
	)

	for _, p := range sig.Params {
		names := p.Names
		if len(names) == 0 {
			names = []string{"_"}
		}

		group := make([]string, 0, len(names))
		for _, name := range names {
			if name == "_" {
				name = argName(n)
				rebuild = true
			}
			n++
			group = append(group, name)
			argList = append(argList, name)
		}

		typ := p.Type
		if p.Variadic {
			typ = "..." + typ
			argList[len(argList)-1] += "..."
		}
		groups = append(groups, strings.Join(group, ", ")+" "+typ)
	}

	args = strings.Join(argList, ", ")
	if !rebuild {
		return sig.Header, args
	}

	params = "(" + strings.Join(groups, ", ") + ")"
	if sig.HasResults() {
		params += " " + sig.Results
	}
	return params, args
}
