package generator

import (
	"fmt"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/templates"
)

// GenerateImplementation generates the package of an implementation module:
// the regular items, a private type carrying one method per implemented api
// function and the registration of that type as the target's implementation.
//
// A target path that cannot name a package produces a file holding only an
// undefined identifier, so the build fails where the module is used, and an
// error diagnostic on the returned file.
func (g *Generator) GenerateImplementation(ctx models.GenerationContext, m *models.ApiModuleImplementation) (*models.GeneratedFile, error) {
	file := newFile(models.KindImplementation, ctx, m.Name, m.Vis, m.Loc)

	if !ValidTarget(m.Target) {
		file.Diagnostics.Add(invalidTarget(m.Target))
		data := templates.InvalidImplementationData{
			Header: templates.FileHeader{Package: m.Name},
			Marker: InvalidPathMarker,
		}
		if err := g.render(file, "invalid-implementation", data); err != nil {
			return nil, err
		}
		return file, nil
	}

	file.Target = ResolveTarget(ctx, m.Target)
	file.Interface = InterfaceName(m.Target.Last())

	fns := m.Functions()
	im := templates.NewImportManager()
	alias := ReuseAlias(m.Target)
	im.AddPackageImport(alias, file.Target)

	data := templates.ImplementationData{
		Declarations: declarations(m.Declarations()),
		Runtime:      runtimeQualifier(ctx.Support, file.ImportPath, im),
		Alias:        alias,
		Interface:    file.Interface,
	}
	for _, fn := range fns {
		file.Functions = append(file.Functions, fn.Sig.Name)
		data.Methods = append(data.Methods, templates.ImplMethod{
			Doc:    fn.Attrs.Text(),
			Name:   fn.Sig.Name,
			Header: fn.Sig.Header,
			Body:   fn.Body.Text,
		})
	}
	doc := m.Attrs.Docs().Text()
	data.Header = header(m.Attrs, m.Name, doc, m.Imports(), im)

	if err := g.render(file, "implementation", data); err != nil {
		return nil, err
	}
	return file, nil
}

func invalidTarget(p models.ImplPath) *errors.BaseError {
	detail := fmt.Sprintf("%q has no package name", p.String())
	if !p.IsEmpty() {
		detail = fmt.Sprintf("%q ends in %q, which is not a package name", p.String(), p.Last())
	}
	return errors.NewAuthoringError(p.Loc, errors.ErrInvalidImplementeePath, detail).
		WithSuggestion("Name the definition package, e.g. //apimod:impl ./memory")
}
