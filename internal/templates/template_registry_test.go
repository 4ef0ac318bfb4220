package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportManager(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		im := NewImportManager()
		assert.Equal(t, 0, im.Len())
		assert.Equal(t, "", im.GenerateImports())
	})

	t.Run("single import", func(t *testing.T) {
		im := NewImportManager()
		im.AddPackageImport("__apimod", "github.com/toyz/apimod/pkg/apimod")
		assert.Equal(t, "import __apimod \"github.com/toyz/apimod/pkg/apimod\"\n", im.GenerateImports())
	})

	t.Run("plain imports first then aliases sorted", func(t *testing.T) {
		im := NewImportManager()
		im.AddPackageImport("b", "example.com/b")
		im.AddPackageImport("a", "example.com/a")
		im.AddImport("fmt")
		im.AddImport("")
		im.AddPackageImport("", "example.com/ignored")

		expected := "import (\n\t\"fmt\"\n\ta \"example.com/a\"\n\tb \"example.com/b\"\n)\n"
		assert.Equal(t, expected, im.GenerateImports())
		assert.Equal(t, 3, im.Len())
	})
}

func TestTemplateRegistry_Get(t *testing.T) {
	registry := NewTemplateRegistry()

	for _, name := range []string{"file-header", "declarations", "definition", "implementation", "invalid-implementation"} {
		_, ok := registry.Get(name)
		assert.True(t, ok, name)
	}

	_, ok := registry.Get("route-wrapper")
	assert.False(t, ok)
	assert.Panics(t, func() { registry.MustGet("route-wrapper") })
}

func TestTemplateRegistry_ExecuteUnknown(t *testing.T) {
	_, err := DefaultTemplateRegistry.Execute("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template not found: nope")
}

func TestTemplateRegistry_FileHeader(t *testing.T) {
	out, err := DefaultTemplateRegistry.Execute("file-header", FileHeader{
		BuildConstraints: []string{"//go:build linux"},
		Doc:              "// Memory API.",
		Package:          "memory",
		UserImports:      []string{`import "fmt"`},
		Imports:          "import __apimod \"github.com/toyz/apimod/pkg/apimod\"\n",
	})
	require.NoError(t, err)

	expected := GeneratedHeader + "\n\n" +
		"//go:build linux\n\n" +
		"// Memory API.\n" +
		"package memory\n\n" +
		"import \"fmt\"\n\n" +
		"import __apimod \"github.com/toyz/apimod/pkg/apimod\"\n"
	assert.Equal(t, expected, out)
}

func TestTemplateRegistry_InvalidImplementation(t *testing.T) {
	out, err := DefaultTemplateRegistry.Execute("invalid-implementation", InvalidImplementationData{
		Header: FileHeader{Package: "memory_impl"},
		Marker: "__apimod_invalid_implementee_path__",
	})
	require.NoError(t, err)
	assert.Equal(t, GeneratedHeader+"\n\npackage memory_impl\n\nvar _ = __apimod_invalid_implementee_path__\n", out)
}
