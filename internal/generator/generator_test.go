package generator

import (
	"go/ast"
	goparser "go/parser"
	"go/printer"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/parser"
	"github.com/toyz/apimod/internal/templates"
)

const runtimePath = "github.com/toyz/apimod/pkg/apimod"

func testContext() models.GenerationContext {
	return models.GenerationContext{
		SourceFile:       "/work/hv/hv.apimod",
		SourceDir:        "/work/hv",
		SourceImportPath: "example.com/hv",
		ModuleRoot:       "/work",
		ModulePath:       "example.com",
		Support:          models.SupportLibrary{Kind: models.SupportNamed, ImportPath: runtimePath},
	}
}

func parseSource(t *testing.T, src string) *models.SourceFile {
	t.Helper()
	file, err := parser.ParseFile("hv.apimod", []byte(src))
	require.NoError(t, err)
	require.True(t, file.Diagnostics.IsEmpty(), file.Diagnostics.Error())
	return file
}

// generated is a parsed apimod_gen.go together with its file set
type generated struct {
	*ast.File
	fset *token.FileSet
}

func parseGenerated(t *testing.T, content []byte) *generated {
	t.Helper()
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, "apimod_gen.go", content, goparser.ParseComments)
	require.NoError(t, err, string(content))
	return &generated{File: f, fset: fset}
}

func (g *generated) text(t *testing.T, node any) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, printer.Fprint(&b, g.fset, node))
	return b.String()
}

func importsOf(f *generated) map[string]string {
	result := make(map[string]string)
	for _, spec := range f.Imports {
		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}
		result[strings.Trim(spec.Path.Value, `"`)] = name
	}
	return result
}

func funcDecl(f *generated, name string) *ast.FuncDecl {
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name.Name == name {
			return fd
		}
	}
	return nil
}

func typeSpec(f *generated, name string) *ast.TypeSpec {
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			if ts := spec.(*ast.TypeSpec); ts.Name.Name == name {
				return ts
			}
		}
	}
	return nil
}

const memorySource = `//apimod:define
// Memory-related API.
pub mod memory {
	import "fmt"

	// PhysAddr is a physical address.
	type PhysAddr uintptr

	// AllocFrame allocates one frame.
	extern func AllocFrame() (PhysAddr, bool)
	// DeallocFrame returns a frame.
	extern func DeallocFrame(addr PhysAddr)
	extern func Printf(format string, args ...any) (n int, err error)
	extern func Pair(int, string) error

	func (a PhysAddr) String() string { return fmt.Sprintf("%#x", uintptr(a)) }
}

//apimod:impl ./memory
mod memory_impl {
	import "example.com/hv/memory"

	var next memory.PhysAddr

	// AllocFrame hands out frames in order.
	extern func AllocFrame() (memory.PhysAddr, bool) {
		addr := next
		next += 0x1000
		return addr, true
	}

	extern func DeallocFrame(addr memory.PhysAddr) {}
}
`

func TestGenerateDefinition(t *testing.T) {
	source := parseSource(t, memorySource)
	gen := NewGenerator()

	file, err := gen.GenerateDefinition(testContext(), source.Definitions[0])
	require.NoError(t, err)

	assert.Equal(t, models.KindDefinition, file.Kind)
	assert.Equal(t, "memory", file.Module)
	assert.Equal(t, filepath.Join("/work/hv", "memory"), file.PackageDir)
	assert.Equal(t, filepath.Join("/work/hv", "memory", GeneratedFileName), file.FilePath)
	assert.Equal(t, "example.com/hv/memory", file.ImportPath)
	assert.Equal(t, "MemoryApiTrait", file.Interface)
	assert.Equal(t, []string{"AllocFrame", "DeallocFrame", "Printf", "Pair"}, file.Functions)
	assert.True(t, file.Diagnostics.IsEmpty())

	content := string(file.Content)
	assert.True(t, strings.HasPrefix(content, templates.GeneratedHeader+"\n"))

	f := parseGenerated(t, file.Content)
	assert.Equal(t, "memory", f.Name.Name)
	assert.Equal(t, map[string]string{"fmt": "", runtimePath: RuntimeAlias}, importsOf(f))

	require.NotNil(t, f.Doc)
	doc := f.Doc.Text()
	assert.Contains(t, doc, "Memory-related API.")
	assert.Contains(t, doc, "This package declares 4 API functions:")
	assert.Contains(t, doc, "[AllocFrame]")
	assert.Contains(t, doc, "[Pair]")

	// regular items pass through
	assert.NotNil(t, typeSpec(f, "PhysAddr"))
	assert.NotNil(t, funcDecl(f, "String"))

	// one interface method per declaration, in order, with the original signatures
	trait := typeSpec(f, "MemoryApiTrait")
	require.NotNil(t, trait)
	methods := trait.Type.(*ast.InterfaceType).Methods.List
	require.Len(t, methods, 4)
	assert.Equal(t, "AllocFrame", methods[0].Names[0].Name)
	assert.Equal(t, "DeallocFrame", methods[1].Names[0].Name)
	assert.Equal(t, "Printf", methods[2].Names[0].Name)
	assert.Equal(t, "Pair", methods[3].Names[0].Name)
	assert.Equal(t, "AllocFrame allocates one frame.\n", methods[0].Doc.Text())
	assert.Contains(t, content, "\tAllocFrame() (PhysAddr, bool)\n")
	assert.Contains(t, content, "\tDeallocFrame(addr PhysAddr)\n")
	assert.Contains(t, content, "\tPrintf(format string, args ...any) (n int, err error)\n")
	assert.Contains(t, content, "\tPair(int, string) error\n")

	// forwarding functions
	alloc := funcDecl(f, "AllocFrame")
	require.NotNil(t, alloc)
	assert.Equal(t, "AllocFrame allocates one frame.\n", alloc.Doc.Text())
	assert.Equal(t, "return __apimod.CallInterface[MemoryApiTrait]().AllocFrame()", f.text(t, alloc.Body.List[0]))

	dealloc := funcDecl(f, "DeallocFrame")
	require.NotNil(t, dealloc)
	assert.Equal(t, "__apimod.CallInterface[MemoryApiTrait]().DeallocFrame(addr)", f.text(t, dealloc.Body.List[0]))

	printf := funcDecl(f, "Printf")
	require.NotNil(t, printf)
	assert.Equal(t, "return __apimod.CallInterface[MemoryApiTrait]().Printf(format, args...)", f.text(t, printf.Body.List[0]))

	pair := funcDecl(f, "Pair")
	require.NotNil(t, pair)
	assert.Contains(t, content, "func Pair(__apimod_arg0 int, __apimod_arg1 string) error {")
	assert.Equal(t, "return __apimod.CallInterface[MemoryApiTrait]().Pair(__apimod_arg0, __apimod_arg1)", f.text(t, pair.Body.List[0]))

	initFn := funcDecl(f, "init")
	require.NotNil(t, initFn)
	assert.Equal(t, "__apimod.DefineInterface[MemoryApiTrait]()", f.text(t, initFn.Body.List[0]))
}

func TestGenerateDefinition_NoFunctions(t *testing.T) {
	source := parseSource(t, `//apimod:define
pub mod consts {
	const PageSize = 4096
}
`)

	file, err := NewGenerator().GenerateDefinition(testContext(), source.Definitions[0])
	require.NoError(t, err)
	assert.Empty(t, file.Functions)

	f := parseGenerated(t, file.Content)
	assert.Equal(t, "This package declares no API functions.\n", f.Doc.Text())
	assert.Empty(t, f.Imports)
	assert.Nil(t, typeSpec(f, "ConstsApiTrait"))
	assert.Nil(t, funcDecl(f, "init"))
	assert.Contains(t, string(file.Content), "const PageSize = 4096")
}

func TestGenerateDefinition_SupportLibrary(t *testing.T) {
	source := parseSource(t, `//apimod:define
pub mod clock {
	extern func Now() int64
}
`)

	t.Run("not found", func(t *testing.T) {
		ctx := testContext()
		ctx.Support = models.SupportLibrary{Kind: models.SupportNotFound}

		file, err := NewGenerator().GenerateDefinition(ctx, source.Definitions[0])
		require.NoError(t, err)

		f := parseGenerated(t, file.Content)
		assert.Empty(t, f.Imports)
		assert.Equal(t, "return __apimod_support_library_not_found__.CallInterface[ClockApiTrait]().Now()",
			f.text(t, funcDecl(f, "Now").Body.List[0]))
	})

	t.Run("itself", func(t *testing.T) {
		ctx := testContext()
		ctx.Support = models.SupportLibrary{Kind: models.SupportItself, ImportPath: "example.com/hv/clock"}

		file, err := NewGenerator().GenerateDefinition(ctx, source.Definitions[0])
		require.NoError(t, err)

		f := parseGenerated(t, file.Content)
		assert.Empty(t, f.Imports)
		assert.Equal(t, "DefineInterface[ClockApiTrait]()", f.text(t, funcDecl(f, "init").Body.List[0]))
	})
}

func TestGenerateDefinition_BuildConstraints(t *testing.T) {
	sources := map[string]string{
		"adjacent": `//apimod:define
//go:build linux
// Linux only.
pub mod sys {
	extern func Pid() int
}
`,
		"blank line after constraint": `//go:build linux

//apimod:define
// Linux only.
pub mod sys {
	extern func Pid() int
}
`,
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			source := parseSource(t, src)

			file, err := NewGenerator().GenerateDefinition(testContext(), source.Definitions[0])
			require.NoError(t, err)

			content := string(file.Content)
			lines := strings.Split(content, "\n")
			require.GreaterOrEqual(t, len(lines), 3)
			assert.Equal(t, templates.GeneratedHeader, lines[0])
			assert.Equal(t, "//go:build linux", lines[2])

			f := parseGenerated(t, file.Content)
			assert.True(t, strings.HasPrefix(f.Doc.Text(), "Linux only."))
			assert.NotContains(t, f.Doc.Text(), "go:build")
		})
	}
}

func TestGenerateDefinition_TrailingComment(t *testing.T) {
	source := parseSource(t, `//apimod:define
pub mod sys {
	// Pid returns the current process.
	extern func Pid() int // never zero
}
`)

	file, err := NewGenerator().GenerateDefinition(testContext(), source.Definitions[0])
	require.NoError(t, err)
	f := parseGenerated(t, file.Content)

	methods := typeSpec(f, "SysApiTrait").Type.(*ast.InterfaceType).Methods.List
	require.Len(t, methods, 1)
	assert.Equal(t, "Pid returns the current process.\nnever zero\n", methods[0].Doc.Text())

	pid := funcDecl(f, "Pid")
	require.NotNil(t, pid)
	assert.Equal(t, "Pid returns the current process.\nnever zero\n", pid.Doc.Text())
}

func TestGenerateImplementation(t *testing.T) {
	source := parseSource(t, memorySource)

	file, err := NewGenerator().GenerateImplementation(testContext(), source.Implementations[0])
	require.NoError(t, err)
	assert.True(t, file.Diagnostics.IsEmpty())

	assert.Equal(t, models.KindImplementation, file.Kind)
	assert.Equal(t, filepath.Join("/work/hv", "internal", "memory_impl"), file.PackageDir)
	assert.Equal(t, "example.com/hv/internal/memory_impl", file.ImportPath)
	assert.Equal(t, "example.com/hv/memory", file.Target)
	assert.Equal(t, "MemoryApiTrait", file.Interface)
	assert.Equal(t, []string{"AllocFrame", "DeallocFrame"}, file.Functions)

	f := parseGenerated(t, file.Content)
	assert.Equal(t, "memory_impl", f.Name.Name)

	const alias = "__apimod_implementee_rel_memory"
	var aliased []string
	for _, spec := range f.Imports {
		if spec.Name != nil {
			aliased = append(aliased, spec.Name.Name+" "+spec.Path.Value)
		}
	}
	assert.ElementsMatch(t, []string{
		alias + ` "example.com/hv/memory"`,
		RuntimeAlias + ` "` + runtimePath + `"`,
	}, aliased)

	require.NotNil(t, typeSpec(f, ImplTypeName))

	var methods []string
	for _, decl := range f.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Recv != nil {
			methods = append(methods, fd.Name.Name)
			assert.Equal(t, ImplTypeName, f.text(t, fd.Recv.List[0].Type))
		}
	}
	assert.Equal(t, []string{"AllocFrame", "DeallocFrame"}, methods)

	alloc := funcDecl(f, "AllocFrame")
	assert.Equal(t, "AllocFrame hands out frames in order.\n", alloc.Doc.Text())
	require.Len(t, alloc.Body.List, 3)

	content := string(file.Content)
	assert.Contains(t, content, "var next memory.PhysAddr")
	assert.Contains(t, content, "var _ "+alias+".MemoryApiTrait = __Impl{}")
	assert.Equal(t, "__apimod.ImplInterface["+alias+".MemoryApiTrait](__Impl{})",
		f.text(t, funcDecl(f, "init").Body.List[0]))
}

func TestGenerateImplementation_Targets(t *testing.T) {
	tests := []struct {
		name      string
		directive string
		target    string
		alias     string
	}{
		{
			name:      "parent relative",
			directive: "//apimod:impl ../api/memory",
			target:    "example.com/api/memory",
			alias:     "__apimod_implementee_rel__2e_2e_api_memory",
		},
		{
			name:      "absolute",
			directive: "//apimod:impl example.com/hv/memory",
			target:    "example.com/hv/memory",
			alias:     "__apimod_implementee_abs_example_2ecom_hv_memory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := parseSource(t, tt.directive+`
pub mod memory_impl {
	extern func Reset() {}
}
`)
			file, err := NewGenerator().GenerateImplementation(testContext(), source.Implementations[0])
			require.NoError(t, err)
			assert.Equal(t, tt.target, file.Target)

			f := parseGenerated(t, file.Content)
			assert.Equal(t, tt.alias, importsOf(f)[tt.target])
		})
	}
}

func TestGenerateImplementation_InvalidTarget(t *testing.T) {
	for _, directive := range []string{"//apimod:impl .", "//apimod:impl ..", "//apimod:impl example.com/go-memory"} {
		t.Run(directive, func(t *testing.T) {
			source := parseSource(t, directive+`
mod memory_impl {
	extern func Reset() {}
}
`)
			file, err := NewGenerator().GenerateImplementation(testContext(), source.Implementations[0])
			require.NoError(t, err)

			expected := templates.GeneratedHeader + "\n\npackage memory_impl\n\nvar _ = " + InvalidPathMarker + "\n"
			assert.Equal(t, expected, string(file.Content))
			assert.Empty(t, file.Functions)

			require.Equal(t, 1, file.Diagnostics.Count())
			diag := file.Diagnostics.Errors[0]
			assert.True(t, errors.Is(diag, errors.ErrInvalidImplementeePath))
			assert.Equal(t, 1, diag.Location().Line)
		})
	}
}

func TestGenerateFile(t *testing.T) {
	source := parseSource(t, memorySource)

	files, err := NewGenerator().GenerateFile(testContext(), source)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, models.KindDefinition, files[0].Kind)
	assert.Equal(t, models.KindImplementation, files[1].Kind)
}

func TestGenerateFile_BrokenBody(t *testing.T) {
	source := &models.SourceFile{
		Implementations: []*models.ApiModuleImplementation{{
			ApiModule: models.ApiModule[models.Body]{
				Name: "broken",
				Items: []models.Item[models.Body]{{
					Fn: &models.ApiFnImpl{
						Sig:  models.Signature{Name: "Reset", Header: "()"},
						Body: models.Body{Text: "{ return +"},
					},
				}},
			},
			Target: models.ImplPath{Raw: "./memory", Segments: []string{"memory"}},
		}},
	}

	files, err := NewGenerator().GenerateFile(testContext(), source)
	require.Error(t, err)
	assert.Empty(t, files)

	var multi *errors.MultipleErrors
	require.True(t, errors.As(err, &multi))
	assert.True(t, multi.HasCode(errors.GenerationErrorCode))
}

func TestPackageDir(t *testing.T) {
	ctx := testContext()
	tests := []struct {
		vis        models.Visibility
		dir        string
		importPath string
	}{
		{models.Visibility{Kind: models.Public}, filepath.Join("/work/hv", "memory"), "example.com/hv/memory"},
		{models.Visibility{Kind: models.Private}, filepath.Join("/work/hv", "internal", "memory"), "example.com/hv/internal/memory"},
		{models.Visibility{Kind: models.Scoped, Scope: "crate"}, filepath.Join("/work", "internal", "memory"), "example.com/internal/memory"},
	}

	for _, tt := range tests {
		t.Run(tt.vis.String(), func(t *testing.T) {
			dir, importPath := PackageDir(ctx, "memory", tt.vis)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.importPath, importPath)
		})
	}
}
