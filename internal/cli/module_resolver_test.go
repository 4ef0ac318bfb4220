package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
	"github.com/toyz/apimod/internal/utils"
)

func newTestResolver() *ModuleResolver {
	return NewModuleResolver(utils.NewFileReader(), zap.NewNop().Sugar())
}

func TestModuleResolver_Resolve(t *testing.T) {
	root := newTestModule(t, requiringGoMod, map[string]string{
		"hv.apimod":           "",
		"arch/x86/x86.apimod": "",
	})
	resolver := newTestResolver()

	t.Run("module root", func(t *testing.T) {
		ctx, err := resolver.Resolve(filepath.Join(root, "hv.apimod"))
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(root, "hv.apimod"), ctx.SourceFile)
		assert.Equal(t, root, ctx.SourceDir)
		assert.Equal(t, "example.com/hv", ctx.SourceImportPath)
		assert.Equal(t, root, ctx.ModuleRoot)
		assert.Equal(t, "example.com/hv", ctx.ModulePath)
		assert.Equal(t, models.SupportLibrary{Kind: models.SupportNamed, ImportPath: SupportPackagePath}, ctx.Support)
	})

	t.Run("nested directory", func(t *testing.T) {
		ctx, err := resolver.Resolve(filepath.Join(root, "arch", "x86", "x86.apimod"))
		require.NoError(t, err)

		assert.Equal(t, "example.com/hv/arch/x86", ctx.SourceImportPath)
		assert.Equal(t, root, ctx.ModuleRoot)
	})

	t.Run("no go.mod", func(t *testing.T) {
		_, err := resolver.Resolve(filepath.Join(t.TempDir(), "hv.apimod"))
		assert.ErrorContains(t, err, "go.mod file not found")
	})
}

func TestModuleResolver_ResolveSupport(t *testing.T) {
	tests := []struct {
		name     string
		goMod    string
		runtime  string
		expected models.SupportLibrary
	}{
		{
			name:     "required",
			goMod:    requiringGoMod,
			expected: models.SupportLibrary{Kind: models.SupportNamed, ImportPath: SupportPackagePath},
		},
		{
			name:     "itself",
			goMod:    "module github.com/toyz/apimod\n\ngo 1.25\n",
			expected: models.SupportLibrary{Kind: models.SupportItself, ImportPath: SupportPackagePath},
		},
		{
			name:     "not found",
			goMod:    bareGoMod,
			expected: models.SupportLibrary{Kind: models.SupportNotFound},
		},
		{
			name:     "runtime override",
			goMod:    bareGoMod,
			runtime:  "example.com/fork/apimod",
			expected: models.SupportLibrary{Kind: models.SupportNamed, ImportPath: "example.com/fork/apimod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newTestModule(t, tt.goMod, nil)
			resolver := newTestResolver()
			resolver.SetRuntime(tt.runtime)

			ctx, err := resolver.Resolve(filepath.Join(root, "hv.apimod"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ctx.Support)
		})
	}
}

func TestModuleResolver_BuildPackagePath(t *testing.T) {
	resolver := newTestResolver()
	root := filepath.FromSlash("/work/hv")

	path, err := resolver.BuildPackagePath("example.com/hv", root, root)
	require.NoError(t, err)
	assert.Equal(t, "example.com/hv", path)

	path, err = resolver.BuildPackagePath("example.com/hv", root, filepath.Join(root, "arch", "x86"))
	require.NoError(t, err)
	assert.Equal(t, "example.com/hv/arch/x86", path)

	_, err = resolver.BuildPackagePath("example.com/hv", root, filepath.FromSlash("/work/other"))
	assert.ErrorContains(t, err, "outside module root")
}

func TestSupportNotFoundWarning(t *testing.T) {
	warning := SupportNotFoundWarning(models.GenerationContext{ModuleRoot: "/work", ModulePath: "example.com/hv"})

	assert.True(t, warning.IsWarning())
	assert.Equal(t, errors.ResolutionErrorCode, warning.ErrorCode())
	assert.True(t, errors.Is(warning, errors.ErrSupportLibraryNotFound))
	assert.Equal(t, filepath.Join("/work", "go.mod"), warning.Location().File)
	assert.Contains(t, warning.Suggestions()[0], "go get github.com/toyz/apimod")
}
