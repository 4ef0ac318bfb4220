package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGoMod = `module example.com/hv

go 1.25

require (
	github.com/toyz/apimod v0.1.0
	golang.org/x/mod v0.28.0 // indirect
)
`

func TestGoModParser(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"go.mod":              testGoMod,
		"api/deep/hv.apimod":  "",
	})

	parser := NewGoModParser(NewFileReader())

	goMod, err := parser.FindGoModFile(filepath.Join(root, "api", "deep"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "go.mod"), goMod)

	name, err := parser.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/hv", name)

	ok, err := parser.Requires(goMod, "github.com/toyz/apimod")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = parser.Requires(goMod, "github.com/other/lib")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGoModParser_Errors(t *testing.T) {
	root := t.TempDir()
	parser := NewGoModParser(NewFileReader())

	_, err := parser.Parse(filepath.Join(root, "go.sum"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("go 1.25\n"), 0644))
	_, err = parser.ParseModuleName(filepath.Join(root, "go.mod"))
	assert.ErrorContains(t, err, "no module declaration")

	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module (\n"), 0644))
	_, err = parser.Parse(filepath.Join(root, "go.mod"))
	assert.Error(t, err)
}

func TestGoModParser_PicksUpChanges(t *testing.T) {
	root := t.TempDir()
	goMod := filepath.Join(root, "go.mod")
	require.NoError(t, os.WriteFile(goMod, []byte("module a\n"), 0644))

	parser := NewGoModParser(NewFileReader())
	name, err := parser.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "a", name)

	require.NoError(t, os.WriteFile(goMod, []byte("module example.com/renamed\n"), 0644))
	name, err = parser.ParseModuleName(goMod)
	require.NoError(t, err)
	assert.Equal(t, "example.com/renamed", name)
}
