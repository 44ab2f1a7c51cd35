package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/core/config"
	"dartscope/internal/engine/parser"
)

const appPubspec = `
name: shop_app
dependencies:
  http: ^1.0.0
dev_dependencies:
  mockito: ^5.0.0
`

const corePubspec = `
name: shop_core
dependencies:
  collection: ^1.18.0
`

func buildIndex(t *testing.T, root string) *ModuleIndex {
	t.Helper()
	s, err := NewScanner(root, config.Default().Discovery)
	require.NoError(t, err)
	pubspecs, err := s.FindPubspecs()
	require.NoError(t, err)
	return NewModuleIndex(pubspecs)
}

func TestModuleAttributionNearestPubspecWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pubspec.yaml"), appPubspec)
	writeFile(t, filepath.Join(root, "packages", "core", "pubspec.yaml"), corePubspec)

	ix := buildIndex(t, root)

	assert.Equal(t, "shop_app", ix.ModuleOf(filepath.Join(root, "lib", "main.dart")))
	assert.Equal(t, "shop_core", ix.ModuleOf(filepath.Join(root, "packages", "core", "lib", "a.dart")))
	assert.Equal(t, "", ix.ModuleOf(filepath.Join(t.TempDir(), "other.dart")))

	assert.True(t, ix.Internal()["shop_app"])
	assert.True(t, ix.Internal()["shop_core"])
	assert.False(t, ix.Internal()["http"])
}

func TestAnnotateMarksDevImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pubspec.yaml"), appPubspec)
	ix := buildIndex(t, root)

	sf := &parser.SourceFile{
		Path: filepath.Join(root, "lib", "main.dart"),
		Imports: []parser.Import{
			parser.ClassifyImport("package:mockito/mockito.dart"),
			parser.ClassifyImport("package:http/http.dart"),
			parser.ClassifyImport("dart:async"),
		},
	}
	ix.Annotate(sf)

	assert.Equal(t, "shop_app", sf.Module)
	assert.True(t, sf.Imports[0].IsDev)
	assert.False(t, sf.Imports[1].IsDev)
	assert.False(t, sf.Imports[2].IsDev)
}

func TestModuleIndexSkipsMalformedPubspec(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pubspec.yaml"), ":\tnot yaml {{{")

	ix := buildIndex(t, root)
	assert.Empty(t, ix.Internal())
	assert.Equal(t, "", ix.ModuleOf(filepath.Join(root, "lib", "a.dart")))
}
