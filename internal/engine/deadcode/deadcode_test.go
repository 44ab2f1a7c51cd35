package deadcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/engine/parser"
)

func sourceFile(path, src string) *parser.SourceFile {
	return &parser.SourceFile{Path: path, Source: src}
}

func resultFor(results []Result, path string) *Result {
	for i := range results {
		if results[i].Path == path {
			return &results[i]
		}
	}
	return nil
}

func TestUnreferencedPrivateSymbolIsFlagged(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(sourceFile("lib/a.dart", "int _lonely() { return 1; }"))
	a.Collect(sourceFile("lib/b.dart", "void other() {}"))

	results := a.Resolve()
	res := resultFor(results, "lib/a.dart")
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, []string{"_lonely"}, res.Symbols)
}

func TestCrossFileReferenceClearsFlag(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(sourceFile("lib/a.dart", "int _shared() { return 1; }"))
	a.Collect(sourceFile("lib/b.dart", "var x = _shared();"))

	assert.Empty(t, a.Resolve(), "referenced from lib/b.dart")
}

func TestCleanFilesAreOmitted(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(sourceFile("lib/calc.dart", "int add(int a, int b) => a + b;"))
	a.Collect(sourceFile("lib/helper.dart", "int _hidden() => 1;"))

	results := a.Resolve()
	require.Len(t, results, 1)
	assert.Equal(t, "lib/helper.dart", results[0].Path)
	assert.Equal(t, []string{"_hidden"}, results[0].Symbols)
}

func TestReferencesInStringsDoNotCount(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(sourceFile("lib/a.dart", "int _hidden() { return 1; }"))
	a.Collect(sourceFile("lib/b.dart", "final s = 'calls _hidden somewhere';"))

	res := resultFor(a.Resolve(), "lib/a.dart")
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Count, "string mention is not a reference")
}

func TestNoPartialNameMatches(t *testing.T) {
	a := NewAnalyzer()
	a.Collect(sourceFile("lib/a.dart", "int _load() { return 1; }"))
	a.Collect(sourceFile("lib/b.dart", "var x = _loadAll();"))

	res := resultFor(a.Resolve(), "lib/a.dart")
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Count, "_loadAll does not reference _load")
}

func TestDeterministicOrdering(t *testing.T) {
	build := func() []Result {
		a := NewAnalyzer()
		a.Collect(sourceFile("lib/z.dart", "int _zz() => 1; int _aa() => 2;"))
		a.Collect(sourceFile("lib/a.dart", "int _mm() => 3;"))
		return a.Resolve()
	}
	first := build()
	second := build()
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "lib/a.dart", first[0].Path)
	assert.Equal(t, []string{"_aa", "_zz"}, first[1].Symbols)
}
