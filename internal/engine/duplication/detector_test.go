package duplication

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
)

func TestTokenizeNormalizes(t *testing.T) {
	src := "final name = 'hi'; // note\nint n = 42;"
	tokens := Tokenize(src)

	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = tok.Value
	}
	assert.Equal(t, []string{"final", "$ID", "=", "$STR", ";", "int", "$ID", "=", "$NUM", ";"}, values)
	assert.Equal(t, 1, tokens[0].Line)
	assert.Equal(t, 2, tokens[5].Line)
}

func TestTokenizeDropsComments(t *testing.T) {
	src := "/* gone\ngone */\nvar x; /// doc\n"
	tokens := Tokenize(src)

	require.Len(t, tokens, 3)
	assert.Equal(t, "var", tokens[0].Value)
	assert.Equal(t, 3, tokens[0].Line)
}

// dupBlock emits n structurally distinct statement lines, six tokens each.
func dupBlock(n int) string {
	ops := []string{"+", "-", "*", "/", "%", "&", "|", "^", "<", ">"}
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "a = b %s c;\n", ops[i%len(ops)])
	}
	return sb.String()
}

func defaultDetector() *Detector {
	return NewDetector(config.Default().Duplication)
}

func TestDetectFindsAndCollapsesCrossFilePair(t *testing.T) {
	shared := dupBlock(10) // 60 tokens across 10 lines
	files := []FileSource{
		{Path: "b.dart", Source: "class Zeta {}\n" + shared},
		{Path: "a.dart", Source: "import 'dart:io';\n" + shared},
	}

	res, err := defaultDetector().Detect(files)
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	pair := res.Pairs[0]
	assert.Equal(t, "a.dart", pair.BlockA.Path)
	assert.Equal(t, "b.dart", pair.BlockB.Path)
	assert.Equal(t, 60, pair.TokenCount)
	assert.Equal(t, 10, pair.LineCount)
	assert.Equal(t, 2, pair.BlockA.LineStart)
	assert.Equal(t, 11, pair.BlockA.LineEnd)

	assert.Equal(t, 120, res.DuplicatedTokens)
	assert.Contains(t, res.PerFile, "a.dart")
	assert.Contains(t, res.PerFile, "b.dart")
	assert.False(t, res.Truncated)
}

func TestDetectRequiresMinLineSpan(t *testing.T) {
	// Same token volume squeezed onto two lines.
	line := strings.Repeat("a = b + c; ", 15)
	files := []FileSource{
		{Path: "a.dart", Source: line + "\n" + line},
		{Path: "b.dart", Source: line + "\n" + line},
	}

	res, err := defaultDetector().Detect(files)
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Zero(t, res.DuplicatedTokens)
}

func TestDetectDeterministicAcrossRuns(t *testing.T) {
	shared := dupBlock(12)
	files := []FileSource{
		{Path: "x.dart", Source: "var p;\n" + shared},
		{Path: "y.dart", Source: "var q; var r;\n" + shared},
		{Path: "z.dart", Source: "class K {}\n" + shared},
	}

	first, err1 := defaultDetector().Detect(files)
	second, err2 := defaultDetector().Detect(files)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Len(t, first.Pairs, 3)
}

func TestDetectTruncatesDeterministically(t *testing.T) {
	cfg := config.Default().Duplication
	cfg.MaxPairs = 2
	shared := dupBlock(10)
	files := []FileSource{
		{Path: "x.dart", Source: "var p;\n" + shared},
		{Path: "y.dart", Source: "var q; var r;\n" + shared},
		{Path: "z.dart", Source: "class K {}\n" + shared},
	}

	res, err := NewDetector(cfg).Detect(files)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeDuplicateOverflow))
	assert.True(t, res.Truncated)
	assert.Len(t, res.Pairs, 2)
}

func TestDetectIgnoresSelfOverlap(t *testing.T) {
	// One file, one copy of the block: the only candidate matches are
	// overlapping windows of the same region.
	files := []FileSource{{Path: "solo.dart", Source: dupBlock(10)}}

	res, err := defaultDetector().Detect(files)
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
}
