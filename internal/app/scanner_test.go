package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/core/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDiscoversDartFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "main.dart"), "void main() {}\n")
	writeFile(t, filepath.Join(root, "lib", "util.dart"), "int f() => 1;\n")
	writeFile(t, filepath.Join(root, "lib", "model.g.dart"), "// generated\n")
	writeFile(t, filepath.Join(root, "README.md"), "hi\n")
	writeFile(t, filepath.Join(root, ".dart_tool", "cache.dart"), "void g() {}\n")
	writeFile(t, filepath.Join(root, "build", "out.dart"), "void h() {}\n")
	writeFile(t, filepath.Join(root, "test", "main_test.dart"), "void main() {}\n")

	s, err := NewScanner(root, config.Default().Discovery)
	require.NoError(t, err)

	files, err := s.Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "lib", "main.dart"),
		filepath.Join(root, "lib", "util.dart"),
	}, files)
}

func TestScanIncludesTestsWhenConfigured(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib", "main.dart"), "void main() {}\n")
	writeFile(t, filepath.Join(root, "test", "main_test.dart"), "void main() {}\n")

	cfg := config.Default().Discovery
	cfg.IncludeTests = true
	s, err := NewScanner(root, cfg)
	require.NoError(t, err)

	files, err := s.Scan()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestNewScannerRejectsBadPattern(t *testing.T) {
	cfg := config.Default().Discovery
	cfg.ExcludeDirs = append(cfg.ExcludeDirs, "[")
	_, err := NewScanner(t.TempDir(), cfg)
	assert.Error(t, err)
}

func TestIsTestFile(t *testing.T) {
	assert.True(t, isTestFile(filepath.FromSlash("lib/foo_test.dart")))
	assert.True(t, isTestFile(filepath.FromSlash("pkg/test/helper.dart")))
	assert.True(t, isTestFile(filepath.FromSlash("integration_test/app.dart")))
	assert.False(t, isTestFile(filepath.FromSlash("lib/testing.dart")))
	assert.False(t, isTestFile(filepath.FromSlash("lib/latest/foo.dart")))
}
