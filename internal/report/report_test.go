package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/app"
	"dartscope/internal/core/config"
	"dartscope/internal/engine/duplication"
	"dartscope/internal/engine/metrics"
)

func sampleResult() *app.Result {
	return &app.Result{
		Strategy: "lexical",
		Files: []metrics.FileRecord{
			{Path: "lib/a.dart", Module: "demo", LOC: 20, SLOC: 16, Grade: "A", Score: 91.5},
		},
		Functions: []metrics.FunctionRecord{
			{Path: "lib/a.dart", Module: "demo", Name: "run", Cyclo: 2, MI: 80, FPY: 1},
		},
		Classes: []metrics.ClassRecord{
			{Path: "lib/a.dart", Module: "demo", Name: "Runner", NOM: 1, TCC: 1},
		},
		Duplication: &duplication.Result{TotalFiles: 1, PerFile: map[string]float64{}},
		Project:     app.ProjectSummary{FilesCount: 1, Score: 91.5, Grade: "A"},
	}
}

func TestWriteAllFormats(t *testing.T) {
	dir := t.TempDir()
	env := NewEnvelope("/proj", sampleResult())

	cfg := config.Output{Directory: dir, Formats: []string{"json", "csv", "markdown"}}
	require.NoError(t, Write(env, cfg))

	for _, name := range []string{"metrics.json", "functions.csv", "classes.csv", "files.csv", "summary.md"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	env := NewEnvelope("/proj", sampleResult())
	require.NotEmpty(t, env.RunID)

	path := filepath.Join(dir, "metrics.json")
	require.NoError(t, writeJSON(env, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, env.RunID, decoded.RunID)
	assert.Equal(t, "lexical", decoded.Result.Strategy)
	assert.Len(t, decoded.Result.Files, 1)
	assert.Equal(t, "A", decoded.Result.Files[0].Grade)
}

func TestMarkdownSummaryContent(t *testing.T) {
	dir := t.TempDir()
	env := NewEnvelope("/proj", sampleResult())

	path := filepath.Join(dir, "summary.md")
	require.NoError(t, writeMarkdown(env, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Project grade: **A**")
	assert.Contains(t, content, env.RunID)
	assert.Contains(t, content, "Most complex functions")
}

func TestWriteSkipsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	env := NewEnvelope("/proj", sampleResult())

	cfg := config.Output{Directory: dir, Formats: []string{"html"}}
	assert.NoError(t, Write(env, cfg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
