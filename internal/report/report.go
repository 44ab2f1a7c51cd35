// Package report turns an analysis result into the configured output
// files. Writers are thin: all numbers are computed upstream.
package report

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"dartscope/internal/app"
	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
)

// Envelope wraps one run's records with its identity.
type Envelope struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	Root        string      `json:"root"`
	Result      *app.Result `json:"result"`
}

// NewEnvelope stamps a fresh run ID on a result.
func NewEnvelope(root string, res *app.Result) *Envelope {
	return &Envelope{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Root:        root,
		Result:      res,
	}
}

// Write renders the envelope in every configured format under the output
// directory.
func Write(env *Envelope, cfg config.Output) error {
	dir := cfg.Directory
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "creating output directory")
	}

	formats := cfg.Formats
	if len(formats) == 0 {
		formats = []string{"json"}
	}
	for _, format := range formats {
		var err error
		switch format {
		case "json":
			err = writeJSON(env, filepath.Join(dir, "metrics.json"))
		case "csv":
			err = writeCSV(env, dir)
		case "markdown":
			err = writeMarkdown(env, filepath.Join(dir, "summary.md"))
		default:
			slog.Warn("unknown output format, skipping", "format", format)
			continue
		}
		if err != nil {
			return err
		}
		slog.Info("report written", "format", format, "dir", dir)
	}
	return nil
}
