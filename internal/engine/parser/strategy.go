package parser

import (
	"log/slog"

	"dartscope/internal/core/config"
)

// Strategy turns raw file text into a SourceFile. Exactly one strategy is
// selected per run; the two implementations fill the identical schema at
// the identical granularity and are never mixed mid-run.
type Strategy interface {
	Name() string
	Parse(path string, src []byte) (*SourceFile, error)
}

// Select picks the extraction strategy for the run. "auto" prefers the
// tree-sitter strategy and falls back to lexical scanning when the grammar
// cannot be initialized.
func Select(cfg *config.Config) (Strategy, error) {
	switch cfg.Parser.Strategy {
	case "ast":
		ts, err := NewTreeSitterStrategy()
		if err != nil {
			return nil, err
		}
		return ts, nil
	case "lexical":
		return NewLexicalStrategy(), nil
	default: // auto
		ts, err := NewTreeSitterStrategy()
		if err != nil {
			slog.Warn("tree-sitter grammar unavailable, using lexical fallback", "error", err)
			return NewLexicalStrategy(), nil
		}
		return ts, nil
	}
}
