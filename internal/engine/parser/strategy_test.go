package parser

import (
	"testing"

	"dartscope/internal/core/config"
)

func TestSelectLexical(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.Strategy = "lexical"

	s, err := Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "lexical" {
		t.Errorf("selected %q", s.Name())
	}
}

func TestSelectAuto(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.Strategy = "auto"

	s, err := Select(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "ast" && s.Name() != "lexical" {
		t.Errorf("selected %q", s.Name())
	}
}
