// Package deadcode flags private symbols that no other file references.
//
// The analysis is a two-phase approximation over the leading-underscore
// naming convention. It performs no scope or type resolution: a private
// symbol with the same name in two files counts as referenced in both and
// escapes the flag (false negative). The output is therefore named
// potential_dead_code, a review hint rather than a guarantee.
package deadcode

import (
	"regexp"
	"sort"

	"dartscope/internal/engine/parser"
)

var rePrivateSymbol = regexp.MustCompile(`\b(_[A-Za-z][A-Za-z0-9_]*)\b`)

// Result lists the potentially dead private symbols of one file.
type Result struct {
	Path    string   `json:"path"`
	Count   int      `json:"count"`
	Symbols []string `json:"symbols,omitempty"`
}

// Analyzer runs the two phases. Phase 1 (Collect) may run per-file in
// parallel with parsing; Resolve requires every file to be collected first.
type Analyzer struct {
	symbols map[string]map[string]bool // path -> private symbols
	sources map[string]string          // path -> stripped source
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		symbols: make(map[string]map[string]bool),
		sources: make(map[string]string),
	}
}

// Collect records the private symbols declared or mentioned in one file.
// Not safe for concurrent use; callers serialize (the pipeline collects on
// the result channel).
func (a *Analyzer) Collect(file *parser.SourceFile) {
	stripped := parser.StripStringsAndComments(file.Source)

	set := make(map[string]bool)
	for _, m := range rePrivateSymbol.FindAllStringSubmatch(stripped, -1) {
		set[m[1]] = true
	}
	a.symbols[file.Path] = set
	a.sources[file.Path] = stripped
}

// Resolve runs phase 2: every private symbol of every file is checked for
// references originating in a different file. Files without flagged
// symbols are omitted from the result. Must not be called before all
// files have been collected.
func (a *Analyzer) Resolve() []Result {
	paths := make([]string, 0, len(a.symbols))
	for p := range a.symbols {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		var dead []string
		for symbol := range a.symbols[path] {
			if !a.referencedElsewhere(symbol, path) {
				dead = append(dead, symbol)
			}
		}
		if len(dead) == 0 {
			continue
		}
		sort.Strings(dead)
		results = append(results, Result{Path: path, Count: len(dead), Symbols: dead})
	}
	return results
}

func (a *Analyzer) referencedElsewhere(symbol, definingPath string) bool {
	re := wordPattern(symbol)
	for path, src := range a.sources {
		if path == definingPath {
			continue
		}
		if re.MatchString(src) {
			return true
		}
	}
	return false
}

func wordPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
}
