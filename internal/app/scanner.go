// Package app orchestrates a full analysis run: discovery, parallel
// parsing, the dead-code barrier, metric computation, score reduction,
// duplicate detection, aggregation and watch mode.
package app

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
)

// Scanner discovers Dart sources under the configured roots.
type Scanner struct {
	roots        []string
	dirGlobs     []glob.Glob
	fileGlobs    []glob.Glob
	includeTests bool
}

func NewScanner(root string, cfg config.Discovery) (*Scanner, error) {
	roots := cfg.Roots
	if len(roots) == 0 {
		roots = []string{"."}
	}
	resolved := make([]string, 0, len(roots))
	for _, r := range roots {
		if !filepath.IsAbs(r) {
			r = filepath.Join(root, r)
		}
		resolved = append(resolved, filepath.Clean(r))
	}
	sort.Strings(resolved)

	dirGlobs, err := compileGlobs(cfg.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(cfg.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		roots:        resolved,
		dirGlobs:     dirGlobs,
		fileGlobs:    fileGlobs,
		includeTests: cfg.IncludeTests,
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeConfiguration, "invalid exclude pattern "+p),
				errors.CtxPath, p)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Scan walks every root and returns the sorted list of Dart files to
// analyze.
func (s *Scanner) Scan() ([]string, error) {
	var files []string

	for _, root := range s.roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				for _, g := range s.dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !strings.HasSuffix(base, ".dart") {
				return nil
			}
			if !s.includeTests && isTestFile(path) {
				return nil
			}
			for _, g := range s.fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// isTestFile follows the Dart conventions: *_test.dart anywhere, or any
// file under a test/ directory.
func isTestFile(path string) bool {
	if strings.HasSuffix(path, "_test.dart") {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "test" || part == "integration_test" {
			return true
		}
	}
	return false
}
