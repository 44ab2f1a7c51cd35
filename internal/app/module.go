package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"dartscope/internal/engine/parser"
)

// Pubspec is the subset of pubspec.yaml the analyzer needs.
type Pubspec struct {
	Name            string         `yaml:"name"`
	Dependencies    map[string]any `yaml:"dependencies"`
	DevDependencies map[string]any `yaml:"dev_dependencies"`
}

type moduleEntry struct {
	dir     string
	name    string
	devDeps map[string]bool
}

// ModuleIndex attributes files to their owning Dart package (the nearest
// enclosing pubspec.yaml) and knows which package names are internal to
// the scanned project.
type ModuleIndex struct {
	entries  []moduleEntry
	internal map[string]bool
}

// FindPubspecs walks the scanner's roots for pubspec.yaml files, honoring
// the directory excludes.
func (s *Scanner) FindPubspecs() ([]string, error) {
	var paths []string
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
			if base == "pubspec.yaml" {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// NewModuleIndex parses the given pubspec files. Unreadable or malformed
// pubspecs are skipped; attribution falls back to the empty module.
func NewModuleIndex(pubspecPaths []string) *ModuleIndex {
	ix := &ModuleIndex{internal: make(map[string]bool)}

	for _, path := range pubspecPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var ps Pubspec
		if err := yaml.Unmarshal(data, &ps); err != nil || ps.Name == "" {
			continue
		}

		devDeps := make(map[string]bool, len(ps.DevDependencies))
		for dep := range ps.DevDependencies {
			devDeps[dep] = true
		}

		ix.entries = append(ix.entries, moduleEntry{
			dir:     filepath.Dir(path),
			name:    ps.Name,
			devDeps: devDeps,
		})
		ix.internal[ps.Name] = true
	}

	// Longest directory first so nested packages win over their parents.
	sort.Slice(ix.entries, func(i, j int) bool {
		return len(ix.entries[i].dir) > len(ix.entries[j].dir)
	})
	return ix
}

// Internal is the set of package names owned by the scanned project.
func (ix *ModuleIndex) Internal() map[string]bool {
	return ix.internal
}

func (ix *ModuleIndex) lookup(path string) *moduleEntry {
	for i := range ix.entries {
		e := &ix.entries[i]
		if path == e.dir || strings.HasPrefix(path, e.dir+string(filepath.Separator)) {
			return e
		}
	}
	return nil
}

// ModuleOf names the Dart package owning a file, or "" when the file sits
// outside every discovered package.
func (ix *ModuleIndex) ModuleOf(path string) string {
	if e := ix.lookup(path); e != nil {
		return e.name
	}
	return ""
}

// Annotate stamps the owning module on a parsed file and marks imports of
// packages that appear only under the module's dev_dependencies.
func (ix *ModuleIndex) Annotate(file *parser.SourceFile) {
	e := ix.lookup(file.Path)
	if e == nil {
		return
	}
	file.Module = e.name
	for i := range file.Imports {
		imp := &file.Imports[i]
		if imp.IsPackage && e.devDeps[imp.PackageName] {
			imp.IsDev = true
		}
	}
}
