package parser

import "strings"

// SourceFile is the uniform structural model both extraction strategies
// produce. It is immutable once built; metric calculators only read it.
type SourceFile struct {
	Path     string
	Source   string
	Module   string // owning Dart package, filled in by discovery
	Strategy string // which strategy produced the model
	LOC      int
	SLOC     int
	Imports  []Import
	Classes  []Class
	// Functions holds top-level functions only; methods live on Classes.
	Functions []Function
}

// AllFunctions returns top-level functions followed by every class method,
// in declaration order.
func (f *SourceFile) AllFunctions() []Function {
	out := make([]Function, 0, len(f.Functions))
	out = append(out, f.Functions...)
	for _, cls := range f.Classes {
		out = append(out, cls.Methods...)
	}
	return out
}

type Import struct {
	URI         string
	PackageName string
	IsDartCore  bool
	IsPackage   bool
	IsRelative  bool
	// IsDev marks imports of packages that appear only under
	// dev_dependencies in the owning module's pubspec.
	IsDev bool
}

type Function struct {
	Name       string
	ClassName  string // empty for top-level functions
	LineStart  int
	LineEnd    int
	Body       string // body text between braces, or the => expression
	Text       string // full text including signature
	Parameters []string
	IsOverride bool
	IsStatic   bool
	IsGetter   bool
	IsSetter   bool
}

// QualifiedName returns Class.method for methods, the bare name otherwise.
func (fn *Function) QualifiedName() string {
	if fn.ClassName == "" {
		return fn.Name
	}
	return fn.ClassName + "." + fn.Name
}

func (fn *Function) IsPublic() bool {
	return !strings.HasPrefix(fn.Name, "_")
}

func (fn *Function) IsAccessor() bool {
	return fn.IsGetter || fn.IsSetter
}

type Class struct {
	Name       string
	LineStart  int
	LineEnd    int
	Text       string
	Superclass string // empty when the class extends nothing
	Interfaces []string
	Mixins     []string
	Methods    []Function
	Fields     []string
	IsAbstract bool
}

func (c *Class) PublicMethods() []Function {
	out := make([]Function, 0, len(c.Methods))
	for _, m := range c.Methods {
		if m.IsPublic() {
			out = append(out, m)
		}
	}
	return out
}

func (c *Class) PublicFields() []string {
	out := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		if !strings.HasPrefix(f, "_") {
			out = append(out, f)
		}
	}
	return out
}

// ClassifyImport maps a Dart import URI to an Import record.
func ClassifyImport(uri string) Import {
	switch {
	case strings.HasPrefix(uri, "dart:"):
		return Import{URI: uri, IsDartCore: true}
	case strings.HasPrefix(uri, "package:"):
		pkg := strings.TrimPrefix(uri, "package:")
		if idx := strings.Index(pkg, "/"); idx >= 0 {
			pkg = pkg[:idx]
		}
		return Import{URI: uri, IsPackage: true, PackageName: pkg}
	default:
		return Import{URI: uri, IsRelative: true}
	}
}
