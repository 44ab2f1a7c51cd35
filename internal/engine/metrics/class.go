package metrics

import (
	"regexp"
	"strings"

	"dartscope/internal/engine/parser"
)

// ClassRecord carries the structural facts of one class declaration.
type ClassRecord struct {
	Path      string `json:"path"`
	Module    string `json:"module"`
	Name      string `json:"class_name"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`

	CBO  int     `json:"cbo"`
	DIT  int     `json:"dit"`
	NOAM int     `json:"noam"`
	NOII int     `json:"noii"`
	NOM  int     `json:"nom"`
	NOOM int     `json:"noom"`
	RFC  int     `json:"rfc"`
	TCC  float64 `json:"tcc"`
	// TCCValid is false when the class has fewer than two methods and
	// cohesion is not applicable; writers report null in that case.
	TCCValid bool    `json:"tcc_valid"`
	WOC      float64 `json:"woc"`
	WMC      int     `json:"wmc"`
	LOC      int     `json:"loc"`

	// Filled in by the scoring stage.
	FPY                  int     `json:"fpy"`
	TechnicalDebtMinutes float64 `json:"technical_debt_minutes"`
}

// Types excluded from CBO: Dart core, common containers, value types, and
// ubiquitous Flutter surface classes.
var cboPrimitiveTypes = map[string]bool{
	"int": true, "double": true, "num": true, "String": true, "bool": true,
	"void": true, "dynamic": true, "Never": true,
	"Object": true, "Null": true, "Type": true, "Symbol": true,
	"Enum": true, "Record": true, "Function": true,
	"List": true, "Map": true, "Set": true, "Iterable": true, "Iterator": true,
	"Future": true, "Stream": true, "FutureOr": true,
	"Duration": true, "DateTime": true, "RegExp": true, "Uri": true,
	"BigInt": true, "Pattern": true, "Match": true,
	"Comparable": true, "Error": true, "Exception": true, "StackTrace": true,
	"Key": true, "Widget": true, "BuildContext": true, "State": true,
	"Color": true, "Size": true, "Offset": true, "Rect": true, "EdgeInsets": true,
}

// Inheritance depths of framework classes the project sources cannot
// resolve themselves.
var knownDIT = map[string]int{
	"Object": 0,
	"Error":  1, "StateError": 2, "ArgumentError": 2, "RangeError": 3,
	"TypeError": 2, "UnsupportedError": 2, "UnimplementedError": 2,
	"FormatException": 1, "IOException": 1,
	"Diagnosticable": 1, "DiagnosticableTree": 2, "Widget": 3,
	"StatelessWidget": 4, "StatefulWidget": 4,
	"InheritedWidget": 4, "InheritedModel": 5, "InheritedNotifier": 5,
	"RenderObjectWidget": 4, "LeafRenderObjectWidget": 5,
	"SingleChildRenderObjectWidget": 5, "MultiChildRenderObjectWidget": 5,
	"ProxyWidget":    4,
	"State":          1,
	"ChangeNotifier": 1, "ValueNotifier": 2,
	"AbstractNode": 1, "RenderObject": 2, "RenderBox": 3,
	"RenderSliver": 3, "RenderProxyBox": 4,
	"MaterialApp": 4, "Scaffold": 4, "AppBar": 4,
	"Container": 4, "Padding": 4, "Center": 4, "Align": 4,
	"SizedBox": 4, "Row": 4, "Column": 4, "Stack": 4, "Flex": 4,
	"ListView": 4, "GridView": 4, "CustomScrollView": 4,
	"CupertinoApp": 4, "CupertinoPageScaffold": 4,
	"Animation": 1, "AnimationController": 2,
	"Tween": 1, "ColorTween": 2,
}

var (
	reTypeReference = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9_]*)\b`)
	reAllCaps       = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)
	reInvocation    = regexp.MustCompile(`\b(\w+)\s*\(`)
	reThisField     = regexp.MustCompile(`\bthis\.(\w+)`)
	rePrivateIdent  = regexp.MustCompile(`\b(_[a-z]\w*)\b`)
)

var rfcSkipCalls = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "throw": true, "assert": true, "print": true,
	"super": true, "this": true, "true": true, "false": true, "null": true,
}

// ClassIndex resolves superclass chains across all parsed files. Built once
// after the parse barrier; read-only afterwards.
type ClassIndex struct {
	classes     map[string]*parser.Class
	classFiles  map[string]string
	inheritance map[string]string
}

func BuildClassIndex(files []*parser.SourceFile) *ClassIndex {
	ix := &ClassIndex{
		classes:     make(map[string]*parser.Class),
		classFiles:  make(map[string]string),
		inheritance: make(map[string]string),
	}
	for _, f := range files {
		for i := range f.Classes {
			cls := &f.Classes[i]
			ix.classes[cls.Name] = cls
			ix.classFiles[cls.Name] = f.Path
			ix.inheritance[cls.Name] = cls.Superclass
		}
	}
	return ix
}

// DIT walks the in-project inheritance chain. An external parent
// contributes its known framework depth plus one, or one when unknown.
func (ix *ClassIndex) DIT(className string) int {
	depth := 0
	current := className
	visited := map[string]bool{}

	for {
		parent, ok := ix.inheritance[current]
		if !ok || visited[current] {
			break
		}
		visited[current] = true
		if parent == "" {
			break
		}
		if _, inProject := ix.inheritance[parent]; !inProject {
			if known, found := knownDIT[parent]; found {
				depth += known + 1
			} else {
				depth++
			}
			break
		}
		depth++
		current = parent
	}
	return depth
}

// SuperclassMethods collects the method names inherited through the
// resolvable part of the superclass chain.
func (ix *ClassIndex) SuperclassMethods(className string) map[string]bool {
	methods := map[string]bool{}
	current := className
	visited := map[string]bool{}

	for {
		if visited[current] {
			break
		}
		visited[current] = true
		parentName, ok := ix.inheritance[current]
		if !ok || parentName == "" {
			break
		}
		parent, found := ix.classes[parentName]
		if !found {
			break
		}
		for _, m := range parent.Methods {
			methods[m.Name] = true
		}
		current = parentName
	}
	return methods
}

// ComputeClassRecords builds one record per class of a parsed file.
func ComputeClassRecords(file *parser.SourceFile, index *ClassIndex) []ClassRecord {
	records := make([]ClassRecord, 0, len(file.Classes))

	for i := range file.Classes {
		cls := &file.Classes[i]

		superMethods := index.SuperclassMethods(cls.Name)
		noam := 0
		noom := 0
		wmc := 0
		for _, m := range cls.Methods {
			if !superMethods[m.Name] {
				noam++
			}
			if m.IsOverride {
				noom++
			}
			wmc += Cyclomatic(m.Body)
		}

		tcc, tccValid := computeTCC(cls)

		records = append(records, ClassRecord{
			Path:      file.Path,
			Module:    file.Module,
			Name:      cls.Name,
			LineStart: cls.LineStart,
			LineEnd:   cls.LineEnd,
			CBO:       computeCBO(cls),
			DIT:       index.DIT(cls.Name),
			NOAM:      noam,
			NOII:      len(cls.Interfaces),
			NOM:       len(cls.Methods),
			NOOM:      noom,
			RFC:       computeRFC(cls),
			TCC:       round3(tcc),
			TCCValid:  tccValid,
			WOC:       round3(computeWOC(cls)),
			WMC:       wmc,
			LOC:       cls.LineEnd - cls.LineStart + 1,
		})
	}

	return records
}

// computeCBO counts distinct capitalized type references, excluding the
// class's own name, built-in types, single-letter generics, and ALL_CAPS
// constants.
func computeCBO(cls *parser.Class) int {
	cleaned := parser.StripStringsAndComments(cls.Text)

	referenced := map[string]bool{}
	for _, m := range reTypeReference.FindAllStringSubmatch(cleaned, -1) {
		name := m[1]
		if name == cls.Name || cboPrimitiveTypes[name] {
			continue
		}
		if len(name) == 1 {
			continue
		}
		if reAllCaps.MatchString(name) {
			continue
		}
		referenced[name] = true
	}
	return len(referenced)
}

// computeRFC counts own methods plus distinct external invocations.
func computeRFC(cls *parser.Class) int {
	own := map[string]bool{}
	for _, m := range cls.Methods {
		own[m.Name] = true
	}

	external := map[string]bool{}
	for _, m := range cls.Methods {
		body := parser.StripStringsAndComments(m.Body)
		for _, inv := range reInvocation.FindAllStringSubmatch(body, -1) {
			name := inv[1]
			if rfcSkipCalls[name] || own[name] {
				continue
			}
			external[name] = true
		}
	}
	return len(own) + len(external)
}

// computeTCC measures cohesion as the fraction of instance-method pairs
// that share at least one field. Not applicable (valid=false) for classes
// with fewer than two methods.
func computeTCC(cls *parser.Class) (float64, bool) {
	if len(cls.Methods) < 2 {
		return 1, false
	}

	fields := map[string]bool{}
	for _, f := range cls.Fields {
		fields[f] = true
	}

	// Recover fields from this.x and private identifiers when the parser
	// found none.
	if len(fields) == 0 {
		for _, m := range cls.Methods {
			if m.Body == "" {
				continue
			}
			for _, ref := range reThisField.FindAllStringSubmatch(m.Body, -1) {
				fields[ref[1]] = true
			}
			for _, ref := range rePrivateIdent.FindAllStringSubmatch(m.Body, -1) {
				name := ref[1]
				call := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
				if !call.MatchString(m.Body) {
					fields[name] = true
				}
			}
		}
	}
	if len(fields) == 0 {
		return 0, true
	}

	var instance []*parser.Function
	for i := range cls.Methods {
		if !cls.Methods[i].IsStatic {
			instance = append(instance, &cls.Methods[i])
		}
	}
	if len(instance) < 2 {
		return 1, true
	}

	fieldRes := make(map[string]*regexp.Regexp, len(fields))
	for f := range fields {
		fieldRes[f] = regexp.MustCompile(`\b` + regexp.QuoteMeta(f) + `\b`)
	}

	used := make([]map[string]bool, len(instance))
	for i, m := range instance {
		set := map[string]bool{}
		for f, re := range fieldRes {
			if re.MatchString(m.Body) {
				set[f] = true
			}
		}
		if m.IsAccessor() {
			if fields["_"+m.Name] {
				set["_"+m.Name] = true
			}
			if fields[m.Name] {
				set[m.Name] = true
			}
		}
		used[i] = set
	}

	totalPairs, connected := 0, 0
	for i := 0; i < len(used); i++ {
		for j := i + 1; j < len(used); j++ {
			totalPairs++
			if intersects(used[i], used[j]) {
				connected++
			}
		}
	}
	if totalPairs == 0 {
		return 0, true
	}
	return float64(connected) / float64(totalPairs), true
}

func intersects(a, b map[string]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// computeWOC is the share of public functional methods among all public
// members (methods, fields, accessors).
func computeWOC(cls *parser.Class) float64 {
	functional, accessors := 0, 0
	for _, m := range cls.Methods {
		if strings.HasPrefix(m.Name, "_") {
			continue
		}
		if m.IsAccessor() {
			accessors++
		} else {
			functional++
		}
	}
	total := functional + accessors + len(cls.PublicFields())
	if total == 0 {
		return 0
	}
	return float64(functional) / float64(total)
}
