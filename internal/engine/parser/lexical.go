package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"dartscope/internal/core/errors"
)

// LexicalStrategy extracts the structural model with brace/bracket depth
// tracking and declaration-keyword heuristics. It is the fallback when the
// syntax-tree grammar is unavailable and biases toward under-attribution:
// constructs it cannot place with confidence are skipped rather than
// assigned to the wrong declaration.
type LexicalStrategy struct{}

func NewLexicalStrategy() *LexicalStrategy {
	return &LexicalStrategy{}
}

func (s *LexicalStrategy) Name() string { return "lexical" }

var (
	reImport = regexp.MustCompile(`(?m)^\s*import\s+['"](.+?)['"]`)

	// Class-like declarations (Dart 3 modifiers included).
	reClass = regexp.MustCompile(`(?m)^(?:(?:abstract|sealed|base|final|interface)\s+)*(?:mixin\s+)?class\s+(\w+)(?:<[^{]*?>)?((?:\s+(?:extends|with|implements)\s+[^{]+?)*)\s*\{`)
	reMixin = regexp.MustCompile(`(?m)^(?:base\s+)?mixin\s+(\w+)(?:<[^{]*?>)?((?:\s+(?:on|implements)\s+[^{]+?)*)\s*\{`)
	reEnum  = regexp.MustCompile(`(?m)^enum\s+(\w+)(?:<[^{]*?>)?((?:\s+(?:with|implements)\s+[^{]+?)*)\s*\{`)
	reExt   = regexp.MustCompile(`(?m)^extension\s+(\w+)(?:<[^{]*?>)?\s+on\s+[\w<>,?\s]+?\s*\{`)
	reExtTp = regexp.MustCompile(`(?m)^extension\s+type\s+(\w+)(?:<[^{]*?>)?\s*\([^)]*\)((?:\s+implements\s+[^{]+?)*)\s*\{`)

	// Functions and methods. Parameters are required so stray identifiers
	// do not register as declarations; getters are matched separately.
	reFunction = regexp.MustCompile(`(?m)^\s*(?:(?:external|static|abstract)\s+)*(?:[\w<>,?\[\].]+\s+)*(?:get\s+|set\s+|operator\s+\S+\s*)?(\w+(?:\.\w+)?)\s*(?:<[^>]*>)?\s*(\([^)]*\))\s*(?:async\s*\*?|sync\s*\*?)?\s*(\{|=>|;)`)
	reGetter   = regexp.MustCompile(`(?m)^\s*(?:(?:external|static)\s+)*(?:[\w<>,?]+\s+)?get\s+(\w+)\s*(\{|=>|;)`)
	reField    = regexp.MustCompile(`(?m)^\s*(?:(?:static|late|final|const|var|covariant)\s+)*(?:[\w<>,?\s]+?\s+)(\w+)\s*[;=,]`)

	reExtends      = regexp.MustCompile(`\bextends\s+([A-Za-z_]\w*)`)
	reWithKw       = regexp.MustCompile(`\bwith\s+`)
	reOnKw         = regexp.MustCompile(`\bon\s+`)
	reImplementsKw = regexp.MustCompile(`\bimplements\s+`)
	reStaticKw     = regexp.MustCompile(`\bstatic\s`)
	reGetKw        = regexp.MustCompile(`\bget\s+$`)
	reSetKw        = regexp.MustCompile(`\bset\s+$`)
	reTypeName     = regexp.MustCompile(`[A-Za-z_]\w*`)
)

var dartKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"catch": true, "class": true, "return": true, "throw": true,
	"assert": true, "import": true, "export": true, "extends": true,
	"implements": true, "with": true, "abstract": true, "mixin": true,
	"enum": true, "typedef": true, "void": true, "var": true,
	"final": true, "const": true, "static": true, "new": true,
	"break": true, "continue": true, "do": true, "try": true,
	"finally": true, "case": true, "default": true, "true": true,
	"false": true, "null": true, "is": true, "as": true, "in": true,
	"super": true, "this": true, "late": true, "required": true,
	"covariant": true, "external": true, "factory": true, "get": true,
	"set": true, "operator": true, "part": true, "of": true,
	"show": true, "hide": true, "deferred": true, "library": true,
	"sealed": true, "base": true, "interface": true, "when": true,
	"async": true, "await": true, "yield": true, "sync": true, "on": true,
}

func (s *LexicalStrategy) Parse(path string, src []byte) (*SourceFile, error) {
	if !utf8.Valid(src) {
		return nil, errors.AddContext(
			errors.New(errors.CodeParse, "source is not valid UTF-8"),
			errors.CtxPath, path)
	}
	source := string(src)
	cleaned := StripComments(source)

	file := &SourceFile{
		Path:     path,
		Source:   source,
		Strategy: s.Name(),
		LOC:      CountLines(source),
		SLOC:     CountSLOC(source),
	}

	for _, m := range reImport.FindAllStringSubmatch(source, -1) {
		file.Imports = append(file.Imports, ClassifyImport(m[1]))
	}

	file.Classes = s.extractClassLike(cleaned)
	file.Functions = s.extractTopLevelFunctions(cleaned, file.Classes)

	return file, nil
}

func (s *LexicalStrategy) extractClassLike(cleaned string) []Class {
	var classes []Class

	for _, m := range reClass.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		clauses := groupText(cleaned, m, 2)
		head := cleaned[m[0]:m[1]]
		modifiers := head[:strings.Index(head, "class")]
		isAbstract := strings.Contains(modifiers, "abstract") || strings.Contains(modifiers, "sealed")
		superclass, interfaces, mixins := parseClauses(clauses)
		if cls, ok := s.buildClass(cleaned, m, name, superclass, interfaces, mixins, isAbstract); ok {
			classes = append(classes, cls)
		}
	}

	for _, m := range reMixin.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		if name == "class" { // "mixin class" is handled by reClass
			continue
		}
		clauses := groupText(cleaned, m, 2)
		_, interfaces, _ := parseClauses(clauses)
		onTypes := parseOnTypes(clauses)
		if cls, ok := s.buildClass(cleaned, m, name, "", interfaces, onTypes, true); ok {
			classes = append(classes, cls)
		}
	}

	for _, m := range reEnum.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		clauses := groupText(cleaned, m, 2)
		_, interfaces, mixins := parseClauses(clauses)
		if cls, ok := s.buildClass(cleaned, m, name, "", interfaces, mixins, false); ok {
			classes = append(classes, cls)
		}
	}

	for _, m := range reExt.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		if cls, ok := s.buildClass(cleaned, m, name, "", nil, nil, false); ok {
			classes = append(classes, cls)
		}
	}

	for _, m := range reExtTp.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		clauses := groupText(cleaned, m, 2)
		_, interfaces, _ := parseClauses(clauses)
		if cls, ok := s.buildClass(cleaned, m, name, "", interfaces, nil, false); ok {
			classes = append(classes, cls)
		}
	}

	return classes
}

func (s *LexicalStrategy) buildClass(cleaned string, m []int, name, superclass string, interfaces, mixins []string, isAbstract bool) (Class, bool) {
	bracePos := m[1] - 1
	body, endPos := FindBraceBlock(cleaned, bracePos)

	lineStart := lineAt(cleaned, m[0])
	lineEnd := lineAt(cleaned, endPos)
	braceLine := lineAt(cleaned, bracePos)

	methods := s.extractMethods(body, name, braceLine)
	fields := extractClassFields(body)

	return Class{
		Name:       name,
		LineStart:  lineStart,
		LineEnd:    lineEnd,
		Text:       cleaned[m[0]:endPos],
		Superclass: superclass,
		Interfaces: interfaces,
		Mixins:     mixins,
		Methods:    methods,
		Fields:     fields,
		IsAbstract: isAbstract,
	}, true
}

func (s *LexicalStrategy) extractTopLevelFunctions(cleaned string, classes []Class) []Function {
	type region struct{ start, end int }
	regions := make([]region, len(classes))
	for i, c := range classes {
		regions[i] = region{c.LineStart, c.LineEnd}
	}
	inClass := func(line int) bool {
		for _, r := range regions {
			if r.start <= line && line <= r.end {
				return true
			}
		}
		return false
	}

	var fns []Function
	seen := map[int]bool{}

	for _, m := range reFunction.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		if name == "" || dartKeywords[name] || strings.Contains(name, ".") {
			continue
		}
		line := lineAt(cleaned, m[0])
		if inClass(line) || seen[line] {
			continue
		}
		seen[line] = true
		if fn, ok := buildFunction(cleaned, m, name, "", 0); ok {
			fns = append(fns, fn)
		}
	}

	for _, m := range reGetter.FindAllStringSubmatchIndex(cleaned, -1) {
		name := cleaned[m[2]:m[3]]
		if dartKeywords[name] {
			continue
		}
		line := lineAt(cleaned, m[0])
		if inClass(line) || seen[line] {
			continue
		}
		seen[line] = true
		if fn, ok := buildGetter(cleaned, m, name, "", 0); ok {
			fns = append(fns, fn)
		}
	}

	return fns
}

func (s *LexicalStrategy) extractMethods(body, className string, classBraceLine int) []Function {
	var methods []Function
	seen := map[int]bool{}
	baseLine := classBraceLine - 1

	for _, m := range reFunction.FindAllStringSubmatchIndex(body, -1) {
		name := body[m[2]:m[3]]
		if name == "" || dartKeywords[name] {
			continue
		}
		// Skip constructors, unnamed and named.
		bare := name
		if idx := strings.Index(name, "."); idx >= 0 {
			bare = name[:idx]
		}
		if bare == className {
			continue
		}
		line := lineAt(body, m[0])
		if seen[line] {
			continue
		}
		seen[line] = true
		if fn, ok := buildFunction(body, m, name, className, baseLine); ok {
			methods = append(methods, fn)
		}
	}

	for _, m := range reGetter.FindAllStringSubmatchIndex(body, -1) {
		name := body[m[2]:m[3]]
		if dartKeywords[name] || name == className {
			continue
		}
		line := lineAt(body, m[0])
		if seen[line] {
			continue
		}
		seen[line] = true
		if fn, ok := buildGetter(body, m, name, className, baseLine); ok {
			methods = append(methods, fn)
		}
	}

	return methods
}

func buildFunction(text string, m []int, name, className string, baseLine int) (Function, bool) {
	paramsStr := groupText(text, m, 2)
	params := parseParams(paramsStr)
	start, end := m[0], m[1]

	line := lineAt(text, start) + baseLine
	lineEnd := line
	isOverride := overrideAnnotated(text, start)

	// Modifiers sit between the line start and the name, inside the match.
	head := text[start:m[2]]
	preceding := text[max(0, start-80):start]
	isStatic := reStaticKw.MatchString(head) || reStaticKw.MatchString(preceding)
	isGetter := reGetKw.MatchString(head)
	isSetter := reSetKw.MatchString(head)

	body := ""
	textEnd := end
	switch text[end-1] {
	case '{':
		var endIdx int
		body, endIdx = FindBraceBlock(text, end-1)
		lineEnd = lineAt(text, endIdx) + baseLine
		textEnd = endIdx
	case '>': // "=>" expression body
		semi := strings.IndexByte(text[end:], ';')
		if semi >= 0 {
			body = "=> " + text[end:end+semi]
			lineEnd = lineAt(text, end+semi) + baseLine
			textEnd = end + semi
		}
	case ';':
		// abstract or external: no body
	}

	return Function{
		Name:       name,
		ClassName:  className,
		LineStart:  line,
		LineEnd:    lineEnd,
		Body:       body,
		Text:       text[start:textEnd],
		Parameters: params,
		IsOverride: isOverride,
		IsStatic:   isStatic,
		IsGetter:   isGetter,
		IsSetter:   isSetter,
	}, true
}

func buildGetter(text string, m []int, name, className string, baseLine int) (Function, bool) {
	start, end := m[0], m[1]
	line := lineAt(text, start) + baseLine
	lineEnd := line
	isOverride := overrideAnnotated(text, start)
	head := text[start:m[2]]
	preceding := text[max(0, start-80):start]
	isStatic := reStaticKw.MatchString(head) || reStaticKw.MatchString(preceding)

	body := ""
	textEnd := end
	switch text[end-1] {
	case '{':
		var endIdx int
		body, endIdx = FindBraceBlock(text, end-1)
		lineEnd = lineAt(text, endIdx) + baseLine
		textEnd = endIdx
	case '>':
		semi := strings.IndexByte(text[end:], ';')
		if semi >= 0 {
			body = text[end : end+semi]
			lineEnd = lineAt(text, end+semi) + baseLine
			textEnd = end + semi
		}
	}

	return Function{
		Name:       name,
		ClassName:  className,
		LineStart:  line,
		LineEnd:    lineEnd,
		Body:       body,
		Text:       text[start:textEnd],
		IsOverride: isOverride,
		IsStatic:   isStatic,
		IsGetter:   true,
	}, true
}

func extractClassFields(body string) []string {
	topLevel := stripNestedBlocks(body)

	var fields []string
	seen := map[string]bool{}
	for _, m := range reField.FindAllStringSubmatch(topLevel, -1) {
		name := m[1]
		if name == "" || dartKeywords[name] || seen[name] {
			continue
		}
		first, _ := utf8.DecodeRuneInString(name)
		if unicode.IsUpper(first) {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

// parseClauses splits "extends A with B, C implements D" into its parts.
func parseClauses(text string) (superclass string, interfaces, mixins []string) {
	if m := reExtends.FindStringSubmatch(text); m != nil {
		superclass = m[1]
	}
	if loc := reWithKw.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		if idx := reImplementsKw.FindStringIndex(rest); idx != nil {
			rest = rest[:idx[0]]
		}
		mixins = splitTypeList(rest)
	}
	if loc := reImplementsKw.FindStringIndex(text); loc != nil {
		interfaces = splitTypeList(text[loc[1]:])
	}
	return superclass, interfaces, mixins
}

func parseOnTypes(text string) []string {
	loc := reOnKw.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	rest := text[loc[1]:]
	if idx := reImplementsKw.FindStringIndex(rest); idx != nil {
		rest = rest[:idx[0]]
	}
	return splitTypeList(rest)
}

func splitTypeList(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if name := reTypeName.FindString(strings.TrimSpace(part)); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// parseParams splits a parameter list at top-level commas, honoring
// nested angle brackets, parentheses, and optional-parameter groups.
func parseParams(paramsStr string) []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(paramsStr, "("), ")")
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	var params []string
	depth := 0
	var current strings.Builder
	for _, c := range inner {
		switch c {
		case '(', '<', '[', '{':
			depth++
		case ')', '>', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(current.String()); p != "" {
					params = append(params, p)
				}
				current.Reset()
				continue
			}
		}
		current.WriteRune(c)
	}
	if p := strings.TrimSpace(current.String()); p != "" {
		params = append(params, p)
	}
	return params
}

// overrideAnnotated walks lines backwards from pos looking for an
// @override annotation, skipping other annotations and blank lines.
func overrideAnnotated(text string, pos int) bool {
	chunk := text[max(0, pos-300):pos]
	lines := strings.Split(strings.TrimRight(chunk, " \t\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		stripped := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(stripped, "@override"):
			return true
		case strings.HasPrefix(stripped, "@"), strings.HasPrefix(stripped, "//"), stripped == "":
			continue
		default:
			return false
		}
	}
	return false
}

func groupText(text string, m []int, group int) string {
	if m[2*group] < 0 {
		return ""
	}
	return text[m[2*group]:m[2*group+1]]
}
