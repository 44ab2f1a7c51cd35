package parser

import (
	"regexp"
	"strings"
	"unicode"

	tree_sitter_dart "github.com/alexaandru/go-sitter-forest/dart"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"dartscope/internal/core/errors"
)

// TreeSitterStrategy extracts the structural model from a real syntax
// tree. It is the preferred strategy: declaration boundaries, parameter
// lists, and clause lists come from grammar nodes instead of heuristics.
type TreeSitterStrategy struct {
	language *sitter.Language
}

func NewTreeSitterStrategy() (*TreeSitterStrategy, error) {
	lang := sitter.NewLanguage(tree_sitter_dart.GetLanguage())
	if lang == nil {
		return nil, errors.New(errors.CodeInternal, "dart grammar failed to load")
	}
	return &TreeSitterStrategy{language: lang}, nil
}

func (s *TreeSitterStrategy) Name() string { return "ast" }

var reImportURI = regexp.MustCompile(`['"](.+?)['"]`)

func (s *TreeSitterStrategy) Parse(path string, src []byte) (*SourceFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(s.language); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "set dart grammar")
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParse, "tree-sitter parse returned no tree"),
			errors.CtxPath, path)
	}
	defer tree.Close()

	source := string(src)
	file := &SourceFile{
		Path:     path,
		Source:   source,
		Strategy: s.Name(),
		LOC:      CountLines(source),
		SLOC:     CountSLOC(source),
	}

	root := tree.RootNode()
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch child.Kind() {
		case "import_or_export":
			if uri := extractImportURI(nodeText(child, src)); uri != "" {
				file.Imports = append(file.Imports, ClassifyImport(uri))
			}
		case "class_definition", "mixin_declaration", "enum_declaration", "extension_declaration":
			if cls, ok := s.parseClass(child, src); ok {
				file.Classes = append(file.Classes, cls)
			}
		case "function_signature", "function_definition",
			"method_signature", "getter_signature", "setter_signature":
			if fn, ok := s.parseFunction(child, src, ""); ok {
				file.Functions = append(file.Functions, fn)
			}
		}
	}

	return file, nil
}

func (s *TreeSitterStrategy) parseClass(node *sitter.Node, src []byte) (Class, bool) {
	cls := Class{
		LineStart: int(node.StartPosition().Row) + 1,
		LineEnd:   int(node.EndPosition().Row) + 1,
		Text:      nodeText(node, src),
	}
	if strings.HasPrefix(cls.Text, "abstract") || strings.HasPrefix(cls.Text, "sealed") {
		cls.IsAbstract = true
	}
	if node.Kind() == "mixin_declaration" {
		cls.IsAbstract = true
	}

	var body *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "identifier":
			if cls.Name == "" {
				cls.Name = nodeText(child, src)
			}
		case "superclass":
			for j := uint(0); j < child.ChildCount(); j++ {
				if sub := child.Child(j); sub.Kind() == "type_identifier" {
					cls.Superclass = nodeText(sub, src)
					break
				}
			}
		case "interfaces":
			cls.Interfaces = collectTypeIdentifiers(child, src)
		case "mixins":
			cls.Mixins = collectTypeIdentifiers(child, src)
		case "class_body", "enum_body", "extension_body":
			body = child
		}
	}
	if cls.Name == "" {
		return Class{}, false
	}
	if body != nil {
		cls.Methods, cls.Fields = s.parseClassBody(body, src, cls.Name)
	}
	return cls, true
}

func (s *TreeSitterStrategy) parseClassBody(node *sitter.Node, src []byte, className string) ([]Function, []string) {
	var methods []Function
	var fields []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "method_signature", "function_definition",
			"getter_signature", "setter_signature", "function_signature":
			if fn, ok := s.parseFunction(child, src, className); ok {
				methods = append(methods, fn)
			}
		case "declaration", "initialized_variable_definition",
			"variable_declaration", "final_builtin":
			if name, ok := firstFieldIdentifier(child, src); ok {
				fields = append(fields, name)
			}
		}
	}
	return methods, fields
}

func (s *TreeSitterStrategy) parseFunction(node *sitter.Node, src []byte, className string) (Function, bool) {
	fn := Function{
		ClassName: className,
		LineStart: int(node.StartPosition().Row) + 1,
		LineEnd:   int(node.EndPosition().Row) + 1,
		Text:      nodeText(node, src),
		IsGetter:  node.Kind() == "getter_signature",
		IsSetter:  node.Kind() == "setter_signature",
	}

	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		pt := strings.TrimSpace(nodeText(prev, src))
		if strings.HasPrefix(pt, "@override") {
			fn.IsOverride = true
		}
		if strings.HasPrefix(pt, "@") {
			continue
		}
		break
	}

	sig := fn.Text
	if idx := strings.IndexByte(sig, '{'); idx >= 0 {
		sig = sig[:idx]
	}
	if strings.Contains(sig, "@override") {
		fn.IsOverride = true
	}
	head := sig
	if idx := strings.IndexByte(head, '('); idx >= 0 {
		head = head[:idx]
	}
	if strings.Contains(head, "static ") {
		fn.IsStatic = true
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch {
		case child.Kind() == "identifier" && fn.Name == "":
			fn.Name = nodeText(child, src)
		case child.Kind() == "formal_parameter_list":
			fn.Parameters = extractFormalParameters(child, src)
		}
	}
	if fn.Name == "" {
		fn.Name = signatureName(fn.Text)
	}
	if fn.Name == "" {
		return Function{}, false
	}

	// Signature nodes do not contain the body; it is either a nested
	// block or the next sibling node.
	if body := findBodyNode(node); body != nil {
		fn.Body = nodeText(body, src)
		if end := int(body.EndPosition().Row) + 1; end > fn.LineEnd {
			fn.LineEnd = end
			fn.Text = string(src[node.StartByte():body.EndByte()])
		}
	} else if idx := strings.Index(fn.Text, "=>"); idx >= 0 {
		fn.Body = fn.Text[idx:]
	}

	return fn, true
}

// findBodyNode looks for the function body inside the node first, then at
// the following sibling (the grammar emits "signature body" pairs at some
// nesting levels).
func findBodyNode(node *sitter.Node) *sitter.Node {
	if body := findDescendant(node, "block", "function_body"); body != nil {
		return body
	}
	if next := node.NextNamedSibling(); next != nil {
		if next.Kind() == "function_body" || next.Kind() == "block" {
			return next
		}
	}
	return nil
}

func findDescendant(node *sitter.Node, kinds ...string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
		if found := findDescendant(child, kinds...); found != nil {
			return found
		}
	}
	return nil
}

func collectTypeIdentifiers(node *sitter.Node, src []byte) []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child.Kind() == "type_identifier" {
				out = append(out, nodeText(child, src))
			}
			walk(child)
		}
	}
	walk(node)
	return out
}

func extractFormalParameters(node *sitter.Node, src []byte) []string {
	var params []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			switch child.Kind() {
			case "formal_parameter", "simple_formal_parameter",
				"default_formal_parameter", "field_formal_parameter",
				"function_typed_formal_parameter":
				params = append(params, nodeText(child, src))
			default:
				walk(child)
			}
		}
	}
	walk(node)
	return params
}

func firstFieldIdentifier(node *sitter.Node, src []byte) (string, bool) {
	var found string
	var walk func(n *sitter.Node) bool
	walk = func(n *sitter.Node) bool {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child.Kind() == "identifier" {
				found = nodeText(child, src)
				return true
			}
			if walk(child) {
				return true
			}
		}
		return false
	}
	if !walk(node) || found == "" {
		return "", false
	}
	first := rune(found[0])
	if unicode.IsLower(first) || strings.HasPrefix(found, "_") {
		return found, true
	}
	return "", false
}

var reSignatureName = regexp.MustCompile(`(\w+)\s*[(<]`)

func signatureName(text string) string {
	if m := reSignatureName.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractImportURI(text string) string {
	if !strings.HasPrefix(strings.TrimSpace(text), "import") {
		return ""
	}
	if m := reImportURI.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
