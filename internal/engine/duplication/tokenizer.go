// Package duplication finds duplicated code blocks across files with a
// token-window rolling hash. It works on raw source text and is fully
// independent of the structural parse, so a file that fails parsing still
// participates in duplicate detection.
package duplication

import (
	"regexp"
	"strings"
)

// Token is a normalized lexical unit with the 1-based line it starts on.
type Token struct {
	Value string
	Line  int
}

// Comments are dropped. Strings, numbers and non-keyword identifiers are
// normalized to placeholders so matches survive renames and literal edits
// while the syntactic shape is preserved.
var reToken = regexp.MustCompile(`(?m)` +
	`'[^'\n]*'` +
	`|"[^"\n]*"` +
	`|///.*$` +
	`|//.*$` +
	`|(?s:/\*.*?\*/)` +
	`|\d+\.?\d*(?:e[+-]?\d+)?` +
	`|[a-zA-Z_$]\w*` +
	`|[+\-*/~%^&|<>=!?.]+` +
	`|[{}()\[\];,:@#]`)

var dartKeywords = map[string]bool{
	"abstract": true, "as": true, "assert": true, "async": true,
	"await": true, "break": true, "case": true, "catch": true,
	"class": true, "const": true, "continue": true, "covariant": true,
	"default": true, "deferred": true, "do": true, "dynamic": true,
	"else": true, "enum": true, "export": true, "extends": true,
	"extension": true, "external": true, "factory": true, "false": true,
	"final": true, "finally": true, "for": true, "Function": true,
	"get": true, "hide": true, "if": true, "implements": true,
	"import": true, "in": true, "interface": true, "is": true,
	"late": true, "library": true, "mixin": true, "new": true,
	"null": true, "on": true, "operator": true, "part": true,
	"required": true, "rethrow": true, "return": true, "sealed": true,
	"set": true, "show": true, "static": true, "super": true,
	"switch": true, "sync": true, "this": true, "throw": true,
	"true": true, "try": true, "typedef": true, "var": true,
	"void": true, "while": true, "with": true, "yield": true,
	"int": true, "double": true, "String": true, "bool": true,
	"List": true, "Map": true, "Set": true, "Future": true,
	"Stream": true, "Iterable": true, "Object": true, "Never": true,
}

// Tokenize reduces Dart source to its normalized token stream.
func Tokenize(src string) []Token {
	matches := reToken.FindAllStringIndex(src, -1)
	tokens := make([]Token, 0, len(matches))

	line := 1
	cursor := 0
	for _, m := range matches {
		line += strings.Count(src[cursor:m[0]], "\n")
		cursor = m[0]
		text := src[m[0]:m[1]]

		switch {
		case strings.HasPrefix(text, "//") || strings.HasPrefix(text, "/*"):
			// dropped, but interior newlines still advance the cursor
		case text[0] == '\'' || text[0] == '"':
			tokens = append(tokens, Token{Value: "$STR", Line: line})
		case text[0] >= '0' && text[0] <= '9':
			tokens = append(tokens, Token{Value: "$NUM", Line: line})
		case isIdentStart(text[0]):
			if dartKeywords[text] {
				tokens = append(tokens, Token{Value: text, Line: line})
			} else {
				tokens = append(tokens, Token{Value: "$ID", Line: line})
			}
		default:
			tokens = append(tokens, Token{Value: text, Line: line})
		}
	}
	return tokens
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
