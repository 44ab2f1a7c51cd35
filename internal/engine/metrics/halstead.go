package metrics

import (
	"math"
	"strings"

	"dartscope/internal/engine/parser"
)

// Halstead holds the raw operator/operand counts of one function.
type Halstead struct {
	N1   int // total operators
	N2   int // total operands
	Eta1 int // distinct operators
	Eta2 int // distinct operands
}

func (h Halstead) Length() int     { return h.N1 + h.N2 }
func (h Halstead) Vocabulary() int { return h.Eta1 + h.Eta2 }

// Volume is Length * log2(Vocabulary). Degenerate input (fewer than two
// distinct tokens) yields 0 rather than a math-domain failure.
func (h Halstead) Volume() float64 {
	v := h.Vocabulary()
	if v <= 1 {
		return 0
	}
	return float64(h.Length()) * math.Log2(float64(v))
}

// Multi-character operators ordered longest first so tokenization always
// takes the longest match (">>=" before ">>", ">>" before ">"). Word
// operators like "is" and "as" never reach this table; the identifier
// branch tallies them via dartKeywordOperators.
var dartMultiCharOps = []string{
	">>>=",
	"<<=", ">>=", "~/=", ">>>", "??=", "...",
	"~/", "<<", ">>", "==", "!=", ">=", "<=",
	"&&", "||", "??", "?.", "!.", "..",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"=>",
}

const dartSingleCharOps = "+-*/%=<>!&|^~?:."

// Keywords that count as operators in Halstead terms.
var dartKeywordOperators = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "case": true, "default": true,
	"break": true, "continue": true, "return": true, "throw": true,
	"try": true, "catch": true, "finally": true,
	"new": true, "const": true, "var": true, "final": true,
	"late": true, "required": true,
	"await": true, "async": true, "yield": true, "sync": true,
	"assert": true, "import": true, "export": true, "class": true,
	"extends": true, "implements": true, "with": true, "abstract": true,
	"mixin": true, "enum": true, "typedef": true,
	"is": true, "as": true, "in": true,
}

// Delimiters carry no semantic weight and are not counted.
const halsteadDelimiters = "{}()[];,@#"

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isLetterByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

// ComputeHalstead tokenizes the comment/string-stripped source of one
// function and tallies operators and operands.
func ComputeHalstead(source string) Halstead {
	cleaned := parser.StripStringsAndComments(source)

	operators := map[string]int{}
	operands := map[string]int{}

	i, n := 0, len(cleaned)
	for i < n {
		c := cleaned[i]

		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i++
			continue
		}
		if strings.IndexByte(halsteadDelimiters, c) >= 0 {
			i++
			continue
		}

		if isLetterByte(c) {
			j := i + 1
			for j < n && isWordByte(cleaned[j]) {
				j++
			}
			word := cleaned[i:j]
			if dartKeywordOperators[word] {
				operators[word]++
			} else {
				operands[word]++
			}
			i = j
			continue
		}

		if isDigitByte(c) {
			i = scanNumber(cleaned, i, operands)
			continue
		}

		if op, width := matchMultiCharOp(cleaned, i); width > 0 {
			operators[op]++
			i += width
			continue
		}

		if strings.IndexByte(dartSingleCharOps, c) >= 0 {
			operators[string(c)]++
			i++
			continue
		}

		i++
	}

	h := Halstead{Eta1: len(operators), Eta2: len(operands)}
	for _, cnt := range operators {
		h.N1 += cnt
	}
	for _, cnt := range operands {
		h.N2 += cnt
	}
	return h
}

// scanNumber consumes a numeric literal (digits, optional fraction,
// optional exponent), records it as an operand, and returns the new position.
func scanNumber(s string, pos int, operands map[string]int) int {
	j := pos
	for j < len(s) && isDigitByte(s[j]) {
		j++
	}
	if j < len(s) && s[j] == '.' && j+1 < len(s) && isDigitByte(s[j+1]) {
		j++
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigitByte(s[k]) {
			for k < len(s) && isDigitByte(s[k]) {
				k++
			}
			j = k
		}
	}
	operands[s[pos:j]]++
	return j
}

func matchMultiCharOp(s string, pos int) (string, int) {
	for _, op := range dartMultiCharOps {
		if len(s)-pos >= len(op) && s[pos:pos+len(op)] == op {
			return op, len(op)
		}
	}
	return "", 0
}
