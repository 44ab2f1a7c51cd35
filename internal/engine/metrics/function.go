package metrics

import (
	"math"
	"regexp"
	"strings"

	"dartscope/internal/engine/parser"
)

// FunctionRecord carries every structural fact about one function. The
// scoring stage is a pure reduction over these records and never goes back
// to the source text.
type FunctionRecord struct {
	Path      string `json:"path"`
	Module    string `json:"module"`
	ClassName string `json:"class_name,omitempty"`
	Name      string `json:"function_name"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`

	Cyclo              int     `json:"cyclo"`
	HalsteadVolume     float64 `json:"halstead_volume"`
	HalsteadVocabulary int     `json:"-"`
	HalsteadLength     int     `json:"-"`
	LOC                int     `json:"loc"`
	SLOC               int     `json:"sloc"`
	MI                 float64 `json:"mi"`
	MaxNesting         int     `json:"max_nesting_level"`
	Params             int     `json:"number_of_parameters"`

	// Raw inputs for the WMFP reduction.
	ArithmeticOps int `json:"-"`
	Assignments   int `json:"-"`
	CommentLines  int `json:"-"`

	// Filled in by the scoring stage.
	WMFP                 float64 `json:"wmfp"`
	FPY                  int     `json:"fpy"`
	TechnicalDebtMinutes float64 `json:"technical_debt_minutes"`
}

var (
	reDecisionKeywords = regexp.MustCompile(`\b(?:if|for|while|do|case|catch)\b`)
	reLogicalOperators = regexp.MustCompile(`&&|\|\||\?\?`)
)

// Cyclomatic computes McCabe complexity of a function body:
// 1 + decision keywords + logical operators + ternary '?'.
func Cyclomatic(body string) int {
	if body == "" {
		return 1
	}
	cleaned := parser.StripStringsAndComments(body)

	cc := 1
	cc += len(reDecisionKeywords.FindAllString(cleaned, -1))
	cc += len(reLogicalOperators.FindAllString(cleaned, -1))
	cc += countTernaries(cleaned)
	return cc
}

// countTernaries counts conditional '?' occurrences, excluding null-aware
// operators (?. ?? ??=) and nullable type annotations (Foo? bar).
func countTernaries(cleaned string) int {
	tmp := strings.ReplaceAll(cleaned, "?.", "XX")
	tmp = strings.ReplaceAll(tmp, "??", "XX")

	b := []byte(tmp)
	for i := 0; i < len(b); i++ {
		if b[i] != '?' {
			continue
		}
		// Nullable type: word char before, type-position char after.
		if i > 0 && isWordByte(b[i-1]) && i+1 < len(b) {
			switch b[i+1] {
			case ' ', '\t', '\n', '\r', ')', '>', ',', ';', ']', '[':
				b[i] = 'X'
			}
		}
	}

	count := 0
	for i := 0; i < len(b); i++ {
		if b[i] != '?' {
			continue
		}
		var next byte
		if i+1 < len(b) {
			next = b[i+1]
		}
		if next != '.' && next != '?' && next != '=' {
			count++
		}
	}
	return count
}

// MaintainabilityIndex maps (CC, Halstead volume, LOC) onto a 0-100 scale.
func MaintainabilityIndex(cyclo int, halvol float64, loc int) float64 {
	if loc <= 0 {
		return 100
	}
	if halvol <= 0 {
		halvol = 1
	}
	raw := 171 - 5.2*math.Log(halvol) - 0.23*float64(cyclo) - 16.2*math.Log(float64(loc))
	mi := math.Max(0, raw/171*100)
	return math.Min(mi, 100)
}

// Control-flow keywords that open a counted nesting level.
var nestingKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"switch": true, "try": true, "catch": true, "finally": true,
}

var reWordBeforeBrace = regexp.MustCompile(`(\w+)\s*$`)

// MaxNesting computes the deepest control-flow nesting of a body. Only
// braces opened by a control-flow keyword (or a closing paren, catching
// "if (...) {") count; map literals, lambdas and class bodies do not.
func MaxNesting(body string) int {
	if body == "" {
		return 0
	}
	cleaned := parser.StripStringsAndComments(body)

	maxDepth, cfDepth := 0, 0
	var cfStack []bool

	for i := 0; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '{':
			from := i - 60
			if from < 0 {
				from = 0
			}
			preceding := strings.TrimRight(cleaned[from:i], " \t\n\r")

			isCF := false
			if m := reWordBeforeBrace.FindStringSubmatch(preceding); m != nil {
				isCF = nestingKeywords[m[1]]
			} else if strings.HasSuffix(preceding, ")") {
				isCF = true
			}

			cfStack = append(cfStack, isCF)
			if isCF {
				cfDepth++
				if cfDepth > maxDepth {
					maxDepth = cfDepth
				}
			}
		case '}':
			if len(cfStack) > 0 {
				if cfStack[len(cfStack)-1] && cfDepth > 0 {
					cfDepth--
				}
				cfStack = cfStack[:len(cfStack)-1]
			}
		}
	}

	return maxDepth
}

// CountArithmeticOps counts + - * / % and ~/ in a body.
func CountArithmeticOps(body string) int {
	if body == "" {
		return 0
	}
	cleaned := parser.StripStringsAndComments(body)
	count := 0
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		if c == '~' && i+1 < len(cleaned) && cleaned[i+1] == '/' {
			count++
			i++
			continue
		}
		if (c == '+' || c == '-' || c == '*' || c == '/' || c == '%') &&
			(i == 0 || cleaned[i-1] != '/') {
			count++
		}
	}
	return count
}

// CountAssignments counts '=' that are assignments, skipping comparison
// (== != <= >=) and arrow (=>) uses. Compound assignments count once.
func CountAssignments(body string) int {
	if body == "" {
		return 0
	}
	cleaned := parser.StripStringsAndComments(body)
	count := 0
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '=' {
			continue
		}
		if i > 0 {
			switch cleaned[i-1] {
			case '=', '!', '<', '>':
				continue
			}
		}
		if i+1 < len(cleaned) && (cleaned[i+1] == '=' || cleaned[i+1] == '>') {
			continue
		}
		count++
	}
	return count
}

// slocOf counts non-blank lines with comments removed but string content
// kept: a line holding only a long literal is still a statement line.
func slocOf(text string) int {
	cleaned := parser.StripComments(text)
	count := 0
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// ComputeFunctionRecords builds one record per function and method of a
// parsed file. Pure; safe to run per-file in parallel.
func ComputeFunctionRecords(file *parser.SourceFile) []FunctionRecord {
	fns := file.AllFunctions()
	records := make([]FunctionRecord, 0, len(fns))

	for _, fn := range fns {
		cyclo := Cyclomatic(fn.Body)
		hal := ComputeHalstead(fn.Text)
		loc := parser.CountLines(fn.Text)
		sloc := slocOf(fn.Text)

		commentLines := loc - sloc
		if commentLines < 0 {
			commentLines = 0
		}

		records = append(records, FunctionRecord{
			Path:               file.Path,
			Module:             file.Module,
			ClassName:          fn.ClassName,
			Name:               fn.Name,
			LineStart:          fn.LineStart,
			LineEnd:            fn.LineEnd,
			Cyclo:              cyclo,
			HalsteadVolume:     round2(hal.Volume()),
			HalsteadVocabulary: hal.Vocabulary(),
			HalsteadLength:     hal.Length(),
			LOC:                loc,
			SLOC:               sloc,
			MI:                 round2(MaintainabilityIndex(cyclo, hal.Volume(), loc)),
			MaxNesting:         MaxNesting(fn.Body),
			Params:             len(fn.Parameters),
			ArithmeticOps:      CountArithmeticOps(fn.Body),
			Assignments:        CountAssignments(fn.Body),
			CommentLines:       commentLines,
		})
	}

	return records
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
