package metrics

import (
	"regexp"
	"strconv"
	"strings"

	"dartscope/internal/engine/parser"
)

// Smells holds the file-level smell counts.
type Smells struct {
	StaticMembers    int `json:"static_members"`
	HardcodedStrings int `json:"hardcoded_strings"`
	MagicNumbers     int `json:"magic_numbers"`
}

var (
	reStaticMember = regexp.MustCompile(`\bstatic\b`)
	reStringSQ     = regexp.MustCompile(`'(?:\\.|[^'\\])*'`)
	reStringDQ     = regexp.MustCompile(`"(?:\\.|[^"\\])*"`)
	reTripleSQ     = regexp.MustCompile(`(?s)'''.*?'''`)
	reTripleDQ     = regexp.MustCompile(`(?s)""".*?"""`)
	reNumberLit    = regexp.MustCompile(`-?\d+\.?\d*(?:[eE][+-]?\d+)?`)
)

// ComputeSmells scans one file's raw source for smell counts.
func ComputeSmells(source string) Smells {
	return Smells{
		StaticMembers:    countStaticMembers(source),
		HardcodedStrings: countStringLiterals(source),
		MagicNumbers:     countMagicNumbers(source),
	}
}

func countStaticMembers(source string) int {
	cleaned := parser.StripStringsAndComments(source)
	return len(reStaticMember.FindAllString(cleaned, -1))
}

// countStringLiterals counts non-trivial literals: triple-quoted strings
// with content, and single/double-quoted strings longer than one character.
func countStringLiterals(source string) int {
	s := parser.StripComments(source)

	count := 0
	for _, m := range reTripleSQ.FindAllString(s, -1) {
		if strings.TrimSpace(m[3:len(m)-3]) != "" {
			count++
		}
	}
	for _, m := range reTripleDQ.FindAllString(s, -1) {
		if strings.TrimSpace(m[3:len(m)-3]) != "" {
			count++
		}
	}

	s = reTripleSQ.ReplaceAllString(s, "")
	s = reTripleDQ.ReplaceAllString(s, "")

	for _, m := range reStringSQ.FindAllString(s, -1) {
		if len(m)-2 > 1 {
			count++
		}
	}
	for _, m := range reStringDQ.FindAllString(s, -1) {
		if len(m)-2 > 1 {
			count++
		}
	}
	return count
}

// countMagicNumbers counts numeric literals outside the trivial set
// {0, 1, 2, -1} and outside const declarations.
func countMagicNumbers(source string) int {
	cleaned := parser.StripStringsAndComments(source)

	count := 0
	for _, loc := range reNumberLit.FindAllStringIndex(cleaned, -1) {
		start, end := loc[0], loc[1]
		// Reject matches glued to identifiers or member access (v2, x.0).
		if start > 0 && (isWordByte(cleaned[start-1]) || cleaned[start-1] == '.') {
			// "x-5": the minus is subtraction, the digits still count.
			if cleaned[start] != '-' {
				continue
			}
			start++
		}
		if end < len(cleaned) && (isWordByte(cleaned[end]) || cleaned[end] == '.') {
			continue
		}

		val, err := strconv.ParseFloat(cleaned[start:end], 64)
		if err != nil {
			continue
		}
		if val == 0 || val == 1 || val == 2 || val == -1 {
			continue
		}

		lineFrom := start - 80
		if lineFrom < 0 {
			lineFrom = 0
		}
		prefix := cleaned[lineFrom:start]
		if idx := strings.LastIndexByte(prefix, '\n'); idx >= 0 {
			prefix = prefix[idx+1:]
		}
		if strings.Contains(prefix, "const ") {
			continue
		}
		count++
	}
	return count
}
