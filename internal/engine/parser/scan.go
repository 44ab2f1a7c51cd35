package parser

import "strings"

// Lexical scanning shared by both extraction strategies and the metric
// calculators. Dart string handling is the tricky part: single, double,
// triple and raw quoting, escape sequences, and ${} interpolation which
// nests code back inside a string.

type scanState int

const (
	stCode scanState = iota
	stLineComment
	stBlockComment
	stStringSQ  // '...'
	stStringDQ  // "..."
	stStringTSQ // '''...'''
	stStringTDQ // """..."""
	stRawSQ     // r'...'
	stRawDQ     // r"..."
	stRawTSQ    // r'''...'''
	stRawTDQ    // r"""..."""
)

func isEscaped(src string, pos int) bool {
	n := 0
	for p := pos - 1; p >= 0 && src[p] == '\\'; p-- {
		n++
	}
	return n%2 == 1
}

func tripleAt(src string, pos int, q byte) bool {
	return pos+2 < len(src) && src[pos] == q && src[pos+1] == q && src[pos+2] == q
}

// StripComments removes line and block comments while preserving strings
// and newlines, so line numbers stay correct.
func StripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	state := stCode
	var interpDepth []int
	var interpReturn []scanState
	i, n := 0, len(src)

	for i < n {
		c := src[i]

		if len(interpDepth) > 0 && state == stCode {
			if c == '{' {
				interpDepth[len(interpDepth)-1]++
				b.WriteByte(c)
				i++
				continue
			}
			if c == '}' {
				interpDepth[len(interpDepth)-1]--
				if interpDepth[len(interpDepth)-1] == 0 {
					interpDepth = interpDepth[:len(interpDepth)-1]
					state = interpReturn[len(interpReturn)-1]
					interpReturn = interpReturn[:len(interpReturn)-1]
				}
				b.WriteByte(c)
				i++
				continue
			}
		}

		switch state {
		case stCode:
			if c == '/' && i+1 < n && src[i+1] == '/' {
				state = stLineComment
				i += 2
				continue
			}
			if c == '/' && i+1 < n && src[i+1] == '*' {
				state = stBlockComment
				i += 2
				continue
			}
			if c == 'r' && i+1 < n && (src[i+1] == '\'' || src[i+1] == '"') {
				q := src[i+1]
				if tripleAt(src, i+1, q) {
					if q == '\'' {
						state = stRawTSQ
					} else {
						state = stRawTDQ
					}
					b.WriteString(src[i : i+4])
					i += 4
					continue
				}
				if q == '\'' {
					state = stRawSQ
				} else {
					state = stRawDQ
				}
				b.WriteString(src[i : i+2])
				i += 2
				continue
			}
			if (c == '\'' || c == '"') && tripleAt(src, i, c) {
				if c == '\'' {
					state = stStringTSQ
				} else {
					state = stStringTDQ
				}
				b.WriteString(src[i : i+3])
				i += 3
				continue
			}
			if c == '\'' {
				state = stStringSQ
				b.WriteByte(c)
				i++
				continue
			}
			if c == '"' {
				state = stStringDQ
				b.WriteByte(c)
				i++
				continue
			}
			b.WriteByte(c)
			i++

		case stLineComment:
			if c == '\n' {
				state = stCode
				b.WriteByte('\n')
			}
			i++

		case stBlockComment:
			if c == '*' && i+1 < n && src[i+1] == '/' {
				state = stCode
				i += 2
				continue
			}
			if c == '\n' {
				b.WriteByte('\n')
			}
			i++

		case stRawTSQ, stRawTDQ:
			q := byte('\'')
			if state == stRawTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) {
				state = stCode
				b.WriteString(src[i : i+3])
				i += 3
				continue
			}
			b.WriteByte(c)
			i++

		case stRawSQ, stRawDQ:
			q := byte('\'')
			if state == stRawDQ {
				q = '"'
			}
			if c == q {
				state = stCode
			}
			b.WriteByte(c)
			i++

		case stStringTSQ, stStringTDQ:
			q := byte('\'')
			if state == stStringTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) && !isEscaped(src, i) {
				state = stCode
				b.WriteString(src[i : i+3])
				i += 3
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				b.WriteString("${")
				i += 2
				continue
			}
			b.WriteByte(c)
			i++

		case stStringSQ, stStringDQ:
			q := byte('\'')
			if state == stStringDQ {
				q = '"'
			}
			if c == q && !isEscaped(src, i) {
				state = stCode
				b.WriteByte(c)
				i++
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				b.WriteString("${")
				i += 2
				continue
			}
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

// StripStringsAndComments removes comments and string contents, keeping
// code (including interpolation expressions) and code newlines. Line
// numbers of code lines are preserved.
func StripStringsAndComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	state := stCode
	var interpDepth []int
	var interpReturn []scanState
	i, n := 0, len(src)

	for i < n {
		c := src[i]

		if len(interpDepth) > 0 && state == stCode {
			if c == '{' {
				interpDepth[len(interpDepth)-1]++
				i++
				continue
			}
			if c == '}' {
				interpDepth[len(interpDepth)-1]--
				if interpDepth[len(interpDepth)-1] == 0 {
					interpDepth = interpDepth[:len(interpDepth)-1]
					state = interpReturn[len(interpReturn)-1]
					interpReturn = interpReturn[:len(interpReturn)-1]
				}
				i++
				continue
			}
		}

		switch state {
		case stCode:
			if c == '/' && i+1 < n {
				if src[i+1] == '/' {
					state = stLineComment
					i += 2
					continue
				}
				if src[i+1] == '*' {
					state = stBlockComment
					i += 2
					continue
				}
			}
			if c == 'r' && i+1 < n && (src[i+1] == '\'' || src[i+1] == '"') {
				q := src[i+1]
				if tripleAt(src, i+1, q) {
					if q == '\'' {
						state = stRawTSQ
					} else {
						state = stRawTDQ
					}
					i += 4
					continue
				}
				if q == '\'' {
					state = stRawSQ
				} else {
					state = stRawDQ
				}
				i += 2
				continue
			}
			if c == '\'' || c == '"' {
				if tripleAt(src, i, c) {
					if c == '\'' {
						state = stStringTSQ
					} else {
						state = stStringTDQ
					}
					i += 3
					continue
				}
				if c == '\'' {
					state = stStringSQ
				} else {
					state = stStringDQ
				}
				i++
				continue
			}
			b.WriteByte(c)
			i++

		case stLineComment:
			if c == '\n' {
				state = stCode
				b.WriteByte('\n')
			}
			i++

		case stBlockComment:
			if c == '*' && i+1 < n && src[i+1] == '/' {
				state = stCode
				i += 2
				continue
			}
			if c == '\n' {
				b.WriteByte('\n')
			}
			i++

		case stRawTSQ, stRawTDQ:
			q := byte('\'')
			if state == stRawTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) {
				state = stCode
				i += 3
				continue
			}
			i++

		case stRawSQ, stRawDQ:
			q := byte('\'')
			if state == stRawDQ {
				q = '"'
			}
			if c == q {
				state = stCode
			}
			i++

		case stStringTSQ, stStringTDQ:
			q := byte('\'')
			if state == stStringTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) && !isEscaped(src, i) {
				state = stCode
				i += 3
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				i += 2
				continue
			}
			i++

		case stStringSQ, stStringDQ:
			q := byte('\'')
			if state == stStringDQ {
				q = '"'
			}
			if c == q && !isEscaped(src, i) {
				state = stCode
				i++
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				i += 2
				continue
			}
			i++
		}
	}

	return b.String()
}

// FindBraceBlock locates the matching close brace for the open brace
// at start. Returns the text between the braces and the position just past
// the close brace. Strings, comments and ${} interpolation are honored.
// An unterminated block yields the remainder of src.
func FindBraceBlock(src string, start int) (string, int) {
	if start >= len(src) || src[start] != '{' {
		return "", start
	}

	depth := 0
	state := stCode
	var interpDepth []int
	var interpReturn []scanState
	i, n := start, len(src)

	for i < n {
		c := src[i]

		if len(interpDepth) > 0 && state == stCode {
			if c == '{' {
				interpDepth[len(interpDepth)-1]++
				i++
				continue
			}
			if c == '}' {
				interpDepth[len(interpDepth)-1]--
				if interpDepth[len(interpDepth)-1] == 0 {
					interpDepth = interpDepth[:len(interpDepth)-1]
					state = interpReturn[len(interpReturn)-1]
					interpReturn = interpReturn[:len(interpReturn)-1]
				}
				i++
				continue
			}
		}

		switch state {
		case stCode:
			if c == '/' && i+1 < n {
				if src[i+1] == '/' {
					state = stLineComment
					i += 2
					continue
				}
				if src[i+1] == '*' {
					state = stBlockComment
					i += 2
					continue
				}
			}
			if c == 'r' && i+1 < n && (src[i+1] == '\'' || src[i+1] == '"') {
				q := src[i+1]
				if tripleAt(src, i+1, q) {
					if q == '\'' {
						state = stRawTSQ
					} else {
						state = stRawTDQ
					}
					i += 4
					continue
				}
				if q == '\'' {
					state = stRawSQ
				} else {
					state = stRawDQ
				}
				i += 2
				continue
			}
			if c == '\'' || c == '"' {
				if tripleAt(src, i, c) {
					if c == '\'' {
						state = stStringTSQ
					} else {
						state = stStringTDQ
					}
					i += 3
					continue
				}
				if c == '\'' {
					state = stStringSQ
				} else {
					state = stStringDQ
				}
				i++
				continue
			}
			if c == '{' {
				depth++
				i++
				continue
			}
			if c == '}' {
				depth--
				if depth == 0 {
					return src[start+1 : i], i + 1
				}
				i++
				continue
			}
			i++

		case stLineComment:
			if c == '\n' {
				state = stCode
			}
			i++

		case stBlockComment:
			if c == '*' && i+1 < n && src[i+1] == '/' {
				state = stCode
				i += 2
				continue
			}
			i++

		case stRawTSQ, stRawTDQ:
			q := byte('\'')
			if state == stRawTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) {
				state = stCode
				i += 3
				continue
			}
			i++

		case stRawSQ, stRawDQ:
			q := byte('\'')
			if state == stRawDQ {
				q = '"'
			}
			if c == q {
				state = stCode
			}
			i++

		case stStringTSQ, stStringTDQ:
			q := byte('\'')
			if state == stStringTDQ {
				q = '"'
			}
			if tripleAt(src, i, q) && !isEscaped(src, i) {
				state = stCode
				i += 3
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				i += 2
				continue
			}
			i++

		case stStringSQ, stStringDQ:
			q := byte('\'')
			if state == stStringDQ {
				q = '"'
			}
			if c == q && !isEscaped(src, i) {
				state = stCode
				i++
				continue
			}
			if c == '$' && i+1 < n && src[i+1] == '{' && !isEscaped(src, i) {
				interpDepth = append(interpDepth, 1)
				interpReturn = append(interpReturn, state)
				state = stCode
				i += 2
				continue
			}
			i++
		}
	}

	return src[start+1:], len(src)
}

// CountLines counts physical lines the way text editors do.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(text, "\n"), "\n"))
}

// CountSLOC counts source lines: blank lines and lines that are entirely
// comment or string content do not count.
func CountSLOC(src string) int {
	cleaned := StripStringsAndComments(src)
	count := 0
	for _, line := range strings.Split(cleaned, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// stripNestedBlocks removes brace-delimited blocks from the top level of a
// class body, leaving only class-level declarations (fields, signatures).
// Used by the lexical strategy to extract fields without scanning method
// bodies.
func stripNestedBlocks(body string) string {
	var b strings.Builder
	b.Grow(len(body))
	i, n := 0, len(body)

	for i < n {
		c := body[i]

		if c == '/' && i+1 < n && body[i+1] == '/' {
			j := strings.IndexByte(body[i:], '\n')
			if j < 0 {
				break
			}
			b.WriteByte('\n')
			i += j + 1
			continue
		}
		if c == '/' && i+1 < n && body[i+1] == '*' {
			j := strings.Index(body[i+2:], "*/")
			if j < 0 {
				break
			}
			i += j + 4
			continue
		}
		if c == 'r' && i+1 < n && (body[i+1] == '\'' || body[i+1] == '"') {
			q := body[i+1]
			if tripleAt(body, i+1, q) {
				j := strings.Index(body[i+4:], strings.Repeat(string(q), 3))
				if j < 0 {
					break
				}
				i += j + 7
				continue
			}
			j := strings.IndexByte(body[i+2:], q)
			if j < 0 {
				break
			}
			i += j + 3
			continue
		}
		if c == '\'' || c == '"' {
			if tripleAt(body, i, c) {
				end := strings.Repeat(string(c), 3)
				j := i + 3
				for j < n && !(strings.HasPrefix(body[j:], end) && !isEscaped(body, j)) {
					j++
				}
				if j >= n {
					break
				}
				i = j + 3
				continue
			}
			j := i + 1
			for j < n && !(body[j] == c && !isEscaped(body, j)) {
				j++
			}
			if j >= n {
				break
			}
			i = j + 1
			continue
		}
		if c == '{' {
			// A method or initializer body: skip it entirely.
			_, end := FindBraceBlock(body, i)
			b.WriteByte(';')
			i = end
			continue
		}

		b.WriteByte(c)
		i++
	}

	return b.String()
}

// lineAt converts a byte offset into a 1-based line number.
func lineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}
