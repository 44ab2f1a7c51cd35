package parser

import (
	"strings"
	"testing"
)

func TestStripCommentsKeepsStringsAndLineCount(t *testing.T) {
	src := "var a = 1; // trailing REMOVE\n" +
		"/* REMOVE\n" +
		"   REMOVE */\n" +
		"var b = 'slashes // inside string';\n"

	out := StripComments(src)

	if strings.Contains(out, "REMOVE") {
		t.Errorf("comment text survived: %q", out)
	}
	if !strings.Contains(out, "'slashes // inside string'") {
		t.Errorf("string content was altered: %q", out)
	}
	if CountLines(out) != CountLines(src) {
		t.Errorf("line count changed: %d != %d", CountLines(out), CountLines(src))
	}
}

func TestStripCommentsInsideInterpolation(t *testing.T) {
	src := "var s = 'a ${x /* REMOVE */ + 1} b';\n"
	out := StripComments(src)

	if strings.Contains(out, "REMOVE") {
		t.Errorf("comment inside interpolation survived: %q", out)
	}
	if !strings.Contains(out, "${x") || !strings.Contains(out, "+ 1}") {
		t.Errorf("interpolation code lost: %q", out)
	}
}

func TestStripStringsKeepsInterpolationCode(t *testing.T) {
	src := "final s = \"hello ${a + b} world\";\n"
	out := StripStringsAndComments(src)

	if strings.Contains(out, "hello") || strings.Contains(out, "world") {
		t.Errorf("string content survived: %q", out)
	}
	if !strings.Contains(out, "a + b") {
		t.Errorf("interpolation code removed: %q", out)
	}
}

func TestStripStringsRawAndTriple(t *testing.T) {
	src := "var a = r'raw $notCode';\n" +
		"var b = '''multi\nline ${kept}\ntext''';\n" +
		"var c = 1;\n"
	out := StripStringsAndComments(src)

	if strings.Contains(out, "notCode") {
		t.Errorf("raw string interpolated: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("triple-quoted interpolation code removed: %q", out)
	}
	if !strings.Contains(out, "var c = 1;") {
		t.Errorf("trailing code lost after triple string: %q", out)
	}
}

func TestFindBraceBlock(t *testing.T) {
	src := "{ if (x) { y = '}'; } done }"
	body, end := FindBraceBlock(src, 0)

	if end != len(src) {
		t.Errorf("end = %d, want %d", end, len(src))
	}
	if !strings.Contains(body, "done") {
		t.Errorf("body truncated by brace inside string: %q", body)
	}
	if strings.HasPrefix(body, "{") || strings.HasSuffix(body, "}") {
		t.Errorf("body includes outer braces: %q", body)
	}
}

func TestFindBraceBlockUnterminated(t *testing.T) {
	src := "{ open forever"
	body, end := FindBraceBlock(src, 0)
	if end != len(src) {
		t.Errorf("end = %d, want %d", end, len(src))
	}
	if body != " open forever" {
		t.Errorf("body = %q", body)
	}
}

func TestCountSLOC(t *testing.T) {
	src := "int x = 1;\n" +
		"\n" +
		"// only a comment\n" +
		"int y = 2;\n"
	if got := CountSLOC(src); got != 2 {
		t.Errorf("CountSLOC = %d, want 2", got)
	}
	if got := CountLines(src); got != 4 {
		t.Errorf("CountLines = %d, want 4", got)
	}
}

func TestStripNestedBlocksLeavesDeclarations(t *testing.T) {
	body := "\n  final int width;\n" +
		"  int area() {\n    return width * 2;\n  }\n" +
		"  int _depth = 0;\n"
	out := stripNestedBlocks(body)

	if !strings.Contains(out, "width;") || !strings.Contains(out, "_depth") {
		t.Errorf("declarations lost: %q", out)
	}
	if strings.Contains(out, "return") {
		t.Errorf("method body survived: %q", out)
	}
}
