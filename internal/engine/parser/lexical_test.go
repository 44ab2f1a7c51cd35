package parser

import (
	"strings"
	"testing"
)

const shapeSource = `import 'dart:async';
import 'package:flutter/material.dart';
import '../util/helpers.dart';

abstract class Shape extends Base with Painter, Logger implements Drawable {
  final double width;
  double _height = 0;

  Shape(this.width);

  @override
  double area(double scale) {
    if (scale > 1) {
      return width * _height * scale;
    }
    return width * _height;
  }

  static int describe(int verbosity) {
    return verbosity;
  }

  double get height => _height;
}

mixin Painter {
  void paint() {}
}

int topLevel(int a, int b) {
  return a + b;
}
`

func parseShape(t *testing.T) *SourceFile {
	t.Helper()
	s := NewLexicalStrategy()
	file, err := s.Parse("lib/shape.dart", []byte(shapeSource))
	if err != nil {
		t.Fatal(err)
	}
	return file
}

func findClass(t *testing.T, file *SourceFile, name string) *Class {
	t.Helper()
	for i := range file.Classes {
		if file.Classes[i].Name == name {
			return &file.Classes[i]
		}
	}
	t.Fatalf("class %s not found (have %d classes)", name, len(file.Classes))
	return nil
}

func findMethod(t *testing.T, cls *Class, name string) *Function {
	t.Helper()
	for i := range cls.Methods {
		if cls.Methods[i].Name == name {
			return &cls.Methods[i]
		}
	}
	t.Fatalf("method %s not found on %s", name, cls.Name)
	return nil
}

func TestLexicalImports(t *testing.T) {
	file := parseShape(t)
	if len(file.Imports) != 3 {
		t.Fatalf("imports = %d, want 3", len(file.Imports))
	}
	if !file.Imports[0].IsDartCore {
		t.Error("dart:async not classified as core")
	}
	if !file.Imports[1].IsPackage || file.Imports[1].PackageName != "flutter" {
		t.Errorf("package import misclassified: %+v", file.Imports[1])
	}
	if !file.Imports[2].IsRelative {
		t.Error("relative import misclassified")
	}
}

func TestLexicalClassExtraction(t *testing.T) {
	file := parseShape(t)
	cls := findClass(t, file, "Shape")

	if !cls.IsAbstract {
		t.Error("abstract modifier missed")
	}
	if cls.Superclass != "Base" {
		t.Errorf("superclass = %q, want Base", cls.Superclass)
	}
	if len(cls.Mixins) != 2 || cls.Mixins[0] != "Painter" || cls.Mixins[1] != "Logger" {
		t.Errorf("mixins = %v", cls.Mixins)
	}
	if len(cls.Interfaces) != 1 || cls.Interfaces[0] != "Drawable" {
		t.Errorf("interfaces = %v", cls.Interfaces)
	}
	if cls.LineStart != 5 {
		t.Errorf("line start = %d, want 5", cls.LineStart)
	}

	fields := strings.Join(cls.Fields, ",")
	if !strings.Contains(fields, "width") || !strings.Contains(fields, "_height") {
		t.Errorf("fields = %v", cls.Fields)
	}
}

func TestLexicalMethods(t *testing.T) {
	file := parseShape(t)
	cls := findClass(t, file, "Shape")

	for _, m := range cls.Methods {
		if m.Name == "Shape" {
			t.Error("constructor attributed as method")
		}
	}

	area := findMethod(t, cls, "area")
	if !area.IsOverride {
		t.Error("@override annotation missed")
	}
	if len(area.Parameters) != 1 || area.Parameters[0] != "double scale" {
		t.Errorf("parameters = %v", area.Parameters)
	}
	if area.LineStart != 12 {
		t.Errorf("area line start = %d, want 12", area.LineStart)
	}
	if !strings.Contains(area.Body, "scale > 1") {
		t.Errorf("area body truncated: %q", area.Body)
	}

	describe := findMethod(t, cls, "describe")
	if !describe.IsStatic {
		t.Error("static modifier missed")
	}

	height := findMethod(t, cls, "height")
	if !height.IsGetter {
		t.Error("getter flag missed")
	}
	if !strings.Contains(height.Body, "_height") {
		t.Errorf("getter body = %q", height.Body)
	}
}

func TestLexicalMixinAndTopLevel(t *testing.T) {
	file := parseShape(t)

	painter := findClass(t, file, "Painter")
	if !painter.IsAbstract {
		t.Error("mixins count as abstract")
	}

	if len(file.Functions) != 1 {
		t.Fatalf("top-level functions = %d, want 1", len(file.Functions))
	}
	fn := file.Functions[0]
	if fn.Name != "topLevel" {
		t.Errorf("name = %q", fn.Name)
	}
	if len(fn.Parameters) != 2 {
		t.Errorf("parameters = %v", fn.Parameters)
	}
	if fn.ClassName != "" {
		t.Errorf("class name = %q, want empty", fn.ClassName)
	}
}

func TestLexicalQualifiedNames(t *testing.T) {
	file := parseShape(t)
	cls := findClass(t, file, "Shape")
	area := findMethod(t, cls, "area")
	if area.QualifiedName() != "Shape.area" {
		t.Errorf("qualified name = %q", area.QualifiedName())
	}
	all := file.AllFunctions()
	if len(all) < 4 {
		t.Errorf("AllFunctions = %d entries, want at least 4", len(all))
	}
}

func TestLexicalRejectsInvalidUTF8(t *testing.T) {
	s := NewLexicalStrategy()
	_, err := s.Parse("bad.dart", []byte{0xff, 0xfe, 0xfd})
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLexicalEnumAndExtension(t *testing.T) {
	src := `enum Color implements Comparable {
  red,
  green;
}

extension ColorX on Color {
  bool get isRed => this == Color.red;
}
`
	s := NewLexicalStrategy()
	file, err := s.Parse("lib/color.dart", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	color := findClass(t, file, "Color")
	if len(color.Interfaces) != 1 || color.Interfaces[0] != "Comparable" {
		t.Errorf("interfaces = %v", color.Interfaces)
	}
	ext := findClass(t, file, "ColorX")
	if len(ext.Methods) != 1 || ext.Methods[0].Name != "isRed" {
		t.Errorf("extension methods = %+v", ext.Methods)
	}
}
