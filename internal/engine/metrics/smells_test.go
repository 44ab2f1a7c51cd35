package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dartscope/internal/engine/parser"
)

func TestSmellCounts(t *testing.T) {
	source := `class Config {
  static int counter = 0;
  final url = 'https://example.com';
  final retries = 42;
  const defaultPort = 8080; // fine, const context
}
`
	s := ComputeSmells(source)
	assert.Equal(t, 1, s.StaticMembers)
	assert.Equal(t, 1, s.HardcodedStrings)
	assert.Equal(t, 1, s.MagicNumbers, "42 counts, 0 is trivial, 8080 is const")
}

func TestMagicNumbersTrivialSetExcluded(t *testing.T) {
	s := ComputeSmells("var a = 0; var b = 1; var c = 2; var d = -1;")
	assert.Equal(t, 0, s.MagicNumbers)
}

func TestHardcodedStringsLengthFloor(t *testing.T) {
	s := ComputeSmells("var a = ''; var b = 'x'; var c = 'xy';")
	assert.Equal(t, 1, s.HardcodedStrings, "empty and single-char literals are not smells")
}

func TestStaticInsideStringNotCounted(t *testing.T) {
	s := ComputeSmells("final doc = 'static members are bad'; // static here too")
	assert.Equal(t, 0, s.StaticMembers)
}

func TestFileRecordImportsAndAggregation(t *testing.T) {
	file := &parser.SourceFile{
		Path:   "lib/app.dart",
		Module: "demo",
		Source: "",
		LOC:    40,
		SLOC:   30,
		Imports: []parser.Import{
			parser.ClassifyImport("dart:async"),
			parser.ClassifyImport("package:flutter/material.dart"),
			parser.ClassifyImport("package:demo/util.dart"),
			parser.ClassifyImport("../helpers.dart"),
		},
	}
	functions := []FunctionRecord{
		{Cyclo: 2, HalsteadVolume: 50, MI: 80},
		{Cyclo: 4, HalsteadVolume: 150, MI: 60},
	}
	internal := map[string]bool{"demo": true}

	rec := ComputeFileRecord(file, functions, internal)
	assert.Equal(t, 4, rec.NOI)
	assert.Equal(t, 1, rec.NOEI, "only flutter resolves externally")
	assert.Equal(t, 6, rec.CycloSum)
	assert.Equal(t, 3.0, rec.CycloAvg)
	assert.Equal(t, 4, rec.CycloMax)
	assert.Equal(t, 100.0, rec.HalsteadVolumeAvg)
	assert.Equal(t, 70.0, rec.MIAvg)
	assert.Equal(t, 60.0, rec.MIMin)
}

func TestFileRecordNoFunctions(t *testing.T) {
	file := &parser.SourceFile{Path: "lib/empty.dart", Source: ""}
	rec := ComputeFileRecord(file, nil, nil)
	assert.Equal(t, 100.0, rec.MIAvg)
	assert.Equal(t, 100.0, rec.MIMin)
	assert.Equal(t, 0.0, rec.CycloAvg)
}
