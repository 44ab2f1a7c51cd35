package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/engine/parser"
)

func indexOf(files ...*parser.SourceFile) *ClassIndex {
	return BuildClassIndex(files)
}

func fileWithClasses(path string, classes ...parser.Class) *parser.SourceFile {
	return &parser.SourceFile{Path: path, Classes: classes}
}

func TestWMCSumsMethodComplexities(t *testing.T) {
	methods := make([]parser.Function, 10)
	for i := range methods {
		methods[i] = parser.Function{Name: "m", Body: ""}
	}
	file := fileWithClasses("lib/a.dart", parser.Class{
		Name: "Plain", LineStart: 1, LineEnd: 30, Methods: methods,
	})

	records := ComputeClassRecords(file, indexOf(file))
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].WMC, "ten bodies of complexity 1")
	assert.Equal(t, 10, records[0].NOM)
}

func TestDITChain(t *testing.T) {
	file := fileWithClasses("lib/a.dart",
		parser.Class{Name: "A", Superclass: "B"},
		parser.Class{Name: "B", Superclass: "C"},
		parser.Class{Name: "C"},
		parser.Class{Name: "D", Superclass: "StatelessWidget"},
		parser.Class{Name: "E", Superclass: "SomethingExternal"},
	)
	ix := indexOf(file)

	assert.Equal(t, 2, ix.DIT("A"))
	assert.Equal(t, 1, ix.DIT("B"))
	assert.Equal(t, 0, ix.DIT("C"))
	assert.Equal(t, 5, ix.DIT("D"), "known framework parent depth + 1")
	assert.Equal(t, 1, ix.DIT("E"), "unknown external parent is depth 1")
}

func TestDITCyclicInheritanceTerminates(t *testing.T) {
	file := fileWithClasses("lib/a.dart",
		parser.Class{Name: "A", Superclass: "B"},
		parser.Class{Name: "B", Superclass: "A"},
	)
	ix := indexOf(file)
	assert.LessOrEqual(t, ix.DIT("A"), 2)
}

func TestCBOFiltering(t *testing.T) {
	cls := parser.Class{
		Name: "Order",
		Text: `class Order {
  final Customer customer;
  final List<Item> items;
  T generic;
  static const STATUS_OK = 1;
  String label;
}`,
	}
	assert.Equal(t, 2, computeCBO(&cls), "only Customer and Item count")
}

func TestRFCCountsExternalInvocations(t *testing.T) {
	cls := parser.Class{
		Name: "Cart",
		Methods: []parser.Function{
			{Name: "update", Body: "validate(); total = compute(price);"},
			{Name: "compute", Body: "return price * 2;"},
		},
	}
	assert.Equal(t, 3, computeRFC(&cls), "2 own methods + validate")
}

func TestTCCFieldSharing(t *testing.T) {
	cls := parser.Class{
		Name:   "Box",
		Fields: []string{"_a", "_b"},
		Methods: []parser.Function{
			{Name: "m1", Body: "return _a;"},
			{Name: "m2", Body: "_a = 1;"},
			{Name: "m3", Body: "return _b;"},
		},
	}
	tcc, valid := computeTCC(&cls)
	assert.True(t, valid)
	assert.InDelta(t, 1.0/3.0, tcc, 1e-9)
}

func TestTCCNotApplicableBelowTwoMethods(t *testing.T) {
	cls := parser.Class{
		Name:    "Single",
		Methods: []parser.Function{{Name: "only", Body: "return 1;"}},
	}
	_, valid := computeTCC(&cls)
	assert.False(t, valid)

	file := fileWithClasses("lib/s.dart", cls)
	records := ComputeClassRecords(file, indexOf(file))
	require.Len(t, records, 1)
	assert.False(t, records[0].TCCValid)
}

func TestWOCPublicFunctionalShare(t *testing.T) {
	cls := parser.Class{
		Name:   "Gauge",
		Fields: []string{"count"},
		Methods: []parser.Function{
			{Name: "run"},
			{Name: "value", IsGetter: true},
			{Name: "_helper"},
		},
	}
	assert.InDelta(t, 1.0/3.0, computeWOC(&cls), 1e-9)
}

func TestNOAMAndNOOMAgainstSuperclass(t *testing.T) {
	file := fileWithClasses("lib/a.dart",
		parser.Class{
			Name: "Base",
			Methods: []parser.Function{
				{Name: "render"},
				{Name: "layout"},
			},
		},
		parser.Class{
			Name:       "Child",
			Superclass: "Base",
			LineStart:  10, LineEnd: 20,
			Methods: []parser.Function{
				{Name: "render", IsOverride: true},
				{Name: "extra"},
			},
		},
	)

	records := ComputeClassRecords(file, indexOf(file))
	require.Len(t, records, 2)

	var child *ClassRecord
	for i := range records {
		if records[i].Name == "Child" {
			child = &records[i]
		}
	}
	require.NotNil(t, child)
	assert.Equal(t, 1, child.NOAM, "only extra is new")
	assert.Equal(t, 1, child.NOOM)
	assert.Equal(t, 11, child.LOC)
}
