package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
	"dartscope/internal/engine/metrics"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(config.Default())
	require.NoError(t, err)
	return s
}

func TestNewRejectsUnbalancedWMFPWeights(t *testing.T) {
	cfg := config.Default()
	cfg.WMFP.FlowComplexity += 0.2

	s, err := New(cfg)
	assert.Nil(t, s)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))

	// Weights must never be renormalized behind the caller's back.
	assert.InDelta(t, 1.2, cfg.WMFP.Sum(), 1e-9)
}

func TestNewRejectsUnbalancedFPYAndRatingWeights(t *testing.T) {
	cfg := config.Default()
	cfg.FPY.WeightSmells = 0.9
	_, err := New(cfg)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))

	cfg = config.Default()
	cfg.Rating.WeightTD = 0.5
	_, err = New(cfg)
	assert.True(t, errors.IsCode(err, errors.CodeConfiguration))
}

func TestScoreFunctionClean(t *testing.T) {
	s := newScorer(t)
	rec := metrics.FunctionRecord{
		Cyclo:              2,
		HalsteadVocabulary: 10,
		HalsteadLength:     20,
		ArithmeticOps:      1,
		Params:             2,
		Assignments:        3,
		MaxNesting:         1,
		LOC:                10,
		SLOC:               8,
		CommentLines:       2,
		MI:                 80,
	}
	s.ScoreFunction(&rec)

	want := 0.30*2 +
		0.20*math.Log(11) +
		0.10*math.Log(21) +
		0.05*1 +
		0.10*5 +
		0.15*1*(10.0/8.0) +
		0.05*2
	assert.InDelta(t, want, rec.WMFP, 0.01)
	assert.Equal(t, 1, rec.FPY)
	assert.Equal(t, 0.0, rec.TechnicalDebtMinutes)
}

func TestScoreFunctionComplexityDebt(t *testing.T) {
	s := newScorer(t)
	rec := metrics.FunctionRecord{
		Cyclo: 25,
		LOC:   30,
		SLOC:  30,
		MI:    70,
	}
	s.ScoreFunction(&rec)

	assert.Equal(t, 0, rec.FPY)
	// Five points over the cyclomatic ceiling at ten minutes each.
	assert.Equal(t, 50.0, rec.TechnicalDebtMinutes)
}

func TestScoreFunctionZeroSLOCRatio(t *testing.T) {
	s := newScorer(t)
	rec := metrics.FunctionRecord{Cyclo: 1, MaxNesting: 2, LOC: 3, SLOC: 0, MI: 100}
	s.ScoreFunction(&rec)

	want := 0.30*1 + 0.15*2*1.0
	assert.InDelta(t, want, rec.WMFP, 0.01)
}

func TestScoreClassSkipsCohesionGateWhenInvalid(t *testing.T) {
	s := newScorer(t)
	rec := metrics.ClassRecord{WMC: 5, CBO: 2, TCC: 0, TCCValid: false, NOM: 1, WOC: 1}
	s.ScoreClass(&rec)

	assert.Equal(t, 1, rec.FPY)
	assert.Equal(t, 0.0, rec.TechnicalDebtMinutes)
}

func TestScoreClassLowCohesion(t *testing.T) {
	s := newScorer(t)
	rec := metrics.ClassRecord{WMC: 5, CBO: 2, TCC: 0.1, TCCValid: true, NOM: 3, WOC: 1}
	s.ScoreClass(&rec)

	assert.Equal(t, 0, rec.FPY)
	assert.Equal(t, 60.0, rec.TechnicalDebtMinutes)
}

func TestScoreClassGodClass(t *testing.T) {
	s := newScorer(t)
	rec := metrics.ClassRecord{WMC: 60, CBO: 12, DIT: 6, TCC: 0.5, TCCValid: true, NOM: 10, WOC: 1}
	s.ScoreClass(&rec)

	assert.Equal(t, 0, rec.FPY)
	// CBO excess 2*20 + DIT excess 2*30 + god class 120.
	assert.Equal(t, 220.0, rec.TechnicalDebtMinutes)
}

func TestFileFPYRedistributesClassWeight(t *testing.T) {
	cfg := config.Default()
	file := metrics.FileRecord{NOI: 1}
	functions := []metrics.FunctionRecord{{FPY: 0}}

	got := fileFPY(&file, functions, nil, cfg.FPY)
	// Functions absorb the class weight: 0.8*0 + 0.2*1.
	assert.InDelta(t, 0.2, got, 1e-9)
}

func TestFileFPYEmptyFileIsClean(t *testing.T) {
	cfg := config.Default()
	file := metrics.FileRecord{}

	got := fileFPY(&file, nil, nil, cfg.FPY)
	assert.Equal(t, 1.0, got)
}

func TestFileFPYSmellGates(t *testing.T) {
	cfg := config.Default()
	file := metrics.FileRecord{NOI: 30, MagicNumbers: 10, HardcodedStrings: 20, DeadCodeCount: 3}

	got := fileFPY(&file, nil, nil, cfg.FPY)
	assert.Equal(t, 0.5, got)
}

func TestScoreFileAggregates(t *testing.T) {
	s := newScorer(t)
	file := metrics.FileRecord{SLOC: 100, LOC: 120, MIAvg: 80}
	functions := []metrics.FunctionRecord{
		{Cyclo: 2, FPY: 1, WMFP: 1.5, TechnicalDebtMinutes: 10},
		{Cyclo: 4, FPY: 1, WMFP: 2.5, TechnicalDebtMinutes: 0},
	}
	classes := []metrics.ClassRecord{
		{FPY: 1, TCC: 1, TCCValid: true, TechnicalDebtMinutes: 20},
	}
	s.ScoreFile(&file, functions, classes)

	assert.Equal(t, 4.0, file.WMFP)
	assert.InDelta(t, 0.04, file.WMFPDensity, 1e-9)
	assert.Equal(t, 30.0, file.TechnicalDebtMinutes)
	assert.Equal(t, 1.0, file.FPY)

	// 0.3*80 + 0.25*(1-3/30)*100 + 0.25*100 + 0.2*0 with debt density 300.
	assert.InDelta(t, 71.5, file.Score, 0.01)
	assert.Equal(t, "B", file.Grade)
}

func TestCompositeScoreClamps(t *testing.T) {
	cfg := config.Default().Rating

	assert.Equal(t, 0.0, CompositeScore(-50, 1000, -1, 1e6, cfg))

	perfect := CompositeScore(100, 0, 1, 0, cfg)
	assert.Equal(t, 100.0, perfect)
}

func TestGradeBands(t *testing.T) {
	assert.Equal(t, "A", Grade(80))
	assert.Equal(t, "B", Grade(79.9))
	assert.Equal(t, "C", Grade(59.9))
	assert.Equal(t, "D", Grade(39.9))
	assert.Equal(t, "E", Grade(19.9))
}
