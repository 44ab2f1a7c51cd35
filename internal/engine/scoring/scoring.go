// Package scoring reduces MetricRecords to composite quality scores:
// WMFP, FPY, technical debt, and the letter rating. It never recomputes
// structural facts; everything it needs is already on the records.
package scoring

import (
	"math"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
	"dartscope/internal/engine/metrics"
)

// WeightEpsilon matches the config validator's tolerance.
const WeightEpsilon = 1e-6

// Scorer applies the configured weight tables and gates.
type Scorer struct {
	cfg *config.Config
}

// New verifies every weight table before any score is produced. A weight
// set that does not sum to 1.0 within epsilon aborts the run; weights are
// never silently renormalized.
func New(cfg *config.Config) (*Scorer, error) {
	if err := checkWeightSum("wmfp_weights", cfg.WMFP.Sum()); err != nil {
		return nil, err
	}
	if err := checkWeightSum("fpy", cfg.FPY.WeightSum()); err != nil {
		return nil, err
	}
	if err := checkWeightSum("rating", cfg.Rating.WeightSum()); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

func checkWeightSum(table string, sum float64) error {
	if math.Abs(sum-1.0) <= WeightEpsilon {
		return nil
	}
	return errors.AddContext(
		errors.Newf(errors.CodeConfiguration,
			"%s weights sum to %.6f, must sum to 1.0", table, sum),
		errors.CtxWeights, table)
}

// ScoreFunction fills WMFP, FPY and debt on a function record.
func (s *Scorer) ScoreFunction(rec *metrics.FunctionRecord) {
	rec.WMFP = computeWMFP(rec, s.cfg.WMFP)
	rec.FPY = functionFPY(rec, s.cfg.FPY.FunctionGates)
	rec.TechnicalDebtMinutes = round2(functionDebt(rec, s.cfg))
}

// ScoreClass fills FPY and debt on a class record.
func (s *Scorer) ScoreClass(rec *metrics.ClassRecord) {
	rec.FPY = classFPY(rec, s.cfg.FPY.ClassGates)
	rec.TechnicalDebtMinutes = round2(classDebt(rec, s.cfg))
}

// ScoreFile reduces the already-scored function and class records of one
// file into the file-level composite scores.
func (s *Scorer) ScoreFile(rec *metrics.FileRecord, functions []metrics.FunctionRecord, classes []metrics.ClassRecord) {
	var wmfp, debt float64
	for _, fn := range functions {
		wmfp += fn.WMFP
		debt += fn.TechnicalDebtMinutes
	}
	for _, cls := range classes {
		debt += cls.TechnicalDebtMinutes
	}

	rec.WMFP = round2(wmfp)
	if rec.SLOC > 0 {
		rec.WMFPDensity = round3(wmfp / float64(rec.SLOC))
	}
	rec.TechnicalDebtMinutes = round2(debt)
	rec.FPY = fileFPY(rec, functions, classes, s.cfg.FPY)

	rec.Score = s.RateFile(rec, functions)
	rec.Grade = Grade(rec.Score)
}

// RateFile computes the 0-100 composite score of a file.
func (s *Scorer) RateFile(rec *metrics.FileRecord, functions []metrics.FunctionRecord) float64 {
	ccAvg := rec.CycloAvg
	if len(functions) > 0 {
		sum := 0
		for _, fn := range functions {
			sum += fn.Cyclo
		}
		ccAvg = float64(sum) / float64(len(functions))
	}

	kloc := 1.0
	if rec.SLOC > 0 {
		kloc = float64(rec.SLOC) / 1000
	}
	tdDensity := rec.TechnicalDebtMinutes / kloc

	return CompositeScore(rec.MIAvg, ccAvg, rec.FPY, tdDensity, s.cfg.Rating)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
