package scoring

import (
	"dartscope/internal/core/config"
	"dartscope/internal/engine/metrics"
)

// functionFPY is binary: 1 only when every function gate passes.
func functionFPY(rec *metrics.FunctionRecord, gates config.FunctionGates) int {
	pass := rec.Cyclo <= gates.MaxCyclo &&
		rec.MaxNesting <= gates.MaxNesting &&
		rec.MI >= gates.MinMI &&
		rec.Params <= gates.MaxParams &&
		rec.LOC <= gates.MaxLOC
	if pass {
		return 1
	}
	return 0
}

// classFPY is binary: 1 only when every class gate passes. The TCC gate
// is skipped for classes where cohesion is undefined (fewer than two
// instance methods).
func classFPY(rec *metrics.ClassRecord, gates config.ClassGates) int {
	pass := rec.WMC <= gates.MaxWMC &&
		rec.CBO <= gates.MaxCBO &&
		(!rec.TCCValid || rec.TCC >= gates.MinTCC) &&
		rec.NOM <= gates.MaxNOM &&
		rec.WOC >= gates.MinWOC
	if pass {
		return 1
	}
	return 0
}

// fileFPY combines the mean function FPY, mean class FPY and the file
// smell gates under the configured weights. When a file has no classes
// their weight is redistributed to functions, or to the smell gates when
// the file has no functions either.
func fileFPY(rec *metrics.FileRecord, functions []metrics.FunctionRecord, classes []metrics.ClassRecord, cfg config.FPY) float64 {
	fnFPY := 1.0
	if len(functions) > 0 {
		sum := 0
		for _, fn := range functions {
			sum += fn.FPY
		}
		fnFPY = float64(sum) / float64(len(functions))
	}

	clsFPY := 1.0
	if len(classes) > 0 {
		sum := 0
		for _, cls := range classes {
			sum += cls.FPY
		}
		clsFPY = float64(sum) / float64(len(classes))
	}

	gates := cfg.FileGates
	smellChecks := [...]bool{
		rec.NOI <= gates.MaxImports,
		rec.MagicNumbers <= gates.MaxMagicNumbers,
		rec.HardcodedStrings <= gates.MaxHardcodedStrings,
		rec.DeadCodeCount <= gates.MaxDeadCode,
	}
	passed := 0
	for _, ok := range smellChecks {
		if ok {
			passed++
		}
	}
	smellFPY := float64(passed) / float64(len(smellChecks))

	alpha := cfg.WeightFunctions
	beta := cfg.WeightClasses
	gamma := cfg.WeightSmells
	if total := alpha + beta + gamma; total > 0 {
		alpha /= total
		beta /= total
		gamma /= total
	}
	if len(classes) == 0 {
		if len(functions) > 0 {
			alpha += beta
		} else {
			gamma += beta
		}
		beta = 0
	}

	return round3(alpha*fnFPY + beta*clsFPY + gamma*smellFPY)
}
