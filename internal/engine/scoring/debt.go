package scoring

import (
	"dartscope/internal/core/config"
	"dartscope/internal/engine/metrics"
)

// functionDebt converts threshold exceedances into remediation minutes.
func functionDebt(rec *metrics.FunctionRecord, cfg *config.Config) float64 {
	w := cfg.Debt
	t := cfg.Thresholds
	debt := 0.0

	if rec.Cyclo > t.Cyclo.High {
		debt += float64(rec.Cyclo-t.Cyclo.High) * w.CycloExcessPerPoint
	}
	if rec.LOC > t.LOC.FunctionMax {
		debt += float64(rec.LOC-t.LOC.FunctionMax) * w.LOCExcessPerLine
	}
	if rec.MaxNesting > t.Nesting.Warning {
		debt += float64(rec.MaxNesting-t.Nesting.Warning) * w.NestingExcessPerLevel
	}
	if rec.Params > t.Params.Warning {
		debt += float64(rec.Params-t.Params.Warning) * w.ParamsExcessPerParam
	}
	return debt
}

func classDebt(rec *metrics.ClassRecord, cfg *config.Config) float64 {
	w := cfg.Debt
	t := cfg.Thresholds
	debt := 0.0

	if rec.CBO > t.CBO.Warning {
		debt += float64(rec.CBO-t.CBO.Warning) * w.CBOExcessPerPoint
	}
	if rec.DIT > t.DIT.Warning {
		debt += float64(rec.DIT-t.DIT.Warning) * w.DITExcessPerLevel
	}
	if rec.TCCValid && rec.NOM >= 2 && rec.TCC < t.TCC.Warning {
		debt += w.LowCohesionPenalty
	}
	if rec.WMC > t.WMC.Critical {
		debt += w.GodClassPenalty
	}
	return debt
}
