package scoring

import (
	"math"

	"dartscope/internal/core/config"
)

// CompositeScore blends normalized MI, cyclomatic, FPY and technical debt
// density into a 0..100 score, rounded to one decimal.
func CompositeScore(miAvg, ccAvg, fpy, tdPerKLOC float64, cfg config.Rating) float64 {
	normMI := clamp100(miAvg)
	normCC := clamp100((1 - ccAvg/cfg.CCMax) * 100)
	normFPY := clamp100(fpy * 100)
	normTD := clamp100((1 - tdPerKLOC/cfg.TDMax) * 100)

	score := cfg.WeightMI*normMI +
		cfg.WeightCC*normCC +
		cfg.WeightFPY*normFPY +
		cfg.WeightTD*normTD

	return math.Round(clamp100(score)*10) / 10
}

// Grade maps a composite score onto the A..E scale.
func Grade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "E"
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
