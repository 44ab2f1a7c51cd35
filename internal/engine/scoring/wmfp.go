package scoring

import (
	"math"

	"dartscope/internal/core/config"
	"dartscope/internal/engine/metrics"
)

// computeWMFP decomposes one function into eight weighted micro-components.
// Inline data is a file-level signal and contributes zero here.
func computeWMFP(rec *metrics.FunctionRecord, w config.WMFPWeights) float64 {
	ratio := 1.0
	if rec.SLOC > 0 {
		ratio = float64(rec.LOC) / float64(rec.SLOC)
	}

	v := w.FlowComplexity*float64(rec.Cyclo) +
		w.ObjectVocabulary*math.Log(1+float64(rec.HalsteadVocabulary)) +
		w.ObjectConjuration*math.Log(1+float64(rec.HalsteadLength)) +
		w.ArithmeticIntricacy*float64(rec.ArithmeticOps) +
		w.DataTransfer*float64(rec.Params+rec.Assignments) +
		w.CodeStructure*float64(rec.MaxNesting)*ratio +
		w.Comments*float64(rec.CommentLines)

	return round2(v)
}
