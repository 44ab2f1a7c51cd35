package app

import (
	"math"
	"sort"

	"dartscope/internal/core/config"
	"dartscope/internal/engine/metrics"
	"dartscope/internal/engine/scoring"
)

// StatsSummary is the six-number summary used for every aggregated metric.
type StatsSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// ViolationCounts tallies threshold breaches per module.
type ViolationCounts struct {
	CycloHigh            int `json:"cyclo_high"`
	CycloVeryHigh        int `json:"cyclo_very_high"`
	MIPoor               int `json:"mi_poor"`
	MNLCritical          int `json:"mnl_critical"`
	ExcessiveParams      int `json:"excessive_params"`
	GodClasses           int `json:"god_classes"`
	LowCohesion          int `json:"low_cohesion"`
	HighCoupling         int `json:"high_coupling"`
	ExcessiveImports     int `json:"excessive_imports"`
	MagicNumbersHigh     int `json:"magic_numbers_high"`
	HardcodedStringsHigh int `json:"hardcoded_strings_high"`
	PotentialDeadCode    int `json:"potential_dead_code"`
}

func (v *ViolationCounts) add(o ViolationCounts) {
	v.CycloHigh += o.CycloHigh
	v.CycloVeryHigh += o.CycloVeryHigh
	v.MIPoor += o.MIPoor
	v.MNLCritical += o.MNLCritical
	v.ExcessiveParams += o.ExcessiveParams
	v.GodClasses += o.GodClasses
	v.LowCohesion += o.LowCohesion
	v.HighCoupling += o.HighCoupling
	v.ExcessiveImports += o.ExcessiveImports
	v.MagicNumbersHigh += o.MagicNumbersHigh
	v.HardcodedStringsHigh += o.HardcodedStringsHigh
	v.PotentialDeadCode += o.PotentialDeadCode
}

// TechnicalDebtSummary converts debt minutes into hours and eight-hour
// working days.
type TechnicalDebtSummary struct {
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	TotalDays    float64 `json:"total_days"`
}

func debtSummary(minutes float64) TechnicalDebtSummary {
	return TechnicalDebtSummary{
		TotalMinutes: round2(minutes),
		TotalHours:   round2(minutes / 60),
		TotalDays:    round2(minutes / 480),
	}
}

// ModuleSummary aggregates one Dart package.
type ModuleSummary struct {
	Module         string                  `json:"module"`
	FilesCount     int                     `json:"files_count"`
	ClassesCount   int                     `json:"classes_count"`
	FunctionsCount int                     `json:"functions_count"`
	LOCTotal       int                     `json:"loc_total"`
	SLOCTotal      int                     `json:"sloc_total"`
	Metrics        map[string]StatsSummary `json:"metrics_summary"`
	Violations     ViolationCounts         `json:"violations"`
	TechnicalDebt  TechnicalDebtSummary    `json:"technical_debt"`
	Score          float64                 `json:"score"`
	Grade          string                  `json:"grade"`
}

// ProjectSummary rolls every module up.
type ProjectSummary struct {
	ModulesCount   int                     `json:"modules_count"`
	FilesCount     int                     `json:"files_count"`
	ClassesCount   int                     `json:"classes_count"`
	FunctionsCount int                     `json:"functions_count"`
	LOCTotal       int                     `json:"loc_total"`
	SLOCTotal      int                     `json:"sloc_total"`
	Metrics        map[string]StatsSummary `json:"metrics_summary"`
	Violations     ViolationCounts         `json:"violations"`
	TechnicalDebt  TechnicalDebtSummary    `json:"technical_debt"`
	Score          float64                 `json:"score"`
	Grade          string                  `json:"grade"`
}

// SummarizeModules groups records by module and aggregates each group.
// Files outside any discovered package aggregate under the empty module
// name.
func SummarizeModules(files []metrics.FileRecord, functions []metrics.FunctionRecord, classes []metrics.ClassRecord, cfg *config.Config) []ModuleSummary {
	names := map[string]bool{}
	for _, f := range files {
		names[f.Module] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	out := make([]ModuleSummary, 0, len(sorted))
	for _, name := range sorted {
		var mf []metrics.FileRecord
		var mfn []metrics.FunctionRecord
		var mc []metrics.ClassRecord
		for _, f := range files {
			if f.Module == name {
				mf = append(mf, f)
			}
		}
		for _, fn := range functions {
			if fn.Module == name {
				mfn = append(mfn, fn)
			}
		}
		for _, c := range classes {
			if c.Module == name {
				mc = append(mc, c)
			}
		}
		out = append(out, summarizeGroup(name, mf, mfn, mc, cfg))
	}
	return out
}

func summarizeGroup(name string, files []metrics.FileRecord, functions []metrics.FunctionRecord, classes []metrics.ClassRecord, cfg *config.Config) ModuleSummary {
	ms := ModuleSummary{
		Module:         name,
		FilesCount:     len(files),
		ClassesCount:   len(classes),
		FunctionsCount: len(functions),
		Metrics:        map[string]StatsSummary{},
	}
	for _, f := range files {
		ms.LOCTotal += f.LOC
		ms.SLOCTotal += f.SLOC
	}

	if len(functions) > 0 {
		ms.Metrics["cyclo"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return float64(f.Cyclo) }))
		ms.Metrics["halvol"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return f.HalsteadVolume }))
		ms.Metrics["mi"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return f.MI }))
		ms.Metrics["mnl"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return float64(f.MaxNesting) }))
		ms.Metrics["nop"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return float64(f.Params) }))
		ms.Metrics["loc_function"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return float64(f.LOC) }))
		ms.Metrics["wmfp"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return f.WMFP }))
		ms.Metrics["fpy_function"] = computeStats(collect(functions, func(f metrics.FunctionRecord) float64 { return float64(f.FPY) }))
	}
	if len(classes) > 0 {
		ms.Metrics["cbo"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.CBO) }))
		ms.Metrics["dit"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.DIT) }))
		ms.Metrics["nom"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.NOM) }))
		ms.Metrics["rfc"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.RFC) }))
		ms.Metrics["tcc"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return c.TCC }))
		ms.Metrics["woc"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return c.WOC }))
		ms.Metrics["wmc"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.WMC) }))
		ms.Metrics["fpy_class"] = computeStats(collect(classes, func(c metrics.ClassRecord) float64 { return float64(c.FPY) }))
	}
	if len(files) > 0 {
		ms.Metrics["noi"] = computeStats(collect(files, func(f metrics.FileRecord) float64 { return float64(f.NOI) }))
		ms.Metrics["noei"] = computeStats(collect(files, func(f metrics.FileRecord) float64 { return float64(f.NOEI) }))
		ms.Metrics["wmfp_file"] = computeStats(collect(files, func(f metrics.FileRecord) float64 { return f.WMFP }))
		ms.Metrics["fpy_file"] = computeStats(collect(files, func(f metrics.FileRecord) float64 { return f.FPY }))
	}

	ms.Violations = countViolations(files, functions, classes, cfg)

	var minutes float64
	for _, fn := range functions {
		minutes += fn.TechnicalDebtMinutes
	}
	for _, c := range classes {
		minutes += c.TechnicalDebtMinutes
	}
	ms.TechnicalDebt = debtSummary(minutes)

	ms.Score, ms.Grade = rateGroup(ms, cfg)
	return ms
}

func countViolations(files []metrics.FileRecord, functions []metrics.FunctionRecord, classes []metrics.ClassRecord, cfg *config.Config) ViolationCounts {
	t := cfg.Thresholds
	var v ViolationCounts

	for _, fn := range functions {
		switch {
		case fn.Cyclo > t.Cyclo.VeryHigh:
			v.CycloVeryHigh++
		case fn.Cyclo > t.Cyclo.High:
			v.CycloHigh++
		}
		if fn.MI < t.MI.Poor {
			v.MIPoor++
		}
		if fn.MaxNesting > t.Nesting.Critical {
			v.MNLCritical++
		}
		if fn.Params > t.Params.Critical {
			v.ExcessiveParams++
		}
	}
	for _, c := range classes {
		if c.WMC > t.WMC.Critical {
			v.GodClasses++
		}
		if c.TCCValid && c.NOM >= 2 && c.TCC < t.TCC.Warning {
			v.LowCohesion++
		}
		if c.CBO > t.CBO.Critical {
			v.HighCoupling++
		}
	}
	for _, f := range files {
		if f.NOI > t.NOI.Critical {
			v.ExcessiveImports++
		}
		if f.MagicNumbers > cfg.Smells.MagicNumbersWarning {
			v.MagicNumbersHigh++
		}
		if f.HardcodedStrings > cfg.Smells.HardcodedStringsWarning {
			v.HardcodedStringsHigh++
		}
		if f.DeadCodeCount > cfg.Smells.DeadCodeWarning {
			v.PotentialDeadCode++
		}
	}
	return v
}

// rateGroup folds a summary into the composite score. Missing categories
// fall back to neutral midpoints so a module of pure data classes still
// gets a defensible grade.
func rateGroup(ms ModuleSummary, cfg *config.Config) (float64, string) {
	miAvg := 70.0
	ccAvg := 5.0
	fpyAvg := 0.8
	if s, ok := ms.Metrics["mi"]; ok {
		miAvg = s.Mean
	}
	if s, ok := ms.Metrics["cyclo"]; ok {
		ccAvg = s.Mean
	}
	if s, ok := ms.Metrics["fpy_function"]; ok {
		fpyAvg = s.Mean
	}

	kloc := 1.0
	if ms.LOCTotal > 0 {
		kloc = float64(ms.LOCTotal) / 1000
	}
	score := scoring.CompositeScore(miAvg, ccAvg, fpyAvg, ms.TechnicalDebt.TotalMinutes/kloc, cfg.Rating)
	return score, scoring.Grade(score)
}

// SummarizeProject rolls the per-module summaries up into one record.
func SummarizeProject(res *Result, cfg *config.Config) ProjectSummary {
	ps := ProjectSummary{
		ModulesCount: len(res.Modules),
		Metrics:      map[string]StatsSummary{},
	}
	var minutes float64
	for _, ms := range res.Modules {
		ps.FilesCount += ms.FilesCount
		ps.ClassesCount += ms.ClassesCount
		ps.FunctionsCount += ms.FunctionsCount
		ps.LOCTotal += ms.LOCTotal
		ps.SLOCTotal += ms.SLOCTotal
		ps.Violations.add(ms.Violations)
		minutes += ms.TechnicalDebt.TotalMinutes
	}
	ps.TechnicalDebt = debtSummary(minutes)

	if len(res.Functions) > 0 {
		ps.Metrics["cyclo"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return float64(f.Cyclo) }))
		ps.Metrics["halvol"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return f.HalsteadVolume }))
		ps.Metrics["mi"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return f.MI }))
		ps.Metrics["mnl"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return float64(f.MaxNesting) }))
		ps.Metrics["nop"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return float64(f.Params) }))
		ps.Metrics["fpy_function"] = computeStats(collect(res.Functions, func(f metrics.FunctionRecord) float64 { return float64(f.FPY) }))
	}
	if len(res.Classes) > 0 {
		ps.Metrics["cbo"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return float64(c.CBO) }))
		ps.Metrics["dit"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return float64(c.DIT) }))
		ps.Metrics["nom"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return float64(c.NOM) }))
		ps.Metrics["rfc"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return float64(c.RFC) }))
		ps.Metrics["tcc"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return c.TCC }))
		ps.Metrics["wmc"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return float64(c.WMC) }))
		ps.Metrics["woc"] = computeStats(collect(res.Classes, func(c metrics.ClassRecord) float64 { return c.WOC }))
	}
	if len(res.Files) > 0 {
		ps.Metrics["noi"] = computeStats(collect(res.Files, func(f metrics.FileRecord) float64 { return float64(f.NOI) }))
		ps.Metrics["noei"] = computeStats(collect(res.Files, func(f metrics.FileRecord) float64 { return float64(f.NOEI) }))
	}

	miAvg := 70.0
	ccAvg := 5.0
	fpyAvg := 0.8
	if s, ok := ps.Metrics["mi"]; ok {
		miAvg = s.Mean
	}
	if s, ok := ps.Metrics["cyclo"]; ok {
		ccAvg = s.Mean
	}
	if s, ok := ps.Metrics["fpy_function"]; ok {
		fpyAvg = s.Mean
	}
	kloc := 1.0
	if ps.LOCTotal > 0 {
		kloc = float64(ps.LOCTotal) / 1000
	}
	ps.Score = scoring.CompositeScore(miAvg, ccAvg, fpyAvg, ps.TechnicalDebt.TotalMinutes/kloc, cfg.Rating)
	ps.Grade = scoring.Grade(ps.Score)
	return ps
}

func collect[T any](items []T, f func(T) float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = f(it)
	}
	return out
}

func computeStats(values []float64) StatsSummary {
	if len(values) == 0 {
		return StatsSummary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	stdDev := 0.0
	if n > 1 {
		var variance float64
		for _, v := range sorted {
			variance += (v - mean) * (v - mean)
		}
		stdDev = math.Sqrt(variance / float64(n-1))
	}

	return StatsSummary{
		Mean:   round2(mean),
		Median: round2(percentile(sorted, 50)),
		P90:    round2(percentile(sorted, 90)),
		Min:    round2(sorted[0]),
		Max:    round2(sorted[n-1]),
		StdDev: round2(stdDev),
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []float64, pct float64) float64 {
	n := len(sorted)
	idx := pct / 100 * float64(n-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
