package metrics

import (
	"dartscope/internal/engine/parser"
)

// FileRecord aggregates per-file structure, imports, smells, and the
// statistics of the functions the file contains.
type FileRecord struct {
	Path     string `json:"path"`
	Module   string `json:"module"`
	Strategy string `json:"strategy"`

	LOC  int `json:"loc"`
	SLOC int `json:"sloc"`
	NOI  int `json:"noi"`
	NOEI int `json:"noei"`

	ClassesCount   int `json:"classes_count"`
	FunctionsCount int `json:"functions_count"`

	CycloSum          int     `json:"cyclo_sum"`
	CycloAvg          float64 `json:"cyclo_avg"`
	CycloMax          int     `json:"cyclo_max"`
	HalsteadVolumeAvg float64 `json:"halstead_volume_avg"`
	MIAvg             float64 `json:"mi_avg"`
	MIMin             float64 `json:"mi_min"`

	StaticMembers    int `json:"static_members"`
	HardcodedStrings int `json:"hardcoded_strings"`
	MagicNumbers     int `json:"magic_numbers"`

	// Filled in by the dead-code analyzer after the parse barrier.
	DeadCodeCount   int      `json:"dead_code_estimate"`
	DeadCodeSymbols []string `json:"dead_code_symbols,omitempty"`

	// Filled in by the scoring stage.
	WMFP                 float64 `json:"wmfp"`
	WMFPDensity          float64 `json:"wmfp_density"`
	FPY                  float64 `json:"fpy"`
	TechnicalDebtMinutes float64 `json:"technical_debt_minutes"`
	Score                float64 `json:"score"`
	Grade                string  `json:"grade"`
}

// ComputeFileRecord builds the file-level record. internalPackages is the
// set of package names owned by the scanned project; package imports
// outside it count toward NOEI.
func ComputeFileRecord(file *parser.SourceFile, functions []FunctionRecord, internalPackages map[string]bool) FileRecord {
	noei := 0
	for _, imp := range file.Imports {
		if imp.IsPackage && !internalPackages[imp.PackageName] {
			noei++
		}
	}

	smells := ComputeSmells(file.Source)

	rec := FileRecord{
		Path:             file.Path,
		Module:           file.Module,
		Strategy:         file.Strategy,
		LOC:              file.LOC,
		SLOC:             file.SLOC,
		NOI:              len(file.Imports),
		NOEI:             noei,
		ClassesCount:     len(file.Classes),
		FunctionsCount:   len(functions),
		MIAvg:            100,
		MIMin:            100,
		StaticMembers:    smells.StaticMembers,
		HardcodedStrings: smells.HardcodedStrings,
		MagicNumbers:     smells.MagicNumbers,
	}

	if len(functions) == 0 {
		return rec
	}

	var hvSum, miSum float64
	miMin := functions[0].MI
	for _, fn := range functions {
		rec.CycloSum += fn.Cyclo
		if fn.Cyclo > rec.CycloMax {
			rec.CycloMax = fn.Cyclo
		}
		hvSum += fn.HalsteadVolume
		miSum += fn.MI
		if fn.MI < miMin {
			miMin = fn.MI
		}
	}

	n := float64(len(functions))
	rec.CycloAvg = round2(float64(rec.CycloSum) / n)
	rec.HalsteadVolumeAvg = round2(hvSum / n)
	rec.MIAvg = round2(miSum / n)
	rec.MIMin = round2(miMin)
	return rec
}
