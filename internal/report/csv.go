package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dartscope/internal/core/errors"
)

// writeCSV emits one file per record type.
func writeCSV(env *Envelope, dir string) error {
	if err := writeFunctionsCSV(env, filepath.Join(dir, "functions.csv")); err != nil {
		return err
	}
	if err := writeClassesCSV(env, filepath.Join(dir, "classes.csv")); err != nil {
		return err
	}
	return writeFilesCSV(env, filepath.Join(dir, "files.csv"))
}

func writeRows(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "creating csv report")
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeInternal, "writing csv header")
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeInternal, "writing csv rows")
	}
	return f.Close()
}

func writeFunctionsCSV(env *Envelope, path string) error {
	header := []string{
		"path", "module", "class", "function", "line_start", "line_end",
		"cyclo", "halstead_volume", "loc", "sloc", "mi",
		"max_nesting_level", "params", "wmfp", "fpy", "technical_debt_minutes",
	}
	rows := make([][]string, 0, len(env.Result.Functions))
	for _, fn := range env.Result.Functions {
		rows = append(rows, []string{
			fn.Path, fn.Module, fn.ClassName, fn.Name,
			strconv.Itoa(fn.LineStart), strconv.Itoa(fn.LineEnd),
			strconv.Itoa(fn.Cyclo), formatFloat(fn.HalsteadVolume),
			strconv.Itoa(fn.LOC), strconv.Itoa(fn.SLOC), formatFloat(fn.MI),
			strconv.Itoa(fn.MaxNesting), strconv.Itoa(fn.Params),
			formatFloat(fn.WMFP), strconv.Itoa(fn.FPY),
			formatFloat(fn.TechnicalDebtMinutes),
		})
	}
	return writeRows(path, header, rows)
}

func writeClassesCSV(env *Envelope, path string) error {
	header := []string{
		"path", "module", "class", "line_start", "line_end",
		"cbo", "dit", "noam", "noii", "nom", "noom", "rfc",
		"tcc", "woc", "wmc", "loc", "fpy", "technical_debt_minutes",
	}
	rows := make([][]string, 0, len(env.Result.Classes))
	for _, c := range env.Result.Classes {
		tcc := "n/a"
		if c.TCCValid {
			tcc = formatFloat(c.TCC)
		}
		rows = append(rows, []string{
			c.Path, c.Module, c.Name,
			strconv.Itoa(c.LineStart), strconv.Itoa(c.LineEnd),
			strconv.Itoa(c.CBO), strconv.Itoa(c.DIT), strconv.Itoa(c.NOAM),
			strconv.Itoa(c.NOII), strconv.Itoa(c.NOM), strconv.Itoa(c.NOOM),
			strconv.Itoa(c.RFC), tcc, formatFloat(c.WOC), strconv.Itoa(c.WMC),
			strconv.Itoa(c.LOC), strconv.Itoa(c.FPY),
			formatFloat(c.TechnicalDebtMinutes),
		})
	}
	return writeRows(path, header, rows)
}

func writeFilesCSV(env *Envelope, path string) error {
	header := []string{
		"path", "module", "loc", "sloc", "noi", "noei",
		"classes", "functions", "cyclo_avg", "mi_avg",
		"static_members", "hardcoded_strings", "magic_numbers",
		"dead_code_estimate", "wmfp", "fpy",
		"technical_debt_minutes", "score", "grade",
	}
	rows := make([][]string, 0, len(env.Result.Files))
	for _, f := range env.Result.Files {
		rows = append(rows, []string{
			f.Path, f.Module, strconv.Itoa(f.LOC), strconv.Itoa(f.SLOC),
			strconv.Itoa(f.NOI), strconv.Itoa(f.NOEI),
			strconv.Itoa(f.ClassesCount), strconv.Itoa(f.FunctionsCount),
			formatFloat(f.CycloAvg), formatFloat(f.MIAvg),
			strconv.Itoa(f.StaticMembers), strconv.Itoa(f.HardcodedStrings),
			strconv.Itoa(f.MagicNumbers), strconv.Itoa(f.DeadCodeCount),
			formatFloat(f.WMFP), formatFloat(f.FPY),
			formatFloat(f.TechnicalDebtMinutes), formatFloat(f.Score), f.Grade,
		})
	}
	return writeRows(path, header, rows)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
