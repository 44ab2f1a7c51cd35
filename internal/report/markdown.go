package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"dartscope/internal/core/errors"
	"dartscope/internal/engine/metrics"
)

func writeMarkdown(env *Envelope, path string) error {
	var b strings.Builder
	res := env.Result

	b.WriteString("---\n")
	b.WriteString("title: Dart Metrics Report\n")
	b.WriteString("run_id: " + env.RunID + "\n")
	b.WriteString("generated_at: " + env.GeneratedAt.Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Dart Metrics Report\n\n")
	fmt.Fprintf(&b, "Project grade: **%s** (score %.1f)\n\n", res.Project.Grade, res.Project.Score)

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Modules | Files | Classes | Functions | LOC | Parse errors |\n")
	fmt.Fprintf(&b, "| --- | --- | --- | --- | --- | --- |\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d | %d |\n\n",
		res.Project.ModulesCount, res.Project.FilesCount, res.Project.ClassesCount,
		res.Project.FunctionsCount, res.Project.LOCTotal, res.ParseErrors)

	fmt.Fprintf(&b, "Technical debt: %.1f hours (%.1f working days)\n\n",
		res.Project.TechnicalDebt.TotalHours, res.Project.TechnicalDebt.TotalDays)

	b.WriteString("## Modules\n\n")
	b.WriteString("| Module | Files | Functions | Grade | Score | Debt (h) |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, m := range res.Modules {
		name := m.Module
		if name == "" {
			name = "(unattributed)"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %s | %.1f | %.1f |\n",
			name, m.FilesCount, m.FunctionsCount, m.Grade, m.Score, m.TechnicalDebt.TotalHours)
	}
	b.WriteString("\n")

	writeWorstFunctions(&b, res.Functions)
	writeDuplication(&b, env)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "writing markdown report")
	}
	return nil
}

func writeWorstFunctions(b *strings.Builder, functions []metrics.FunctionRecord) {
	worst := make([]metrics.FunctionRecord, len(functions))
	copy(worst, functions)
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].Cyclo > worst[j].Cyclo })
	if len(worst) > 10 {
		worst = worst[:10]
	}
	if len(worst) == 0 {
		return
	}

	b.WriteString("## Most complex functions\n\n")
	b.WriteString("| Function | Path | CC | MI | LOC |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, fn := range worst {
		name := fn.Name
		if fn.ClassName != "" {
			name = fn.ClassName + "." + fn.Name
		}
		fmt.Fprintf(b, "| %s | %s:%d | %d | %.1f | %d |\n",
			name, fn.Path, fn.LineStart, fn.Cyclo, fn.MI, fn.LOC)
	}
	b.WriteString("\n")
}

func writeDuplication(b *strings.Builder, env *Envelope) {
	dup := env.Result.Duplication
	if dup == nil {
		return
	}
	b.WriteString("## Duplication\n\n")
	fmt.Fprintf(b, "%.2f%% of tokens duplicated across %d pair(s)",
		dup.DuplicationPct, len(dup.Pairs))
	if dup.Truncated {
		b.WriteString(" (list truncated)")
	}
	b.WriteString("\n\n")

	limit := len(dup.Pairs)
	if limit > 10 {
		limit = 10
	}
	for _, p := range dup.Pairs[:limit] {
		fmt.Fprintf(b, "- %s:%d-%d and %s:%d-%d (%d tokens)\n",
			p.BlockA.Path, p.BlockA.LineStart, p.BlockA.LineEnd,
			p.BlockB.Path, p.BlockB.LineStart, p.BlockB.LineEnd,
			p.TokenCount)
	}
	if limit > 0 {
		b.WriteString("\n")
	}
}
