package app

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"dartscope/internal/core/config"
	"dartscope/internal/core/errors"
	"dartscope/internal/engine/deadcode"
	"dartscope/internal/engine/duplication"
	"dartscope/internal/engine/metrics"
	"dartscope/internal/engine/parser"
	"dartscope/internal/engine/scoring"
)

// Analyzer wires the whole pipeline together for one project.
type Analyzer struct {
	cfg      *config.Config
	scanner  *Scanner
	strategy parser.Strategy
	scorer   *scoring.Scorer
	detector *duplication.Detector
}

// Result is the complete output of one analysis run.
type Result struct {
	Strategy    string                   `json:"strategy"`
	Files       []metrics.FileRecord     `json:"files"`
	Functions   []metrics.FunctionRecord `json:"functions"`
	Classes     []metrics.ClassRecord    `json:"classes"`
	DeadCode    []deadcode.Result        `json:"dead_code"`
	Duplication *duplication.Result      `json:"duplication"`
	Modules     []ModuleSummary          `json:"modules"`
	Project     ProjectSummary           `json:"project"`
	ParseErrors int                      `json:"parse_errors"`
}

// NewAnalyzer validates configuration up front: strategy selection and
// weight tables fail here, before any file is touched.
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	scanner, err := NewScanner(cfg.Root, cfg.Discovery)
	if err != nil {
		return nil, err
	}
	strategy, err := parser.Select(cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := scoring.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg:      cfg,
		scanner:  scanner,
		strategy: strategy,
		scorer:   scorer,
		detector: duplication.NewDetector(cfg.Duplication),
	}, nil
}

// Run executes one full analysis: scan, parse all files in parallel,
// cross the dead-code barrier, compute and score metrics per file, detect
// duplicates from raw text concurrently, then aggregate.
func (a *Analyzer) Run(ctx context.Context) (*Result, error) {
	paths, err := a.scanner.Scan()
	if err != nil {
		return nil, err
	}
	pubspecs, err := a.scanner.FindPubspecs()
	if err != nil {
		return nil, err
	}
	modules := NewModuleIndex(pubspecs)

	slog.Info("analysis started",
		"files", len(paths), "modules", len(modules.internal), "strategy", a.strategy.Name())

	sources := make([]string, len(paths))
	models := make([]*parser.SourceFile, len(paths))
	var parseErrors atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", path, "error", err)
				parseErrors.Add(1)
				return nil
			}
			sources[i] = string(data)

			sf, err := a.strategy.Parse(path, data)
			if err != nil {
				if errors.IsRecoverable(err) {
					slog.Warn("parse failed, file excluded from structural metrics",
						"path", path, "error", err)
					parseErrors.Add(1)
					return nil
				}
				return err
			}
			modules.Annotate(sf)
			models[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Duplication only needs raw text; it runs alongside the structural
	// stages from here on.
	var dup *duplication.Result
	dg, _ := errgroup.WithContext(ctx)
	dg.Go(func() error {
		inputs := make([]duplication.FileSource, 0, len(paths))
		for i, p := range paths {
			if sources[i] != "" {
				inputs = append(inputs, duplication.FileSource{Path: p, Source: sources[i]})
			}
		}
		res, err := a.detector.Detect(inputs)
		if err != nil {
			if !errors.IsCode(err, errors.CodeDuplicateOverflow) {
				return err
			}
			slog.Warn("duplicate pair list truncated", "max_pairs", a.cfg.Duplication.MaxPairs)
		}
		dup = res
		return nil
	})

	// Barrier: every file is parsed before the class index and the
	// dead-code phases see any of them.
	parsed := make([]*parser.SourceFile, 0, len(models))
	for _, sf := range models {
		if sf != nil {
			parsed = append(parsed, sf)
		}
	}
	classIndex := metrics.BuildClassIndex(parsed)

	deadAnalyzer := deadcode.NewAnalyzer()
	for _, sf := range parsed {
		deadAnalyzer.Collect(sf)
	}
	dead := deadAnalyzer.Resolve()
	deadByPath := make(map[string]deadcode.Result, len(dead))
	for _, d := range dead {
		deadByPath[d.Path] = d
	}

	res := &Result{
		Strategy:    a.strategy.Name(),
		Files:       make([]metrics.FileRecord, len(parsed)),
		DeadCode:    dead,
		ParseErrors: int(parseErrors.Load()),
	}
	fnsByFile := make([][]metrics.FunctionRecord, len(parsed))
	clsByFile := make([][]metrics.ClassRecord, len(parsed))

	mg, _ := errgroup.WithContext(ctx)
	mg.SetLimit(runtime.GOMAXPROCS(0))
	for i, sf := range parsed {
		mg.Go(func() error {
			functions := metrics.ComputeFunctionRecords(sf)
			classes := metrics.ComputeClassRecords(sf, classIndex)
			file := metrics.ComputeFileRecord(sf, functions, modules.Internal())

			if d, ok := deadByPath[sf.Path]; ok {
				file.DeadCodeCount = d.Count
				file.DeadCodeSymbols = d.Symbols
			}

			for j := range functions {
				a.scorer.ScoreFunction(&functions[j])
			}
			for j := range classes {
				a.scorer.ScoreClass(&classes[j])
			}
			a.scorer.ScoreFile(&file, functions, classes)

			res.Files[i] = file
			fnsByFile[i] = functions
			clsByFile[i] = classes
			return nil
		})
	}
	if err := mg.Wait(); err != nil {
		return nil, err
	}
	if err := dg.Wait(); err != nil {
		return nil, err
	}
	res.Duplication = dup

	// parsed is in scan order, so the flattened slices stay sorted by
	// path and line.
	for i := range parsed {
		res.Functions = append(res.Functions, fnsByFile[i]...)
		res.Classes = append(res.Classes, clsByFile[i]...)
	}

	res.Modules = SummarizeModules(res.Files, res.Functions, res.Classes, a.cfg)
	res.Project = SummarizeProject(res, a.cfg)

	slog.Info("analysis finished",
		"files", len(res.Files),
		"functions", len(res.Functions),
		"classes", len(res.Classes),
		"parse_errors", res.ParseErrors,
		"duplicate_pairs", len(res.Duplication.Pairs))
	return res, nil
}
