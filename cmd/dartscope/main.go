package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dartscope/internal/app"
	"dartscope/internal/core/config"
	"dartscope/internal/report"
)

var (
	configPath = flag.String("config", "./dartscope.toml", "Path to config file")
	root       = flag.String("root", "", "Project root to analyze (overrides config)")
	outDir     = flag.String("out", "", "Output directory (overrides config)")
	strategy   = flag.String("strategy", "", "Parse strategy: auto, ast or lexical (overrides config)")
	watch      = flag.Bool("watch", false, "Keep running and re-analyze on file changes")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("dartscope v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Only the explicit flag makes a missing file fatal; the default
		// path is optional.
		if *configPath != "./dartscope.toml" || !errors.Is(err, fs.ErrNotExist) {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	if *root != "" {
		cfg.Root = *root
	}
	if flag.NArg() > 0 {
		cfg.Root = flag.Arg(0)
	}
	if *outDir != "" {
		cfg.Output.Directory = *outDir
	}
	if *strategy != "" {
		cfg.Parser.Strategy = *strategy
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	analyzer, err := app.NewAnalyzer(cfg)
	if err != nil {
		slog.Error("failed to initialize analyzer", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runOnce(ctx, analyzer, cfg); err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if !cfg.Watch.Enabled {
		return
	}

	watcher, err := app.NewWatcher(cfg.Watch, cfg.Discovery, func(paths []string) {
		slog.Info("changes detected, re-analyzing", "changed", len(paths))
		if err := runOnce(ctx, analyzer, cfg); err != nil {
			slog.Error("re-analysis failed", "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Watch(ctx, []string{cfg.Root}); err != nil {
		slog.Error("failed to watch project", "error", err)
		os.Exit(1)
	}

	slog.Info("watching for changes", "root", cfg.Root)
	<-ctx.Done()
}

func runOnce(ctx context.Context, analyzer *app.Analyzer, cfg *config.Config) error {
	res, err := analyzer.Run(ctx)
	if err != nil {
		return err
	}
	env := report.NewEnvelope(cfg.Root, res)
	if err := report.Write(env, cfg.Output); err != nil {
		return err
	}
	fmt.Printf("dartscope: %d files, grade %s (score %.1f), debt %.1fh, output in %s\n",
		res.Project.FilesCount, res.Project.Grade, res.Project.Score,
		res.Project.TechnicalDebt.TotalHours, cfg.Output.Directory)
	return nil
}
