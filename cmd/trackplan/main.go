// cmd/trackplan/main.go
//
// Entry point for the trackplan CLI.
//
// Flow:
// 1. Resolve the project directory and load .trackplan/config.yaml
// 2. Either serve the HTTP API, print the run history, or schedule a catalog
// 3. Scheduled catalogs are rendered as text, JSON, or in the TUI viewer

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/kingrea/trackplan/internal/catalog"
	"github.com/kingrea/trackplan/internal/config"
	"github.com/kingrea/trackplan/internal/format"
	"github.com/kingrea/trackplan/internal/logbook"
	"github.com/kingrea/trackplan/internal/logging"
	"github.com/kingrea/trackplan/internal/scheduler"
	"github.com/kingrea/trackplan/internal/server"
	"github.com/kingrea/trackplan/internal/talk"
	"github.com/kingrea/trackplan/internal/timeline"
	"github.com/kingrea/trackplan/internal/tui"
)

type options struct {
	dir     string
	catalog string
	sample  bool
	plain   bool
	tui     bool
	json    bool
	serve   bool
	history int
	init    bool
	verbose bool

	setCatalog string
	exportYAML bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	projectDir := opts.dir
	if projectDir == "" {
		projectDir, err = os.Getwd()
		if err != nil {
			return fail(stderr, "determine working directory: %v", err)
		}
	}
	projectDir, err = filepath.Abs(projectDir)
	if err != nil {
		return fail(stderr, "resolve project dir: %v", err)
	}

	if opts.init {
		if err := config.InitDir(projectDir); err != nil {
			return fail(stderr, "init %s: %v", config.ProjectDirName, err)
		}
		fmt.Fprintf(stdout, "Initialized %s\n", filepath.Join(projectDir, config.ProjectDirName))
		return 0
	}

	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return fail(stderr, "load config: %v", err)
	}
	logger, err := logging.New(cfg.ProjectDir)
	if err != nil {
		return fail(stderr, "open log: %v", err)
	}
	defer logger.Close()
	if opts.verbose {
		logger.Echo(stderr)
	}
	history, err := logbook.New(cfg.HistoryPath())
	if err != nil {
		return fail(stderr, "open run history: %v", err)
	}

	if opts.history > 0 {
		return printHistory(stdout, history, opts.history)
	}
	if opts.setCatalog != "" {
		if err := cfg.SetDefaultCatalog(opts.setCatalog); err != nil {
			return fail(stderr, "set catalog: %v", err)
		}
		fmt.Fprintf(stdout, "Default catalog is now %s\n", cfg.DefaultCatalog())
		return 0
	}

	table, err := cfg.Table()
	if err != nil {
		return fail(stderr, "windows: %v", err)
	}
	planner, err := scheduler.New(table, scheduler.WithLogger(logger))
	if err != nil {
		return fail(stderr, "scheduler: %v", err)
	}

	if opts.serve {
		return serve(cfg, planner, logger, history, stdout, stderr)
	}

	talks, source, err := loadCatalog(opts, cfg, stdin)
	if err != nil {
		return fail(stderr, "%v", err)
	}
	logger.Printf("trackplan: loaded %d talks from %s", len(talks), source)

	if opts.exportYAML {
		data, err := catalog.MarshalYAML(talks)
		if err != nil {
			return fail(stderr, "encode yaml: %v", err)
		}
		if _, err := stdout.Write(data); err != nil {
			return fail(stderr, "write yaml: %v", err)
		}
		return 0
	}

	result := planner.Schedule(talks)
	timelines, err := timeline.BuildSchedule(result.Schedule, table)
	if err != nil {
		logger.Printf("trackplan: %v", err)
		history.Error("run source=%s talks=%d failed: %v", source, len(talks), err)
		return fail(stderr, "build timeline: %v", err)
	}
	runID := logbook.NewRunID()
	history.Record(logbook.Run{
		ID:          runID,
		Source:      source,
		Talks:       len(talks),
		Scheduled:   len(result.Placements),
		Unscheduled: len(result.Skipped),
		Outcome:     string(result.Outcome()),
	})

	switch {
	case opts.json:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(format.NewDocument(runID, result, timelines)); err != nil {
			return fail(stderr, "encode json: %v", err)
		}
	case opts.tui:
		viewer := tui.NewViewer(timelines, table, result.Skipped, format.NewRenderer(format.DefaultStyles()))
		if err := tui.Run(viewer); err != nil {
			return fail(stderr, "run viewer: %v", err)
		}
	default:
		styles := format.DefaultStyles()
		if opts.plain {
			styles = format.PlainStyles()
		}
		if err := format.NewRenderer(styles).Render(stdout, timelines, table, result.Skipped); err != nil {
			return fail(stderr, "render: %v", err)
		}
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("trackplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dir, "dir", "", "project directory holding .trackplan (defaults to cwd)")
	fs.StringVar(&opts.catalog, "catalog", "", "catalog file (.txt, .yaml, .yml); stdin when empty and none is configured")
	fs.BoolVar(&opts.sample, "sample", false, "schedule the built-in sample catalog")
	fs.BoolVar(&opts.plain, "plain", false, "render without colour")
	fs.BoolVar(&opts.tui, "tui", false, "open the interactive viewer")
	fs.BoolVar(&opts.json, "json", false, "print the schedule as JSON")
	fs.BoolVar(&opts.serve, "serve", false, "serve the scheduling API until interrupted")
	fs.IntVar(&opts.history, "history", 0, "print the last N recorded runs")
	fs.BoolVar(&opts.init, "init", false, "create .trackplan with a default config.yaml")
	fs.BoolVar(&opts.verbose, "verbose", false, "mirror log lines to stderr")
	fs.StringVar(&opts.setCatalog, "set-catalog", "", "save PATH (relative to the project directory) as the default catalog in config.yaml")
	fs.BoolVar(&opts.exportYAML, "export-yaml", false, "print the loaded catalog as YAML instead of scheduling it")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.sample && strings.TrimSpace(opts.catalog) != "" {
		fmt.Fprintln(stderr, "-sample and -catalog are mutually exclusive")
		return opts, errors.New("conflicting catalog flags")
	}
	if opts.exportYAML && (opts.json || opts.tui) {
		fmt.Fprintln(stderr, "-export-yaml cannot be combined with -json or -tui")
		return opts, errors.New("conflicting output flags")
	}
	if opts.json && opts.tui {
		fmt.Fprintln(stderr, "-json and -tui are mutually exclusive")
		return opts, errors.New("conflicting output flags")
	}
	return opts, nil
}

func loadCatalog(opts options, cfg *config.Config, stdin io.Reader) ([]talk.Talk, string, error) {
	if opts.sample {
		return catalog.Sample(), "sample", nil
	}
	path := strings.TrimSpace(opts.catalog)
	if path == "" {
		path = cfg.DefaultCatalog()
	}
	if path != "" {
		talks, err := catalog.Load(path)
		if err != nil {
			return nil, "", err
		}
		return talks, path, nil
	}
	talks, err := catalog.ParseText(stdin)
	if err != nil {
		return nil, "", err
	}
	return talks, "stdin", nil
}

func printHistory(stdout io.Writer, history *logbook.Logbook, n int) int {
	lines, total := history.Tail(n)
	if total == 0 {
		fmt.Fprintln(stdout, "No runs recorded yet.")
		return 0
	}
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintf(stdout, "(%d of %d entries in %s)\n", len(lines), total, history.Path())
	return 0
}

func serve(cfg *config.Config, planner scheduler.Planner, logger *logging.Logger, history *logbook.Logbook, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(server.NewSettings(cfg.Server), planner,
		server.WithLogger(logger),
		server.WithHistory(history))
	if err := srv.Start(ctx); err != nil {
		return fail(stderr, "start server: %v", err)
	}
	fmt.Fprintf(stdout, "Serving on %s (Ctrl+C to stop)\n", srv.BaseURL())
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fail(stderr, "shutdown: %v", err)
	}
	return 0
}

func fail(stderr io.Writer, format string, args ...any) int {
	fmt.Fprintf(stderr, "trackplan: "+format+"\n", args...)
	return 1
}
