package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sprasad796/Stop-And-Go/internal/config"
	"github.com/sprasad796/Stop-And-Go/internal/db"
	"github.com/sprasad796/Stop-And-Go/internal/fsutil"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/report"
	"github.com/sprasad796/Stop-And-Go/internal/sim"
	"github.com/sprasad796/Stop-And-Go/internal/version"
)

const defaultDBFile = "stopsim.db"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := args[0], args[1:]
	switch command {
	case "run":
		if err := runEpisodes(ctx, rest, stdout, stderr); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return 0
			}
			fmt.Fprintf(stderr, "stopsim run: %v\n", err)
			return 1
		}
	case "migrate":
		fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
		fs.SetOutput(stderr)
		dbPath := fs.String("db", defaultDBFile, "SQLite database path")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		if err := db.RunMigrateCommand(fs.Args(), *dbPath, stdout); err != nil {
			fmt.Fprintf(stderr, "stopsim migrate: %v\n", err)
			if errors.Is(err, db.ErrUsage) {
				return 2
			}
			return 1
		}
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, version.String())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
	return 0
}

func runEpisodes(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Simulation config JSON (defaults built in)")
	seed := fs.Uint64("seed", 0, "Seed of the first episode (overrides the config)")
	episodes := fs.Int("episodes", 1, "Number of episodes; seeds are consecutive")
	dbPath := fs.String("db", "", "Record episodes into this SQLite database")
	chartsDir := fs.String("charts", "", "Write plots and the episode page under this directory")
	realtime := fs.Bool("realtime", false, "Pace ticks at wall-clock speed")
	logLevel := fs.String("log-level", "info", "Log level: quiet, info or debug (overrides the config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.EmptySimConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadSimConfig(*configPath); err != nil {
			return err
		}
	}
	level := cfg.GetLogLevel()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg = cfg.WithSeed(*seed)
		case "log-level":
			level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := monitoring.NewLogger(monitoring.ParseLevel(level), "stopsim")

	var recorders []sim.Recorder
	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()
		recorders = append(recorders, db.NewEpisodeStore(database))
	}
	if *chartsDir != "" {
		u := report.Units{Speed: cfg.GetSpeedUnits(), Resolution: cfg.GetResolutionPxPerM()}
		recorders = append(recorders, report.NewWriter(fsutil.OSFileSystem{}, *chartsDir, u, log.With("report")))
	}

	runner := sim.NewRunner(cfg, sim.RunnerOptions{
		Episodes:  *episodes,
		Realtime:  *realtime,
		Recorders: recorders,
	}, log)
	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Fprintf(stdout, "%s seed=%d ticks=%d mean_wait=%.2fs max_queue=%d clamps=%d\n",
			r.ID, r.Seed, r.Ticks, r.Stats.MeanWaitS, r.Stats.MaxQueue, r.Stats.Clamps)
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `stopsim - four-way stop intersection simulator

Usage: stopsim <command> [options]

Commands:
  run        Simulate episodes
  migrate    Manage the episode database schema (see: stopsim migrate help)
  version    Show build information
  help       Show this help message

Run flags:
  -config <file>     Simulation config JSON
  -seed <n>          Seed of the first episode
  -episodes <n>      Number of episodes (default 1)
  -db <file>         Record episodes into a SQLite database
  -charts <dir>      Write profile plots and an episode page per episode
  -realtime          Pace ticks at wall-clock speed
  -log-level <lvl>   quiet, info or debug (default: config log_level, else info)

Examples:
  stopsim run -episodes 10 -seed 42 -db stopsim.db
  stopsim run -config config/stopsim.defaults.json -charts reports
  stopsim migrate -db stopsim.db status
`)
}
