// Command boomsim plays a build-order script through the economy simulation
// and prints periodic summaries of the resulting economy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/boomsim/internal/economy"
	"github.com/talgya/boomsim/internal/engine"
	"github.com/talgya/boomsim/internal/persistence"
	"github.com/talgya/boomsim/internal/script"
	"github.com/talgya/boomsim/internal/tuning"
)

func main() {
	tuningPath := flag.String("tuning", "", "YAML tuning file (start resources, roster, caps)")
	recipesPath := flag.String("recipes", "", "YAML recipe overrides")
	dbPath := flag.String("db", envOrDefault("BOOMSIM_DB", ""), "SQLite run history (empty disables saving)")
	history := flag.Int("history", 0, "list the N most recent runs and exit")
	show := flag.String("run", "", "print the summaries and events of a stored run (ID or \"last\") and exit")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: boomsim [flags] <script>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *history > 0 {
		if err := listRuns(*dbPath, *history); err != nil {
			slog.Error("failed to list runs", "error", err)
			os.Exit(1)
		}
		return
	}
	if *show != "" {
		if err := showRun(*dbPath, *show); err != nil {
			slog.Error("failed to show run", "run", *show, "error", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	scriptPath := flag.Arg(0)

	// ── Configuration ─────────────────────────────────────────────────
	tun := tuning.Default()
	if *tuningPath != "" {
		var err error
		if tun, err = tuning.Load(*tuningPath); err != nil {
			slog.Error("failed to load tuning", "error", err)
			os.Exit(1)
		}
	}
	recipes := economy.DefaultRecipes()
	if *recipesPath != "" {
		var err error
		if recipes, err = economy.LoadRecipes(*recipesPath); err != nil {
			slog.Error("failed to load recipes", "error", err)
			os.Exit(1)
		}
	}

	sc, err := script.ParseFile(scriptPath)
	if err != nil {
		slog.Error("failed to parse script", "error", err)
		os.Exit(1)
	}

	// ── Run ───────────────────────────────────────────────────────────
	sim := engine.NewSimulation(tun, recipes)
	eng := engine.NewEngine(sim, tun.SummaryPeriod)
	eng.Out = os.Stdout

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	slog.Info("running build order", "script", scriptPath, "directives", len(sc.Directives))
	runErr := script.Run(ctx, sc, eng, tun.MinEndTick)

	if *dbPath != "" && eng.Outcome != engine.OutcomeRunning {
		if err := saveRun(*dbPath, scriptPath, started, eng); err != nil {
			slog.Error("failed to save run", "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, engine.ErrRunFinished) {
			slog.Info("debugend reached", "outcome", eng.Outcome.String(), "time", engine.SimTime(sim.Time))
		} else {
			slog.Error("run failed", "error", runErr)
		}
		os.Exit(1)
	}
}

func saveRun(path, scriptPath string, started time.Time, eng *engine.Engine) error {
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.SaveRun(scriptPath, started, eng)
	return err
}

func listRuns(path string, n int) error {
	if path == "" {
		return errors.New("no run history database; set -db or BOOMSIM_DB")
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RecentRuns(n)
	if err != nil {
		return fmt.Errorf("recent runs: %w", err)
	}
	for _, r := range runs {
		fmt.Println(r)
	}
	return nil
}

func showRun(path, id string) error {
	if path == "" {
		return errors.New("no run history database; set -db or BOOMSIM_DB")
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if id == "last" {
		if id, err = db.GetMeta("last_run"); err != nil {
			return fmt.Errorf("last run: %w", err)
		}
	}
	sums, err := db.RunSummaries(id)
	if err != nil {
		return fmt.Errorf("summaries: %w", err)
	}
	events, err := db.RunEvents(id)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if len(sums) == 0 && len(events) == 0 {
		return fmt.Errorf("no run %q", id)
	}

	fmt.Printf("run %s\n", id)
	for _, s := range sums {
		fmt.Println(s)
	}
	for _, e := range events {
		fmt.Printf("%s  %-9s %s\n", engine.SimTime(e.Tick), e.Category, e.Description)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
