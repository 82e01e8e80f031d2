// Command lapnav runs one lap scenario and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/sim"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario JSON (generated from -seed/-difficulty when empty)")
	configPath := flag.String("config", "", "Planner config JSON (defaults when empty)")
	seed := flag.Int64("seed", 42, "Seed for a generated scenario")
	difficulty := flag.String("difficulty", "swordfish", "Difficulty for a generated scenario")
	small := flag.Bool("small", false, "Generate the compact arena")
	mode := flag.String("mode", "", "Optimization mode override (relaxed, efficient)")
	route := flag.String("route", "", "Route mode override (dynamic, static)")
	maxTicks := flag.Int("ticks", 5000, "Tick limit")
	timeout := flag.Duration("timeout", 0, "Wall-clock limit for the run (0 = ticks only)")
	metricsOut := flag.String("metrics", "", "Write metrics JSON here")
	recordOut := flag.String("record", "", "Write the full result with frames here (for lapnavvis)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sc, err := loadOrGenerate(*scenarioPath, *seed, *difficulty, *small)
	if err != nil {
		log.Fatal(err)
	}

	cfg := sim.DefaultConfig()
	cfg.Scenario = sc
	cfg.MaxTicks = *maxTicks
	cfg.Timeout = *timeout
	cfg.Record = *recordOut != ""
	cfg.Logger = logger
	if *configPath != "" {
		if cfg.Planner, err = core.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *mode != "" {
		if err := cfg.Planner.Mode.UnmarshalText([]byte(*mode)); err != nil {
			log.Fatal(err)
		}
	}
	if *route != "" {
		if err := cfg.Planner.RouteMode.UnmarshalText([]byte(*route)); err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("=== lapnav: %s ===\n", sc.Name)
	fmt.Printf("Difficulty %s (%d laps), %d pickups, %d obstacles, %d hazards\n",
		sc.Difficulty, sc.Difficulty.Laps(), len(sc.Pickups), len(sc.Obstacles), len(sc.Hazards))
	fmt.Printf("Mode %s, route %s\n\n", cfg.Planner.Mode, cfg.Planner.RouteMode)

	res, err := sim.RunSimulation(ctx, cfg)
	if err != nil {
		logger.Error("simulation stopped", "err", err)
	}
	printSummary(res)

	if *metricsOut != "" {
		if err := writeMetrics(res, *metricsOut); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\nMetrics written to: %s\n", *metricsOut)
	}
	if *recordOut != "" {
		if err := res.Save(*recordOut); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Recording written to: %s\n", *recordOut)
	}
	if !res.Success {
		os.Exit(1)
	}
}

func loadOrGenerate(path string, seed int64, difficulty string, small bool) (*sim.Scenario, error) {
	if path != "" {
		return sim.LoadScenario(path)
	}
	params := sim.DefaultParams()
	if small {
		params = sim.SmallParams()
	}
	params.Seed = seed
	if err := params.Difficulty.UnmarshalText([]byte(difficulty)); err != nil {
		return nil, err
	}
	return sim.GenerateScenario(params), nil
}

func writeMetrics(res *sim.SimulationResult, path string) error {
	stripped := *res
	stripped.Frames = nil
	return stripped.Save(path)
}

func printSummary(res *sim.SimulationResult) {
	m := res.Metrics
	status := "COMPLETED"
	if !res.Success {
		status = "FAILED"
		if res.Error != "" {
			status += " (" + res.Error + ")"
		}
	}

	row := func(name, format string, args ...any) {
		fmt.Printf("  %-22s "+format+"\n", append([]any{name}, args...)...)
	}
	fmt.Println(status)
	fmt.Println(strings.Repeat("-", 44))
	row("Episode", "%s", m.EpisodeID)
	row("Ticks", "%d", m.Ticks)
	row("Laps", "%d/%d", m.LapsCompleted, m.LapsRequired)
	row("Pickups", "%d/%d", m.PickupsCollected, m.PickupsTotal)
	row("Distance", "%d tiles", m.Distance)
	row("Hazard hits", "%d", m.HazardHits)
	row("Collisions", "%d", m.Collisions)
	row("Exclusion violations", "%d", m.ExclusionViolations)
	row("Stuck ticks", "%d", m.StuckTicks)
	row("Replans", "%d (kept %d, replaced %d)", m.Replans, m.PlansKept, m.PlansReplaced)
	row("Fallbacks", "%d", m.Fallbacks)
	row("Planning", "avg %.3fms, max %.3fms", m.AvgPlanningMs, m.MaxPlanningMs)
	row("Revealed", "%d obstacles, %d boosts", m.ObstaclesRevealed, m.BoostsRevealed)
}
