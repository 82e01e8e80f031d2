// Command lapnavvis replays a lap run in a window.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/lapnav/internal/sim"
	"github.com/elektrokombinacija/lapnav/internal/vis"
)

func main() {
	recordPath := flag.String("record", "", "Recorded result from lapnav -record (runs a fresh simulation when empty)")
	seed := flag.Int64("seed", 42, "Seed for a fresh simulation")
	difficulty := flag.String("difficulty", "swordfish", "Difficulty for a fresh simulation")
	small := flag.Bool("small", false, "Use the compact arena for a fresh simulation")
	route := flag.String("route", "dynamic", "Route mode for a fresh simulation")
	flag.Parse()

	res, err := load(*recordPath, *seed, *difficulty, *small, *route)
	if err != nil {
		log.Fatal(err)
	}
	if len(res.Frames) == 0 {
		log.Fatal("result has no frames; record it with lapnav -record")
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("lapnav: "+res.Config.Scenario.Name),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(res)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func load(path string, seed int64, difficulty string, small bool, route string) (*sim.SimulationResult, error) {
	if path != "" {
		return sim.LoadResult(path)
	}

	params := sim.DefaultParams()
	if small {
		params = sim.SmallParams()
	}
	params.Seed = seed
	if err := params.Difficulty.UnmarshalText([]byte(difficulty)); err != nil {
		return nil, err
	}

	cfg := sim.DefaultConfig()
	cfg.Scenario = sim.GenerateScenario(params)
	cfg.Record = true
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := cfg.Planner.RouteMode.UnmarshalText([]byte(route)); err != nil {
		return nil, err
	}

	// A run that stops early still has frames worth replaying.
	res, _ := sim.RunSimulation(context.Background(), cfg)
	return res, nil
}
