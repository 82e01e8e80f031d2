// Package main generates deterministic lap scenarios and the JSON Schemas
// for scenario and planner config files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/sim"
)

func main() {
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	count := flag.Int("count", 1, "Number of scenarios, seeded seed..seed+count-1")
	difficulty := flag.String("difficulty", "swordfish", "Difficulty (marlin, swordfish, shark)")
	small := flag.Bool("small", false, "Start from the compact arena instead of the full one")
	pickups := flag.Int("pickups", -1, "Pickup count (-1 = preset)")
	density := flag.Float64("density", -1, "Obstacle density 0-0.3 (-1 = preset)")
	hazards := flag.Int("hazards", -1, "Hazard count (-1 = preset)")
	outputDir := flag.String("output", "testdata", "Output directory")
	schema := flag.Bool("schema", false, "Also write scenario.schema.json and config.schema.json")

	flag.Parse()

	params := sim.DefaultParams()
	if *small {
		params = sim.SmallParams()
	}
	if err := params.Difficulty.UnmarshalText([]byte(*difficulty)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *pickups >= 0 {
		params.PickupCount = *pickups
	}
	if *density >= 0 {
		params.ObstacleDensity = *density
	}
	if *hazards >= 0 {
		params.HazardCount = *hazards
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	for i := 0; i < *count; i++ {
		p := params
		p.Seed = *seed + int64(i)
		sc := sim.GenerateScenario(p)
		path := filepath.Join(*outputDir, sc.Name+".json")
		if err := sc.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Generated: %s (%d pickups, %d obstacles, %d boosts, %d hazards)\n",
			path, len(sc.Pickups), len(sc.Obstacles), len(sc.Boosts), len(sc.Hazards))
	}

	if *schema {
		for name, s := range buildSchemas() {
			path := filepath.Join(*outputDir, name)
			if err := writeSchema(path, s); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
				os.Exit(1)
			}
			fmt.Printf("Schema: %s\n", path)
		}
	}
}

func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	scenario := reflector.ReflectFromType(reflect.TypeOf(sim.Scenario{}))
	scenario.Title = "Lap Scenario"
	scenario.Description = "World layout for one episode: key points, exclusion offsets, pickups, obstacles, boosts and hazards."

	config := reflector.ReflectFromType(reflect.TypeOf(core.Config{}))
	config.Title = "Lap Planner Config"
	config.Description = "Planner tuning. Fields left out of a config file keep their defaults."

	return map[string]*jsonschema.Schema{
		"scenario.schema.json": scenario,
		"config.schema.json":   config,
	}
}

func writeSchema(path string, s *jsonschema.Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
