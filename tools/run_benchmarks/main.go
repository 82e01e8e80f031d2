// Package main runs lap scenarios across optimization and route modes and
// collects metrics.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/sim"
)

// BenchmarkResult stores results from a single run.
type BenchmarkResult struct {
	BatchID       string  `json:"batch_id"`
	Timestamp     string  `json:"timestamp"`
	CommitHash    string  `json:"commit_hash"`
	GoVersion     string  `json:"go_version"`
	OS            string  `json:"os"`
	Arch          string  `json:"arch"`
	Scenario      string  `json:"scenario"`
	Difficulty    string  `json:"difficulty"`
	Mode          string  `json:"mode"`
	Route         string  `json:"route"`
	EpisodeID     string  `json:"episode_id"`
	Success       bool    `json:"success"`
	Error         string  `json:"error,omitempty"`
	Ticks         int     `json:"ticks"`
	Laps          int     `json:"laps"`
	Pickups       int     `json:"pickups"`
	Distance      int     `json:"distance"`
	HazardHits    int     `json:"hazard_hits"`
	Collisions    int     `json:"collisions"`
	Violations    int     `json:"exclusion_violations"`
	Replans       int     `json:"replans"`
	PlansKept     int     `json:"plans_kept"`
	PlansReplaced int     `json:"plans_replaced"`
	Fallbacks     int     `json:"fallbacks"`
	AvgPlanningMs float64 `json:"avg_planning_ms"`
	MaxPlanningMs float64 `json:"max_planning_ms"`
}

// ModeMetrics aggregates results for one mode/route combination.
type ModeMetrics struct {
	Name         string
	TotalRuns    int
	Successes    int
	TotalTicks   int
	TotalReplans int
	TotalKept    int
	HazardHits   int
	TotalPlanMs  float64
}

var (
	modes  = []core.OptimizationMode{core.Relaxed, core.Efficient}
	routes = []core.RouteMode{core.Dynamic, core.Static}
)

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func loadScenarios(inputDir string, seeds int, small bool) ([]*sim.Scenario, error) {
	if inputDir != "" {
		files, err := filepath.Glob(filepath.Join(inputDir, "*.json"))
		if err != nil {
			return nil, err
		}
		var out []*sim.Scenario
		for _, f := range files {
			sc, err := sim.LoadScenario(f)
			if err != nil {
				// Schemas and other JSON share the directory.
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", f, err)
				continue
			}
			out = append(out, sc)
		}
		return out, nil
	}

	var out []*sim.Scenario
	for _, d := range []core.Difficulty{core.Marlin, core.Swordfish, core.Shark} {
		for i := 0; i < seeds; i++ {
			params := sim.DefaultParams()
			if small {
				params = sim.SmallParams()
			}
			params.Seed += int64(i)
			params.Difficulty = d
			out = append(out, sim.GenerateScenario(params))
		}
	}
	return out, nil
}

func toResult(batch, commit string, r *sim.SimulationResult) *BenchmarkResult {
	m := r.Metrics
	cfg := r.Config
	return &BenchmarkResult{
		BatchID:       batch,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		CommitHash:    commit,
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		Scenario:      cfg.Scenario.Name,
		Difficulty:    cfg.Scenario.Difficulty.String(),
		Mode:          cfg.Planner.Mode.String(),
		Route:         cfg.Planner.RouteMode.String(),
		EpisodeID:     m.EpisodeID,
		Success:       r.Success,
		Error:         r.Error,
		Ticks:         m.Ticks,
		Laps:          m.LapsCompleted,
		Pickups:       m.PickupsCollected,
		Distance:      m.Distance,
		HazardHits:    m.HazardHits,
		Collisions:    m.Collisions,
		Violations:    m.ExclusionViolations,
		Replans:       m.Replans,
		PlansKept:     m.PlansKept,
		PlansReplaced: m.PlansReplaced,
		Fallbacks:     m.Fallbacks,
		AvgPlanningMs: m.AvgPlanningMs,
		MaxPlanningMs: m.MaxPlanningMs,
	}
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"batch_id", "timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "difficulty", "mode", "route", "episode_id", "success",
		"ticks", "laps", "pickups", "distance", "hazard_hits", "collisions",
		"exclusion_violations", "replans", "plans_kept", "plans_replaced",
		"fallbacks", "avg_planning_ms", "max_planning_ms",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	itoa := strconv.Itoa
	for _, r := range results {
		row := []string{
			r.BatchID, r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, r.Difficulty, r.Mode, r.Route, r.EpisodeID, strconv.FormatBool(r.Success),
			itoa(r.Ticks), itoa(r.Laps), itoa(r.Pickups), itoa(r.Distance), itoa(r.HazardHits), itoa(r.Collisions),
			itoa(r.Violations), itoa(r.Replans), itoa(r.PlansKept), itoa(r.PlansReplaced),
			itoa(r.Fallbacks), fmt.Sprintf("%.3f", r.AvgPlanningMs), fmt.Sprintf("%.3f", r.MaxPlanningMs),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(results []*BenchmarkResult, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*ModeMetrics)
	for _, r := range results {
		key := r.Mode + "/" + r.Route
		m, ok := metrics[key]
		if !ok {
			m = &ModeMetrics{Name: key}
			metrics[key] = m
		}
		m.TotalRuns++
		m.HazardHits += r.HazardHits
		if r.Success {
			m.Successes++
			m.TotalTicks += r.Ticks
			m.TotalReplans += r.Replans
			m.TotalKept += r.PlansKept
			m.TotalPlanMs += r.AvgPlanningMs
		}
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-20s %6s %8s %10s %10s %8s %10s %8s\n",
		"Mode/Route", "Runs", "Success", "AvgTicks", "AvgReplans", "Kept%", "AvgPlanMs", "Hazards")
	fmt.Println(strings.Repeat("-", 86))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		var avgTicks, avgReplans, keptPct, avgPlan float64
		if m.Successes > 0 {
			n := float64(m.Successes)
			avgTicks = float64(m.TotalTicks) / n
			avgReplans = float64(m.TotalReplans) / n
			avgPlan = m.TotalPlanMs / n
		}
		if m.TotalReplans > 0 {
			keptPct = float64(m.TotalKept) / float64(m.TotalReplans) * 100
		}
		fmt.Printf("%-20s %6d %8d %10.1f %10.1f %7.1f%% %10.3f %8d\n",
			m.Name, m.TotalRuns, m.Successes, avgTicks, avgReplans, keptPct, avgPlan, m.HazardHits)
	}
}

func main() {
	inputDir := flag.String("input", "", "Directory of scenario JSON files (generates scenarios when empty)")
	seeds := flag.Int("seeds", 3, "Generated scenarios per difficulty")
	small := flag.Bool("small", false, "Generate compact arenas")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file (JSON written alongside)")
	maxTicks := flag.Int("ticks", 5000, "Tick limit per run")
	parallel := flag.Int("parallel", 0, "Concurrent runs (0 = GOMAXPROCS)")
	timeout := flag.Duration("timeout", 30*time.Minute, "Timeout for the whole batch")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	scenarios, err := loadScenarios(*inputDir, *seeds, *small)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenarios: %v\n", err)
		os.Exit(1)
	}
	if len(scenarios) == 0 {
		fmt.Fprintf(os.Stderr, "No scenarios found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -count 5 -output testdata\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	var configs []sim.SimulationConfig
	for _, sc := range scenarios {
		for _, mode := range modes {
			for _, route := range routes {
				cfg := sim.DefaultConfig()
				cfg.Scenario = sc
				cfg.MaxTicks = *maxTicks
				cfg.Logger = logger
				cfg.Planner.Mode = mode
				cfg.Planner.RouteMode = route
				configs = append(configs, cfg)
			}
		}
	}

	fmt.Printf("Running benchmarks: %d scenarios x %d modes x %d routes = %d runs\n",
		len(scenarios), len(modes), len(routes), len(configs))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	runs, err := sim.RunBatch(ctx, configs, *parallel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch stopped: %v\n", err)
	}
	fmt.Printf("Finished in %v\n", time.Since(start).Round(time.Millisecond))

	batch := uuid.NewString()
	commit := getGitCommit()
	var results []*BenchmarkResult
	for _, r := range runs {
		if r == nil {
			continue
		}
		res := toResult(batch, commit, r)
		results = append(results, res)
		if *verbose {
			fmt.Printf("  %-36s %-9s %-7s ok=%v ticks=%d replans=%d\n",
				res.Scenario, res.Mode, res.Route, res.Success, res.Ticks, res.Replans)
		}
	}

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	jsonFile := strings.TrimSuffix(*outputFile, filepath.Ext(*outputFile)) + ".json"
	if err := writeJSON(results, jsonFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s, %s\n", *outputFile, jsonFile)

	printSummary(results)
}
