// Package sim provides a tick simulator for lap planning.
//
// The simulator plays the host: it reveals obstacles and boosts within
// sight of the agent, moves hazards, feeds snapshots to a planner, moves
// the agent one tile along the returned plan and reports cargo events.
package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/planner"
)

// SimulationConfig configures the simulation parameters
type SimulationConfig struct {
	// Scenario to play
	Scenario *Scenario `json:"scenario"`

	// Planner configuration. Difficulty and exclusion offsets are taken
	// from the scenario.
	Planner core.Config `json:"planner"`

	// Upper bound on simulated ticks
	MaxTicks int `json:"max_ticks"`

	// Record a frame per tick for playback
	Record bool `json:"record"`

	// Wall-clock limit for RunSimulation. Zero bounds the run by
	// MaxTicks only.
	Timeout time.Duration `json:"timeout,omitempty"`

	Logger *slog.Logger `json:"-"`
}

// DefaultConfig returns default simulation configuration
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		Planner:  core.DefaultConfig(),
		MaxTicks: 5000,
	}
}

// SimulationMetrics collects metrics during simulation
type SimulationMetrics struct {
	// Timing
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Ticks     int       `json:"ticks"`

	EpisodeID string `json:"episode_id"`
	Completed bool   `json:"completed"`

	// Progress
	LapsRequired     int `json:"laps_required"`
	LapsCompleted    int `json:"laps_completed"`
	PickupsTotal     int `json:"pickups_total"`
	PickupsCollected int `json:"pickups_collected"`
	Distance         int `json:"distance"`

	// Safety
	HazardHits          int `json:"hazard_hits"`
	Collisions          int `json:"collisions"`
	ExclusionViolations int `json:"exclusion_violations"`
	StuckTicks          int `json:"stuck_ticks"`

	// Planning
	Replans         int     `json:"replans"`
	PlansKept       int     `json:"plans_kept"`
	PlansReplaced   int     `json:"plans_replaced"`
	Fallbacks       int     `json:"fallbacks"`
	TotalPlanningMs float64 `json:"total_planning_ms"`
	MaxPlanningMs   float64 `json:"max_planning_ms"`
	AvgPlanningMs   float64 `json:"avg_planning_ms"`

	// Discovery
	ObstaclesRevealed int `json:"obstacles_revealed"`
	BoostsRevealed    int `json:"boosts_revealed"`
}

// HazardState is a hazard's position and danger at one tick.
type HazardState struct {
	Tile      core.Tile `json:"tile"`
	Dangerous bool      `json:"dangerous"`
}

// Frame is what a viewer needs to redraw one tick.
type Frame struct {
	Tick     int           `json:"tick"`
	Agent    core.Tile     `json:"agent"`
	Plan     []core.Tile   `json:"plan,omitempty"`
	Preview  []core.Tile   `json:"preview,omitempty"`
	Pickups  []core.Tile   `json:"pickups"`
	Hazards  []HazardState `json:"hazards,omitempty"`
	Revealed int           `json:"revealed"` // obstacles known to the planner
	HasCargo bool          `json:"has_cargo"`
	Lap      int           `json:"lap"`
	Phase    string        `json:"phase"`
	Reason   string        `json:"reason,omitempty"`
}

// Simulator runs one scenario against one planner.
type Simulator struct {
	mu sync.Mutex

	config  SimulationConfig
	log     *slog.Logger
	planner *planner.Planner

	// World state
	tick      int
	agent     core.Tile
	heading   core.Dir
	hasCargo  bool
	lap       int
	exclusion core.Rect
	obstacles core.TileSet
	boosts    core.TileSet
	pickups   core.TileSet
	revealed  core.TileSet

	frames  []Frame
	metrics SimulationMetrics
}

// NewSimulator creates a new simulation instance
func NewSimulator(config SimulationConfig) (*Simulator, error) {
	sc := config.Scenario
	if sc == nil {
		return nil, errors.New("simulation has no scenario")
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}

	cfg := config.Planner
	cfg.Difficulty = sc.Difficulty
	cfg.ExclusionOffsets = sc.Exclusion
	if c, ok := withRoute(cfg, sc); ok {
		log.Info("using authored route", "scenario", sc.Name, "waypoints", len(c.Route()))
		cfg = c
	}
	p, err := planner.New(cfg, planner.WithLogger(log.With("scenario", sc.Name)))
	if err != nil {
		return nil, fmt.Errorf("create planner: %w", err)
	}

	s := &Simulator{
		config:    config,
		log:       log,
		planner:   p,
		agent:     sc.Start,
		heading:   sc.Heading,
		lap:       1,
		exclusion: sc.ExclusionRect(),
		obstacles: core.NewTileSet(sc.Obstacles...),
		boosts:    core.NewTileSet(sc.Boosts...),
		pickups:   core.NewTileSet(sc.Pickups...),
		revealed:  make(core.TileSet),
	}
	s.metrics.PickupsTotal = len(sc.Pickups)
	s.metrics.LapsRequired = sc.Difficulty.Laps()
	return s, nil
}

// Planner exposes the planner under simulation.
func (s *Simulator) Planner() *planner.Planner { return s.planner }

// Run executes the simulation until the episode completes, MaxTicks is
// reached or ctx is done.
func (s *Simulator) Run(ctx context.Context) (*SimulationMetrics, error) {
	s.metrics.StartTime = time.Now()

	if err := s.planner.Signal(planner.EnteredArea); err != nil {
		return nil, fmt.Errorf("enter area: %w", err)
	}
	s.metrics.EpisodeID = s.planner.Episode().ID.String()

	var runErr error
loop:
	for s.tick < s.config.MaxTicks {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		default:
		}

		if err := s.step(); err != nil {
			runErr = err
			break
		}
		if s.metrics.LapsCompleted >= s.metrics.LapsRequired {
			s.metrics.Completed = true
			break
		}
	}

	s.mu.Lock()
	s.metrics.EndTime = time.Now()
	s.metrics.Ticks = s.tick
	st := s.planner.Stats()
	s.metrics.Replans = st.Replans
	s.metrics.PlansKept = st.Kept
	s.metrics.PlansReplaced = st.Replaced
	s.metrics.Fallbacks = st.Fallbacks
	if s.tick > 0 {
		s.metrics.AvgPlanningMs = s.metrics.TotalPlanningMs / float64(s.tick)
	}
	metrics := s.metrics
	s.mu.Unlock()

	if s.planner.Episode().Phase != planner.Idle {
		_ = s.planner.Signal(planner.LeftArea)
	}
	s.log.Info("simulation finished",
		"scenario", s.config.Scenario.Name,
		"ticks", metrics.Ticks,
		"completed", metrics.Completed,
		"pickups", metrics.PickupsCollected,
	)
	return &metrics, runErr
}

// step advances the simulation by one tick
func (s *Simulator) step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	sc := s.config.Scenario

	snap := core.Snapshot{
		Agent:            s.agent,
		Heading:          s.heading,
		HasCargo:         s.hasCargo,
		Lap:              s.lap,
		MandatoryPickup:  &sc.MandatoryPickup,
		MandatoryDropoff: &sc.MandatoryDropoff,
		Reason:           fmt.Sprintf("tick %d", s.tick),
	}
	snap.NewObstacles, snap.NewBoosts = s.reveal()
	for _, t := range s.pickups.Sorted() {
		snap.Pickups = append(snap.Pickups, core.Pickup{Tile: t, Collectible: true})
	}
	var hazards []HazardState
	for _, h := range sc.Hazards {
		hs := HazardState{Tile: h.At(s.tick), Dangerous: h.Dangerous(s.tick)}
		hazards = append(hazards, hs)
		if hs.Dangerous {
			snap.Hazards = append(snap.Hazards, hs.Tile)
		}
	}

	start := time.Now()
	plan := s.planner.Update(snap)
	ms := float64(time.Since(start).Microseconds()) / 1000
	s.metrics.TotalPlanningMs += ms
	s.metrics.MaxPlanningMs = math.Max(s.metrics.MaxPlanningMs, ms)

	s.move(plan)

	for _, h := range hazards {
		if h.Dangerous && h.Tile.Chebyshev(s.agent) <= 1 {
			s.metrics.HazardHits++
		}
	}
	if err := s.interact(); err != nil {
		return err
	}

	if s.config.Record {
		f := Frame{
			Tick:     s.tick,
			Agent:    s.agent,
			Pickups:  s.pickups.Sorted(),
			Hazards:  hazards,
			Revealed: s.planner.Obstacles().Len(),
			HasCargo: s.hasCargo,
			Lap:      s.lap,
			Phase:    s.planner.Episode().Phase.String(),
		}
		if plan != nil {
			f.Plan, f.Preview, f.Reason = plan.Tiles, plan.Preview, plan.Reason
		}
		s.frames = append(s.frames, f)
	}
	return nil
}

// reveal returns obstacles and boosts that came into sight this tick.
func (s *Simulator) reveal() (obstacles, boosts []core.Tile) {
	r := s.config.Scenario.SightRadius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			t := core.Tile{X: s.agent.X + dx, Y: s.agent.Y + dy, Plane: s.agent.Plane}
			if s.revealed.Has(t) {
				continue
			}
			switch {
			case s.obstacles.Has(t):
				obstacles = append(obstacles, t)
			case s.boosts.Has(t):
				boosts = append(boosts, t)
			default:
				continue
			}
			s.revealed.Add(t)
		}
	}
	s.metrics.ObstaclesRevealed += len(obstacles)
	s.metrics.BoostsRevealed += len(boosts)
	return obstacles, boosts
}

func (s *Simulator) passable(t core.Tile) bool {
	return !s.obstacles.Has(t) && !s.exclusion.Contains(t)
}

// move advances the agent one tile toward the plan's first tile.
func (s *Simulator) move(plan *core.Plan) {
	next, ok := plan.Next()
	if !ok {
		s.heading = core.Dir{}
		s.metrics.StuckTicks++
		return
	}
	if !next.Adjacent(s.agent) || next == s.agent {
		next, ok = s.stepToward(next)
		if !ok {
			s.heading = core.Dir{}
			s.metrics.StuckTicks++
			return
		}
	}
	if s.obstacles.Has(next) {
		s.metrics.Collisions++
		s.heading = core.Dir{}
		return
	}
	if s.exclusion.Contains(next) {
		s.metrics.ExclusionViolations++
	}
	s.heading = next.Sub(s.agent)
	s.agent = next
	s.metrics.Distance++
}

// stepToward picks the passable neighbour closest to target, if any
// neighbour gets closer at all.
func (s *Simulator) stepToward(target core.Tile) (core.Tile, bool) {
	best, bestDist := s.agent, s.agent.Euclidean(target)
	for _, d := range core.Neighbors8 {
		n := s.agent.Add(d)
		if !s.passable(n) {
			continue
		}
		if dist := n.Euclidean(target); dist < bestDist {
			best, bestDist = n, dist
		}
	}
	return best, best != s.agent
}

// interact collects pickups and handles the mandatory stops.
func (s *Simulator) interact() error {
	cfg := s.planner.Config()
	sc := s.config.Scenario

	for _, t := range s.pickups.Sorted() {
		if t.Chebyshev(s.agent) <= cfg.Tolerances.Pickup {
			delete(s.pickups, t)
			s.metrics.PickupsCollected++
		}
	}

	switch {
	case !s.hasCargo && sc.MandatoryPickup.Chebyshev(s.agent) <= cfg.Tolerances.MandatoryPickup:
		s.hasCargo = true
		if err := s.planner.Signal(planner.CargoPickedUp); err != nil {
			return fmt.Errorf("tick %d: %w", s.tick, err)
		}
	case s.hasCargo && sc.MandatoryDropoff.Chebyshev(s.agent) <= cfg.Tolerances.MandatoryDropoff:
		s.hasCargo = false
		if err := s.planner.Signal(planner.CargoDelivered); err != nil {
			return fmt.Errorf("tick %d: %w", s.tick, err)
		}
		s.metrics.LapsCompleted++
		if s.lap < s.metrics.LapsRequired {
			s.lap++
		}
		s.log.Debug("lap complete", "lap", s.metrics.LapsCompleted, "tick", s.tick)
	}
	return nil
}

// Frames returns the recorded frames.
func (s *Simulator) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Metrics returns current simulation metrics
func (s *Simulator) Metrics() SimulationMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// ExportMetrics writes metrics to a JSON file
func (s *Simulator) ExportMetrics(path string) error {
	s.mu.Lock()
	metrics := s.metrics
	s.mu.Unlock()

	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SimulationResult is the final output of a simulation run
type SimulationResult struct {
	Config  SimulationConfig  `json:"config"`
	Metrics SimulationMetrics `json:"metrics"`
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Frames  []Frame           `json:"frames,omitempty"`
}

// RunSimulation is a convenience function to run a complete simulation
func RunSimulation(ctx context.Context, config SimulationConfig) (*SimulationResult, error) {
	result := &SimulationResult{Config: config}

	sim, err := NewSimulator(config)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	metrics, err := sim.Run(ctx)
	result.Success = err == nil && metrics != nil && metrics.Completed
	if err != nil {
		result.Error = err.Error()
	}
	if metrics != nil {
		result.Metrics = *metrics
	}
	result.Frames = sim.Frames()
	return result, err
}

// Save writes the result, frames included, as indented JSON.
func (r *SimulationResult) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadResult reads a result written by Save.
func LoadResult(path string) (*SimulationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	var r SimulationResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse result %s: %w", path, err)
	}
	if r.Config.Scenario == nil {
		return nil, fmt.Errorf("result %s has no scenario", path)
	}
	return &r, nil
}
