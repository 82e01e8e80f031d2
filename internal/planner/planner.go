package planner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/elektrokombinacija/lapnav/internal/algo"
	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// Stats counts planner activity over its lifetime.
type Stats struct {
	Updates     int
	Replans     int
	Replaced    int
	Kept        int
	Fallbacks   int
	Unreachable int

	LastDecision algo.Decision
	LastReason   string
}

// Planner turns per-tick snapshots into a stable tactical plan. It is not
// safe for concurrent use.
type Planner struct {
	cfg core.Config
	log *slog.Logger

	episode *Episode
	stab    *algo.Stabilizer

	// Persistent knowledge, kept across Reset.
	obstacles core.TileSet
	boosts    core.TileSet

	// Per-episode state.
	exclusion *core.Rect
	trig      triggers
	tick      int
	lap       int

	routeFrom int
	completed map[int]bool

	target     *core.Waypoint
	clamped    core.Tile
	waypoints  []core.Waypoint // current target first
	published  *core.Plan
	current    *core.Plan
	lastResult *algo.PathResult

	stats Stats
}

// New creates a planner. cfg must be valid.
func New(cfg core.Config, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Planner{
		cfg:       cfg,
		log:       slog.Default(),
		episode:   NewEpisode(cfg.Difficulty.Laps()),
		stab:      algo.NewStabilizer(cfg.Threshold(), cfg.Proximity),
		obstacles: make(core.TileSet),
		boosts:    make(core.TileSet),
		completed: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the active configuration.
func (p *Planner) Config() core.Config { return p.cfg }

// Episode returns a copy of the episode state.
func (p *Planner) Episode() Episode { return *p.episode }

// Stats returns the activity counters.
func (p *Planner) Stats() Stats { return p.stats }

// Plan returns the current plan trimmed to the agent's last position.
func (p *Planner) Plan() *core.Plan { return p.current }

// Preview returns the segment after the current plan.
func (p *Planner) Preview() []core.Tile {
	if p.current == nil {
		return nil
	}
	return p.current.Preview
}

// Waypoints returns the remaining high-level targets, current first.
func (p *Planner) Waypoints() []core.Waypoint { return p.waypoints }

// Exclusion returns the no-go region, nil until the dropoff is known.
func (p *Planner) Exclusion() *core.Rect { return p.exclusion }

// Obstacles returns the known obstacle set. Callers must not modify it.
func (p *Planner) Obstacles() core.TileSet { return p.obstacles }

// Boosts returns the known boost set. Callers must not modify it.
func (p *Planner) Boosts() core.TileSet { return p.boosts }

// Signal forwards a host event to the episode state machine.
func (p *Planner) Signal(sig Signal) error {
	before := p.episode.Phase
	if sig == LeftArea {
		if p.episode.Phase == Idle {
			return fmt.Errorf("%w: %s during %s", ErrInvalidTransition, sig, before)
		}
		p.Reset()
		p.log.Info("episode ended", "signal", sig)
		return nil
	}
	if err := p.episode.Apply(sig); err != nil {
		return err
	}
	p.log.Info("phase change", "signal", sig, "from", before, "to", p.episode.Phase,
		"episode", p.episode.ID, "lap", p.episode.Lap)
	return nil
}

// SetDifficulty switches difficulty. A different difficulty invalidates
// everything discovered so far.
func (p *Planner) SetDifficulty(d core.Difficulty) {
	if d == p.cfg.Difficulty {
		return
	}
	p.cfg.Difficulty = d
	p.ClearPersistentKnowledge()
	p.Reset()
}

// Reset clears all per-episode state. Discovered obstacles and boosts
// are kept.
func (p *Planner) Reset() {
	p.episode = NewEpisode(p.cfg.Difficulty.Laps())
	p.stab.Clear()
	p.exclusion = nil
	p.trig = triggers{}
	p.tick = 0
	p.lap = 0
	p.resetRoute()
	p.target = nil
	p.waypoints = nil
	p.published = nil
	p.current = nil
	p.lastResult = nil
}

// ClearPersistentKnowledge forgets discovered obstacles and boosts.
func (p *Planner) ClearPersistentKnowledge() {
	p.obstacles = make(core.TileSet)
	p.boosts = make(core.TileSet)
	p.stab.Clear()
	p.log.Info("persistent knowledge cleared", "difficulty", p.cfg.Difficulty)
}

func (p *Planner) resetRoute() {
	p.routeFrom = 0
	p.completed = make(map[int]bool)
}

// Update ingests one snapshot and returns the plan to follow from the
// agent's tile, or nil outside an active episode.
func (p *Planner) Update(s core.Snapshot) *core.Plan {
	p.stats.Updates++
	if p.episode.Tick() {
		p.log.Info("phase change", "to", p.episode.Phase, "lap", p.episode.Lap)
	}

	p.obstacles.Add(s.NewObstacles...)
	p.boosts.Add(s.NewBoosts...)
	if p.exclusion == nil && s.MandatoryDropoff != nil {
		ex := core.ExclusionFrom(*s.MandatoryDropoff, p.cfg.ExclusionOffsets)
		p.exclusion = &ex
	}

	if !p.episode.Phase.Active() {
		p.current = nil
		return nil
	}
	p.tick++

	lap := s.Lap
	if lap <= 0 {
		lap = p.episode.Lap
	}
	if lap != p.lap {
		p.lap = lap
		p.resetRoute()
	}

	field := algo.NewField(p.obstacles, p.boosts, p.exclusion, s.Hazards)
	reasons := p.evaluateTriggers(s, lap, field)
	if s.Reason != "" && len(reasons) > 0 {
		reasons = append(reasons, s.Reason)
	}

	if len(reasons) > 0 {
		p.replan(s, field, strings.Join(reasons, ","))
	}

	p.current = p.published.TrimmedTo(s.Agent)
	return p.current
}

func (p *Planner) replan(s core.Snapshot, field *algo.Field, reason string) {
	p.stats.Replans++
	p.stats.LastReason = reason
	p.trig.replanned(p.tick)

	if p.cfg.RouteMode == core.Static {
		p.waypoints = p.staticWaypoints(s)
	} else {
		p.waypoints = p.dynamicWaypoints(s, field)
	}
	if len(p.waypoints) == 0 {
		p.target = nil
		p.stab.Clear()
		p.lastResult = nil
		p.published = &core.Plan{Goal: s.Agent, Reason: reason + ",no-waypoints", Tick: p.tick}
		p.log.Debug("replan", "tick", p.tick, "reason", reason, "waypoints", 0)
		return
	}

	target := p.waypoints[0]
	goal := p.goalFor(s.Agent, target, field)
	tol := 0
	if goal == *target.Location {
		tol = target.Tolerance
	}

	res := p.stab.Stabilize(algo.Tactical(field, algo.WithBoostCost(p.cfg.Boost())), p.cfg.Turn(), algo.PathRequest{
		Start:     s.Agent,
		Goal:      goal,
		MaxRadius: p.cfg.MaxSearchRadius,
		Tolerance: tol,
		Heading:   s.Heading,
	})
	decision := p.stab.Last()
	p.stats.LastDecision = decision

	switch {
	case res.Empty():
		p.stats.Unreachable++
		p.stats.Fallbacks++
		p.lastResult = nil
		p.published = &core.Plan{
			Tiles:  []core.Tile{goal},
			Goal:   goal,
			Reason: reason + ",fallback",
			Tick:   p.tick,
		}
	case res == p.lastResult && p.published != nil:
		p.stats.Kept++
	default:
		if decision.Kept() {
			p.stats.Kept++
		} else {
			p.stats.Replaced++
		}
		p.lastResult = res
		p.published = &core.Plan{
			Tiles:   res.Tiles,
			Preview: p.preview(res.Tiles[len(res.Tiles)-1], field),
			Goal:    goal,
			Cost:    res.Cost,
			Reason:  reason,
			Tick:    p.tick,
		}
	}

	p.log.Debug("replan",
		"tick", p.tick,
		"reason", reason,
		"target", target,
		"goal", goal,
		"decision", decision,
		"cost", p.published.Cost,
	)
}

// goalFor clamps far targets to a reachable tile. The clamped goal is
// reused while the target is unchanged so the stabilizer sees a stable
// goal.
func (p *Planner) goalFor(agent core.Tile, target core.Waypoint, field *algo.Field) core.Tile {
	loc := *target.Location
	radius := p.cfg.MaxSearchRadius / 3
	if agent.Chebyshev(loc) <= radius {
		p.target = &target
		p.clamped = loc
		return loc
	}
	if p.target != nil && p.target.Location != nil && *p.target.Location == loc {
		d := agent.Chebyshev(p.clamped)
		if d > p.cfg.Proximity && d <= radius && !field.Blocked(p.clamped) {
			return p.clamped
		}
	}
	p.target = &target
	p.clamped = algo.ClampGoal(field, agent, loc, radius)
	if agent.Chebyshev(p.clamped) <= p.cfg.Proximity {
		// Boxed in: aim at the target itself and let replan fall back.
		p.clamped = loc
	}
	return p.clamped
}

// preview chains the strategic model through the waypoints after the
// current target.
func (p *Planner) preview(from core.Tile, field *algo.Field) []core.Tile {
	n := p.cfg.PathLookahead
	var goals []core.Tile
	for _, w := range p.waypoints[1:] {
		if len(goals) >= n-1 {
			break
		}
		goals = append(goals, *w.Location)
	}
	if len(goals) == 0 {
		return nil
	}
	path := algo.FindPathThrough(algo.Strategic(field), p.cfg.Turn(), from, goals, p.cfg.MaxSearchRadius)
	if len(path) > 0 && path[0] == from {
		path = path[1:]
	}
	return path
}

// dynamicWaypoints plans the remaining laps and returns the current lap's
// targets not yet reached. With the mandatory stops still unknown it
// falls back to touring the visible pickups.
func (p *Planner) dynamicWaypoints(s core.Snapshot, field *algo.Field) []core.Waypoint {
	pickups := core.CollectibleSet(s.Pickups).Sorted()

	pts := append([]core.Tile{s.Agent}, pickups...)
	if s.MandatoryPickup != nil {
		pts = append(pts, *s.MandatoryPickup)
	}
	if s.MandatoryDropoff != nil {
		pts = append(pts, *s.MandatoryDropoff)
	}
	dm := algo.BuildDistanceMatrix(pts, field.Obstacles(), field.Exclusion())

	req := algo.LapRequest{
		Start:            s.Agent,
		Pickups:          pickups,
		LapsNeeded:       p.episode.LapsRequired,
		CurrentLap:       p.lap,
		MandatoryPickup:  s.MandatoryPickup,
		MandatoryDropoff: s.MandatoryDropoff,
		HasCargo:         s.HasCargo,
		PreferredSide:    p.cfg.PreferredSide,
		Tolerances:       p.cfg.Tolerances,
	}
	if p.exclusion != nil {
		split := p.exclusion.Center().X
		req.SplitX = &split
	}

	plan := algo.PlanLaps(req, dm)
	var wps []core.Waypoint
	if plan.Empty() {
		for _, t := range algo.OrderPickups(s.Agent, pickups, dm, p.cfg.PreferredSide) {
			wps = append(wps, core.NewWaypoint(core.WaypointPickup, t, p.cfg.Tolerances, p.lap))
		}
	} else {
		for _, lap := range plan.Laps {
			wps = append(wps, lap...)
		}
		p.log.Debug("lap plan", "laps", len(plan.Laps), "strategy", plan.Strategy, "cost", plan.Cost)
	}

	for len(wps) > 0 && wps[0].Reached(s.Agent) {
		wps = wps[1:]
	}
	return wps
}

// staticWaypoints walks the authored route for the current lap and
// returns the next uncompleted targets.
func (p *Planner) staticWaypoints(s core.Snapshot) []core.Waypoint {
	var route []core.Waypoint
	for _, w := range p.cfg.Route() {
		if w.Lap != 0 && w.Lap != p.lap {
			continue
		}
		if r, ok := w.Resolve(s.MandatoryPickup, s.MandatoryDropoff); ok {
			w = r
		}
		route = append(route, w)
	}
	if len(route) == 0 {
		p.log.Warn("no static route", "difficulty", p.cfg.Difficulty, "lap", p.lap)
		return nil
	}

	for {
		next := algo.NextUncompleted(route, p.completed, p.routeFrom, len(route))
		if len(next) == 0 {
			return nil
		}
		p.routeFrom = next[0]
		advanced := false
		for k, i := range next {
			w := route[i]
			if !w.Reached(s.Agent) {
				continue
			}
			// Mandatory stops only count in route order.
			if w.Type.Mandatory() && k != 0 {
				continue
			}
			p.completed[i] = true
			advanced = true
		}
		if !advanced {
			break
		}
	}

	var out []core.Waypoint
	for _, i := range algo.NextUncompleted(route, p.completed, p.routeFrom, p.cfg.PathLookahead) {
		if route[i].Location != nil {
			out = append(out, route[i])
		}
	}
	return out
}
