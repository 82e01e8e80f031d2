package planner

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

func newTestPlanner(t *testing.T, mut func(*core.Config)) *Planner {
	t.Helper()
	cfg := core.DefaultConfig()
	if mut != nil {
		mut(&cfg)
	}
	p, err := New(cfg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Signal(EnteredArea); err != nil {
		t.Fatalf("Signal(EnteredArea): %v", err)
	}
	return p
}

func pickups(tiles ...core.Tile) []core.Pickup {
	out := make([]core.Pickup, len(tiles))
	for i, t := range tiles {
		out[i] = core.Pickup{Tile: t, Collectible: true}
	}
	return out
}

func onPlan(plan *core.Plan, t core.Tile) bool {
	for _, p := range plan.Tiles {
		if p == t {
			return true
		}
	}
	return false
}

func TestPlanner_IdleReturnsNil(t *testing.T) {
	p, err := New(core.DefaultConfig(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	if plan := p.Update(core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(4, 0))}); plan != nil {
		t.Errorf("idle planner returned %v", plan)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.PathLookahead = 0
	if _, err := New(cfg); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("New = %v, want ErrInvalidConfig", err)
	}
}

func TestPlanner_FirstPlanHeadsToPickup(t *testing.T) {
	p := newTestPlanner(t, nil)
	agent := core.T(0, 0)
	plan := p.Update(core.Snapshot{Agent: agent, Pickups: pickups(core.T(8, 0))})

	if plan.Empty() {
		t.Fatal("expected a plan")
	}
	if plan.Tiles[0] == agent {
		t.Error("plan starts at the agent tile")
	}
	if !plan.Tiles[0].Adjacent(agent) {
		t.Errorf("first step %v is not adjacent to the agent", plan.Tiles[0])
	}
	last := plan.Tiles[len(plan.Tiles)-1]
	if last.Chebyshev(core.T(8, 0)) > p.Config().Tolerances.Pickup {
		t.Errorf("plan ends at %v, outside pickup tolerance", last)
	}
	if !strings.Contains(plan.Reason, reasonInitial) {
		t.Errorf("reason = %q, want %q", plan.Reason, reasonInitial)
	}
	if p.Episode().Phase != CollectingOutbound {
		t.Errorf("phase = %v, want %v", p.Episode().Phase, CollectingOutbound)
	}
}

func TestPlanner_PeriodicReplanKeepsPlan(t *testing.T) {
	p := newTestPlanner(t, nil)
	snap := core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(10, 0))}

	p.Update(snap)
	first := p.published
	for i := 0; i < 4; i++ {
		p.Update(snap)
	}

	st := p.Stats()
	if st.Replans != 3 {
		t.Errorf("Replans = %d, want 3 (ticks 1, 3, 5)", st.Replans)
	}
	if st.Kept != 2 || st.Replaced != 1 {
		t.Errorf("Kept/Replaced = %d/%d, want 2/1", st.Kept, st.Replaced)
	}
	if p.published != first {
		t.Error("stable world replaced the published plan")
	}
}

func TestPlanner_PickupChangeTriggersReplan(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.Update(core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(10, 0))})
	p.Update(core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(10, 0), core.T(-3, 0))})

	st := p.Stats()
	if st.Replans != 2 {
		t.Fatalf("Replans = %d, want 2", st.Replans)
	}
	if !strings.Contains(st.LastReason, reasonPickups) {
		t.Errorf("LastReason = %q, want %q", st.LastReason, reasonPickups)
	}
}

func TestPlanner_CargoChangeTriggersReplan(t *testing.T) {
	p := newTestPlanner(t, nil)
	snap := core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(10, 0))}
	p.Update(snap)
	snap.HasCargo = true
	p.Update(snap)

	if !strings.Contains(p.Stats().LastReason, reasonCargo) {
		t.Errorf("LastReason = %q, want %q", p.Stats().LastReason, reasonCargo)
	}
}

func TestPlanner_NewObstacleOnPathForcesDetour(t *testing.T) {
	p := newTestPlanner(t, nil)
	snap := core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(core.T(10, 0))}
	plan := p.Update(snap)
	rock := core.T(5, 0)
	if !onPlan(plan, rock) {
		t.Fatalf("precondition: straight plan should cross %v: %v", rock, plan.Tiles)
	}

	snap.NewObstacles = []core.Tile{rock}
	plan = p.Update(snap)
	if onPlan(plan, rock) {
		t.Errorf("plan still crosses new obstacle: %v", plan.Tiles)
	}
	if !strings.Contains(p.Stats().LastReason, reasonBlocked) {
		t.Errorf("LastReason = %q, want %q", p.Stats().LastReason, reasonBlocked)
	}
}

func TestPlanner_FallsBackToDirectTarget(t *testing.T) {
	p := newTestPlanner(t, func(c *core.Config) {
		c.MaxSearchRadius = 30
		c.Tolerances.Pickup = 0
	})
	target := core.T(8, 0)
	var ring []core.Tile
	for _, d := range core.Neighbors8 {
		ring = append(ring, target.Add(d))
	}

	plan := p.Update(core.Snapshot{Agent: core.T(0, 0), Pickups: pickups(target), NewObstacles: ring})
	if plan.Empty() || plan.Tiles[0] != target {
		t.Fatalf("fallback plan = %v, want [%v]", plan, target)
	}
	if !strings.Contains(plan.Reason, "fallback") {
		t.Errorf("reason = %q, want fallback", plan.Reason)
	}
	if p.Stats().Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1", p.Stats().Fallbacks)
	}
}

func TestPlanner_DynamicLapIncludesMandatoryStops(t *testing.T) {
	p := newTestPlanner(t, nil)
	stop, drop := core.T(0, -15), core.T(0, 200)
	p.Update(core.Snapshot{
		Agent:            core.T(0, 0),
		Pickups:          pickups(core.T(-4, -5), core.T(3, -8)),
		MandatoryPickup:  &stop,
		MandatoryDropoff: &drop,
	})

	wps := p.Waypoints()
	if len(wps) == 0 {
		t.Fatal("no waypoints")
	}
	var sawStop bool
	for _, w := range wps {
		if w.Type == core.WaypointMandatoryPickup {
			sawStop = true
		}
	}
	if !sawStop {
		t.Errorf("waypoints lack the mandatory pickup: %v", wps)
	}
	if last := wps[len(wps)-1]; last.Type != core.WaypointMandatoryDropoff {
		t.Errorf("lap should end at the dropoff, ends with %v", last)
	}

	ex := p.Exclusion()
	want := core.ExclusionFrom(drop, p.Config().ExclusionOffsets)
	if ex == nil || *ex != want {
		t.Errorf("Exclusion() = %v, want %v", ex, want)
	}
}

func TestPlanner_ResetKeepsKnowledge(t *testing.T) {
	p := newTestPlanner(t, nil)
	drop := core.T(0, 200)
	p.Update(core.Snapshot{
		Agent:            core.T(0, 0),
		Pickups:          pickups(core.T(6, 0)),
		NewObstacles:     []core.Tile{core.T(3, 3)},
		NewBoosts:        []core.Tile{core.T(-3, 3)},
		MandatoryDropoff: &drop,
	})

	if err := p.Signal(LeftArea); err != nil {
		t.Fatal(err)
	}
	if p.Plan() != nil || p.Exclusion() != nil || p.Episode().Phase != Idle {
		t.Error("Reset left per-episode state behind")
	}
	if !p.Obstacles().Has(core.T(3, 3)) || !p.Boosts().Has(core.T(-3, 3)) {
		t.Error("Reset dropped persistent knowledge")
	}

	p.ClearPersistentKnowledge()
	if p.Obstacles().Len() != 0 || p.Boosts().Len() != 0 {
		t.Error("ClearPersistentKnowledge kept knowledge")
	}
}

func TestPlanner_SetDifficultyClearsKnowledge(t *testing.T) {
	p := newTestPlanner(t, nil)
	p.Update(core.Snapshot{Agent: core.T(0, 0), NewObstacles: []core.Tile{core.T(1, 5)}})

	p.SetDifficulty(core.Swordfish)
	if p.Obstacles().Len() != 1 {
		t.Error("same difficulty should not clear knowledge")
	}
	p.SetDifficulty(core.Marlin)
	if p.Obstacles().Len() != 0 {
		t.Error("difficulty change should clear knowledge")
	}
	if got := p.Episode().LapsRequired; got != 3 {
		t.Errorf("LapsRequired = %d, want 3", got)
	}
}

func TestPlanner_SignalErrors(t *testing.T) {
	p, err := New(core.DefaultConfig(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	for _, sig := range []Signal{CargoDelivered, LeftArea} {
		if err := p.Signal(sig); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Signal(%v) = %v, want ErrInvalidTransition", sig, err)
		}
	}
}

func staticConfig(c *core.Config) {
	c.RouteMode = core.Static
	c.ReplanInterval = 1
	a, b, d := core.T(3, 0), core.T(6, 0), core.T(9, 0)
	c.Routes = map[core.Difficulty][]core.Waypoint{
		core.Swordfish: {
			{Type: core.WaypointAuxiliary, Location: &a, Tolerance: 1},
			{Type: core.WaypointAuxiliary, Location: &b, Tolerance: 1},
			{Type: core.WaypointMandatoryPickup, Tolerance: 2},
			{Type: core.WaypointAuxiliary, Location: &d, Tolerance: 1},
		},
	}
}

func TestPlanner_StaticRouteAdvances(t *testing.T) {
	p := newTestPlanner(t, staticConfig)

	p.Update(core.Snapshot{Agent: core.T(0, 0)})
	wps := p.Waypoints()
	if len(wps) != 2 || *wps[0].Location != core.T(3, 0) {
		t.Fatalf("waypoints = %v, want [aux@(3,0) aux@(6,0)]", wps)
	}

	p.Update(core.Snapshot{Agent: core.T(3, 1)})
	if got := *p.Waypoints()[0].Location; got != core.T(6, 0) {
		t.Errorf("after reaching (3,0), target = %v, want (6,0)", got)
	}

	// The mandatory stop resolves once its location is known.
	stop := core.T(7, 5)
	p.Update(core.Snapshot{Agent: core.T(6, 0), MandatoryPickup: &stop})
	if w := p.Waypoints()[0]; w.Type != core.WaypointMandatoryPickup || *w.Location != stop {
		t.Errorf("target = %v, want mandatory_pickup@%v", w, stop)
	}
}

func TestPlanner_StaticRouteBacktracks(t *testing.T) {
	p := newTestPlanner(t, staticConfig)

	// Reaching the second waypoint first completes it, the first stays due.
	p.Update(core.Snapshot{Agent: core.T(6, 0)})
	wps := p.Waypoints()
	if len(wps) == 0 || *wps[0].Location != core.T(3, 0) {
		t.Fatalf("waypoints = %v, want (3,0) first", wps)
	}
	for _, w := range wps {
		if *w.Location == core.T(6, 0) {
			t.Errorf("completed waypoint still listed: %v", wps)
		}
	}
}

func TestPlanner_StaticRouteResetsPerLap(t *testing.T) {
	p := newTestPlanner(t, staticConfig)
	p.Update(core.Snapshot{Agent: core.T(3, 0), Lap: 1})
	if got := *p.Waypoints()[0].Location; got != core.T(6, 0) {
		t.Fatalf("lap 1 target = %v, want (6,0)", got)
	}
	p.Update(core.Snapshot{Agent: core.T(0, 0), Lap: 2})
	if got := *p.Waypoints()[0].Location; got != core.T(3, 0) {
		t.Errorf("lap 2 target = %v, want (3,0)", got)
	}
	if !strings.Contains(p.Stats().LastReason, reasonLap) {
		t.Errorf("LastReason = %q, want %q", p.Stats().LastReason, reasonLap)
	}
}

func TestPlanner_DetoursWhenExclusionBlocksStraightLine(t *testing.T) {
	p := newTestPlanner(t, nil)
	drop, stop := core.T(0, 0), core.T(0, -140)
	excl := core.ExclusionFrom(drop, p.Config().ExclusionOffsets)
	agent := core.T(4, excl.MinY-1)
	tol := p.Config().Tolerances.MandatoryDropoff

	first := p.Update(core.Snapshot{
		Agent:            agent,
		HasCargo:         true,
		MandatoryPickup:  &stop,
		MandatoryDropoff: &drop,
	})
	if first.Empty() || !first.Tiles[0].Adjacent(agent) || strings.Contains(first.Reason, "fallback") {
		t.Fatalf("first plan %v does not lead away from %v", first, agent)
	}

	for tick := 0; tick < 400 && agent.Chebyshev(drop) > tol; tick++ {
		plan := p.Update(core.Snapshot{
			Agent:            agent,
			HasCargo:         true,
			MandatoryPickup:  &stop,
			MandatoryDropoff: &drop,
		})
		if plan.Empty() {
			t.Fatalf("tick %d: empty plan at %v", tick, agent)
		}
		next := plan.Tiles[0]
		if !next.Adjacent(agent) {
			next = stepToward(agent, next, excl)
		}
		if excl.Contains(next) {
			t.Fatalf("tick %d: plan enters the exclusion at %v", tick, next)
		}
		agent = next
	}
	if agent.Chebyshev(drop) > tol {
		t.Errorf("agent stalled at %v, dropoff %v", agent, drop)
	}
}

// stepToward moves one tile toward target the way a host follows a
// non-adjacent fallback plan.
func stepToward(from, target core.Tile, excl core.Rect) core.Tile {
	best, bestDist := from, from.Euclidean(target)
	for _, d := range core.Neighbors8 {
		n := from.Add(d)
		if excl.Contains(n) {
			continue
		}
		if dist := n.Euclidean(target); dist < bestDist {
			best, bestDist = n, dist
		}
	}
	return best
}
