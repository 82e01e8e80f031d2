package algo

import (
	"math"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// LapRequest is the input to PlanLaps.
type LapRequest struct {
	Start            core.Tile
	Pickups          []core.Tile
	LapsNeeded       int // total for the episode
	CurrentLap       int // 1-based
	MandatoryPickup  *core.Tile
	MandatoryDropoff *core.Tile
	HasCargo         bool

	PreferredSide core.Side
	SplitX        *int // column dividing outbound and return sides; nil disables filtering
	Tolerances    core.Tolerances
}

// LapPlan is an ordered waypoint list per remaining lap.
type LapPlan struct {
	Laps     [][]core.Waypoint
	Cost     float64
	Strategy PartitionStrategy
}

// Empty reports whether the plan has no laps.
func (p LapPlan) Empty() bool { return len(p.Laps) == 0 }

// Current returns the waypoints of the lap in progress.
func (p LapPlan) Current() []core.Waypoint {
	if p.Empty() {
		return nil
	}
	return p.Laps[0]
}

// PlanLaps assigns pending pickups to the remaining laps and orders each
// lap around its mandatory stop, keeping the cheapest assignment summed
// over all laps.
func PlanLaps(req LapRequest, d Distancer) LapPlan {
	if req.MandatoryPickup == nil || req.MandatoryDropoff == nil {
		return LapPlan{}
	}
	remaining := req.LapsNeeded - req.CurrentLap + 1
	if remaining <= 0 {
		return LapPlan{}
	}

	pickups := req.Pickups
	final := req.CurrentLap >= req.LapsNeeded
	if !final && req.SplitX != nil {
		side := req.PreferredSide
		if req.HasCargo {
			side = side.Opposite()
		}
		pickups = filterSide(pickups, side, *req.SplitX)
	}

	best := LapPlan{Cost: math.Inf(1)}
	for _, cand := range CandidatePartitions(pickups, remaining) {
		plan := LapPlan{Strategy: cand.Strategy}
		for k, group := range cand.Laps {
			start, cargo := *req.MandatoryDropoff, false
			if k == 0 {
				start, cargo = req.Start, req.HasCargo
			}
			wps, cost := planLap(start, group, cargo, req, req.CurrentLap+k, d)
			plan.Laps = append(plan.Laps, wps)
			plan.Cost += cost
		}
		if plan.Cost < best.Cost {
			best = plan
		}
	}
	if best.Empty() {
		return LapPlan{}
	}
	return best
}

func filterSide(pickups []core.Tile, side core.Side, split int) []core.Tile {
	var out []core.Tile
	for _, p := range pickups {
		if side.Holds(p.X, split) {
			out = append(out, p)
		}
	}
	return out
}

// planLap orders one lap's pickups and inserts the mandatory stop. Without
// cargo the stop is the pickup location and the lap closes at the dropoff;
// with cargo the stop is the dropoff itself.
func planLap(start core.Tile, group []core.Tile, cargo bool, req LapRequest, lap int, d Distancer) ([]core.Waypoint, float64) {
	order := OrderPickups(start, group, d, req.PreferredSide)

	stop, stopType := *req.MandatoryPickup, core.WaypointMandatoryPickup
	var terminal *core.Tile
	if cargo {
		stop, stopType = *req.MandatoryDropoff, core.WaypointMandatoryDropoff
	} else {
		terminal = req.MandatoryDropoff
	}

	pos, cost := BestInsertion(start, order, stop, terminal, d)

	wps := make([]core.Waypoint, 0, len(order)+2)
	for i, t := range order {
		if i == pos {
			wps = append(wps, core.NewWaypoint(stopType, stop, req.Tolerances, lap))
		}
		wps = append(wps, core.NewWaypoint(core.WaypointPickup, t, req.Tolerances, lap))
	}
	if pos == len(order) {
		wps = append(wps, core.NewWaypoint(stopType, stop, req.Tolerances, lap))
	}
	if terminal != nil {
		wps = append(wps, core.NewWaypoint(core.WaypointMandatoryDropoff, *terminal, req.Tolerances, lap))
	}
	return wps, cost
}

// InsertionCost is the route cost with stop inserted before seq[pos].
func InsertionCost(start core.Tile, seq []core.Tile, stop core.Tile, terminal *core.Tile, pos int, d Distancer) float64 {
	route := make([]core.Tile, 0, len(seq)+1)
	route = append(route, seq[:pos]...)
	route = append(route, stop)
	route = append(route, seq[pos:]...)
	return RouteCost(start, route, terminal, d)
}

// BestInsertion tries every position and returns the cheapest.
// Ties go to the earliest position.
func BestInsertion(start core.Tile, seq []core.Tile, stop core.Tile, terminal *core.Tile, d Distancer) (int, float64) {
	bestPos, bestCost := 0, math.Inf(1)
	for pos := 0; pos <= len(seq); pos++ {
		if c := InsertionCost(start, seq, stop, terminal, pos, d); c < bestCost {
			bestPos, bestCost = pos, c
		}
	}
	return bestPos, bestCost
}

// NextUncompleted returns up to n indices of route that are not in
// completed, scanning from `from` and wrapping around. Skipped waypoints
// before `from` are picked up again after the wrap.
func NextUncompleted(route []core.Waypoint, completed map[int]bool, from, n int) []int {
	if len(route) == 0 || n <= 0 {
		return nil
	}
	if from < 0 || from >= len(route) {
		from = 0
	}
	var out []int
	for k := 0; k < len(route) && len(out) < n; k++ {
		i := (from + k) % len(route)
		if !completed[i] {
			out = append(out, i)
		}
	}
	return out
}
