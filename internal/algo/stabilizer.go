package algo

import (
	"math"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Decision records why Stabilize returned what it did.
type Decision int

const (
	AcceptedNoPlan Decision = iota
	AcceptedNewGoal
	AcceptedDrifted
	AcceptedNewDanger
	AcceptedCheaper
	KeptPrevious
	KeptOnEmpty
	Unreachable
)

func (d Decision) String() string {
	return [...]string{
		"accepted:no-plan", "accepted:new-goal", "accepted:drifted", "accepted:new-danger",
		"accepted:cheaper", "kept", "kept:empty-replan", "unreachable",
	}[d]
}

// Kept reports whether the previous plan survived.
func (d Decision) Kept() bool {
	return d == KeptPrevious || d == KeptOnEmpty
}

// Stabilizer holds the one active tactical plan and decides when a fresh
// search is good enough to replace it.
type Stabilizer struct {
	Threshold float64 // new cost must be <= Threshold * old remaining cost
	Proximity int     // Chebyshev tiles the agent may stray from the old plan

	active *PathResult
	goal   core.Tile
	danger core.TileSet // tiles of active that were dangerous on acceptance
	last   Decision
}

// NewStabilizer creates a stabilizer with no active plan.
func NewStabilizer(threshold float64, proximity int) *Stabilizer {
	return &Stabilizer{Threshold: threshold, Proximity: proximity}
}

// Active returns the current plan, nil if none.
func (s *Stabilizer) Active() *PathResult { return s.active }

// Last returns the decision of the most recent Stabilize call.
func (s *Stabilizer) Last() Decision { return s.last }

// Trim returns the part of the active plan still ahead of agent.
func (s *Stabilizer) Trim(agent core.Tile) []core.Tile {
	if s.active == nil {
		return nil
	}
	return core.TrimPath(s.active.Tiles, agent)
}

// Clear drops the active plan.
func (s *Stabilizer) Clear() {
	s.active = nil
	s.danger = nil
	s.goal = core.Tile{}
}

// Stabilize runs a fresh search and returns either it or the previous
// plan. When the previous plan is kept the very same pointer is returned.
func (s *Stabilizer) Stabilize(m CostModel, turn core.TurnParams, req PathRequest) *PathResult {
	fresh := FindPath(m, turn, req)

	if s.active == nil {
		return s.accept(m, req.Goal, fresh, AcceptedNoPlan)
	}
	if s.goal != req.Goal {
		return s.accept(m, req.Goal, fresh, AcceptedNewGoal)
	}

	idx, ok := s.closest(req.Start)
	if !ok {
		return s.accept(m, req.Goal, fresh, AcceptedDrifted)
	}
	if fresh.Empty() {
		s.last = KeptOnEmpty
		return s.active
	}
	if s.enteredDanger(m, idx) {
		return s.accept(m, req.Goal, fresh, AcceptedNewDanger)
	}

	remaining := s.active.RemainingCost(idx)
	if fresh.Cost <= s.Threshold*remaining {
		return s.accept(m, req.Goal, fresh, AcceptedCheaper)
	}

	s.last = KeptPrevious
	return s.active
}

func (s *Stabilizer) accept(m CostModel, goal core.Tile, fresh *PathResult, why Decision) *PathResult {
	if fresh.Empty() {
		s.Clear()
		s.last = Unreachable
		return fresh
	}
	s.active = fresh
	s.goal = goal
	s.danger = make(core.TileSet)
	for _, t := range fresh.Tiles {
		if m.Dangerous(t) {
			s.danger.Add(t)
		}
	}
	s.last = why
	return fresh
}

// closest finds the nearest tile of the active plan to start by straight
// line and checks it against the proximity tolerance.
func (s *Stabilizer) closest(start core.Tile) (int, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, t := range s.active.Tiles {
		if t.Plane != start.Plane {
			continue
		}
		if d := t.Euclidean(start); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || s.active.Tiles[best].Chebyshev(start) > s.Proximity {
		return 0, false
	}
	return best, true
}

func (s *Stabilizer) enteredDanger(m CostModel, from int) bool {
	for _, t := range s.active.Tiles[from:] {
		if m.Dangerous(t) && !s.danger.Has(t) {
			return true
		}
	}
	return false
}
