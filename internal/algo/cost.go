package algo

import (
	"math"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Impassable is the step cost of tiles the search must never enter.
const Impassable = 1e6

// Penalty table. Index is the Chebyshev distance to the feature.
var (
	obstacleNearPenalty  = [...]float64{0, 100, 50}
	exclusionNearPenalty = [...]float64{0, 100, 50, 25}
)

const (
	hazardRadius  = 3
	hazardPenalty = 200.0
	boostDiscount = 3.0
)

// BoostParams shapes the reward for driving over a boost tile.
type BoostParams struct {
	Cost float64 // base cost of the boost tile itself, negative
	Run  int     // discounted tiles after it
}

var (
	tacticalBoost  = BoostParams{Cost: -10, Run: 5}
	strategicBoost = BoostParams{Cost: -5, Run: 8}
)

// Field is the per-tick view of the world the cost models read.
// Built once, read-only afterwards.
type Field struct {
	obstacles core.TileSet
	boosts    core.TileSet
	exclusion *core.Rect

	obstacleDist map[core.Tile]int // 1..2
	hazardZone   core.TileSet
}

// NewField precomputes proximity lookups for one snapshot.
func NewField(obstacles, boosts core.TileSet, exclusion *core.Rect, hazards []core.Tile) *Field {
	f := &Field{
		obstacles:    obstacles,
		boosts:       boosts,
		exclusion:    exclusion,
		obstacleDist: make(map[core.Tile]int),
		hazardZone:   make(core.TileSet),
	}
	if f.obstacles == nil {
		f.obstacles = make(core.TileSet)
	}
	if f.boosts == nil {
		f.boosts = make(core.TileSet)
	}

	r := len(obstacleNearPenalty) - 1
	for o := range f.obstacles {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				t := core.Tile{X: o.X + dx, Y: o.Y + dy, Plane: o.Plane}
				d := max(abs(dx), abs(dy))
				if d == 0 {
					continue
				}
				if cur, ok := f.obstacleDist[t]; !ok || d < cur {
					f.obstacleDist[t] = d
				}
			}
		}
	}

	for _, h := range hazards {
		for dy := -hazardRadius; dy <= hazardRadius; dy++ {
			for dx := -hazardRadius; dx <= hazardRadius; dx++ {
				f.hazardZone.Add(core.Tile{X: h.X + dx, Y: h.Y + dy, Plane: h.Plane})
			}
		}
	}
	return f
}

// Blocked reports whether t can never be entered.
func (f *Field) Blocked(t core.Tile) bool {
	if f.exclusion != nil && f.exclusion.Contains(t) {
		return true
	}
	return f.obstacles.Has(t)
}

// Clear reports whether t is open and outside every proximity penalty.
func (f *Field) Clear(t core.Tile) bool {
	if f.Blocked(t) {
		return false
	}
	if _, near := f.obstacleDist[t]; near {
		return false
	}
	return f.exclusion == nil || f.exclusion.Distance(t) >= len(exclusionNearPenalty)
}

// Exclusion returns the no-go rectangle, nil if unknown.
func (f *Field) Exclusion() *core.Rect { return f.exclusion }

// Obstacles returns the obstacle set. Callers must not modify it.
func (f *Field) Obstacles() core.TileSet { return f.obstacles }

// Boosts returns the boost set. Callers must not modify it.
func (f *Field) Boosts() core.TileSet { return f.boosts }

// CostModel maps a directed step to a cost. run is the remaining boost
// run-length before the step; next is the value after it.
type CostModel interface {
	Step(from, to core.Tile, run int) (cost float64, next int)
	// Dangerous reports whether t currently carries a hazard penalty.
	Dangerous(t core.Tile) bool
	Field() *Field
}

type gridCost struct {
	field   *Field
	boost   BoostParams
	hazards bool
}

// ModelOption adjusts a cost model.
type ModelOption func(*gridCost)

// WithBoostCost overrides the cost of entering a boost tile.
func WithBoostCost(c float64) ModelOption {
	return func(m *gridCost) { m.boost.Cost = c }
}

// Tactical is the full model used for the path the agent follows now.
func Tactical(f *Field, opts ...ModelOption) CostModel {
	m := &gridCost{field: f, boost: tacticalBoost, hazards: true}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Strategic ignores hazards. They move, so they say nothing about
// segments the agent will drive later.
func Strategic(f *Field) CostModel {
	return &gridCost{field: f, boost: strategicBoost}
}

func (m *gridCost) Field() *Field { return m.field }

func (m *gridCost) Dangerous(t core.Tile) bool {
	return m.hazards && m.field.hazardZone.Has(t)
}

func (m *gridCost) Step(from, to core.Tile, run int) (float64, int) {
	f := m.field
	if !from.Adjacent(to) {
		run = 0
	}

	if f.exclusion != nil && f.exclusion.Contains(to) {
		return Impassable, 0
	}
	if f.obstacles.Has(to) {
		return Impassable, 0
	}

	cost := 1.0
	next := run
	switch {
	case f.boosts.Has(to):
		cost = m.boost.Cost
		next = m.boost.Run
	case run > 0:
		cost /= boostDiscount
		next = run - 1
	}

	if d, ok := f.obstacleDist[to]; ok {
		cost += obstacleNearPenalty[d]
	}
	if f.exclusion != nil {
		if d := f.exclusion.Distance(to); d < len(exclusionNearPenalty) {
			cost += exclusionNearPenalty[d]
		}
	}
	if m.Dangerous(to) {
		cost += hazardPenalty
	}
	return cost, next
}

// PathCost re-costs tiles from a fresh boost counter, turn penalties
// included. It matches the Cost FindPath reports for the same tiles.
func PathCost(m CostModel, turn core.TurnParams, tiles []core.Tile) float64 {
	total := 0.0
	run := 0
	var prev core.Dir
	for i := 1; i < len(tiles); i++ {
		c, next := m.Step(tiles[i-1], tiles[i], run)
		run = next
		dir := tiles[i].Sub(tiles[i-1])
		total += c + turnPenalty(prev, dir, turn)
		prev = dir
	}
	return total
}

// turnPenalty prices the heading change from in to out. No penalty when
// in is zero (no established heading).
func turnPenalty(in, out core.Dir, p core.TurnParams) float64 {
	if in.IsZero() || out.IsZero() || p.RateDeg <= 0 {
		return 0
	}
	if in.DX*out.DY == in.DY*out.DX && in.Dot(out) > 0 {
		return 0
	}
	angle := angleBetween(in, out)
	ticks := angle / p.RateDeg
	penalty := p.Base + ticks*p.CostPerTick
	if angle > 90 {
		over := ticks - 90/p.RateDeg
		penalty += p.SharpCost * over * over
	}
	return penalty
}

func angleBetween(a, b core.Dir) float64 {
	ax, ay := float64(a.DX), float64(a.DY)
	bx, by := float64(b.DX), float64(b.DY)
	cos := (ax*bx + ay*by) / (math.Hypot(ax, ay) * math.Hypot(bx, by))
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
