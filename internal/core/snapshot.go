package core

// Snapshot is everything the host observed this tick. The planner reads it
// and never keeps a reference to its slices.
type Snapshot struct {
	Agent   Tile
	Heading Dir // zero when unknown

	Pickups []Pickup
	Hazards []Tile // currently dangerous hazards only

	NewObstacles []Tile
	NewBoosts    []Tile

	HasCargo bool
	Lap      int // 1-based, as reported by the host

	// Nil until the host has discovered them.
	MandatoryPickup  *Tile
	MandatoryDropoff *Tile

	Reason string // diagnostics only
}

// Plan is a published tactical path. Plans are replaced, never edited.
type Plan struct {
	Tiles   []Tile
	Preview []Tile // next segment, optional
	Goal    Tile
	Cost    float64
	Reason  string
	Tick    int
}

// Empty reports whether the plan has nothing to follow.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Tiles) == 0
}

// Next returns the first tile to move to.
func (p *Plan) Next() (Tile, bool) {
	if p.Empty() {
		return Tile{}, false
	}
	return p.Tiles[0], true
}

// TrimmedTo drops the prefix of the plan up to and including agent's
// closest tile on it. The result never starts with agent.
func (p *Plan) TrimmedTo(agent Tile) *Plan {
	if p == nil {
		return nil
	}
	c := *p
	c.Tiles = TrimPath(p.Tiles, agent)
	return &c
}

// TrimPath returns the part of path still ahead of agent. The closest tile
// is found by straight-line distance; if it is agent itself it is dropped.
func TrimPath(path []Tile, agent Tile) []Tile {
	if len(path) == 0 {
		return nil
	}
	best := 0
	bestDist := path[0].Euclidean(agent)
	for i := 1; i < len(path); i++ {
		if d := path[i].Euclidean(agent); d < bestDist {
			best, bestDist = i, d
		}
	}
	if path[best] == agent {
		best++
	}
	out := make([]Tile, len(path)-best)
	copy(out, path[best:])
	return out
}
