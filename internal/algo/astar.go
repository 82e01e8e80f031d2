// Package algo implements grid search, plan stabilization and multi-lap
// route ordering.
package algo

import (
	"container/heap"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// PathRequest describes one point-to-point search.
type PathRequest struct {
	Start     core.Tile
	Goal      core.Tile
	MaxRadius int      // expansion cap is MaxRadius²
	Tolerance int      // Chebyshev distance that counts as reaching Goal
	Heading   core.Dir // if non-zero, the first move must not point backwards
}

// PathResult is the outcome of a search. Tiles includes Start.
type PathResult struct {
	Tiles      []core.Tile
	Cumulative []float64 // cost from Start up to and including Tiles[i]
	Cost       float64
	Expanded   int
	Exhausted  bool // stopped by the expansion cap
}

// Empty reports whether no path was found.
func (r *PathResult) Empty() bool {
	return r == nil || len(r.Tiles) == 0
}

// RemainingCost is the cost of continuing from Tiles[i] to the end.
func (r *PathResult) RemainingCost(i int) float64 {
	if r.Empty() || i < 0 || i >= len(r.Tiles) {
		return 0
	}
	return r.Cost - r.Cumulative[i]
}

// gridNode is a search node. run carries the boost counter so the cost
// model stays pure.
type gridNode struct {
	tile   core.Tile
	g      float64
	h      int // Manhattan to goal, tie-break only
	seq    int
	dir    core.Dir
	run    int
	parent *gridNode
	index  int
}

// gridHeap implements heap.Interface.
type gridHeap []*gridNode

func (h gridHeap) Len() int { return len(h) }
func (h gridHeap) Less(i, j int) bool {
	if h[i].g != h[j].g {
		return h[i].g < h[j].g
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].seq < h[j].seq
}
func (h gridHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *gridHeap) Push(x any) {
	n := x.(*gridNode)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *gridHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// FindPath searches the 8-connected grid from req.Start to req.Goal.
// The heuristic is zero: boost tiles make edge costs negative, and a
// distance heuristic would no longer be admissible.
func FindPath(m CostModel, turn core.TurnParams, req PathRequest) *PathResult {
	res := &PathResult{}
	if req.Start.Plane != req.Goal.Plane || req.MaxRadius <= 0 {
		return res
	}
	if req.Start.Chebyshev(req.Goal) <= req.Tolerance {
		res.Tiles = []core.Tile{req.Start}
		res.Cumulative = []float64{0}
		return res
	}

	maxNodes := req.MaxRadius * req.MaxRadius
	best := map[core.Tile]float64{req.Start: 0}
	closed := make(map[core.Tile]bool)
	seq := 0

	open := &gridHeap{}
	heap.Init(open)
	heap.Push(open, &gridNode{tile: req.Start, h: req.Start.Manhattan(req.Goal)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*gridNode)
		if closed[cur.tile] {
			continue
		}
		closed[cur.tile] = true

		if cur.tile.Chebyshev(req.Goal) <= req.Tolerance {
			res.fill(cur)
			res.Expanded = len(closed)
			return res
		}

		if len(closed) > maxNodes {
			res.Exhausted = true
			break
		}

		for _, d := range core.Neighbors8 {
			if cur.parent == nil && !req.Heading.IsZero() && d.Dot(req.Heading) <= 0 {
				continue
			}
			next := cur.tile.Add(d)
			if closed[next] {
				continue
			}
			c, run := m.Step(cur.tile, next, cur.run)
			if c >= Impassable {
				continue
			}
			g := cur.g + (c + turnPenalty(cur.dir, d, turn))
			if old, ok := best[next]; ok && old <= g {
				continue
			}
			best[next] = g
			seq++
			heap.Push(open, &gridNode{
				tile:   next,
				g:      g,
				h:      next.Manhattan(req.Goal),
				seq:    seq,
				dir:    d,
				run:    run,
				parent: cur,
			})
		}
	}

	res.Expanded = len(closed)
	return res
}

func (r *PathResult) fill(goal *gridNode) {
	var nodes []*gridNode
	for n := goal; n != nil; n = n.parent {
		nodes = append(nodes, n)
	}
	r.Tiles = make([]core.Tile, len(nodes))
	r.Cumulative = make([]float64, len(nodes))
	for i, n := range nodes {
		j := len(nodes) - 1 - i
		r.Tiles[j] = n.tile
		r.Cumulative[j] = n.g
	}
	r.Cost = goal.g
}

// FindPathThrough chains searches through goals in order, skipping the
// duplicated tile at each junction. A segment that cannot be found is
// replaced by its goal tile so callers still get a direction to head in.
func FindPathThrough(m CostModel, turn core.TurnParams, start core.Tile, goals []core.Tile, maxRadius int) []core.Tile {
	if len(goals) == 0 {
		return nil
	}

	var full []core.Tile
	cur := start
	for i, goal := range goals {
		seg := FindPath(m, turn, PathRequest{Start: cur, Goal: goal, MaxRadius: maxRadius})
		tiles := seg.Tiles
		if seg.Empty() {
			tiles = []core.Tile{cur, goal}
		}
		if i == 0 {
			full = append(full, tiles...)
		} else {
			full = append(full, tiles[1:]...)
		}
		cur = goal
	}
	return full
}

// ClampGoal returns a goal within maxRadius of start that is reachable
// from start and as close to goal as possible. Tiles clear of proximity
// penalties are preferred over penalised ones. A goal already in range
// and not blocked is returned unchanged. Returns start when nothing else
// is reachable. A nil field treats every tile as open.
func ClampGoal(f *Field, start, goal core.Tile, maxRadius int) core.Tile {
	open := func(t core.Tile) bool {
		return start.Chebyshev(t) <= maxRadius && (f == nil || !f.Blocked(t))
	}
	if open(goal) {
		return goal
	}

	type pick struct {
		tile core.Tile
		dist float64
	}
	near := pick{start, start.Euclidean(goal)}
	free, foundFree := near, false

	seen := core.NewTileSet(start)
	queue := []core.Tile{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := cur.Euclidean(goal)
		if d < near.dist {
			near = pick{cur, d}
		}
		if cur != start && (f == nil || f.Clear(cur)) && (!foundFree || d < free.dist) {
			free = pick{cur, d}
			foundFree = true
		}
		for _, dir := range core.Neighbors8 {
			next := cur.Add(dir)
			if seen.Has(next) || !open(next) {
				continue
			}
			seen.Add(next)
			queue = append(queue, next)
		}
	}
	if foundFree {
		return free.tile
	}
	return near.tile
}
