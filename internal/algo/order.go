package algo

import (
	"math"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

const (
	twoOptMaxIterations = 20
	twoOptEpsilon       = 0.001
)

// NearestNeighbor builds a greedy visiting order from start. The first
// pick is the nearest pickup on the preferred side of start, else the
// nearest on the opposite side, else the nearest overall.
func NearestNeighbor(start core.Tile, pickups []core.Tile, d Distancer, side core.Side) []core.Tile {
	remaining := append([]core.Tile(nil), pickups...)
	order := make([]core.Tile, 0, len(pickups))
	cur := start

	if side != core.SideNone {
		i := nearest(cur, remaining, d, func(t core.Tile) bool { return side.Holds(t.X, start.X) })
		if i < 0 {
			i = nearest(cur, remaining, d, func(t core.Tile) bool { return side.Opposite().Holds(t.X, start.X) })
		}
		if i >= 0 {
			cur = remaining[i]
			order = append(order, cur)
			remaining = append(remaining[:i], remaining[i+1:]...)
		}
	}

	for len(remaining) > 0 {
		i := nearest(cur, remaining, d, nil)
		cur = remaining[i]
		order = append(order, cur)
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return order
}

func nearest(from core.Tile, cands []core.Tile, d Distancer, keep func(core.Tile) bool) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range cands {
		if keep != nil && !keep(c) {
			continue
		}
		if v := d.Distance(from, c); v < bestDist {
			best, bestDist = i, v
		}
	}
	return best
}

// TwoOpt improves order by reversing sub-segments while that shortens the
// open route start→order[0]→…→order[n-1].
func TwoOpt(start core.Tile, order []core.Tile, d Distancer) []core.Tile {
	route := make([]core.Tile, 0, len(order)+1)
	route = append(route, start)
	route = append(route, order...)
	n := len(route)

	for iter := 0; iter < twoOptMaxIterations; iter++ {
		improved := false
		for i := 0; i < n-2; i++ {
			for j := i + 2; j < n; j++ {
				before := d.Distance(route[i], route[i+1])
				after := d.Distance(route[i], route[j])
				if j+1 < n {
					before += d.Distance(route[j], route[j+1])
					after += d.Distance(route[i+1], route[j+1])
				}
				if after < before-twoOptEpsilon {
					reverse(route[i+1 : j+1])
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return route[1:]
}

func reverse(s []core.Tile) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// OrderPickups runs nearest-neighbour construction followed by 2-opt.
func OrderPickups(start core.Tile, pickups []core.Tile, d Distancer, side core.Side) []core.Tile {
	if len(pickups) == 0 {
		return nil
	}
	return TwoOpt(start, NearestNeighbor(start, pickups, d, side), d)
}

// RouteCost sums the estimate along start→seq…→end. end may be nil.
func RouteCost(start core.Tile, seq []core.Tile, end *core.Tile, d Distancer) float64 {
	total := 0.0
	cur := start
	for _, t := range seq {
		total += d.Distance(cur, t)
		cur = t
	}
	if end != nil {
		total += d.Distance(cur, *end)
	}
	return total
}
