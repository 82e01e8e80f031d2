package algo

import (
	"math"
	"sort"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// PartitionStrategy is one way of splitting pickups across laps.
type PartitionStrategy int

const (
	PartitionContiguous PartitionStrategy = iota // equal-size runs in input order
	PartitionRoundRobin                          // i-th pickup to lap i mod n
	PartitionByX                                 // sort by x, then contiguous
	PartitionByY                                 // sort by y, then contiguous
	PartitionCentroid                            // bands by distance from the centroid
)

// AllStrategies lists every strategy in evaluation order.
var AllStrategies = []PartitionStrategy{
	PartitionContiguous,
	PartitionRoundRobin,
	PartitionByX,
	PartitionByY,
	PartitionCentroid,
}

func (s PartitionStrategy) String() string {
	return [...]string{"contiguous", "round-robin", "by-x", "by-y", "centroid"}[s]
}

// MinLaps is the smallest lap count the strategy makes sense for.
func (s PartitionStrategy) MinLaps() int {
	if s == PartitionCentroid {
		return 2
	}
	return 1
}

// Apply splits pickups into exactly laps groups. Groups may be empty.
func (s PartitionStrategy) Apply(pickups []core.Tile, laps int) [][]core.Tile {
	if laps <= 0 {
		return nil
	}
	groups := make([][]core.Tile, laps)
	if laps == 1 {
		groups[0] = append([]core.Tile(nil), pickups...)
		return groups
	}

	in := append([]core.Tile(nil), pickups...)
	switch s {
	case PartitionContiguous:
		splitContiguous(groups, in)
	case PartitionRoundRobin:
		for i, p := range in {
			groups[i%laps] = append(groups[i%laps], p)
		}
	case PartitionByX:
		sort.SliceStable(in, func(i, j int) bool { return in[i].X < in[j].X })
		splitContiguous(groups, in)
	case PartitionByY:
		sort.SliceStable(in, func(i, j int) bool { return in[i].Y < in[j].Y })
		splitContiguous(groups, in)
	case PartitionCentroid:
		c := centroid(in)
		sort.SliceStable(in, func(i, j int) bool {
			return distTo(in[i], c) < distTo(in[j], c)
		})
		band := len(in)/laps + 1
		for i, p := range in {
			k := (i / band) % laps
			groups[k] = append(groups[k], p)
		}
	}
	return groups
}

func splitContiguous(groups [][]core.Tile, in []core.Tile) {
	size := int(math.Ceil(float64(len(in)) / float64(len(groups))))
	if size == 0 {
		return
	}
	for i, p := range in {
		k := min(i/size, len(groups)-1)
		groups[k] = append(groups[k], p)
	}
}

func centroid(ts []core.Tile) [2]float64 {
	var c [2]float64
	if len(ts) == 0 {
		return c
	}
	for _, t := range ts {
		c[0] += float64(t.X)
		c[1] += float64(t.Y)
	}
	c[0] /= float64(len(ts))
	c[1] /= float64(len(ts))
	return c
}

func distTo(t core.Tile, c [2]float64) float64 {
	return math.Hypot(float64(t.X)-c[0], float64(t.Y)-c[1])
}

// Partition is one candidate assignment of pickups to laps.
type Partition struct {
	Strategy PartitionStrategy
	Laps     [][]core.Tile
}

// CandidatePartitions applies every applicable strategy. Input is sorted
// first so results do not depend on snapshot order.
func CandidatePartitions(pickups []core.Tile, laps int) []Partition {
	if laps <= 0 {
		return nil
	}
	in := append([]core.Tile(nil), pickups...)
	core.SortTiles(in)

	if laps == 1 {
		return []Partition{{Strategy: PartitionContiguous, Laps: PartitionContiguous.Apply(in, 1)}}
	}
	var out []Partition
	for _, s := range AllStrategies {
		if laps < s.MinLaps() {
			continue
		}
		out = append(out, Partition{Strategy: s, Laps: s.Apply(in, laps)})
	}
	return out
}
