package algo

import (
	"math"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// Straight-line penalty multipliers.
const (
	exclusionCrossFactor = 3.0
	exclusionNearFactor  = 1.5
	exclusionNearRadius  = 3
	obstacleCrossFactor  = 2.0
	obstacleNearFactor   = 1.3
	obstacleNearRadius   = 2
)

// Distancer estimates travel cost between two tiles.
type Distancer interface {
	Distance(a, b core.Tile) float64
}

// DistanceMatrix caches straight-line travel estimates between a fixed set
// of points. It ranks orderings; it does not path.
type DistanceMatrix struct {
	obstacles core.TileSet
	exclusion *core.Rect

	index map[core.Tile]int
	d     [][]float64
}

// BuildDistanceMatrix computes the symmetric estimate for every pair.
// Duplicate points share an entry.
func BuildDistanceMatrix(points []core.Tile, obstacles core.TileSet, exclusion *core.Rect) *DistanceMatrix {
	m := &DistanceMatrix{
		obstacles: obstacles,
		exclusion: exclusion,
		index:     make(map[core.Tile]int, len(points)),
	}
	var uniq []core.Tile
	for _, p := range points {
		if _, ok := m.index[p]; ok {
			continue
		}
		m.index[p] = len(uniq)
		uniq = append(uniq, p)
	}

	m.d = make([][]float64, len(uniq))
	for i := range m.d {
		m.d[i] = make([]float64, len(uniq))
	}
	for i := 0; i < len(uniq); i++ {
		for j := i + 1; j < len(uniq); j++ {
			v := m.estimate(uniq[i], uniq[j])
			m.d[i][j] = v
			m.d[j][i] = v
		}
	}
	return m
}

// Len returns the number of distinct points in the matrix.
func (m *DistanceMatrix) Len() int { return len(m.d) }

// Distance returns the cached estimate, computing it for unknown points.
func (m *DistanceMatrix) Distance(a, b core.Tile) float64 {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if okA && okB {
		return m.d[i][j]
	}
	return m.estimate(a, b)
}

func (m *DistanceMatrix) estimate(a, b core.Tile) float64 {
	dist := a.Euclidean(b)
	if dist == 0 {
		return 0
	}

	var crossExcl, nearExcl, crossObs, nearObs bool
	samples := int(math.Ceil(dist))
	for s := 0; s <= samples; s++ {
		f := float64(s) / float64(samples)
		p := core.Tile{
			X:     int(float64(a.X) + f*float64(b.X-a.X)),
			Y:     int(float64(a.Y) + f*float64(b.Y-a.Y)),
			Plane: a.Plane,
		}
		if m.exclusion != nil {
			d := m.exclusion.Distance(p)
			if d == 0 {
				crossExcl = true
			} else if d <= exclusionNearRadius {
				nearExcl = true
			}
		}
		if m.obstacles.Has(p) {
			crossObs = true
		} else if m.obstacles.Near(p, obstacleNearRadius) {
			nearObs = true
		}
	}

	mult := 1.0
	switch {
	case crossExcl:
		mult *= exclusionCrossFactor
	case nearExcl:
		mult *= exclusionNearFactor
	}
	switch {
	case crossObs:
		mult *= obstacleCrossFactor
	case nearObs:
		mult *= obstacleNearFactor
	}
	return dist * mult
}
