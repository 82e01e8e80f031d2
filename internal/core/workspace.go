package core

import (
	"fmt"
	"math"
	"sort"
)

// Tile is one grid cell. Comparable, so it doubles as a map key.
type Tile struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Plane int `json:"plane"`
}

// T is shorthand for a ground-plane tile.
func T(x, y int) Tile {
	return Tile{X: x, Y: y}
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t.X, t.Y, t.Plane)
}

// Add moves the tile one step along d.
func (t Tile) Add(d Dir) Tile {
	return Tile{X: t.X + d.DX, Y: t.Y + d.DY, Plane: t.Plane}
}

// Sub returns the offset from o to t, ignoring plane.
func (t Tile) Sub(o Tile) Dir {
	return Dir{DX: t.X - o.X, DY: t.Y - o.Y}
}

// Chebyshev is the king-move distance. Tiles on different planes are
// infinitely far apart.
func (t Tile) Chebyshev(o Tile) int {
	if t.Plane != o.Plane {
		return math.MaxInt32
	}
	return max(abs(t.X-o.X), abs(t.Y-o.Y))
}

// Manhattan ignores plane.
func (t Tile) Manhattan(o Tile) int {
	return abs(t.X-o.X) + abs(t.Y-o.Y)
}

// Euclidean ignores plane.
func (t Tile) Euclidean(o Tile) float64 {
	dx := float64(t.X - o.X)
	dy := float64(t.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Adjacent reports whether o is one of t's eight neighbours.
func (t Tile) Adjacent(o Tile) bool {
	return t.Plane == o.Plane && t.Chebyshev(o) == 1
}

// Less orders tiles by plane, then y, then x.
func (t Tile) Less(o Tile) bool {
	if t.Plane != o.Plane {
		return t.Plane < o.Plane
	}
	if t.Y != o.Y {
		return t.Y < o.Y
	}
	return t.X < o.X
}

// Dir is a step offset between adjacent tiles.
type Dir struct {
	DX, DY int
}

// IsZero reports whether d carries no direction.
func (d Dir) IsZero() bool {
	return d.DX == 0 && d.DY == 0
}

// Dot is the dot product of two directions.
func (d Dir) Dot(o Dir) int {
	return d.DX*o.DX + d.DY*o.DY
}

// Unit clamps each component of d to -1, 0 or 1.
func (d Dir) Unit() Dir {
	return Dir{DX: sign(d.DX), DY: sign(d.DY)}
}

// Neighbors8 lists the four cardinal then the four diagonal steps.
var Neighbors8 = [8]Dir{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, -1}, {-1, 1},
}

// Rect is an axis-aligned, inclusive rectangle on one plane.
type Rect struct {
	MinX  int `json:"min_x"`
	MaxX  int `json:"max_x"`
	MinY  int `json:"min_y"`
	MaxY  int `json:"max_y"`
	Plane int `json:"plane"`
}

// Contains reports whether t lies inside r.
func (r Rect) Contains(t Tile) bool {
	return t.Plane == r.Plane &&
		t.X >= r.MinX && t.X <= r.MaxX &&
		t.Y >= r.MinY && t.Y <= r.MaxY
}

// Distance is the Chebyshev distance from t to the nearest tile of r.
// Zero inside.
func (r Rect) Distance(t Tile) int {
	if t.Plane != r.Plane {
		return math.MaxInt32
	}
	dx := max(r.MinX-t.X, 0, t.X-r.MaxX)
	dy := max(r.MinY-t.Y, 0, t.Y-r.MaxY)
	return max(dx, dy)
}

// Center returns the middle tile, rounding down.
func (r Rect) Center() Tile {
	return Tile{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2, Plane: r.Plane}
}

// Offsets positions a rectangle relative to an anchor tile.
type Offsets struct {
	MinX int `json:"min_x"`
	MaxX int `json:"max_x"`
	MinY int `json:"min_y"`
	MaxY int `json:"max_y"`
}

// ExclusionFrom builds the no-go rectangle anchored on a reference tile.
func ExclusionFrom(anchor Tile, off Offsets) Rect {
	return Rect{
		MinX:  anchor.X + off.MinX,
		MaxX:  anchor.X + off.MaxX,
		MinY:  anchor.Y + off.MinY,
		MaxY:  anchor.Y + off.MaxY,
		Plane: anchor.Plane,
	}
}

// TileSet is an unordered set of tiles.
type TileSet map[Tile]struct{}

// NewTileSet builds a set from tiles.
func NewTileSet(tiles ...Tile) TileSet {
	s := make(TileSet, len(tiles))
	for _, t := range tiles {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts tiles and reports how many were new.
func (s TileSet) Add(tiles ...Tile) int {
	added := 0
	for _, t := range tiles {
		if _, ok := s[t]; !ok {
			s[t] = struct{}{}
			added++
		}
	}
	return added
}

func (s TileSet) Has(t Tile) bool {
	_, ok := s[t]
	return ok
}

func (s TileSet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s TileSet) Clone() TileSet {
	c := make(TileSet, len(s))
	for t := range s {
		c[t] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same tiles.
func (s TileSet) Equal(o TileSet) bool {
	if len(s) != len(o) {
		return false
	}
	for t := range s {
		if !o.Has(t) {
			return false
		}
	}
	return true
}

// Sorted returns the members in Tile.Less order.
func (s TileSet) Sorted() []Tile {
	out := make([]Tile, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	SortTiles(out)
	return out
}

// Near reports whether any member lies within Chebyshev distance r of t.
func (s TileSet) Near(t Tile, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if s.Has(Tile{X: t.X + dx, Y: t.Y + dy, Plane: t.Plane}) {
				return true
			}
		}
	}
	return false
}

// SortTiles sorts in place by Tile.Less.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Less(tiles[j]) })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
