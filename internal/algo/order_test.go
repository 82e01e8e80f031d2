package algo

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

func TestDistanceMatrix_Penalties(t *testing.T) {
	a, b := core.T(0, 0), core.T(10, 0)

	tests := []struct {
		name      string
		obstacles core.TileSet
		exclusion *core.Rect
		want      float64
	}{
		{"open", nil, nil, 10},
		{"crosses exclusion", nil, &core.Rect{MinX: 4, MaxX: 6, MinY: -1, MaxY: 1}, 30},
		{"near exclusion", nil, &core.Rect{MinX: 4, MaxX: 6, MinY: 3, MaxY: 5}, 15},
		{"crosses obstacle", core.NewTileSet(core.T(5, 0)), nil, 20},
		{"near obstacle", core.NewTileSet(core.T(5, 2)), nil, 13},
		{"both", core.NewTileSet(core.T(8, 0)), &core.Rect{MinX: 4, MaxX: 6, MinY: -1, MaxY: 1}, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := tt.obstacles
			if obs == nil {
				obs = core.NewTileSet()
			}
			m := BuildDistanceMatrix([]core.Tile{a, b}, obs, tt.exclusion)
			if got := m.Distance(a, b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceMatrix_SymmetricAndDeduplicated(t *testing.T) {
	pts := []core.Tile{core.T(0, 0), core.T(3, 7), core.T(-4, 2), core.T(3, 7)}
	m := BuildDistanceMatrix(pts, core.NewTileSet(core.T(1, 3)), nil)
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	for _, p := range pts {
		for _, q := range pts {
			if m.Distance(p, q) != m.Distance(q, p) {
				t.Errorf("Distance(%v,%v) not symmetric", p, q)
			}
		}
		if m.Distance(p, p) != 0 {
			t.Errorf("Distance(%v,%v) = %v, want 0", p, p, m.Distance(p, p))
		}
	}
	// Points outside the matrix are estimated on demand.
	if got := m.Distance(core.T(0, 0), core.T(0, -5)); got != 5 {
		t.Errorf("on-demand Distance = %v, want 5", got)
	}
}

func TestNearestNeighbor_PrefersWest(t *testing.T) {
	start := core.T(0, 0)
	pickups := []core.Tile{core.T(1, 0), core.T(-1, 0)}
	m := BuildDistanceMatrix(append([]core.Tile{start}, pickups...), core.NewTileSet(), nil)

	order := NearestNeighbor(start, pickups, m, core.SideWest)
	if order[0] != core.T(-1, 0) {
		t.Errorf("first pick = %v, want (-1,0)", order[0])
	}

	order = OrderPickups(start, pickups, m, core.SideWest)
	if order[0] != core.T(-1, 0) {
		t.Errorf("OrderPickups first pick = %v, want (-1,0)", order[0])
	}
}

func TestNearestNeighbor_FallsBackWhenSideEmpty(t *testing.T) {
	start := core.T(0, 0)
	pickups := []core.Tile{core.T(5, 0), core.T(2, 1)}
	m := BuildDistanceMatrix(append([]core.Tile{start}, pickups...), core.NewTileSet(), nil)

	order := NearestNeighbor(start, pickups, m, core.SideWest)
	want := []core.Tile{core.T(2, 1), core.T(5, 0)}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestNearestNeighbor_OppositeSideBeforeStartColumn(t *testing.T) {
	start := core.T(0, 0)
	pickups := []core.Tile{core.T(0, 3), core.T(5, 0)}
	m := BuildDistanceMatrix(append([]core.Tile{start}, pickups...), core.NewTileSet(), nil)

	order := NearestNeighbor(start, pickups, m, core.SideWest)
	want := []core.Tile{core.T(5, 0), core.T(0, 3)}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	only := []core.Tile{core.T(0, 3), core.T(0, -6)}
	m = BuildDistanceMatrix(append([]core.Tile{start}, only...), core.NewTileSet(), nil)
	if order := NearestNeighbor(start, only, m, core.SideWest); order[0] != core.T(0, 3) {
		t.Errorf("with no side candidates the nearest pickup should lead, got %v", order)
	}
}

func TestTwoOpt_UntanglesRoute(t *testing.T) {
	start := core.T(0, 0)
	order := []core.Tile{core.T(3, 0), core.T(1, 0), core.T(2, 0), core.T(4, 0)}
	m := BuildDistanceMatrix(append([]core.Tile{start}, order...), core.NewTileSet(), nil)

	got := TwoOpt(start, order, m)
	want := []core.Tile{core.T(1, 0), core.T(2, 0), core.T(3, 0), core.T(4, 0)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TwoOpt = %v, want %v", got, want)
	}
	if c := RouteCost(start, got, nil, m); c != 4 {
		t.Errorf("RouteCost = %v, want 4", c)
	}
	if order[0] != core.T(3, 0) {
		t.Error("TwoOpt modified its input")
	}
}

func TestTwoOpt_NeverWorsens(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	start := core.T(0, 0)
	for trial := 0; trial < 20; trial++ {
		var pts []core.Tile
		for i := 0; i < 8; i++ {
			pts = append(pts, core.T(rng.Intn(40)-20, rng.Intn(40)-20))
		}
		m := BuildDistanceMatrix(append([]core.Tile{start}, pts...), core.NewTileSet(), nil)
		before := RouteCost(start, pts, nil, m)
		after := RouteCost(start, TwoOpt(start, pts, m), nil, m)
		if after > before+1e-9 {
			t.Errorf("trial %d: 2-opt worsened %.3f -> %.3f", trial, before, after)
		}
	}
}
