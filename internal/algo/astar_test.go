package algo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

var noTurn = core.TurnParams{}

// openField builds a field with the given obstacles and nothing else.
func openField(obstacles ...core.Tile) *Field {
	return NewField(core.NewTileSet(obstacles...), nil, nil, nil)
}

func contains(path []core.Tile, t core.Tile) bool {
	for _, p := range path {
		if p == t {
			return true
		}
	}
	return false
}

func assertConnected(t *testing.T, path []core.Tile) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		if !path[i-1].Adjacent(path[i]) {
			t.Fatalf("path jumps from %v to %v", path[i-1], path[i])
		}
	}
}

func TestFindPath_StraightLine(t *testing.T) {
	m := Tactical(openField())
	res := FindPath(m, core.DefaultTurnParams(), PathRequest{
		Start: core.T(0, 0), Goal: core.T(5, 0), MaxRadius: 50,
	})

	if len(res.Tiles) != 6 {
		t.Fatalf("len(path) = %d, want 6: %v", len(res.Tiles), res.Tiles)
	}
	if res.Cost != 5.0 {
		t.Errorf("cost = %v, want 5.0", res.Cost)
	}
	for i, tile := range res.Tiles {
		if tile != core.T(i, 0) {
			t.Errorf("path[%d] = %v, want (%d,0)", i, tile, i)
		}
	}
	if res.Cumulative[5] != 5.0 || res.RemainingCost(2) != 3.0 {
		t.Errorf("cumulative costs wrong: %v", res.Cumulative)
	}
}

func TestFindPath_DetourAroundObstacle(t *testing.T) {
	blocked := core.T(2, 0)
	m := Tactical(openField(blocked))
	res := FindPath(m, core.DefaultTurnParams(), PathRequest{
		Start: core.T(0, 0), Goal: core.T(5, 0), MaxRadius: 50,
	})

	if res.Empty() {
		t.Fatal("expected a detour, got empty path")
	}
	if contains(res.Tiles, blocked) {
		t.Errorf("path crosses obstacle: %v", res.Tiles)
	}
	if res.Cost <= 5.0 {
		t.Errorf("cost = %v, want > 5.0", res.Cost)
	}
	if res.Tiles[len(res.Tiles)-1] != core.T(5, 0) {
		t.Errorf("path ends at %v", res.Tiles[len(res.Tiles)-1])
	}
	assertConnected(t, res.Tiles)
}

func TestFindPath_NeverEntersExclusionOrObstacle(t *testing.T) {
	excl := &core.Rect{MinX: 3, MaxX: 6, MinY: -4, MaxY: 4}
	obstacles := core.NewTileSet(core.T(1, 2), core.T(8, -1), core.T(8, 0))
	m := Tactical(NewField(obstacles, nil, excl, nil))

	res := FindPath(m, core.DefaultTurnParams(), PathRequest{
		Start: core.T(0, 0), Goal: core.T(10, 0), MaxRadius: 400,
	})
	if res.Empty() {
		t.Fatalf("expected a path around the exclusion (expanded %d, exhausted %v)", res.Expanded, res.Exhausted)
	}
	for _, tile := range res.Tiles {
		if excl.Contains(tile) || obstacles.Has(tile) {
			t.Errorf("path enters blocked tile %v", tile)
		}
	}
	assertConnected(t, res.Tiles)
}

func TestFindPath_Unreachable(t *testing.T) {
	goal := core.T(5, 5)
	var ring []core.Tile
	for _, d := range core.Neighbors8 {
		ring = append(ring, goal.Add(d))
	}
	m := Tactical(openField(ring...))

	res := FindPath(m, noTurn, PathRequest{Start: core.T(0, 0), Goal: goal, MaxRadius: 20})
	if !res.Empty() {
		t.Errorf("expected empty path to walled-in goal, got %v", res.Tiles)
	}
}

func TestFindPath_ExhaustedCap(t *testing.T) {
	m := Tactical(openField())
	res := FindPath(m, noTurn, PathRequest{Start: core.T(0, 0), Goal: core.T(40, 0), MaxRadius: 3})
	if !res.Empty() {
		t.Errorf("expected empty result under a 9-node cap, got %d tiles", len(res.Tiles))
	}
	if !res.Exhausted {
		t.Error("expected Exhausted to be set")
	}
}

func TestFindPath_Tolerance(t *testing.T) {
	m := Tactical(openField())
	res := FindPath(m, noTurn, PathRequest{Start: core.T(0, 0), Goal: core.T(5, 0), MaxRadius: 20, Tolerance: 2})
	if len(res.Tiles) != 4 {
		t.Fatalf("len(path) = %d, want 4: %v", len(res.Tiles), res.Tiles)
	}
	if last := res.Tiles[len(res.Tiles)-1]; last.Chebyshev(core.T(5, 0)) > 2 {
		t.Errorf("path ends outside tolerance at %v", last)
	}

	res = FindPath(m, noTurn, PathRequest{Start: core.T(0, 0), Goal: core.T(1, 1), MaxRadius: 20, Tolerance: 1})
	if len(res.Tiles) != 1 || res.Cost != 0 {
		t.Errorf("start within tolerance should give trivial path, got %v", res.Tiles)
	}
}

func TestFindPath_HeadingConstrainsFirstMove(t *testing.T) {
	m := Tactical(openField())
	res := FindPath(m, core.DefaultTurnParams(), PathRequest{
		Start: core.T(0, 0), Goal: core.T(-4, 0), MaxRadius: 30, Heading: core.Dir{DX: 1},
	})
	if res.Empty() {
		t.Fatal("expected a path")
	}
	if res.Tiles[1].X <= 0 {
		t.Errorf("first move %v points backwards against heading", res.Tiles[1])
	}
}

func TestFindPath_PrefersBoost(t *testing.T) {
	boost := core.T(3, 1)
	f := NewField(nil, core.NewTileSet(boost), nil, nil)
	res := FindPath(Tactical(f), core.DefaultTurnParams(), PathRequest{
		Start: core.T(0, 0), Goal: core.T(6, 0), MaxRadius: 30,
	})
	if !contains(res.Tiles, boost) {
		t.Errorf("path %v skips the boost tile", res.Tiles)
	}
	if res.Cost >= 6 {
		t.Errorf("boosted cost = %v, want below straight-line 6", res.Cost)
	}
}

func TestPathCost_MatchesSearchAndIsDeterministic(t *testing.T) {
	f := NewField(core.NewTileSet(core.T(4, 1)), core.NewTileSet(core.T(2, 0), core.T(7, 2)), nil, []core.Tile{core.T(6, -3)})
	m := Tactical(f)
	turn := core.DefaultTurnParams()

	res := FindPath(m, turn, PathRequest{Start: core.T(0, 0), Goal: core.T(10, 0), MaxRadius: 40})
	if res.Empty() {
		t.Fatal("expected a path")
	}

	first := PathCost(m, turn, res.Tiles)
	second := PathCost(m, turn, res.Tiles)
	if first != second {
		t.Errorf("re-costing differs: %v vs %v", first, second)
	}
	if math.Abs(first-res.Cost) > 1e-9 {
		t.Errorf("PathCost = %v, search reported %v", first, res.Cost)
	}
}

// bellmanFord computes exact single-source costs over the tiles of a box
// using the same step costs, without turn penalties.
func bellmanFord(m CostModel, start core.Tile, minX, maxX, minY, maxY int) map[core.Tile]float64 {
	dist := map[core.Tile]float64{start: 0}
	for changed := true; changed; {
		changed = false
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				from := core.T(x, y)
				df, ok := dist[from]
				if !ok {
					continue
				}
				for _, d := range core.Neighbors8 {
					to := from.Add(d)
					if to.X < minX || to.X > maxX || to.Y < minY || to.Y > maxY {
						continue
					}
					c, _ := m.Step(from, to, 0)
					if c >= Impassable {
						continue
					}
					if old, ok := dist[to]; !ok || df+c < old-1e-12 {
						dist[to] = df + c
						changed = true
					}
				}
			}
		}
	}
	return dist
}

func TestFindPath_MatchesBellmanFord(t *testing.T) {
	const size = 14
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 10; trial++ {
		obstacles := make(core.TileSet)
		// Wall the box so both searches see the same graph.
		for i := -1; i <= size; i++ {
			obstacles.Add(core.T(i, -1), core.T(i, size), core.T(-1, i), core.T(size, i))
		}
		for i := 0; i < 25; i++ {
			obstacles.Add(core.T(rng.Intn(size), rng.Intn(size)))
		}
		start, goal := core.T(0, 0), core.T(size-1, size-1)
		delete(obstacles, start)
		delete(obstacles, goal)

		var hazards []core.Tile
		if trial%2 == 1 {
			hazards = []core.Tile{core.T(rng.Intn(size), rng.Intn(size))}
		}
		m := Tactical(NewField(obstacles, nil, nil, hazards))

		want, reachable := bellmanFord(m, start, 0, size-1, 0, size-1)[goal]
		res := FindPath(m, noTurn, PathRequest{Start: start, Goal: goal, MaxRadius: 100})

		if !reachable {
			if !res.Empty() {
				t.Errorf("trial %d: found path to unreachable goal", trial)
			}
			continue
		}
		if res.Empty() {
			t.Errorf("trial %d: no path, Bellman-Ford cost %v", trial, want)
			continue
		}
		if math.Abs(res.Cost-want) > 1e-9 {
			t.Errorf("trial %d: cost = %v, Bellman-Ford = %v", trial, res.Cost, want)
		}
	}
}

func TestFindPathThrough(t *testing.T) {
	m := Tactical(openField())
	path := FindPathThrough(m, noTurn, core.T(0, 0), []core.Tile{core.T(3, 0), core.T(3, 3)}, 30)

	if len(path) != 7 {
		t.Fatalf("len(path) = %d, want 7: %v", len(path), path)
	}
	seen := make(map[core.Tile]int)
	for _, p := range path {
		seen[p]++
	}
	if seen[core.T(3, 0)] != 1 {
		t.Errorf("junction tile duplicated: %v", path)
	}
	assertConnected(t, path)
}

func TestFindPathThrough_FallsBackToGoal(t *testing.T) {
	goal := core.T(5, 5)
	var ring []core.Tile
	for _, d := range core.Neighbors8 {
		ring = append(ring, goal.Add(d))
	}
	m := Tactical(openField(ring...))
	path := FindPathThrough(m, noTurn, core.T(0, 0), []core.Tile{goal}, 20)
	if len(path) != 2 || path[1] != goal {
		t.Errorf("fallback path = %v, want [start goal]", path)
	}
}

func TestClampGoal(t *testing.T) {
	start := core.T(0, 0)

	if got := ClampGoal(nil, start, core.T(5, 5), 10); got != core.T(5, 5) {
		t.Errorf("in-range goal moved to %v", got)
	}
	if got := ClampGoal(nil, start, core.T(100, 0), 10); got != core.T(10, 0) {
		t.Errorf("ClampGoal radius = %v, want (10,0)", got)
	}

	// Tiles next to the wall carry penalties, so the goal stops short of them.
	wall := &core.Rect{MinX: 7, MaxX: 20, MinY: -30, MaxY: 30}
	if got := ClampGoal(NewField(nil, nil, wall, nil), start, core.T(100, 0), 10); got != core.T(3, 0) {
		t.Errorf("ClampGoal before a wall = %v, want (3,0)", got)
	}

	var ring []core.Tile
	for _, d := range core.Neighbors8 {
		ring = append(ring, start.Add(d))
	}
	if got := ClampGoal(openField(ring...), start, core.T(50, 0), 10); got != start {
		t.Errorf("boxed-in ClampGoal = %v, want start", got)
	}
}

func TestClampGoal_StraightLineBlockedAtStart(t *testing.T) {
	excl := &core.Rect{MinX: -26, MaxX: 22, MinY: -106, MaxY: -53}
	f := NewField(nil, nil, excl, nil)
	start := core.T(4, -107)

	got := ClampGoal(f, start, core.T(0, 0), 33)
	if got != core.T(26, -74) {
		t.Errorf("ClampGoal = %v, want (26,-74) past the east edge", got)
	}
	if !f.Clear(got) || start.Chebyshev(got) > 33 {
		t.Errorf("clamped goal %v is penalised or out of range", got)
	}

	res := FindPath(Tactical(f), core.DefaultTurnParams(), PathRequest{Start: start, Goal: got, MaxRadius: 100})
	if res.Empty() {
		t.Fatalf("clamped goal unreachable (expanded %d, exhausted %v)", res.Expanded, res.Exhausted)
	}
	for _, tile := range res.Tiles {
		if excl.Contains(tile) {
			t.Fatalf("path enters the exclusion at %v", tile)
		}
	}
}
