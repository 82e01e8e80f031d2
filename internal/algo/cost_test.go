package algo

import (
	"math"
	"testing"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

func TestGridCost_Step(t *testing.T) {
	excl := &core.Rect{MinX: 10, MaxX: 12, MinY: 0, MaxY: 2}
	f := NewField(
		core.NewTileSet(core.T(0, 5)),
		core.NewTileSet(core.T(-5, 0)),
		excl,
		[]core.Tile{core.T(-10, -10)},
	)
	tactical := Tactical(f)
	strategic := Strategic(f)

	tests := []struct {
		name     string
		m        CostModel
		from, to core.Tile
		run      int
		want     float64
		wantRun  int
	}{
		{"open", tactical, core.T(-20, 20), core.T(-20, 21), 0, 1, 0},
		{"exclusion", tactical, core.T(9, 1), core.T(10, 1), 0, Impassable, 0},
		{"obstacle", tactical, core.T(0, 4), core.T(0, 5), 0, Impassable, 0},
		{"next to obstacle", tactical, core.T(1, 3), core.T(1, 4), 0, 101, 0},
		{"two from obstacle", tactical, core.T(2, 2), core.T(2, 3), 0, 51, 0},
		{"next to exclusion", tactical, core.T(8, 1), core.T(9, 1), 0, 101, 0},
		{"three from exclusion", tactical, core.T(6, 1), core.T(7, 1), 0, 26, 0},
		{"tactical boost", tactical, core.T(-6, 0), core.T(-5, 0), 0, -10, 5},
		{"strategic boost", strategic, core.T(-6, 0), core.T(-5, 0), 0, -5, 8},
		{"boost cost option", Tactical(f, WithBoostCost(-8)), core.T(-6, 0), core.T(-5, 0), 0, -8, 5},
		{"boost run", tactical, core.T(-20, 20), core.T(-20, 21), 3, 1.0 / 3, 2},
		{"run reset on jump", tactical, core.T(-20, 20), core.T(-20, 25), 3, 1, 0},
		{"hazard", tactical, core.T(-9, -12), core.T(-8, -12), 0, 201, 0},
		{"strategic ignores hazard", strategic, core.T(-9, -12), core.T(-8, -12), 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, run := tt.m.Step(tt.from, tt.to, tt.run)
			if math.Abs(got-tt.want) > 1e-9 || run != tt.wantRun {
				t.Errorf("Step(%v, %v, %d) = %v, %d; want %v, %d", tt.from, tt.to, tt.run, got, run, tt.want, tt.wantRun)
			}
		})
	}
}

func TestTurnPenalty(t *testing.T) {
	p := core.DefaultTurnParams()
	east := core.Dir{DX: 1}

	tests := []struct {
		name    string
		in, out core.Dir
		want    float64
	}{
		{"no heading", core.Dir{}, east, 0},
		{"straight", east, east, 0},
		{"straight diagonal", core.Dir{DX: 1, DY: 1}, core.Dir{DX: 1, DY: 1}, 0},
		{"45 degrees", east, core.Dir{DX: 1, DY: 1}, 1.5},
		{"90 degrees", east, core.Dir{DY: 1}, 3},
		{"135 degrees", east, core.Dir{DX: -1, DY: 1}, 4.5 + 0.25*9},
		{"reverse", east, core.Dir{DX: -1}, 6 + 0.25*36},
	}
	for _, tt := range tests {
		if got := turnPenalty(tt.in, tt.out, p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: turnPenalty = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTurnPenalty_ModePresets(t *testing.T) {
	east, ne := core.Dir{DX: 1}, core.Dir{DX: 1, DY: 1}

	tests := []struct {
		name string
		p    core.TurnParams
		want float64
	}{
		{"relaxed 45", core.RelaxedTurnParams(), 0.3 + 3*0.7},
		{"efficient 45", core.EfficientTurnParams(), 3 * 0.17},
	}
	for _, tt := range tests {
		if got := turnPenalty(east, ne, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: turnPenalty = %v, want %v", tt.name, got, tt.want)
		}
		if got := turnPenalty(east, east, tt.p); got != 0 {
			t.Errorf("%s: straight move costs %v", tt.name, got)
		}
	}
}
