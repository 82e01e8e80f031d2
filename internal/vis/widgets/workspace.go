// Package widgets provides Gio UI widgets for the viewer.
package widgets

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/vis/draw"
	"github.com/elektrokombinacija/lapnav/internal/vis/interact"
	"github.com/elektrokombinacija/lapnav/internal/vis/state"
)

// Workspace is the main map view.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{state: st, camera: camera}
}

// Refit makes the next layout fit the scenario to the screen.
func (w *Workspace) Refit() {
	w.fitted = false
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, size.X, size.Y)).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, draw.ColorBackground)

	sc := w.state.Scenario
	if sc == nil {
		return layout.Dimensions{Size: size}
	}
	if !w.fitted && size.X > 0 && size.Y > 0 {
		w.camera.FitRect(sc.Bounds.Rect(), float32(size.X), float32(size.Y), 20)
		w.fitted = true
	}
	w.handlePointerEvents(gtx)

	draw.DrawGrid(gtx, w.camera, draw.ColorGrid)
	draw.OutlineRect(gtx, sc.Bounds.Rect(), w.camera, draw.ColorBounds, 1)
	draw.FillRect(gtx, w.state.Exclusion, w.camera, draw.ColorExclusion)

	for i, o := range sc.Obstacles {
		col := draw.ColorObstacle
		if w.state.Layers.Knowledge && !w.state.ObstacleSeen(i) {
			col = draw.ColorObstacleUnseen
		}
		draw.FillTile(gtx, o, w.camera, col, 0.05)
	}
	for _, b := range sc.Boosts {
		draw.FillTile(gtx, b, w.camera, draw.ColorBoost, 0.3)
	}
	draw.DrawRing(gtx, sc.MandatoryPickup, w.camera, draw.ColorMandatory, 0.7, 2)
	draw.DrawRing(gtx, sc.MandatoryDropoff, w.camera, draw.ColorMandatory, 0.7, 2)

	f := w.state.Frame()
	if f == nil {
		return layout.Dimensions{Size: size}
	}
	for _, p := range f.Pickups {
		draw.DrawCircle(gtx, p, w.camera, draw.ColorPickup, 0.35)
	}
	for _, h := range f.Hazards {
		col := draw.ColorHazardIdle
		if h.Dangerous {
			col = draw.ColorHazardDanger
		}
		draw.FillTile(gtx, h.Tile, w.camera, col, 0.15)
	}

	trail := w.state.Trail()
	if w.state.Layers.Trail {
		draw.DrawTrail(gtx, trail, w.camera, draw.ColorTrail, 2)
	}
	if w.state.Layers.Preview && len(f.Preview) > 0 {
		var from *core.Tile
		if n := len(f.Plan); n > 0 {
			from = &f.Plan[n-1]
		}
		draw.DrawPath(gtx, from, f.Preview, w.camera, draw.ColorPreview, 2)
	}
	draw.DrawPath(gtx, &f.Agent, f.Plan, w.camera, draw.ColorPlan, 3)

	var heading core.Dir
	if n := len(trail); n > 1 {
		heading = trail[n-1].Sub(trail[n-2])
	}
	col := draw.ColorAgent
	if f.HasCargo {
		col = draw.ColorAgentCargo
	}
	draw.DrawAgent(gtx, f.Agent, heading, w.camera, col)

	return layout.Dimensions{Size: size}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  w,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(pe)
		}
	}
}
