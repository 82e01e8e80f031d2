// Package vis implements a Gio viewer for recorded lap runs.
package vis

import (
	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/lapnav/internal/sim"
	"github.com/elektrokombinacija/lapnav/internal/vis/draw"
	"github.com/elektrokombinacija/lapnav/internal/vis/interact"
	"github.com/elektrokombinacija/lapnav/internal/vis/state"
	"github.com/elektrokombinacija/lapnav/internal/vis/widgets"
)

// App is the viewer application.
type App struct {
	state     *state.State
	theme     *material.Theme
	workspace *widgets.Workspace
	timeline  *widgets.Timeline
	toolbar   *widgets.Toolbar
	camera    *interact.Camera
}

// NewApp creates a viewer for a recorded result.
func NewApp(res *sim.SimulationResult) *App {
	st := state.New(res)
	camera := interact.NewCamera()
	return &App{
		state:     st,
		theme:     material.NewTheme(),
		workspace: widgets.NewWorkspace(st, camera),
		timeline:  widgets.NewTimeline(st),
		toolbar:   widgets.NewToolbar(st),
		camera:    camera,
	}
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	pb := a.state.Playback
	switch e.Name {
	case key.NameSpace:
		pb.TogglePlay()
	case key.NameLeftArrow:
		pb.StepBack()
		if e.Modifiers.Contain(key.ModShift) {
			pb.SetTick(pb.Tick - 9)
		}
	case key.NameRightArrow:
		pb.StepForward()
		if e.Modifiers.Contain(key.ModShift) {
			pb.SetTick(pb.Tick + 9)
		}
	case key.NameHome:
		pb.Reset()
	case key.NameEnd:
		pb.Pause()
		pb.SetTick(float64(pb.LastTick))
	case "R":
		a.workspace.Refit()
	case "P":
		a.state.Layers.Preview = !a.state.Layers.Preview
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, draw.ColorBackground)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.toolbar.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, a.workspace.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
