package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/lapnav/internal/vis/state"
)

// Toolbar holds playback controls, layer toggles and a status line.
type Toolbar struct {
	state *state.State

	playBtn     widget.Clickable
	resetBtn    widget.Clickable
	stepFwdBtn  widget.Clickable
	stepBackBtn widget.Clickable
	fasterBtn   widget.Clickable
	slowerBtn   widget.Clickable

	previewBtn   widget.Clickable
	trailBtn     widget.Clickable
	knowledgeBtn widget.Clickable
}

// NewToolbar creates a new toolbar.
func NewToolbar(st *state.State) *Toolbar {
	return &Toolbar{state: st}
}

// Layout renders the toolbar.
func (t *Toolbar) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	const height = 48
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 43, B: 48, A: 255}, clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, height)).Op())

	t.handleClicks(gtx)

	return layout.Inset{Left: unit.Dp(10), Right: unit.Dp(10), Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutPlayback(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return t.layoutLayers(gtx, th)
			}),
			layout.Rigid(t.layoutSeparator),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return t.layoutStatus(gtx, th)
			}),
		)
	})
}

func (t *Toolbar) layoutPlayback(gtx layout.Context, th *material.Theme) layout.Dimensions {
	play := ">"
	if t.state.Playback.Playing {
		play = "||"
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(t.button(th, &t.stepBackBtn, "|<", false)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(t.button(th, &t.playBtn, play, false)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(t.button(th, &t.stepFwdBtn, ">|", false)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(t.button(th, &t.resetBtn, "[]", false)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
		layout.Rigid(t.button(th, &t.slowerBtn, "-", false)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
		layout.Rigid(t.button(th, &t.fasterBtn, "+", false)),
	)
}

func (t *Toolbar) layoutLayers(gtx layout.Context, th *material.Theme) layout.Dimensions {
	l := t.state.Layers
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
		layout.Rigid(t.button(th, &t.previewBtn, "Preview", l.Preview)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(2)}.Layout),
		layout.Rigid(t.button(th, &t.trailBtn, "Trail", l.Trail)),
		layout.Rigid(layout.Spacer{Width: unit.Dp(2)}.Layout),
		layout.Rigid(t.button(th, &t.knowledgeBtn, "Sight", l.Knowledge)),
	)
}

func (t *Toolbar) layoutStatus(gtx layout.Context, th *material.Theme) layout.Dimensions {
	f := t.state.Frame()
	if f == nil {
		return layout.Dimensions{}
	}
	cargo := ""
	if f.HasCargo {
		cargo = " cargo"
	}
	label := material.Label(th, 12, fmt.Sprintf("lap %d  %s%s  pickups left %d  %s",
		f.Lap, f.Phase, cargo, len(f.Pickups), f.Reason))
	label.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	label.MaxLines = 1
	return layout.W.Layout(gtx, label.Layout)
}

func (t *Toolbar) layoutSeparator(gtx layout.Context) layout.Dimensions {
	return layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(image.Rect(0, 0, 1, 24)).Op())
		return layout.Dimensions{Size: image.Point{X: 1, Y: 24}}
	})
}

func (t *Toolbar) button(th *material.Theme, btn *widget.Clickable, text string, active bool) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		bg := color.NRGBA{R: 55, G: 58, B: 65, A: 255}
		if active {
			bg = color.NRGBA{R: 80, G: 130, B: 180, A: 255}
		}
		if btn.Hovered() {
			bg.R = min(bg.R+15, 255)
			bg.G = min(bg.G+15, 255)
			bg.B = min(bg.B+15, 255)
		}
		return btn.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					sz := image.Point{X: max(gtx.Constraints.Min.X, 32), Y: max(gtx.Constraints.Min.Y, 28)}
					paint.FillShape(gtx.Ops, bg, clip.Rect(image.Rectangle{Max: sz}).Op())
					return layout.Dimensions{Size: sz}
				},
				func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						label := material.Label(th, 12, text)
						label.Color = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
						return label.Layout(gtx)
					})
				},
			)
		})
	}
}

func (t *Toolbar) handleClicks(gtx layout.Context) {
	pb := t.state.Playback
	for t.playBtn.Clicked(gtx) {
		pb.TogglePlay()
	}
	for t.resetBtn.Clicked(gtx) {
		pb.Reset()
	}
	for t.stepFwdBtn.Clicked(gtx) {
		pb.StepForward()
	}
	for t.stepBackBtn.Clicked(gtx) {
		pb.StepBack()
	}
	for t.fasterBtn.Clicked(gtx) {
		pb.SetRate(pb.Rate * 1.5)
	}
	for t.slowerBtn.Clicked(gtx) {
		pb.SetRate(pb.Rate / 1.5)
	}

	l := &t.state.Layers
	for t.previewBtn.Clicked(gtx) {
		l.Preview = !l.Preview
	}
	for t.trailBtn.Clicked(gtx) {
		l.Trail = !l.Trail
	}
	for t.knowledgeBtn.Clicked(gtx) {
		l.Knowledge = !l.Knowledge
	}
}
