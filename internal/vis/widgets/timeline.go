package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/lapnav/internal/vis/state"
)

const (
	timelineHeight = 60
	timelineMargin = 20
)

// Timeline is a tick scrubber with lap markers.
type Timeline struct {
	state    *state.State
	dragging bool
	laps     []int // first frame of each lap after the first
}

// NewTimeline creates a new timeline widget.
func NewTimeline(st *state.State) *Timeline {
	t := &Timeline{state: st}
	prev := 0
	for i, f := range st.Result.Frames {
		if prev != 0 && f.Lap != prev {
			t.laps = append(t.laps, i)
		}
		prev = f.Lap
	}
	return t
}

// Layout renders the timeline.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	width := gtx.Constraints.Max.X
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(image.Rect(0, 0, width, timelineHeight)).Op())

	trackWidth := width - 2*timelineMargin
	t.handlePointerEvents(gtx, trackWidth)

	trackY := timelineHeight / 2
	const trackHeight = 6
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255},
		clip.Rect(image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+trackWidth, trackY+trackHeight/2)).Op())

	pb := t.state.Playback
	fill := int(float64(trackWidth) * pb.Progress())
	if fill > 0 {
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255},
			clip.Rect(image.Rect(timelineMargin, trackY-trackHeight/2, timelineMargin+fill, trackY+trackHeight/2)).Op())
	}

	if pb.LastTick > 0 {
		for _, f := range t.laps {
			x := timelineMargin + trackWidth*f/pb.LastTick
			paint.FillShape(gtx.Ops, color.NRGBA{R: 200, G: 100, B: 255, A: 255},
				clip.Rect(image.Rect(x-1, trackY-10, x+1, trackY+10)).Op())
		}
	}

	const head = 12
	x := timelineMargin + fill
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		clip.Rect(image.Rect(x-head/2, trackY-head/2, x+head/2, trackY+head/2)).Op())

	t.drawLabels(gtx, th)
	return layout.Dimensions{Size: image.Point{X: width, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	pb := t.state.Playback
	current := material.Label(th, 12, fmt.Sprintf("tick %d", pb.Frame()))
	current.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	rate := material.Label(th, 12, fmt.Sprintf("%.0f ticks/s", pb.Rate))
	rate.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}
	last := material.Label(th, 12, fmt.Sprintf("%d", pb.LastTick))
	last.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(timelineMargin), Right: unit.Dp(timelineMargin)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(current.Layout),
			layout.Rigid(rate.Layout),
			layout.Rigid(last.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context, trackWidth int) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seek(pe.Position.X, trackWidth)
		case pointer.Drag:
			if t.dragging {
				t.seek(pe.Position.X, trackWidth)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seek(screenX float32, trackWidth int) {
	if trackWidth <= 0 {
		return
	}
	progress := min(max((float64(screenX)-timelineMargin)/float64(trackWidth), 0), 1)
	t.state.Playback.Pause()
	t.state.Playback.SetTick(progress * float64(t.state.Playback.LastTick))
}
