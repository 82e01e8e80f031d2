package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/vis/interact"
)

// DrawPath draws a polyline through the centers of tiles, starting at from
// when it is non-nil. width is in pixels at zoom 1.
func DrawPath(gtx layout.Context, from *core.Tile, tiles []core.Tile, camera *interact.Camera, col color.NRGBA, width float32) {
	pts := make([]f32.Point, 0, len(tiles)+1)
	if from != nil {
		pts = append(pts, camera.TileCenter(*from))
	}
	for _, t := range tiles {
		pts = append(pts, camera.TileCenter(t))
	}
	w := width * camera.Zoom
	for i := 0; i+1 < len(pts); i++ {
		drawPathSegment(gtx, pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, w, col)
	}
}

// DrawTrail draws a trail that fades toward its oldest end.
func DrawTrail(gtx layout.Context, history []core.Tile, camera *interact.Camera, base color.NRGBA, maxWidth float32) {
	n := len(history)
	for i := 0; i+1 < n; i++ {
		if history[i] == history[i+1] {
			continue
		}
		col := base
		col.A = uint8(30 + float64(i)/float64(n)*150)
		w := maxWidth * camera.Zoom * (0.3 + 0.7*float32(i)/float32(n))
		a, b := camera.TileCenter(history[i]), camera.TileCenter(history[i+1])
		drawPathSegment(gtx, a.X, a.Y, b.X, b.Y, w, col)
	}
}

// DrawAgent draws the agent as a disc with a wedge showing its heading.
func DrawAgent(gtx layout.Context, at core.Tile, heading core.Dir, camera *interact.Camera, col color.NRGBA) {
	DrawCircle(gtx, at, camera, col, 0.55)
	if heading.IsZero() {
		return
	}
	c := camera.TileCenter(at)
	dx, dy := float64(heading.DX), -float64(heading.DY)
	l := math.Hypot(dx, dy)
	drawArrow(gtx, c.X, c.Y, float32(dx/l), float32(dy/l), camera.Scale(), ColorBackground)
}

func drawPathSegment(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}

	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(x1+px, y1+py))
	path.LineTo(f32.Pt(x2+px, y2+py))
	path.LineTo(f32.Pt(x2-px, y2-py))
	path.LineTo(f32.Pt(x1-px, y1-py))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}

// drawArrow draws a head of length size at (x, y) pointing along (dirX, dirY).
func drawArrow(gtx layout.Context, x, y, dirX, dirY, size float32, col color.NRGBA) {
	tipX, tipY := x+dirX*size*0.5, y+dirY*size*0.5
	perpX, perpY := -dirY*size*0.25, dirX*size*0.25
	baseX, baseY := x-dirX*size*0.1, y-dirY*size*0.1

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(tipX, tipY))
	path.LineTo(f32.Pt(baseX+perpX, baseY+perpY))
	path.LineTo(f32.Pt(baseX-perpX, baseY-perpY))
	path.Close()

	paint.FillShape(gtx.Ops, col, clip.Outline{Path: path.End()}.Op())
}
