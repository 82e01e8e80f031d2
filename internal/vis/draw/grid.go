// Package draw renders the tile world with Gio ops.
package draw

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/lapnav/internal/core"
	"github.com/elektrokombinacija/lapnav/internal/vis/interact"
)

// Palette
var (
	ColorBackground     = color.NRGBA{R: 25, G: 28, B: 32, A: 255}
	ColorGrid           = color.NRGBA{R: 38, G: 42, B: 47, A: 255}
	ColorBounds         = color.NRGBA{R: 70, G: 78, B: 88, A: 255}
	ColorExclusion      = color.NRGBA{R: 150, G: 50, B: 50, A: 110}
	ColorObstacle       = color.NRGBA{R: 120, G: 125, B: 135, A: 255}
	ColorObstacleUnseen = color.NRGBA{R: 120, G: 125, B: 135, A: 70}
	ColorBoost          = color.NRGBA{R: 80, G: 200, B: 120, A: 200}
	ColorPickup         = color.NRGBA{R: 255, G: 200, B: 80, A: 255}
	ColorMandatory      = color.NRGBA{R: 200, G: 100, B: 255, A: 255}
	ColorHazardIdle     = color.NRGBA{R: 255, G: 150, B: 100, A: 90}
	ColorHazardDanger   = color.NRGBA{R: 255, G: 70, B: 60, A: 230}
	ColorAgent          = color.NRGBA{R: 100, G: 200, B: 255, A: 255}
	ColorAgentCargo     = color.NRGBA{R: 255, G: 255, B: 120, A: 255}
	ColorPlan           = color.NRGBA{R: 100, G: 200, B: 255, A: 220}
	ColorPreview        = color.NRGBA{R: 100, G: 200, B: 255, A: 80}
	ColorTrail          = color.NRGBA{R: 180, G: 180, B: 200, A: 255}
)

// DrawGrid draws one line per tile boundary, skipped when tiles are too
// small to tell apart.
func DrawGrid(gtx layout.Context, camera *interact.Camera, col color.NRGBA) {
	s := camera.Scale()
	if s < 4 {
		return
	}
	size := gtx.Constraints.Max
	minX, maxY := camera.ScreenToWorld(0, 0)
	maxX, minY := camera.ScreenToWorld(float32(size.X), float32(size.Y))

	for x := math.Floor(minX) + 0.5; x <= maxX; x++ {
		sx, _ := camera.WorldToScreen(x, 0)
		paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(int(sx), 0, int(sx)+1, size.Y)).Op())
	}
	for y := math.Floor(minY) + 0.5; y <= maxY; y++ {
		_, sy := camera.WorldToScreen(0, y)
		paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(0, int(sy), size.X, int(sy)+1)).Op())
	}
}

// FillTile fills one tile, shrunk by inset (0..1 of a tile).
func FillTile(gtx layout.Context, t core.Tile, camera *interact.Camera, col color.NRGBA, inset float32) {
	c := camera.TileCenter(t)
	h := camera.Scale() * (1 - inset) / 2
	paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(
		int(c.X-h), int(c.Y-h), int(math.Ceil(float64(c.X+h))), int(math.Ceil(float64(c.Y+h))),
	)).Op())
}

// FillRect fills every tile of r.
func FillRect(gtx layout.Context, r core.Rect, camera *interact.Camera, col color.NRGBA) {
	x0, y0 := camera.WorldToScreen(float64(r.MinX)-0.5, float64(r.MaxY)+0.5)
	x1, y1 := camera.WorldToScreen(float64(r.MaxX)+0.5, float64(r.MinY)-0.5)
	paint.FillShape(gtx.Ops, col, clip.Rect(image.Rect(int(x0), int(y0), int(x1), int(y1))).Op())
}

// OutlineRect strokes the border of r.
func OutlineRect(gtx layout.Context, r core.Rect, camera *interact.Camera, col color.NRGBA, width float32) {
	x0, y0 := camera.WorldToScreen(float64(r.MinX)-0.5, float64(r.MaxY)+0.5)
	x1, y1 := camera.WorldToScreen(float64(r.MaxX)+0.5, float64(r.MinY)-0.5)
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(x0, y0))
	p.LineTo(f32.Pt(x1, y0))
	p.LineTo(f32.Pt(x1, y1))
	p.LineTo(f32.Pt(x0, y1))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: p.End(), Width: width}.Op())
}

// DrawCircle fills a circle of radius r (in tiles) centered on t.
func DrawCircle(gtx layout.Context, t core.Tile, camera *interact.Camera, col color.NRGBA, r float32) {
	c := camera.TileCenter(t)
	drawFilledCircle(gtx, c.X, c.Y, r*camera.Scale(), col)
}

// DrawRing strokes a circle of radius r (in tiles) centered on t.
func DrawRing(gtx layout.Context, t core.Tile, camera *interact.Camera, col color.NRGBA, r, width float32) {
	c := camera.TileCenter(t)
	rad := r * camera.Scale()
	var p clip.Path
	p.Begin(gtx.Ops)
	circle(&p, c.X, c.Y, rad, 24)
	paint.FillShape(gtx.Ops, col, clip.Stroke{Path: p.End(), Width: width}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, r float32, col color.NRGBA) {
	var p clip.Path
	p.Begin(gtx.Ops)
	circle(&p, cx, cy, r, 16)
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func circle(p *clip.Path, cx, cy, r float32, segments int) {
	p.MoveTo(f32.Pt(cx+r, cy))
	for i := 1; i <= segments; i++ {
		a := float64(i) * 2 * math.Pi / float64(segments)
		p.LineTo(f32.Pt(cx+r*float32(math.Cos(a)), cy+r*float32(math.Sin(a))))
	}
	p.Close()
}
