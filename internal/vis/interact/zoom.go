// Package interact handles pan and zoom over the tile world.
package interact

import (
	"math"

	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/elektrokombinacija/lapnav/internal/core"
)

// TileSize is the on-screen width of one tile at zoom 1.
const TileSize = 12

const (
	minZoom = 0.1
	maxZoom = 10
)

// Camera maps tiles to screen pixels. World Y grows north, screen Y grows
// down, so the camera flips the vertical axis.
type Camera struct {
	OffsetX float32 // screen position of the world origin
	OffsetY float32
	Zoom    float32

	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a camera at zoom 1 with the origin near the top left.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 100
	c.Zoom = 1
}

// Scale returns the current size of one tile in pixels.
func (c *Camera) Scale() float32 {
	return TileSize * c.Zoom
}

// WorldToScreen converts world coordinates (in tiles) to screen pixels.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	s := c.Scale()
	return float32(worldX)*s + c.OffsetX, -float32(worldY)*s + c.OffsetY
}

// ScreenToWorld converts screen pixels to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	s := c.Scale()
	return float64((screenX - c.OffsetX) / s), float64(-(screenY - c.OffsetY) / s)
}

// TileCenter returns the screen position of the middle of t.
func (c *Camera) TileCenter(t core.Tile) f32.Point {
	x, y := c.WorldToScreen(float64(t.X), float64(t.Y))
	return f32.Pt(x, y)
}

// TileAt returns the tile under a screen position.
func (c *Camera) TileAt(screenX, screenY float32) core.Tile {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	return core.T(int(math.Round(wx)), int(math.Round(wy)))
}

// HandleEvent pans on secondary or middle drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by factor keeping the world point under (centerX, centerY)
// fixed on screen.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	wx, wy := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	sx, sy := c.WorldToScreen(wx, wy)
	c.OffsetX += centerX - sx
	c.OffsetY += centerY - sy
}

// CenterOn puts a world position in the middle of the screen.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	s := c.Scale()
	c.OffsetX = screenWidth/2 - float32(worldX)*s
	c.OffsetY = screenHeight/2 + float32(worldY)*s
}

// FitRect zooms and centers so the tile rectangle fills the screen
// less margin pixels on each side.
func (c *Camera) FitRect(r core.Rect, screenWidth, screenHeight, margin float32) {
	w := float32(r.MaxX-r.MinX+1) * TileSize
	h := float32(r.MaxY-r.MinY+1) * TileSize
	if w <= 0 || h <= 0 || screenWidth <= 2*margin || screenHeight <= 2*margin {
		return
	}
	c.Zoom = clampZoom(min((screenWidth-2*margin)/w, (screenHeight-2*margin)/h))
	c.CenterOn(float64(r.MinX+r.MaxX)/2, float64(r.MinY+r.MaxY)/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return min(max(z, minZoom), maxZoom)
}
