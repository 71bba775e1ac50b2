// Package viewport keeps the pan and zoom state of the map canvas.
package viewport

import (
	"image"
	"math"
)

const (
	DefaultMinScale = 0.125
	DefaultMaxScale = 8.0
)

// Viewport maps content pixels of the stitched map to screen pixels:
// screen = content*Scale + Offset
type Viewport struct {
	OffsetX  float64
	OffsetY  float64
	Scale    float64
	MinScale float64
	MaxScale float64
}

func New() *Viewport {
	return &Viewport{
		Scale:    1,
		MinScale: DefaultMinScale,
		MaxScale: DefaultMaxScale,
	}
}

// ToScreen converts a content position into a screen position
func (v *Viewport) ToScreen(cx, cy float64) (float64, float64) {
	return cx*v.Scale + v.OffsetX, cy*v.Scale + v.OffsetY
}

// ToContent converts a screen position into a content position
func (v *Viewport) ToContent(sx, sy float64) (float64, float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// Fit scales the content to fit into the screen, never enlarging it, and centers it
func (v *Viewport) Fit(content, screen image.Point) {
	if content.X <= 0 || content.Y <= 0 || screen.X <= 0 || screen.Y <= 0 {
		return
	}
	s := math.Min(float64(screen.X)/float64(content.X), float64(screen.Y)/float64(content.Y))
	v.Scale = v.clamp(math.Min(s, 1))
	v.OffsetX = (float64(screen.X) - float64(content.X)*v.Scale) / 2
	v.OffsetY = (float64(screen.Y) - float64(content.Y)*v.Scale) / 2
}

// CenterOn moves the content position into the center of the screen, keeping the scale
func (v *Viewport) CenterOn(cx, cy float64, screen image.Point) {
	v.OffsetX = float64(screen.X)/2 - cx*v.Scale
	v.OffsetY = float64(screen.Y)/2 - cy*v.Scale
}

// Pan moves the content by the screen delta
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// ZoomAt multiplies the scale by factor, the content under the screen position stays in place
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 {
		return
	}
	cx, cy := v.ToContent(sx, sy)
	v.Scale = v.clamp(v.Scale * factor)
	v.OffsetX = sx - cx*v.Scale
	v.OffsetY = sy - cy*v.Scale
}

func (v *Viewport) clamp(s float64) float64 {
	return math.Max(v.MinScale, math.Min(s, v.MaxScale))
}
