package ui

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/willie68/go_mapview/internal/render"
	"github.com/willie68/go_mapview/internal/viewport"
)

const zoomStep = 1.25

var background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// mapCanvas shows the stitched map, drag pans, the scroll wheel zooms at the cursor
type mapCanvas struct {
	vp       *viewport.Viewport
	view     *render.View
	imgOp    paint.ImageOp
	fit      bool
	dragging bool
	last     f32.Point
}

func newMapCanvas() *mapCanvas {
	return &mapCanvas{vp: viewport.New()}
}

// SetView replaces the shown map, the new map is fitted into the canvas
func (c *mapCanvas) SetView(v *render.View) {
	c.view = v
	c.imgOp = paint.NewImageOp(v.Image)
	c.fit = true
}

func (c *mapCanvas) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	c.events(gtx)

	if c.fit && c.view != nil {
		c.vp.Fit(c.view.Image.Bounds().Size(), size)
		c.fit = false
	}

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, c)
	paint.Fill(gtx.Ops, background)

	if c.view != nil {
		s := float32(c.vp.Scale)
		tr := f32.Affine2D{}.
			Scale(f32.Point{}, f32.Pt(s, s)).
			Offset(f32.Pt(float32(c.vp.OffsetX), float32(c.vp.OffsetY)))
		stack := op.Affine(tr).Push(gtx.Ops)
		cl := clip.Rect{Max: c.view.Image.Bounds().Size()}.Push(gtx.Ops)
		c.imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		cl.Pop()
		stack.Pop()
	}
	return layout.Dimensions{Size: size}
}

func (c *mapCanvas) events(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  c,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			return
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Press:
			c.dragging = true
			c.last = e.Position
		case pointer.Drag:
			if c.dragging {
				d := e.Position.Sub(c.last)
				c.vp.Pan(float64(d.X), float64(d.Y))
				c.last = e.Position
			}
		case pointer.Release, pointer.Cancel:
			c.dragging = false
		case pointer.Scroll:
			factor := zoomStep
			if e.Scroll.Y > 0 {
				factor = 1 / zoomStep
			} else if e.Scroll.Y == 0 {
				continue
			}
			c.vp.ZoomAt(float64(e.Position.X), float64(e.Position.Y), factor)
		}
	}
}

// Center brings the marker into the middle of the canvas
func (c *mapCanvas) Center(size image.Point) {
	if c.view == nil {
		return
	}
	c.vp.CenterOn(float64(c.view.MarkerAt.X), float64(c.view.MarkerAt.Y), size)
}
