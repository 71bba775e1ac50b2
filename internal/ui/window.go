// Package ui is the desktop map viewer window.
package ui

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/willie68/go_mapview/internal/render"
)

const placeholder = "1.34047, 103.70935 (latitude, longitude)"

var borderColor = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// Window the map display: coordinate input, update button, zoom buttons and the map canvas
type Window struct {
	th      *material.Theme
	ctrl    *controller
	canvas  *mapCanvas
	editor  widget.Editor
	update  widget.Clickable
	zoomIn  widget.Clickable
	zoomOut widget.Clickable
	center  widget.Clickable
	size    image.Point
}

// NewWindow creates the window state and renders the configured start location
func NewWindow(r *render.Renderer) *Window {
	return newWindow(r)
}

func newWindow(r mapRenderer) *Window {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	w := &Window{
		th:     th,
		ctrl:   newController(r),
		canvas: newMapCanvas(),
		editor: widget.Editor{SingleLine: true, Submit: true},
	}
	loc := r.Config().Location
	w.editor.SetText(loc)
	w.refresh(w.ctrl.Update(loc))
	return w
}

// Run opens the window and processes its events until it is closed
func Run(r *render.Renderer) error {
	win := new(app.Window)
	win.Option(
		app.Title("Map Display"),
		app.Size(unit.Dp(1024), unit.Dp(800)),
	)
	return NewWindow(r).Loop(win)
}

// Loop the event loop of the window
func (w *Window) Loop(win *app.Window) error {
	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) refresh(ok bool) {
	if ok {
		w.canvas.SetView(w.ctrl.view)
	}
}

func (w *Window) handleEvents(gtx layout.Context) {
	for {
		ev, ok := w.editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			w.refresh(w.ctrl.Update(w.editor.Text()))
		}
	}
	if w.update.Clicked(gtx) {
		w.refresh(w.ctrl.Update(w.editor.Text()))
	}
	if w.zoomIn.Clicked(gtx) {
		w.refresh(w.ctrl.Zoom(1))
	}
	if w.zoomOut.Clicked(gtx) {
		w.refresh(w.ctrl.Zoom(-1))
	}
	if w.center.Clicked(gtx) {
		w.canvas.Center(w.size)
	}
}

func (w *Window) Layout(gtx layout.Context) layout.Dimensions {
	w.handleEvents(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(w.toolbar),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Left: unit.Dp(8), Bottom: unit.Dp(4)}.Layout(gtx,
				material.Body2(w.th, w.ctrl.status).Layout)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			w.size = gtx.Constraints.Max
			return w.canvas.Layout(gtx)
		}),
	)
}

func (w *Window) toolbar(gtx layout.Context) layout.Dimensions {
	spacer := layout.Rigid(layout.Spacer{Width: unit.Dp(5)}.Layout)
	return layout.UniformInset(unit.Dp(5)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(w.input),
			spacer,
			layout.Rigid(material.Button(w.th, &w.update, "Update GPS").Layout),
			spacer,
			layout.Rigid(material.Button(w.th, &w.zoomOut, "-").Layout),
			spacer,
			layout.Rigid(material.Body1(w.th, fmt.Sprintf("zoom %d", w.ctrl.zoom)).Layout),
			spacer,
			layout.Rigid(material.Button(w.th, &w.zoomIn, "+").Layout),
			spacer,
			layout.Rigid(material.Button(w.th, &w.center, "Center").Layout),
		)
	})
}

func (w *Window) input(gtx layout.Context) layout.Dimensions {
	width := gtx.Dp(unit.Dp(300))
	gtx.Constraints.Min.X = width
	gtx.Constraints.Max.X = width
	border := widget.Border{Color: borderColor, Width: unit.Dp(1), CornerRadius: unit.Dp(2)}
	return border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(6)).Layout(gtx, material.Editor(w.th, &w.editor, placeholder).Layout)
	})
}
