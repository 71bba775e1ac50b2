package ui

import (
	"fmt"
	"log/slog"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/render"
)

type mapRenderer interface {
	Render(req render.Request) (*render.View, error)
	Config() render.Config
}

// controller holds the state behind the window: the last good view and the status line.
// A failed render keeps the former view.
type controller struct {
	log    *slog.Logger
	r      mapRenderer
	zoom   int
	center model.LatLon
	view   *render.View
	status string
}

func newController(r mapRenderer) *controller {
	return &controller{
		log:  logging.New("ui"),
		r:    r,
		zoom: r.Config().Zoom,
	}
}

// Update parses the text and renders the location, returns true if a new view is available
func (c *controller) Update(text string) bool {
	center, err := model.ParseLatLon(text)
	if err != nil {
		c.fail(err)
		return false
	}
	return c.show(center, c.zoom)
}

// Zoom changes the tile zoom and renders the last location again
func (c *controller) Zoom(delta int) bool {
	z := max(1, min(c.zoom+delta, mercantile.MaxZoom))
	if z == c.zoom || c.view == nil {
		c.zoom = z
		return false
	}
	return c.show(c.center, z)
}

func (c *controller) show(center model.LatLon, zoom int) bool {
	v, err := c.r.Render(render.Request{Center: center, Zoom: zoom})
	if err != nil {
		c.fail(err)
		return false
	}
	c.view = v
	c.center = center
	c.zoom = zoom
	c.status = fmt.Sprintf("%s  zoom %d  tiles %d/%d - %d/%d", center, zoom, v.Grid.XMin, v.Grid.YMin, v.Grid.XMax, v.Grid.YMax)
	return true
}

func (c *controller) fail(err error) {
	c.log.Error(fmt.Sprintf("can't update map: %v", err))
	c.status = fmt.Sprintf("Error: %v", err)
}
