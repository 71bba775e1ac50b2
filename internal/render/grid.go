package render

import (
	"image"
	"math"

	"github.com/pkg/errors"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
)

// ErrInvalidZoom zoom level out of the supported range
var ErrInvalidZoom = errors.New("invalid zoom level")

// Grid the rectangle of tiles covering the area around a location
type Grid struct {
	Zoom int `json:"zoom"`
	XMin int `json:"xmin"`
	XMax int `json:"xmax"`
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
}

// NewGrid computes the tiles covering center ± span degrees. The south west corner gives
// xmin/ymax, the north east corner xmax/ymin.
func NewGrid(center model.LatLon, zoom int, span float64) (Grid, error) {
	if zoom < 0 || zoom > mercantile.MaxZoom {
		return Grid{}, errors.Wrapf(ErrInvalidZoom, "%d, expecting 0..%d", zoom, mercantile.MaxZoom)
	}
	span = math.Abs(span)
	south := mercantile.ClampLatitude(center.Lat - span)
	north := mercantile.ClampLatitude(center.Lat + span)
	west := max(-180, center.Lon-span)
	east := min(180, center.Lon+span)

	sw := mercantile.Tile(west, south, zoom)
	ne := mercantile.Tile(east, north, zoom)
	return Grid{
		Zoom: zoom,
		XMin: mercantile.Clamp(sw.X, zoom),
		XMax: mercantile.Clamp(ne.X, zoom),
		YMin: mercantile.Clamp(ne.Y, zoom),
		YMax: mercantile.Clamp(sw.Y, zoom),
	}, nil
}

// Width number of tile columns
func (g Grid) Width() int {
	return g.XMax - g.XMin + 1
}

// Height number of tile rows
func (g Grid) Height() int {
	return g.YMax - g.YMin + 1
}

// Count number of tiles
func (g Grid) Count() int {
	return g.Width() * g.Height()
}

// Bounds the pixel rectangle of the stitched image
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width()*mercantile.TileSize, g.Height()*mercantile.TileSize)
}

// Contains checks if the tile is part of the grid
func (g Grid) Contains(x, y int) bool {
	return x >= g.XMin && x <= g.XMax && y >= g.YMin && y <= g.YMax
}

// Origin the pixel position of the upper left corner of the tile in the stitched image
func (g Grid) Origin(x, y int) image.Point {
	return image.Pt((x-g.XMin)*mercantile.TileSize, (y-g.YMin)*mercantile.TileSize)
}

// Tiles all tiles of the grid for the provider, column by column
func (g Grid) Tiles(provider string) []model.Tile {
	tiles := make([]model.Tile, 0, g.Count())
	for x := g.XMin; x <= g.XMax; x++ {
		for y := g.YMin; y <= g.YMax; y++ {
			tiles = append(tiles, model.Tile{Provider: provider, Z: g.Zoom, X: x, Y: y})
		}
	}
	return tiles
}
