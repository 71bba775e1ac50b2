// Package mercantile contains the spherical mercator tile math used for slippy map tiles.
package mercantile

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	// TileSize size of a tile in pixel
	TileSize = 256
	// MaxLatitude the northern (and southern) limit of the web mercator projection
	MaxLatitude = 85.0511287798066
	// MaxZoom the highest supported zoom level
	MaxZoom = 22

	earthRadius = 6378137.0
	originShift = math.Pi * earthRadius
)

// TileID address of a tile
type TileID struct {
	X int
	Y int
	Z int
}

// LngLat geographic position in degrees
type LngLat struct {
	Lng float64
	Lat float64
}

// Bbox a bounding box, in degrees or in web mercator meters depending on the producer
type Bbox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// FractionalTile returns the exact position of the coordinate in tile units of the zoom level.
func FractionalTile(lng, lat float64, zoom int) (x, y float64) {
	latRad := lat * math.Pi / 180.0
	n := math.Exp2(float64(zoom))
	x = (lng + 180.0) / 360.0 * n
	y = (1.0 - math.Log(math.Tan(latRad)+(1/math.Cos(latRad)))/math.Pi) / 2.0 * n
	return x, y
}

// Tile returns the tile containing the coordinate
func Tile(lng, lat float64, zoom int) TileID {
	x, y := FractionalTile(lng, lat, zoom)
	return TileID{
		X: int(math.Floor(x)),
		Y: int(math.Floor(y)),
		Z: zoom,
	}
}

// UL returns the upper left (north west) corner of the tile
func UL(t TileID) LngLat {
	n := math.Exp2(float64(t.Z))
	lng := float64(t.X)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*float64(t.Y)/n)))
	return LngLat{Lng: lng, Lat: latRad * 180.0 / math.Pi}
}

// Center returns the geographic center of the tile, in projected space
func Center(t TileID) LngLat {
	n := math.Exp2(float64(t.Z))
	lng := (float64(t.X)+0.5)/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*(float64(t.Y)+0.5)/n)))
	return LngLat{Lng: lng, Lat: latRad * 180.0 / math.Pi}
}

// ULBounds bounds of the tile in degrees
func ULBounds(t TileID) Bbox {
	b := t.MapTile().Bound()
	return Bbox{
		Left:   b.Left(),
		Bottom: b.Bottom(),
		Right:  b.Right(),
		Top:    b.Top(),
	}
}

// XyBounds bounds of the tile in web mercator meters (EPSG:3857)
func XyBounds(t TileID) Bbox {
	tileSize := 2 * originShift / math.Exp2(float64(t.Z))
	left := float64(t.X)*tileSize - originShift
	top := originShift - float64(t.Y)*tileSize
	return Bbox{
		Left:   left,
		Bottom: top - tileSize,
		Right:  left + tileSize,
		Top:    top,
	}
}

// Valid checks, if the tile coordinates are valid for the zoom level
func Valid(t TileID) bool {
	if t.Z < 0 || t.Z > MaxZoom {
		return false
	}
	max := 1 << t.Z
	return t.X >= 0 && t.X < max && t.Y >= 0 && t.Y < max
}

// Clamp clamps a tile index into the valid range of the zoom level
func Clamp(i, zoom int) int {
	return max(0, min(i, (1<<zoom)-1))
}

// ClampLatitude limits the latitude to the range of the projection
func ClampLatitude(lat float64) float64 {
	return max(-MaxLatitude, min(lat, MaxLatitude))
}

// MapTile converts to an orb maptile, the tile must be valid
func (t TileID) MapTile() maptile.Tile {
	return maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Z))
}

// Intersects checks if two bounding boxes in the same unit overlap
func (b Bbox) Intersects(o Bbox) bool {
	return b.Bound().Intersects(o.Bound())
}

// Bound converts to an orb bound
func (b Bbox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Left, b.Bottom},
		Max: orb.Point{b.Right, b.Top},
	}
}
