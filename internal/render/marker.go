package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
)

// MarkerPosition the exact pixel position of the coordinate in the stitched image of the grid,
// with the fractional tile position it was computed from
func MarkerPosition(center model.LatLon, g Grid) (fx, fy float64, at image.Point) {
	fx, fy = mercantile.FractionalTile(center.Lon, mercantile.ClampLatitude(center.Lat), g.Zoom)
	// lon 180 and the clamped poles project onto the outer edge of the world
	n := math.Exp2(float64(g.Zoom))
	last := math.Nextafter(n, 0)
	fx = math.Max(0, math.Min(fx, last))
	fy = math.Max(0, math.Min(fy, last))
	tx, ty := math.Floor(fx), math.Floor(fy)
	origin := g.Origin(int(tx), int(ty))
	px := float64(origin.X) + (fx-tx)*mercantile.TileSize
	py := float64(origin.Y) + (fy-ty)*mercantile.TileSize
	return fx, fy, image.Pt(int(math.Floor(px)), int(math.Floor(py)))
}

// MarkerRect the rectangle of the marker, anchored with its bottom center at the position
func MarkerRect(marker image.Image, at image.Point) image.Rectangle {
	b := marker.Bounds()
	ul := image.Pt(at.X-b.Dx()/2, at.Y-b.Dy())
	return image.Rectangle{Min: ul, Max: ul.Add(b.Size())}
}

// DrawMarker draws the marker over the image, returning the visible part of the marker
func DrawMarker(dst draw.Image, marker image.Image, at image.Point) image.Rectangle {
	r := MarkerRect(marker, at)
	draw.Draw(dst, r, marker, marker.Bounds().Min, draw.Over)
	return r.Intersect(dst.Bounds())
}
