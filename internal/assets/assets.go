package assets

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/vector"
)

const (
	// MarkerWidth width of the default marker
	MarkerWidth = 25
	// MarkerHeight height of the default marker, the tip is at the bottom center
	MarkerHeight = 41
)

var (
	markerRed   = color.RGBA{0xcb, 0x2b, 0x3e, 0xff}
	markerWhite = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// LoadMarker loads the marker icon. An empty filename gives the default marker.
func LoadMarker(filename string) (image.Image, error) {
	if filename == "" {
		return DefaultMarker(), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "can't open marker icon")
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode marker icon %s", filename)
	}
	return img, nil
}

// DefaultMarker rasterizes a red map pin with a white dot
func DefaultMarker() *image.RGBA {
	const (
		w  = float32(MarkerWidth)
		h  = float32(MarkerHeight)
		cx = w / 2
		cy = w / 2
		r  = w/2 - 0.5
		// control point distance of a quarter circle
		k = 0.5523
	)
	img := image.NewRGBA(image.Rect(0, 0, MarkerWidth, MarkerHeight))

	z := vector.NewRasterizer(MarkerWidth, MarkerHeight)
	z.MoveTo(cx, h)
	z.QuadTo(cx-r*0.85, cy+r, cx-r, cy)
	z.CubeTo(cx-r, cy-r*k, cx-r*k, cy-r, cx, cy-r)
	z.CubeTo(cx+r*k, cy-r, cx+r, cy-r*k, cx+r, cy)
	z.QuadTo(cx+r*0.85, cy+r, cx, h)
	z.ClosePath()
	z.Draw(img, img.Bounds(), image.NewUniform(markerRed), image.Point{})

	z.Reset(MarkerWidth, MarkerHeight)
	circle(z, cx, cy, r*0.4)
	z.Draw(img, img.Bounds(), image.NewUniform(markerWhite), image.Point{})
	return img
}

func circle(z *vector.Rasterizer, cx, cy, r float32) {
	const k = 0.5523
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+r*k, cx+r*k, cy+r, cx, cy+r)
	z.CubeTo(cx-r*k, cy+r, cx-r, cy+r*k, cx-r, cy)
	z.CubeTo(cx-r, cy-r*k, cx-r*k, cy-r, cx, cy-r)
	z.CubeTo(cx+r*k, cy-r, cx+r, cy-r*k, cx+r, cy)
	z.ClosePath()
}
