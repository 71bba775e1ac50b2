package provider

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
)

var (
	bgColor     = color.RGBA{200, 220, 255, 255}
	borderColor = color.RGBA{100, 100, 100, 255}
	labelColor  = color.RGBA{255, 255, 255, 220}
)

// debugProvider generates tiles showing their own address
type debugProvider struct {
	name string
}

func NewDebugProvider(name string) *debugProvider {
	return &debugProvider{name: name}
}

func (s *debugProvider) Tile(tile model.Tile) (io.ReadCloser, error) {
	if !mercantile.Valid(mercantile.TileID{X: tile.X, Y: tile.Y, Z: tile.Z}) {
		return nil, errors.Wrapf(ErrTileNotFound, "invalid tile %s", tile.Key())
	}
	img := DebugTile(tile)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "can't encode debug tile")
	}
	return io.NopCloser(&buf), nil
}

// DebugTile draws a light blue tile with border and the z/x/y label
func DebugTile(tile model.Tile) *image.RGBA {
	const size = mercantile.TileSize
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{bgColor}, image.Point{}, draw.Src)

	borders := []image.Rectangle{
		image.Rect(0, 0, size, 1),
		image.Rect(0, size-1, size, size),
		image.Rect(0, 0, 1, size),
		image.Rect(size-1, 0, size, size),
	}
	for _, rect := range borders {
		draw.Draw(img, rect, &image.Uniform{borderColor}, image.Point{}, draw.Src)
	}

	text := fmt.Sprintf("%d/%d/%d", tile.Z, tile.X, tile.Y)
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	textWidth := d.MeasureString(text).Round()
	textHeight := face.Metrics().Height.Round()

	padding := 6
	bg := image.Rect(
		(size-textWidth)/2-padding,
		size/2-textHeight/2-padding,
		(size+textWidth)/2+padding,
		size/2+textHeight/2+padding,
	)
	draw.Draw(img, bg, &image.Uniform{labelColor}, image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I((size - textWidth) / 2),
		Y: fixed.I(size/2 + textHeight/2 - face.Descent),
	}
	d.DrawString(text)
	return img
}
