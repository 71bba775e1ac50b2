package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

var (
	singapore = model.LatLon{Lat: 1.34047, Lon: 103.70935}
	magenta   = color.RGBA{255, 0, 255, 255}
)

type fakeTiles struct {
	missing map[string]bool
	size    int
	reads   int
}

func (f *fakeTiles) HasProvider(name string) bool {
	return name == "local"
}

func (f *fakeTiles) FTile(t model.Tile) (io.ReadCloser, error) {
	f.reads++
	if f.missing[t.Key()] {
		return nil, provider.ErrTileNotFound
	}
	size := f.size
	if size == 0 {
		size = 256
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := tileColor(t.X, t.Y)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return io.NopCloser(&buf), nil
}

func tileColor(x, y int) color.RGBA {
	return color.RGBA{uint8(x % 251), uint8(y % 251), 99, 255}
}

func testMarker() image.Image {
	m := image.NewRGBA(image.Rect(0, 0, 3, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			m.SetRGBA(x, y, magenta)
		}
	}
	return m
}

func newRenderer(ft *fakeTiles) (*Renderer, *measurement.Service) {
	ms := measurement.New(true)
	return New(ft, ms, DefaultConfig(), testMarker()), ms
}

func TestNewGrid(t *testing.T) {
	ast := assert.New(t)
	tt := []struct {
		name   string
		center model.LatLon
		zoom   int
		span   float64
		exp    Grid
	}{
		{"singapore z15", singapore, 15, 0.02, Grid{Zoom: 15, XMin: 25822, XMax: 25825, YMin: 16260, YMax: 16263}},
		{"singapore z10", singapore, 10, 0.02, Grid{Zoom: 10, XMin: 806, XMax: 807, YMin: 508, YMax: 508}},
		{"single tile", singapore, 15, 0, Grid{Zoom: 15, XMin: 25823, XMax: 25823, YMin: 16261, YMax: 16261}},
		{"negative span", singapore, 10, -0.02, Grid{Zoom: 10, XMin: 806, XMax: 807, YMin: 508, YMax: 508}},
		{"world", model.LatLon{}, 0, 0.02, Grid{Zoom: 0}},
		{"north pole", model.LatLon{Lat: 90, Lon: 0}, 2, 0.02, Grid{Zoom: 2, XMin: 1, XMax: 2, YMin: 0, YMax: 0}},
		{"date line", model.LatLon{Lat: 0.5, Lon: 180}, 2, 0.02, Grid{Zoom: 2, XMin: 3, XMax: 3, YMin: 1, YMax: 1}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(tc.center, tc.zoom, tc.span)
			ast.NoError(err)
			ast.Equal(tc.exp, g)
		})
	}

	_, err := NewGrid(singapore, -1, 0.02)
	ast.ErrorIs(err, ErrInvalidZoom)
	_, err = NewGrid(singapore, 23, 0.02)
	ast.ErrorIs(err, ErrInvalidZoom)
}

func TestGridGeometry(t *testing.T) {
	ast := assert.New(t)
	g := Grid{Zoom: 15, XMin: 25822, XMax: 25825, YMin: 16260, YMax: 16263}
	ast.Equal(4, g.Width())
	ast.Equal(4, g.Height())
	ast.Equal(16, g.Count())
	ast.Equal(image.Rect(0, 0, 1024, 1024), g.Bounds())
	ast.Equal(image.Pt(256, 256), g.Origin(25823, 16261))
	ast.True(g.Contains(25825, 16263))
	ast.False(g.Contains(25826, 16263))
	ast.False(g.Contains(25822, 16259))

	tiles := g.Tiles("local")
	ast.Len(tiles, 16)
	ast.Equal(model.Tile{Provider: "local", Z: 15, X: 25822, Y: 16260}, tiles[0])
	ast.Equal(model.Tile{Provider: "local", Z: 15, X: 25822, Y: 16261}, tiles[1])
	ast.Equal(model.Tile{Provider: "local", Z: 15, X: 25825, Y: 16263}, tiles[15])
}

func TestMarkerPosition(t *testing.T) {
	ast := assert.New(t)
	g, _ := NewGrid(singapore, 15, 0.02)
	fx, fy, at := MarkerPosition(singapore, g)
	ast.InDelta(25823.8555, fx, 1e-4)
	ast.InDelta(16261.9763, fy, 1e-4)
	ast.Equal(image.Pt(475, 505), at)

	g, _ = NewGrid(singapore, 10, 0.02)
	_, _, at = MarkerPosition(singapore, g)
	ast.Equal(image.Pt(254, 47), at)
}

func TestMarkerInsideGrid(t *testing.T) {
	ast := assert.New(t)
	centers := []model.LatLon{
		singapore,
		{Lat: 48.1351, Lon: 11.582},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 64.1466, Lon: -21.9426},
		{Lat: -54.8019, Lon: -68.303},
	}
	for _, c := range centers {
		for z := 3; z <= 18; z += 5 {
			g, err := NewGrid(c, z, 0.02)
			ast.NoError(err)
			fx, fy, at := MarkerPosition(c, g)
			ast.True(g.Contains(int(fx), int(fy)), "%v z%d", c, z)
			ast.True(at.In(g.Bounds()), "%v z%d", c, z)
		}
	}
}

func TestMarkerRect(t *testing.T) {
	ast := assert.New(t)
	m := testMarker()
	ast.Equal(image.Rect(474, 501, 477, 505), MarkerRect(m, image.Pt(475, 505)))

	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	r := DrawMarker(dst, m, image.Pt(0, 2))
	ast.Equal(image.Rect(0, 0, 2, 2), r)
	ast.Equal(magenta, dst.RGBAAt(0, 0))
	ast.Equal(color.RGBA{}, dst.RGBAAt(2, 0))
}

func TestRender(t *testing.T) {
	ast := assert.New(t)
	ft := &fakeTiles{}
	r, ms := newRenderer(ft)

	v, err := r.Render(Request{Center: singapore})
	ast.NoError(err)
	ast.Equal(16, ft.reads)
	ast.Equal("local", v.Provider)
	ast.Equal(15, v.Grid.Zoom)
	ast.Equal(image.Rect(0, 0, 1024, 1024), v.Image.Bounds())
	ast.Equal(image.Pt(475, 505), v.MarkerAt)
	ast.Equal(image.Rect(474, 501, 477, 505), v.MarkerRect)

	for _, tile := range v.Grid.Tiles("local") {
		o := v.Grid.Origin(tile.X, tile.Y)
		ast.Equal(tileColor(tile.X, tile.Y), v.Image.RGBAAt(o.X+10, o.Y+10), tile.Key())
		ast.Equal(tileColor(tile.X, tile.Y), v.Image.RGBAAt(o.X+255, o.Y+255), tile.Key())
	}
	ast.Equal(magenta, v.Image.RGBAAt(475, 504))
	ast.Equal(1, ms.Point("render").Data().Count)

	var buf bytes.Buffer
	ast.NoError(v.WritePNG(&buf))
	img, err := png.Decode(&buf)
	ast.NoError(err)
	ast.Equal(v.Image.Bounds(), img.Bounds())
}

func TestRenderReplacesMarker(t *testing.T) {
	ast := assert.New(t)
	r, _ := newRenderer(&fakeTiles{})

	v1, err := r.Render(Request{Center: singapore})
	ast.NoError(err)
	moved := model.LatLon{Lat: singapore.Lat + 0.005, Lon: singapore.Lon + 0.005}
	v2, err := r.Render(Request{Center: moved})
	ast.NoError(err)
	ast.NotEqual(v1.MarkerAt, v2.MarkerAt)

	// the old marker position shows the map again
	ast.False(v2.MarkerRect.Overlaps(v1.MarkerRect))
	p := image.Pt(v1.MarkerAt.X, v1.MarkerAt.Y-1)
	tx := v2.Grid.XMin + p.X/256
	ty := v2.Grid.YMin + p.Y/256
	ast.Equal(tileColor(tx, ty), v2.Image.RGBAAt(p.X, p.Y))
}

func TestRenderMissingTile(t *testing.T) {
	ast := assert.New(t)
	ft := &fakeTiles{missing: map[string]bool{"15/25824/16262": true}}
	r, ms := newRenderer(ft)

	v, err := r.Render(Request{Center: singapore})
	ast.Nil(v)
	ast.ErrorIs(err, provider.ErrTileNotFound)
	ast.Contains(err.Error(), "15/25824/16262")
	ast.Equal(1, ms.Point("render").Data().Errors)
}

func TestRenderErrors(t *testing.T) {
	ast := assert.New(t)
	r, _ := newRenderer(&fakeTiles{})

	_, err := r.Render(Request{Center: singapore, Provider: "osm"})
	ast.ErrorIs(err, provider.ErrNotFound)

	_, err = r.Render(Request{Center: singapore, Zoom: 30})
	ast.ErrorIs(err, ErrInvalidZoom)

	_, err = r.Render(Request{Center: model.LatLon{Lat: 95, Lon: 0}})
	ast.ErrorIs(err, model.ErrInvalidCoordinate)

	_, err = r.RenderText("Invalid", 15)
	ast.ErrorIs(err, model.ErrInvalidCoordinate)

	v, err := r.RenderText("1.34047, 103.70935", 10)
	ast.NoError(err)
	ast.Equal(2, v.Grid.Count())
}

func TestRenderScalesTiles(t *testing.T) {
	ast := assert.New(t)
	r, _ := newRenderer(&fakeTiles{size: 512})

	v, err := r.Render(Request{Center: singapore, Zoom: 10})
	ast.NoError(err)
	o := v.Grid.Origin(806, 508)
	c := v.Image.RGBAAt(o.X+128, o.Y+128)
	exp := tileColor(806, 508)
	ast.InDelta(exp.R, c.R, 1)
	ast.InDelta(exp.G, c.G, 1)
	ast.InDelta(exp.B, c.B, 1)
}

func TestDefaults(t *testing.T) {
	ast := assert.New(t)
	r := New(&fakeTiles{}, measurement.New(false), Config{Provider: "local", Zoom: 12}, nil)
	ast.InDelta(DefaultSpan, r.Config().Span, 1e-9)
	ast.NotNil(r.marker)
}

func TestDefaultZoom(t *testing.T) {
	ast := assert.New(t)
	for _, z := range []int{0, -1, 23} {
		r := New(&fakeTiles{}, measurement.New(false), Config{Provider: "local", Zoom: z}, nil)
		ast.Equal(DefaultZoom, r.Config().Zoom, "zoom %d", z)
	}
	r := New(&fakeTiles{}, measurement.New(false), Config{Provider: "local"}, nil)
	v, err := r.Render(Request{Center: singapore})
	ast.NoError(err)
	ast.Equal(DefaultZoom, v.Grid.Zoom)
}

func TestMarkerAtWorldEdges(t *testing.T) {
	ast := assert.New(t)
	centers := []model.LatLon{
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 0},
		{Lat: 0.5, Lon: 180},
		{Lat: 0.5, Lon: -180},
		{Lat: 85.0511287798066, Lon: 180},
		{Lat: -89.9, Lon: -180},
	}
	for _, c := range centers {
		for _, z := range []int{0, 2, 15, 22} {
			g, err := NewGrid(c, z, 0.02)
			ast.NoError(err)
			fx, fy, at := MarkerPosition(c, g)
			ast.True(g.Contains(int(fx), int(fy)), "%v z%d", c, z)
			ast.True(at.In(g.Bounds()), "%v z%d: %v not in %v", c, z, at, g.Bounds())
		}
	}

	g, _ := NewGrid(model.LatLon{Lat: 90, Lon: 0}, 2, 0.02)
	_, _, at := MarkerPosition(model.LatLon{Lat: 90, Lon: 0}, g)
	ast.Equal(0, at.Y)
	g, _ = NewGrid(model.LatLon{Lat: 0.5, Lon: 180}, 2, 0.02)
	_, _, at = MarkerPosition(model.LatLon{Lat: 0.5, Lon: 180}, g)
	ast.Equal(255, at.X)
}

func TestRenderDrawsMarkerAtDateLine(t *testing.T) {
	ast := assert.New(t)
	r, _ := newRenderer(&fakeTiles{})
	v, err := r.Render(Request{Center: model.LatLon{Lat: 0.5, Lon: 180}, Zoom: 15})
	ast.NoError(err)
	m := testMarker().Bounds()
	ast.Equal(m.Dy(), v.MarkerRect.Dy())
	ast.Equal(m.Dx()/2+1, v.MarkerRect.Dx())
	ast.Equal(magenta, v.Image.RGBAAt(v.MarkerAt.X, v.MarkerAt.Y-1))
}
