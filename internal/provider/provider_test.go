package provider

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/willie68/go_mapview/internal/model"
)

type testConfig struct {
	providers ConfigMap
}

func (c *testConfig) GetProviderConfig() ConfigMap {
	return c.providers
}

func pngData(t *testing.T, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeTile(t *testing.T, root string, tile model.Tile, data []byte) {
	dir := filepath.Join(root, strconv.Itoa(tile.Z), strconv.Itoa(tile.X))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, strconv.Itoa(tile.Y)+".png"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirProvider(t *testing.T) {
	ast := assert.New(t)
	root := t.TempDir()
	data := pngData(t, color.RGBA{255, 0, 0, 255})
	writeTile(t, root, model.Tile{Z: 15, X: 25823, Y: 16261}, data)

	p, err := NewDirProvider("local", Config{Type: "dir", Path: root})
	ast.NoError(err)

	rd, err := p.Tile(model.Tile{Z: 15, X: 25823, Y: 16261})
	ast.NoError(err)
	got, err := io.ReadAll(rd)
	ast.NoError(err)
	ast.NoError(rd.Close())
	ast.Equal(data, got)

	_, err = p.Tile(model.Tile{Z: 15, X: 25824, Y: 16261})
	ast.ErrorIs(err, ErrTileNotFound)

	_, err = p.Tile(model.Tile{Z: 1, X: 2, Y: 0})
	ast.ErrorIs(err, ErrTileNotFound)

	_, err = NewDirProvider("missing", Config{Type: "dir", Path: filepath.Join(root, "missing")})
	ast.Error(err)
}

func TestDirPattern(t *testing.T) {
	ast := assert.New(t)
	p, err := NewDirProvider("tms", Config{Type: "dir", Path: t.TempDir(), Pattern: "{z}/{x}/{-y}.png"})
	ast.NoError(err)
	fn := p.Filename(model.Tile{Z: 2, X: 1, Y: 0})
	ast.Equal(filepath.Join(p.path, "2", "1", "3.png"), fn)

	p.pattern = "tile_{z}_{x}_{y}.jpg"
	ast.Equal(filepath.Join(p.path, "tile_2_1_0.jpg"), p.Filename(model.Tile{Z: 2, X: 1, Y: 0}))
}

func TestDebugProvider(t *testing.T) {
	ast := assert.New(t)
	p := NewDebugProvider("grid")
	rd, err := p.Tile(model.Tile{Z: 3, X: 2, Y: 1})
	ast.NoError(err)
	defer rd.Close()
	img, err := png.Decode(rd)
	ast.NoError(err)
	ast.Equal(image.Rect(0, 0, 256, 256), img.Bounds())

	r, g, b, _ := img.At(128, 10).RGBA()
	ast.Equal(uint32(200), r>>8)
	ast.Equal(uint32(220), g>>8)
	ast.Equal(uint32(255), b>>8)

	_, err = p.Tile(model.Tile{Z: 3, X: 8, Y: 1})
	ast.ErrorIs(err, ErrTileNotFound)
}

func TestBadgerStore(t *testing.T) {
	ast := assert.New(t)
	st, err := OpenBadgerStore("")
	ast.NoError(err)
	defer st.Close()

	tile := model.Tile{Z: 15, X: 25823, Y: 16261}
	_, err = st.Get(tile)
	ast.ErrorIs(err, ErrTileNotFound)

	ast.NoError(st.Put(tile, []byte("tile")))
	data, err := st.Get(tile)
	ast.NoError(err)
	ast.Equal([]byte("tile"), data)

	p := &badgerProvider{name: "store", store: st}
	rd, err := p.Tile(tile)
	ast.NoError(err)
	got, _ := io.ReadAll(rd)
	ast.Equal([]byte("tile"), got)
}

func TestBadgerImport(t *testing.T) {
	ast := assert.New(t)
	root := t.TempDir()
	red := pngData(t, color.RGBA{255, 0, 0, 255})
	blue := pngData(t, color.RGBA{0, 0, 255, 255})
	writeTile(t, root, model.Tile{Z: 15, X: 1, Y: 2}, red)
	writeTile(t, root, model.Tile{Z: 15, X: 1, Y: 3}, blue)
	ast.NoError(os.WriteFile(filepath.Join(root, "readme.txt"), []byte("tiles"), 0o644))
	ast.NoError(os.WriteFile(filepath.Join(root, "15", "cover.png"), red, 0o644))

	st, err := OpenBadgerStore(filepath.Join(t.TempDir(), "store"))
	ast.NoError(err)
	defer st.Close()

	count, err := st.ImportDir(root)
	ast.NoError(err)
	ast.Equal(2, count)

	data, err := st.Get(model.Tile{Z: 15, X: 1, Y: 3})
	ast.NoError(err)
	ast.Equal(blue, data)

	_, err = st.ImportDir(filepath.Join(root, "missing"))
	ast.Error(err)
}

func TestValidate(t *testing.T) {
	ast := assert.New(t)
	tt := []struct {
		name string
		cfgs ConfigMap
		ok   bool
	}{
		{"empty", ConfigMap{}, true},
		{"chain", ConfigMap{
			"local": {Type: "dir", Path: "tiles", Fallback: "store"},
			"store": {Type: "badger", Path: "store", Fallback: "grid"},
			"grid":  {Type: "debug"},
		}, true},
		{"unknown type", ConfigMap{"wms": {Type: "wms", Path: "x"}}, false},
		{"missing path", ConfigMap{"local": {Type: "dir"}}, false},
		{"unknown fallback", ConfigMap{"local": {Type: "dir", Path: "tiles", Fallback: "osm"}}, false},
		{"self", ConfigMap{"grid": {Type: "debug", Fallback: "grid"}}, false},
		{"cycle", ConfigMap{
			"a": {Type: "debug", Fallback: "b"},
			"b": {Type: "debug", Fallback: "a"},
		}, false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfgs.Validate()
			if tc.ok {
				ast.NoError(err)
			} else {
				ast.Error(err)
			}
		})
	}
}

func TestFactory(t *testing.T) {
	ast := assert.New(t)
	inj := do.New()
	do.ProvideValue(inj, &testConfig{
		providers: ConfigMap{
			"local":  {Type: "dir", Path: t.TempDir(), Fallback: "grid"},
			"grid":   {Type: "debug"},
			"broken": {Type: "dir", Path: filepath.Join(t.TempDir(), "missing")},
		},
	})
	Init(inj)

	f := do.MustInvoke[*pFactory](inj)
	ast.True(f.HasProvider("local"))
	ast.True(f.HasProvider("grid"))
	ast.False(f.HasProvider("broken"))
	ast.False(f.HasProvider("osm"))
	ast.Equal([]string{"grid", "local"}, f.Providers())
	ast.Equal("grid", f.Fallback("local"))
	ast.Equal("", f.Fallback("grid"))

	s, err := do.InvokeNamed[Service](inj, "grid")
	ast.NoError(err)
	rd, err := s.Tile(model.Tile{Z: 0})
	ast.NoError(err)
	rd.Close()

	_, err = do.InvokeNamed[Service](inj, "broken")
	ast.Error(err)
	ast.NoError(f.Shutdown())
}
