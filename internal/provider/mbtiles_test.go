package provider

import (
	"database/sql"
	"image/color"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/willie68/go_mapview/internal/model"
)

type mbtile struct {
	z, x, row int
	data      []byte
}

// writeMBTiles creates a mbtiles archive, rows are given in tms order
func writeMBTiles(t *testing.T, meta map[string]string, tiles []mbtile) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "test.mbtiles")
	// the sqlite driver is registered by mbtiles-go
	db, err := sql.Open("sqlite", fn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	stmts := []string{
		"CREATE TABLE metadata (name text, value text)",
		"CREATE TABLE tiles (zoom_level integer, tile_column integer, tile_row integer, tile_data blob)",
		"CREATE UNIQUE INDEX tile_index on tiles (zoom_level, tile_column, tile_row)",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range meta {
		if _, err := db.Exec("INSERT INTO metadata (name, value) VALUES (?, ?)", k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, tl := range tiles {
		if _, err := db.Exec("INSERT INTO tiles (zoom_level, tile_column, tile_row, tile_data) VALUES (?, ?, ?, ?)", tl.z, tl.x, tl.row, tl.data); err != nil {
			t.Fatal(err)
		}
	}
	return fn
}

func readAll(t *testing.T, rd io.ReadCloser) []byte {
	t.Helper()
	defer rd.Close()
	data, err := io.ReadAll(rd)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestMBTilesProvider(t *testing.T) {
	ast := assert.New(t)
	red := pngData(t, color.RGBA{255, 0, 0, 255})
	blue := pngData(t, color.RGBA{0, 0, 255, 255})
	fn := writeMBTiles(t, map[string]string{
		"name":    "test",
		"format":  "png",
		"minzoom": "1",
		"maxzoom": "3",
		"bounds":  "-80,-60,80,60",
	}, []mbtile{
		// z2: tms row 2 is xyz y 1, tms row 1 is xyz y 2
		{z: 2, x: 1, row: 2, data: red},
		{z: 2, x: 1, row: 1, data: blue},
	})

	p, err := NewMBTilesProvider("mbt", Config{Type: "mbtiles", Path: fn})
	ast.NoError(err)
	defer p.Close()
	ast.Equal("test", p.meta.Name)
	ast.Equal(1, p.meta.Minzoom)
	ast.Equal(3, p.meta.Maxzoom)
	ast.NotNil(p.meta.BBox)

	rd, err := p.Tile(model.Tile{Provider: "mbt", Z: 2, X: 1, Y: 1})
	ast.NoError(err)
	ast.Equal(red, readAll(t, rd))

	rd, err = p.Tile(model.Tile{Provider: "mbt", Z: 2, X: 1, Y: 2})
	ast.NoError(err)
	ast.Equal(blue, readAll(t, rd))

	tests := []struct {
		name string
		tile model.Tile
	}{
		{"below min zoom", model.Tile{Z: 0, X: 0, Y: 0}},
		{"above max zoom", model.Tile{Z: 5, X: 16, Y: 15}},
		{"invalid tile", model.Tile{Z: 2, X: 4, Y: 1}},
		{"out of bounds", model.Tile{Z: 2, X: 0, Y: 1}},
		{"not stored", model.Tile{Z: 3, X: 4, Y: 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Tile(tc.tile)
			ast.ErrorIs(err, ErrTileNotFound)
		})
	}
}

func TestMBTilesWithoutZoomMetadata(t *testing.T) {
	ast := assert.New(t)
	fn := writeMBTiles(t, map[string]string{"name": "nozoom"}, []mbtile{
		{z: 4, x: 3, row: 5, data: pngData(t, color.White)},
		{z: 6, x: 3, row: 5, data: pngData(t, color.White)},
	})
	p, err := NewMBTilesProvider("mbt", Config{Type: "mbtiles", Path: fn})
	ast.NoError(err)
	defer p.Close()
	// taken from the stored tiles
	ast.Equal(4, p.meta.Minzoom)
	ast.Equal(6, p.meta.Maxzoom)
	ast.Nil(p.meta.BBox)

	rd, err := p.Tile(model.Tile{Z: 4, X: 3, Y: 10})
	ast.NoError(err)
	ast.NotEmpty(readAll(t, rd))
}

func TestMBTilesRejectsVectorTiles(t *testing.T) {
	ast := assert.New(t)
	gz := []byte("\x1f\x8b\x08\x00\x00\x00\x00\x00\x00\xff\x01\x00\x00\xff\xff\x00\x00\x00\x00\x00\x00\x00\x00\x00")
	fn := writeMBTiles(t, map[string]string{"name": "vector", "format": "pbf"}, []mbtile{
		{z: 0, x: 0, row: 0, data: gz},
	})
	_, err := NewMBTilesProvider("mbt", Config{Type: "mbtiles", Path: fn})
	ast.Error(err)
	ast.Contains(err.Error(), "vector tiles")
}

func TestMBTilesMissingFile(t *testing.T) {
	ast := assert.New(t)
	_, err := NewMBTilesProvider("mbt", Config{Type: "mbtiles", Path: filepath.Join(t.TempDir(), "none.mbtiles")})
	ast.Error(err)
}
