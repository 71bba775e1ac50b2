package provider

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/i0tool5/mbtiles-go"
	"github.com/pkg/errors"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
)

type metadata struct {
	Name    string
	Format  string
	Maxzoom int
	Minzoom int
	BBox    *mercantile.Bbox
}

// mbtilesProvider reads raster tiles out of a mbtiles archive
type mbtilesProvider struct {
	name string
	log  *slog.Logger
	db   *mbtiles.MBtiles
	meta metadata
}

func NewMBTilesProvider(name string, config Config) (*mbtilesProvider, error) {
	log := logging.New(fmt.Sprintf("mbtiles: %s", name))
	db, err := mbtiles.Open(config.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mbtiles database")
	}
	tf := db.GetTileFormat()
	log.Info(fmt.Sprintf("mbtiles format: %s", tf.String()))
	meta, err := db.ReadMetadata()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to read mbtiles metadata")
	}
	log.Debug(fmt.Sprintf("mbtiles metadata: %+v", meta))
	mbt := &mbtilesProvider{
		name: name,
		log:  log,
		db:   db,
	}
	mbt.parseMetadata(meta)
	if tf == mbtiles.PBF || strings.EqualFold(mbt.meta.Format, "pbf") {
		db.Close()
		return nil, errors.Errorf("vector tiles are not supported: %s", config.Path)
	}
	return mbt, nil
}

func (s *mbtilesProvider) Tile(tile model.Tile) (io.ReadCloser, error) {
	if tile.Z < s.meta.Minzoom || tile.Z > s.meta.Maxzoom {
		return nil, errors.Wrapf(ErrTileNotFound, "zoom level %d out of bounds (%d - %d)", tile.Z, s.meta.Minzoom, s.meta.Maxzoom)
	}
	tid := mercantile.TileID{X: tile.X, Y: tile.Y, Z: tile.Z}
	if !mercantile.Valid(tid) {
		return nil, errors.Wrapf(ErrTileNotFound, "invalid tile %s", tile.Key())
	}
	if s.meta.BBox != nil && !mercantile.ULBounds(tid).Intersects(*s.meta.BBox) {
		return nil, errors.Wrapf(ErrTileNotFound, "tile %s out of bounds", tile.Key())
	}
	// mbtiles are stored with tms y axis
	ymax := 1 << tile.Z
	y := ymax - tile.Y - 1
	var data []byte
	err := s.db.ReadTile(int64(tile.Z), int64(tile.X), int64(y), &data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: failed to read tile %s", s.name, tile.Key())
	}
	if len(data) == 0 {
		return nil, errors.Wrapf(ErrTileNotFound, "%s: %s", s.name, tile.Key())
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *mbtilesProvider) Close() error {
	s.db.Close()
	return nil
}

func (s *mbtilesProvider) parseMetadata(meta map[string]any) {
	s.meta.Name, _ = meta["name"].(string)
	s.meta.Format, _ = meta["format"].(string)
	s.meta.Maxzoom = mercantile.MaxZoom
	if maxzoom, ok := meta["maxzoom"].(int); ok {
		s.meta.Maxzoom = maxzoom
	}
	if minzoom, ok := meta["minzoom"].(int); ok {
		s.meta.Minzoom = minzoom
	}
	if bbox, ok := meta["bounds"].([]float64); ok {
		if len(bbox) == 4 {
			s.meta.BBox = &mercantile.Bbox{Left: bbox[0], Bottom: bbox[1], Right: bbox[2], Top: bbox[3]}
		}
	}
}
