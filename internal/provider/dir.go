package provider

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/pkg/fileutils"
)

// DefaultPattern layout of tile files below the path of a dir provider
const DefaultPattern = "{z}/{x}/{y}.png"

// dirProvider reads tiles from a local directory, e.g. tiles/{z}/{x}/{y}.png
type dirProvider struct {
	name    string
	path    string
	pattern string
}

func NewDirProvider(name string, config Config) (*dirProvider, error) {
	if !fileutils.IsDir(config.Path) {
		return nil, errors.Errorf("tile folder %s doesn't exists", config.Path)
	}
	pattern := config.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &dirProvider{
		name:    name,
		path:    config.Path,
		pattern: pattern,
	}, nil
}

func (s *dirProvider) Tile(tile model.Tile) (io.ReadCloser, error) {
	if !mercantile.Valid(mercantile.TileID{X: tile.X, Y: tile.Y, Z: tile.Z}) {
		return nil, errors.Wrapf(ErrTileNotFound, "invalid tile %s", tile.Key())
	}
	fn := s.Filename(tile)
	f, err := os.Open(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrTileNotFound, "%s: %s", s.name, fn)
		}
		return nil, errors.Wrapf(err, "%s: can't open tile", s.name)
	}
	return f, nil
}

// Filename the file of the tile, {-y} is the tms y axis
func (s *dirProvider) Filename(tile model.Tile) string {
	ymax := 1 << tile.Z
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Z),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
		"{-y}", strconv.Itoa(ymax-tile.Y-1),
	)
	return filepath.Join(s.path, filepath.FromSlash(r.Replace(s.pattern)))
}
