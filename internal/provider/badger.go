package provider

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/pkg/fileutils"
)

// BadgerStore a tile store in a badger database, keys are z/x/y
type BadgerStore struct {
	log *slog.Logger
	db  *badger.DB
}

// badgerProvider serves tiles out of a badger tile store
type badgerProvider struct {
	name  string
	store *BadgerStore
}

func NewBadgerProvider(name string, config Config) (*badgerProvider, error) {
	st, err := OpenBadgerStore(config.Path)
	if err != nil {
		return nil, err
	}
	return &badgerProvider{
		name:  name,
		store: st,
	}, nil
}

func (s *badgerProvider) Tile(tile model.Tile) (io.ReadCloser, error) {
	data, err := s.store.Get(tile)
	if err != nil {
		return nil, errors.Wrap(err, s.name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *badgerProvider) Close() error {
	return s.store.Close()
}

// OpenBadgerStore opens or creates the store at the path, an empty path creates an in memory store
func OpenBadgerStore(path string) (*BadgerStore, error) {
	log := logging.New("badger")
	opts := badger.DefaultOptions(path).WithLogger(&badgerLogger{log: log})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open tile store %s", path)
	}
	return &BadgerStore{
		log: log,
		db:  db,
	}, nil
}

// Get reads the data of the tile
func (b *BadgerStore) Get(tile model.Tile) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tile.Key()))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrTileNotFound, "tile %s", tile.Key())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can't read tile %s", tile.Key())
	}
	return data, nil
}

// Put stores the data of the tile, existing data will be replaced
func (b *BadgerStore) Put(tile model.Tile, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(tile.Key()), data)
	})
}

// ImportDir imports all tiles of a {z}/{x}/{y}.png folder structure, returning the number of imported tiles
func (b *BadgerStore) ImportDir(dir string) (int, error) {
	if !fileutils.IsDir(dir) {
		return 0, errors.Errorf("tile folder %s doesn't exists", dir)
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTileImage(path) {
			return nil
		}
		tile, ok := tileFromPath(dir, path)
		if !ok {
			b.log.Debug(fmt.Sprintf("skipping %s, not a z/x/y tile", path))
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := wb.Set([]byte(tile.Key()), data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "error importing %s", dir)
	}
	if err := wb.Flush(); err != nil {
		return 0, errors.Wrap(err, "error writing tiles")
	}
	b.log.Info(fmt.Sprintf("imported %d tiles from %s", count, dir))
	return count, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func isTileImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func tileFromPath(root, path string) (model.Tile, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return model.Tile{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return model.Tile{}, false
	}
	var tile model.Tile
	var errs [3]error
	tile.Z, errs[0] = fileutils.IntFileName(parts[0])
	tile.X, errs[1] = fileutils.IntFileName(parts[1])
	tile.Y, errs[2] = fileutils.IntFileName(parts[2])
	for _, e := range errs {
		if e != nil {
			return model.Tile{}, false
		}
	}
	return tile, true
}

// badgerLogger routes the badger logging into slog, badger info is quite chatty so it goes to debug
type badgerLogger struct {
	log *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
