package provider

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/samber/do/v2"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/model"
)

// Service a source of tiles
type Service interface {
	Tile(tile model.Tile) (io.ReadCloser, error)
}

type ConfigMap map[string]Config

type Config struct {
	Type     string `yaml:"type"`     // dir, mbtiles, badger, debug
	Path     string `yaml:"path"`     // for file based providers
	Pattern  string `yaml:"pattern"`  // dir only, default {z}/{x}/{y}.png
	Fallback string `yaml:"fallback"` // provider asked, if a tile is missing
}

type pFactory struct {
	log      *slog.Logger
	configs  ConfigMap
	services []string
	closers  []io.Closer
}

var (
	// ErrNotFound the provider is unknown
	ErrNotFound = errors.New("provider not found")
	// ErrTileNotFound the provider has no such tile
	ErrTileNotFound = errors.New("tile not found")
)

type providerConfig interface {
	GetProviderConfig() ConfigMap
}

// Init creates all configured providers and registers them named in the injector.
// Providers which can't be opened are logged and skipped.
func Init(inj do.Injector) {
	cfgs := do.MustInvokeAs[providerConfig](inj).GetProviderConfig()
	if err := cfgs.Validate(); err != nil {
		panic(err)
	}
	sf := pFactory{
		log:      logging.New("factory"),
		configs:  cfgs,
		services: make([]string, 0),
	}
	do.ProvideValue(inj, &sf)
	for sname, config := range sf.configs {
		s, err := sf.create(sname, config)
		if err != nil {
			sf.log.Error(fmt.Sprintf("can't create provider %s: %v", sname, err))
			continue
		}
		do.ProvideNamedValue(inj, sname, s)
		sf.services = append(sf.services, sname)
	}
	slices.Sort(sf.services)
}

func (f *pFactory) create(name string, config Config) (Service, error) {
	switch config.Type {
	case "dir":
		return NewDirProvider(name, config)
	case "mbtiles":
		p, err := NewMBTilesProvider(name, config)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, p)
		return p, nil
	case "badger":
		p, err := NewBadgerProvider(name, config)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, p)
		return p, nil
	case "debug":
		return NewDebugProvider(name), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %s", config.Type)
	}
}

// Validate checks the provider types and the fallback chains
func (m ConfigMap) Validate() error {
	for name, c := range m {
		switch c.Type {
		case "dir", "mbtiles", "badger":
			if c.Path == "" {
				return fmt.Errorf("provider %s: missing path", name)
			}
		case "debug":
		default:
			return fmt.Errorf("provider %s: unknown provider type: %s", name, c.Type)
		}
		visited := map[string]bool{name: true}
		fb := c.Fallback
		for fb != "" {
			next, ok := m[fb]
			if !ok {
				return fmt.Errorf("provider %s: unknown fallback %s", name, fb)
			}
			if visited[fb] {
				return fmt.Errorf("provider %s: fallback cycle at %s", name, fb)
			}
			visited[fb] = true
			fb = next.Fallback
		}
	}
	return nil
}

// HasProvider checks if the provider is configured and available
func (f *pFactory) HasProvider(providerName string) bool {
	return slices.Contains(f.services, providerName)
}

// Providers names of all available providers, sorted
func (f *pFactory) Providers() []string {
	return slices.Clone(f.services)
}

// Fallback the name of the fallback provider, or ""
func (f *pFactory) Fallback(providerName string) string {
	config, ok := f.configs[providerName]
	if !ok {
		return ""
	}
	return config.Fallback
}

// Shutdown closes all file based providers
func (f *pFactory) Shutdown() error {
	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
