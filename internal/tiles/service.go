package tiles

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/samber/do/v2"
	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/provider"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

type providerFactory interface {
	HasProvider(providerName string) bool
	Providers() []string
	Fallback(providerName string) string
}

// Service reads tiles from the named providers, following the fallback of a provider for missing tiles
type Service struct {
	inj     do.Injector
	log     *slog.Logger
	tssf    providerFactory
	metrics *measurement.Service
}

func Init(inj do.Injector) {
	do.ProvideValue(inj, &Service{
		inj:     inj,
		log:     logging.New("tiles"),
		tssf:    do.MustInvokeAs[providerFactory](inj),
		metrics: do.MustInvoke[*measurement.Service](inj),
	})
}

// FTile gets the tile of the provider. If the provider doesn't have the tile, the configured
// fallback provider is asked.
func (s *Service) FTile(tile model.Tile) (io.ReadCloser, error) {
	if !s.HasProvider(tile.Provider) {
		return nil, errors.Wrap(provider.ErrNotFound, tile.Provider)
	}

	ts, err := do.InvokeNamed[provider.Service](s.inj, tile.Provider)
	if err != nil {
		s.log.Error(fmt.Sprintf("System error: %v", err))
		return nil, err
	}

	td := s.metrics.Start(fmt.Sprintf("tile:%s", tile.Provider))
	rd, err := ts.Tile(tile)
	if err != nil {
		td.SetError()
	}
	td.Stop()
	if err == nil {
		return rd, nil
	}

	fb := s.fallback(tile.Provider)
	if fb != "" && errors.Is(err, provider.ErrTileNotFound) {
		s.log.Debug(fmt.Sprintf("tile %s missing in %s, using fallback %s", tile.Key(), tile.Provider, fb))
		tile.Provider = fb
		return s.FTile(tile)
	}
	return nil, err
}

// fallback the first available provider of the fallback chain, providers which could not be opened are skipped
func (s *Service) fallback(providerName string) string {
	visited := map[string]bool{providerName: true}
	fb := s.tssf.Fallback(providerName)
	for fb != "" && !visited[fb] {
		if s.tssf.HasProvider(fb) {
			return fb
		}
		s.log.Debug(fmt.Sprintf("fallback %s of %s not available", fb, providerName))
		visited[fb] = true
		fb = s.tssf.Fallback(fb)
	}
	return ""
}

func (s *Service) HasProvider(providerName string) bool {
	return s.tssf.HasProvider(providerName)
}

func (s *Service) Providers() []string {
	return s.tssf.Providers()
}
