package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

type providerService interface {
	HasProvider(providerName string) bool
	Providers() []string
	FTile(tile model.Tile) (io.ReadCloser, error)
}

// XYZHandler serves the raw tiles of the configured providers
type XYZHandler struct {
	log     *slog.Logger
	tiles   providerService
	metrics *measurement.Service
}

func NewXYZHandler(inj do.Injector) *chi.Mux {
	th := &XYZHandler{
		log:     logging.New("api"),
		tiles:   do.MustInvokeAs[providerService](inj),
		metrics: do.MustInvoke[*measurement.Service](inj),
	}
	router := chi.NewRouter()
	router.Get("/", th.GetProvidersHandler)
	router.Get("/{provider}/xyz/{z}/{x}/{y}.png", th.GetTileHandler)
	return router
}

// GetProvidersHandler lists the names of the configured providers
func (h *XYZHandler) GetProvidersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.tiles.Providers())
}

// GetTileHandler URL: /api/v1/tiles/{provider}/xyz/{z}/{x}/{y}.png
func (h *XYZHandler) GetTileHandler(w http.ResponseWriter, r *http.Request) {
	td := h.metrics.Start("getTile")
	defer td.Stop()

	h.log.Debug(fmt.Sprintf("path: %s", r.URL.Path))
	tile, err := h.getRequestParameter(r)
	if err != nil {
		td.SetError()
		writeError(w, r, err)
		return
	}

	rd, err := h.tiles.FTile(tile)
	if err != nil {
		td.SetError()
		writeError(w, r, err)
		return
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		td.SetError()
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *XYZHandler) getRequestParameter(r *http.Request) (tile model.Tile, err error) {
	tile.Provider = chi.URLParam(r, "provider")
	zs := chi.URLParam(r, "z")
	xs := chi.URLParam(r, "x")
	ys := chi.URLParam(r, "y")

	tile.Z, err = strconv.Atoi(zs)
	if err != nil {
		return tile, errBadRequest("error in zoom level")
	}
	tile.X, err = strconv.Atoi(xs)
	if err != nil {
		return tile, errBadRequest("error in x axis")
	}
	ys = strings.TrimSuffix(ys, filepath.Ext(ys))
	tile.Y, err = strconv.Atoi(ys)
	if err != nil {
		return tile, errBadRequest("error in y axis")
	}

	if !isValidXYZCoord(tile.X, tile.Y, tile.Z) {
		return tile, errBadRequest("invalid tile coordinates")
	}
	return tile, nil
}

// isValidXYZCoord checks if the given coordinates are valid for the given zoom level.
func isValidXYZCoord(x, y, zoom int) bool {
	if zoom < 0 || zoom > mercantile.MaxZoom {
		return false
	}
	max := 1 << zoom // 2^zoom
	if x < 0 || x >= max {
		return false
	}
	if y < 0 || y >= max {
		return false
	}
	return true
}

// ErrBadRequest malformed request parameters
var ErrBadRequest = errors.New("bad request")

func errBadRequest(msg string) error {
	return errors.Wrap(ErrBadRequest, msg)
}
