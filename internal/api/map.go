package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/mercantile"
	"github.com/willie68/go_mapview/internal/model"
	maprender "github.com/willie68/go_mapview/internal/render"
)

type mapRenderer interface {
	Render(req maprender.Request) (*maprender.View, error)
	Config() maprender.Config
}

// MapHandler renders the map around a location
type MapHandler struct {
	log *slog.Logger
	r   mapRenderer
}

// MapInfo the description of a rendered map
type MapInfo struct {
	Center   model.LatLon   `json:"center"`
	Provider string         `json:"provider"`
	Grid     maprender.Grid `json:"grid"`
	TileX    float64        `json:"tileX"`
	TileY    float64        `json:"tileY"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	MarkerX  int            `json:"markerX"`
	MarkerY  int            `json:"markerY"`
}

func NewMapHandler(inj do.Injector) (*MapHandler, error) {
	r, err := do.InvokeAs[mapRenderer](inj)
	if err != nil {
		return nil, errors.Wrap(err, "no renderer available")
	}
	return &MapHandler{
		log: logging.New("api"),
		r:   r,
	}, nil
}

func (h *MapHandler) Routes() *chi.Mux {
	router := chi.NewRouter()
	router.Get("/", h.GetMapInfoHandler)
	return router
}

// PNGRoute the route of the stitched map image, relative to the api base
const PNGRoute = "/map.png"

// GetMapInfoHandler URL: /api/v1/map?latlon=1.34047,103.70935&zoom=15&provider=osm
func (h *MapHandler) GetMapInfoHandler(w http.ResponseWriter, r *http.Request) {
	v, err := h.renderRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, info(v))
}

// GetMapPNGHandler URL: /api/v1/map.png?latlon=1.34047,103.70935&zoom=15&provider=osm
func (h *MapHandler) GetMapPNGHandler(w http.ResponseWriter, r *http.Request) {
	v, err := h.renderRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := v.WritePNG(&buf); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *MapHandler) renderRequest(r *http.Request) (*maprender.View, error) {
	req, err := h.parseRequest(r)
	if err != nil {
		return nil, err
	}
	return h.r.Render(req)
}

// parseRequest reads latlon, zoom and provider from the query, missing values are taken from the config
func (h *MapHandler) parseRequest(r *http.Request) (req maprender.Request, err error) {
	q := r.URL.Query()
	latlon := q.Get("latlon")
	if latlon == "" {
		latlon = h.r.Config().Location
	}
	req.Center, err = model.ParseLatLon(latlon)
	if err != nil {
		return req, err
	}
	if zs := q.Get("zoom"); zs != "" {
		req.Zoom, err = strconv.Atoi(zs)
		if err != nil {
			return req, errBadRequest("error in zoom level")
		}
		if req.Zoom < 0 || req.Zoom > mercantile.MaxZoom {
			return req, errors.Wrapf(maprender.ErrInvalidZoom, "%d", req.Zoom)
		}
	}
	req.Provider = q.Get("provider")
	return req, nil
}

func info(v *maprender.View) MapInfo {
	b := v.Image.Bounds()
	return MapInfo{
		Center:   v.Center,
		Provider: v.Provider,
		Grid:     v.Grid,
		TileX:    v.TileX,
		TileY:    v.TileY,
		Width:    b.Dx(),
		Height:   b.Dy(),
		MarkerX:  v.MarkerAt.X,
		MarkerY:  v.MarkerAt.Y,
	}
}
