// Package api the REST interface of the map server
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/samber/do/v2"

	"github.com/willie68/go_mapview/internal/logging"
	"github.com/willie68/go_mapview/internal/model"
	"github.com/willie68/go_mapview/internal/provider"
	maprender "github.com/willie68/go_mapview/internal/render"
	"github.com/willie68/go_mapview/internal/utils/measurement"
)

const (
	// APIVersion the actual implemented api version
	APIVersion = "1"
	// BaseURL all api routes are below this path
	BaseURL = "/api/v" + APIVersion
)

var logger = logging.New("api")

// APIRoutes the routes of the map server api
func APIRoutes(inj do.Injector) (*chi.Mux, error) {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
	)

	mh, err := NewMapHandler(inj)
	if err != nil {
		return nil, err
	}
	router.Route(BaseURL, func(r chi.Router) {
		r.Get(PNGRoute, mh.GetMapPNGHandler)
		r.Mount("/map", mh.Routes())
		r.Mount("/tiles", NewXYZHandler(inj))
		r.Mount("/metrics", measurement.Routes(inj))
	})
	for _, route := range router.Routes() {
		logger.Debug("route: " + route.Pattern)
	}
	return router, nil
}

// HealthRoutes the liveness and readiness probes
func HealthRoutes(inj do.Injector) *chi.Mux {
	ts := do.MustInvokeAs[providerService](inj)
	router := chi.NewRouter()
	router.Get("/livez", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if len(ts.Providers()) == 0 {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"status": "no provider"})
			return
		}
		render.JSON(w, r, map[string]any{"status": "ok", "providers": ts.Providers()})
	})
	return router
}

// httpStatus maps the errors of a render or a tile read to a http status
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidCoordinate), errors.Is(err, maprender.ErrInvalidZoom):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrNotFound), errors.Is(err, provider.ErrTileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	st := httpStatus(err)
	if st == http.StatusInternalServerError {
		logger.Error("System error: " + err.Error())
	}
	render.Status(r, st)
	render.JSON(w, r, errResponse{Status: st, Error: err.Error()})
}
