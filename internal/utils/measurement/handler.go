package measurement

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/samber/do/v2"
)

// Routes the metrics routes, mounted below /api/v1/metrics
func Routes(inj do.Injector) *chi.Mux {
	ms := do.MustInvoke[*Service](inj)
	router := chi.NewRouter()
	router.Get("/", getMetricsHandler(ms))
	router.Post("/reset", resetMetricsHandler(ms))
	router.Post("/reset/{name}", resetPointHandler(ms))
	return router
}

func getMetricsHandler(ms *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, ms.Datas())
	}
}

func resetMetricsHandler(ms *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms.Reset()
		render.NoContent(w, r)
	}
}

func resetPointHandler(ms *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ms.Point(chi.URLParam(r, "name")).Reset()
		render.NoContent(w, r)
	}
}
