package catalog_api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"train-station/internal/api"
	"train-station/internal/catalog"
	"train-station/internal/logger"
	"train-station/internal/store"
)

type Handler struct {
	Service *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(service *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterRoutes mounts the catalog collections on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	s, log := h.Service, h.Logger

	r.Route("/train-types", func(r chi.Router) {
		r.Get("/", api.ListHandler(log, s.ListTrainTypes))
		r.Post("/", api.CreateHandler(log, "Train type created", s.CreateTrainType))
		r.Get("/{id}", api.GetHandler(log, s.GetTrainType))
		r.Put("/{id}", api.UpdateHandler(log, "Train type updated", s.UpdateTrainType))
		r.Delete("/{id}", api.DeleteHandler(log, s.DeleteTrainType))
	})

	r.Route("/stations", func(r chi.Router) {
		r.Get("/", api.ListHandler(log, s.ListStations))
		r.Post("/", api.CreateHandler(log, "Station created", s.CreateStation))
		r.Get("/{id}", api.GetHandler(log, s.GetStation))
		r.Put("/{id}", api.UpdateHandler(log, "Station updated", s.UpdateStation))
		r.Delete("/{id}", api.DeleteHandler(log, s.DeleteStation))
	})

	r.Route("/crews", func(r chi.Router) {
		r.Get("/", api.ListHandler(log, s.ListCrews))
		r.Post("/", api.CreateHandler(log, "Crew created", s.CreateCrew))
		r.Get("/{id}", api.GetHandler(log, s.GetCrew))
		r.Put("/{id}", api.UpdateHandler(log, "Crew updated", s.UpdateCrew))
		r.Delete("/{id}", api.DeleteHandler(log, s.DeleteCrew))
	})

	r.Route("/trains", func(r chi.Router) {
		r.Get("/", h.ListTrains)
		r.Post("/", api.CreateHandler(log, "Train created", s.CreateTrain))
		r.Get("/{id}", api.GetHandler(log, s.GetTrain))
		r.Put("/{id}", api.UpdateHandler(log, "Train updated", s.UpdateTrain))
		r.Delete("/{id}", api.DeleteHandler(log, s.DeleteTrain))
	})

	r.Route("/routes", func(r chi.Router) {
		r.Get("/", h.ListRoutes)
		r.Post("/", api.CreateHandler(log, "Route created", s.CreateRoute))
		r.Get("/{id}", api.GetHandler(log, s.GetRoute))
		r.Put("/{id}", api.UpdateHandler(log, "Route updated", s.UpdateRoute))
		r.Delete("/{id}", api.DeleteHandler(log, s.DeleteRoute))
	})
}

// ListTrains supports ?name= and ?train_type= substring filters.
func (h *Handler) ListTrains(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trains, err := h.Service.ListTrains(r.Context(), store.TrainFilter{
		Name:      q.Get("name"),
		TrainType: q.Get("train_type"),
	})
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", trains)
}

// ListRoutes supports ?source= and ?destination= station name filters.
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	routes, err := h.Service.ListRoutes(r.Context(), store.RouteFilter{
		Source:      q.Get("source"),
		Destination: q.Get("destination"),
	})
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", routes)
}
