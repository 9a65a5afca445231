package journey_api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"train-station/internal/api"
	"train-station/internal/journey"
	"train-station/internal/logger"
	"train-station/internal/store"
)

type Handler struct {
	Service *journey.Service
	Logger  *logger.Logger
}

func NewHandler(service *journey.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/journeys", func(r chi.Router) {
		r.Get("/", h.ListJourneys)
		r.Post("/", api.CreateHandler(h.Logger, "Journey created", h.Service.CreateJourney))
		r.Get("/{id}", api.GetHandler(h.Logger, h.Service.GetJourney))
		r.Get("/{id}/availability", h.Availability)
		r.Put("/{id}", api.UpdateHandler(h.Logger, "Journey updated", h.Service.UpdateJourney))
		r.Delete("/{id}", api.DeleteHandler(h.Logger, h.Service.DeleteJourney))
	})
}

func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	var (
		filter store.JourneyFilter
		err    error
	)
	if filter.DepartureDate, err = api.QueryDate(r, "departure_date"); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	if filter.ArrivalDate, err = api.QueryDate(r, "arrival_date"); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	if filter.RouteID, err = api.QueryID(r, "route_id"); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	if filter.TrainID, err = api.QueryID(r, "train_id"); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}

	journeys, err := h.Service.ListJourneys(r.Context(), filter)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", journeys)
}

type availabilityResponse struct {
	JourneyID      int64 `json:"journey_id"`
	Capacity       int   `json:"capacity"`
	SeatsOccupied  int   `json:"seats_occupied"`
	AvailableSeats int   `json:"available_seats"`
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	capacity, booked, available, err := h.Service.Availability(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", availabilityResponse{
		JourneyID:      id,
		Capacity:       capacity,
		SeatsOccupied:  booked,
		AvailableSeats: available,
	})
}
