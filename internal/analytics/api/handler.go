package analytics_api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"train-station/internal/analytics"
	"train-station/internal/api"
	"train-station/internal/auth"
	"train-station/internal/logger"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterRoutes mounts the staff only reports under /analytics.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(auth.RequireStaff)
		r.Get("/journeys/{id}", api.GetHandler(h.Logger, h.Service.Journey))
		r.Get("/routes/{id}", api.GetHandler(h.Logger, h.Service.Route))
		r.Get("/sales", h.Sales)
	})
}

// TicketCountResponse is the body of the public ticket counter.
type TicketCountResponse struct {
	TotalCount int `json:"total_count"`
}

func (h *Handler) TotalTickets(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.TotalTickets(r.Context())
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", TicketCountResponse{TotalCount: count})
}

// Sales reads an optional from/to day range; to is inclusive.
func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	from, err := api.QueryDate(r, "from")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	to, err := api.QueryDate(r, "to")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	if to != nil {
		end := to.Add(24 * time.Hour)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		api.WriteError(w, h.Logger, &api.RequestError{Field: "from", Reason: "must not be after to"})
		return
	}

	report, err := h.Service.Sales(r.Context(), from, to)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", report)
}
