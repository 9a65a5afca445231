package booking_api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"train-station/internal/api"
	"train-station/internal/auth"
	"train-station/internal/booking"
	"train-station/internal/logger"
	"train-station/internal/models"
)

type Handler struct {
	Service *booking.Service
	Logger  *logger.Logger
	// OrderLimit wraps order creation; nil disables rate limiting.
	OrderLimit func(http.Handler) http.Handler
}

func NewHandler(service *booking.Service, log *logger.Logger, orderLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{Service: service, Logger: log, OrderLimit: orderLimit}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		if h.OrderLimit != nil {
			r.With(h.OrderLimit).Post("/", h.CreateOrder)
		} else {
			r.Post("/", h.CreateOrder)
		}
		r.Get("/{id}", h.GetOrder)
		r.Delete("/{id}", h.DeleteOrder)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.ListTickets)
		r.Get("/{id}", h.GetTicket)
		r.Get("/{id}/qr", h.TicketQR)
	})
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateOrderRequest
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}

	p := principal(r)
	order, err := h.Service.CreateOrder(r.Context(), p, req.Tickets)
	if err != nil {
		h.Logger.Info("BOOKING", fmt.Sprintf("Order for %s rejected: %v", p.UserID, err))
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusCreated, "Order created", booking.NewOrderResponse(*order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.ListOrders(r.Context(), principal(r))
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	out := make([]booking.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, booking.NewOrderResponse(o))
	}
	api.WriteData(w, http.StatusOK, "OK", out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	order, err := h.Service.GetOrder(r.Context(), principal(r), id)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", booking.NewOrderResponse(*order))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	if err := h.Service.DeleteOrder(r.Context(), principal(r), id); err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTickets accepts an optional ?journey_id= filter.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	journeyID, err := api.QueryID(r, "journey_id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	tickets, err := h.Service.ListTickets(r.Context(), principal(r), journeyID)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", ticketResponses(tickets))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	ticket, err := h.Service.GetTicket(r.Context(), principal(r), id)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	api.WriteData(w, http.StatusOK, "OK", booking.NewTicketResponse(*ticket))
}

func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	png, err := h.Service.TicketQR(r.Context(), principal(r), id)
	if err != nil {
		api.WriteError(w, h.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=ticket-%d.png", id))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func ticketResponses(tickets []models.Ticket) []booking.TicketResponse {
	out := make([]booking.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, booking.NewTicketResponse(t))
	}
	return out
}
