package booking

import (
	"time"

	"train-station/internal/models"
)

type TicketRequest struct {
	JourneyID int64 `json:"journey_id" validate:"required,gt=0"`
	Cargo     int   `json:"cargo"`
	Seat      int   `json:"seat"`
}

type CreateOrderRequest struct {
	Tickets []TicketRequest `json:"tickets" validate:"dive"`
}

type JourneySummary struct {
	ID            int64     `json:"id"`
	Route         string    `json:"route"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type TicketResponse struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	JourneyID int64           `json:"journey_id"`
	Cargo     int             `json:"cargo"`
	Seat      int             `json:"seat"`
	Journey   *JourneySummary `json:"journey,omitempty"`
}

type OrderResponse struct {
	ID        int64            `json:"id"`
	UserID    string           `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []TicketResponse `json:"tickets"`
}

func NewTicketResponse(t models.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:        t.ID,
		OrderID:   t.OrderID,
		JourneyID: t.JourneyID,
		Cargo:     t.Cargo,
		Seat:      t.Seat,
	}
	if j := t.Journey; j != nil {
		resp.Journey = &JourneySummary{
			ID:            j.ID,
			DepartureTime: j.DepartureTime.UTC(),
			ArrivalTime:   j.ArrivalTime.UTC(),
		}
		if j.Route != nil {
			resp.Journey.Route = j.Route.Label()
		}
	}
	return resp
}

func NewOrderResponse(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt.UTC(),
		Tickets:   make([]TicketResponse, 0, len(o.Tickets)),
	}
	for _, t := range o.Tickets {
		resp.Tickets = append(resp.Tickets, NewTicketResponse(*t))
	}
	return resp
}
