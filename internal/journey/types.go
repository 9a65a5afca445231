package journey

import (
	"time"

	"train-station/internal/models"
)

// JourneyRequest is used for both create and update. Zero times fail schedule validation.
type JourneyRequest struct {
	RouteID       int64     `json:"route_id" validate:"required,gt=0"`
	TrainID       int64     `json:"train_id" validate:"required,gt=0"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type TakenPlace struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

type JourneyResponse struct {
	ID             int64        `json:"id"`
	RouteID        int64        `json:"route_id"`
	TrainID        int64        `json:"train_id"`
	Route          string       `json:"route"`
	Train          string       `json:"train"`
	TrainType      string       `json:"train_type,omitempty"`
	DepartureTime  time.Time    `json:"departure_time"`
	ArrivalTime    time.Time    `json:"arrival_time"`
	Capacity       int          `json:"capacity"`
	SeatsOccupied  int          `json:"seats_occupied"`
	AvailableSeats int          `json:"available_seats"`
	TakenPlaces    []TakenPlace `json:"taken_places,omitempty"`
}

func newJourneyResponse(j models.Journey, booked int) JourneyResponse {
	resp := JourneyResponse{
		ID:            j.ID,
		RouteID:       j.RouteID,
		TrainID:       j.TrainID,
		DepartureTime: j.DepartureTime.UTC(),
		ArrivalTime:   j.ArrivalTime.UTC(),
		SeatsOccupied: booked,
	}
	if j.Route != nil {
		resp.Route = j.Route.Label()
	}
	if j.Train != nil {
		resp.Train = j.Train.Name
		resp.Capacity = j.Train.Capacity()
		resp.AvailableSeats = AvailableSeats(*j.Train, booked)
		if j.Train.TrainType != nil {
			resp.TrainType = j.Train.TrainType.Name
		}
	}
	return resp
}
