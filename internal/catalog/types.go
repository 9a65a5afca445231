package catalog

import "train-station/internal/models"

type TrainTypeRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type StationRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type CrewRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

// TrainRequest carries no range tags for the dimensions; ValidateTrain owns those bounds.
type TrainRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainTypeID   int64  `json:"train_type_id" validate:"required,gt=0"`
}

type RouteRequest struct {
	SourceID      int64 `json:"source_id" validate:"required,gt=0"`
	DestinationID int64 `json:"destination_id" validate:"required,gt=0"`
	Distance      int   `json:"distance" validate:"gte=0"`
}

type CrewResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type TrainResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	Capacity      int    `json:"capacity"`
	TrainTypeID   int64  `json:"train_type_id"`
	TrainType     string `json:"train_type,omitempty"`
}

type RouteResponse struct {
	ID            int64           `json:"id"`
	SourceID      int64           `json:"source_id"`
	DestinationID int64           `json:"destination_id"`
	Source        *models.Station `json:"source,omitempty"`
	Destination   *models.Station `json:"destination,omitempty"`
	Distance      int             `json:"distance"`
	Label         string          `json:"label,omitempty"`
}

func NewCrewResponse(c models.Crew) CrewResponse {
	return CrewResponse{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, FullName: c.FullName()}
}

func NewTrainResponse(t models.Train) TrainResponse {
	resp := TrainResponse{
		ID:            t.ID,
		Name:          t.Name,
		CargoNum:      t.CargoNum,
		PlacesInCargo: t.PlacesInCargo,
		Capacity:      t.Capacity(),
		TrainTypeID:   t.TrainTypeID,
	}
	if t.TrainType != nil {
		resp.TrainType = t.TrainType.Name
	}
	return resp
}

func NewRouteResponse(r models.Route) RouteResponse {
	return RouteResponse{
		ID:            r.ID,
		SourceID:      r.SourceID,
		DestinationID: r.DestinationID,
		Source:        r.Source,
		Destination:   r.Destination,
		Distance:      r.Distance,
		Label:         r.Label(),
	}
}
