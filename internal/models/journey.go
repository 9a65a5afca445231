package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Journey struct {
	bun.BaseModel `bun:"table:journeys,alias:journey"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	RouteID       int64     `bun:"route_id,notnull" json:"route_id"`
	TrainID       int64     `bun:"train_id,notnull" json:"train_id"`
	DepartureTime time.Time `bun:"departure_time,notnull" json:"departure_time"`
	ArrivalTime   time.Time `bun:"arrival_time,notnull" json:"arrival_time"`
	Route         *Route    `bun:"rel:belongs-to,join:route_id=id" json:"route,omitempty"`
	Train         *Train    `bun:"rel:belongs-to,join:train_id=id" json:"train,omitempty"`
}

// JourneyLoad is the number of booked tickets per journey.
type JourneyLoad struct {
	JourneyID int64 `bun:"journey_id"`
	Booked    int   `bun:"booked"`
}
