package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	Tickets   []*Ticket `bun:"rel:has-many,join:id=order_id" json:"tickets"`
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets,alias:ticket"`

	ID        int64    `bun:"id,pk,autoincrement" json:"id"`
	Cargo     int      `bun:"cargo,notnull,unique:ticket_seat" json:"cargo"`
	Seat      int      `bun:"seat,notnull,unique:ticket_seat" json:"seat"`
	JourneyID int64    `bun:"journey_id,notnull,unique:ticket_seat" json:"journey_id"`
	OrderID   int64    `bun:"order_id,notnull" json:"order_id"`
	Journey   *Journey `bun:"rel:belongs-to,join:journey_id=id" json:"journey,omitempty"`
}

// SeatPosition identifies one physical seat on one journey.
type SeatPosition struct {
	JourneyID int64 `json:"journey_id"`
	Cargo     int   `json:"cargo"`
	Seat      int   `json:"seat"`
}
