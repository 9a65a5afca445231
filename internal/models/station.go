package models

import "github.com/uptrace/bun"

type Station struct {
	bun.BaseModel `bun:"table:stations,alias:station"`

	ID        int64    `bun:"id,pk,autoincrement" json:"id"`
	Name      string   `bun:"name,notnull,unique" json:"name"`
	Latitude  *float64 `bun:"latitude" json:"latitude"`
	Longitude *float64 `bun:"longitude" json:"longitude"`
}

type Route struct {
	bun.BaseModel `bun:"table:routes,alias:route"`

	ID            int64    `bun:"id,pk,autoincrement" json:"id"`
	SourceID      int64    `bun:"source_id,notnull,unique:route_endpoints" json:"source_id"`
	DestinationID int64    `bun:"destination_id,notnull,unique:route_endpoints" json:"destination_id"`
	Distance      int      `bun:"distance,notnull" json:"distance"`
	Source        *Station `bun:"rel:belongs-to,join:source_id=id" json:"source,omitempty"`
	Destination   *Station `bun:"rel:belongs-to,join:destination_id=id" json:"destination,omitempty"`
}

// Label renders the route as "Source - Destination" when both stations are loaded.
func (r Route) Label() string {
	if r.Source == nil || r.Destination == nil {
		return ""
	}
	return r.Source.Name + " - " + r.Destination.Name
}
