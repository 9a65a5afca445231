package models

import "github.com/uptrace/bun"

type TrainType struct {
	bun.BaseModel `bun:"table:train_types,alias:train_type"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
}

type Train struct {
	bun.BaseModel `bun:"table:trains,alias:train"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Name          string     `bun:"name,notnull" json:"name"`
	CargoNum      int        `bun:"cargo_num,notnull" json:"cargo_num"`
	PlacesInCargo int        `bun:"places_in_cargo,notnull" json:"places_in_cargo"`
	TrainTypeID   int64      `bun:"train_type_id,notnull" json:"train_type_id"`
	TrainType     *TrainType `bun:"rel:belongs-to,join:train_type_id=id" json:"train_type,omitempty"`
}

// Capacity is the number of physical seats on the train.
func (t Train) Capacity() int {
	return t.CargoNum * t.PlacesInCargo
}

type Crew struct {
	bun.BaseModel `bun:"table:crews,alias:crew"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	FirstName string `bun:"first_name,notnull" json:"first_name"`
	LastName  string `bun:"last_name,notnull" json:"last_name"`
}

func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}
