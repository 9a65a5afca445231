// Package seed fills an empty database with a small sample network for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"train-station/internal/logger"
	"train-station/internal/models"
	"train-station/internal/store"
)

// Result counts the rows written by Run.
type Result struct {
	Stations int
	Trains   int
	Routes   int
	Journeys int
	Skipped  bool
}

func ptr(f float64) *float64 { return &f }

// Run inserts the sample data in one transaction. A database that already has
// stations is left untouched.
func Run(ctx context.Context, db *store.DB, now time.Time, log *logger.Logger) (Result, error) {
	existing, err := db.ListStations(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		log.Info("SEED", fmt.Sprintf("Database already has %d stations, skipping", len(existing)))
		return Result{Skipped: true}, nil
	}

	var res Result
	err = db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		types := []*models.TrainType{{Name: "Intercity"}, {Name: "Regional"}}
		for _, tt := range types {
			if err := tx.CreateTrainType(ctx, tt); err != nil {
				return fmt.Errorf("train type %q: %w", tt.Name, err)
			}
		}

		stations := []*models.Station{
			{Name: "Kyiv", Latitude: ptr(50.4401), Longitude: ptr(30.4889)},
			{Name: "Lviv", Latitude: ptr(49.8397), Longitude: ptr(23.9945)},
			{Name: "Odesa", Latitude: ptr(46.4684), Longitude: ptr(30.7419)},
		}
		for _, s := range stations {
			if err := tx.CreateStation(ctx, s); err != nil {
				return fmt.Errorf("station %q: %w", s.Name, err)
			}
		}
		res.Stations = len(stations)

		crews := []*models.Crew{{FirstName: "Olena", LastName: "Koval"}, {FirstName: "Taras", LastName: "Bondar"}}
		for _, c := range crews {
			if err := tx.CreateCrew(ctx, c); err != nil {
				return fmt.Errorf("crew %q: %w", c.FullName(), err)
			}
		}

		trains := []*models.Train{
			{Name: "IC-743", CargoNum: 8, PlacesInCargo: 25, TrainTypeID: types[0].ID},
			{Name: "R-6071", CargoNum: 4, PlacesInCargo: 20, TrainTypeID: types[1].ID},
		}
		for _, t := range trains {
			if err := tx.CreateTrain(ctx, t); err != nil {
				return fmt.Errorf("train %q: %w", t.Name, err)
			}
		}
		res.Trains = len(trains)

		routes := []*models.Route{
			{SourceID: stations[0].ID, DestinationID: stations[1].ID, Distance: 540},
			{SourceID: stations[1].ID, DestinationID: stations[0].ID, Distance: 540},
			{SourceID: stations[0].ID, DestinationID: stations[2].ID, Distance: 475},
		}
		for _, r := range routes {
			if err := tx.CreateRoute(ctx, r); err != nil {
				return fmt.Errorf("route %d-%d: %w", r.SourceID, r.DestinationID, err)
			}
		}
		res.Routes = len(routes)

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		journeys := []*models.Journey{
			{RouteID: routes[0].ID, TrainID: trains[0].ID, DepartureTime: day.Add(7 * time.Hour), ArrivalTime: day.Add(12*time.Hour + 30*time.Minute)},
			{RouteID: routes[1].ID, TrainID: trains[0].ID, DepartureTime: day.Add(15 * time.Hour), ArrivalTime: day.Add(20*time.Hour + 30*time.Minute)},
			{RouteID: routes[2].ID, TrainID: trains[1].ID, DepartureTime: day.Add(22 * time.Hour), ArrivalTime: day.Add(30 * time.Hour)},
		}
		for _, j := range journeys {
			if err := tx.CreateJourney(ctx, j); err != nil {
				return fmt.Errorf("journey on route %d: %w", j.RouteID, err)
			}
		}
		res.Journeys = len(journeys)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed failed: %w", err)
	}

	log.LogDatabase("SEED", "stations", fmt.Sprintf("%d stations, %d trains, %d routes, %d journeys",
		res.Stations, res.Trains, res.Routes, res.Journeys))
	return res, nil
}
