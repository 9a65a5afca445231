// Package journey schedules trains on routes and reports seat availability.
package journey

import (
	"context"
	"fmt"

	"train-station/internal/logger"
	"train-station/internal/models"
	"train-station/internal/store"
	"train-station/internal/validation"
)

type Service struct {
	db  *store.DB
	log *logger.Logger
}

func NewService(db *store.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) CreateJourney(ctx context.Context, req JourneyRequest) (*JourneyResponse, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	j := &models.Journey{
		RouteID:       req.RouteID,
		TrainID:       req.TrainID,
		DepartureTime: req.DepartureTime.UTC(),
		ArrivalTime:   req.ArrivalTime.UTC(),
	}
	if err := s.db.CreateJourney(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}
	s.log.LogDatabase("INSERT", "journeys", fmt.Sprintf("id=%d route=%d train=%d", j.ID, j.RouteID, j.TrainID))
	return s.GetJourney(ctx, j.ID)
}

// GetJourney returns the journey with live availability and the list of taken places.
func (s *Service) GetJourney(ctx context.Context, id int64) (*JourneyResponse, error) {
	j, err := s.db.GetJourney(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.db.TakenSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load taken seats for journey %d: %w", id, err)
	}

	resp := newJourneyResponse(*j, len(taken))
	resp.TakenPlaces = make([]TakenPlace, 0, len(taken))
	for _, t := range taken {
		resp.TakenPlaces = append(resp.TakenPlaces, TakenPlace{Cargo: t.Cargo, Seat: t.Seat})
	}
	return &resp, nil
}

func (s *Service) ListJourneys(ctx context.Context, filter store.JourneyFilter) ([]JourneyResponse, error) {
	journeys, err := s.db.ListJourneys(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(journeys))
	for _, j := range journeys {
		ids = append(ids, j.ID)
	}
	loads, err := s.db.JourneyLoads(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count booked seats: %w", err)
	}

	out := make([]JourneyResponse, 0, len(journeys))
	for _, j := range journeys {
		out = append(out, newJourneyResponse(j, loads[j.ID]))
	}
	return out, nil
}

// Availability reports only the seat counters of a journey.
func (s *Service) Availability(ctx context.Context, id int64) (capacity, booked, available int, err error) {
	j, err := s.db.JourneyWithTrain(ctx, id)
	if err != nil {
		return 0, 0, 0, err
	}
	booked, err = s.db.CountTickets(ctx, id)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count tickets for journey %d: %w", id, err)
	}
	return j.Train.Capacity(), booked, AvailableSeats(*j.Train, booked), nil
}

func (s *Service) UpdateJourney(ctx context.Context, id int64, req JourneyRequest) (*JourneyResponse, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	j := &models.Journey{
		ID:            id,
		RouteID:       req.RouteID,
		TrainID:       req.TrainID,
		DepartureTime: req.DepartureTime.UTC(),
		ArrivalTime:   req.ArrivalTime.UTC(),
	}
	err := s.db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := tx.UpdateJourney(ctx, j); err != nil {
			return fmt.Errorf("failed to update journey %d: %w", id, err)
		}
		train, err := tx.GetTrain(ctx, req.TrainID)
		if err != nil {
			return fmt.Errorf("failed to load train %d: %w", req.TrainID, err)
		}
		outside, err := tx.JourneyHasSeatsOutside(ctx, id, train.CargoNum, train.PlacesInCargo)
		if err != nil {
			return fmt.Errorf("failed to check booked seats of journey %d: %w", id, err)
		}
		if outside {
			return &validation.LayoutError{Field: "train_id", CargoNum: train.CargoNum, PlacesInCargo: train.PlacesInCargo}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetJourney(ctx, id)
}

// DeleteJourney refuses with store.ErrConflict while tickets are booked on the journey.
func (s *Service) DeleteJourney(ctx context.Context, id int64) error {
	if err := s.db.DeleteJourney(ctx, id); err != nil {
		return fmt.Errorf("failed to delete journey %d: %w", id, err)
	}
	s.log.LogDatabase("DELETE", "journeys", fmt.Sprintf("id=%d", id))
	return nil
}

func (s *Service) check(ctx context.Context, req JourneyRequest) error {
	if err := validation.ValidateSchedule(req.DepartureTime, req.ArrivalTime); err != nil {
		return err
	}
	ok, err := s.db.RouteExists(ctx, req.RouteID)
	if err != nil {
		return fmt.Errorf("failed to look up route: %w", err)
	}
	if !ok {
		return &validation.ReferenceError{Field: "route_id", ID: req.RouteID}
	}
	ok, err = s.db.TrainExists(ctx, req.TrainID)
	if err != nil {
		return fmt.Errorf("failed to look up train: %w", err)
	}
	if !ok {
		return &validation.ReferenceError{Field: "train_id", ID: req.TrainID}
	}
	return nil
}
