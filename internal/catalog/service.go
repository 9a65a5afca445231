// Package catalog manages the static network data: train types, stations, crews, trains
// and routes.
package catalog

import (
	"context"
	"errors"
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

// ---------------- TRAIN TYPES ----------------

func (s *Service) CreateTrainType(ctx context.Context, req TrainTypeRequest) (*models.TrainType, error) {
	tt := &models.TrainType{Name: req.Name}
	if err := s.db.CreateTrainType(ctx, tt); err != nil {
		return nil, fmt.Errorf("failed to create train type: %w", err)
	}
	s.log.LogDatabase("INSERT", "train_types", fmt.Sprintf("id=%d", tt.ID))
	return tt, nil
}

func (s *Service) GetTrainType(ctx context.Context, id int64) (*models.TrainType, error) {
	return s.db.GetTrainType(ctx, id)
}

func (s *Service) ListTrainTypes(ctx context.Context) ([]models.TrainType, error) {
	return s.db.ListTrainTypes(ctx)
}

func (s *Service) UpdateTrainType(ctx context.Context, id int64, req TrainTypeRequest) (*models.TrainType, error) {
	tt := &models.TrainType{ID: id, Name: req.Name}
	if err := s.db.UpdateTrainType(ctx, tt); err != nil {
		return nil, fmt.Errorf("failed to update train type %d: %w", id, err)
	}
	return tt, nil
}

func (s *Service) DeleteTrainType(ctx context.Context, id int64) error {
	if err := s.db.DeleteTrainType(ctx, id); err != nil {
		return fmt.Errorf("failed to delete train type %d: %w", id, err)
	}
	s.log.LogDatabase("DELETE", "train_types", fmt.Sprintf("id=%d", id))
	return nil
}

// ---------------- STATIONS ----------------

func (s *Service) CreateStation(ctx context.Context, req StationRequest) (*models.Station, error) {
	st := &models.Station{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := s.db.CreateStation(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to create station %q: %w", req.Name, err)
	}
	s.log.LogDatabase("INSERT", "stations", fmt.Sprintf("id=%d name=%s", st.ID, st.Name))
	return st, nil
}

func (s *Service) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	return s.db.GetStation(ctx, id)
}

func (s *Service) ListStations(ctx context.Context) ([]models.Station, error) {
	return s.db.ListStations(ctx)
}

func (s *Service) UpdateStation(ctx context.Context, id int64, req StationRequest) (*models.Station, error) {
	st := &models.Station{ID: id, Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := s.db.UpdateStation(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to update station %d: %w", id, err)
	}
	return st, nil
}

func (s *Service) DeleteStation(ctx context.Context, id int64) error {
	if err := s.db.DeleteStation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete station %d: %w", id, err)
	}
	s.log.LogDatabase("DELETE", "stations", fmt.Sprintf("id=%d", id))
	return nil
}

// ---------------- CREWS ----------------

func (s *Service) CreateCrew(ctx context.Context, req CrewRequest) (*CrewResponse, error) {
	c := &models.Crew{FirstName: req.FirstName, LastName: req.LastName}
	if err := s.db.CreateCrew(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create crew: %w", err)
	}
	resp := NewCrewResponse(*c)
	return &resp, nil
}

func (s *Service) GetCrew(ctx context.Context, id int64) (*CrewResponse, error) {
	c, err := s.db.GetCrew(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewCrewResponse(*c)
	return &resp, nil
}

func (s *Service) ListCrews(ctx context.Context) ([]CrewResponse, error) {
	crews, err := s.db.ListCrews(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CrewResponse, 0, len(crews))
	for _, c := range crews {
		out = append(out, NewCrewResponse(c))
	}
	return out, nil
}

func (s *Service) UpdateCrew(ctx context.Context, id int64, req CrewRequest) (*CrewResponse, error) {
	c := &models.Crew{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := s.db.UpdateCrew(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update crew %d: %w", id, err)
	}
	resp := NewCrewResponse(*c)
	return &resp, nil
}

func (s *Service) DeleteCrew(ctx context.Context, id int64) error {
	if err := s.db.DeleteCrew(ctx, id); err != nil {
		return fmt.Errorf("failed to delete crew %d: %w", id, err)
	}
	return nil
}

// ---------------- TRAINS ----------------

func (s *Service) CreateTrain(ctx context.Context, req TrainRequest) (*TrainResponse, error) {
	if err := s.checkTrain(ctx, req); err != nil {
		return nil, err
	}
	t := &models.Train{
		Name:          req.Name,
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainTypeID,
	}
	if err := s.db.CreateTrain(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create train: %w", err)
	}
	s.log.LogDatabase("INSERT", "trains", fmt.Sprintf("id=%d capacity=%d", t.ID, t.Capacity()))
	return s.GetTrain(ctx, t.ID)
}

func (s *Service) GetTrain(ctx context.Context, id int64) (*TrainResponse, error) {
	t, err := s.db.GetTrain(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewTrainResponse(*t)
	return &resp, nil
}

func (s *Service) ListTrains(ctx context.Context, filter store.TrainFilter) ([]TrainResponse, error) {
	trains, err := s.db.ListTrains(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TrainResponse, 0, len(trains))
	for _, t := range trains {
		out = append(out, NewTrainResponse(t))
	}
	return out, nil
}

func (s *Service) UpdateTrain(ctx context.Context, id int64, req TrainRequest) (*TrainResponse, error) {
	if err := s.checkTrain(ctx, req); err != nil {
		return nil, err
	}
	t := &models.Train{
		ID:            id,
		Name:          req.Name,
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainTypeID,
	}
	// The row is updated first so that its lock holds off orders until the check below.
	err := s.db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := tx.UpdateTrain(ctx, t); err != nil {
			return fmt.Errorf("failed to update train %d: %w", id, err)
		}
		outside, err := tx.TrainHasSeatsOutside(ctx, id, t.CargoNum, t.PlacesInCargo)
		if err != nil {
			return fmt.Errorf("failed to check booked seats of train %d: %w", id, err)
		}
		if outside {
			return &validation.LayoutError{Field: "cargo_num", CargoNum: t.CargoNum, PlacesInCargo: t.PlacesInCargo}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetTrain(ctx, id)
}

func (s *Service) DeleteTrain(ctx context.Context, id int64) error {
	if err := s.db.DeleteTrain(ctx, id); err != nil {
		return fmt.Errorf("failed to delete train %d: %w", id, err)
	}
	s.log.LogDatabase("DELETE", "trains", fmt.Sprintf("id=%d", id))
	return nil
}

func (s *Service) checkTrain(ctx context.Context, req TrainRequest) error {
	if err := validation.ValidateTrain(req.CargoNum, req.PlacesInCargo); err != nil {
		return err
	}
	ok, err := s.db.TrainTypeExists(ctx, req.TrainTypeID)
	if err != nil {
		return fmt.Errorf("failed to look up train type: %w", err)
	}
	if !ok {
		return &validation.ReferenceError{Field: "train_type_id", ID: req.TrainTypeID}
	}
	return nil
}

// ---------------- ROUTES ----------------

func (s *Service) CreateRoute(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	if err := s.checkRoute(ctx, req); err != nil {
		return nil, err
	}
	r := &models.Route{SourceID: req.SourceID, DestinationID: req.DestinationID, Distance: req.Distance}
	if err := s.db.CreateRoute(ctx, r); err != nil {
		return nil, routeWriteError(req, err)
	}
	s.log.LogDatabase("INSERT", "routes", fmt.Sprintf("id=%d %d->%d", r.ID, r.SourceID, r.DestinationID))
	return s.GetRoute(ctx, r.ID)
}

func (s *Service) GetRoute(ctx context.Context, id int64) (*RouteResponse, error) {
	r, err := s.db.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewRouteResponse(*r)
	return &resp, nil
}

func (s *Service) ListRoutes(ctx context.Context, filter store.RouteFilter) ([]RouteResponse, error) {
	routes, err := s.db.ListRoutes(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, NewRouteResponse(r))
	}
	return out, nil
}

func (s *Service) UpdateRoute(ctx context.Context, id int64, req RouteRequest) (*RouteResponse, error) {
	if err := s.checkRoute(ctx, req); err != nil {
		return nil, err
	}
	r := &models.Route{ID: id, SourceID: req.SourceID, DestinationID: req.DestinationID, Distance: req.Distance}
	if err := s.db.UpdateRoute(ctx, r); err != nil {
		return nil, routeWriteError(req, err)
	}
	return s.GetRoute(ctx, id)
}

func (s *Service) DeleteRoute(ctx context.Context, id int64) error {
	if err := s.db.DeleteRoute(ctx, id); err != nil {
		return fmt.Errorf("failed to delete route %d: %w", id, err)
	}
	s.log.LogDatabase("DELETE", "routes", fmt.Sprintf("id=%d", id))
	return nil
}

func (s *Service) checkRoute(ctx context.Context, req RouteRequest) error {
	if err := validation.ValidateRoute(req.SourceID, req.DestinationID); err != nil {
		return err
	}
	for _, ref := range []struct {
		field string
		id    int64
	}{{"source_id", req.SourceID}, {"destination_id", req.DestinationID}} {
		ok, err := s.db.StationExists(ctx, ref.id)
		if err != nil {
			return fmt.Errorf("failed to look up station: %w", err)
		}
		if !ok {
			return &validation.ReferenceError{Field: ref.field, ID: ref.id}
		}
	}
	return nil
}

// routeWriteError turns the (source, destination) unique violation into a RouteError.
func routeWriteError(req RouteRequest, err error) error {
	if errors.Is(err, store.ErrConflict) {
		return &validation.RouteError{Kind: validation.DuplicateRoute, SourceID: req.SourceID, DestinationID: req.DestinationID}
	}
	return fmt.Errorf("failed to save route: %w", err)
}
