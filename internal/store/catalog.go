package store

import (
	"context"

	"github.com/uptrace/bun"

	"train-station/internal/models"
)

// ---------------- TRAIN TYPES ----------------

func (q Queries) CreateTrainType(ctx context.Context, tt *models.TrainType) error {
	_, err := q.db.NewInsert().Model(tt).Exec(ctx)
	return translate(err)
}

func (q Queries) GetTrainType(ctx context.Context, id int64) (*models.TrainType, error) {
	var tt models.TrainType
	err := q.db.NewSelect().Model(&tt).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &tt, nil
}

func (q Queries) ListTrainTypes(ctx context.Context) ([]models.TrainType, error) {
	types := []models.TrainType{}
	err := q.db.NewSelect().Model(&types).Order("id ASC").Scan(ctx)
	return types, translate(err)
}

func (q Queries) UpdateTrainType(ctx context.Context, tt *models.TrainType) error {
	res, err := q.db.NewUpdate().Model(tt).Column("name").WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteTrainType(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.TrainType)(nil), id,
		reference{(*models.Train)(nil), "train_type_id"})
}

func (q Queries) TrainTypeExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, (*models.TrainType)(nil), id)
}

// ---------------- STATIONS ----------------

func (q Queries) CreateStation(ctx context.Context, s *models.Station) error {
	_, err := q.db.NewInsert().Model(s).Exec(ctx)
	return translate(err)
}

func (q Queries) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	var s models.Station
	err := q.db.NewSelect().Model(&s).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (q Queries) ListStations(ctx context.Context) ([]models.Station, error) {
	stations := []models.Station{}
	err := q.db.NewSelect().Model(&stations).Order("id ASC").Scan(ctx)
	return stations, translate(err)
}

func (q Queries) UpdateStation(ctx context.Context, s *models.Station) error {
	res, err := q.db.NewUpdate().Model(s).Column("name", "latitude", "longitude").WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteStation(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.Station)(nil), id,
		reference{(*models.Route)(nil), "source_id"},
		reference{(*models.Route)(nil), "destination_id"})
}

func (q Queries) StationExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, (*models.Station)(nil), id)
}

// ---------------- CREWS ----------------

func (q Queries) CreateCrew(ctx context.Context, c *models.Crew) error {
	_, err := q.db.NewInsert().Model(c).Exec(ctx)
	return translate(err)
}

func (q Queries) GetCrew(ctx context.Context, id int64) (*models.Crew, error) {
	var c models.Crew
	err := q.db.NewSelect().Model(&c).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (q Queries) ListCrews(ctx context.Context) ([]models.Crew, error) {
	crews := []models.Crew{}
	err := q.db.NewSelect().Model(&crews).Order("id ASC").Scan(ctx)
	return crews, translate(err)
}

func (q Queries) UpdateCrew(ctx context.Context, c *models.Crew) error {
	res, err := q.db.NewUpdate().Model(c).Column("first_name", "last_name").WherePK().Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteCrew(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.Crew)(nil), id)
}

// ---------------- TRAINS ----------------

// TrainFilter narrows ListTrains; empty fields match everything.
type TrainFilter struct {
	Name      string
	TrainType string
}

func (q Queries) CreateTrain(ctx context.Context, t *models.Train) error {
	_, err := q.db.NewInsert().Model(t).Exec(ctx)
	return translate(err)
}

func (q Queries) GetTrain(ctx context.Context, id int64) (*models.Train, error) {
	var t models.Train
	err := q.db.NewSelect().
		Model(&t).
		Relation("TrainType").
		Where("train.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (q Queries) ListTrains(ctx context.Context, f TrainFilter) ([]models.Train, error) {
	trains := []models.Train{}
	query := q.db.NewSelect().Model(&trains).Relation("TrainType")
	if f.Name != "" {
		query = query.Where("LOWER(train.name) LIKE ?", containsPattern(f.Name))
	}
	if f.TrainType != "" {
		query = query.Where("LOWER(train_type.name) LIKE ?", containsPattern(f.TrainType))
	}
	err := query.Order("train.id ASC").Scan(ctx)
	return trains, translate(err)
}

func (q Queries) UpdateTrain(ctx context.Context, t *models.Train) error {
	res, err := q.db.NewUpdate().
		Model(t).
		Column("name", "cargo_num", "places_in_cargo", "train_type_id").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteTrain(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.Train)(nil), id,
		reference{(*models.Journey)(nil), "train_id"})
}

func (q Queries) TrainExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, (*models.Train)(nil), id)
}

// ---------------- ROUTES ----------------

// RouteFilter narrows ListRoutes by station name; both filters combine.
type RouteFilter struct {
	Source      string
	Destination string
}

func (q Queries) CreateRoute(ctx context.Context, r *models.Route) error {
	_, err := q.db.NewInsert().Model(r).Exec(ctx)
	return translate(err)
}

func (q Queries) GetRoute(ctx context.Context, id int64) (*models.Route, error) {
	var r models.Route
	err := q.routeQuery(&r).Where("route.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (q Queries) ListRoutes(ctx context.Context, f RouteFilter) ([]models.Route, error) {
	routes := []models.Route{}
	query := q.routeQuery(&routes)
	if f.Source != "" {
		query = query.Where("LOWER(source.name) LIKE ?", containsPattern(f.Source))
	}
	if f.Destination != "" {
		query = query.Where("LOWER(destination.name) LIKE ?", containsPattern(f.Destination))
	}
	err := query.Order("route.id ASC").Scan(ctx)
	return routes, translate(err)
}

func (q Queries) routeQuery(model interface{}) *bun.SelectQuery {
	return q.db.NewSelect().
		Model(model).
		Relation("Source").
		Relation("Destination")
}

func (q Queries) UpdateRoute(ctx context.Context, r *models.Route) error {
	res, err := q.db.NewUpdate().
		Model(r).
		Column("source_id", "destination_id", "distance").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteRoute(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.Route)(nil), id,
		reference{(*models.Journey)(nil), "route_id"})
}

func (q Queries) RouteExists(ctx context.Context, id int64) (bool, error) {
	return q.exists(ctx, (*models.Route)(nil), id)
}
