package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"train-station/internal/models"
)

// JourneyFilter narrows ListJourneys. Dates match the whole UTC calendar day.
type JourneyFilter struct {
	DepartureDate *time.Time
	ArrivalDate   *time.Time
	RouteID       int64
	TrainID       int64
}

func (q Queries) CreateJourney(ctx context.Context, j *models.Journey) error {
	_, err := q.db.NewInsert().Model(j).Exec(ctx)
	return translate(err)
}

func (q Queries) journeyQuery(model interface{}) *bun.SelectQuery {
	return q.db.NewSelect().
		Model(model).
		Relation("Route").
		Relation("Route.Source").
		Relation("Route.Destination").
		Relation("Train").
		Relation("Train.TrainType")
}

// GetJourney loads a journey with its route stations and train.
func (q Queries) GetJourney(ctx context.Context, id int64) (*models.Journey, error) {
	var j models.Journey
	err := q.journeyQuery(&j).Where("journey.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

// JourneyWithTrain loads only the journey and its train, which is all seat validation needs.
// On Postgres both rows are read FOR SHARE, so a concurrent layout change waits for the
// caller's transaction and then sees its tickets.
func (q Queries) JourneyWithTrain(ctx context.Context, id int64) (*models.Journey, error) {
	var j models.Journey
	err := q.forShare(q.db.NewSelect().Model(&j).Where("journey.id = ?", id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	var t models.Train
	err = q.forShare(q.db.NewSelect().Model(&t).Where("train.id = ?", j.TrainID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	j.Train = &t
	return &j, nil
}

func (q Queries) ListJourneys(ctx context.Context, f JourneyFilter) ([]models.Journey, error) {
	journeys := []models.Journey{}
	query := q.journeyQuery(&journeys)
	if f.DepartureDate != nil {
		from := dayStart(*f.DepartureDate)
		query = query.Where("journey.departure_time >= ?", from).
			Where("journey.departure_time < ?", from.Add(24*time.Hour))
	}
	if f.ArrivalDate != nil {
		from := dayStart(*f.ArrivalDate)
		query = query.Where("journey.arrival_time >= ?", from).
			Where("journey.arrival_time < ?", from.Add(24*time.Hour))
	}
	if f.RouteID != 0 {
		query = query.Where("journey.route_id = ?", f.RouteID)
	}
	if f.TrainID != 0 {
		query = query.Where("journey.train_id = ?", f.TrainID)
	}
	err := query.Order("journey.departure_time ASC", "journey.id ASC").Scan(ctx)
	return journeys, translate(err)
}

func (q Queries) UpdateJourney(ctx context.Context, j *models.Journey) error {
	res, err := q.db.NewUpdate().
		Model(j).
		Column("route_id", "train_id", "departure_time", "arrival_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) DeleteJourney(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, (*models.Journey)(nil), id,
		reference{(*models.Ticket)(nil), "journey_id"})
}

// CountTickets returns how many tickets are booked on a journey.
func (q Queries) CountTickets(ctx context.Context, journeyID int64) (int, error) {
	n, err := q.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("journey_id = ?", journeyID).
		Count(ctx)
	return n, translate(err)
}

// TakenSeats returns the booked tickets of a journey with only cargo and seat filled in.
func (q Queries) TakenSeats(ctx context.Context, journeyID int64) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := q.db.NewSelect().
		Model(&tickets).
		Column("cargo", "seat").
		Where("ticket.journey_id = ?", journeyID).
		Order("ticket.cargo ASC", "ticket.seat ASC").
		Scan(ctx)
	return tickets, translate(err)
}

// JourneyHasSeatsOutside reports whether a ticket booked on the journey lies beyond
// cargoNum cargos or placesInCargo seats.
func (q Queries) JourneyHasSeatsOutside(ctx context.Context, journeyID int64, cargoNum, placesInCargo int) (bool, error) {
	return q.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("ticket.journey_id = ?", journeyID).
		WhereGroup(" AND ", outsideLayout(cargoNum, placesInCargo)).
		Exists(ctx)
}

// TrainHasSeatsOutside is JourneyHasSeatsOutside over every journey of the train.
func (q Queries) TrainHasSeatsOutside(ctx context.Context, trainID int64, cargoNum, placesInCargo int) (bool, error) {
	return q.db.NewSelect().
		Model((*models.Ticket)(nil)).
		Join("JOIN journeys AS layout_journey ON layout_journey.id = ticket.journey_id").
		Where("layout_journey.train_id = ?", trainID).
		WhereGroup(" AND ", outsideLayout(cargoNum, placesInCargo)).
		Exists(ctx)
}

func outsideLayout(cargoNum, placesInCargo int) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("ticket.cargo > ?", cargoNum).WhereOr("ticket.seat > ?", placesInCargo)
	}
}

// JourneyLoads counts booked tickets for several journeys in one query.
// Journeys without tickets are absent from the result.
func (q Queries) JourneyLoads(ctx context.Context, journeyIDs []int64) (map[int64]int, error) {
	loads := map[int64]int{}
	if len(journeyIDs) == 0 {
		return loads, nil
	}
	var rows []models.JourneyLoad
	err := q.db.NewSelect().
		Model((*models.Ticket)(nil)).
		ColumnExpr("ticket.journey_id AS journey_id").
		ColumnExpr("COUNT(*) AS booked").
		Where("ticket.journey_id IN (?)", bun.In(journeyIDs)).
		GroupExpr("ticket.journey_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		loads[row.JourneyID] = row.Booked
	}
	return loads, nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
