package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-station/internal/models"
	"train-station/internal/store"
	"train-station/internal/store/storetest"
)

type fixture struct {
	db       *store.DB
	route    models.Route
	journeys []models.Journey
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db := storetest.NewDB(t)

	tt := models.TrainType{Name: "Regional"}
	require.NoError(t, db.CreateTrainType(ctx, &tt))
	a := models.Station{Name: "Kharkiv"}
	b := models.Station{Name: "Poltava"}
	require.NoError(t, db.CreateStation(ctx, &a))
	require.NoError(t, db.CreateStation(ctx, &b))
	route := models.Route{SourceID: a.ID, DestinationID: b.ID, Distance: 140}
	require.NoError(t, db.CreateRoute(ctx, &route))
	train := models.Train{Name: "R-1", CargoNum: 2, PlacesInCargo: 10, TrainTypeID: tt.ID}
	require.NoError(t, db.CreateTrain(ctx, &train))

	f := fixture{db: db, route: route}
	dep := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		j := models.Journey{RouteID: route.ID, TrainID: train.ID,
			DepartureTime: dep.AddDate(0, 0, i), ArrivalTime: dep.AddDate(0, 0, i).Add(2 * time.Hour)}
		require.NoError(t, db.CreateJourney(ctx, &j))
		f.journeys = append(f.journeys, j)
	}
	return f
}

func (f fixture) book(t *testing.T, at time.Time, journeyID int64, seats ...int) {
	t.Helper()
	ctx := context.Background()
	order := models.Order{UserID: "u", CreatedAt: at}
	require.NoError(t, f.db.InsertOrder(ctx, &order))
	for _, seat := range seats {
		require.NoError(t, f.db.InsertTicket(ctx, &models.Ticket{JourneyID: journeyID, Cargo: 1, Seat: seat, OrderID: order.ID}))
	}
}

func TestJourneyOccupancy(t *testing.T) {
	f := setup(t)
	f.book(t, time.Now(), f.journeys[0].ID, 1, 2, 3, 4, 5)

	occ, err := NewService(f.db).Journey(context.Background(), f.journeys[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 20, occ.Capacity)
	assert.Equal(t, 5, occ.TicketsSold)
	assert.Equal(t, 15, occ.Available)
	assert.InDelta(t, 0.25, occ.OccupancyRate, 1e-9)
	assert.Equal(t, "Kharkiv - Poltava", occ.Route)
}

func TestRouteAnalytics(t *testing.T) {
	f := setup(t)
	f.book(t, time.Now(), f.journeys[0].ID, 1, 2)
	f.book(t, time.Now(), f.journeys[1].ID, 1, 2, 3, 4, 5, 6)

	res, err := NewService(f.db).Route(context.Background(), f.route.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, res.TotalCapacity)
	assert.Equal(t, 8, res.TicketsSold)
	assert.InDelta(t, 0.2, res.OccupancyRate, 1e-9)
	require.Len(t, res.Journeys, 2)
	assert.Equal(t, 2, res.Journeys[0].TicketsSold)
}

func TestSalesByDay(t *testing.T) {
	f := setup(t)
	day1 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	f.book(t, day1, f.journeys[0].ID, 1)
	f.book(t, day1.Add(time.Hour), f.journeys[0].ID, 2, 3)
	f.book(t, day2, f.journeys[1].ID, 1)

	svc := NewService(f.db)
	report, err := svc.Sales(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalOrders)
	assert.Equal(t, 4, report.TotalTicketsSold)
	require.Len(t, report.DailySales, 2)
	assert.Equal(t, DailySalesMetrics{Date: "2026-04-01", Orders: 2, TicketsSold: 3}, report.DailySales[0])

	from := day2.Truncate(24 * time.Hour)
	report, err = svc.Sales(context.Background(), &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalOrders)
}

func TestUnknownJourney(t *testing.T) {
	f := setup(t)
	_, err := NewService(f.db).Journey(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
