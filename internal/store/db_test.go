package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"train-station/internal/models"
	"train-station/internal/store"
	"train-station/internal/store/storetest"
)

type fixture struct {
	trainType models.TrainType
	kyiv      models.Station
	lviv      models.Station
	train     models.Train
	route     models.Route
	journey   models.Journey
}

func seed(t *testing.T, db *store.DB) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture

	f.trainType = models.TrainType{Name: "Intercity"}
	require.NoError(t, db.CreateTrainType(ctx, &f.trainType))

	f.kyiv = models.Station{Name: "Kyiv"}
	f.lviv = models.Station{Name: "Lviv"}
	require.NoError(t, db.CreateStation(ctx, &f.kyiv))
	require.NoError(t, db.CreateStation(ctx, &f.lviv))

	f.train = models.Train{Name: "Hyundai 715", CargoNum: 4, PlacesInCargo: 25, TrainTypeID: f.trainType.ID}
	require.NoError(t, db.CreateTrain(ctx, &f.train))

	f.route = models.Route{SourceID: f.kyiv.ID, DestinationID: f.lviv.ID, Distance: 540}
	require.NoError(t, db.CreateRoute(ctx, &f.route))

	departure := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)
	f.journey = models.Journey{
		RouteID:       f.route.ID,
		TrainID:       f.train.ID,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(5 * time.Hour),
	}
	require.NoError(t, db.CreateJourney(ctx, &f.journey))
	return f
}

func TestCreateAndGetTrain(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)

	train, err := db.GetTrain(context.Background(), f.train.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hyundai 715", train.Name)
	require.NotNil(t, train.TrainType)
	assert.Equal(t, "Intercity", train.TrainType.Name)
	assert.Equal(t, 100, train.Capacity())

	_, err = db.GetTrain(context.Background(), 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListTrainsFilters(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	regional := models.TrainType{Name: "Regional"}
	require.NoError(t, db.CreateTrainType(ctx, &regional))
	require.NoError(t, db.CreateTrain(ctx, &models.Train{Name: "Dnipro Express", CargoNum: 2, PlacesInCargo: 20, TrainTypeID: regional.ID}))

	all, err := db.ListTrains(ctx, store.TrainFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := db.ListTrains(ctx, store.TrainFilter{Name: "hyundai"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, f.train.ID, byName[0].ID)

	byType, err := db.ListTrains(ctx, store.TrainFilter{TrainType: "REGION"})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "Dnipro Express", byType[0].Name)
}

func TestDuplicateStationNameConflicts(t *testing.T) {
	db := storetest.NewDB(t)
	seed(t, db)

	err := db.CreateStation(context.Background(), &models.Station{Name: "Kyiv"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestDuplicateRouteConflicts(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)

	err := db.CreateRoute(context.Background(), &models.Route{SourceID: f.kyiv.ID, DestinationID: f.lviv.ID, Distance: 10})
	assert.ErrorIs(t, err, store.ErrConflict)

	// the reverse direction is a different route
	err = db.CreateRoute(context.Background(), &models.Route{SourceID: f.lviv.ID, DestinationID: f.kyiv.ID, Distance: 540})
	assert.NoError(t, err)
}

func TestListRoutesByStationName(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	odesa := models.Station{Name: "Odesa"}
	require.NoError(t, db.CreateStation(ctx, &odesa))
	require.NoError(t, db.CreateRoute(ctx, &models.Route{SourceID: odesa.ID, DestinationID: f.lviv.ID, Distance: 790}))

	routes, err := db.ListRoutes(ctx, store.RouteFilter{Destination: "lviv"})
	require.NoError(t, err)
	assert.Len(t, routes, 2)

	routes, err = db.ListRoutes(ctx, store.RouteFilter{Source: "kyiv", Destination: "lviv"})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Kyiv - Lviv", routes[0].Label())
}

func TestTicketSeatIsUniquePerJourney(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	order := models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.InsertOrder(ctx, &order))

	require.NoError(t, db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 1, JourneyID: f.journey.ID, OrderID: order.ID}))
	err := db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 1, JourneyID: f.journey.ID, OrderID: order.ID})
	assert.ErrorIs(t, err, store.ErrConflict)

	// same seat on another journey is fine
	other := f.journey
	other.ID = 0
	other.DepartureTime = other.DepartureTime.Add(24 * time.Hour)
	other.ArrivalTime = other.ArrivalTime.Add(24 * time.Hour)
	require.NoError(t, db.CreateJourney(ctx, &other))
	assert.NoError(t, db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 1, JourneyID: other.ID, OrderID: order.ID}))
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		order := models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}
		if err := tx.InsertTicket(ctx, &models.Ticket{Cargo: 2, Seat: 3, JourneyID: f.journey.ID, OrderID: order.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := db.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, orders)
	tickets, err := db.CountAllTickets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, tickets)
}

func TestOrderReadsAndScoping(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	mine := models.Order{UserID: "alice", CreatedAt: time.Now().UTC()}
	theirs := models.Order{UserID: "bob", CreatedAt: time.Now().UTC().Add(time.Second)}
	require.NoError(t, db.InsertOrder(ctx, &mine))
	require.NoError(t, db.InsertOrder(ctx, &theirs))
	require.NoError(t, db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 2, JourneyID: f.journey.ID, OrderID: mine.ID}))
	require.NoError(t, db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 1, JourneyID: f.journey.ID, OrderID: mine.ID}))
	require.NoError(t, db.InsertTicket(ctx, &models.Ticket{Cargo: 3, Seat: 7, JourneyID: f.journey.ID, OrderID: theirs.ID}))

	all, err := db.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, theirs.ID, all[0].ID, "newest first")

	own, err := db.ListOrders(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Len(t, own[0].Tickets, 2)
	assert.Equal(t, 2, own[0].Tickets[0].Seat, "tickets keep insertion order")
	assert.Equal(t, 1, own[0].Tickets[1].Seat)

	_, err = db.GetOrder(ctx, theirs.ID, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	tickets, err := db.ListTickets(ctx, store.TicketFilter{UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.NotNil(t, tickets[0].Journey)
	require.NotNil(t, tickets[0].Journey.Route)
	assert.Equal(t, "Kyiv - Lviv", tickets[0].Journey.Route.Label())

	loads, err := db.JourneyLoads(ctx, []int64{f.journey.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, loads[f.journey.ID])

	require.NoError(t, db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.DeleteOrder(ctx, mine.ID)
	}))
	n, err := db.CountTickets(ctx, f.journey.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	assert.ErrorIs(t, db.DeleteStation(ctx, f.kyiv.ID), store.ErrConflict)
	assert.ErrorIs(t, db.DeleteTrain(ctx, f.train.ID), store.ErrConflict)
	assert.ErrorIs(t, db.DeleteTrainType(ctx, f.trainType.ID), store.ErrConflict)

	require.NoError(t, db.DeleteJourney(ctx, f.journey.ID))
	require.NoError(t, db.DeleteRoute(ctx, f.route.ID))
	assert.NoError(t, db.DeleteStation(ctx, f.kyiv.ID))
	assert.ErrorIs(t, db.DeleteStation(ctx, f.kyiv.ID), store.ErrNotFound)
}

func TestTicketNeedsExistingJourney(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	order := models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.InsertOrder(ctx, &order))
	err := db.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: 1, JourneyID: f.journey.ID + 100, OrderID: order.ID})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteJourneyRacingOrdersLeavesNoOrphans(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		deleteErr error
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(seat int) {
			defer wg.Done()
			_ = db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
				order := models.Order{UserID: "user-1", CreatedAt: time.Now().UTC()}
				if err := tx.InsertOrder(ctx, &order); err != nil {
					return err
				}
				return tx.InsertTicket(ctx, &models.Ticket{Cargo: 1, Seat: seat, JourneyID: f.journey.ID, OrderID: order.ID})
			})
		}(i + 1)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		deleteErr = db.DeleteJourney(ctx, f.journey.ID)
	}()
	wg.Wait()

	tickets, err := db.CountTickets(ctx, f.journey.ID)
	require.NoError(t, err)
	_, getErr := db.GetJourney(ctx, f.journey.ID)
	if deleteErr == nil {
		assert.ErrorIs(t, getErr, store.ErrNotFound)
		assert.Zero(t, tickets)
	} else {
		assert.ErrorIs(t, deleteErr, store.ErrConflict)
		assert.NoError(t, getErr)
		assert.Positive(t, tickets)
	}
}

func TestListJourneysByDate(t *testing.T) {
	db := storetest.NewDB(t)
	f := seed(t, db)
	ctx := context.Background()

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	found, err := db.ListJourneys(ctx, store.JourneyFilter{DepartureDate: &day})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, f.journey.ID, found[0].ID)
	require.NotNil(t, found[0].Train)
	assert.Equal(t, "Intercity", found[0].Train.TrainType.Name)

	next := day.Add(24 * time.Hour)
	found, err = db.ListJourneys(ctx, store.JourneyFilter{DepartureDate: &next})
	require.NoError(t, err)
	assert.Empty(t, found)
}
