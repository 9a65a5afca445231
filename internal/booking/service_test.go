package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"train-station/internal/auth"
	bookingredis "train-station/internal/booking/redis"
	"train-station/internal/logger"
	"train-station/internal/models"
	"train-station/internal/store"
	"train-station/internal/store/storetest"
	"train-station/internal/tickets/qr"
	"train-station/internal/validation"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	return m.Called(order.ID).Error(0)
}

func (m *mockPublisher) PublishOrderDeleted(ctx context.Context, order models.Order) error {
	return m.Called(order.ID).Error(0)
}

var (
	alice = auth.Principal{UserID: "alice"}
	bob   = auth.Principal{UserID: "bob"}
	staff = auth.Principal{UserID: "admin", IsStaff: true}
)

type env struct {
	db      *store.DB
	svc     *Service
	events  *mockPublisher
	journey models.Journey
}

func setup(t *testing.T, holds SeatHolder) env {
	t.Helper()
	ctx := context.Background()
	db := storetest.NewDB(t)

	tt := models.TrainType{Name: "Intercity"}
	require.NoError(t, db.CreateTrainType(ctx, &tt))
	kyiv := models.Station{Name: "Kyiv"}
	lviv := models.Station{Name: "Lviv"}
	require.NoError(t, db.CreateStation(ctx, &kyiv))
	require.NoError(t, db.CreateStation(ctx, &lviv))
	route := models.Route{SourceID: kyiv.ID, DestinationID: lviv.ID, Distance: 540}
	require.NoError(t, db.CreateRoute(ctx, &route))
	train := models.Train{Name: "IC 743", CargoNum: 4, PlacesInCargo: 25, TrainTypeID: tt.ID}
	require.NoError(t, db.CreateTrain(ctx, &train))
	dep := time.Date(2026, 7, 1, 6, 0, 0, 0, time.UTC)
	journey := models.Journey{RouteID: route.ID, TrainID: train.ID, DepartureTime: dep, ArrivalTime: dep.Add(5 * time.Hour)}
	require.NoError(t, db.CreateJourney(ctx, &journey))

	events := &mockPublisher{}
	events.On("PublishOrderCreated", mock.Anything).Return(nil).Maybe()
	events.On("PublishOrderDeleted", mock.Anything).Return(nil).Maybe()

	svc := NewService(db, holds, events, qr.NewGenerator("test"), logger.Discard())
	return env{db: db, svc: svc, events: events, journey: journey}
}

func (e env) counts(t *testing.T) (orders, tickets int) {
	t.Helper()
	orders, err := e.db.CountOrders(context.Background())
	require.NoError(t, err)
	tickets, err = e.db.CountAllTickets(context.Background())
	require.NoError(t, err)
	return orders, tickets
}

func assertRejected(t *testing.T, err error, index int, kind validation.SeatErrorKind) {
	t.Helper()
	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, TicketRejected, orderErr.Kind)
	assert.Equal(t, index, orderErr.Index)
	var seatErr *validation.SeatError
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, kind, seatErr.Kind)
}

func TestCreateOrderRoundTrip(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	order, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 1},
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", order.UserID)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Tickets, 2)

	stored, err := e.svc.GetOrder(ctx, alice, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tickets, 2)
	assert.Equal(t, 1, stored.Tickets[0].Seat)
	assert.Equal(t, 2, stored.Tickets[1].Seat)
	for _, ticket := range stored.Tickets {
		assert.Equal(t, order.ID, ticket.OrderID)
		assert.Equal(t, e.journey.ID, ticket.JourneyID)
	}

	e.events.AssertCalled(t, "PublishOrderCreated", order.ID)
}

func TestCreateOrderIsAtomic(t *testing.T) {
	e := setup(t, nil)

	_, err := e.svc.CreateOrder(context.Background(), alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 1},
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 1},
	})
	assertRejected(t, err, 1, validation.SeatAlreadyTaken)

	orders, tickets := e.counts(t)
	assert.Equal(t, 0, orders)
	assert.Equal(t, 0, tickets)
	e.events.AssertNotCalled(t, "PublishOrderCreated", mock.Anything)
}

func TestCreateOrderRejectsOutOfRangeSeat(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	_, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 1},
		{JourneyID: e.journey.ID, Cargo: 5, Seat: 1},
	})
	assertRejected(t, err, 1, validation.CargoOutOfRange)

	_, err = e.svc.CreateOrder(ctx, alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 2, Seat: 26},
	})
	assertRejected(t, err, 0, validation.SeatOutOfRange)

	orders, tickets := e.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, tickets)
}

func TestCreateOrderUnknownJourney(t *testing.T) {
	e := setup(t, nil)

	_, err := e.svc.CreateOrder(context.Background(), alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 1, Seat: 1},
		{JourneyID: 999, Cargo: 1, Seat: 1},
	})
	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 1, orderErr.Index)
	assert.ErrorIs(t, err, ErrJourneyNotFound)
}

func TestCreateOrderEmpty(t *testing.T) {
	e := setup(t, nil)

	_, err := e.svc.CreateOrder(context.Background(), alice, nil)
	var orderErr *OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, EmptyOrder, orderErr.Kind)

	_, err = e.svc.CreateOrder(context.Background(), auth.Principal{}, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	assert.ErrorIs(t, err, ErrAnonymous)
}

func TestSeatTakenByEarlierOrder(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	_, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 3, Seat: 7}})
	require.NoError(t, err)

	_, err = e.svc.CreateOrder(ctx, bob, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 3, Seat: 8},
		{JourneyID: e.journey.ID, Cargo: 3, Seat: 7},
	})
	assertRejected(t, err, 1, validation.SeatAlreadyTaken)

	orders, tickets := e.counts(t)
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, tickets)
}

func TestConcurrentOrdersForOneSeat(t *testing.T) {
	e := setup(t, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []auth.Principal{alice, bob} {
		wg.Add(1)
		go func(i int, p auth.Principal) {
			defer wg.Done()
			_, errs[i] = e.svc.CreateOrder(context.Background(), p, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
		}(i, p)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, validation.IsSeatTaken(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	_, tickets := e.counts(t)
	assert.Equal(t, 1, tickets)
}

func TestForeignSeatHoldDefersToDatabase(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client, err := bookingredis.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	e := setup(t, bookingredis.NewSeatHolds(client, time.Minute, logger.Discard()))
	e.svc.holdWait = 50 * time.Millisecond
	ctx := context.Background()

	// a hold left by an order that never committed
	require.NoError(t, mr.Set("seat_hold:1:1:1", "someone-else"))

	order, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	require.NoError(t, err)
	assert.Len(t, order.Tickets, 1)
	assert.True(t, mr.Exists("seat_hold:1:1:1"), "foreign holds stay")

	_, err = e.svc.CreateOrder(ctx, bob, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	assertRejected(t, err, 0, validation.SeatAlreadyTaken)

	require.NoError(t, mr.Set("seat_hold:1:2:2", "someone-else"))
	order, err = e.svc.CreateOrder(ctx, alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 2, Seat: 1},
		{JourneyID: e.journey.ID, Cargo: 2, Seat: 2},
	})
	require.NoError(t, err)
	assert.Len(t, order.Tickets, 2)
	assert.False(t, mr.Exists("seat_hold:1:2:1"), "partial holds are released")

	orders, tickets := e.counts(t)
	assert.Equal(t, 2, orders)
	assert.Equal(t, 3, tickets)
}

func TestRepeatedSeatSkipsHolds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client, err := bookingredis.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	e := setup(t, bookingredis.NewSeatHolds(client, time.Minute, logger.Discard()))
	_, err = e.svc.CreateOrder(context.Background(), alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 3, Seat: 3},
		{JourneyID: e.journey.ID, Cargo: 3, Seat: 3},
	})
	assertRejected(t, err, 1, validation.SeatAlreadyTaken)
	assert.Empty(t, mr.Keys())

	orders, tickets := e.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, tickets)
}

func TestSeatHoldOutageFallsBackToDatabase(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client, err := bookingredis.Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	defer client.Close()
	mr.Close()

	e := setup(t, bookingredis.NewSeatHolds(client, time.Minute, logger.Discard()))
	_, err = e.svc.CreateOrder(context.Background(), alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	assert.NoError(t, err)
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	e := setup(t, nil)
	events := &mockPublisher{}
	events.On("PublishOrderCreated", mock.Anything).Return(errors.New("broker down"))
	e.svc.events = events

	order, err := e.svc.CreateOrder(context.Background(), alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	events.AssertExpectations(t)
}

func TestOrderScoping(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	mine, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 1}})
	require.NoError(t, err)
	theirs, err := e.svc.CreateOrder(ctx, bob, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 2}})
	require.NoError(t, err)

	own, err := e.svc.ListOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := e.svc.ListOrders(ctx, staff)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = e.svc.GetOrder(ctx, alice, theirs.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = e.svc.GetOrder(ctx, staff, theirs.ID)
	assert.NoError(t, err)

	tickets, err := e.svc.ListTickets(ctx, alice, 0)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, mine.ID, tickets[0].OrderID)

	_, err = e.svc.GetTicket(ctx, alice, theirs.Tickets[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = e.svc.DeleteOrder(ctx, alice, theirs.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteOrderFreesSeats(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	order, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{
		{JourneyID: e.journey.ID, Cargo: 4, Seat: 25},
		{JourneyID: e.journey.ID, Cargo: 4, Seat: 24},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteOrder(ctx, alice, order.ID))
	orders, tickets := e.counts(t)
	assert.Zero(t, orders)
	assert.Zero(t, tickets)
	e.events.AssertCalled(t, "PublishOrderDeleted", order.ID)

	_, err = e.svc.CreateOrder(ctx, bob, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 4, Seat: 25}})
	assert.NoError(t, err)
}

func TestTicketQR(t *testing.T) {
	e := setup(t, nil)
	ctx := context.Background()

	order, err := e.svc.CreateOrder(ctx, alice, []TicketRequest{{JourneyID: e.journey.ID, Cargo: 1, Seat: 3}})
	require.NoError(t, err)

	png, err := e.svc.TicketQR(ctx, alice, order.Tickets[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = e.svc.TicketQR(ctx, bob, order.Tickets[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
