// Package booking creates orders and their tickets as one atomic unit and serves the
// caller scoped order and ticket reads.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"train-station/internal/auth"
	"train-station/internal/logger"
	"train-station/internal/models"
	"train-station/internal/store"
	"train-station/internal/tickets/qr"
	"train-station/internal/validation"
)

// SeatHolder takes short lived holds on seats before the order transaction starts, so
// that concurrent orders for one seat queue up instead of racing into the database.
// Hold returns the index of the first seat that is already held, or -1.
type SeatHolder interface {
	Hold(ctx context.Context, owner string, seats []models.SeatPosition) (int, error)
	Release(ctx context.Context, owner string, seats []models.SeatPosition) error
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
	PublishOrderDeleted(ctx context.Context, order models.Order) error
}

const (
	defaultHoldWait = 250 * time.Millisecond
	holdRetry       = 25 * time.Millisecond
)

type Service struct {
	db       *store.DB
	holds    SeatHolder
	holdWait time.Duration
	events   Publisher
	qr       *qr.Generator
	log      *logger.Logger
}

// NewService wires the booking core. holds may be nil, in which case only the database
// constraint guards against double booking.
func NewService(db *store.DB, holds SeatHolder, events Publisher, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{db: db, holds: holds, holdWait: defaultHoldWait, events: events, qr: qrGen, log: log}
}

// scope returns the user id reads are restricted to; staff see everything.
func scope(p auth.Principal) string {
	if p.IsStaff {
		return ""
	}
	return p.UserID
}

// ---------------- ORDERS ----------------

// CreateOrder books every requested seat for the caller or none of them.
func (s *Service) CreateOrder(ctx context.Context, p auth.Principal, reqs []TicketRequest) (*models.Order, error) {
	if len(reqs) == 0 {
		return nil, &OrderError{Kind: EmptyOrder}
	}
	if p.UserID == "" {
		return nil, ErrAnonymous
	}

	seats := make([]models.SeatPosition, len(reqs))
	for i, r := range reqs {
		seats[i] = models.SeatPosition{JourneyID: r.JourneyID, Cargo: r.Cargo, Seat: r.Seat}
	}

	// An order that repeats a seat fails inside the transaction anyway, so it skips
	// Redis entirely.
	if s.holds != nil && duplicateSeat(seats) < 0 {
		owner := uuid.NewString()
		held, err := s.hold(ctx, owner, seats)
		switch {
		case err != nil:
			s.log.Warn("BOOKING", fmt.Sprintf("Seat holds unavailable, relying on database constraint: %v", err))
		case held:
			defer s.releaseHolds(owner, seats)
		default:
			s.log.Debug("BOOKING", "Seats still held by another order, relying on database constraint")
		}
	}

	order := &models.Order{UserID: p.UserID, CreatedAt: time.Now().UTC()}
	err := s.db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		trains := map[int64]*models.Train{}
		requested := make(map[models.SeatPosition]struct{}, len(seats))
		order.Tickets = make([]*models.Ticket, 0, len(reqs))
		for i, r := range reqs {
			train, ok := trains[r.JourneyID]
			if !ok {
				j, err := tx.JourneyWithTrain(ctx, r.JourneyID)
				if errors.Is(err, store.ErrNotFound) {
					return &OrderError{Kind: TicketRejected, Index: i, Reason: ErrJourneyNotFound}
				}
				if err != nil {
					return fmt.Errorf("failed to load journey %d: %w", r.JourneyID, err)
				}
				train = j.Train
				trains[r.JourneyID] = train
			}

			if err := validation.ValidateSeat(r.Cargo, r.Seat, train.CargoNum, train.PlacesInCargo); err != nil {
				return &OrderError{Kind: TicketRejected, Index: i, Reason: err}
			}
			if _, ok := requested[seats[i]]; ok {
				return &OrderError{Kind: TicketRejected, Index: i, Reason: &validation.SeatError{
					Kind: validation.SeatAlreadyTaken, Cargo: r.Cargo, Seat: r.Seat,
				}}
			}
			requested[seats[i]] = struct{}{}

			ticket := &models.Ticket{Cargo: r.Cargo, Seat: r.Seat, JourneyID: r.JourneyID, OrderID: order.ID}
			if err := tx.InsertTicket(ctx, ticket); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return &OrderError{Kind: TicketRejected, Index: i, Reason: &validation.SeatError{
						Kind: validation.SeatAlreadyTaken, Cargo: r.Cargo, Seat: r.Seat,
					}}
				}
				return fmt.Errorf("failed to insert ticket %d: %w", i, err)
			}
			order.Tickets = append(order.Tickets, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogOrder("CREATE", order.ID, fmt.Sprintf("user=%s tickets=%d", order.UserID, len(order.Tickets)))
	if err := s.events.PublishOrderCreated(ctx, *order); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish order %d created: %v", order.ID, err))
	}
	return order, nil
}

// duplicateSeat returns the index of the first seat already requested earlier in the
// same order, or -1.
func duplicateSeat(seats []models.SeatPosition) int {
	seen := make(map[models.SeatPosition]struct{}, len(seats))
	for i, seat := range seats {
		if _, ok := seen[seat]; ok {
			return i
		}
		seen[seat] = struct{}{}
	}
	return -1
}

// hold retries until every seat is held or holdWait passes. A hold owned by another
// order only means that order is in flight; it may still roll back, so losing here is
// not a rejection.
func (s *Service) hold(ctx context.Context, owner string, seats []models.SeatPosition) (bool, error) {
	deadline := time.Now().Add(s.holdWait)
	for {
		idx, err := s.holds.Hold(ctx, owner, seats)
		if err != nil {
			return false, err
		}
		if idx < 0 {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(holdRetry):
		}
	}
}

func (s *Service) releaseHolds(owner string, seats []models.SeatPosition) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.holds.Release(ctx, owner, seats); err != nil {
		s.log.Warn("BOOKING", fmt.Sprintf("Failed to release seat holds: %v", err))
	}
}

func (s *Service) ListOrders(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	return s.db.ListOrders(ctx, scope(p))
}

// GetOrder returns store.ErrNotFound for orders the caller may not see.
func (s *Service) GetOrder(ctx context.Context, p auth.Principal, id int64) (*models.Order, error) {
	return s.db.GetOrder(ctx, id, scope(p))
}

// DeleteOrder cancels an order and frees its seats.
func (s *Service) DeleteOrder(ctx context.Context, p auth.Principal, id int64) error {
	var deleted *models.Order
	err := s.db.InTx(ctx, func(ctx context.Context, tx *store.Tx) error {
		o, err := tx.GetOrder(ctx, id, scope(p))
		if err != nil {
			return err
		}
		if err := tx.DeleteOrder(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, err)
		}
		deleted = o
		return nil
	})
	if err != nil {
		return err
	}

	s.log.LogOrder("DELETE", id, fmt.Sprintf("by=%s tickets=%d", p.UserID, len(deleted.Tickets)))
	if err := s.events.PublishOrderDeleted(ctx, *deleted); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish order %d deleted: %v", id, err))
	}
	return nil
}

// ---------------- TICKETS ----------------

// ListTickets returns the caller's tickets, optionally for one journey only.
func (s *Service) ListTickets(ctx context.Context, p auth.Principal, journeyID int64) ([]models.Ticket, error) {
	return s.db.ListTickets(ctx, store.TicketFilter{UserID: scope(p), JourneyID: journeyID})
}

func (s *Service) GetTicket(ctx context.Context, p auth.Principal, id int64) (*models.Ticket, error) {
	return s.db.GetTicket(ctx, id, scope(p))
}

// TicketQR renders the ticket as a PNG QR code.
func (s *Service) TicketQR(ctx context.Context, p auth.Principal, id int64) ([]byte, error) {
	t, err := s.GetTicket(ctx, p, id)
	if err != nil {
		return nil, err
	}
	return s.qr.GenerateEncryptedQR(*t)
}
