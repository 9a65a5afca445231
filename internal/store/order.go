package store

import (
	"context"

	"github.com/uptrace/bun"

	"train-station/internal/models"
)

// ---------------- ORDERS ----------------

// InsertOrder writes the order row only; tickets are inserted one by one with InsertTicket.
func (q Queries) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := q.db.NewInsert().Model(o).Exec(ctx)
	return translate(err)
}

// InsertTicket returns an ErrConflict wrapped error when (cargo, seat, journey) is taken.
func (q Queries) InsertTicket(ctx context.Context, t *models.Ticket) error {
	_, err := q.db.NewInsert().Model(t).Exec(ctx)
	return translate(err)
}

func ticketsByID(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("ticket.id ASC")
}

// GetOrder fetches one order with its tickets. A non-empty userID restricts the lookup
// to orders owned by that user.
func (q Queries) GetOrder(ctx context.Context, id int64, userID string) (*models.Order, error) {
	var o models.Order
	query := q.db.NewSelect().
		Model(&o).
		Relation("Tickets", ticketsByID).
		Where("o.id = ?", id)
	if userID != "" {
		query = query.Where("o.user_id = ?", userID)
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// ListOrders returns orders newest first; an empty userID lists every user's orders.
func (q Queries) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	query := q.db.NewSelect().
		Model(&orders).
		Relation("Tickets", ticketsByID)
	if userID != "" {
		query = query.Where("o.user_id = ?", userID)
	}
	err := query.Order("o.created_at DESC", "o.id DESC").Scan(ctx)
	return orders, translate(err)
}

// DeleteOrder removes the order and the tickets it owns. Callers run it inside InTx.
func (q Queries) DeleteOrder(ctx context.Context, id int64) error {
	_, err := q.db.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("order_id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	res, err := q.db.NewDelete().
		Model((*models.Order)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

func (q Queries) CountOrders(ctx context.Context) (int, error) {
	n, err := q.db.NewSelect().Model((*models.Order)(nil)).Count(ctx)
	return n, translate(err)
}

// ---------------- TICKETS ----------------

// TicketFilter scopes ticket reads. UserID restricts to tickets of that user's orders.
type TicketFilter struct {
	UserID    string
	JourneyID int64
}

func (q Queries) ticketQuery(model interface{}, userID string) *bun.SelectQuery {
	query := q.db.NewSelect().
		Model(model).
		Relation("Journey").
		Relation("Journey.Route").
		Relation("Journey.Route.Source").
		Relation("Journey.Route.Destination")
	if userID != "" {
		query = query.
			Join("JOIN orders AS owner ON owner.id = ticket.order_id").
			Where("owner.user_id = ?", userID)
	}
	return query
}

func (q Queries) GetTicket(ctx context.Context, id int64, userID string) (*models.Ticket, error) {
	var t models.Ticket
	err := q.ticketQuery(&t, userID).Where("ticket.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (q Queries) ListTickets(ctx context.Context, f TicketFilter) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	query := q.ticketQuery(&tickets, f.UserID)
	if f.JourneyID != 0 {
		query = query.Where("ticket.journey_id = ?", f.JourneyID)
	}
	err := query.Order("ticket.id ASC").Scan(ctx)
	return tickets, translate(err)
}

func (q Queries) CountAllTickets(ctx context.Context) (int, error) {
	n, err := q.db.NewSelect().Model((*models.Ticket)(nil)).Count(ctx)
	return n, translate(err)
}
