package store

import (
	"context"
	"time"

	"train-station/internal/models"
)

// OrdersBetween returns orders with their tickets created in [from, to), oldest first.
// Either bound may be nil.
func (q Queries) OrdersBetween(ctx context.Context, from, to *time.Time) ([]models.Order, error) {
	orders := []models.Order{}
	query := q.db.NewSelect().
		Model(&orders).
		Relation("Tickets", ticketsByID)
	if from != nil {
		query = query.Where("o.created_at >= ?", from.UTC())
	}
	if to != nil {
		query = query.Where("o.created_at < ?", to.UTC())
	}
	err := query.Order("o.created_at ASC", "o.id ASC").Scan(ctx)
	return orders, translate(err)
}
