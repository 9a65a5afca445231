package kafka

import (
	"time"

	"github.com/google/uuid"

	"train-station/internal/models"
)

const (
	EventOrderCreated = "order.created"
	EventOrderDeleted = "order.deleted"
)

// OrderEvent is the message value published for order lifecycle changes.
type OrderEvent struct {
	EventID    string       `json:"event_id"`
	Type       string       `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      models.Order `json:"order"`
}

func NewOrderEvent(eventType string, order models.Order) OrderEvent {
	return OrderEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Order:      order,
	}
}
