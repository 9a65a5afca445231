package booking

import (
	"errors"
	"fmt"
)

var (
	ErrJourneyNotFound = errors.New("journey does not exist")
	ErrAnonymous       = errors.New("orders require an authenticated user")
)

type OrderErrorKind int

const (
	EmptyOrder OrderErrorKind = iota + 1
	TicketRejected
)

// OrderError explains why an order was refused. For TicketRejected, Index is the position
// of the offending ticket in the request and Reason the underlying validation error.
type OrderError struct {
	Kind   OrderErrorKind
	Index  int
	Reason error
}

func (e *OrderError) Error() string {
	switch e.Kind {
	case EmptyOrder:
		return "order must contain at least one ticket"
	case TicketRejected:
		return fmt.Sprintf("ticket %d rejected: %v", e.Index, e.Reason)
	default:
		return "order rejected"
	}
}

func (e *OrderError) Unwrap() error {
	return e.Reason
}
