package validation

import (
	"errors"
	"fmt"
)

const (
	MinCargoNum      = 1
	MaxCargoNum      = 10
	MinPlacesInCargo = 1
	MaxPlacesInCargo = 25
)

// ErrInvalidSchedule is returned when a journey does not depart before it arrives.
var ErrInvalidSchedule = errors.New("departure_time must be before arrival_time")

type CapacityErrorKind int

const (
	InvalidCargoCount CapacityErrorKind = iota + 1
	InvalidSeatCount
)

// CapacityError reports a train dimension outside the allowed range.
type CapacityError struct {
	Kind  CapacityErrorKind
	Value int
}

func (e *CapacityError) Field() string {
	if e.Kind == InvalidCargoCount {
		return "cargo_num"
	}
	return "places_in_cargo"
}

func (e *CapacityError) Error() string {
	switch e.Kind {
	case InvalidCargoCount:
		return fmt.Sprintf("cargo_num must be between %d and %d, got %d", MinCargoNum, MaxCargoNum, e.Value)
	case InvalidSeatCount:
		return fmt.Sprintf("places_in_cargo must be between %d and %d, got %d", MinPlacesInCargo, MaxPlacesInCargo, e.Value)
	default:
		return "invalid train capacity"
	}
}

type RouteErrorKind int

const (
	SameStation RouteErrorKind = iota + 1
	DuplicateRoute
)

type RouteError struct {
	Kind          RouteErrorKind
	SourceID      int64
	DestinationID int64
}

func (e *RouteError) Error() string {
	switch e.Kind {
	case SameStation:
		return fmt.Sprintf("source and destination must differ (station %d)", e.SourceID)
	case DuplicateRoute:
		return fmt.Sprintf("route from station %d to station %d already exists", e.SourceID, e.DestinationID)
	default:
		return "invalid route"
	}
}

type SeatErrorKind int

const (
	CargoOutOfRange SeatErrorKind = iota + 1
	SeatOutOfRange
	SeatAlreadyTaken
)

// Reason is the machine readable name of the kind, used in API error details.
func (k SeatErrorKind) Reason() string {
	switch k {
	case CargoOutOfRange:
		return "cargo_out_of_range"
	case SeatOutOfRange:
		return "seat_out_of_range"
	case SeatAlreadyTaken:
		return "already_taken"
	default:
		return "invalid_seat"
	}
}

// SeatError reports a ticket position that is outside the train or already booked.
type SeatError struct {
	Kind  SeatErrorKind
	Cargo int
	Seat  int
	// Max is the upper bound that was violated; zero for SeatAlreadyTaken.
	Max int
}

func (e *SeatError) Error() string {
	switch e.Kind {
	case CargoOutOfRange:
		return fmt.Sprintf("cargo must be in range [1, %d], got %d", e.Max, e.Cargo)
	case SeatOutOfRange:
		return fmt.Sprintf("seat must be in range [1, %d], got %d", e.Max, e.Seat)
	case SeatAlreadyTaken:
		return fmt.Sprintf("seat %d in cargo %d is already taken", e.Seat, e.Cargo)
	default:
		return "invalid seat"
	}
}

// IsSeatTaken reports whether err carries a SeatAlreadyTaken SeatError.
func IsSeatTaken(err error) bool {
	var seatErr *SeatError
	return errors.As(err, &seatErr) && seatErr.Kind == SeatAlreadyTaken
}

// ReferenceError is returned when a request names a related record that does not exist.
type ReferenceError struct {
	Field string
	ID    int64
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %d does not exist", e.Field, e.ID)
}

// LayoutError is returned when a train or journey change would leave booked tickets on
// seats that no longer exist.
type LayoutError struct {
	Field         string
	CargoNum      int
	PlacesInCargo int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("booked tickets lie outside a %d x %d layout", e.CargoNum, e.PlacesInCargo)
}
