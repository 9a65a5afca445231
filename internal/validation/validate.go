// Package validation holds the store independent checks run before anything is persisted.
package validation

import "time"

// ValidateTrain checks the physical dimensions of a train.
func ValidateTrain(cargoNum, placesInCargo int) error {
	if cargoNum < MinCargoNum || cargoNum > MaxCargoNum {
		return &CapacityError{Kind: InvalidCargoCount, Value: cargoNum}
	}
	if placesInCargo < MinPlacesInCargo || placesInCargo > MaxPlacesInCargo {
		return &CapacityError{Kind: InvalidSeatCount, Value: placesInCargo}
	}
	return nil
}

// ValidateRoute rejects routes that start and end at the same station.
// Duplicate routes are caught by the storage constraint, not here.
func ValidateRoute(sourceID, destinationID int64) error {
	if sourceID == destinationID {
		return &RouteError{Kind: SameStation, SourceID: sourceID, DestinationID: destinationID}
	}
	return nil
}

// ValidateSeat checks that (cargo, seat) exists on a train with the given dimensions.
func ValidateSeat(cargo, seat, trainCargoNum, trainPlacesInCargo int) error {
	if cargo < 1 || cargo > trainCargoNum {
		return &SeatError{Kind: CargoOutOfRange, Cargo: cargo, Seat: seat, Max: trainCargoNum}
	}
	if seat < 1 || seat > trainPlacesInCargo {
		return &SeatError{Kind: SeatOutOfRange, Cargo: cargo, Seat: seat, Max: trainPlacesInCargo}
	}
	return nil
}

func ValidateSchedule(departure, arrival time.Time) error {
	if !departure.Before(arrival) {
		return ErrInvalidSchedule
	}
	return nil
}
