package journey

import "train-station/internal/models"

// AvailableSeats is the number of seats on train still free when booked tickets exist.
// It never goes below zero.
func AvailableSeats(train models.Train, booked int) int {
	free := train.Capacity() - booked
	if free < 0 {
		return 0
	}
	return free
}
