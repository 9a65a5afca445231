package api

import (
	"errors"
	"fmt"
	"net/http"

	"train-station/internal/booking"
	"train-station/internal/logger"
	"train-station/internal/store"
	"train-station/internal/utils"
	"train-station/internal/validation"
)

func WriteData(w http.ResponseWriter, status int, message string, data interface{}) {
	utils.WriteJSON(w, status, utils.SuccessResponse(message, data))
}

// WriteError maps domain errors onto status codes and error details. Unknown errors are
// logged and reported as 500 without their text.
func WriteError(w http.ResponseWriter, log *logger.Logger, err error) {
	status, message, detail := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("API", err.Error())
		utils.WriteJSON(w, status, utils.ErrorResponse(message, "internal error"))
		return
	}
	resp := utils.ErrorResponse(message, err.Error())
	resp.Details = detail
	utils.WriteJSON(w, status, resp)
}

func classify(err error) (int, string, *utils.ErrorDetail) {
	var (
		reqErr   *RequestError
		capErr   *validation.CapacityError
		routeErr *validation.RouteError
		refErr   *validation.ReferenceError
		layErr   *validation.LayoutError
		orderErr *booking.OrderError
	)
	switch {
	case errors.As(err, &orderErr):
		return classifyOrder(orderErr)
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "Invalid request", &utils.ErrorDetail{Field: reqErr.Field, Reason: reqErr.Reason}
	case errors.As(err, &capErr):
		return http.StatusBadRequest, "Invalid train capacity", &utils.ErrorDetail{Field: capErr.Field(), Reason: "out_of_range"}
	case errors.As(err, &routeErr):
		if routeErr.Kind == validation.DuplicateRoute {
			return http.StatusConflict, "Route already exists", &utils.ErrorDetail{Field: "destination_id", Reason: "duplicate_route"}
		}
		return http.StatusBadRequest, "Invalid route", &utils.ErrorDetail{Field: "destination_id", Reason: "same_station"}
	case errors.As(err, &refErr):
		return http.StatusBadRequest, "Unknown reference", &utils.ErrorDetail{Field: refErr.Field, Reason: "not_found"}
	case errors.As(err, &layErr):
		return http.StatusConflict, "Booked seats outside layout", &utils.ErrorDetail{Field: layErr.Field, Reason: "seats_booked_outside_layout"}
	case errors.Is(err, validation.ErrInvalidSchedule):
		return http.StatusBadRequest, "Invalid schedule", &utils.ErrorDetail{Field: "arrival_time", Reason: "not_after_departure"}
	case errors.Is(err, booking.ErrAnonymous):
		return http.StatusUnauthorized, "Authentication required", nil
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "Not found", nil
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "Conflict", nil
	default:
		return http.StatusInternalServerError, "Internal server error", nil
	}
}

func classifyOrder(e *booking.OrderError) (int, string, *utils.ErrorDetail) {
	if e.Kind == booking.EmptyOrder {
		return http.StatusBadRequest, "Order rejected", &utils.ErrorDetail{Field: "tickets", Reason: "empty"}
	}
	index := e.Index
	detail := &utils.ErrorDetail{Index: &index}

	var seatErr *validation.SeatError
	switch {
	case errors.As(e.Reason, &seatErr):
		detail.Reason = seatErr.Kind.Reason()
		if seatErr.Kind == validation.SeatAlreadyTaken {
			return http.StatusConflict, "Seat already taken", detail
		}
	case errors.Is(e.Reason, booking.ErrJourneyNotFound):
		detail.Reason = "journey_not_found"
	default:
		detail.Reason = fmt.Sprint(e.Reason)
	}
	return http.StatusBadRequest, "Order rejected", detail
}
