package api

import (
	"context"
	"net/http"

	"train-station/internal/logger"
)

// The helpers below turn plain service methods into handlers for the usual
// create/read/update/delete endpoints.

func CreateHandler[Req any, Resp any](log *logger.Logger, message string, create func(context.Context, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if err := DecodeJSON(w, r, &req); err != nil {
			WriteError(w, log, err)
			return
		}
		resp, err := create(r.Context(), req)
		if err != nil {
			WriteError(w, log, err)
			return
		}
		WriteData(w, http.StatusCreated, message, resp)
	}
}

func GetHandler[Resp any](log *logger.Logger, get func(context.Context, int64) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			WriteError(w, log, err)
			return
		}
		resp, err := get(r.Context(), id)
		if err != nil {
			WriteError(w, log, err)
			return
		}
		WriteData(w, http.StatusOK, "OK", resp)
	}
}

func ListHandler[Resp any](log *logger.Logger, list func(context.Context) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := list(r.Context())
		if err != nil {
			WriteError(w, log, err)
			return
		}
		WriteData(w, http.StatusOK, "OK", resp)
	}
}

func UpdateHandler[Req any, Resp any](log *logger.Logger, message string, update func(context.Context, int64, Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			WriteError(w, log, err)
			return
		}
		var req Req
		if err := DecodeJSON(w, r, &req); err != nil {
			WriteError(w, log, err)
			return
		}
		resp, err := update(r.Context(), id, req)
		if err != nil {
			WriteError(w, log, err)
			return
		}
		WriteData(w, http.StatusOK, message, resp)
	}
}

func DeleteHandler(log *logger.Logger, remove func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			WriteError(w, log, err)
			return
		}
		if err := remove(r.Context(), id); err != nil {
			WriteError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
