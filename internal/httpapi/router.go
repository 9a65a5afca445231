// Package httpapi assembles the HTTP surface of the service.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"train-station/internal/analytics"
	analytics_api "train-station/internal/analytics/api"
	"train-station/internal/auth"
	"train-station/internal/booking"
	"train-station/internal/booking/booking_api"
	"train-station/internal/catalog"
	"train-station/internal/catalog/catalog_api"
	"train-station/internal/journey"
	"train-station/internal/journey/journey_api"
	"train-station/internal/logger"
	"train-station/internal/utils"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Catalog   *catalog.Service
	Journeys  *journey.Service
	Booking   *booking.Service
	Analytics *analytics.Service
	Verifier  auth.Verifier
	// OrderLimit is optional middleware applied to order creation.
	OrderLimit func(http.Handler) http.Handler
	DB         Pinger
	Logger     *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(d.DB))

	catalogHandler := catalog_api.NewHandler(d.Catalog, d.Logger)
	journeyHandler := journey_api.NewHandler(d.Journeys, d.Logger)
	bookingHandler := booking_api.NewHandler(d.Booking, d.Logger, d.OrderLimit)
	analyticsHandler := analytics_api.NewHandler(d.Analytics, d.Logger)

	r.Get("/stats/tickets/count", analyticsHandler.TotalTickets)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(d.Verifier, d.Logger))

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireStaffForWrites)
			catalogHandler.RegisterRoutes(r)
			journeyHandler.RegisterRoutes(r)
		})
		bookingHandler.RegisterRoutes(r)
		analyticsHandler.RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Not found", r.URL.Path))
	})
	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, utils.ErrorResponse("Database unavailable", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("OK", nil))
	}
}

// RequestLogger writes one API log line per request.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.LogAPI(r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
