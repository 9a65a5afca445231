package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"train-station/internal/analytics"
	"train-station/internal/auth"
	"train-station/internal/booking"
	holdredis "train-station/internal/booking/redis"
	"train-station/internal/catalog"
	"train-station/internal/config"
	"train-station/internal/httpapi"
	"train-station/internal/journey"
	"train-station/internal/kafka"
	"train-station/internal/logger"
	"train-station/internal/ratelimit"
	"train-station/internal/tickets/qr"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.log)
		},
	}
}

func newVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) (auth.Verifier, error) {
	if cfg.OIDCIssuer != "" {
		log.Info("AUTH", fmt.Sprintf("Verifying tokens against OIDC issuer %s", cfg.OIDCIssuer))
		return auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("either OIDC_ISSUER or JWT_SECRET must be set")
	}
	log.Info("AUTH", "Verifying HS256 tokens signed with JWT_SECRET")
	return auth.NewHMACVerifier(cfg.JWTSecret), nil
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("APP", "Starting station API")

	db, err := connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := prepareSchema(ctx, db, cfg.Database, log); err != nil {
		return err
	}

	verifier, err := newVerifier(ctx, cfg.Auth, log)
	if err != nil {
		return err
	}

	var (
		holds      booking.SeatHolder
		orderLimit func(http.Handler) http.Handler
	)
	if cfg.Redis.Addr != "" {
		client, err := holdredis.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn("REDIS", fmt.Sprintf("Redis unavailable, seat holds and rate limiting disabled: %v", err))
		} else {
			defer client.Close()
			log.Info("REDIS", fmt.Sprintf("Connected to %s", cfg.Redis.Addr))
			holds = holdredis.NewSeatHolds(client, cfg.Booking.SeatHoldTTL, log)
			orderLimit = ratelimit.New(client, "orders", cfg.Booking.OrderRateLimit, cfg.Booking.OrderRateWindow, log).Middleware
		}
	}

	var events booking.Publisher = kafka.NoopPublisher{}
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{OrderCreated: cfg.Kafka.Topics.OrderCreated, OrderDeleted: cfg.Kafka.Topics.OrderDeleted}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{topics.OrderCreated, topics.OrderDeleted}, log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, topics, log)
		defer producer.Close()
		events = producer
		log.Info("KAFKA", "Order event producer initialized")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog:    catalog.NewService(db, log),
		Journeys:   journey.NewService(db, log),
		Booking:    booking.NewService(db, holds, events, qr.NewGenerator(cfg.Booking.QRSecretKey), log),
		Analytics:  analytics.NewService(db),
		Verifier:   verifier,
		OrderLimit: orderLimit,
		DB:         db,
		Logger:     log,
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP", fmt.Sprintf("Station API listening on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("APP", "Shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("HTTP", "Station API shutdown complete")
	return nil
}
