package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"train-station/internal/kafka"
)

// newEventsCmd tails an order topic and prints each event as one JSON line.
func newEventsCmd(a *app) *cobra.Command {
	var (
		topic string
		group string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print order events published to Kafka",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Kafka.Enabled {
				return errors.New("KAFKA_ENABLED is false")
			}
			if topic == "" {
				topic = a.cfg.Kafka.Topics.OrderCreated
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			consumer := kafka.NewConsumer(a.cfg.Kafka.Brokers, topic, group, a.log)
			defer consumer.Close()

			out := json.NewEncoder(cmd.OutOrStdout())
			return consumer.Start(ctx, func(event kafka.OrderEvent) {
				if err := out.Encode(event); err != nil {
					a.log.Error("EVENTS", fmt.Sprintf("failed to print event %s: %v", event.EventID, err))
				}
			})
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to read (defaults to the order created topic)")
	cmd.Flags().StringVar(&group, "group", "station-events-cli", "consumer group id")
	return cmd
}
