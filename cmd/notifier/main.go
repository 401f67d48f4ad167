package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"lcr/pkg/config"
	"lcr/pkg/kafka"
	"lcr/pkg/model"
)

const ServiceName = "notifier"

// The notifier consumes the rental events topic and fans booking and
// payment events out to operational logging. Delivery hooks (email, chat)
// attach here without touching the producing services.
func main() {
	cfg := config.Load(ServiceName)
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Fatal("Notifier requires KAFKA_BROKERS")
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaEventsTopic, cfg.KafkaGroupID)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Notifier consuming events",
		"topic", cfg.KafkaEventsTopic,
		"group_id", cfg.KafkaGroupID,
	)

	err = consumer.Run(ctx, func(ctx context.Context, msg kafka.Message) error {
		return handleEvent(cfg, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Fatal("Consumer stopped", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}

func handleEvent(cfg *config.Config, msg kafka.Message) error {
	switch msg.EventType() {
	case kafka.EventBookingCreated:
		var event model.BookingCreatedEvent
		if err := msg.DecodeValue(&event); err != nil {
			cfg.Log.Error("Failed to decode booking event", "event_id", msg.EventID(), "error", err)
			return nil
		}
		cfg.Log.Info("Booking created",
			"booking_id", event.BookingID,
			"customer_id", event.CustomerID,
			"vehicle_id", event.VehicleID,
			"start", event.Start,
			"end", event.End,
		)

	case kafka.EventDepositRecorded:
		var event model.DepositRecordedEvent
		if err := msg.DecodeValue(&event); err != nil {
			cfg.Log.Error("Failed to decode payment event", "event_id", msg.EventID(), "error", err)
			return nil
		}
		cfg.Log.Info("Deposit recorded",
			"booking_id", event.BookingID,
			"status", event.Status,
			"provider", event.Provider,
			"amount_cents", event.AmountCents,
		)

	default:
		cfg.Log.Warn("Unknown event type", "event_type", msg.EventType(), "event_id", msg.EventID())
	}

	return nil
}
