package main

import (
	bookingshandler "lcr/internal/bookings/handler"
	bookingsrepo "lcr/internal/bookings/repository"
	bookingsservice "lcr/internal/bookings/service"
	"lcr/internal/bookings/validator"
	paymentshandler "lcr/internal/payments/handler"
	paymentsrepo "lcr/internal/payments/repository"
	paymentsservice "lcr/internal/payments/service"
	"lcr/pkg/app"
	"lcr/pkg/config"
	"lcr/pkg/contracts"
	"lcr/pkg/kafka"
	"lcr/pkg/payment"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Bookings service")
	handlers := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers)
	serverApp.Run()
}

func initServices(cfg *config.Config) contracts.Handlers {
	var publisher *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		publisher = p
	} else {
		cfg.Log.Warn("No Kafka brokers configured, events disabled")
	}

	gateway, err := payment.NewGateway(cfg.PaymentProvider, cfg.StripeSecretKey)
	if err != nil {
		cfg.Log.Fatal("Failed to create payment gateway", "error", err)
	}

	paymentRepo := paymentsrepo.NewMongoPaymentRepository(cfg)
	var paymentPublisher paymentsservice.EventPublisher
	if publisher != nil {
		paymentPublisher = publisher
	}
	paymentService := paymentsservice.NewPaymentService(paymentRepo, gateway, paymentPublisher, cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	vehicleReader := bookingsrepo.NewMongoVehicleReader(cfg)
	locker := bookingsrepo.NewVehicleLocker(cfg)

	var bookingPublisher bookingsservice.EventPublisher
	if publisher != nil {
		bookingPublisher = publisher
	}
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		locker,
		vehicleReader,
		paymentService,
		bookingPublisher,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
		"payment_provider", cfg.PaymentProvider,
	)

	return contracts.Handlers{
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, cfg.Log),
	}
}
