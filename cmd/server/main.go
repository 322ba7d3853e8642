package main

import (
	"villacal/internal/bookings/handler"
	"villacal/internal/bookings/notify"
	"villacal/internal/bookings/repository"
	"villacal/internal/bookings/service"
	"villacal/internal/bookings/validator"
	"villacal/pkg/app"
	"villacal/pkg/config"
	"villacal/pkg/kafka"
)

const ServiceName = "villacal"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting booking calendar service")

	notifier := initNotifier(cfg)
	defer notifier.Close()

	bookingService := initServices(cfg, notifier)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewPublicHandler(bookingService, cfg.Log),
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
	)
	serverApp.Run()

	cfg.GracefulShutdown()
}

func initNotifier(cfg *config.Config) *notify.Notifier {
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create change event producer", "error", err)
		}
		producer = p
		cfg.Log.Info("Change events will be published to Kafka", "topic", cfg.KafkaTopic)
	}
	return notify.New(cfg.Log, producer, ServiceName)
}

func initServices(cfg *config.Config, notifier *notify.Notifier) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		bookingValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
