package main

import (
	"labbook/internal/scheduling/cache"
	"labbook/internal/scheduling/handler"
	"labbook/internal/scheduling/repository"
	"labbook/internal/scheduling/service"
	"labbook/internal/scheduling/validator"
	"labbook/pkg/app"
	"labbook/pkg/config"
	"labbook/pkg/kafka"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Scheduling service")
	cfg.SetMongo()
	cfg.SetRedis()

	schedulingService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewSchedulingHandler(schedulingService, cfg.Log),
		handler.NewHealthHandler(cfg.Client, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SchedulingService {
	var events service.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaEventTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		events = producer
	} else {
		cfg.Log.Warn("No Kafka brokers configured, event publishing disabled")
	}

	schedulingService := service.NewSchedulingService(
		repository.NewMongoLabRepository(cfg),
		repository.NewMongoSiteRepository(cfg),
		repository.NewMongoBookingRepository(cfg),
		repository.NewSlotLockRepository(cfg),
		repository.NewMongoExtensionRepository(cfg),
		validator.NewSchedulingValidator(cfg.Log),
		cache.NewCalendarCache(cfg),
		events,
		cfg,
	)

	cfg.Log.Info("Scheduling service initialized", "database", cfg.MongoDatabaseName)
	return schedulingService
}
