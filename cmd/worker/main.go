package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pharmacy-platform/stock-service/internal/application"
	"github.com/pharmacy-platform/stock-service/internal/gateway"
	mongoRepo "github.com/pharmacy-platform/stock-service/internal/infrastructure/mongodb"
	"github.com/pharmacy-platform/stock-service/pkg/kafka"
	"github.com/pharmacy-platform/stock-service/pkg/logging"
	"github.com/pharmacy-platform/stock-service/pkg/metrics"
	"github.com/pharmacy-platform/stock-service/pkg/mongodb"
	"github.com/pharmacy-platform/stock-service/pkg/resilience"
)

const serviceName = "stock-service-worker"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting stock-service worker")

	config := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProductionProducer(config.Kafka, m, logger)
	defer producer.Close()

	medicineRepo := mongoRepo.NewMedicineRepository(instrumentedMongo)
	inventoryRepo := mongoRepo.NewInventoryRepository(instrumentedMongo)
	prescriptionRepo := mongoRepo.NewPrescriptionRepository(instrumentedMongo)
	orderRepo := mongoRepo.NewOrderRepository(instrumentedMongo)
	txManager := mongoRepo.NewTransactionManager(instrumentedMongo)

	statusPublisher := gateway.NewStatusPublisher(producer, logger)
	medicineLocks := resilience.NewKeyedLock(resilience.DefaultLockMaxWait)

	reconService := application.NewReconciliationService(
		inventoryRepo, prescriptionRepo, orderRepo, medicineRepo,
		statusPublisher, txManager, medicineLocks, m, logger,
	)
	prescriptionService := application.NewPrescriptionService(prescriptionRepo, reconService, logger)

	consumer := kafka.NewProductionConsumer(config.Kafka, m, logger)
	commandConsumer := gateway.NewCommandConsumer(consumer, prescriptionService, config.Workers, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down worker...")
		cancel()
	}()

	logger.Info("Consuming prescription commands",
		"topic", kafka.Topics.PrescriptionCommands,
		"brokers", config.Kafka.Brokers,
		"workers", config.Workers,
	)
	if err := commandConsumer.Start(ctx); err != nil && err != context.Canceled {
		logger.WithError(err).Error("Consumer stopped with error")
	}

	if err := commandConsumer.Close(); err != nil {
		logger.WithError(err).Error("Failed to close consumer")
	}
	logger.Info("Worker stopped")
}

// Config holds worker configuration
type Config struct {
	MongoDB *mongodb.Config
	Kafka   *kafka.Config
	Workers int
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", mongoConfig.URI)
	mongoConfig.Database = getEnv("MONGODB_DATABASE", mongoConfig.Database)

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	workers := 4
	if v, err := strconv.Atoi(getEnv("COMMAND_WORKERS", "4")); err == nil && v > 0 {
		workers = v
	}

	return &Config{
		MongoDB: mongoConfig,
		Kafka:   kafkaConfig,
		Workers: workers,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
