package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vporoshin/aeroreserve/config"
	"github.com/vporoshin/aeroreserve/internal/cache"
	"github.com/vporoshin/aeroreserve/internal/email"
	"github.com/vporoshin/aeroreserve/internal/kafka"
	"github.com/vporoshin/aeroreserve/internal/repository"
	"github.com/vporoshin/aeroreserve/internal/service/booking"
	"github.com/vporoshin/aeroreserve/internal/service/pricing"
	"github.com/vporoshin/aeroreserve/internal/worker"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.InstancesCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	ledgerRepo := repository.NewLedgerRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		ledgerRepo,
		pricing.NewCalculator(),
		producer,
		time.Duration(cfg.Booking.HoldWindowMinutes)*time.Minute,
		booking.WithEventTopic(cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()
	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	reaper := worker.NewReaper(bookingService, redisCache, time.Duration(cfg.Worker.ExpirationSweepSeconds)*time.Second)
	// Blocks until the signal context is canceled.
	reaper.Run(ctx)
	log.Printf("worker shut down")
}
