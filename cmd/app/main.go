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
	"github.com/vporoshin/aeroreserve/internal/bootstrap"
	"github.com/vporoshin/aeroreserve/internal/cache"
	"github.com/vporoshin/aeroreserve/internal/kafka"
	"github.com/vporoshin/aeroreserve/internal/repository"
	"github.com/vporoshin/aeroreserve/internal/service/booking"
	"github.com/vporoshin/aeroreserve/internal/service/flights"
	"github.com/vporoshin/aeroreserve/internal/service/payment"
	"github.com/vporoshin/aeroreserve/internal/service/pricing"
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

	flightService := flights.NewFlightService(ledgerRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		ledgerRepo,
		pricing.NewCalculator(),
		producer,
		time.Duration(cfg.Booking.HoldWindowMinutes)*time.Minute,
		booking.WithEventTopic(cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	gateway := payment.NewGateway(bookingService, cfg.Payment.ApprovalRate, time.Duration(cfg.Payment.ProcessingDelayMs)*time.Millisecond)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService, gateway); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
