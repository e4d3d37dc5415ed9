package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/parkingblisko/config"
	"github.com/Domenick1991/parkingblisko/internal/bootstrap"
	"github.com/Domenick1991/parkingblisko/internal/cache"
	"github.com/Domenick1991/parkingblisko/internal/kafka"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/Domenick1991/parkingblisko/internal/metrics"
	"github.com/Domenick1991/parkingblisko/internal/parser"
	"github.com/Domenick1991/parkingblisko/internal/printout"
	"github.com/Domenick1991/parkingblisko/internal/repository"
	"github.com/Domenick1991/parkingblisko/internal/schedule"
	"github.com/Domenick1991/parkingblisko/internal/service/reservation"
	"github.com/Domenick1991/parkingblisko/internal/submission"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.NewLogger(cfg.Debug)
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics("parkingblisko", nil)
	store := schedule.NewStore(nil)
	checks := map[string]bootstrap.HealthCheck{}

	if cfg.Database.Enabled() {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			appLog.Fatal("connect postgres", "error", err)
		}
		defer pool.Close()
		checks["postgres"] = pool.Ping

		holidays, err := repository.NewHolidayRepository(pool).List(ctx)
		if err != nil {
			appLog.Warn("holiday labels not loaded, using defaults", "error", err)
		} else {
			store.SetHolidays(schedule.DefaultHolidays().Merge(holidays))
			appLog.Info("holiday labels loaded", "count", len(holidays))
		}
	}

	opts := []reservation.ReservationServiceOption{
		reservation.WithDefaultThreshold(cfg.Schedule.DefaultThreshold),
	}

	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.ParseTTL())
		defer redisCache.Close()
		checks["redis"] = redisCache.Ping
		opts = append(opts, reservation.WithCache(redisCache, cfg.Cache.SubmissionLockTTL()))
	}

	switch {
	case cfg.Kafka.Enabled():
		producer := kafka.NewProducer(cfg.Kafka.Brokers, appLog)
		defer producer.Close()
		checks["kafka"] = producer.CheckConnection
		opts = append(opts, reservation.WithEvents(producer, cfg.Kafka.ReservationEventsTopic))
		appLog.Info("reservations are queued for the worker", "topic", cfg.Kafka.ReservationEventsTopic)
	case cfg.Submission.Enabled():
		client := submission.NewClient(cfg.Submission, appLog)
		opts = append(opts, reservation.WithSubmitter(client, client.Source()))
		appLog.Info("reservations are submitted directly", "url", cfg.Submission.URL)
	default:
		appLog.Warn("no submission target configured, reservations stay local")
	}

	p := parser.New(
		parser.WithDefaultDayCount(cfg.Parser.DefaultDayCount),
		parser.WithLocation(cfg.Parser.Location()),
	)
	reservationService := reservation.NewReservationService(p, store, m, appLog, opts...)

	err = bootstrap.Run(ctx, cfg, bootstrap.Dependencies{
		Reservations: reservationService,
		Printer:      printout.NewRenderer(cfg.Schedule.PrintFontPath),
		Checks:       checks,
		Log:          appLog,
	})
	reservationService.Wait()
	if err != nil {
		appLog.Fatal("server error", "error", err)
	}
	appLog.Info("server stopped")
}
