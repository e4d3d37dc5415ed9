package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/parkingblisko/config"
	"github.com/Domenick1991/parkingblisko/internal/kafka"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"github.com/Domenick1991/parkingblisko/internal/submission"
)

func main() {
	cfg, err := config.LoadConfig(config.PathFromEnv())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	workerLog := logger.NewLogger(cfg.Debug).With("component", "worker")
	if !cfg.Kafka.Enabled() {
		workerLog.Fatal("kafka brokers and reservation_events_topic are required")
	}
	if !cfg.Submission.Enabled() {
		workerLog.Fatal("submission url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReservationEventsTopic, workerLog)
	forwarder := submission.NewForwarder(submission.NewClient(cfg.Submission, workerLog), workerLog)

	done := make(chan error, 1)
	go func() {
		done <- consumer.Consume(ctx, forwarder.Handle)
	}()
	workerLog.Info("worker started", "topic", cfg.Kafka.ReservationEventsTopic, "group", cfg.Kafka.GroupID)

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			workerLog.Error("consumer stopped", "error", err)
		}
	case <-ctx.Done():
		workerLog.Info("shutting down")
		select {
		case <-done:
		case <-time.After(time.Duration(cfg.Worker.ShutdownTimeoutSeconds) * time.Second):
			workerLog.Warn("consumer did not stop in time")
		}
	}

	if err := consumer.Close(); err != nil {
		workerLog.Warn("close consumer", "error", err)
	}
}
