// Package main is the entry point for the venuedesk background worker.
// It relays the transactional outbox to Kafka and purges expired keys
// and refresh tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"venuedesk/internal/config"
	"venuedesk/internal/infrastructure/messaging/kafka"
	"venuedesk/internal/infrastructure/storage/postgres"
	"venuedesk/internal/infrastructure/storage/postgres/auth_repo"
	"venuedesk/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		fmt.Printf("configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting venuedesk worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	jobs := Jobs{
		Idempotency: postgres.NewIdempotencyStore(txManager, 0),
		Tokens:      auth_repo.NewTokenRepo(txManager),
	}

	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, nil)
		if err != nil {
			log.Fatalw("failed to connect to kafka", "error", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				log.Warnw("kafka producer close", "error", err)
			}
		}()
		jobs.Outbox = postgres.NewOutboxRelay(txManager, cfg.Outbox.BatchSize, producer)
		log.Infow("outbox relay enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		log.Warn("KAFKA_BROKERS is empty, outbox relay disabled")
	}

	worker := NewWorker(jobs, Schedule{OutboxInterval: cfg.Outbox.Interval}, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
