package main

import (
	"context"
	"time"

	"venuedesk/pkg/logger"
)

// OutboxRelay delivers pending outbox rows.
type OutboxRelay interface {
	ProcessBatch(ctx context.Context) (int, error)
	MoveToDLQ(ctx context.Context) (int64, error)
	CleanupPublished(ctx context.Context, retention time.Duration) (int64, error)
}

// IdempotencyCleaner purges expired idempotency keys.
type IdempotencyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// TokenCleaner purges expired refresh tokens.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// Jobs are the units of work run by the worker. A nil Outbox disables
// the relay.
type Jobs struct {
	Outbox      OutboxRelay
	Idempotency IdempotencyCleaner
	Tokens      TokenCleaner
}

// Schedule controls how often the jobs run.
type Schedule struct {
	OutboxInterval     time.Duration
	CleanupInterval    time.Duration
	PublishedRetention time.Duration
}

func (s Schedule) withDefaults() Schedule {
	if s.OutboxInterval <= 0 {
		s.OutboxInterval = 500 * time.Millisecond
	}
	if s.CleanupInterval <= 0 {
		s.CleanupInterval = time.Hour
	}
	if s.PublishedRetention <= 0 {
		s.PublishedRetention = 7 * 24 * time.Hour
	}
	return s
}

// Worker runs the background jobs until its context is canceled.
type Worker struct {
	jobs     Jobs
	schedule Schedule
	log      *logger.Logger
}

// NewWorker creates a worker.
func NewWorker(jobs Jobs, schedule Schedule, log *logger.Logger) *Worker {
	return &Worker{
		jobs:     jobs,
		schedule: schedule.withDefaults(),
		log:      log.WithComponent("worker"),
	}
}

// Run blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.schedule.OutboxInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.schedule.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.relayOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

// relayOutbox drains the outbox until a batch comes back short.
func (w *Worker) relayOutbox(ctx context.Context) {
	if w.jobs.Outbox == nil {
		return
	}
	for ctx.Err() == nil {
		n, err := w.jobs.Outbox.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		w.log.Debugw("relayed outbox batch", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	if w.jobs.Outbox != nil {
		if n, err := w.jobs.Outbox.MoveToDLQ(ctx); err != nil {
			w.log.Errorw("move outbox to DLQ", "error", err)
		} else if n > 0 {
			w.log.Warnw("outbox messages moved to DLQ", "count", n)
		}
		if n, err := w.jobs.Outbox.CleanupPublished(ctx, w.schedule.PublishedRetention); err != nil {
			w.log.Errorw("cleanup published outbox", "error", err)
		} else if n > 0 {
			w.log.Infow("cleaned up published outbox", "count", n)
		}
	}

	if n, err := w.jobs.Idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("cleanup idempotency keys", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}

	if n, err := w.jobs.Tokens.CleanupExpiredTokens(ctx); err != nil {
		w.log.Errorw("cleanup refresh tokens", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up expired sessions", "count", n)
	}
}
