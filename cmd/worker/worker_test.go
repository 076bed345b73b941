package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"venuedesk/pkg/logger"
)

type fakeRelay struct {
	batches   []int
	calls     int
	err       error
	dlq       int
	retention time.Duration
}

func (r *fakeRelay) ProcessBatch(context.Context) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.calls >= len(r.batches) {
		r.calls++
		return 0, nil
	}
	n := r.batches[r.calls]
	r.calls++
	return n, nil
}

func (r *fakeRelay) MoveToDLQ(context.Context) (int64, error) {
	r.dlq++
	return 1, nil
}

func (r *fakeRelay) CleanupPublished(_ context.Context, retention time.Duration) (int64, error) {
	r.retention = retention
	return 0, nil
}

type fakeCleaner struct {
	calls int
	err   error
}

func (c *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls++
	return 3, c.err
}

func (c *fakeCleaner) CleanupExpiredTokens(context.Context) (int64, error) {
	c.calls++
	return 2, c.err
}

func TestWorker_RelayOutbox(t *testing.T) {
	t.Run("drains until an empty batch", func(t *testing.T) {
		relay := &fakeRelay{batches: []int{100, 100, 7}}
		w := NewWorker(Jobs{Outbox: relay}, Schedule{}, logger.Default())

		w.relayOutbox(context.Background())

		assert.Equal(t, 4, relay.calls)
	})

	t.Run("stops on error", func(t *testing.T) {
		relay := &fakeRelay{err: errors.New("db down")}
		w := NewWorker(Jobs{Outbox: relay}, Schedule{}, logger.Default())

		w.relayOutbox(context.Background())

		assert.Equal(t, 0, relay.calls)
	})

	t.Run("disabled relay", func(t *testing.T) {
		w := NewWorker(Jobs{}, Schedule{}, logger.Default())
		assert.NotPanics(t, func() { w.relayOutbox(context.Background()) })
	})
}

func TestWorker_Cleanup(t *testing.T) {
	relay := &fakeRelay{}
	keys := &fakeCleaner{}
	tokens := &fakeCleaner{err: errors.New("timeout")}
	w := NewWorker(Jobs{Outbox: relay, Idempotency: keys, Tokens: tokens}, Schedule{PublishedRetention: 48 * time.Hour}, logger.Default())

	w.cleanup(context.Background())

	assert.Equal(t, 1, relay.dlq)
	assert.Equal(t, 48*time.Hour, relay.retention)
	assert.Equal(t, 1, keys.calls)
	assert.Equal(t, 1, tokens.calls, "a failing job does not stop the others")
}

func TestSchedule_Defaults(t *testing.T) {
	s := Schedule{OutboxInterval: time.Second}.withDefaults()

	assert.Equal(t, time.Second, s.OutboxInterval)
	assert.Equal(t, time.Hour, s.CleanupInterval)
	assert.Equal(t, 7*24*time.Hour, s.PublishedRetention)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	w := NewWorker(Jobs{Idempotency: &fakeCleaner{}, Tokens: &fakeCleaner{}}, Schedule{OutboxInterval: time.Millisecond}, logger.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
