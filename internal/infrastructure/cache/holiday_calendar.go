// Package cache keeps read-mostly master data in memory, invalidated by
// PostgreSQL LISTEN/NOTIFY.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"venuedesk/internal/core/types"
	"venuedesk/pkg/logger"
)

// HolidaysChannel is notified by a trigger on every holidays write.
const HolidaysChannel = "holidays_changed"

// DateLoader returns every registered closed day as returned by types.Day.
type DateLoader func(ctx context.Context) ([]time.Time, error)

// HolidayCalendar answers "is the facility closed" without a query per
// booking check. It reloads the whole calendar on each notification.
type HolidayCalendar struct {
	pool *pgxpool.Pool
	loc  *time.Location
	load DateLoader

	mu     sync.RWMutex
	days   map[time.Time]struct{}
	loaded bool

	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewHolidayCalendar creates a calendar reading from the holidays table.
func NewHolidayCalendar(pool *pgxpool.Pool, loc *time.Location) *HolidayCalendar {
	c := &HolidayCalendar{
		pool: pool,
		loc:  loc,
		days: make(map[time.Time]struct{}),
	}
	c.load = c.queryDates
	return c
}

// Start loads the calendar and begins listening for changes.
func (c *HolidayCalendar) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if err := c.Reload(c.ctx); err != nil {
		c.Stop()
		return fmt.Errorf("load holidays: %w", err)
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "holiday calendar started", "days", c.Len())
	return nil
}

// Stop ends the listener and waits for it.
func (c *HolidayCalendar) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "holiday calendar stopped")
}

func (c *HolidayCalendar) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			c.pause()
			continue
		}

		if _, err = conn.Exec(c.ctx, "LISTEN "+HolidaysChannel); err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "channel", HolidaysChannel, "error", err)
			conn.Release()
			c.pause()
			continue
		}

		// Writes may have happened while no connection was listening.
		if err := c.Reload(c.ctx); err != nil {
			logger.Error(c.ctx, "failed to reload holidays", "error", err)
		}

		c.waitForNotifications(conn)
		conn.Release()
	}
}

func (c *HolidayCalendar) pause() {
	select {
	case <-c.ctx.Done():
	case <-time.After(time.Second):
	}
}

func (c *HolidayCalendar) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			if ctx.Err() != nil {
				// Timeout, keep listening.
				continue
			}
			logger.Warn(c.ctx, "LISTEN connection lost", "error", err)
			return
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)
		c.handleNotification(c.ctx, notification.Channel)
	}
}

func (c *HolidayCalendar) handleNotification(ctx context.Context, channel string) {
	if channel != HolidaysChannel {
		return
	}
	if err := c.Reload(ctx); err != nil {
		logger.Error(ctx, "failed to reload holidays", "error", err)
	}
}

// Reload replaces the cached calendar with the stored one.
func (c *HolidayCalendar) Reload(ctx context.Context) error {
	dates, err := c.load(ctx)
	if err != nil {
		return err
	}

	days := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		days[types.Day(d, time.UTC)] = struct{}{}
	}

	c.mu.Lock()
	c.days = days
	c.loaded = true
	c.mu.Unlock()

	logger.Debug(ctx, "loaded holidays", "count", len(days))
	return nil
}

func (c *HolidayCalendar) queryDates(ctx context.Context) ([]time.Time, error) {
	rows, err := c.pool.Query(ctx, `SELECT date FROM holidays`)
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// AnyBetween reports whether a closed day falls within the calendar days
// of start and end. It fails until the calendar has been loaded.
func (c *HolidayCalendar) AnyBetween(_ context.Context, start, end time.Time) (bool, error) {
	from, to := types.Day(start, c.loc), types.Day(end, c.loc)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return false, fmt.Errorf("holiday calendar is not loaded")
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if _, ok := c.days[d]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of cached closed days.
func (c *HolidayCalendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.days)
}
