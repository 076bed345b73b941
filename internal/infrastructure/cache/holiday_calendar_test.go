package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

func newTestCalendar(load DateLoader) *HolidayCalendar {
	c := NewHolidayCalendar(nil, jst)
	c.load = load
	return c
}

func staticDates(dates ...time.Time) DateLoader {
	return func(context.Context) ([]time.Time, error) { return dates, nil }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidayCalendar_AnyBetween(t *testing.T) {
	ctx := context.Background()
	c := newTestCalendar(staticDates(date(2026, 5, 3), date(2026, 5, 5)))
	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, 2, c.Len())

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"open day", time.Date(2026, 5, 4, 9, 0, 0, 0, jst), time.Date(2026, 5, 4, 12, 0, 0, 0, jst), false},
		{"closed day", time.Date(2026, 5, 3, 9, 0, 0, 0, jst), time.Date(2026, 5, 3, 12, 0, 0, 0, jst), true},
		{"range covering a closed day", time.Date(2026, 5, 4, 9, 0, 0, 0, jst), time.Date(2026, 5, 6, 12, 0, 0, 0, jst), true},
		// 2026-05-02 23:30 UTC is already 05-03 in JST.
		{"local calendar date", time.Date(2026, 5, 2, 23, 30, 0, 0, time.UTC), time.Date(2026, 5, 2, 23, 45, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.AnyBetween(ctx, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHolidayCalendar_NotLoaded(t *testing.T) {
	c := newTestCalendar(staticDates())
	_, err := c.AnyBetween(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestHolidayCalendar_HandleNotification(t *testing.T) {
	ctx := context.Background()
	dates := []time.Time{date(2026, 1, 1)}
	c := newTestCalendar(func(context.Context) ([]time.Time, error) { return dates, nil })
	require.NoError(t, c.Reload(ctx))

	dates = append(dates, date(2026, 1, 2))
	c.handleNotification(ctx, "other_channel")
	assert.Equal(t, 1, c.Len())

	c.handleNotification(ctx, HolidaysChannel)
	assert.Equal(t, 2, c.Len())
}

func TestHolidayCalendar_ReloadFailureKeepsCalendar(t *testing.T) {
	ctx := context.Background()
	fail := false
	c := newTestCalendar(func(context.Context) ([]time.Time, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return []time.Time{date(2026, 1, 1)}, nil
	})
	require.NoError(t, c.Reload(ctx))

	fail = true
	c.handleNotification(ctx, HolidaysChannel)

	closed, err := c.AnyBetween(ctx, time.Date(2026, 1, 1, 10, 0, 0, 0, jst), time.Date(2026, 1, 1, 11, 0, 0, 0, jst))
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestHolidayCalendar_StopWithoutStart(t *testing.T) {
	c := newTestCalendar(staticDates())
	assert.NotPanics(t, c.Stop)
}
