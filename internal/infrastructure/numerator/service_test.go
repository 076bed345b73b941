package numerator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "venuedesk/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// fakeQuerier emulates the sys_sequences upsert.
type fakeQuerier struct {
	values map[string]int64
	err    error
	keys   []string
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	if q.err != nil {
		return fakeRow{err: q.err}
	}
	key := args[0].(string)
	q.keys = append(q.keys, key)
	if len(args) > 1 {
		q.values[key] = args[1].(int64)
	} else {
		q.values[key]++
	}
	return fakeRow{val: q.values[key]}
}

func TestService_GetNextNumber(t *testing.T) {
	ctx := context.Background()
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sequential per prefix and year", func(t *testing.T) {
		q := &fakeQuerier{values: map[string]int64{}}
		s := NewWithQuerier(q)

		first, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april)
		require.NoError(t, err)
		second, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april)
		require.NoError(t, err)
		lobby, err := s.GetNextNumber(ctx, corenumerator.LobbyVoucher, april)
		require.NoError(t, err)
		nextYear, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april.AddDate(1, 0, 0))
		require.NoError(t, err)

		assert.Equal(t, "INV-2026-00001", first)
		assert.Equal(t, "INV-2026-00002", second)
		assert.Equal(t, "LOB-2026-00001", lobby)
		assert.Equal(t, "INV-2027-00001", nextYear)
		assert.Equal(t, []string{"INV_2026", "INV_2026", "LOB_2026", "INV_2027"}, q.keys)
	})

	t.Run("set next number", func(t *testing.T) {
		q := &fakeQuerier{values: map[string]int64{}}
		s := NewWithQuerier(q)

		require.NoError(t, s.SetNextNumber(ctx, corenumerator.InvoiceVoucher, april, 41))
		got, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april)
		require.NoError(t, err)
		assert.Equal(t, "INV-2026-00042", got)

		assert.Error(t, s.SetNextNumber(ctx, corenumerator.InvoiceVoucher, april, -1))
	})

	t.Run("database error", func(t *testing.T) {
		s := NewWithQuerier(&fakeQuerier{err: errors.New("boom")})
		_, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april)
		assert.ErrorContains(t, err, "next INV_2026")
	})

	t.Run("nil service", func(t *testing.T) {
		var s *Service
		_, err := s.GetNextNumber(ctx, corenumerator.InvoiceVoucher, april)
		assert.Error(t, err)
	})
}

func TestFormatNumber(t *testing.T) {
	period := time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  corenumerator.Config
		key  string
		want string
	}{
		{"yearly", corenumerator.DefaultConfig("INV"), "INV_2026", "INV-2026-00007"},
		{"monthly no year", corenumerator.Config{Prefix: "M", PadWidth: 3, ResetPeriod: corenumerator.ResetMonthly}, "M_2026_11", "M-007"},
		{"never", corenumerator.Config{Prefix: "N", ResetPeriod: corenumerator.ResetNever}, "N", "N-00007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, buildKey(tt.cfg, period))
			assert.Equal(t, tt.want, formatNumber(tt.cfg, period, 7))
		})
	}
}
