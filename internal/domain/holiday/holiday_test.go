package holiday

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
)

type memRepo struct {
	items []*Holiday
}

func (m *memRepo) CreateBatch(_ context.Context, hs []*Holiday) error {
	m.items = append(m.items, hs...)
	return nil
}

func (m *memRepo) FindByDates(_ context.Context, dates []time.Time) ([]*Holiday, error) {
	var out []*Holiday
	for _, h := range m.items {
		for _, d := range dates {
			if h.Date.Equal(d) {
				out = append(out, h)
			}
		}
	}
	return out, nil
}

func (m *memRepo) ListBetween(_ context.Context, from, to time.Time) ([]*Holiday, error) {
	var out []*Holiday
	for _, h := range m.items {
		if !h.Date.Before(from) && !h.Date.After(to) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memRepo) CountByIDs(_ context.Context, ids []id.ID) (int, error) {
	n := 0
	for _, h := range m.items {
		for _, v := range ids {
			if h.ID == v {
				n++
			}
		}
	}
	return n, nil
}

func (m *memRepo) DeleteByIDs(_ context.Context, ids []id.ID) error {
	keep := m.items[:0]
	for _, h := range m.items {
		drop := false
		for _, v := range ids {
			drop = drop || h.ID == v
		}
		if !drop {
			keep = append(keep, h)
		}
	}
	m.items = keep
	return nil
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	repo := &memRepo{}
	svc := NewService(repo, &tx.Passthrough{}, loc)

	t.Run("empty list", func(t *testing.T) {
		assert.True(t, apperror.HasCode(svc.Register(ctx, nil), apperror.CodeInvalidInput))
	})

	// 2024-05-03 00:30 in Tokyo is still May 2nd in UTC.
	golden := time.Date(2024, 5, 3, 0, 30, 0, 0, loc)
	require.NoError(t, svc.Register(ctx, []*Holiday{{Date: golden, Name: "憲法記念日"}}))
	require.Len(t, repo.items, 1)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), repo.items[0].Date)

	t.Run("already registered", func(t *testing.T) {
		err := svc.Register(ctx, []*Holiday{{Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)}})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "2024年05月03日は、既に登録されていましたので、再度ご確認してください。", appErr.Message)
	})

	t.Run("booking window check", func(t *testing.T) {
		closed, err := svc.AnyBetween(ctx, time.Date(2024, 5, 2, 20, 0, 0, 0, loc), time.Date(2024, 5, 3, 2, 0, 0, 0, loc))
		require.NoError(t, err)
		assert.True(t, closed)

		closed, err = svc.AnyBetween(ctx, time.Date(2024, 5, 4, 9, 0, 0, 0, loc), time.Date(2024, 5, 4, 12, 0, 0, 0, loc))
		require.NoError(t, err)
		assert.False(t, closed)
	})

	t.Run("remove requires every id", func(t *testing.T) {
		err := svc.Remove(ctx, []id.ID{repo.items[0].ID, id.New()})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
		require.NoError(t, svc.Remove(ctx, []id.ID{repo.items[0].ID}))
		assert.Empty(t, repo.items)
	})
}
