package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/holiday"
)

type fakeHolidays struct {
	upcoming   []*holiday.Holiday
	from, to   time.Time
	registered []*holiday.Holiday
	removed    []id.ID
	checked    time.Time
	closed     bool
	err        error
}

func (f *fakeHolidays) Upcoming(context.Context) ([]*holiday.Holiday, error) {
	return f.upcoming, f.err
}

func (f *fakeHolidays) Between(_ context.Context, from, to time.Time) ([]*holiday.Holiday, error) {
	f.from, f.to = from, to
	return nil, f.err
}

func (f *fakeHolidays) Register(_ context.Context, holidays []*holiday.Holiday) error {
	f.registered = holidays
	return f.err
}

func (f *fakeHolidays) Remove(_ context.Context, ids []id.ID) error {
	f.removed = ids
	return f.err
}

func (f *fakeHolidays) IsHoliday(_ context.Context, day time.Time) (bool, error) {
	f.checked = day
	return f.closed, f.err
}

func newHolidayRouter(svc *fakeHolidays) http.Handler {
	h := NewHolidayHandler(newTestBase(), svc)
	r := newTestRouter()
	r.GET("/holidays", h.List)
	r.POST("/holidays", h.Register)
	r.POST("/holidays/delete", h.Delete)
	r.GET("/holidays/check", h.Check)
	return r
}

func TestHolidayHandler_List(t *testing.T) {
	t.Run("upcoming without range", func(t *testing.T) {
		svc := &fakeHolidays{upcoming: []*holiday.Holiday{{Name: "元日"}}}
		w := doJSON(t, newHolidayRouter(svc), http.MethodGet, "/holidays", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "元日")
	})

	t.Run("range is resolved in the business zone", func(t *testing.T) {
		svc := &fakeHolidays{}
		w := doJSON(t, newHolidayRouter(svc), http.MethodGet, "/holidays?from=2026-05-01&to=2026-05-06", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, jst), svc.from)
		assert.Equal(t, time.Date(2026, 5, 6, 0, 0, 0, 0, jst), svc.to)
	})

	t.Run("malformed date", func(t *testing.T) {
		w := doJSON(t, newHolidayRouter(&fakeHolidays{}), http.MethodGet, "/holidays?from=05/01&to=2026-05-06", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, errorCode(t, w))
	})
}

func TestHolidayHandler_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeHolidays{}
		body := map[string]any{"holidays": []map[string]string{
			{"date": "2026-08-13", "name": "お盆"},
			{"date": "2026-08-14", "name": "お盆"},
		}}
		w := doJSON(t, newHolidayRouter(svc), http.MethodPost, "/holidays", body)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Len(t, svc.registered, 2)
		assert.Equal(t, time.Date(2026, 8, 13, 0, 0, 0, 0, jst), svc.registered[0].Date)
	})

	t.Run("already registered", func(t *testing.T) {
		svc := &fakeHolidays{err: apperror.NewValidation("2026年08月13日は、既に登録されていましたので、再度ご確認してください。")}
		body := map[string]any{"holidays": []map[string]string{{"date": "2026-08-13"}}}
		w := doJSON(t, newHolidayRouter(svc), http.MethodPost, "/holidays", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "既に登録されていました")
	})
}

func TestHolidayHandler_Delete(t *testing.T) {
	svc := &fakeHolidays{}
	target := id.New()
	w := doJSON(t, newHolidayRouter(svc), http.MethodPost, "/holidays/delete", map[string]any{"ids": []id.ID{target}})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []id.ID{target}, svc.removed)
}

func TestHolidayHandler_Check(t *testing.T) {
	svc := &fakeHolidays{closed: true}
	w := doJSON(t, newHolidayRouter(svc), http.MethodGet, "/holidays/check?date=2026-01-01", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Date      string `json:"date"`
		IsHoliday bool   `json:"isHoliday"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.IsHoliday)
	assert.Equal(t, "2026-01-01", body.Date)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, jst), svc.checked)
}
