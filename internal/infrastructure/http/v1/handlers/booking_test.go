package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/tariff"
)

type fakeBookings struct {
	saved    *booking.Booking
	validErr error
	saveErr  error
	cancel   booking.CancelRequest
	change   booking.StatusChange
	filter   booking.ListFilter
}

func (f *fakeBookings) ValidateDetail(context.Context, *booking.Detail) error { return f.validErr }

func (f *fakeBookings) Save(_ context.Context, b *booking.Booking) (*booking.Booking, error) {
	f.saved = b
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if id.IsNil(b.ID) {
		b.ID = id.New()
	}
	return b, nil
}

func (f *fakeBookings) GetBooking(_ context.Context, bookingID id.ID) (*booking.Booking, error) {
	return nil, apperror.NewNotFound("booking", bookingID)
}

func (f *fakeBookings) ListDetails(_ context.Context, filter booking.ListFilter) ([]*booking.DetailView, int64, error) {
	f.filter = filter
	return nil, 0, nil
}

func (f *fakeBookings) GetDetail(_ context.Context, detailID id.ID) (*booking.Detail, error) {
	d := &booking.Detail{Status: booking.StatusOfficial}
	d.ID = detailID
	return d, nil
}

func (f *fakeBookings) Price(context.Context, id.ID) (tariff.Breakdown, error) {
	return tariff.Breakdown{AllDayBooking: true}, nil
}

func (f *fakeBookings) CancelDetail(_ context.Context, detailID id.ID, req booking.CancelRequest) (*booking.Detail, error) {
	f.cancel = req
	d := &booking.Detail{Status: booking.StatusCanceled}
	d.ID = detailID
	return d, nil
}

func (f *fakeBookings) EditDetail(_ context.Context, detailID id.ID, _ booking.DetailPatch) (*booking.Detail, error) {
	return f.GetDetail(context.Background(), detailID)
}

func (f *fakeBookings) ChangeStatuses(_ context.Context, change booking.StatusChange) error {
	f.change = change
	return nil
}

func newBookingRouter(svc *fakeBookings) http.Handler {
	h := NewBookingHandler(newTestBase(), svc)
	r := newTestRouter()
	r.GET("/bookings", h.List)
	r.POST("/bookings", h.Save)
	r.GET("/bookings/:id", h.Get)
	r.POST("/booking-details/validate", h.ValidateDetail)
	r.PATCH("/booking-details", h.ChangeStatuses)
	r.GET("/booking-details/:id", h.GetDetail)
	r.POST("/booking-details/:id/cancel", h.Cancel)
	r.GET("/booking-details/:id/price", h.Price)
	return r
}

func bookingBody(bookingID *id.ID) map[string]any {
	body := map[string]any{
		"customerId": id.New(),
		"bookingDetails": []map[string]any{{
			"roomId":        id.New(),
			"startDatetime": "2026-03-10T10:00:00+09:00",
			"endDatetime":   "2026-03-10T12:00:00+09:00",
			"status":        int(booking.StatusOfficial),
		}},
	}
	if bookingID != nil {
		body["id"] = *bookingID
	}
	return body
}

func TestBookingHandler_Save(t *testing.T) {
	t.Run("new booking is created by the signed in staff", func(t *testing.T) {
		svc := &fakeBookings{}
		w := doJSON(t, newBookingRouter(svc), http.MethodPost, "/bookings", bookingBody(nil))

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, svc.saved)
		assert.Equal(t, testStaffID, svc.saved.StaffID)
		require.Len(t, svc.saved.Details, 1)
		assert.Equal(t, booking.StatusOfficial, svc.saved.Details[0].Status)
	})

	t.Run("body with id updates", func(t *testing.T) {
		svc := &fakeBookings{}
		existing := id.New()
		w := doJSON(t, newBookingRouter(svc), http.MethodPost, "/bookings", bookingBody(&existing))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, existing, svc.saved.ID)
	})

	t.Run("details are required", func(t *testing.T) {
		w := doJSON(t, newBookingRouter(&fakeBookings{}), http.MethodPost, "/bookings", map[string]any{"customerId": id.New()})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, errorCode(t, w))
	})

	t.Run("scheduling conflict", func(t *testing.T) {
		svc := &fakeBookings{saveErr: apperror.NewSchedulingConflict(apperror.MsgBookingBlocked)}
		w := doJSON(t, newBookingRouter(svc), http.MethodPost, "/bookings", bookingBody(nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeSchedulingConflict, errorCode(t, w))
		assert.Contains(t, w.Body.String(), apperror.MsgBookingBlocked)
	})
}

func TestBookingHandler_ValidateDetail(t *testing.T) {
	detail := map[string]any{
		"roomId":        id.New(),
		"startDatetime": "2026-03-10T10:00:00+09:00",
		"endDatetime":   "2026-03-10T12:00:00+09:00",
		"status":        int(booking.StatusTemporary),
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"valid", nil, http.StatusOK},
		{"holiday", apperror.NewHoliday(), http.StatusBadRequest},
		{"tariff missing", apperror.NewTariffMissing("room"), http.StatusBadRequest},
		{"room not found", apperror.NewNotFound("room", "x"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, newBookingRouter(&fakeBookings{validErr: tt.err}), http.MethodPost, "/booking-details/validate", detail)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	svc := &fakeBookings{}
	detailID := id.New()
	body := map[string]any{
		"cancelRequesterName": "山田",
		"cancelRequesterTel":  "03-0000-0000",
		"cancelDate":          "2026-03-05",
	}
	w := doJSON(t, newBookingRouter(svc), http.MethodPost, "/booking-details/"+detailID.String()+"/cancel", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testStaffID, svc.cancel.StaffID)
	assert.Equal(t, "山田", svc.cancel.RequesterName)
	require.NotNil(t, svc.cancel.CancelDate)
	assert.Equal(t, 5, svc.cancel.CancelDate.Day())
}

func TestBookingHandler_ChangeStatuses(t *testing.T) {
	svc := &fakeBookings{}
	ids := []id.ID{id.New(), id.New()}
	w := doJSON(t, newBookingRouter(svc), http.MethodPatch, "/booking-details", map[string]any{
		"bookingDetailIds": ids,
		"status":           int(booking.StatusCheckIn),
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, ids, svc.change.DetailIDs)
	assert.Equal(t, booking.StatusCheckIn, svc.change.Status)
}

func TestBookingHandler_List(t *testing.T) {
	t.Run("filter", func(t *testing.T) {
		svc := &fakeBookings{}
		w := doJSON(t, newBookingRouter(svc), http.MethodGet, "/bookings?status=1&status=2&from=2026-03-01&to=2026-03-31", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []booking.Status{booking.StatusOfficial, booking.StatusTemporary}, svc.filter.Statuses)
		require.NotNil(t, svc.filter.To)
		assert.Equal(t, 1, svc.filter.To.Day())
		assert.Equal(t, 50, svc.filter.Limit)
	})

	t.Run("malformed booking id", func(t *testing.T) {
		w := doJSON(t, newBookingRouter(&fakeBookings{}), http.MethodGet, "/bookings?bookingId=abc", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeInvalidInput, errorCode(t, w))
	})
}

func TestBookingHandler_Lookups(t *testing.T) {
	r := newBookingRouter(&fakeBookings{})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/booking-details/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing booking", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/bookings/"+id.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperror.CodeNotFound, errorCode(t, w))
	})

	t.Run("price", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/booking-details/"+id.New().String()+"/price", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"isAllDayBooking":true`)
	})
}
