package room

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/events"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/domain"
	"venuedesk/internal/domain/catalog"
)

type fakeRooms struct {
	rooms map[id.ID]*Room
}

func (f *fakeRooms) Create(_ context.Context, r *Room) error { f.rooms[r.ID] = r; return nil }
func (f *fakeRooms) Update(_ context.Context, r *Room) error { f.rooms[r.ID] = r; return nil }

func (f *fakeRooms) GetByID(_ context.Context, roomID id.ID) (*Room, error) {
	if r, ok := f.rooms[roomID]; ok {
		return r, nil
	}
	return nil, apperror.NewNotFound("rooms", roomID)
}

func (f *fakeRooms) List(context.Context, domain.ListFilter) (domain.ListResult[*Room], error) {
	return domain.ListResult[*Room]{}, nil
}

func (f *fakeRooms) Exists(_ context.Context, roomID id.ID) (bool, error) {
	_, ok := f.rooms[roomID]
	return ok, nil
}

func (f *fakeRooms) NameTaken(_ context.Context, name string, exclude id.ID) (bool, error) {
	for _, r := range f.rooms {
		if r.Name == name && r.ID != exclude && r.IsEnabled {
			return true, nil
		}
	}
	return false, nil
}

type fakeCharges struct {
	charges map[id.ID]*Charge
}

func (f *fakeCharges) Create(_ context.Context, c *Charge) error { f.charges[c.ID] = c; return nil }
func (f *fakeCharges) SetEndDate(_ context.Context, c *Charge) error {
	f.charges[c.ID].EndDate = c.EndDate
	return nil
}
func (f *fakeCharges) Delete(_ context.Context, chargeID id.ID) error {
	delete(f.charges, chargeID)
	return nil
}

func (f *fakeCharges) GetByID(_ context.Context, chargeID id.ID) (*Charge, error) {
	if c, ok := f.charges[chargeID]; ok {
		return c, nil
	}
	return nil, apperror.NewNotFound("room_charges", chargeID)
}

func (f *fakeCharges) ListByRoom(_ context.Context, roomID id.ID, _ bool) ([]*Charge, error) {
	var out []*Charge
	for _, c := range f.charges {
		if c.RoomID == roomID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func newTestService(now time.Time) (*Service, *fakeRooms, *fakeCharges, *events.Recorder) {
	rooms := &fakeRooms{rooms: map[id.ID]*Room{}}
	charges := &fakeCharges{charges: map[id.ID]*Charge{}}
	rec := &events.Recorder{}
	svc := NewService(rooms, charges, &tx.Passthrough{}, rec, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, rooms, charges, rec
}

func rates(basic int64) Rates {
	return Rates{
		BasicAmount:     decimal.NewFromInt(basic),
		ExtensionAmount: decimal.NewFromInt(1000),
		AllDayAmount:    decimal.NewFromInt(20000),
		SubtotalType:    catalog.SubtotalConsumptionTax,
	}
}

func TestService_CreateRoomAndCharges(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, _, charges, rec := newTestService(now)

	r := NewRoom("Room A", 12, decimal.NewFromInt(10), now)
	first, err := svc.CreateRoom(ctx, r, rates(3000))
	require.NoError(t, err)
	assert.Equal(t, day(2024, 5, 10), first.StartDate)
	assert.Nil(t, first.EndDate)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svc.CreateRoom(ctx, NewRoom("Room A", 4, decimal.Zero, now), rates(1000))
		assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	})

	t.Run("price change closes the current tariff", func(t *testing.T) {
		next, err := svc.CreateCharge(ctx, r.ID, rates(3500), day(2024, 6, 1))
		require.NoError(t, err)
		require.NotNil(t, charges.charges[first.ID].EndDate)
		assert.Equal(t, day(2024, 5, 31), *charges.charges[first.ID].EndDate)
		assert.Nil(t, next.EndDate)
		assert.Equal(t, []string{events.RoomChargeCreated}, rec.Types())
	})

	t.Run("active tariff by day", func(t *testing.T) {
		c, err := svc.ActiveCharge(ctx, r.ID, time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "3500", c.BasicAmount.String())
	})

	t.Run("room without tariff", func(t *testing.T) {
		_, err := svc.ActiveCharge(ctx, id.New(), now)
		assert.True(t, apperror.HasCode(err, apperror.CodeTariffMissing))
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := svc.CreateCharge(ctx, id.New(), rates(1), day(2024, 6, 1))
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestService_UpdateRoomEndDate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc, _, charges, _ := newTestService(now)

	r := NewRoom("Room B", 6, decimal.NewFromInt(5), now)
	first, err := svc.CreateRoom(ctx, r, rates(2000))
	require.NoError(t, err)

	t.Run("end date before today", func(t *testing.T) {
		past := day(2024, 5, 1)
		err := svc.UpdateRoom(ctx, r, &EndDateChange{ChargeID: first.ID, EndDate: &past})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})

	t.Run("close the tariff", func(t *testing.T) {
		end := day(2024, 12, 31)
		require.NoError(t, svc.UpdateRoom(ctx, r, &EndDateChange{ChargeID: first.ID, EndDate: &end}))
		assert.Equal(t, end, *charges.charges[first.ID].EndDate)
	})
}
