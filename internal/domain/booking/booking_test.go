package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/room"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 7, day, hour, minute, 0, 0, tokyo)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusOfficial, StatusCanceled, true},
		{StatusTemporary, StatusCheckIn, true},
		{StatusWaitingCancel, StatusOfficial, true},
		{StatusCompletePayment, StatusWithholdPayment, true},
		{StatusCompletePayment, StatusOfficial, false},
		{StatusWithholdPayment, StatusCanceled, false},
		{StatusCanceled, StatusCanceled, true},
		{StatusCanceled, StatusCompletePayment, true},
		{StatusCanceled, StatusOfficial, false},
		{StatusOfficial, StatusBlocked, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%d -> %d", tt.from, tt.to)
	}
}

func TestInterval_Overlaps(t *testing.T) {
	existing := Interval{Start: at(1, 10, 0), End: at(1, 12, 0)}
	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"touching before", Interval{at(1, 8, 0), at(1, 10, 0)}, false},
		{"touching after", Interval{at(1, 12, 0), at(1, 14, 0)}, false},
		{"same range", Interval{at(1, 10, 0), at(1, 12, 0)}, true},
		{"inside", Interval{at(1, 10, 30), at(1, 11, 0)}, true},
		{"covers", Interval{at(1, 9, 0), at(1, 13, 0)}, true},
		{"crosses start", Interval{at(1, 9, 0), at(1, 11, 0)}, true},
		{"crosses end", Interval{at(1, 11, 0), at(1, 13, 0)}, true},
		{"same start longer", Interval{at(1, 10, 0), at(1, 13, 0)}, true},
		{"apart", Interval{at(2, 10, 0), at(2, 12, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.candidate))
		})
	}
}

func TestOverlapQuery_Matches(t *testing.T) {
	set := room.RoomSet{SetID: id.New(), SubIDs: []id.ID{id.New(), id.New()}}
	stored := func(roomID id.ID, status Status) *Detail {
		return &Detail{Record: entity.NewRecord(at(1, 0, 0)), RoomID: roomID, Status: status, Start: at(1, 10, 0), End: at(1, 12, 0)}
	}
	candidate := Interval{at(1, 11, 0), at(1, 13, 0)}

	t.Run("set booking blocks a sub-room", func(t *testing.T) {
		q := OverlapQuery{RoomIDs: set.Targets(set.SubIDs[0]), Interval: candidate}
		assert.True(t, q.Matches(stored(set.SetID, StatusOfficial)))
		assert.False(t, q.Matches(stored(set.SubIDs[1], StatusOfficial)), "siblings do not conflict")
	})

	t.Run("inactive details never block", func(t *testing.T) {
		q := OverlapQuery{RoomIDs: []id.ID{set.SetID}, Interval: candidate}
		assert.False(t, q.Matches(stored(set.SetID, StatusWaitingCancel)))
		assert.False(t, q.Matches(stored(set.SetID, StatusCanceled)))

		canceledAt := at(1, 0, 0)
		d := stored(set.SetID, StatusOfficial)
		d.CanceledAt = &canceledAt
		assert.False(t, q.Matches(d))
	})

	t.Run("the edited detail is excluded", func(t *testing.T) {
		d := stored(set.SetID, StatusOfficial)
		q := OverlapQuery{RoomIDs: []id.ID{set.SetID}, Interval: candidate, ExcludeDetailID: d.ID}
		assert.False(t, q.Matches(d))
	})
}

func TestNeedsOverlapCheck(t *testing.T) {
	assert.True(t, NeedsOverlapCheck(StatusOfficial, false))
	assert.True(t, NeedsOverlapCheck(StatusTemporary, false))
	assert.False(t, NeedsOverlapCheck(StatusWaitingCancel, false))
	assert.False(t, NeedsOverlapCheck(StatusCheckIn, false))
	assert.False(t, NeedsOverlapCheck(StatusWaitingCancel, true))
	assert.True(t, NeedsOverlapCheck(StatusCheckIn, true))
}

func TestPolicy_Fee(t *testing.T) {
	policy := Policy{Location: tokyo}
	roomSubtotal := decimal.NewFromInt(7700)
	start := at(25, 10, 0)
	detail := func(ct CancelType, status Status) *Detail {
		return &Detail{CancelType: ct, Status: status, Start: start, End: at(25, 13, 0)}
	}
	daysBefore := func(n int) time.Time { return time.Date(2024, 7, 25-n, 0, 0, 0, 0, tokyo) }

	// The fee is zero while diffDays <= limit and charged once the cancel
	// day lies further before the start than the limit: 20 days before a
	// normal booking costs half the room fee, 14 days costs nothing.
	tests := []struct {
		name   string
		detail *Detail
		cancel time.Time
		want   int64
	}{
		{"twenty days before, normal", detail(CancelNormal, StatusOfficial), daysBefore(20), 3850},
		{"exactly at the normal limit", detail(CancelNormal, StatusOfficial), daysBefore(14), 0},
		{"one day past the normal limit", detail(CancelNormal, StatusOfficial), daysBefore(15), 3850},
		{"student inside the limit", detail(CancelStudent, StatusOfficial), daysBefore(30), 0},
		{"student past the limit pays in full", detail(CancelStudent, StatusOfficial), daysBefore(31), 7700},
		{"no cancel type", detail(CancelNone, StatusOfficial), daysBefore(20), 0},
		{"temporary booking", detail(CancelNormal, StatusTemporary), daysBefore(20), 0},
		{"waiting cancel", detail(CancelNormal, StatusWaitingCancel), daysBefore(20), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Fee(tt.detail, tt.cancel, roomSubtotal)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}

	t.Run("others uses the detail's own limit", func(t *testing.T) {
		days := -1
		d := detail(CancelOthers, StatusOfficial)
		d.CancellationFeeDays = &days
		got := policy.Fee(d, daysBefore(0), roomSubtotal)
		assert.True(t, got.Equal(decimal.NewFromInt(7700)), "same-day cancel is charged in full")

		days = 3
		assert.True(t, policy.Fee(d, daysBefore(3), roomSubtotal).IsZero())
		assert.True(t, policy.Fee(d, daysBefore(4), roomSubtotal).Equal(decimal.NewFromInt(3850)))
	})
}

func TestFeeRate(t *testing.T) {
	assert.True(t, FeeRate(CancelNormal, 0).Equal(decimal.NewFromInt(100)))
	assert.True(t, FeeRate(CancelNormal, -2).Equal(decimal.NewFromInt(100)))
	assert.True(t, FeeRate(CancelNormal, 5).Equal(decimal.NewFromInt(50)))
	assert.True(t, FeeRate(CancelStudent, 40).Equal(decimal.NewFromInt(100)))
}

func TestBuildSchedules(t *testing.T) {
	set := room.RoomSet{SetID: id.New(), SubIDs: []id.ID{id.New(), id.New()}}
	rooms := []*room.Room{
		{Record: entity.Record{BaseEntity: entity.BaseEntity{ID: set.SetID}}, Name: "全室"},
		{Record: entity.Record{BaseEntity: entity.BaseEntity{ID: set.SubIDs[0]}}, Name: "A"},
		{Record: entity.Record{BaseEntity: entity.BaseEntity{ID: set.SubIDs[1]}}, Name: "B"},
	}
	view := func(roomID id.ID, from, to int) *DetailView {
		v := &DetailView{}
		v.ID = id.New()
		v.RoomID = roomID
		v.Status = StatusOfficial
		v.Start, v.End = at(1, from, 0), at(1, to, 0)
		return v
	}
	details := []*DetailView{
		view(set.SetID, 18, 20),
		view(set.SubIDs[0], 9, 11),
		view(set.SubIDs[1], 10, 12),
	}

	t.Run("without room set", func(t *testing.T) {
		got := BuildSchedules(rooms, details, set, false)
		require.Len(t, got, 3)
		for _, rs := range got {
			assert.Len(t, rs.Details, 1)
		}
	})

	t.Run("with room set", func(t *testing.T) {
		got := BuildSchedules(rooms, details, set, true)
		require.Len(t, got, 3)

		setRow := got[0].Details
		require.Len(t, setRow, 2)
		assert.Equal(t, StatusBlocked, setRow[1].Status)
		assert.Equal(t, at(1, 9, 0), setRow[1].Start)
		assert.Equal(t, at(1, 12, 0), setRow[1].End, "sub-room ranges are merged")

		subRow := got[1].Details
		require.Len(t, subRow, 2)
		assert.Equal(t, StatusBlocked, subRow[1].Status)
		assert.True(t, id.IsNil(subRow[1].ID))
		assert.Equal(t, StatusOfficial, details[0].Status, "source rows are not modified")
	})
}
