package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain"
	"venuedesk/internal/domain/room"
)

// RoomSchedule is a room with the details occupying it on a day.
type RoomSchedule struct {
	Room    *room.Room    `json:"room"`
	Details []*DetailView `json:"bookingDetails"`
}

// blockedCopy presents a detail of another room as a blocked slot.
func blockedCopy(v *DetailView) *DetailView {
	c := *v
	c.ID = id.Nil()
	c.Status = StatusBlocked
	return &c
}

// mergeRanges joins overlapping or touching blocked slots.
func mergeRanges(views []*DetailView) []*DetailView {
	if len(views) == 0 {
		return nil
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Start.Before(views[j].Start) })
	merged := []*DetailView{views[0]}
	for _, v := range views[1:] {
		last := merged[len(merged)-1]
		if !v.Start.After(last.End) {
			if v.End.After(last.End) {
				last.End = v.End
			}
			continue
		}
		merged = append(merged, v)
	}
	return merged
}

// BuildSchedules groups details by room. With withRoomSet, a booking of the
// room set shows as blocked on every sub-room and bookings of sub-rooms show
// as merged blocked ranges on the set.
func BuildSchedules(rooms []*room.Room, details []*DetailView, set room.RoomSet, withRoomSet bool) []RoomSchedule {
	byRoom := make(map[id.ID][]*DetailView, len(rooms))
	for _, d := range details {
		byRoom[d.RoomID] = append(byRoom[d.RoomID], d)
	}

	out := make([]RoomSchedule, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomSchedule{Room: r, Details: append([]*DetailView(nil), byRoom[r.ID]...)})
	}
	if !withRoomSet || id.IsNil(set.SetID) {
		return out
	}

	var fromSubs []*DetailView
	for _, sub := range set.SubIDs {
		for _, d := range byRoom[sub] {
			fromSubs = append(fromSubs, blockedCopy(d))
		}
	}
	for i := range out {
		roomID := out[i].Room.ID
		switch {
		case roomID == set.SetID:
			out[i].Details = append(out[i].Details, mergeRanges(fromSubs)...)
		case containsID(set.SubIDs, roomID):
			for _, d := range byRoom[set.SetID] {
				out[i].Details = append(out[i].Details, blockedCopy(d))
			}
		}
	}
	return out
}

// RoomSchedules returns the active details of every enabled room on day.
func (s *Service) RoomSchedules(ctx context.Context, day time.Time, withRoomSet bool) ([]RoomSchedule, error) {
	from := types.StartOfDay(day, s.cfg.Location)
	rooms, err := s.Rooms.List(ctx, domain.ListFilter{OnlyEnabled: true, OrderBy: "sort_order", Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	details, err := s.Repo.ListSchedule(ctx, ScheduleFilter{From: from, To: from.AddDate(0, 0, 1)})
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	return BuildSchedules(rooms.Items, details, s.cfg.RoomSet, withRoomSet), nil
}
