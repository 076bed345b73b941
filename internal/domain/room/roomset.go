package room

import "venuedesk/internal/core/id"

// RoomSet is a virtual room made of sub-rooms. The set and its sub-rooms
// cannot be occupied at the same time.
type RoomSet struct {
	SetID  id.ID
	SubIDs []id.ID
}

func (s RoomSet) isSub(roomID id.ID) bool {
	for _, sub := range s.SubIDs {
		if sub == roomID {
			return true
		}
	}
	return false
}

// Targets returns the rooms whose bookings conflict with a booking of
// roomID. Booking the set blocks every sub-room; booking a sub-room blocks
// the set but not its siblings.
func (s RoomSet) Targets(roomID id.ID) []id.ID {
	if id.IsNil(s.SetID) {
		return []id.ID{roomID}
	}
	if roomID == s.SetID {
		return append([]id.ID{s.SetID}, s.SubIDs...)
	}
	if s.isSub(roomID) {
		return []id.ID{roomID, s.SetID}
	}
	return []id.ID{roomID}
}

// BlockedBy returns the other rooms whose bookings make roomID unavailable.
func (s RoomSet) BlockedBy(roomID id.ID) []id.ID {
	var out []id.ID
	for _, target := range s.Targets(roomID) {
		if target != roomID {
			out = append(out, target)
		}
	}
	return out
}
