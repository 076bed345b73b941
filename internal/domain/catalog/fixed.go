package catalog

import (
	"fmt"

	"venuedesk/internal/core/id"
)

// FixedServiceIDs pins the services generated by the system itself.
type FixedServiceIDs struct {
	BasicFee     id.ID
	ExtensionFee id.ID
	AllDayFee    id.ID
	IncurredFee  id.ID
	CancelFee    id.ID
}

// RoomFees returns the ids of the four room fee services.
func (f FixedServiceIDs) RoomFees() []id.ID {
	return []id.ID{f.BasicFee, f.ExtensionFee, f.AllDayFee, f.IncurredFee}
}

// IsRoomFee reports whether serviceID is one of the room fee services.
func (f FixedServiceIDs) IsRoomFee(serviceID id.ID) bool {
	for _, v := range f.RoomFees() {
		if v == serviceID {
			return true
		}
	}
	return false
}

// Validate checks that every fixed id is set and distinct.
func (f FixedServiceIDs) Validate() error {
	all := append(f.RoomFees(), f.CancelFee)
	seen := make(map[id.ID]struct{}, len(all))
	for _, v := range all {
		if id.IsNil(v) {
			return fmt.Errorf("fixed service id is not configured")
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("fixed service id %s is used twice", v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
