package booking

import (
	"time"

	"venuedesk/internal/core/id"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether an existing booking e conflicts with candidate c.
// Intervals that only touch do not conflict.
func (e Interval) Overlaps(c Interval) bool {
	startsInside := c.Start.Before(e.Start) && e.Start.Before(c.End)
	endsInside := c.Start.Before(e.End) && e.End.Before(c.End)
	covers := !e.Start.After(c.Start) && !c.End.After(e.End)
	return startsInside || endsInside || covers
}

// InactiveStatuses are the statuses whose details never block a room.
var InactiveStatuses = []Status{StatusWaitingCancel, StatusCanceled}

// OverlapQuery describes the details a candidate may not overlap.
type OverlapQuery struct {
	RoomIDs         []id.ID
	Interval        Interval
	ExcludeDetailID id.ID
}

// Matches applies the query to a stored detail. Repositories translate the
// same rule into SQL.
func (q OverlapQuery) Matches(d *Detail) bool {
	if d.IsCanceled() || !d.Status.Active() {
		return false
	}
	if !id.IsNil(q.ExcludeDetailID) && d.ID == q.ExcludeDetailID {
		return false
	}
	inRoom := false
	for _, roomID := range q.RoomIDs {
		if roomID == d.RoomID {
			inRoom = true
			break
		}
	}
	return inRoom && d.Interval().Overlaps(q.Interval)
}
