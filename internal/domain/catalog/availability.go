package catalog

import (
	"time"

	"venuedesk/internal/core/id"
)

// OtherCustomerBuffer widens the bookings of other customers when counting
// stock in use, leaving time to move equipment between rooms.
const OtherCustomerBuffer = 30 * time.Minute

// Usage is one booking detail holding units of a service.
type Usage struct {
	ServiceID       id.ID     `db:"service_id"`
	BookingDetailID id.ID     `db:"booking_detail_id"`
	CustomerID      id.ID     `db:"customer_id"`
	Start           time.Time `db:"start_datetime"`
	End             time.Time `db:"end_datetime"`
	UsageCount      int       `db:"usage_count"`
}

// Window is the period a customer wants to use services in.
type Window struct {
	CustomerID      id.ID
	Start           time.Time
	End             time.Time
	ExcludeDetailID id.ID
}

// Holds reports whether u occupies units during w.
func (w Window) Holds(u Usage) bool {
	if !id.IsNil(w.ExcludeDetailID) && u.BookingDetailID == w.ExcludeDetailID {
		return false
	}

	bs, be := u.Start, u.End
	if u.CustomerID != w.CustomerID {
		bs = bs.Add(-OtherCustomerBuffer)
		be = be.Add(OtherCustomerBuffer)
	}

	startInside := !w.Start.Before(bs) && w.Start.Before(be)
	endInside := w.End.After(bs) && !w.End.After(be)
	covers := !w.Start.After(bs) && !w.End.Before(be)
	return startInside || endInside || covers
}

// UsedCount sums the units held during w.
func (w Window) UsedCount(usages []Usage) int {
	total := 0
	for _, u := range usages {
		if w.Holds(u) {
			total += u.UsageCount
		}
	}
	return total
}

// Available returns the units of s that are still free given used units.
// Services without stock management report their configured count.
func Available(s *Service, used int) int {
	if s.StockCount == nil {
		return 0
	}
	available := *s.StockCount
	if s.HasStockManagement && *s.StockCount > 0 {
		available -= used
	}
	if available < 0 {
		return 0
	}
	return available
}

// Availability is a service with its free units for a window.
type Availability struct {
	Service        *Service `json:"service"`
	StockAvailable int      `json:"stockAvailable"`
}
