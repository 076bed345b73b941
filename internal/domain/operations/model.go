// Package operations builds the day sheets the front desk works from: the
// daily business report and the stock service schedules.
package operations

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/catalog"
)

// UsedService is a service booked on a detail.
type UsedService struct {
	ID       id.ID  `db:"id" json:"id"`
	DetailID id.ID  `db:"booking_detail_id" json:"-"`
	Name     string `db:"name" json:"name"`
	Count    int    `db:"usage_count" json:"count"`
}

// BusinessDetail is one meeting on the daily business report.
type BusinessDetail struct {
	ID              id.ID               `db:"id" json:"id"`
	BookingID       id.ID               `db:"booking_id" json:"bookingId"`
	RoomName        string              `db:"room_name" json:"roomName"`
	CustomerName    string              `db:"customer_name" json:"customerName"`
	Title           string              `db:"title" json:"title"`
	Start           time.Time           `db:"start_datetime" json:"startDatetime"`
	End             time.Time           `db:"end_datetime" json:"endDatetime"`
	LayoutType      *booking.LayoutType `db:"layout_type" json:"layoutType"`
	GuestCount      int                 `db:"guest_count" json:"guestCount"`
	ExtraTableCount int                 `db:"extra_table_count" json:"extraTableCount"`
	ExtraChairCount int                 `db:"extra_chair_count" json:"extraChairCount"`
	Note            string              `db:"note" json:"note"`

	StartTime    string        `db:"-" json:"startTime"`
	EndTime      string        `db:"-" json:"endTime"`
	LayoutName   string        `db:"-" json:"layoutName"`
	UsedServices []UsedService `db:"-" json:"usedServices"`
}

// DailyBusinessReport lists the official meetings of one day by room.
type DailyBusinessReport struct {
	Day      time.Time        `json:"bookingDate"`
	Details  []BusinessDetail `json:"bookingDetails"`
	IssuedAt time.Time        `json:"currentDate"`
}

// ScheduledUse is one booking of a stock service.
type ScheduledUse struct {
	BookingDetailServiceID id.ID           `db:"booking_detail_service_id" json:"bookingDetailServiceId"`
	ServiceID              id.ID           `db:"service_id" json:"serviceId"`
	UsageCount             int             `db:"usage_count" json:"serviceUsageCount"`
	Price                  decimal.Decimal `db:"price" json:"servicePrice"`
	DetailID               id.ID           `db:"booking_detail_id" json:"id"`
	BookingID              id.ID           `db:"booking_id" json:"bookingId"`
	RoomName               string          `db:"room_name" json:"roomName"`
	CustomerName           string          `db:"customer_name" json:"customerName"`
	Title                  string          `db:"title" json:"title"`
	Start                  time.Time       `db:"start_datetime" json:"startDatetime"`
	End                    time.Time       `db:"end_datetime" json:"endDatetime"`
	Status                 booking.Status  `db:"status" json:"status"`
	GuestCount             int             `db:"guest_count" json:"guestCount"`
}

// ServiceSchedule is a stock managed meeting room service with its bookings
// of the day.
type ServiceSchedule struct {
	ID         id.ID               `db:"id" json:"id"`
	Name       string              `db:"name" json:"name"`
	Type       catalog.ServiceType `db:"type" json:"type"`
	StockCount *int                `db:"stock_count" json:"stockCount"`

	Reserved int            `db:"-" json:"reservedCount"`
	Bookings []ScheduledUse `db:"-" json:"bookingDetails"`
}

// hiddenStatuses are the details left off the service schedules.
var hiddenStatuses = []booking.Status{booking.StatusCanceled, booking.StatusWaitingCancel}

// HiddenStatuses returns the statuses of details not shown on service
// schedules.
func HiddenStatuses() []booking.Status {
	return append([]booking.Status(nil), hiddenStatuses...)
}
