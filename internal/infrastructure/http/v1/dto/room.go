package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/room"
)

// RatesRequest carries the prices of a tariff.
type RatesRequest struct {
	BasicAmount     decimal.Decimal      `json:"basicAmount"`
	ExtensionAmount decimal.Decimal      `json:"extensionAmount"`
	AllDayAmount    decimal.Decimal      `json:"allDayAmount"`
	SubtotalType    catalog.SubtotalType `json:"subtotalType" binding:"required"`
}

// ToRates converts to the domain rates.
func (r RatesRequest) ToRates() room.Rates {
	return room.Rates{
		BasicAmount:     r.BasicAmount,
		ExtensionAmount: r.ExtensionAmount,
		AllDayAmount:    r.AllDayAmount,
		SubtotalType:    r.SubtotalType,
	}
}

// CreateRoomRequest creates a room with its first tariff.
type CreateRoomRequest struct {
	Name      string          `json:"name" binding:"required"`
	Capacity  int             `json:"capacity"`
	Area      decimal.Decimal `json:"area"`
	SortOrder int             `json:"sortOrder"`
	RatesRequest
}

// ToRoom maps the request to a new room.
func (r CreateRoomRequest) ToRoom(now time.Time) *room.Room {
	rm := room.NewRoom(r.Name, r.Capacity, r.Area, now)
	rm.SortOrder = r.SortOrder
	return rm
}

// UpdateRoomRequest edits a room. RoomChargeID with EndDate closes or
// reopens one of its tariffs; an empty EndDate reopens it.
type UpdateRoomRequest struct {
	Name         *string          `json:"name"`
	Capacity     *int             `json:"capacity"`
	Area         *decimal.Decimal `json:"area"`
	IsEnabled    *bool            `json:"isEnabled"`
	SortOrder    *int             `json:"sortOrder"`
	RoomChargeID *id.ID           `json:"roomChargeId"`
	EndDate      *string          `json:"endDate"`
}

// Apply copies the set fields onto rm.
func (r UpdateRoomRequest) Apply(rm *room.Room) {
	if r.Name != nil {
		rm.Name = *r.Name
	}
	if r.Capacity != nil {
		rm.Capacity = *r.Capacity
	}
	if r.Area != nil {
		rm.Area = *r.Area
	}
	if r.IsEnabled != nil {
		rm.IsEnabled = *r.IsEnabled
	}
	if r.SortOrder != nil {
		rm.SortOrder = *r.SortOrder
	}
}

// EndDateChange returns the requested tariff change, or nil.
func (r UpdateRoomRequest) EndDateChange() (*room.EndDateChange, error) {
	if r.RoomChargeID == nil {
		return nil, nil
	}
	change := &room.EndDateChange{ChargeID: *r.RoomChargeID}
	if r.EndDate != nil && *r.EndDate != "" {
		day, err := parseDay(*r.EndDate)
		if err != nil {
			return nil, err
		}
		change.EndDate = &day
	}
	return change, nil
}

// RoomResponse is a room with its tariff created alongside.
type RoomResponse struct {
	*room.Room
	RoomCharge *room.Charge `json:"roomCharge,omitempty"`
}

// CreateChargeRequest schedules a tariff change.
type CreateChargeRequest struct {
	RoomID    id.ID  `json:"roomId" binding:"required"`
	StartDate string `json:"startDate" binding:"required"`
	RatesRequest
}

// Start parses the start date.
func (r CreateChargeRequest) Start() (time.Time, error) {
	return parseDay(r.StartDate)
}
