// Package room manages meeting rooms, room sets and their tariff history.
package room

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
)

// Room is a rentable meeting room. Rooms are disabled, never deleted.
type Room struct {
	entity.Record

	Name      string          `db:"name" json:"name"`
	Capacity  int             `db:"capacity" json:"capacity"`
	Area      decimal.Decimal `db:"area" json:"area"`
	IsEnabled bool            `db:"is_enabled" json:"isEnabled"`
	SortOrder int             `db:"sort_order" json:"sortOrder"`
}

// NewRoom creates an enabled room.
func NewRoom(name string, capacity int, area decimal.Decimal, now time.Time) *Room {
	return &Room{
		Record:    entity.NewRecord(now),
		Name:      strings.TrimSpace(name),
		Capacity:  capacity,
		Area:      area,
		IsEnabled: true,
	}
}

// Validate implements entity.Validatable.
func (r *Room) Validate(_ context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if r.Capacity < 0 {
		return apperror.NewValidation("capacity must not be negative")
	}
	if r.Area.IsNegative() {
		return apperror.NewValidation("area must not be negative")
	}
	return nil
}

// Charge is a tariff valid for a room from StartDate to EndDate inclusive.
// A nil EndDate marks the current open-ended tariff.
type Charge struct {
	entity.Record

	RoomID          id.ID                `db:"room_id" json:"roomId"`
	BasicAmount     decimal.Decimal      `db:"basic_amount" json:"basicAmount"`
	ExtensionAmount decimal.Decimal      `db:"extension_amount" json:"extensionAmount"`
	AllDayAmount    decimal.Decimal      `db:"all_day_amount" json:"allDayAmount"`
	SubtotalType    catalog.SubtotalType `db:"subtotal_type" json:"subtotalType"`
	StartDate       time.Time            `db:"start_date" json:"startDate"`
	EndDate         *time.Time           `db:"end_date" json:"endDate,omitempty"`
}

// Validate implements entity.Validatable.
func (c *Charge) Validate(_ context.Context) error {
	if id.IsNil(c.RoomID) {
		return apperror.NewValidation("room is required").WithDetail("field", "roomId")
	}
	for field, v := range map[string]decimal.Decimal{
		"basicAmount":     c.BasicAmount,
		"extensionAmount": c.ExtensionAmount,
		"allDayAmount":    c.AllDayAmount,
	} {
		if v.IsNegative() {
			return apperror.NewValidation("amount must not be negative").WithDetail("field", field)
		}
	}
	if !c.SubtotalType.Valid() {
		return apperror.NewValidation("invalid subtotal type").WithDetail("subtotalType", int(c.SubtotalType))
	}
	if c.StartDate.IsZero() {
		return apperror.NewValidation("start date is required").WithDetail("field", "startDate")
	}
	return nil
}

// ActiveOn reports whether the charge applies on day (see types.Day).
func (c *Charge) ActiveOn(day time.Time) bool {
	if c.StartDate.After(day) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(day)
}
