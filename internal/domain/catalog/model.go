// Package catalog holds the billable services offered with a room.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
)

// ServiceType is the revenue category of a service.
type ServiceType int

const (
	TypeBasicFee    ServiceType = 1
	TypeOvertimeFee ServiceType = 2
	TypeFood        ServiceType = 3
	TypeBoxLunch    ServiceType = 4
	TypeDrinks      ServiceType = 5
	TypeCancelFee   ServiceType = 6
	TypeDeliveryFee ServiceType = 7
	TypeCopyFee     ServiceType = 8
	TypeBringingFee ServiceType = 9
	TypePrepaidFee  ServiceType = 10
	TypeDeviceFee   ServiceType = 11
	TypeDevice      ServiceType = 12
)

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	return t >= TypeBasicFee && t <= TypeDevice
}

var typeLabels = map[ServiceType]string{
	TypeBasicFee:    "R2時間迄",
	TypeOvertimeFee: "R2時間超",
	TypeFood:        "料理",
	TypeBoxLunch:    "弁当",
	TypeDrinks:      "飲物",
	TypeCancelFee:   "キャンセル",
	TypeDeliveryFee: "通話料",
	TypeCopyFee:     "コピー",
	TypeBringingFee: "持込料",
	TypePrepaidFee:  "立替",
	TypeDeviceFee:   "機器使用料",
	TypeDevice:      "備品",
}

// TypeLabel returns the display label of t, or "" when unknown.
func TypeLabel(t ServiceType) string {
	return typeLabels[t]
}

// SubtotalType controls how an item enters the service-fee and tax bases.
type SubtotalType int

const (
	SubtotalServiceFee     SubtotalType = 1
	SubtotalConsumptionTax SubtotalType = 2
	SubtotalNonTaxable     SubtotalType = 3
)

// Valid reports whether t is a known subtotal type.
func (t SubtotalType) Valid() bool {
	return t >= SubtotalServiceFee && t <= SubtotalNonTaxable
}

var subtotalTypeLabels = map[SubtotalType]string{
	SubtotalServiceFee:     "サービス料対象",
	SubtotalConsumptionTax: "消費税対象",
	SubtotalNonTaxable:     "非課税",
}

// SubtotalTypeLabel returns the display label of t, or "" when unknown.
func SubtotalTypeLabel(t SubtotalType) string {
	return subtotalTypeLabels[t]
}

// LocationType tells where a service can be sold.
type LocationType int

const (
	LocationLobby       LocationType = 1
	LocationMeetingRoom LocationType = 2
)

// Valid reports whether t is a known location.
func (t LocationType) Valid() bool {
	return t == LocationLobby || t == LocationMeetingRoom
}

// Service is a billable item. Fixed services (room fees, cancellation fee)
// are ordinary rows whose ids are pinned by configuration.
type Service struct {
	entity.Record

	Name               string          `db:"name" json:"name"`
	Type               ServiceType     `db:"type" json:"type"`
	SubtotalType       SubtotalType    `db:"subtotal_type" json:"subtotalType"`
	LocationType       LocationType    `db:"location_type" json:"locationType"`
	UnitPrice          decimal.Decimal `db:"unit_price" json:"unitPrice"`
	StockCount         *int            `db:"stock_count" json:"stockCount,omitempty"`
	HasStockManagement bool            `db:"has_stock_management" json:"hasStockManagement"`
	IsEnabled          bool            `db:"is_enabled" json:"isEnabled"`
}

// NewService creates an enabled service.
func NewService(name string, typ ServiceType, subtotal SubtotalType, location LocationType, unitPrice decimal.Decimal, now time.Time) *Service {
	return &Service{
		Record:       entity.NewRecord(now),
		Name:         strings.TrimSpace(name),
		Type:         typ,
		SubtotalType: subtotal,
		LocationType: location,
		UnitPrice:    unitPrice,
		IsEnabled:    true,
	}
}

// SetStock configures stock management. A stock count is kept only when
// stock is managed.
func (s *Service) SetStock(managed bool, count *int) {
	s.HasStockManagement = managed
	if managed && count != nil {
		c := *count
		s.StockCount = &c
		return
	}
	s.StockCount = nil
}

// Validate implements entity.Validatable.
func (s *Service) Validate(_ context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !s.Type.Valid() {
		return apperror.NewValidation("invalid service type").WithDetail("type", int(s.Type))
	}
	if !s.SubtotalType.Valid() {
		return apperror.NewValidation("invalid subtotal type").WithDetail("subtotalType", int(s.SubtotalType))
	}
	if !s.LocationType.Valid() {
		return apperror.NewValidation("invalid location type").WithDetail("locationType", int(s.LocationType))
	}
	if s.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative")
	}
	if s.StockCount != nil && *s.StockCount < 0 {
		return apperror.NewValidation("stock count must not be negative")
	}
	return nil
}
