package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/domain/catalog"
)

// CreateServiceRequest creates a billable service.
type CreateServiceRequest struct {
	Name               string               `json:"name" binding:"required"`
	Type               catalog.ServiceType  `json:"type" binding:"required"`
	SubtotalType       catalog.SubtotalType `json:"subtotalType" binding:"required"`
	LocationType       catalog.LocationType `json:"locationType" binding:"required"`
	UnitPrice          decimal.Decimal      `json:"unitPrice"`
	HasStockManagement bool                 `json:"hasStockManagement"`
	StockCount         *int                 `json:"stockCount"`
}

// ToService maps the request to a new service.
func (r CreateServiceRequest) ToService(now time.Time) *catalog.Service {
	s := catalog.NewService(r.Name, r.Type, r.SubtotalType, r.LocationType, r.UnitPrice, now)
	s.SetStock(r.HasStockManagement, r.StockCount)
	return s
}

// UpdateServiceRequest edits a service. Nil fields are kept.
type UpdateServiceRequest struct {
	Name               *string               `json:"name"`
	Type               *catalog.ServiceType  `json:"type"`
	SubtotalType       *catalog.SubtotalType `json:"subtotalType"`
	LocationType       *catalog.LocationType `json:"locationType"`
	UnitPrice          *decimal.Decimal      `json:"unitPrice"`
	HasStockManagement *bool                 `json:"hasStockManagement"`
	StockCount         *int                  `json:"stockCount"`
	IsEnabled          *bool                 `json:"isEnabled"`
}

// Apply copies the set fields onto s.
func (r UpdateServiceRequest) Apply(s *catalog.Service) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Type != nil {
		s.Type = *r.Type
	}
	if r.SubtotalType != nil {
		s.SubtotalType = *r.SubtotalType
	}
	if r.LocationType != nil {
		s.LocationType = *r.LocationType
	}
	if r.UnitPrice != nil {
		s.UnitPrice = *r.UnitPrice
	}
	if r.IsEnabled != nil {
		s.IsEnabled = *r.IsEnabled
	}
	if r.HasStockManagement != nil || r.StockCount != nil {
		managed := s.HasStockManagement
		if r.HasStockManagement != nil {
			managed = *r.HasStockManagement
		}
		count := s.StockCount
		if r.StockCount != nil {
			count = r.StockCount
		}
		s.SetStock(managed, count)
	}
}
