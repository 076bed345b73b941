package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// CatalogService is implemented by catalog.Manager.
type CatalogService interface {
	MasterService[*catalog.Service]
	Availability(ctx context.Context, window catalog.Window, filter catalog.AvailabilityFilter) ([]catalog.Availability, error)
}

// ServiceHandler handles the billable service catalog.
type ServiceHandler struct {
	*MasterHandler[*catalog.Service, dto.CreateServiceRequest, dto.UpdateServiceRequest]
	catalog CatalogService
}

// NewServiceHandler creates a new service handler.
func NewServiceHandler(base *BaseHandler, svc CatalogService) *ServiceHandler {
	return &ServiceHandler{
		MasterHandler: NewMasterHandler(base, MasterHandlerConfig[*catalog.Service, dto.CreateServiceRequest, dto.UpdateServiceRequest]{
			Service:    svc,
			EntityName: "service",
			MapCreateDTO: func(req dto.CreateServiceRequest, now time.Time) *catalog.Service {
				return req.ToService(now)
			},
			MapUpdateDTO: func(req dto.UpdateServiceRequest, existing *catalog.Service) *catalog.Service {
				req.Apply(existing)
				existing.Touch(time.Now())
				return existing
			},
		}),
		catalog: svc,
	}
}

// Availability handles GET /booking-detail-services. It lists the
// meeting-room services with the units still free between start and end.
//
//	?customerId=&start=RFC3339&end=RFC3339[&bookingDetailId=][&type=][&ids=a,b]
func (h *ServiceHandler) Availability(c *gin.Context) {
	window, ok := h.parseWindow(c)
	if !ok {
		return
	}

	var filter catalog.AvailabilityFilter
	if raw := c.Query("type"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !catalog.ServiceType(n).Valid() {
			h.Error(c, apperror.NewValidation("invalid service type").WithDetail("type", raw))
			return
		}
		typ := catalog.ServiceType(n)
		filter.Type = &typ
	}
	if raw := c.Query("ids"); raw != "" {
		ids, err := id.ParseList(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid ids").WithDetail("ids", raw))
			return
		}
		filter.IDs = ids
	}

	items, err := h.catalog.Availability(c.Request.Context(), window, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ServiceHandler) parseWindow(c *gin.Context) (catalog.Window, bool) {
	var w catalog.Window
	customerID, err := id.Parse(c.Query("customerId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("customerId is required").WithDetail("field", "customerId"))
		return w, false
	}
	start, err1 := time.Parse(time.RFC3339, c.Query("start"))
	end, err2 := time.Parse(time.RFC3339, c.Query("end"))
	if err1 != nil || err2 != nil || !end.After(start) {
		h.Error(c, apperror.NewInvalidInput().WithDetail("field", "start/end"))
		return w, false
	}
	w = catalog.Window{CustomerID: customerID, Start: start, End: end}
	if raw := c.Query("bookingDetailId"); raw != "" {
		detailID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid bookingDetailId"))
			return w, false
		}
		w.ExcludeDetailID = detailID
	}
	return w, true
}
