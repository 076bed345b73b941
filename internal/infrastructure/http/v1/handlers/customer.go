package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/domain/customer"
	"venuedesk/internal/infrastructure/export/xlsx"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// CustomerService is implemented by customer.Service.
type CustomerService interface {
	MasterService[*customer.Customer]
	ExportRows(ctx context.Context, filter customer.ExportFilter) ([]customer.ExportRow, error)
}

// CustomerHandler handles the customer registry.
type CustomerHandler struct {
	*MasterHandler[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]
	customers CustomerService
	workbooks *WorkbookSender
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, svc CustomerService, workbooks *WorkbookSender) *CustomerHandler {
	return &CustomerHandler{
		MasterHandler: NewMasterHandler(base, MasterHandlerConfig[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]{
			Service:    svc,
			EntityName: "customer",
			MapCreateDTO: func(req dto.CustomerRequest, now time.Time) *customer.Customer {
				return req.ToCustomer(now)
			},
			MapUpdateDTO: func(req dto.CustomerRequest, existing *customer.Customer) *customer.Customer {
				req.Apply(existing)
				existing.Touch(time.Now())
				return existing
			},
		}),
		customers: svc,
		workbooks: workbooks,
	}
}

// Export handles POST /customers/export and streams the customer list.
func (h *CustomerHandler) Export(c *gin.Context) {
	var req dto.CustomerExportRequest
	if !h.BindJSON(c, &req) {
		return
	}
	filter, err := req.ToFilter(h.Location())
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.customers.ExportRows(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	now := h.Now()
	wb, err := xlsx.CustomerList(rows, now, h.Location())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.workbooks.Send(c, h.BaseHandler, wb, "customers", now.In(h.Location()).Format("20060102"))
}
