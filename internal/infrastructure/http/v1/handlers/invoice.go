package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/billing"
	"venuedesk/internal/domain/invoice"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// BillingService is implemented by billing.Service.
type BillingService interface {
	ReconcileDetailItems(ctx context.Context, detailID id.ID, items []*invoice.Item) error
	CreateInvoice(ctx context.Context, req billing.IssueRequest) (*invoice.Invoice, error)
	EditInvoice(ctx context.Context, invoiceID id.ID, req billing.EditRequest) (billing.EditResult, error)
	DeleteInvoice(ctx context.Context, invoiceID id.ID) error
	CreateLobbyInvoice(ctx context.Context, req billing.LobbyRequest) (*invoice.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error)
	ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int64, error)
	PreviewAmounts(ctx context.Context, items []*invoice.Item) (invoice.Amounts, error)
}

// InvoiceHandler handles invoices, walk-in sales and draft items.
type InvoiceHandler struct {
	*BaseHandler
	service BillingService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service BillingService) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.InvoiceListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, inv)
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.CreateInvoice(c.Request.Context(), req.ToIssue(h.StaffID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, inv)
}

// Update handles PATCH /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.EditInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.EditInvoice(c.Request.Context(), invoiceID, req.ToEdit())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEditResult(res))
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInvoice(c.Request.Context(), invoiceID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// CreateLobby handles POST /lobby-invoices
func (h *InvoiceHandler) CreateLobby(c *gin.Context) {
	var req dto.LobbyInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.CreateLobbyInvoice(c.Request.Context(), req.ToLobby(h.StaffID(c)))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, inv)
}

// ReconcileItems handles POST /invoice-items
func (h *InvoiceHandler) ReconcileItems(c *gin.Context) {
	var req dto.ReconcileItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ReconcileDetailItems(c.Request.Context(), req.BookingDetailID, dto.ToItems(req.Items)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "")
}

// Amounts handles POST /invoice-amounts
func (h *InvoiceHandler) Amounts(c *gin.Context) {
	var req dto.AmountsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	amounts, err := h.service.PreviewAmounts(c.Request.Context(), dto.ToItems(req.Items))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, amounts)
}
