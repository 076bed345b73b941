package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/tariff"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// BookingService is implemented by booking.Service.
type BookingService interface {
	ValidateDetail(ctx context.Context, d *booking.Detail) error
	Save(ctx context.Context, b *booking.Booking) (*booking.Booking, error)
	GetBooking(ctx context.Context, bookingID id.ID) (*booking.Booking, error)
	ListDetails(ctx context.Context, filter booking.ListFilter) ([]*booking.DetailView, int64, error)
	GetDetail(ctx context.Context, detailID id.ID) (*booking.Detail, error)
	Price(ctx context.Context, detailID id.ID) (tariff.Breakdown, error)
	CancelDetail(ctx context.Context, detailID id.ID, req booking.CancelRequest) (*booking.Detail, error)
	EditDetail(ctx context.Context, detailID id.ID, patch booking.DetailPatch) (*booking.Detail, error)
	ChangeStatuses(ctx context.Context, change booking.StatusChange) error
}

// BookingHandler handles bookings and their details.
type BookingHandler struct {
	*BaseHandler
	service BookingService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(base *BaseHandler, service BookingService) *BookingHandler {
	return &BookingHandler{BaseHandler: base, service: service}
}

// List handles GET /bookings. It lists booking details with their
// booking, room and customer.
func (h *BookingHandler) List(c *gin.Context) {
	var req dto.DetailListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter(h.Location())
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.ListDetails(c.Request.Context(), filter)
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

// Save handles POST /bookings. A body with id updates the booking.
func (h *BookingHandler) Save(c *gin.Context) {
	var req dto.BookingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	b, err := req.ToBooking(h.StaffID(c), h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}
	isUpdate := !id.IsNil(b.ID)

	saved, err := h.service.Save(c.Request.Context(), b)
	if err != nil {
		h.Error(c, err)
		return
	}

	if isUpdate {
		h.OK(c, saved)
		return
	}
	h.Created(c, saved)
}

// Get handles GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	bookingID, ok := h.ParamID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ValidateDetail handles POST /booking-details/validate
func (h *BookingHandler) ValidateDetail(c *gin.Context) {
	var req dto.DetailRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := req.ToDetail(h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.ValidateDetail(c.Request.Context(), d); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// GetDetail handles GET /booking-details/:id
func (h *BookingHandler) GetDetail(c *gin.Context) {
	detailID, ok := h.ParamID(c)
	if !ok {
		return
	}

	d, err := h.service.GetDetail(c.Request.Context(), detailID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}

// EditDetail handles PATCH /booking-details/:id
func (h *BookingHandler) EditDetail(c *gin.Context) {
	detailID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.DetailPatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	patch, err := req.ToPatch(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	d, err := h.service.EditDetail(c.Request.Context(), detailID, patch)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// ChangeStatuses handles PATCH /booking-details
func (h *BookingHandler) ChangeStatuses(c *gin.Context) {
	var req dto.StatusChangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	change, err := req.ToChange(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.ChangeStatuses(c.Request.Context(), change); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Cancel handles POST /booking-details/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	detailID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.CancelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cancel, err := req.ToCancel(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	d, err := h.service.CancelDetail(c.Request.Context(), detailID, cancel)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Price handles GET /booking-details/:id/price
func (h *BookingHandler) Price(c *gin.Context) {
	detailID, ok := h.ParamID(c)
	if !ok {
		return
	}

	breakdown, err := h.service.Price(c.Request.Context(), detailID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}
