package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/domain/operations"
	"venuedesk/internal/infrastructure/export/xlsx"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// OperationsService is implemented by operations.Service.
type OperationsService interface {
	DailyBusiness(ctx context.Context, day time.Time) (*operations.DailyBusinessReport, error)
	ServiceSchedules(ctx context.Context, day time.Time) ([]operations.ServiceSchedule, error)
}

// OperationsHandler serves the front desk day sheets.
type OperationsHandler struct {
	*BaseHandler
	service   OperationsService
	workbooks *WorkbookSender
}

// NewOperationsHandler creates a new day sheet handler.
func NewOperationsHandler(base *BaseHandler, service OperationsService, workbooks *WorkbookSender) *OperationsHandler {
	return &OperationsHandler{BaseHandler: base, service: service, workbooks: workbooks}
}

// DailyBusiness handles GET /reports/daily-business?bookingDate=yyyy-mm-dd
func (h *OperationsHandler) DailyBusiness(c *gin.Context) {
	var req dto.DailyBusinessRequest
	if !h.BindQuery(c, &req) {
		return
	}
	day, err := dto.ParseDay(req.BookingDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.DailyBusiness(c.Request.Context(), h.Midnight(day))
	if err != nil {
		h.Error(c, err)
		return
	}
	if req.Format != dto.FormatXLSX {
		c.JSON(http.StatusOK, report)
		return
	}
	wb, err := xlsx.DailyBusiness(report)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.workbooks.Send(c, h.BaseHandler, wb, "daily-business", day.Format("20060102"))
}

// ServiceSchedules handles GET /service-schedules?date=yyyy-mm-dd. Today
// when date is omitted.
func (h *OperationsHandler) ServiceSchedules(c *gin.Context) {
	day := h.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := dto.ParseDay(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		day = h.Midnight(parsed)
	}

	schedules, err := h.service.ServiceSchedules(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedules})
}
