package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/holiday"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// HolidayService is implemented by holiday.Service.
type HolidayService interface {
	Upcoming(ctx context.Context) ([]*holiday.Holiday, error)
	Between(ctx context.Context, from, to time.Time) ([]*holiday.Holiday, error)
	Register(ctx context.Context, holidays []*holiday.Holiday) error
	Remove(ctx context.Context, ids []id.ID) error
	IsHoliday(ctx context.Context, day time.Time) (bool, error)
}

// HolidayHandler manages the calendar of closed days.
type HolidayHandler struct {
	*BaseHandler
	service HolidayService
}

// NewHolidayHandler creates a new holiday handler.
func NewHolidayHandler(base *BaseHandler, service HolidayService) *HolidayHandler {
	return &HolidayHandler{BaseHandler: base, service: service}
}

// List handles GET /holidays. Without from/to the upcoming days are listed.
func (h *HolidayHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		items, err := h.service.Upcoming(ctx)
		if err != nil {
			h.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
		return
	}

	fromDay, err := dto.ParseDay(from)
	if err != nil {
		h.Error(c, err)
		return
	}
	toDay, err := dto.ParseDay(to)
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.Between(ctx, h.Midnight(fromDay), h.Midnight(toDay))
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Register handles POST /holidays
func (h *HolidayHandler) Register(c *gin.Context) {
	var req dto.RegisterHolidaysRequest
	if !h.BindJSON(c, &req) {
		return
	}
	holidays, err := req.ToHolidays()
	if err != nil {
		h.Error(c, err)
		return
	}
	for _, hd := range holidays {
		hd.Date = h.Midnight(hd.Date)
	}

	if err := h.service.Register(c.Request.Context(), holidays); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, gin.H{"items": holidays})
}

// Delete handles POST /holidays/delete
func (h *HolidayHandler) Delete(c *gin.Context) {
	var req dto.IDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Remove(c.Request.Context(), req.IDs); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Check handles GET /holidays/check?date=yyyy-mm-dd
func (h *HolidayHandler) Check(c *gin.Context) {
	day, err := dto.ParseDay(c.Query("date"))
	if err != nil {
		h.Error(c, err)
		return
	}

	closed, err := h.service.IsHoliday(c.Request.Context(), h.Midnight(day))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "isHoliday": closed})
}
