package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/room"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// RoomService is implemented by room.Service.
type RoomService interface {
	MasterService[*room.Room]
	CreateRoom(ctx context.Context, rm *room.Room, rates room.Rates) (*room.Charge, error)
	UpdateRoom(ctx context.Context, rm *room.Room, change *room.EndDateChange) error
	CreateCharge(ctx context.Context, roomID id.ID, rates room.Rates, start time.Time) (*room.Charge, error)
	DeleteCharge(ctx context.Context, chargeID id.ID) error
	ListCharges(ctx context.Context, roomID id.ID) ([]*room.Charge, error)
}

// ScheduleService is implemented by booking.Service.
type ScheduleService interface {
	RoomSchedules(ctx context.Context, day time.Time, withRoomSet bool) ([]booking.RoomSchedule, error)
}

// RoomHandler handles rooms, their tariffs and the daily room schedule.
type RoomHandler struct {
	*MasterHandler[*room.Room, dto.CreateRoomRequest, dto.UpdateRoomRequest]
	rooms     RoomService
	schedules ScheduleService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(base *BaseHandler, rooms RoomService, schedules ScheduleService) *RoomHandler {
	return &RoomHandler{
		MasterHandler: NewMasterHandler(base, MasterHandlerConfig[*room.Room, dto.CreateRoomRequest, dto.UpdateRoomRequest]{
			Service:    rooms,
			EntityName: "room",
		}),
		rooms:     rooms,
		schedules: schedules,
	}
}

// Create handles POST /rooms. The room is stored with its first tariff.
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rm := req.ToRoom(h.Now())
	charge, err := h.rooms.CreateRoom(c.Request.Context(), rm, req.ToRates())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.RoomResponse{Room: rm, RoomCharge: charge})
}

// Update handles PATCH /rooms/:id
func (h *RoomHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	roomID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.UpdateRoomRequest
	if !h.BindJSON(c, &req) {
		return
	}
	change, err := req.EndDateChange()
	if err != nil {
		h.Error(c, err)
		return
	}

	rm, err := h.rooms.GetByID(ctx, roomID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.Apply(rm)

	if err := h.rooms.UpdateRoom(ctx, rm, change); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rm)
}

// ListCharges handles GET /room-charges?roomId=
func (h *RoomHandler) ListCharges(c *gin.Context) {
	roomID, err := id.Parse(c.Query("roomId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("roomId is required").WithDetail("field", "roomId"))
		return
	}

	charges, err := h.rooms.ListCharges(c.Request.Context(), roomID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": charges})
}

// CreateCharge handles POST /room-charges
func (h *RoomHandler) CreateCharge(c *gin.Context) {
	var req dto.CreateChargeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	start, err := req.Start()
	if err != nil {
		h.Error(c, err)
		return
	}

	charge, err := h.rooms.CreateCharge(c.Request.Context(), req.RoomID, req.ToRates(), start)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, charge)
}

// DeleteCharge handles DELETE /room-charges/:id
func (h *RoomHandler) DeleteCharge(c *gin.Context) {
	chargeID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.rooms.DeleteCharge(c.Request.Context(), chargeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Schedules handles GET /room-schedules?date=yyyy-mm-dd&withRoomSet=true
func (h *RoomHandler) Schedules(c *gin.Context) {
	day := h.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := dto.ParseDay(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		day = h.Midnight(parsed)
	}

	schedules, err := h.schedules.RoomSchedules(c.Request.Context(), day, c.Query("withRoomSet") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": schedules})
}
