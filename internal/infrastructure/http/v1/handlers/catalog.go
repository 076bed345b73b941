// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// MasterService is the part of domain.MasterService the handlers use.
type MasterService[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	Update(ctx context.Context, entity T) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// MasterHandler provides generic HTTP handlers for master data entities.
type MasterHandler[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    MasterService[T]
	entityName string

	// Mapper functions
	mapCreateDTO func(dto CreateDTO, now time.Time) T
	mapUpdateDTO func(dto UpdateDTO, existing T) T
}

// MasterHandlerConfig configures the master handler.
type MasterHandlerConfig[T entity.Validatable, CreateDTO any, UpdateDTO any] struct {
	Service      MasterService[T]
	EntityName   string
	MapCreateDTO func(dto CreateDTO, now time.Time) T
	MapUpdateDTO func(dto UpdateDTO, existing T) T
}

// NewMasterHandler creates a new master handler.
func NewMasterHandler[T entity.Validatable, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg MasterHandlerConfig[T, CreateDTO, UpdateDTO],
) *MasterHandler[T, CreateDTO, UpdateDTO] {
	return &MasterHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{entity} - list with filtering and pagination.
func (h *MasterHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", filter.OrderBy)
	filter.OnlyEnabled = c.Query("onlyEnabled") == "true"

	if raw := c.Query("ids"); raw != "" {
		ids, err := id.ParseList(raw)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.IDs = ids
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{entity}/:id - get single entity.
func (h *MasterHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, entity)
}

// Create handles POST /{entity} - create new entity.
func (h *MasterHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	entity := h.mapCreateDTO(req, h.Now())

	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity)
}

// Update handles PATCH /{entity}/:id - update existing entity.
func (h *MasterHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	entity := h.mapUpdateDTO(req, existing)

	if err := h.service.Update(ctx, entity); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}
