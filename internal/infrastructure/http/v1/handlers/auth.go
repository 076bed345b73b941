package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/auth"
	"venuedesk/internal/infrastructure/http/v1/dto"
)

// AuthService is implemented by auth.Service.
type AuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.TokenPair, *auth.Staff, error)
	RefreshToken(ctx context.Context, refreshToken, userAgent, ip string) (*auth.TokenPair, error)
	Logout(ctx context.Context, staffID id.ID) error
	GetStaff(ctx context.Context, staffID id.ID) (*auth.Staff, error)
	ListStaff(ctx context.Context, ascending bool) ([]*auth.Staff, error)
	CreateStaff(ctx context.Context, in auth.StaffInput) (*auth.Staff, error)
	UpdateStaff(ctx context.Context, staffID id.ID, in auth.StaffInput) (*auth.Staff, error)
}

// AuthHandler handles authentication and staff account endpoints.
type AuthHandler struct {
	*BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, staff, err := h.service.Login(ctx, req.ToCredentials(c.Request.UserAgent(), c.ClientIP()))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		Staff:  dto.FromStaff(staff),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(ctx, req.RefreshToken, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	staffID := h.StaffID(c)
	if id.IsNil(staffID) {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	if err := h.service.Logout(c.Request.Context(), staffID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /me
func (h *AuthHandler) Me(c *gin.Context) {
	staffID := h.StaffID(c)
	if id.IsNil(staffID) {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	staff, err := h.service.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStaff(staff))
}

// ListStaff handles GET /staffs. ?order=desc reverses the name order.
func (h *AuthHandler) ListStaff(c *gin.Context) {
	staff, err := h.service.ListStaff(c.Request.Context(), c.Query("order") != "desc")
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.StaffResponse, len(staff))
	for i, s := range staff {
		items[i] = dto.FromStaff(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetStaff handles GET /staffs/:id
func (h *AuthHandler) GetStaff(c *gin.Context) {
	staffID, ok := h.ParamID(c)
	if !ok {
		return
	}

	staff, err := h.service.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStaff(staff))
}

// CreateStaff handles POST /staffs
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req dto.StaffRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Password == "" {
		h.Error(c, apperror.NewValidation("password is required").WithDetail("field", "password"))
		return
	}

	staff, err := h.service.CreateStaff(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromStaff(staff))
}

// UpdateStaff handles PATCH /staffs/:id
func (h *AuthHandler) UpdateStaff(c *gin.Context) {
	staffID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.StaffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	staff, err := h.service.UpdateStaff(c.Request.Context(), staffID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStaff(staff))
}
