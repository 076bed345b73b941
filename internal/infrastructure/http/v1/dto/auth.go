package dto

import (
	"time"

	"venuedesk/internal/domain/auth"
)

// --- Request DTOs ---

// LoginRequest for staff login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials(userAgent, ip string) auth.Credentials {
	return auth.Credentials{
		Email:     r.Email,
		Password:  r.Password,
		UserAgent: userAgent,
		IPAddress: ip,
	}
}

// RefreshTokenRequest for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// StaffRequest creates or edits a staff account.
type StaffRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"omitempty,min=8"`
	IsActive *bool  `json:"isActive"`
}

// ToInput converts to the domain input.
func (r *StaffRequest) ToInput() auth.StaffInput {
	return auth.StaffInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
		IsActive: r.IsActive,
	}
}

// --- Response DTOs ---

// TokenResponse represents token pair response.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// FromTokenPair creates response from domain token pair.
func FromTokenPair(tp *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  tp.AccessToken,
		RefreshToken: tp.RefreshToken,
		ExpiresAt:    tp.ExpiresAt,
		TokenType:    tp.TokenType,
	}
}

// StaffResponse represents a staff member in API responses.
type StaffResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FromStaff creates response from domain staff.
func FromStaff(s *auth.Staff) *StaffResponse {
	return &StaffResponse{
		ID:          s.ID.String(),
		Email:       s.Email,
		Name:        s.Name,
		IsActive:    s.IsActive,
		LastLoginAt: s.LastLoginAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// LoginResponse combines tokens and staff profile.
type LoginResponse struct {
	Tokens *TokenResponse `json:"tokens"`
	Staff  *StaffResponse `json:"staff"`
}
