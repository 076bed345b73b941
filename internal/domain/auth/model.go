// Package auth provides staff authentication.
package auth

import (
	"context"
	"strings"
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
)

// Staff is a back office user.
type Staff struct {
	entity.Record

	Email               string     `db:"email" json:"email"`
	Name                string     `db:"name" json:"name"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
}

// NewStaff creates an active staff member.
func NewStaff(email, name, passwordHash string, now time.Time) *Staff {
	return &Staff{
		Record:       entity.NewRecord(now),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}

// Validate validates staff data.
func (s *Staff) Validate(_ context.Context) error {
	if s.Email == "" || !strings.Contains(s.Email, "@") {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// IsLocked returns true if account is locked at now.
func (s *Staff) IsLocked(now time.Time) bool {
	if s.LockedUntil == nil {
		return false
	}
	return now.Before(*s.LockedUntil)
}

// CanLogin checks if staff can login.
func (s *Staff) CanLogin(now time.Time) error {
	if !s.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if s.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (s *Staff) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	s.FailedLoginAttempts++
	if s.FailedLoginAttempts >= maxAttempts {
		lockUntil := now.Add(lockDuration)
		s.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (s *Staff) RecordSuccessfulLogin(now time.Time) {
	s.FailedLoginAttempts = 0
	s.LockedUntil = nil
	s.LastLoginAt = &now
}

// RefreshToken represents a refresh token for JWT refresh.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	StaffID       id.ID      `db:"staff_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason *string    `db:"revoked_reason"`
	UserAgent     string     `db:"user_agent"`
	IPAddress     string     `db:"ip_address"`
}

// IsValid checks if refresh token is valid at now.
func (t *RefreshToken) IsValid(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// StaffInput creates or edits a staff member. An empty Password keeps
// the current one on edit.
type StaffInput struct {
	Email    string
	Name     string
	Password string
	IsActive *bool
}
