package auth

import (
	"context"

	"venuedesk/internal/core/id"
)

// StaffRepository defines staff storage operations.
type StaffRepository interface {
	Create(ctx context.Context, staff *Staff) error
	GetByID(ctx context.Context, staffID id.ID) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	Update(ctx context.Context, staff *Staff) error
	// List returns all staff, oldest first when ascending.
	List(ctx context.Context, ascending bool) ([]*Staff, error)
	EmailTaken(ctx context.Context, email string, exclude id.ID) (bool, error)
}

// TokenRepository defines token storage operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token.
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken retrieves refresh token by hash.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RevokeRefreshToken revokes a refresh token.
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllStaffTokens revokes all tokens for a staff member.
	RevokeAllStaffTokens(ctx context.Context, staffID id.ID, reason string) error

	// CleanupExpiredTokens removes expired tokens.
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
