package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 14 * 24 * time.Hour,
	}
}

// Service provides staff authentication and management.
type Service struct {
	staffRepo  StaffRepository
	tokenRepo  TokenRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(
	staffRepo StaffRepository,
	tokenRepo TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		staffRepo:  staffRepo,
		tokenRepo:  tokenRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		now:        time.Now,
	}
}

// Login authenticates staff and returns tokens.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *Staff, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("get staff: %w", err)
	}

	now := s.now()
	if err := staff.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(creds.Password)); err != nil {
		staff.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.staffRepo.Update(ctx, staff); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "staff_id", staff.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	var tokens *TokenPair
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		tokens, err = s.generateTokenPair(ctx, staff, creds.UserAgent, creds.IPAddress)
		if err != nil {
			return fmt.Errorf("generate tokens: %w", err)
		}
		staff.RecordSuccessfulLogin(now)
		return s.staffRepo.Update(ctx, staff)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "staff logged in",
		"staff_id", staff.ID,
		"email", staff.Email)

	return tokens, staff, nil
}

// RefreshToken rotates a refresh token and issues a new pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken, userAgent, ip string) (*TokenPair, error) {
	token, err := s.tokenRepo.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid(s.now()) {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	staff, err := s.staffRepo.GetByID(ctx, token.StaffID)
	if err != nil {
		return nil, apperror.NewUnauthorized("staff not found")
	}
	if err := staff.CanLogin(s.now()); err != nil {
		return nil, err
	}

	var tokens *TokenPair
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.tokenRepo.RevokeRefreshToken(ctx, token.ID, "refreshed"); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		var err error
		tokens, err = s.generateTokenPair(ctx, staff, userAgent, ip)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// Logout revokes all refresh tokens of the staff member.
func (s *Service) Logout(ctx context.Context, staffID id.ID) error {
	if err := s.tokenRepo.RevokeAllStaffTokens(ctx, staffID, "logout"); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	logger.Info(ctx, "staff logged out", "staff_id", staffID)
	return nil
}

// GetStaff returns a staff member.
func (s *Service) GetStaff(ctx context.Context, staffID id.ID) (*Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, staffID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("staff", staffID.String())
		}
		return nil, err
	}
	return staff, nil
}

// StaffExists reports whether staffID names a staff member.
func (s *Service) StaffExists(ctx context.Context, staffID id.ID) (bool, error) {
	if _, err := s.staffRepo.GetByID(ctx, staffID); err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListStaff lists every staff member.
func (s *Service) ListStaff(ctx context.Context, ascending bool) ([]*Staff, error) {
	return s.staffRepo.List(ctx, ascending)
}

// CreateStaff registers a staff member.
func (s *Service) CreateStaff(ctx context.Context, in StaffInput) (*Staff, error) {
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	staff := NewStaff(in.Email, in.Name, hash, s.now())
	if in.IsActive != nil {
		staff.IsActive = *in.IsActive
	}
	if err := staff.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.staffRepo.EmailTaken(ctx, staff.Email, staff.ID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("staff", "email", staff.Email)
		}
		return s.staffRepo.Create(ctx, staff)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "staff created", "staff_id", staff.ID, "email", staff.Email)
	return staff, nil
}

// UpdateStaff edits a staff member.
func (s *Service) UpdateStaff(ctx context.Context, staffID id.ID, in StaffInput) (*Staff, error) {
	var staff *Staff
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		staff, err = s.GetStaff(ctx, staffID)
		if err != nil {
			return err
		}

		if in.Email != "" {
			staff.Email = NewStaff(in.Email, "", "", s.now()).Email
		}
		if in.Name != "" {
			staff.Name = in.Name
		}
		if in.IsActive != nil {
			staff.IsActive = *in.IsActive
		}
		if in.Password != "" {
			if staff.PasswordHash, err = s.hashPassword(in.Password); err != nil {
				return err
			}
		}
		if err := staff.Validate(ctx); err != nil {
			return err
		}

		taken, err := s.staffRepo.EmailTaken(ctx, staff.Email, staff.ID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("staff", "email", staff.Email)
		}

		staff.Touch(s.now())
		return s.staffRepo.Update(ctx, staff)
	})
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// CleanupExpiredTokens removes expired refresh tokens.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.CleanupExpiredTokens(ctx)
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) < s.config.PasswordMinLength {
		return "", apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// generateTokenPair creates access and refresh tokens.
func (s *Service) generateTokenPair(ctx context.Context, staff *Staff, userAgent, ip string) (*TokenPair, error) {
	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := s.now()
	refreshToken := &RefreshToken{
		ID:        id.New(),
		StaffID:   staff.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
		UserAgent: userAgent,
		IPAddress: ip,
	}
	if err := s.tokenRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(staff, refreshToken.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates SHA256 hash of token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
