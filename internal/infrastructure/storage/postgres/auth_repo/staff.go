// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/auth"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const staffColumns = `id, email, name, password_hash, is_active,
	last_login_at, failed_login_attempts, locked_until, created_at, updated_at`

// StaffRepo implements auth.StaffRepository.
type StaffRepo struct {
	txm *postgres.TxManager
}

// NewStaffRepo creates a new staff repository.
func NewStaffRepo(txm *postgres.TxManager) *StaffRepo {
	return &StaffRepo{txm: txm}
}

func scanStaff(row pgx.Row, s *auth.Staff) error {
	return row.Scan(
		&s.ID, &s.Email, &s.Name, &s.PasswordHash, &s.IsActive,
		&s.LastLoginAt, &s.FailedLoginAttempts, &s.LockedUntil,
		&s.CreatedAt, &s.UpdatedAt,
	)
}

// Create creates a new staff member.
func (r *StaffRepo) Create(ctx context.Context, staff *auth.Staff) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		INSERT INTO staffs (` + staffColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		staff.ID, staff.Email, staff.Name, staff.PasswordHash, staff.IsActive,
		staff.LastLoginAt, staff.FailedLoginAttempts, staff.LockedUntil,
		staff.CreatedAt, staff.UpdatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return apperror.NewDuplicate("staff", "email", staff.Email).WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}

	return nil
}

// GetByID retrieves staff by ID.
func (r *StaffRepo) GetByID(ctx context.Context, staffID id.ID) (*auth.Staff, error) {
	q := r.txm.GetQuerier(ctx)

	var staff auth.Staff
	err := scanStaff(q.QueryRow(ctx, `SELECT `+staffColumns+` FROM staffs WHERE id = $1`, staffID), &staff)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("staff", staffID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}

	return &staff, nil
}

// GetByEmail retrieves staff by email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*auth.Staff, error) {
	q := r.txm.GetQuerier(ctx)

	var staff auth.Staff
	err := scanStaff(q.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staffs WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	), &staff)
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("staff", email)
	}
	if err != nil {
		return nil, fmt.Errorf("query staff: %w", err)
	}

	return &staff, nil
}

// Update updates staff data.
func (r *StaffRepo) Update(ctx context.Context, staff *auth.Staff) error {
	q := r.txm.GetQuerier(ctx)

	query := `
		UPDATE staffs SET
			email = $2, name = $3, password_hash = $4, is_active = $5,
			last_login_at = $6, failed_login_attempts = $7, locked_until = $8,
			updated_at = $9
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		staff.ID, staff.Email, staff.Name, staff.PasswordHash, staff.IsActive,
		staff.LastLoginAt, staff.FailedLoginAttempts, staff.LockedUntil,
		staff.UpdatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return apperror.NewDuplicate("staff", "email", staff.Email).WithCause(err)
	}
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("staff", staff.ID.String())
	}

	return nil
}

// List returns all staff ordered by creation time.
func (r *StaffRepo) List(ctx context.Context, ascending bool) ([]*auth.Staff, error) {
	q := r.txm.GetQuerier(ctx)

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	rows, err := q.Query(ctx, `SELECT `+staffColumns+` FROM staffs ORDER BY created_at `+direction+`, id `+direction)
	if err != nil {
		return nil, fmt.Errorf("query staffs: %w", err)
	}
	defer rows.Close()

	var out []*auth.Staff
	for rows.Next() {
		var s auth.Staff
		if err := scanStaff(rows, &s); err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// EmailTaken reports whether another staff member uses email.
func (r *StaffRepo) EmailTaken(ctx context.Context, email string, exclude id.ID) (bool, error) {
	q := r.txm.GetQuerier(ctx)

	var taken bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM staffs WHERE email = $1 AND id <> $2)`,
		strings.ToLower(strings.TrimSpace(email)), exclude,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check staff email: %w", err)
	}
	return taken, nil
}

var _ auth.StaffRepository = (*StaffRepo)(nil)
