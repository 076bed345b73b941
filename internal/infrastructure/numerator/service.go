// Package numerator provides the PostgreSQL implementation of voucher
// numbering. It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "venuedesk/internal/core/numerator"
	"venuedesk/internal/infrastructure/storage/postgres"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service hands out voucher numbers from the sys_sequences table.
//
// Numbers are taken with an UPSERT in the caller's transaction: the row
// lock serializes concurrent invoices and a rollback returns the number.
type Service struct {
	querier func(ctx context.Context) Querier
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator that joins the transaction active in ctx.
func New(txm *postgres.TxManager) *Service {
	return &Service{
		querier: func(ctx context.Context) Querier { return txm.GetQuerier(ctx) },
	}
}

// NewWithQuerier creates a numerator bound to a single querier.
func NewWithQuerier(q Querier) *Service {
	return &Service{
		querier: func(context.Context) Querier { return q },
	}
}

// GetNextNumber generates the next voucher number.
// Pattern: PREFIX-YEAR-XXXXX (e.g., INV-2026-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := buildKey(cfg, period)
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next %s: %w", key, err)
	}

	return formatNumber(cfg, period, num), nil
}

// SetNextNumber sets the current sequence value (for migration purposes).
// The next number handed out is value+1.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must not be negative: %d", value)
	}
	key := buildKey(cfg, period)

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// buildKey creates the sequence key based on config and period.
func buildKey(cfg corenumerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case corenumerator.ResetMonthly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case corenumerator.ResetYearly:
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// formatNumber creates the final number string.
func formatNumber(cfg corenumerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
