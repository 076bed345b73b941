// Package holiday keeps the calendar of days the facility is closed.
package holiday

import (
	"context"
	"fmt"
	"sort"
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/core/types"
	"venuedesk/pkg/logger"
)

// Holiday is a closed day. Date is midnight UTC of the calendar date.
type Holiday struct {
	entity.BaseEntity
	Date time.Time `db:"date" json:"date"`
	Name string    `db:"name" json:"name"`
}

// Repository persists holidays.
type Repository interface {
	CreateBatch(ctx context.Context, holidays []*Holiday) error
	// FindByDates returns the stored holidays among dates.
	FindByDates(ctx context.Context, dates []time.Time) ([]*Holiday, error)
	// ListBetween returns holidays with from <= date <= to ordered by date.
	ListBetween(ctx context.Context, from, to time.Time) ([]*Holiday, error)
	CountByIDs(ctx context.Context, ids []id.ID) (int, error)
	DeleteByIDs(ctx context.Context, ids []id.ID) error
}

// Service manages the calendar.
type Service struct {
	repo      Repository
	txManager tx.Manager
	loc       *time.Location
	now       func() time.Time
}

// NewService creates the holiday service.
func NewService(repo Repository, txManager tx.Manager, loc *time.Location) *Service {
	return &Service{repo: repo, txManager: txManager, loc: loc, now: time.Now}
}

// Upcoming returns the holidays from today on.
func (s *Service) Upcoming(ctx context.Context) ([]*Holiday, error) {
	today := types.Day(s.now(), s.loc)
	return s.repo.ListBetween(ctx, today, today.AddDate(100, 0, 0))
}

// Between returns holidays in [from, to].
func (s *Service) Between(ctx context.Context, from, to time.Time) ([]*Holiday, error) {
	return s.repo.ListBetween(ctx, types.Day(from, s.loc), types.Day(to, s.loc))
}

// Register adds days to the calendar. No day may already be registered.
func (s *Service) Register(ctx context.Context, holidays []*Holiday) error {
	if len(holidays) == 0 {
		return apperror.NewInvalidInput()
	}

	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		if id.IsNil(h.ID) {
			h.BaseEntity = entity.NewBaseEntity()
		}
		h.Date = types.Day(h.Date, s.loc)
		dates = append(dates, h.Date)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByDates(ctx, dates)
		if err != nil {
			return fmt.Errorf("find holidays: %w", err)
		}
		if len(existing) > 0 {
			sort.Slice(existing, func(i, j int) bool { return existing[i].Date.Before(existing[j].Date) })
			label := existing[0].Date.Format("2006年01月02日")
			return apperror.NewValidation(fmt.Sprintf(apperror.MsgHolidayRegistered, label)).
				WithDetail("date", existing[0].Date.Format(types.DateLayout))
		}
		if err := s.repo.CreateBatch(ctx, holidays); err != nil {
			return fmt.Errorf("create holidays: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "holidays registered", "count", len(holidays))
	return nil
}

// Remove deletes holidays by id. Every id must exist.
func (s *Service) Remove(ctx context.Context, ids []id.ID) error {
	ids = id.Unique(ids)
	if len(ids) == 0 {
		return apperror.NewInvalidInput()
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.CountByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("count holidays: %w", err)
		}
		if n != len(ids) {
			return apperror.NewInvalidInput().WithDetail("found", n).WithDetail("requested", len(ids))
		}
		return s.repo.DeleteByIDs(ctx, ids)
	})
}

// IsHoliday reports whether day is closed.
func (s *Service) IsHoliday(ctx context.Context, day time.Time) (bool, error) {
	d := types.Day(day, s.loc)
	found, err := s.repo.ListBetween(ctx, d, d)
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// AnyBetween reports whether a closed day falls within the calendar days
// of start and end.
func (s *Service) AnyBetween(ctx context.Context, start, end time.Time) (bool, error) {
	found, err := s.repo.ListBetween(ctx, types.Day(start, s.loc), types.Day(end, s.loc))
	if err != nil {
		return false, fmt.Errorf("list holidays: %w", err)
	}
	return len(found) > 0, nil
}
