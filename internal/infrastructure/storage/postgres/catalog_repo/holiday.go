package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/holiday"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const holidayTable = "holidays"

// HolidayRepo implements holiday.Repository.
type HolidayRepo struct {
	*BaseMasterRepo[*holiday.Holiday]
}

// NewHolidayRepo creates a new holiday repository.
func NewHolidayRepo(txm *postgres.TxManager) *HolidayRepo {
	return &HolidayRepo{
		BaseMasterRepo: NewBaseMasterRepo(
			txm,
			holidayTable,
			postgres.ExtractDBColumns[holiday.Holiday](),
			[]string{"name"},
			func() *holiday.Holiday { return &holiday.Holiday{} },
		),
	}
}

func (r *HolidayRepo) insertQuery(holidays []*holiday.Holiday) squirrel.InsertBuilder {
	q := r.Builder().Insert(holidayTable).Columns("id", "date", "name")
	for _, h := range holidays {
		q = q.Values(h.ID, h.Date, h.Name)
	}
	return q
}

// CreateBatch inserts holidays in one statement. A date that is already
// registered is reported as a conflict.
func (r *HolidayRepo) CreateBatch(ctx context.Context, holidays []*holiday.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.insertQuery(holidays), "insert")
	if postgres.IsUniqueViolation(err) {
		return apperror.NewDuplicate("holiday", "date", "").WithCause(err)
	}
	return err
}

// FindByDates returns the stored holidays among dates.
func (r *HolidayRepo) FindByDates(ctx context.Context, dates []time.Time) ([]*holiday.Holiday, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	return r.Select(ctx, r.baseSelect().
		Where(squirrel.Eq{"date": dates}).
		OrderBy("date ASC"))
}

// ListBetween returns holidays with from <= date <= to ordered by date.
func (r *HolidayRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*holiday.Holiday, error) {
	return r.Select(ctx, r.baseSelect().
		Where(squirrel.GtOrEq{"date": from}).
		Where(squirrel.LtOrEq{"date": to}).
		OrderBy("date ASC"))
}

// CountByIDs counts the stored holidays among ids.
func (r *HolidayRepo) CountByIDs(ctx context.Context, ids []id.ID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(holidayTable).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByIDs removes holidays.
func (r *HolidayRepo) DeleteByIDs(ctx context.Context, ids []id.ID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.Builder().Delete(holidayTable).Where(squirrel.Eq{"id": ids}), "delete")
	return err
}

var _ holiday.Repository = (*HolidayRepo)(nil)
