// Package customer keeps the customer registry and its usage statistics.
package customer

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain"
)

// MsgNothingToExport is returned when no customer matches an export filter.
const MsgNothingToExport = "指定抽出条件に当てはまるデータがありませんので、顧客一覧表を出力しませんでした。"

var mailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Customer is a company or person renting rooms.
type Customer struct {
	entity.Record

	Name        string `db:"name" json:"name"`
	NameKana    string `db:"name_kana" json:"nameKana"`
	Address     string `db:"address" json:"address"`
	Tel         string `db:"tel" json:"tel"`
	Fax         string `db:"fax" json:"fax"`
	ContactName string `db:"contact_name" json:"contactName"`
	ContactTel  string `db:"contact_tel" json:"contactTel"`
	ContactMail string `db:"contact_mail" json:"contactMail"`
	IsStudent   bool   `db:"is_student" json:"isStudent"`
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(_ context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if c.ContactMail != "" && !mailPattern.MatchString(c.ContactMail) {
		return apperror.NewValidation("invalid mail address").WithDetail("field", "contactMail")
	}
	return nil
}

// ExportFilter selects the customers of a list export. Zero values do not
// filter.
type ExportFilter struct {
	Name        string
	ContactName string
	Tel         string

	CreatedFrom, CreatedTo time.Time
	BookingFrom, BookingTo time.Time

	MinBookings, MaxBookings int
	MinAmount, MaxAmount     decimal.Decimal
}

// Validate rejects reversed ranges.
func (f ExportFilter) Validate() error {
	reversed := func(from, to time.Time) bool {
		return !from.IsZero() && !to.IsZero() && from.After(to)
	}
	if reversed(f.CreatedFrom, f.CreatedTo) || reversed(f.BookingFrom, f.BookingTo) {
		return apperror.NewInvalidInput()
	}
	if f.MinBookings > 0 && f.MaxBookings > 0 && f.MinBookings > f.MaxBookings {
		return apperror.NewInvalidInput()
	}
	if f.MinAmount.IsPositive() && f.MaxAmount.IsPositive() && f.MinAmount.GreaterThan(f.MaxAmount) {
		return apperror.NewInvalidInput()
	}
	return nil
}

// Stats are the usage figures of a customer, counted over paid details.
type Stats struct {
	BookingsThisYear int             `db:"bookings_this_year" json:"bookingsThisYear"`
	BookingsTotal    int             `db:"bookings_total" json:"bookingsTotal"`
	AmountLastYear   decimal.Decimal `db:"amount_last_year" json:"amountLastYear"`
	AmountThisYear   decimal.Decimal `db:"amount_this_year" json:"amountThisYear"`
	AmountTotal      decimal.Decimal `db:"amount_total" json:"amountTotal"`
	LatestUsedAt     *time.Time      `db:"latest_used_at" json:"latestUsedAt,omitempty"`
}

// ExportRow is one line of the customer list.
type ExportRow struct {
	Customer
	Stats
}

func (f ExportFilter) keep(row ExportRow) bool {
	if f.MinBookings > 0 && row.BookingsTotal < f.MinBookings {
		return false
	}
	if f.MaxBookings > 0 && row.BookingsTotal > f.MaxBookings {
		return false
	}
	if f.MinAmount.IsPositive() && row.AmountTotal.LessThan(f.MinAmount) {
		return false
	}
	if f.MaxAmount.IsPositive() && row.AmountTotal.GreaterThan(f.MaxAmount) {
		return false
	}
	return true
}

// Repository persists customers.
type Repository interface {
	domain.MasterRepository[*Customer]

	// ListForExport returns customers matching the text and date filters
	// with their statistics for year.
	ListForExport(ctx context.Context, filter ExportFilter, yearStart, yearEnd time.Time) ([]ExportRow, error)
}

// Service manages customers.
type Service struct {
	*domain.MasterService[*Customer]
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates the customer service.
func NewService(repo Repository, txManager tx.Manager, loc *time.Location) *Service {
	return &Service{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*Customer]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "customer",
		}),
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// ExportRows returns the rows of the customer list workbook.
func (s *Service) ExportRows(ctx context.Context, filter ExportFilter) ([]ExportRow, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	yearStart, _ := types.MonthRange(now.Year(), time.January, s.loc)
	rows, err := s.repo.ListForExport(ctx, filter, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("list customers for export: %w", err)
	}

	out := rows[:0]
	for _, row := range rows {
		if filter.keep(row) {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		return nil, apperror.NewNotFound("customer", "export").WithDetail("reason", MsgNothingToExport)
	}
	return out, nil
}
