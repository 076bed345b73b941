package operations

import (
	"context"
	"fmt"
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/booking"
	"venuedesk/pkg/logger"
)

// Service builds the day sheets.
type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a new operations service.
func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc, now: time.Now}
}

func (s *Service) dayRange(day time.Time) (time.Time, time.Time) {
	from := types.StartOfDay(day, s.loc)
	return from, from.AddDate(0, 0, 1)
}

// DailyBusiness lists the official meetings of day with the services they
// use. A day without meetings is not found.
func (s *Service) DailyBusiness(ctx context.Context, day time.Time) (*DailyBusinessReport, error) {
	from, to := s.dayRange(day)
	details, err := s.repo.OfficialDetails(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("official details: %w", err)
	}
	if len(details) == 0 {
		return nil, apperror.NewNotFound("booking detail", from.Format(types.DateLayout))
	}

	ids := make([]id.ID, len(details))
	for i, d := range details {
		ids[i] = d.ID
	}
	used, err := s.repo.DetailServices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("detail services: %w", err)
	}
	byDetail := make(map[id.ID][]UsedService, len(details))
	for _, u := range used {
		byDetail[u.DetailID] = append(byDetail[u.DetailID], u)
	}

	for i := range details {
		d := &details[i]
		d.StartTime = d.Start.In(s.loc).Format("15:04")
		d.EndTime = d.End.In(s.loc).Format("15:04")
		if d.LayoutType != nil {
			d.LayoutName = booking.LayoutLabel(*d.LayoutType)
		}
		d.UsedServices = byDetail[d.ID]
		if d.UsedServices == nil {
			d.UsedServices = []UsedService{}
		}
	}
	logger.Debug(ctx, "daily business built", "day", from.Format(types.DateLayout), "details", len(details))
	return &DailyBusinessReport{Day: from, Details: details, IssuedAt: s.now().In(s.loc)}, nil
}

// ServiceSchedules lists the stock managed services with their bookings
// on day.
func (s *Service) ServiceSchedules(ctx context.Context, day time.Time) ([]ServiceSchedule, error) {
	services, err := s.repo.StockServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock services: %w", err)
	}
	if len(services) == 0 {
		return []ServiceSchedule{}, nil
	}

	ids := make([]id.ID, len(services))
	index := make(map[id.ID]int, len(services))
	for i, svc := range services {
		ids[i] = svc.ID
		index[svc.ID] = i
		services[i].Bookings = []ScheduledUse{}
	}
	from, to := s.dayRange(day)
	uses, err := s.repo.ScheduledUses(ctx, ids, from, to)
	if err != nil {
		return nil, fmt.Errorf("scheduled uses: %w", err)
	}
	for _, u := range uses {
		i, ok := index[u.ServiceID]
		if !ok {
			continue
		}
		services[i].Bookings = append(services[i].Bookings, u)
		services[i].Reserved += u.UsageCount
	}
	return services, nil
}
