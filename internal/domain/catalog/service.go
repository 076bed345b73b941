package catalog

import (
	"context"
	"fmt"
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain"
)

// Manager provides CRUD and stock lookups for services.
type Manager struct {
	*domain.MasterService[*Service]
	repo Repository
	loc  *time.Location
}

// NewManager creates the service catalog manager.
func NewManager(repo Repository, txManager tx.Manager, loc *time.Location) *Manager {
	return &Manager{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*Service]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "service",
		}),
		repo: repo,
		loc:  loc,
	}
}

// GetByIDs loads services and fails with NotFound if any id is unknown.
func (m *Manager) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Service, error) {
	ids = id.Unique(ids)
	if len(ids) == 0 {
		return map[id.ID]*Service{}, nil
	}
	found, err := m.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	byID := make(map[id.ID]*Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	for _, v := range ids {
		if _, ok := byID[v]; !ok {
			return nil, apperror.NewNotFound("service", v.String())
		}
	}
	return byID, nil
}

// Availability lists meeting-room services with the units still free
// during window.
func (m *Manager) Availability(ctx context.Context, window Window, filter AvailabilityFilter) ([]Availability, error) {
	if !window.End.After(window.Start) || id.IsNil(window.CustomerID) {
		return nil, apperror.NewInvalidInput()
	}
	if filter.Type != nil && !filter.Type.Valid() {
		return nil, apperror.NewInvalidInput()
	}

	services, err := m.repo.ListForRooms(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	used, err := m.usedCounts(ctx, window, services)
	if err != nil {
		return nil, err
	}

	out := make([]Availability, 0, len(services))
	for _, s := range services {
		out = append(out, Availability{Service: s, StockAvailable: Available(s, used[s.ID])})
	}
	return out, nil
}

// CheckStock fails with OUT_OF_STOCK when a stock-managed service in
// requested (service id to units) has fewer free units than asked for.
func (m *Manager) CheckStock(ctx context.Context, window Window, requested map[id.ID]int) error {
	ids := make([]id.ID, 0, len(requested))
	for serviceID := range requested {
		ids = append(ids, serviceID)
	}
	byID, err := m.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	var managed []*Service
	for _, s := range byID {
		if s.HasStockManagement && s.StockCount != nil {
			managed = append(managed, s)
		}
	}
	if len(managed) == 0 {
		return nil
	}

	used, err := m.usedCounts(ctx, window, managed)
	if err != nil {
		return err
	}
	for _, s := range managed {
		free := Available(s, used[s.ID])
		if requested[s.ID] > free {
			return apperror.NewOutOfStock(s.ID.String(), requested[s.ID], free)
		}
	}
	return nil
}

func (m *Manager) usedCounts(ctx context.Context, window Window, services []*Service) (map[id.ID]int, error) {
	ids := make([]id.ID, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	if len(ids) == 0 {
		return map[id.ID]int{}, nil
	}

	dayStart := types.StartOfDay(window.Start, m.loc)
	usages, err := m.repo.ListUsage(ctx, ids, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list service usage: %w", err)
	}

	byService := make(map[id.ID][]Usage)
	for _, u := range usages {
		byService[u.ServiceID] = append(byService[u.ServiceID], u)
	}
	used := make(map[id.ID]int, len(byService))
	for serviceID, list := range byService {
		used[serviceID] = window.UsedCount(list)
	}
	return used, nil
}
