// Package audit defines the change log contract used by domain services.
package audit

import (
	"context"
	"sync"

	"venuedesk/internal/core/id"
)

// Action is the kind of audited change.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionCancel Action = "cancel"
	ActionRevise Action = "revise"
)

// Entity types recorded in the audit log.
const (
	EntityInvoice       = "invoice"
	EntityBookingDetail = "booking_detail"
	EntityRoomCharge    = "room_charge"
)

// Logger records who changed what. Implementations write inside the
// caller's transaction.
type Logger interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Entry is one change captured by Memory.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
}

// Memory is an in-process Logger for tests.
type Memory struct {
	mu      sync.Mutex
	Entries []Entry
}

// LogChange implements Logger.
func (m *Memory) LogChange(_ context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, Entry{EntityType: entityType, EntityID: entityID, Action: action, Changes: changes})
	return nil
}
