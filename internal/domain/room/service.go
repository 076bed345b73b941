package room

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/events"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain"
	"venuedesk/internal/domain/catalog"
	"venuedesk/pkg/logger"
)

// Rates are the prices of a tariff.
type Rates struct {
	BasicAmount     decimal.Decimal
	ExtensionAmount decimal.Decimal
	AllDayAmount    decimal.Decimal
	SubtotalType    catalog.SubtotalType
}

// EndDateChange closes or reopens a charge while editing its room.
type EndDateChange struct {
	ChargeID id.ID
	EndDate  *time.Time
}

// Service manages rooms and their tariffs.
type Service struct {
	*domain.MasterService[*Room]
	rooms     Repository
	charges   ChargeRepository
	txManager tx.Manager
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewService creates the room service.
func NewService(rooms Repository, charges ChargeRepository, txManager tx.Manager, publisher events.Publisher, loc *time.Location) *Service {
	return &Service{
		MasterService: domain.NewMasterService(domain.MasterServiceConfig[*Room]{
			Repo:       rooms,
			TxManager:  txManager,
			EntityName: "room",
		}),
		rooms:     rooms,
		charges:   charges,
		txManager: txManager,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) today() time.Time {
	return types.Day(s.now(), s.loc)
}

func (s *Service) newCharge(roomID id.ID, rates Rates, start time.Time) *Charge {
	c := &Charge{
		RoomID:          roomID,
		BasicAmount:     rates.BasicAmount,
		ExtensionAmount: rates.ExtensionAmount,
		AllDayAmount:    rates.AllDayAmount,
		SubtotalType:    rates.SubtotalType,
		StartDate:       start,
	}
	c.Record = entity.NewRecord(s.now())
	return c
}

// CreateRoom stores a room together with its first tariff, valid from today.
func (s *Service) CreateRoom(ctx context.Context, room *Room, rates Rates) (*Charge, error) {
	if err := room.Validate(ctx); err != nil {
		return nil, err
	}
	charge := s.newCharge(room.ID, rates, s.today())
	if err := charge.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.rooms.NameTaken(ctx, room.Name, room.ID)
		if err != nil {
			return fmt.Errorf("check room name: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("room", "name", room.Name)
		}
		if err := s.rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		if err := s.charges.Create(ctx, charge); err != nil {
			return fmt.Errorf("create room charge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "room created", "room_id", room.ID, "name", room.Name)
	return charge, nil
}

// UpdateRoom edits a room and optionally the end date of one of its charges.
func (s *Service) UpdateRoom(ctx context.Context, room *Room, change *EndDateChange) error {
	if err := room.Validate(ctx); err != nil {
		return err
	}
	room.Touch(s.now())

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.rooms.GetByID(ctx, room.ID); err != nil {
			return err
		}
		taken, err := s.rooms.NameTaken(ctx, room.Name, room.ID)
		if err != nil {
			return fmt.Errorf("check room name: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("room", "name", room.Name)
		}

		if change != nil {
			if err := s.changeEndDate(ctx, room.ID, *change); err != nil {
				return err
			}
		}

		if err := s.rooms.Update(ctx, room); err != nil {
			return fmt.Errorf("update room: %w", err)
		}
		return nil
	})
}

func (s *Service) changeEndDate(ctx context.Context, roomID id.ID, change EndDateChange) error {
	existing, err := s.charges.ListByRoom(ctx, roomID, true)
	if err != nil {
		return fmt.Errorf("list room charges: %w", err)
	}

	var target *Charge
	for _, c := range existing {
		if c.ID == change.ChargeID {
			target = c
		}
	}
	if target == nil {
		return apperror.NewNotFound("room_charge", change.ChargeID.String())
	}

	if change.EndDate != nil {
		end := types.Day(*change.EndDate, s.loc)
		if target.StartDate.After(end) || end.Before(s.today()) {
			return apperror.NewInvalidInput().WithDetail("endDate", end)
		}
		change.EndDate = &end
	}

	for _, c := range existing {
		if c.ID == target.ID {
			continue
		}
		if change.EndDate == nil {
			if c.StartDate.After(target.StartDate) {
				return apperror.NewInvalidInput().WithDetail("clashesWith", c.ID.String())
			}
			continue
		}
		if !c.StartDate.After(*change.EndDate) && (c.EndDate == nil || !c.EndDate.Before(*change.EndDate)) {
			return apperror.NewInvalidInput().WithDetail("clashesWith", c.ID.String())
		}
	}

	target.EndDate = change.EndDate
	target.Touch(s.now())
	if err := s.charges.SetEndDate(ctx, target); err != nil {
		return fmt.Errorf("update room charge: %w", err)
	}
	return nil
}

// CreateCharge schedules a tariff change from start and closes the previous
// open-ended tariff on the day before, in one transaction.
func (s *Service) CreateCharge(ctx context.Context, roomID id.ID, rates Rates, start time.Time) (*Charge, error) {
	start = types.Day(start, s.loc)
	charge := s.newCharge(roomID, rates, start)
	if err := charge.Validate(ctx); err != nil {
		return nil, err
	}

	var closed *Charge
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
			return err
		}

		existing, err := s.charges.ListByRoom(ctx, roomID, true)
		if err != nil {
			return fmt.Errorf("list room charges: %w", err)
		}
		closed, err = CheckNewCharge(existing, start, s.today())
		if err != nil {
			return err
		}

		if err := s.charges.Create(ctx, charge); err != nil {
			return fmt.Errorf("create room charge: %w", err)
		}
		if closed != nil {
			closed.CloseBefore(start)
			closed.Touch(s.now())
			if err := s.charges.SetEndDate(ctx, closed); err != nil {
				return fmt.Errorf("close room charge: %w", err)
			}
		}

		return s.publisher.Publish(ctx, events.Event{
			AggregateType: events.AggregateRoomCharge,
			AggregateID:   charge.ID,
			EventType:     events.RoomChargeCreated,
			Payload:       charge,
		})
	})
	if err != nil {
		return nil, err
	}

	kv := []any{"room_id", roomID, "charge_id", charge.ID, "start_date", start.Format(types.DateLayout)}
	if closed != nil {
		kv = append(kv, "closed_charge_id", closed.ID)
	}
	logger.Info(ctx, "room charge created", kv...)
	return charge, nil
}

// DeleteCharge removes a tariff record.
func (s *Service) DeleteCharge(ctx context.Context, chargeID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.charges.GetByID(ctx, chargeID); err != nil {
			return err
		}
		if err := s.charges.Delete(ctx, chargeID); err != nil {
			return fmt.Errorf("delete room charge: %w", err)
		}
		return nil
	})
}

// ListCharges returns the tariff history of a room.
func (s *Service) ListCharges(ctx context.Context, roomID id.ID) ([]*Charge, error) {
	if _, err := s.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.charges.ListByRoom(ctx, roomID, false)
}

// ActiveCharge returns the tariff of roomID on day. A room without one
// cannot be booked.
func (s *Service) ActiveCharge(ctx context.Context, roomID id.ID, day time.Time) (*Charge, error) {
	charges, err := s.charges.ListByRoom(ctx, roomID, false)
	if err != nil {
		return nil, fmt.Errorf("list room charges: %w", err)
	}
	active := ActiveCharge(charges, types.Day(day, s.loc))
	if active == nil {
		return nil, apperror.NewTariffMissing(roomID.String())
	}
	return active, nil
}
