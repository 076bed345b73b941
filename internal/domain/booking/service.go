package booking

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
	"venuedesk/internal/domain/audit"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/invoice"
	"venuedesk/internal/domain/room"
	"venuedesk/internal/domain/tariff"
	"venuedesk/pkg/logger"
)

// Rooms is the part of the room service bookings depend on.
type Rooms interface {
	Exists(ctx context.Context, roomID id.ID) (bool, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*room.Room], error)
	ActiveCharge(ctx context.Context, roomID id.ID, day time.Time) (*room.Charge, error)
}

// Holidays tells whether the facility is closed.
type Holidays interface {
	AnyBetween(ctx context.Context, start, end time.Time) (bool, error)
}

// Catalog resolves services and their stock.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Service, error)
	CheckStock(ctx context.Context, window catalog.Window, requested map[id.ID]int) error
}

// Customers checks customer references.
type Customers interface {
	Exists(ctx context.Context, customerID id.ID) (bool, error)
}

// Staff checks staff references.
type Staff interface {
	StaffExists(ctx context.Context, staffID id.ID) (bool, error)
}

// Config holds the business settings the booking workflow needs.
type Config struct {
	Location      *time.Location
	TaxRate       decimal.Decimal
	RoomSet       room.RoomSet
	FixedServices catalog.FixedServiceIDs
}

// Dependencies are the collaborators of Service.
type Dependencies struct {
	Repo       Repository
	Items      invoice.ItemRepository
	Rooms      Rooms
	Holidays   Holidays
	Catalog    Catalog
	Customers  Customers
	Staff      Staff
	Calculator *tariff.Calculator
	TxManager  tx.SerializableManager
	Publisher  events.Publisher
	Audit      audit.Logger
}

// Service runs the booking workflow.
type Service struct {
	Dependencies
	cfg    Config
	policy Policy
	now    func() time.Time
}

// NewService creates the booking service.
func NewService(deps Dependencies, cfg Config) *Service {
	return &Service{
		Dependencies: deps,
		cfg:          cfg,
		policy:       Policy{Location: cfg.Location},
		now:          time.Now,
	}
}

// CancelRequest carries the cancel metadata entered by staff.
type CancelRequest struct {
	StaffID       id.ID
	RequesterName string
	RequesterTel  string
	CancelDate    *time.Time
}

func (r CancelRequest) validate() error {
	if id.IsNil(r.StaffID) || r.RequesterName == "" || r.RequesterTel == "" {
		return apperror.NewInvalidInput()
	}
	return nil
}

// DetailPatch is a partial edit of a booking detail. Nil fields are left
// untouched.
type DetailPatch struct {
	Status                       *Status
	Title                        *string
	GuestCount                   *int
	LayoutType                   *LayoutType
	LayoutLocation               *string
	ExtraTableCount              *int
	ExtraChairCount              *int
	ScheduledReplyDate           *time.Time
	Note                         *string
	Memo                         *string
	DiscountAmount               *decimal.Decimal
	DepositAmount                *decimal.Decimal
	TotalServiceWithoutTaxAmount *decimal.Decimal
	CancelType                   *CancelType
	CancellationFeeDays          *int

	// Cancel is required when Status moves the detail to canceled.
	Cancel CancelRequest
}

func (p DetailPatch) apply(d *Detail) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.GuestCount != nil {
		d.GuestCount = *p.GuestCount
	}
	if p.LayoutType != nil {
		lt := *p.LayoutType
		d.LayoutType = &lt
	}
	if p.LayoutLocation != nil {
		d.LayoutLocation = *p.LayoutLocation
	}
	if p.ExtraTableCount != nil {
		d.ExtraTableCount = *p.ExtraTableCount
	}
	if p.ExtraChairCount != nil {
		d.ExtraChairCount = *p.ExtraChairCount
	}
	if p.ScheduledReplyDate != nil {
		day := *p.ScheduledReplyDate
		d.ScheduledReplyDate = &day
	}
	if p.Note != nil {
		d.Note = *p.Note
	}
	if p.Memo != nil {
		d.Memo = *p.Memo
	}
	if p.DiscountAmount != nil {
		d.DiscountAmount = *p.DiscountAmount
	}
	if p.DepositAmount != nil {
		d.DepositAmount = *p.DepositAmount
	}
	if p.TotalServiceWithoutTaxAmount != nil {
		d.TotalServiceWithoutTaxAmount = *p.TotalServiceWithoutTaxAmount
	}
	if p.CancelType != nil {
		d.CancelType = *p.CancelType
	}
	if p.CancellationFeeDays != nil {
		days := *p.CancellationFeeDays
		d.CancellationFeeDays = &days
	}
}

// StatusChange moves several details to one status.
type StatusChange struct {
	DetailIDs          []id.ID
	Status             Status
	ScheduledReplyDate *time.Time
	Cancel             CancelRequest
}

func containsID(ids []id.ID, v id.ID) bool {
	for _, x := range ids {
		if x == v {
			return true
		}
	}
	return false
}

func conflictMessage(isUpdate bool) string {
	if isUpdate {
		return apperror.MsgBookingUpdate
	}
	return apperror.MsgBookingBlocked
}

func (s *Service) overlapQuery(d *Detail) OverlapQuery {
	return OverlapQuery{
		RoomIDs:         s.cfg.RoomSet.Targets(d.RoomID),
		Interval:        d.Interval(),
		ExcludeDetailID: d.ID,
	}
}

func (s *Service) checkRoom(ctx context.Context, roomID id.ID) error {
	ok, err := s.Rooms.Exists(ctx, roomID)
	if err != nil {
		return fmt.Errorf("check room: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("room", roomID.String())
	}
	return nil
}

func (s *Service) checkHoliday(ctx context.Context, d *Detail) error {
	closed, err := s.Holidays.AnyBetween(ctx, d.Start, d.End)
	if err != nil {
		return err
	}
	if closed {
		return apperror.NewHoliday()
	}
	return nil
}

func (s *Service) checkOverlap(ctx context.Context, d *Detail, msg string) error {
	busy, err := s.Repo.HasOverlap(ctx, s.overlapQuery(d))
	if err != nil {
		return fmt.Errorf("check overlap: %w", err)
	}
	if busy {
		return apperror.NewSchedulingConflict(msg).WithDetail("room_id", d.RoomID.String())
	}
	return nil
}

// ValidateDetail runs the checks of a booking submission against a single
// detail without saving anything.
func (s *Service) ValidateDetail(ctx context.Context, d *Detail) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}
	if err := s.checkRoom(ctx, d.RoomID); err != nil {
		return err
	}
	if _, err := s.Rooms.ActiveCharge(ctx, d.RoomID, s.now()); err != nil {
		return err
	}
	if err := s.checkHoliday(ctx, d); err != nil {
		return err
	}
	if d.Status == StatusWaitingCancel {
		return nil
	}
	return s.checkOverlap(ctx, d, conflictMessage(!id.IsNil(d.ID)))
}

func (s *Service) fixedServices(ctx context.Context) (map[id.ID]*catalog.Service, error) {
	fixed := s.cfg.FixedServices
	return s.Catalog.GetByIDs(ctx, append(fixed.RoomFees(), fixed.CancelFee))
}

func (s *Service) roomFeeItems(d *Detail, fixed map[id.ID]*catalog.Service) []*invoice.Item {
	incurred := fixed[s.cfg.FixedServices.IncurredFee].UnitPrice
	breakdown := s.Calculator.Calculate(d.Start, d.End, d.Rates(incurred))
	var items []*invoice.Item
	for _, line := range breakdown.Billable() {
		items = append(items, invoice.NewRoomFeeItem(line, fixed[line.ServiceID], d.ID, s.now()))
	}
	return items
}

func (s *Service) snapshotRates(d *Detail, c *room.Charge) {
	d.BasicAmount = c.BasicAmount
	d.ExtensionAmount = c.ExtensionAmount
	d.AllDayAmount = c.AllDayAmount
	d.SubtotalType = c.SubtotalType
	d.TaxRate = s.cfg.TaxRate
}

func (s *Service) checkReferences(ctx context.Context, b *Booking) error {
	ok, err := s.Customers.Exists(ctx, b.CustomerID)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !ok {
		return apperror.NewInvalidInput().WithDetail("field", "customerId")
	}
	ok, err = s.Staff.StaffExists(ctx, b.StaffID)
	if err != nil {
		return fmt.Errorf("check staff: %w", err)
	}
	if !ok {
		return apperror.NewInvalidInput().WithDetail("field", "staffId")
	}
	return nil
}

// errCancelBySave rejects saving a detail into canceled. Cancellation
// goes through CancelDetail so the fee is charged.
func errCancelBySave() error {
	return apperror.NewValidation("cancel the detail instead of saving it as canceled").
		WithDetail("status", int(StatusCanceled))
}

// modifiable returns the details a save may write: the main detail and the
// details without an id. Other stored details are edited one by one.
func modifiable(details []*Detail) []*Detail {
	var out []*Detail
	for i, d := range details {
		if i == 0 || id.IsNil(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

// Save creates a booking or, when b carries the id of a stored booking,
// updates it. The first detail is the main detail: it owns the booking's
// services and on update its draft room-fee items are regenerated.
func (s *Service) Save(ctx context.Context, b *Booking) (*Booking, error) {
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, b); err != nil {
		return nil, err
	}

	isUpdate := !id.IsNil(b.ID)
	if isUpdate && id.IsNil(b.Details[0].ID) {
		return nil, apperror.NewInvalidInput().WithDetail("field", "bookingDetails")
	}
	candidates := modifiable(b.Details)
	for i, d := range candidates {
		if d.Status == StatusCanceled && (i > 0 || !isUpdate) {
			return nil, errCancelBySave()
		}
		if err := s.checkRoom(ctx, d.RoomID); err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewInvalidInput().WithDetail("room_id", d.RoomID.String())
			}
			return nil, err
		}
	}

	err := s.TxManager.RunSerializable(ctx, func(ctx context.Context) error {
		var stored *Booking
		var storedMain *Detail
		if isUpdate {
			var err error
			if stored, err = s.Repo.GetByID(ctx, b.ID); err != nil {
				return err
			}
			if storedMain, err = s.Repo.GetDetailForUpdate(ctx, b.Details[0].ID); err != nil {
				return err
			}
			if storedMain.BookingID != b.ID {
				return apperror.NewInvalidInput().WithDetail("field", "bookingDetails")
			}
			if !CanTransition(storedMain.Status, b.Details[0].Status) {
				return apperror.NewInvalidTransition(int(storedMain.Status), int(b.Details[0].Status))
			}
			if b.Details[0].Status == StatusCanceled && storedMain.Status != StatusCanceled {
				return errCancelBySave()
			}
		}

		if err := s.checkCandidates(ctx, b, candidates, storedMain, isUpdate); err != nil {
			return err
		}

		fixed, err := s.fixedServices(ctx)
		if err != nil {
			return err
		}
		services, err := s.pricedServices(ctx, b.Services)
		if err != nil {
			return err
		}

		if isUpdate {
			return s.update(ctx, b, stored, storedMain, candidates, services, fixed)
		}
		return s.create(ctx, b, candidates, services, fixed)
	})
	if err != nil {
		return nil, err
	}

	if isUpdate {
		logger.Info(ctx, "booking updated", "booking_id", b.ID, "details", len(candidates))
	} else {
		logger.Info(ctx, "booking created", "booking_id", b.ID, "details", len(candidates))
	}
	return b, nil
}

// checkCandidates runs tariff, calendar, overlap and stock checks and
// snapshots the tariff onto each candidate.
func (s *Service) checkCandidates(ctx context.Context, b *Booking, candidates []*Detail, storedMain *Detail, isUpdate bool) error {
	msg := conflictMessage(isUpdate)
	for i, d := range candidates {
		refDay := s.now()
		if !id.IsNil(d.ID) && storedMain != nil {
			refDay = storedMain.CreatedAt
		}
		charge, err := s.Rooms.ActiveCharge(ctx, d.RoomID, refDay)
		if err != nil {
			return err
		}
		s.snapshotRates(d, charge)

		if err := s.checkHoliday(ctx, d); err != nil {
			return err
		}
		if !NeedsOverlapCheck(d.Status, i == 0) {
			continue
		}
		if err := s.checkOverlap(ctx, d, msg); err != nil {
			return err
		}
		for _, other := range candidates[:i] {
			if !NeedsOverlapCheck(other.Status, other == candidates[0]) {
				continue
			}
			if containsID(s.cfg.RoomSet.Targets(d.RoomID), other.RoomID) && other.Interval().Overlaps(d.Interval()) {
				return apperror.NewSchedulingConflict(msg).WithDetail("room_id", d.RoomID.String())
			}
		}
	}

	if len(b.Services) == 0 {
		return nil
	}
	main := b.Details[0]
	requested := make(map[id.ID]int, len(b.Services))
	for _, svc := range b.Services {
		requested[svc.ServiceID] += svc.UsageCount
	}
	return s.Catalog.CheckStock(ctx, catalog.Window{
		CustomerID:      b.CustomerID,
		Start:           main.Start,
		End:             main.End,
		ExcludeDetailID: main.ID,
	}, requested)
}

func (s *Service) pricedServices(ctx context.Context, submitted []*DetailService) ([]*DetailService, error) {
	ids := make([]id.ID, len(submitted))
	for i, svc := range submitted {
		ids[i] = svc.ServiceID
	}
	byID, err := s.Catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*DetailService, len(submitted))
	for i, svc := range submitted {
		out[i] = &DetailService{
			BaseEntity: entity.NewBaseEntity(),
			ServiceID:  svc.ServiceID,
			UsageCount: svc.UsageCount,
			Price:      byID[svc.ServiceID].UnitPrice.Mul(decimal.NewFromInt(int64(svc.UsageCount))),
		}
	}
	return out, nil
}

func (s *Service) createDetail(ctx context.Context, bookingID id.ID, d *Detail, fixed map[id.ID]*catalog.Service) error {
	d.Record = entity.NewRecord(s.now())
	d.BookingID = bookingID
	d.Cancellation = Cancellation{}
	if err := s.Repo.CreateDetail(ctx, d); err != nil {
		return fmt.Errorf("create booking detail: %w", err)
	}
	if items := s.roomFeeItems(d, fixed); len(items) > 0 {
		if err := s.Items.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("create room fee items: %w", err)
		}
	}
	return nil
}

func (s *Service) replaceServices(ctx context.Context, detailID id.ID, services []*DetailService) error {
	for _, svc := range services {
		svc.BookingDetailID = detailID
	}
	if err := s.Repo.ReplaceServices(ctx, detailID, services); err != nil {
		return fmt.Errorf("replace booking detail services: %w", err)
	}
	return nil
}

func (s *Service) create(ctx context.Context, b *Booking, candidates []*Detail, services []*DetailService, fixed map[id.ID]*catalog.Service) error {
	b.Record = entity.NewRecord(s.now())
	if err := s.Repo.Create(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	for _, d := range candidates {
		if err := s.createDetail(ctx, b.ID, d, fixed); err != nil {
			return err
		}
	}
	if err := s.replaceServices(ctx, b.Details[0].ID, services); err != nil {
		return err
	}
	b.Services = services

	return s.Publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateBooking,
		AggregateID:   b.ID,
		EventType:     events.BookingCreated,
		Payload:       b,
	})
}

func (s *Service) update(ctx context.Context, b, stored *Booking, storedMain *Detail, candidates []*Detail, services []*DetailService, fixed map[id.ID]*catalog.Service) error {
	b.CreatedAt = stored.CreatedAt
	b.Touch(s.now())
	if err := s.Repo.Update(ctx, b); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	main := candidates[0]
	if err := s.Items.DeleteDrafts(ctx, main.ID, s.cfg.FixedServices.RoomFees()); err != nil {
		return fmt.Errorf("delete room fee items: %w", err)
	}
	main.BookingID = b.ID
	main.CreatedAt = storedMain.CreatedAt
	main.Cancellation = storedMain.Cancellation
	main.Touch(s.now())
	if err := s.Repo.UpdateDetail(ctx, main); err != nil {
		return fmt.Errorf("update booking detail: %w", err)
	}
	if items := s.roomFeeItems(main, fixed); len(items) > 0 {
		if err := s.Items.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("create room fee items: %w", err)
		}
	}
	if err := s.replaceServices(ctx, main.ID, services); err != nil {
		return err
	}
	b.Services = services

	for _, d := range candidates[1:] {
		if err := s.createDetail(ctx, b.ID, d, fixed); err != nil {
			return err
		}
	}

	return s.Publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateBooking,
		AggregateID:   b.ID,
		EventType:     events.BookingUpdated,
		Payload:       b,
	})
}

// GetBooking returns a booking with its details and the services of its
// main detail.
func (s *Service) GetBooking(ctx context.Context, bookingID id.ID) (*Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Details, err = s.Repo.ListDetailsByBooking(ctx, bookingID); err != nil {
		return nil, fmt.Errorf("list booking details: %w", err)
	}
	if len(b.Details) > 0 {
		if b.Services, err = s.Repo.ListServices(ctx, b.Details[0].ID); err != nil {
			return nil, fmt.Errorf("list booking detail services: %w", err)
		}
	}
	return b, nil
}

// ListDetails returns one page of booking details and the total count.
func (s *Service) ListDetails(ctx context.Context, filter ListFilter) ([]*DetailView, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	views, total, err := s.Repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list booking details: %w", err)
	}
	today := types.Day(s.now(), s.cfg.Location)
	for _, v := range views {
		v.HasInvoiceItem = v.ItemCount > 0
		for _, paid := range v.PaymentDates {
			if !paid.Equal(today) {
				v.IsPastInvoice = true
				break
			}
		}
	}
	return views, total, nil
}

// GetDetail returns a booking detail.
func (s *Service) GetDetail(ctx context.Context, detailID id.ID) (*Detail, error) {
	return s.Repo.GetDetail(ctx, detailID)
}

// Price previews the room fee of a stored detail at its snapshotted rates.
func (s *Service) Price(ctx context.Context, detailID id.ID) (tariff.Breakdown, error) {
	d, err := s.Repo.GetDetail(ctx, detailID)
	if err != nil {
		return tariff.Breakdown{}, err
	}
	fixed, err := s.Catalog.GetByIDs(ctx, []id.ID{s.cfg.FixedServices.IncurredFee})
	if err != nil {
		return tariff.Breakdown{}, err
	}
	incurred := fixed[s.cfg.FixedServices.IncurredFee].UnitPrice
	return s.Calculator.Calculate(d.Start, d.End, d.Rates(incurred)), nil
}

// cancel computes the fee of d, swaps its draft items for the fee item when
// the fee is due and writes the cancel metadata onto d. The caller saves d.
func (s *Service) cancel(ctx context.Context, d *Detail, req CancelRequest) (decimal.Decimal, error) {
	if err := req.validate(); err != nil {
		return decimal.Zero, err
	}
	canceledAt := s.now()
	if req.CancelDate != nil {
		canceledAt = *req.CancelDate
	}
	cancelDay := types.StartOfDay(canceledAt, s.cfg.Location)
	if d.Start.Before(cancelDay) {
		return decimal.Zero, apperror.NewValidation("booking detail has already started").
			WithDetail("booking_detail_id", d.ID.String())
	}

	roomSubtotal := s.Calculator.Calculate(d.Start, d.End, d.Rates(decimal.Zero)).RoomSubtotal()
	fee := s.policy.Fee(d, cancelDay, roomSubtotal)
	previous := d.Status

	if fee.IsPositive() {
		services, err := s.Catalog.GetByIDs(ctx, []id.ID{s.cfg.FixedServices.CancelFee})
		if err != nil {
			return decimal.Zero, err
		}
		if err := s.Items.DeleteDrafts(ctx, d.ID, nil); err != nil {
			return decimal.Zero, fmt.Errorf("delete draft items: %w", err)
		}
		item := invoice.NewCancellationItem(services[s.cfg.FixedServices.CancelFee], d.ID, fee, s.now())
		if err := s.Items.CreateBatch(ctx, []*invoice.Item{item}); err != nil {
			return decimal.Zero, fmt.Errorf("create cancellation item: %w", err)
		}
		d.TotalServiceWithoutTaxAmount = decimal.Zero
	}

	staffID := req.StaffID
	name, tel := req.RequesterName, req.RequesterTel
	d.Status = StatusCanceled
	d.Cancellation = Cancellation{
		StaffID:       &staffID,
		RequesterName: &name,
		RequesterTel:  &tel,
		CanceledAt:    &cancelDay,
		Price:         &fee,
	}
	d.Touch(s.now())

	if err := s.Audit.LogChange(ctx, audit.EntityBookingDetail, d.ID, audit.ActionCancel, map[string]any{
		"previous_status": int(previous),
		"cancel_type":     int(d.CancelType),
		"cancel_price":    fee.String(),
		"cancel_date":     cancelDay.Format(types.DateLayout),
	}); err != nil {
		return decimal.Zero, fmt.Errorf("audit cancellation: %w", err)
	}
	if err := s.Publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateBookingDetail,
		AggregateID:   d.ID,
		EventType:     events.BookingDetailCanceled,
		Payload:       map[string]any{"bookingDetailId": d.ID, "cancelPrice": fee},
	}); err != nil {
		return decimal.Zero, err
	}
	return fee, nil
}

// CancelDetail cancels a detail and returns it with the fee recorded in
// CancelPrice.
func (s *Service) CancelDetail(ctx context.Context, detailID id.ID, req CancelRequest) (*Detail, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var d *Detail
	var fee decimal.Decimal
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if d, err = s.Repo.GetDetailForUpdate(ctx, detailID); err != nil {
			return err
		}
		if d.Status == StatusCanceled {
			return apperror.NewConflict("booking detail is already canceled")
		}
		if fee, err = s.cancel(ctx, d, req); err != nil {
			return err
		}
		return s.Repo.UpdateDetail(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "booking detail canceled", "booking_detail_id", detailID, "cancel_price", fee.String())
	return d, nil
}

func (s *Service) publishStatus(ctx context.Context, d *Detail, from Status) error {
	if from == d.Status {
		return nil
	}
	return s.Publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateBookingDetail,
		AggregateID:   d.ID,
		EventType:     events.BookingDetailStatusChanged,
		Payload:       map[string]any{"bookingDetailId": d.ID, "from": int(from), "to": int(d.Status)},
	})
}

// EditDetail applies a partial edit. A status change follows the status
// machine: entering canceled runs the cancellation, leaving waitingCancel
// re-checks the room for double booking.
func (s *Service) EditDetail(ctx context.Context, detailID id.ID, patch DetailPatch) (*Detail, error) {
	var d *Detail
	err := s.TxManager.RunSerializable(ctx, func(ctx context.Context) error {
		var err error
		if d, err = s.Repo.GetDetailForUpdate(ctx, detailID); err != nil {
			return err
		}
		from := d.Status

		if patch.Status != nil {
			to := *patch.Status
			if !CanTransition(from, to) {
				return apperror.NewInvalidTransition(int(from), int(to))
			}
			switch {
			case to == StatusCanceled && from != StatusCanceled:
				if _, err := s.cancel(ctx, d, patch.Cancel); err != nil {
					return err
				}
			case from == StatusWaitingCancel && to != StatusWaitingCancel:
				if err := s.checkOverlap(ctx, d, apperror.MsgBookingUpdate); err != nil {
					return err
				}
				d.Status = to
			default:
				d.Status = to
			}
		}

		patch.apply(d)
		if err := d.Validate(ctx); err != nil {
			return err
		}
		d.Touch(s.now())
		if err := s.Repo.UpdateDetail(ctx, d); err != nil {
			return fmt.Errorf("update booking detail: %w", err)
		}
		return s.publishStatus(ctx, d, from)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ChangeStatuses moves every listed detail to the same status. Either all
// details change or none does.
func (s *Service) ChangeStatuses(ctx context.Context, change StatusChange) error {
	ids := id.Unique(change.DetailIDs)
	if len(ids) == 0 || !change.Status.Valid() {
		return apperror.NewInvalidInput()
	}
	err := s.TxManager.RunSerializable(ctx, func(ctx context.Context) error {
		details, err := s.Repo.GetDetailsByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("get booking details: %w", err)
		}
		if len(details) != len(ids) {
			return apperror.NewNotFound("booking detail", ids)
		}

		for _, d := range details {
			if !CanTransition(d.Status, change.Status) {
				return apperror.NewInvalidTransition(int(d.Status), int(change.Status))
			}
		}

		for _, d := range details {
			from := d.Status
			switch {
			case change.Status == StatusCanceled:
				if from == StatusCanceled {
					continue
				}
				if _, err := s.cancel(ctx, d, change.Cancel); err != nil {
					return err
				}
			case from == StatusWaitingCancel && change.Status != StatusWaitingCancel:
				if err := s.checkOverlap(ctx, d, apperror.MsgBookingUpdate); err != nil {
					return err
				}
				d.Status = change.Status
			default:
				d.Status = change.Status
			}
			if change.ScheduledReplyDate != nil {
				day := *change.ScheduledReplyDate
				d.ScheduledReplyDate = &day
			}
			d.Touch(s.now())
			if err := s.Repo.UpdateDetail(ctx, d); err != nil {
				return fmt.Errorf("update booking detail: %w", err)
			}
			if err := s.publishStatus(ctx, d, from); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "booking detail statuses changed", "count", len(ids), "status", int(change.Status))
	return nil
}
