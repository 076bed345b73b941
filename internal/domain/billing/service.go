// Package billing runs the invoice workflows that span bookings and
// invoices: draft item reconciliation, issuing, revising and deleting
// invoices, and walk-in lobby sales.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/events"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/numerator"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/audit"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/invoice"
	"venuedesk/pkg/logger"
)

// Bookings is the booking storage billing reads and updates.
type Bookings interface {
	GetByID(ctx context.Context, bookingID id.ID) (*booking.Booking, error)
	GetDetail(ctx context.Context, detailID id.ID) (*booking.Detail, error)
	GetDetailsByIDs(ctx context.Context, detailIDs []id.ID) ([]*booking.Detail, error)
	UpdateDetail(ctx context.Context, d *booking.Detail) error
}

// Catalog resolves services.
type Catalog interface {
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Service, error)
}

// Staff checks staff references.
type Staff interface {
	StaffExists(ctx context.Context, staffID id.ID) (bool, error)
}

// Dependencies are the collaborators of Service.
type Dependencies struct {
	Invoices  invoice.Repository
	Items     invoice.ItemRepository
	Bookings  Bookings
	Catalog   Catalog
	Staff     Staff
	Numerator numerator.Generator
	TxManager tx.Manager
	Publisher events.Publisher
	Audit     audit.Logger
}

// Service runs the invoice workflows.
type Service struct {
	Dependencies
	loc     *time.Location
	taxRate decimal.Decimal
	now     func() time.Time
}

// NewService creates the billing service.
func NewService(deps Dependencies, loc *time.Location, taxRate decimal.Decimal) *Service {
	return &Service{Dependencies: deps, loc: loc, taxRate: taxRate, now: time.Now}
}

func (s *Service) today() time.Time {
	return types.Day(s.now(), s.loc)
}

func (s *Service) publish(ctx context.Context, inv *invoice.Invoice, eventType string) error {
	return s.Publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateInvoice,
		AggregateID:   inv.ID,
		EventType:     eventType,
		Payload:       inv,
	})
}

func (s *Service) checkServices(ctx context.Context, items []*invoice.Item) (map[id.ID]*catalog.Service, error) {
	ids := make([]id.ID, len(items))
	for i, it := range items {
		ids[i] = it.ServiceID
	}
	services, err := s.Catalog.GetByIDs(ctx, ids)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation(apperror.MsgItemsNotSaved).WithCause(err)
		}
		return nil, err
	}
	return services, nil
}

// ReconcileDetailItems makes the items of a booking detail match items.
// Removed draft items are deleted; items already on an invoice stay.
func (s *Service) ReconcileDetailItems(ctx context.Context, detailID id.ID, items []*invoice.Item) error {
	if _, err := s.Bookings.GetDetail(ctx, detailID); err != nil {
		return err
	}
	for _, it := range items {
		if err := it.Validate(ctx); err != nil {
			return err
		}
	}
	if _, err := s.checkServices(ctx, items); err != nil {
		return err
	}

	var plan invoice.Plan
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.Items.ListByDetail(ctx, detailID)
		if err != nil {
			return fmt.Errorf("list invoice items: %w", err)
		}
		if plan, err = invoice.PlanReconcile(existing, items, detailID, s.now()); err != nil {
			return err
		}

		for _, it := range plan.Updates {
			if err := s.Items.Update(ctx, it); err != nil {
				return fmt.Errorf("update invoice item: %w", err)
			}
		}
		if removed := plan.DraftRemovals(); len(removed) > 0 {
			if err := s.Items.DeleteByIDs(ctx, invoice.ItemIDs(removed)); err != nil {
				return fmt.Errorf("delete invoice items: %w", err)
			}
		}
		if len(plan.Creates) > 0 {
			if err := s.Items.CreateBatch(ctx, plan.Creates); err != nil {
				return fmt.Errorf("create invoice items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Debug(ctx, "invoice items reconciled",
		"booking_detail_id", detailID,
		"updated", len(plan.Updates),
		"created", len(plan.Creates),
		"deleted", len(plan.DraftRemovals()))
	return nil
}

// IssueRequest issues an invoice for items of a booking. With ID, voucher
// and segment of a stored invoice set, that invoice is issued again.
type IssueRequest struct {
	ID            id.ID
	VoucherNum    string
	SegmentNum    int
	BookingID     id.ID
	StaffID       id.ID
	RecipientName string
	Memo          string
	Figures       invoice.Figures
	ItemIDs       []id.ID
}

func (s *Service) bookingItems(ctx context.Context, bookingID id.ID, itemIDs []id.ID) ([]*invoice.Item, error) {
	itemIDs = id.Unique(itemIDs)
	items, err := s.Items.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	if len(items) != len(itemIDs) {
		return nil, apperror.NewValidation(apperror.MsgItemsNotSaved)
	}
	details, err := s.Bookings.GetDetailsByIDs(ctx, invoice.DetailIDs(items))
	if err != nil {
		return nil, fmt.Errorf("get booking details: %w", err)
	}
	owned := make(map[id.ID]bool, len(details))
	for _, d := range details {
		owned[d.ID] = d.BookingID == bookingID
	}
	for _, it := range items {
		if it.BookingDetailID == nil || !owned[*it.BookingDetailID] {
			return nil, apperror.NewValidation(apperror.MsgItemsNotSaved).
				WithDetail("invoiceItemId", it.ID.String())
		}
	}
	return items, nil
}

// settleDetails marks details whose items are all invoiced as paid.
func (s *Service) settleDetails(ctx context.Context, detailIDs []id.ID) error {
	details, err := s.Bookings.GetDetailsByIDs(ctx, detailIDs)
	if err != nil {
		return fmt.Errorf("get booking details: %w", err)
	}
	for _, d := range details {
		drafts, err := s.Items.CountDrafts(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("count draft items: %w", err)
		}
		if drafts > 0 || d.Status == booking.StatusCompletePayment {
			continue
		}
		d.Status = booking.StatusCompletePayment
		d.Touch(s.now())
		if err := s.Bookings.UpdateDetail(ctx, d); err != nil {
			return fmt.Errorf("update booking detail: %w", err)
		}
	}
	return nil
}

// CreateInvoice issues an invoice for booking items and settles the
// details left without draft items.
func (s *Service) CreateInvoice(ctx context.Context, req IssueRequest) (*invoice.Invoice, error) {
	if len(req.ItemIDs) == 0 {
		return nil, apperror.NewInvalidInput().WithDetail("field", "invoiceItemIds")
	}
	if req.SegmentNum == 0 {
		req.SegmentNum = 1
	}

	var inv *invoice.Invoice
	reissue := !id.IsNil(req.ID) && req.VoucherNum != "" && req.SegmentNum > 0
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Bookings.GetByID(ctx, req.BookingID); err != nil {
			return err
		}
		items, err := s.bookingItems(ctx, req.BookingID, req.ItemIDs)
		if err != nil {
			return err
		}

		if reissue {
			if inv, err = s.reissue(ctx, req); err != nil {
				return err
			}
		} else {
			if inv, err = s.issue(ctx, req); err != nil {
				return err
			}
		}
		if err := s.Items.Attach(ctx, inv.ID, invoice.ItemIDs(items)); err != nil {
			return fmt.Errorf("attach invoice items: %w", err)
		}
		if err := s.settleDetails(ctx, invoice.DetailIDs(items)); err != nil {
			return err
		}
		return s.publish(ctx, inv, events.InvoiceCreated)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "invoice issued",
		"invoice_id", inv.ID, "voucher_num", inv.VoucherNum, "segment_num", inv.SegmentNum,
		"reissue", reissue, "items", len(req.ItemIDs))
	return inv, nil
}

func (s *Service) issue(ctx context.Context, req IssueRequest) (*invoice.Invoice, error) {
	voucher := req.VoucherNum
	if voucher == "" {
		var err error
		if voucher, err = s.Numerator.GetNextNumber(ctx, numerator.InvoiceVoucher, s.now().In(s.loc)); err != nil {
			return nil, fmt.Errorf("next voucher number: %w", err)
		}
	}
	bookingID := req.BookingID
	inv := &invoice.Invoice{
		Record:        entity.NewRecord(s.now()),
		Figures:       req.Figures,
		VoucherNum:    voucher,
		SegmentNum:    req.SegmentNum,
		BookingID:     &bookingID,
		StaffID:       req.StaffID,
		Status:        invoice.StatusCompleted,
		PaymentDate:   s.today(),
		RecipientName: req.RecipientName,
		Memo:          req.Memo,
	}
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

func (s *Service) reissue(ctx context.Context, req IssueRequest) (*invoice.Invoice, error) {
	inv, err := s.Invoices.GetByID(ctx, req.ID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInvalidInput().WithDetail("id", req.ID.String())
		}
		return nil, err
	}
	if inv.VoucherNum != req.VoucherNum || inv.SegmentNum != req.SegmentNum {
		return nil, apperror.NewInvalidInput().WithDetail("id", req.ID.String())
	}
	if err := s.Items.DetachInvoice(ctx, inv.ID); err != nil {
		return nil, fmt.Errorf("detach invoice items: %w", err)
	}

	inv.Figures = req.Figures
	inv.StaffID = req.StaffID
	inv.RecipientName = req.RecipientName
	inv.Memo = req.Memo
	inv.Touch(s.now())
	if err := s.Invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return inv, nil
}

// EditRequest is the submitted state of an invoice and its items.
type EditRequest struct {
	Figures       invoice.Figures
	RecipientName string
	Memo          string
	Items         []*invoice.Item
}

// EditResult tells how an edit was applied.
type EditResult struct {
	Invoice  *invoice.Invoice
	Revised  bool
	Previous *invoice.Invoice
}

// EditInvoice applies an invoice edit. A change to a settled invoice
// cancels it and issues a linked revision; otherwise the invoice and its
// items are edited in place.
func (s *Service) EditInvoice(ctx context.Context, invoiceID id.ID, req EditRequest) (EditResult, error) {
	for _, it := range req.Items {
		if err := it.Validate(ctx); err != nil {
			return EditResult{}, err
		}
	}

	var res EditResult
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stored, err := s.Invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := s.checkEditable(ctx, stored); err != nil {
			return err
		}
		if err := s.checkDetails(ctx, req.Items); err != nil {
			return err
		}
		storedItems, err := s.Items.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("list invoice items: %w", err)
		}

		decision := invoice.DecideRevision(stored, storedItems, req.Figures, req.Items, s.today())
		if decision.Mode == invoice.RevisionNew {
			res, err = s.revise(ctx, stored, req, decision)
			return err
		}
		res, err = s.editInPlace(ctx, stored, storedItems, req)
		return err
	})
	if err != nil {
		return EditResult{}, err
	}
	if res.Revised {
		logger.Info(ctx, "invoice revised", "invoice_id", res.Invoice.ID, "past_invoice_id", res.Previous.ID)
	}
	return res, nil
}

// checkEditable rejects edits of canceled invoices and of invoices that
// already have a revision. Only the latest invoice of a chain is edited.
func (s *Service) checkEditable(ctx context.Context, inv *invoice.Invoice) error {
	if inv.Status == invoice.StatusCanceled {
		return apperror.NewConflict("canceled invoice cannot be edited").
			WithDetail("invoice_id", inv.ID.String())
	}
	revised, err := s.Invoices.HasRevision(ctx, inv.ID)
	if err != nil {
		return err
	}
	if revised {
		return apperror.NewConflict("invoice has been revised").
			WithDetail("invoice_id", inv.ID.String())
	}
	return nil
}

func (s *Service) checkDetails(ctx context.Context, items []*invoice.Item) error {
	ids := invoice.DetailIDs(items)
	if len(ids) == 0 {
		return nil
	}
	details, err := s.Bookings.GetDetailsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get booking details: %w", err)
	}
	if len(details) != len(ids) {
		return apperror.NewValidation(apperror.MsgItemsNotSaved)
	}
	return nil
}

func (s *Service) revise(ctx context.Context, stored *invoice.Invoice, req EditRequest, decision invoice.RevisionDecision) (EditResult, error) {
	rev := stored.Revise(req.Figures, s.today(), s.now())
	rev.RecipientName = req.RecipientName
	rev.Memo = req.Memo

	stored.Cancel(s.now())
	if err := s.Invoices.Update(ctx, stored); err != nil {
		return EditResult{}, fmt.Errorf("cancel invoice: %w", err)
	}
	if err := s.Invoices.Create(ctx, rev); err != nil {
		return EditResult{}, fmt.Errorf("create revised invoice: %w", err)
	}

	items := make([]*invoice.Item, len(req.Items))
	for i, it := range req.Items {
		fresh := *it
		fresh.Record = entity.NewRecord(s.now())
		fresh.InvoiceID = &rev.ID
		items[i] = &fresh
	}
	if len(items) > 0 {
		if err := s.Items.CreateBatch(ctx, items); err != nil {
			return EditResult{}, fmt.Errorf("create invoice items: %w", err)
		}
	}
	rev.Items = items

	if err := s.Audit.LogChange(ctx, audit.EntityInvoice, stored.ID, audit.ActionRevise, map[string]any{
		"revised_by":      rev.ID.String(),
		"items_changed":   decision.ItemsChanged,
		"invoice_changed": decision.InvoiceChanged,
		"old_total":       stored.TotalAmount.String(),
		"new_total":       rev.TotalAmount.String(),
	}); err != nil {
		return EditResult{}, fmt.Errorf("audit revision: %w", err)
	}
	if err := s.publish(ctx, rev, events.InvoiceRevised); err != nil {
		return EditResult{}, err
	}
	return EditResult{Invoice: rev, Revised: true, Previous: stored}, nil
}

func (s *Service) editInPlace(ctx context.Context, stored *invoice.Invoice, storedItems []*invoice.Item, req EditRequest) (EditResult, error) {
	plan, err := invoice.PlanInvoiceItems(storedItems, req.Items, stored.ID, s.now())
	if err != nil {
		return EditResult{}, err
	}

	stored.Figures = req.Figures
	stored.RecipientName = req.RecipientName
	stored.Memo = req.Memo
	stored.Touch(s.now())
	if err := s.Invoices.Update(ctx, stored); err != nil {
		return EditResult{}, fmt.Errorf("update invoice: %w", err)
	}
	for _, it := range plan.Updates {
		if err := s.Items.Update(ctx, it); err != nil {
			return EditResult{}, fmt.Errorf("update invoice item: %w", err)
		}
	}
	if len(plan.Removals) > 0 {
		if err := s.Items.Detach(ctx, invoice.ItemIDs(plan.Removals)); err != nil {
			return EditResult{}, fmt.Errorf("detach invoice items: %w", err)
		}
	}
	if len(plan.Creates) > 0 {
		if err := s.Items.CreateBatch(ctx, plan.Creates); err != nil {
			return EditResult{}, fmt.Errorf("create invoice items: %w", err)
		}
	}
	if err := s.Audit.LogChange(ctx, audit.EntityInvoice, stored.ID, audit.ActionUpdate, map[string]any{
		"updated": len(plan.Updates),
		"created": len(plan.Creates),
		"removed": len(plan.Removals),
	}); err != nil {
		return EditResult{}, fmt.Errorf("audit invoice update: %w", err)
	}
	return EditResult{Invoice: stored}, nil
}

// DeleteInvoice removes an invoice. Lobby items go with it; booking items
// return to draft and their details fall back to a payable status.
func (s *Service) DeleteInvoice(ctx context.Context, invoiceID id.ID) error {
	err := s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.Invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		items, err := s.Items.ListByInvoice(ctx, invoiceID)
		if err != nil {
			return fmt.Errorf("list invoice items: %w", err)
		}

		if inv.IsLobby() {
			if err := s.Items.DeleteByInvoice(ctx, invoiceID); err != nil {
				return fmt.Errorf("delete invoice items: %w", err)
			}
		} else if err := s.Items.DetachInvoice(ctx, invoiceID); err != nil {
			return fmt.Errorf("detach invoice items: %w", err)
		}
		if err := s.Invoices.Delete(ctx, invoiceID); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		if !inv.IsLobby() {
			if err := s.reopenDetails(ctx, invoice.DetailIDs(items)); err != nil {
				return err
			}
		}

		if err := s.Audit.LogChange(ctx, audit.EntityInvoice, invoiceID, audit.ActionDelete, map[string]any{
			"voucher_num":  inv.VoucherNum,
			"segment_num":  inv.SegmentNum,
			"total_amount": inv.TotalAmount.String(),
			"items":        len(items),
		}); err != nil {
			return fmt.Errorf("audit invoice delete: %w", err)
		}
		return s.publish(ctx, inv, events.InvoiceDeleted)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "invoice deleted", "invoice_id", invoiceID)
	return nil
}

func (s *Service) reopenDetails(ctx context.Context, detailIDs []id.ID) error {
	if len(detailIDs) == 0 {
		return nil
	}
	details, err := s.Bookings.GetDetailsByIDs(ctx, detailIDs)
	if err != nil {
		return fmt.Errorf("get booking details: %w", err)
	}
	for _, d := range details {
		billed, err := s.Items.CountBilled(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("count billed items: %w", err)
		}
		switch {
		case d.IsCanceled():
			d.Status = booking.StatusCanceled
		case billed > 0:
			d.Status = booking.StatusWithholdPayment
		default:
			d.Status = booking.StatusOfficial
		}
		d.Touch(s.now())
		if err := s.Bookings.UpdateDetail(ctx, d); err != nil {
			return fmt.Errorf("update booking detail: %w", err)
		}
	}
	return nil
}

// LobbyRequest is a walk-in sale.
type LobbyRequest struct {
	StaffID               id.ID
	TotalAmount           decimal.Decimal
	TotalWithoutTaxAmount decimal.Decimal
	TotalTaxAmount        decimal.Decimal
	Items                 []*invoice.Item
}

// CreateLobbyInvoice records a walk-in sale paid in cash.
func (s *Service) CreateLobbyInvoice(ctx context.Context, req LobbyRequest) (*invoice.Invoice, error) {
	ok, err := s.Staff.StaffExists(ctx, req.StaffID)
	if err != nil {
		return nil, fmt.Errorf("check staff: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("staff", req.StaffID.String())
	}
	if len(req.Items) == 0 {
		return nil, apperror.NewInvalidInput().WithDetail("field", "invoiceItems")
	}
	for _, it := range req.Items {
		if err := it.Validate(ctx); err != nil {
			return nil, err
		}
	}
	services, err := s.checkServices(ctx, req.Items)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, apperror.NewInvalidInput().WithCause(err)
		}
		return nil, err
	}
	for _, svc := range services {
		if svc.LocationType != catalog.LocationLobby {
			return nil, apperror.NewInvalidInput().WithDetail("serviceId", svc.ID.String())
		}
	}

	inv := &invoice.Invoice{
		Record: entity.NewRecord(s.now()),
		Figures: invoice.Figures{
			TotalAmount:           req.TotalAmount,
			TotalWithoutTaxAmount: req.TotalWithoutTaxAmount,
			TotalTaxAmount:        req.TotalTaxAmount,
			CashPaymentAmount:     req.TotalAmount,
		},
		SegmentNum:  1,
		StaffID:     req.StaffID,
		Status:      invoice.StatusCompleted,
		PaymentDate: s.today(),
	}
	err = s.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		voucher, err := s.Numerator.GetNextNumber(ctx, numerator.LobbyVoucher, s.now().In(s.loc))
		if err != nil {
			return fmt.Errorf("next voucher number: %w", err)
		}
		inv.VoucherNum = voucher
		if err := s.Invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		items := make([]*invoice.Item, len(req.Items))
		for i, it := range req.Items {
			fresh := *it
			fresh.Record = entity.NewRecord(s.now())
			fresh.BookingDetailID = nil
			fresh.InvoiceID = &inv.ID
			items[i] = &fresh
		}
		if err := s.Items.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("create invoice items: %w", err)
		}
		inv.Items = items

		return s.Publisher.Publish(ctx, events.Event{
			AggregateType: events.AggregateInvoice,
			AggregateID:   inv.ID,
			EventType:     events.LobbyInvoiceCreated,
			Payload:       inv,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "lobby invoice created", "invoice_id", inv.ID, "voucher_num", inv.VoucherNum, "total", inv.TotalAmount.String())
	return inv, nil
}

// GetInvoice returns an invoice with its items.
func (s *Service) GetInvoice(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Items, err = s.Items.ListByInvoice(ctx, invoiceID); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	return inv, nil
}

// ListInvoices returns one page of invoices and the total count.
func (s *Service) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Invoices.List(ctx, filter)
}

// PreviewAmounts computes the invoice totals for items at the configured
// tax rate. Discounts are taken from the items' booking details.
func (s *Service) PreviewAmounts(ctx context.Context, items []*invoice.Item) (invoice.Amounts, error) {
	services, err := s.checkServices(ctx, items)
	if err != nil {
		return invoice.Amounts{}, err
	}
	subtotalTypes := make(map[id.ID]catalog.SubtotalType, len(services))
	for serviceID, svc := range services {
		subtotalTypes[serviceID] = svc.SubtotalType
	}

	discounts := map[id.ID]decimal.Decimal{}
	if ids := invoice.DetailIDs(items); len(ids) > 0 {
		details, err := s.Bookings.GetDetailsByIDs(ctx, ids)
		if err != nil {
			return invoice.Amounts{}, fmt.Errorf("get booking details: %w", err)
		}
		for _, d := range details {
			discounts[d.ID] = d.DiscountAmount
		}
	}
	return invoice.CalculateAmounts(items, subtotalTypes, discounts, s.taxRate), nil
}
