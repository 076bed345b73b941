// Package invoice holds invoices, their line items and the pure rules that
// decide how items are reconciled and when a settled invoice is revised.
package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/tariff"
)

// Status of an invoice.
type Status int

const (
	StatusCanceled  Status = 0
	StatusCompleted Status = 1
)

// Item is a priced line. A nil InvoiceID marks a draft item that is billed
// to its booking detail but not yet attached to an invoice.
type Item struct {
	entity.Record

	BookingDetailID          *id.ID              `db:"booking_detail_id" json:"bookingDetailId"`
	InvoiceID                *id.ID              `db:"invoice_id" json:"invoiceId"`
	ServiceID                id.ID               `db:"service_id" json:"serviceId"`
	Name                     string              `db:"name" json:"name"`
	Type                     catalog.ServiceType `db:"type" json:"type"`
	UnitAmount               decimal.Decimal     `db:"unit_amount" json:"unitAmount"`
	Count                    decimal.Decimal     `db:"count" json:"count"`
	TaxAmount                decimal.Decimal     `db:"tax_amount" json:"taxAmount"`
	SubtotalTaxAmount        decimal.Decimal     `db:"subtotal_tax_amount" json:"subtotalTaxAmount"`
	SubtotalWithoutTaxAmount decimal.Decimal     `db:"subtotal_without_tax_amount" json:"subtotalWithoutTaxAmount"`
	SubtotalAmount           decimal.Decimal     `db:"subtotal_amount" json:"subtotalAmount"`
}

// IsDraft reports whether the item is not attached to an invoice.
func (i *Item) IsDraft() bool {
	return i.InvoiceID == nil
}

// Validate checks the item fields that do not need the database.
func (i *Item) Validate(_ context.Context) error {
	if id.IsNil(i.ServiceID) {
		return apperror.NewValidation("service is required").WithDetail("field", "serviceId")
	}
	if i.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !i.Type.Valid() {
		return apperror.NewValidation("invalid service type").WithDetail("field", "type")
	}
	if i.Count.IsNegative() {
		return apperror.NewValidation("count must not be negative").WithDetail("field", "count")
	}
	return nil
}

// sameContent compares the fields an invoice revision looks at.
func (i *Item) sameContent(o *Item) bool {
	return i.Count.Equal(o.Count) &&
		i.UnitAmount.Equal(o.UnitAmount) &&
		i.SubtotalAmount.Equal(o.SubtotalAmount) &&
		i.SubtotalTaxAmount.Equal(o.SubtotalTaxAmount) &&
		i.Name == o.Name
}

// sameFields compares every writable field.
func (i *Item) sameFields(o *Item) bool {
	return i.sameContent(o) &&
		i.ServiceID == o.ServiceID &&
		i.Type == o.Type &&
		i.TaxAmount.Equal(o.TaxAmount) &&
		i.SubtotalWithoutTaxAmount.Equal(o.SubtotalWithoutTaxAmount) &&
		sameID(i.BookingDetailID, o.BookingDetailID)
}

// overwrite copies the writable fields of src. Identity and invoice link
// stay untouched.
func (i *Item) overwrite(src *Item, now time.Time) {
	i.ServiceID = src.ServiceID
	i.Name = src.Name
	i.Type = src.Type
	i.UnitAmount = src.UnitAmount
	i.Count = src.Count
	i.TaxAmount = src.TaxAmount
	i.SubtotalTaxAmount = src.SubtotalTaxAmount
	i.SubtotalWithoutTaxAmount = src.SubtotalWithoutTaxAmount
	i.SubtotalAmount = src.SubtotalAmount
	i.BookingDetailID = src.BookingDetailID
	i.Touch(now)
}

func sameID(a, b *id.ID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// NewRoomFeeItem turns a tariff line into a draft item of detailID.
func NewRoomFeeItem(line tariff.Line, service *catalog.Service, detailID id.ID, now time.Time) *Item {
	return &Item{
		Record:                   entity.NewRecord(now),
		BookingDetailID:          &detailID,
		ServiceID:                line.ServiceID,
		Name:                     service.Name,
		Type:                     service.Type,
		UnitAmount:               line.Unit,
		Count:                    line.Count,
		TaxAmount:                line.Tax,
		SubtotalTaxAmount:        line.Tax.Mul(line.Count),
		SubtotalWithoutTaxAmount: line.SubtotalWithoutTax,
		SubtotalAmount:           line.Subtotal,
	}
}

// NewCancellationItem is the single tax-free item that replaces the drafts
// of a canceled detail.
func NewCancellationItem(service *catalog.Service, detailID id.ID, fee decimal.Decimal, now time.Time) *Item {
	return &Item{
		Record:                   entity.NewRecord(now),
		BookingDetailID:          &detailID,
		ServiceID:                service.ID,
		Name:                     service.Name,
		Type:                     service.Type,
		UnitAmount:               fee,
		Count:                    decimal.NewFromInt(1),
		TaxAmount:                decimal.Zero,
		SubtotalTaxAmount:        decimal.Zero,
		SubtotalWithoutTaxAmount: fee,
		SubtotalAmount:           fee,
	}
}

// Figures are the monetary fields of an invoice.
type Figures struct {
	TotalAmount              decimal.Decimal `db:"total_amount" json:"totalAmount"`
	TotalWithoutTaxAmount    decimal.Decimal `db:"total_without_tax_amount" json:"totalWithoutTaxAmount"`
	TotalTaxAmount           decimal.Decimal `db:"total_tax_amount" json:"totalTaxAmount"`
	ServiceAmount            decimal.Decimal `db:"service_amount" json:"serviceAmount"`
	ServiceWithoutTaxAmount  decimal.Decimal `db:"service_without_tax_amount" json:"serviceWithoutTaxAmount"`
	DiscountAmount           decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	DiscountWithoutTaxAmount decimal.Decimal `db:"discount_without_tax_amount" json:"discountWithoutTaxAmount"`
	DepositAmount            decimal.Decimal `db:"deposit_amount" json:"depositAmount"`
	CashPaymentAmount        decimal.Decimal `db:"cash_payment_amount" json:"cashPaymentAmount"`
	CardPaymentAmount        decimal.Decimal `db:"card_payment_amount" json:"cardPaymentAmount"`
	CreditPaymentAmount      decimal.Decimal `db:"credit_payment_amount" json:"creditPaymentAmount"`
}

// Equal compares all monetary fields.
func (f Figures) Equal(o Figures) bool {
	return f.TotalAmount.Equal(o.TotalAmount) &&
		f.TotalWithoutTaxAmount.Equal(o.TotalWithoutTaxAmount) &&
		f.TotalTaxAmount.Equal(o.TotalTaxAmount) &&
		f.ServiceAmount.Equal(o.ServiceAmount) &&
		f.ServiceWithoutTaxAmount.Equal(o.ServiceWithoutTaxAmount) &&
		f.DiscountAmount.Equal(o.DiscountAmount) &&
		f.DiscountWithoutTaxAmount.Equal(o.DiscountWithoutTaxAmount) &&
		f.DepositAmount.Equal(o.DepositAmount) &&
		f.CashPaymentAmount.Equal(o.CashPaymentAmount) &&
		f.CardPaymentAmount.Equal(o.CardPaymentAmount) &&
		f.CreditPaymentAmount.Equal(o.CreditPaymentAmount)
}

// Invoice is a billing document. A nil BookingID marks a lobby sale.
type Invoice struct {
	entity.Record
	Figures

	VoucherNum     string    `db:"voucher_num" json:"voucherNum"`
	SegmentNum     int       `db:"segment_num" json:"segmentNum"`
	BookingID      *id.ID    `db:"booking_id" json:"bookingId"`
	StaffID        id.ID     `db:"staff_id" json:"staffId"`
	Status         Status    `db:"status" json:"status"`
	PaymentDate    time.Time `db:"payment_date" json:"paymentDate"`
	IsPastRevision bool      `db:"is_past_revision" json:"isPastRevision"`
	PastInvoiceID  *id.ID    `db:"past_invoice_id" json:"pastInvoiceId"`
	RecipientName  string    `db:"recipient_name" json:"recipientName"`
	Memo           string    `db:"memo" json:"memo"`
	Items          []*Item   `db:"-" json:"items,omitempty"`
}

// IsLobby reports whether the invoice is a walk-in sale.
func (inv *Invoice) IsLobby() bool {
	return inv.BookingID == nil
}

// Validate checks invoice fields.
func (inv *Invoice) Validate(_ context.Context) error {
	if id.IsNil(inv.StaffID) {
		return apperror.NewValidation("staff is required").WithDetail("field", "staffId")
	}
	if inv.SegmentNum < 1 {
		return apperror.NewValidation("segment number must be positive").WithDetail("field", "segmentNum")
	}
	if inv.PaymentDate.IsZero() {
		return apperror.NewValidation("payment date is required").WithDetail("field", "paymentDate")
	}
	return nil
}

// DetailIDs returns the distinct booking details of items.
func DetailIDs(items []*Item) []id.ID {
	var ids []id.ID
	for _, it := range items {
		if it.BookingDetailID != nil {
			ids = append(ids, *it.BookingDetailID)
		}
	}
	return id.Unique(ids)
}

// ItemIDs returns the ids of items.
func ItemIDs(items []*Item) []id.ID {
	out := make([]id.ID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
