// Package booking holds reservations of meeting rooms: the status machine,
// double-booking detection, the cancellation fee policy and the workflow
// that keeps a booking's draft room-fee items in step with its details.
package booking

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/tariff"
)

// Status of a booking detail.
type Status int

const (
	StatusBlocked         Status = -1
	StatusOfficial        Status = 1
	StatusTemporary       Status = 2
	StatusWaitingCancel   Status = 3
	StatusCheckIn         Status = 4
	StatusWithholdPayment Status = 5
	StatusCompletePayment Status = 6
	StatusCanceled        Status = 7
)

// Valid reports whether s can be stored. Blocked is a display-only status.
func (s Status) Valid() bool {
	return s >= StatusOfficial && s <= StatusCanceled
}

// Active reports whether a detail in status s occupies its room.
func (s Status) Active() bool {
	return s != StatusWaitingCancel && s != StatusCanceled
}

// CancelType selects the cancellation fee policy.
type CancelType int

const (
	CancelNone    CancelType = 0
	CancelNormal  CancelType = 1
	CancelStudent CancelType = 2
	CancelOthers  CancelType = 3
)

// Valid reports whether t is a known policy. CancelNone is valid.
func (t CancelType) Valid() bool {
	return t >= CancelNone && t <= CancelOthers
}

// LayoutType is the table arrangement requested for a room.
type LayoutType int

const (
	LayoutHollowSquare LayoutType = 1
	LayoutSchool       LayoutType = 2
	LayoutInterview    LayoutType = 3
	LayoutBanquet      LayoutType = 4
	LayoutTheater      LayoutType = 5
	LayoutOther        LayoutType = 6
)

var layoutLabels = map[LayoutType]string{
	LayoutHollowSquare: "ロ型",
	LayoutSchool:       "S型",
	LayoutInterview:    "面接",
	LayoutBanquet:      "宴会",
	LayoutTheater:      "シアター型",
	LayoutOther:        "その他",
}

// LayoutLabel returns the display label of t, or "" when unknown.
func LayoutLabel(t LayoutType) string {
	return layoutLabels[t]
}

// Booking is a reservation made by a customer. It owns one or more details.
type Booking struct {
	entity.Record

	CustomerID  id.ID  `db:"customer_id" json:"customerId"`
	StaffID     id.ID  `db:"staff_id" json:"staffId"`
	ContactName string `db:"contact_name" json:"contactName"`
	ContactTel  string `db:"contact_tel" json:"contactTel"`
	ContactMail string `db:"contact_mail" json:"contactMail"`
	Memo        string `db:"memo" json:"memo"`

	Details  []*Detail        `db:"-" json:"bookingDetails,omitempty"`
	Services []*DetailService `db:"-" json:"services,omitempty"`
}

// Validate implements entity.Validatable.
func (b *Booking) Validate(ctx context.Context) error {
	if id.IsNil(b.CustomerID) {
		return apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	if id.IsNil(b.StaffID) {
		return apperror.NewValidation("staff is required").WithDetail("field", "staffId")
	}
	if len(b.Details) == 0 {
		return apperror.NewValidation("at least one booking detail is required").WithDetail("field", "bookingDetails")
	}
	for _, d := range b.Details {
		if err := d.Validate(ctx); err != nil {
			return err
		}
	}
	for _, s := range b.Services {
		if id.IsNil(s.ServiceID) || s.UsageCount < 0 {
			return apperror.NewInvalidInput().WithDetail("field", "services")
		}
	}
	return nil
}

// Cancellation records who canceled a detail and when.
type Cancellation struct {
	StaffID       *id.ID           `db:"cancel_staff_id" json:"cancelStaffId"`
	RequesterName *string          `db:"cancel_requester_name" json:"cancelRequesterName"`
	RequesterTel  *string          `db:"cancel_requester_tel" json:"cancelRequesterTel"`
	CanceledAt    *time.Time       `db:"cancel_datetime" json:"cancelDatetime"`
	Price         *decimal.Decimal `db:"cancel_price" json:"cancelPrice"`
}

// IsCanceled reports whether cancel metadata has been written.
func (c Cancellation) IsCanceled() bool {
	return c.CanceledAt != nil
}

// Detail is the occupation of one room for one time range. The unit prices
// of the room's tariff are copied onto the detail when it is saved.
type Detail struct {
	entity.Record
	Cancellation

	BookingID          id.ID       `db:"booking_id" json:"bookingId"`
	RoomID             id.ID       `db:"room_id" json:"roomId"`
	Title              string      `db:"title" json:"title"`
	Start              time.Time   `db:"start_datetime" json:"startDatetime"`
	End                time.Time   `db:"end_datetime" json:"endDatetime"`
	Status             Status      `db:"status" json:"status"`
	GuestCount         int         `db:"guest_count" json:"guestCount"`
	LayoutType         *LayoutType `db:"layout_type" json:"layoutType"`
	LayoutLocation     string      `db:"layout_location" json:"layoutLocation"`
	ExtraTableCount    int         `db:"extra_table_count" json:"extraTableCount"`
	ExtraChairCount    int         `db:"extra_chair_count" json:"extraChairCount"`
	ScheduledReplyDate *time.Time  `db:"scheduled_reply_date" json:"scheduledReplyDate"`
	Note               string      `db:"note" json:"note"`
	Memo               string      `db:"memo" json:"memo"`

	BasicAmount     decimal.Decimal      `db:"basic_amount" json:"basicAmount"`
	ExtensionAmount decimal.Decimal      `db:"extension_amount" json:"extensionAmount"`
	AllDayAmount    decimal.Decimal      `db:"all_day_amount" json:"allDayAmount"`
	TaxRate         decimal.Decimal      `db:"tax_rate" json:"taxRate"`
	SubtotalType    catalog.SubtotalType `db:"subtotal_type" json:"subtotalType"`

	DiscountAmount               decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	DepositAmount                decimal.Decimal `db:"deposit_amount" json:"depositAmount"`
	TotalServiceWithoutTaxAmount decimal.Decimal `db:"total_service_without_tax_amount" json:"totalServiceWithoutTaxAmount"`

	CancelType          CancelType `db:"cancel_type" json:"cancelType"`
	CancellationFeeDays *int       `db:"cancellation_fee_days" json:"cancellationFeeDays"`
}

// Validate implements entity.Validatable.
func (d *Detail) Validate(_ context.Context) error {
	if id.IsNil(d.RoomID) {
		return apperror.NewValidation("room is required").WithDetail("field", "roomId")
	}
	if d.Start.IsZero() || d.End.IsZero() || !d.End.After(d.Start) {
		return apperror.NewValidation("end must be after start").WithDetail("field", "endDatetime")
	}
	if !d.Status.Valid() {
		return apperror.NewValidation("invalid status").WithDetail("status", int(d.Status))
	}
	if !d.CancelType.Valid() {
		return apperror.NewValidation("invalid cancel type").WithDetail("cancelType", int(d.CancelType))
	}
	if d.LayoutType != nil && LayoutLabel(*d.LayoutType) == "" {
		return apperror.NewValidation("invalid layout type").WithDetail("layoutType", int(*d.LayoutType))
	}
	if d.GuestCount < 0 || d.ExtraTableCount < 0 || d.ExtraChairCount < 0 {
		return apperror.NewValidation("counts must not be negative")
	}
	if d.CancellationFeeDays != nil && *d.CancellationFeeDays < 0 {
		return apperror.NewValidation("cancellation fee days must not be negative")
	}
	d.Title = strings.TrimSpace(d.Title)
	return nil
}

// Interval returns the occupied range of the detail.
func (d *Detail) Interval() Interval {
	return Interval{Start: d.Start, End: d.End}
}

// Rates returns the snapshotted unit prices for the tariff calculator.
func (d *Detail) Rates(incurred decimal.Decimal) tariff.Rates {
	return tariff.Rates{
		Basic:     d.BasicAmount,
		Extension: d.ExtensionAmount,
		AllDay:    d.AllDayAmount,
		Incurred:  incurred,
		TaxRate:   d.TaxRate,
	}
}

// DetailService is equipment or catering ordered with a booking. The
// booking's services are stored against its main detail.
type DetailService struct {
	entity.BaseEntity

	BookingDetailID id.ID           `db:"booking_detail_id" json:"bookingDetailId"`
	ServiceID       id.ID           `db:"service_id" json:"serviceId"`
	UsageCount      int             `db:"usage_count" json:"usageCount"`
	Price           decimal.Decimal `db:"price" json:"price"`
}

// DetailView is a detail joined with its booking, room and customer for
// list screens.
type DetailView struct {
	Detail

	RoomName         string      `db:"room_name" json:"roomName"`
	CustomerID       id.ID       `db:"customer_id" json:"customerId"`
	CustomerName     string      `db:"customer_name" json:"customerName"`
	CustomerNameKana string      `db:"customer_name_kana" json:"customerNameKana"`
	ContactName      string      `db:"contact_name" json:"contactName"`
	ContactTel       string      `db:"contact_tel" json:"contactTel"`
	CancelStaffName  *string     `db:"cancel_staff_name" json:"cancelStaffName"`
	ItemCount        int         `db:"item_count" json:"-"`
	InvoiceIDs       []id.ID     `db:"invoice_ids" json:"invoiceIds"`
	PaymentDates     []time.Time `db:"payment_dates" json:"-"`

	HasInvoiceItem bool `db:"-" json:"hasInvoiceItem"`
	IsPastInvoice  bool `db:"-" json:"isPastInvoice"`
}
