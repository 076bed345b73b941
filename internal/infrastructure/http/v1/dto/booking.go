package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
)

// DetailRequest is one room occupation of a booking. An empty ID adds a
// new detail.
type DetailRequest struct {
	ID                  *id.ID              `json:"id"`
	RoomID              id.ID               `json:"roomId" binding:"required"`
	Title               string              `json:"title"`
	StartDatetime       time.Time           `json:"startDatetime" binding:"required"`
	EndDatetime         time.Time           `json:"endDatetime" binding:"required"`
	Status              booking.Status      `json:"status" binding:"required"`
	GuestCount          int                 `json:"guestCount" binding:"min=0"`
	LayoutType          *booking.LayoutType `json:"layoutType"`
	LayoutLocation      string              `json:"layoutLocation"`
	ExtraTableCount     int                 `json:"extraTableCount" binding:"min=0"`
	ExtraChairCount     int                 `json:"extraChairCount" binding:"min=0"`
	ScheduledReplyDate  string              `json:"scheduledReplyDate"`
	Note                string              `json:"note"`
	Memo                string              `json:"memo"`
	DiscountAmount      decimal.Decimal     `json:"discountAmount"`
	DepositAmount       decimal.Decimal     `json:"depositAmount"`
	CancelType          booking.CancelType  `json:"cancelType"`
	CancellationFeeDays *int                `json:"cancellationFeeDays"`
}

// ToDetail maps the request to a domain detail.
func (r DetailRequest) ToDetail(now time.Time) (*booking.Detail, error) {
	d := &booking.Detail{
		RoomID:              r.RoomID,
		Title:               r.Title,
		Start:               r.StartDatetime,
		End:                 r.EndDatetime,
		Status:              r.Status,
		GuestCount:          r.GuestCount,
		LayoutType:          r.LayoutType,
		LayoutLocation:      r.LayoutLocation,
		ExtraTableCount:     r.ExtraTableCount,
		ExtraChairCount:     r.ExtraChairCount,
		Note:                r.Note,
		Memo:                r.Memo,
		DiscountAmount:      r.DiscountAmount,
		DepositAmount:       r.DepositAmount,
		CancelType:          r.CancelType,
		CancellationFeeDays: r.CancellationFeeDays,
	}
	if r.ID != nil {
		d.ID = *r.ID
		d.Timestamps = entity.NewTimestamps(now)
	}
	reply, err := ParseOptionalDay(r.ScheduledReplyDate)
	if err != nil {
		return nil, err
	}
	d.ScheduledReplyDate = reply
	return d, nil
}

// ServiceUsageRequest orders units of a service with the booking.
type ServiceUsageRequest struct {
	ServiceID  id.ID `json:"serviceId" binding:"required"`
	UsageCount int   `json:"usageCount" binding:"min=0"`
}

// BookingRequest creates a booking or, with ID, updates it. The first
// detail is the main detail.
type BookingRequest struct {
	ID             *id.ID                `json:"id"`
	CustomerID     id.ID                 `json:"customerId" binding:"required"`
	ContactName    string                `json:"contactName"`
	ContactTel     string                `json:"contactTel"`
	ContactMail    string                `json:"contactMail"`
	Memo           string                `json:"memo"`
	BookingDetails []DetailRequest       `json:"bookingDetails" binding:"required,min=1,dive"`
	Services       []ServiceUsageRequest `json:"services" binding:"dive"`
}

// ToBooking maps the request to a domain booking made by staffID.
func (r BookingRequest) ToBooking(staffID id.ID, now time.Time) (*booking.Booking, error) {
	b := &booking.Booking{
		CustomerID:  r.CustomerID,
		StaffID:     staffID,
		ContactName: r.ContactName,
		ContactTel:  r.ContactTel,
		ContactMail: r.ContactMail,
		Memo:        r.Memo,
	}
	if r.ID != nil {
		b.ID = *r.ID
	}
	for _, dr := range r.BookingDetails {
		d, err := dr.ToDetail(now)
		if err != nil {
			return nil, err
		}
		b.Details = append(b.Details, d)
	}
	for _, s := range r.Services {
		b.Services = append(b.Services, &booking.DetailService{
			BaseEntity: entity.NewBaseEntity(),
			ServiceID:  s.ServiceID,
			UsageCount: s.UsageCount,
		})
	}
	return b, nil
}

// CancelRequest carries the cancel metadata entered by staff.
type CancelRequest struct {
	RequesterName string `json:"cancelRequesterName" binding:"required"`
	RequesterTel  string `json:"cancelRequesterTel" binding:"required"`
	CancelDate    string `json:"cancelDate"`
}

// ToCancel converts to the domain request made by staffID.
func (r CancelRequest) ToCancel(staffID id.ID) (booking.CancelRequest, error) {
	date, err := ParseOptionalDay(r.CancelDate)
	if err != nil {
		return booking.CancelRequest{}, err
	}
	return booking.CancelRequest{
		StaffID:       staffID,
		RequesterName: r.RequesterName,
		RequesterTel:  r.RequesterTel,
		CancelDate:    date,
	}, nil
}

// DetailPatchRequest edits a detail. Nil fields are kept. Cancel is needed
// when Status moves the detail to canceled.
type DetailPatchRequest struct {
	Status                       *booking.Status     `json:"status"`
	Title                        *string             `json:"title"`
	GuestCount                   *int                `json:"guestCount"`
	LayoutType                   *booking.LayoutType `json:"layoutType"`
	LayoutLocation               *string             `json:"layoutLocation"`
	ExtraTableCount              *int                `json:"extraTableCount"`
	ExtraChairCount              *int                `json:"extraChairCount"`
	ScheduledReplyDate           *string             `json:"scheduledReplyDate"`
	Note                         *string             `json:"note"`
	Memo                         *string             `json:"memo"`
	DiscountAmount               *decimal.Decimal    `json:"discountAmount"`
	DepositAmount                *decimal.Decimal    `json:"depositAmount"`
	TotalServiceWithoutTaxAmount *decimal.Decimal    `json:"totalServiceWithoutTaxAmount"`
	CancelType                   *booking.CancelType `json:"cancelType"`
	CancellationFeeDays          *int                `json:"cancellationFeeDays"`
	Cancel                       *CancelRequest      `json:"cancel"`
}

// ToPatch converts to the domain patch made by staffID.
func (r DetailPatchRequest) ToPatch(staffID id.ID) (booking.DetailPatch, error) {
	p := booking.DetailPatch{
		Status:                       r.Status,
		Title:                        r.Title,
		GuestCount:                   r.GuestCount,
		LayoutType:                   r.LayoutType,
		LayoutLocation:               r.LayoutLocation,
		ExtraTableCount:              r.ExtraTableCount,
		ExtraChairCount:              r.ExtraChairCount,
		Note:                         r.Note,
		Memo:                         r.Memo,
		DiscountAmount:               r.DiscountAmount,
		DepositAmount:                r.DepositAmount,
		TotalServiceWithoutTaxAmount: r.TotalServiceWithoutTaxAmount,
		CancelType:                   r.CancelType,
		CancellationFeeDays:          r.CancellationFeeDays,
	}
	if r.ScheduledReplyDate != nil {
		day, err := parseDay(*r.ScheduledReplyDate)
		if err != nil {
			return p, err
		}
		p.ScheduledReplyDate = &day
	}
	if r.Cancel != nil {
		cancel, err := r.Cancel.ToCancel(staffID)
		if err != nil {
			return p, err
		}
		p.Cancel = cancel
	}
	return p, nil
}

// StatusChangeRequest moves several details to one status.
type StatusChangeRequest struct {
	BookingDetailIDs   []id.ID        `json:"bookingDetailIds" binding:"required,min=1"`
	Status             booking.Status `json:"status" binding:"required"`
	ScheduledReplyDate string         `json:"scheduledReplyDate"`
	Cancel             *CancelRequest `json:"cancel"`
}

// ToChange converts to the domain change made by staffID.
func (r StatusChangeRequest) ToChange(staffID id.ID) (booking.StatusChange, error) {
	change := booking.StatusChange{DetailIDs: r.BookingDetailIDs, Status: r.Status}
	reply, err := ParseOptionalDay(r.ScheduledReplyDate)
	if err != nil {
		return change, err
	}
	change.ScheduledReplyDate = reply
	if r.Cancel != nil {
		if change.Cancel, err = r.Cancel.ToCancel(staffID); err != nil {
			return change, err
		}
	}
	return change, nil
}

// DetailListRequest filters the booking detail list.
type DetailListRequest struct {
	PageRequest
	BookingID    string `form:"bookingId"`
	CustomerName string `form:"customerName"`
	Statuses     []int  `form:"status"`
	From         string `form:"from"`
	To           string `form:"to"`
}

// ToFilter converts to the domain filter. To is inclusive.
func (r DetailListRequest) ToFilter(loc *time.Location) (booking.ListFilter, error) {
	r.Defaults()
	f := booking.ListFilter{
		CustomerName: r.CustomerName,
		Limit:        r.Limit,
		Offset:       r.Offset,
	}
	if r.BookingID != "" {
		bookingID, err := id.Parse(r.BookingID)
		if err != nil {
			return f, apperror.NewInvalidInput().WithDetail("bookingId", r.BookingID)
		}
		f.BookingID = &bookingID
	}
	for _, s := range r.Statuses {
		f.Statuses = append(f.Statuses, booking.Status(s))
	}
	if r.From != "" {
		from, err := dayStart(r.From, loc, 0)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if r.To != "" {
		to, err := dayStart(r.To, loc, 1)
		if err != nil {
			return f, err
		}
		f.To = &to
	}
	return f, nil
}
