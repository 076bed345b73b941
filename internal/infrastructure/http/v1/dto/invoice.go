package dto

import (
	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/billing"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/invoice"
)

// ItemRequest is a submitted invoice item. An empty ID adds a new item.
type ItemRequest struct {
	ID                       *id.ID              `json:"id"`
	BookingDetailID          *id.ID              `json:"bookingDetailId"`
	ServiceID                id.ID               `json:"serviceId" binding:"required"`
	Name                     string              `json:"name" binding:"required"`
	Type                     catalog.ServiceType `json:"type" binding:"required"`
	UnitAmount               decimal.Decimal     `json:"unitAmount"`
	Count                    decimal.Decimal     `json:"count"`
	TaxAmount                decimal.Decimal     `json:"taxAmount"`
	SubtotalTaxAmount        decimal.Decimal     `json:"subtotalTaxAmount"`
	SubtotalWithoutTaxAmount decimal.Decimal     `json:"subtotalWithoutTaxAmount"`
	SubtotalAmount           decimal.Decimal     `json:"subtotalAmount"`
}

// ToItem maps the request to a domain item.
func (r ItemRequest) ToItem() *invoice.Item {
	it := &invoice.Item{
		BookingDetailID:          r.BookingDetailID,
		ServiceID:                r.ServiceID,
		Name:                     r.Name,
		Type:                     r.Type,
		UnitAmount:               r.UnitAmount,
		Count:                    r.Count,
		TaxAmount:                r.TaxAmount,
		SubtotalTaxAmount:        r.SubtotalTaxAmount,
		SubtotalWithoutTaxAmount: r.SubtotalWithoutTaxAmount,
		SubtotalAmount:           r.SubtotalAmount,
	}
	if r.ID != nil {
		it.ID = *r.ID
	}
	return it
}

// ToItems maps a list of item requests.
func ToItems(reqs []ItemRequest) []*invoice.Item {
	items := make([]*invoice.Item, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, r.ToItem())
	}
	return items
}

// ReconcileItemsRequest replaces the draft items of a booking detail.
type ReconcileItemsRequest struct {
	BookingDetailID id.ID         `json:"bookingDetailId" binding:"required"`
	Items           []ItemRequest `json:"invoiceItems" binding:"dive"`
}

// AmountsRequest asks for the totals of a set of items.
type AmountsRequest struct {
	Items []ItemRequest `json:"invoiceItems" binding:"required,min=1,dive"`
}

// CreateInvoiceRequest issues an invoice for items of a booking. ID,
// VoucherNum and SegmentNum of a stored invoice issue it again.
type CreateInvoiceRequest struct {
	ID             *id.ID          `json:"id"`
	VoucherNum     string          `json:"voucherNum"`
	SegmentNum     int             `json:"segmentNum" binding:"min=0"`
	BookingID      id.ID           `json:"bookingId" binding:"required"`
	RecipientName  string          `json:"recipientName"`
	Memo           string          `json:"memo"`
	Figures        invoice.Figures `json:"figures"`
	InvoiceItemIDs []id.ID         `json:"invoiceItemIds" binding:"required,min=1"`
}

// ToIssue converts to the domain request made by staffID.
func (r CreateInvoiceRequest) ToIssue(staffID id.ID) billing.IssueRequest {
	req := billing.IssueRequest{
		VoucherNum:    r.VoucherNum,
		SegmentNum:    r.SegmentNum,
		BookingID:     r.BookingID,
		StaffID:       staffID,
		RecipientName: r.RecipientName,
		Memo:          r.Memo,
		Figures:       r.Figures,
		ItemIDs:       r.InvoiceItemIDs,
	}
	if r.ID != nil {
		req.ID = *r.ID
	}
	return req
}

// EditInvoiceRequest is the submitted state of an invoice.
type EditInvoiceRequest struct {
	Figures       invoice.Figures `json:"figures"`
	RecipientName string          `json:"recipientName"`
	Memo          string          `json:"memo"`
	Items         []ItemRequest   `json:"invoiceItems" binding:"dive"`
}

// ToEdit converts to the domain request.
func (r EditInvoiceRequest) ToEdit() billing.EditRequest {
	return billing.EditRequest{
		Figures:       r.Figures,
		RecipientName: r.RecipientName,
		Memo:          r.Memo,
		Items:         ToItems(r.Items),
	}
}

// EditInvoiceResponse tells whether the edit produced a revision.
type EditInvoiceResponse struct {
	Invoice           *invoice.Invoice `json:"invoice"`
	Revised           bool             `json:"revised"`
	PreviousInvoiceID *string          `json:"previousInvoiceId,omitempty"`
}

// FromEditResult creates the response of an invoice edit.
func FromEditResult(res billing.EditResult) EditInvoiceResponse {
	out := EditInvoiceResponse{Invoice: res.Invoice, Revised: res.Revised}
	if res.Previous != nil {
		prev := res.Previous.ID.String()
		out.PreviousInvoiceID = &prev
	}
	return out
}

// LobbyInvoiceRequest is a walk-in sale.
type LobbyInvoiceRequest struct {
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	TotalWithoutTaxAmount decimal.Decimal `json:"totalWithoutTaxAmount"`
	TotalTaxAmount        decimal.Decimal `json:"totalTaxAmount"`
	Items                 []ItemRequest   `json:"invoiceItems" binding:"required,min=1,dive"`
}

// ToLobby converts to the domain request made by staffID.
func (r LobbyInvoiceRequest) ToLobby(staffID id.ID) billing.LobbyRequest {
	return billing.LobbyRequest{
		StaffID:               staffID,
		TotalAmount:           r.TotalAmount,
		TotalWithoutTaxAmount: r.TotalWithoutTaxAmount,
		TotalTaxAmount:        r.TotalTaxAmount,
		Items:                 ToItems(r.Items),
	}
}

// InvoiceListRequest filters the invoice list. Dates are payment days,
// both inclusive.
type InvoiceListRequest struct {
	PageRequest
	BookingID    string `form:"bookingId"`
	CustomerName string `form:"customerName"`
	Status       *int   `form:"status"`
	From         string `form:"from"`
	To           string `form:"to"`
	Lobby        *bool  `form:"lobby"`
}

// ToFilter converts to the domain filter.
func (r InvoiceListRequest) ToFilter() (invoice.ListFilter, error) {
	r.Defaults()
	f := invoice.ListFilter{
		CustomerName: r.CustomerName,
		Lobby:        r.Lobby,
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
	if r.Status != nil {
		st := invoice.Status(*r.Status)
		f.Status = &st
	}
	var err error
	if f.From, err = ParseOptionalDay(r.From); err != nil {
		return f, err
	}
	if f.To, err = ParseOptionalDay(r.To); err != nil {
		return f, err
	}
	return f, nil
}
