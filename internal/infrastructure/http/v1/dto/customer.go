package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/domain/customer"
)

// CustomerRequest creates or replaces a customer.
type CustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	NameKana    string `json:"nameKana"`
	Address     string `json:"address"`
	Tel         string `json:"tel"`
	Fax         string `json:"fax"`
	ContactName string `json:"contactName"`
	ContactTel  string `json:"contactTel"`
	ContactMail string `json:"contactMail"`
	IsStudent   bool   `json:"isStudent"`
}

// ToCustomer maps the request to a new customer.
func (r CustomerRequest) ToCustomer(now time.Time) *customer.Customer {
	c := &customer.Customer{Record: entity.NewRecord(now)}
	r.Apply(c)
	return c
}

// Apply overwrites the editable fields of c.
func (r CustomerRequest) Apply(c *customer.Customer) {
	c.Name = r.Name
	c.NameKana = r.NameKana
	c.Address = r.Address
	c.Tel = r.Tel
	c.Fax = r.Fax
	c.ContactName = r.ContactName
	c.ContactTel = r.ContactTel
	c.ContactMail = r.ContactMail
	c.IsStudent = r.IsStudent
}

// CustomerExportRequest filters the customer list workbook. Dates are
// yyyy-mm-dd.
type CustomerExportRequest struct {
	Name        string          `json:"name"`
	ContactName string          `json:"contactName"`
	Tel         string          `json:"tel"`
	CreatedFrom string          `json:"createdFrom"`
	CreatedTo   string          `json:"createdTo"`
	BookingFrom string          `json:"bookingFrom"`
	BookingTo   string          `json:"bookingTo"`
	MinBookings int             `json:"minBookings" binding:"min=0"`
	MaxBookings int             `json:"maxBookings" binding:"min=0"`
	MinAmount   decimal.Decimal `json:"minAmount"`
	MaxAmount   decimal.Decimal `json:"maxAmount"`
}

// ToFilter converts to the domain filter. Date bounds are calendar days in
// loc; upper bounds are exclusive next-day instants.
func (r CustomerExportRequest) ToFilter(loc *time.Location) (customer.ExportFilter, error) {
	f := customer.ExportFilter{
		Name:        r.Name,
		ContactName: r.ContactName,
		Tel:         r.Tel,
		MinBookings: r.MinBookings,
		MaxBookings: r.MaxBookings,
		MinAmount:   r.MinAmount,
		MaxAmount:   r.MaxAmount,
	}
	var err error
	if f.CreatedFrom, err = dayStart(r.CreatedFrom, loc, 0); err != nil {
		return f, err
	}
	if f.CreatedTo, err = dayStart(r.CreatedTo, loc, 1); err != nil {
		return f, err
	}
	if f.BookingFrom, err = dayStart(r.BookingFrom, loc, 0); err != nil {
		return f, err
	}
	if f.BookingTo, err = dayStart(r.BookingTo, loc, 1); err != nil {
		return f, err
	}
	return f, nil
}

func dayStart(s string, loc *time.Location, addDays int) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := parseDay(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day()+addDays, 0, 0, 0, 0, loc), nil
}
