package invoice

import (
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
)

// Plan lists the writes that bring stored items in line with a submission.
type Plan struct {
	Updates  []*Item
	Creates  []*Item
	Removals []*Item
}

// Empty reports whether applying the plan changes nothing.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0 && len(p.Creates) == 0 && len(p.Removals) == 0
}

// DraftRemovals returns the removals that are not attached to an invoice.
func (p Plan) DraftRemovals() []*Item {
	var out []*Item
	for _, it := range p.Removals {
		if it.IsDraft() {
			out = append(out, it)
		}
	}
	return out
}

// PlanReconcile matches the items submitted for a booking detail against
// the stored ones. Every submitted item must name ownerDetailID, and an id
// must refer to a stored item of that detail. Updates only contain items
// whose fields changed, so a repeated submission plans nothing.
func PlanReconcile(existing, submitted []*Item, ownerDetailID id.ID, now time.Time) (Plan, error) {
	for _, it := range submitted {
		if it.BookingDetailID == nil || *it.BookingDetailID != ownerDetailID {
			return Plan{}, apperror.NewValidation(apperror.MsgItemsNotSaved).
				WithDetail("bookingDetailId", ownerDetailID.String())
		}
	}
	return plan(existing, submitted, now, func(it *Item) {
		it.BookingDetailID = &ownerDetailID
	})
}

// PlanInvoiceItems matches the items submitted while editing an invoice in
// place. New items are attached to invoiceID.
func PlanInvoiceItems(existing, submitted []*Item, invoiceID id.ID, now time.Time) (Plan, error) {
	return plan(existing, submitted, now, func(it *Item) {
		it.InvoiceID = &invoiceID
	})
}

func plan(existing, submitted []*Item, now time.Time, attach func(*Item)) (Plan, error) {
	stored := make(map[id.ID]*Item, len(existing))
	for _, it := range existing {
		stored[it.ID] = it
	}

	var p Plan
	kept := make(map[id.ID]struct{}, len(submitted))
	for _, it := range submitted {
		if id.IsNil(it.ID) {
			created := *it
			created.Record = entity.NewRecord(now)
			attach(&created)
			p.Creates = append(p.Creates, &created)
			continue
		}

		current, ok := stored[it.ID]
		if !ok {
			return Plan{}, apperror.NewValidation(apperror.MsgItemsNotSaved).
				WithDetail("invoiceItemId", it.ID.String())
		}
		if _, dup := kept[it.ID]; dup {
			return Plan{}, apperror.NewValidation(apperror.MsgItemsNotSaved).
				WithDetail("invoiceItemId", it.ID.String())
		}
		kept[it.ID] = struct{}{}

		if current.sameFields(it) {
			continue
		}
		updated := *current
		updated.overwrite(it, now)
		p.Updates = append(p.Updates, &updated)
	}

	for _, it := range existing {
		if _, ok := kept[it.ID]; !ok {
			p.Removals = append(p.Removals, it)
		}
	}
	return p, nil
}
