package invoice

import (
	"time"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
)

// RevisionMode says how an invoice edit is applied.
type RevisionMode int

const (
	// RevisionInPlace edits the stored invoice and reconciles its items.
	RevisionInPlace RevisionMode = iota
	// RevisionNew cancels the stored invoice and issues a linked copy.
	RevisionNew
)

// RevisionDecision is the outcome of DecideRevision.
type RevisionDecision struct {
	ItemsChanged   bool
	InvoiceChanged bool
	Mode           RevisionMode
}

// DecideRevision compares a submitted invoice edit with the stored state.
// A settled invoice, one whose payment date is not today, is never edited
// in place once its items or figures change. Dates are compared as
// calendar dates in the form returned by types.Day.
func DecideRevision(stored *Invoice, storedItems []*Item, submitted Figures, submittedItems []*Item, today time.Time) RevisionDecision {
	d := RevisionDecision{
		ItemsChanged:   itemsChanged(storedItems, submittedItems),
		InvoiceChanged: !stored.Figures.Equal(submitted),
	}
	if !stored.PaymentDate.Equal(today) && (d.ItemsChanged || d.InvoiceChanged) {
		d.Mode = RevisionNew
	}
	return d
}

func itemsChanged(stored, submitted []*Item) bool {
	if len(stored) != len(submitted) {
		return true
	}
	byID := make(map[id.ID]*Item, len(stored))
	for _, it := range stored {
		byID[it.ID] = it
	}
	for _, it := range submitted {
		old, ok := byID[it.ID]
		if !ok || !old.sameContent(it) {
			return true
		}
	}
	return false
}

// Revise returns the invoice that supersedes inv. It copies everything but
// identity and timestamps, takes the submitted figures and is paid today.
// Items are not copied.
func (inv *Invoice) Revise(submitted Figures, today, now time.Time) *Invoice {
	rev := *inv
	rev.Record = entity.NewRecord(now)
	rev.Figures = submitted
	rev.Status = StatusCompleted
	rev.IsPastRevision = true
	pastID := inv.ID
	rev.PastInvoiceID = &pastID
	rev.PaymentDate = today
	rev.Items = nil
	return &rev
}

// Cancel marks inv canceled.
func (inv *Invoice) Cancel(now time.Time) {
	inv.Status = StatusCanceled
	inv.Touch(now)
}
