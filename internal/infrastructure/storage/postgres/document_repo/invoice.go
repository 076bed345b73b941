package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/invoice"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable = "invoices"
	itemsTable    = "invoice_items"
)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm, invoicesTable, "invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

func (r *InvoiceRepo) listQuery(filter invoice.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().
		Select(prefixed("i", r.selectCols)...).
		From(invoicesTable + " i")
	if filter.BookingID != nil {
		q = q.Where(squirrel.Eq{"i.booking_id": *filter.BookingID})
	}
	if filter.CustomerName != "" {
		pattern := "%" + filter.CustomerName + "%"
		q = q.Join(bookingsTable + " b ON b.id = i.booking_id").
			Join("customers c ON c.id = b.customer_id").
			Where(squirrel.Or{squirrel.ILike{"c.name": pattern}, squirrel.ILike{"c.name_kana": pattern}})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"i.status": *filter.Status})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"i.payment_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"i.payment_date": *filter.To})
	}
	if filter.Lobby != nil {
		if *filter.Lobby {
			q = q.Where(squirrel.Eq{"i.booking_id": nil})
		} else {
			q = q.Where(squirrel.NotEq{"i.booking_id": nil})
		}
	}
	return q
}

// List returns one page of invoices, newest first, and the total count.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, int64, error) {
	q := r.listQuery(filter)
	total, err := r.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	var out []*invoice.Invoice
	q = page(q.OrderBy("i.payment_date DESC", "i.voucher_num DESC", "i.segment_num ASC"), filter.Limit, filter.Offset)
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindIssued returns the completed invoice with the given voucher and segment.
func (r *InvoiceRepo) FindIssued(ctx context.Context, voucherNum string, segmentNum int) (*invoice.Invoice, error) {
	return r.get(ctx, r.baseSelect().
		Where(squirrel.Eq{"voucher_num": voucherNum}).
		Where(squirrel.Eq{"segment_num": segmentNum}).
		Where(squirrel.Eq{"status": invoice.StatusCompleted}).
		Limit(1), voucherNum)
}

func (r *InvoiceRepo) revisionQuery(invoiceID id.ID) squirrel.SelectBuilder {
	return r.Builder().
		Select().
		Column(squirrel.Expr("EXISTS (?)", r.Builder().
			Select("1").
			From(invoicesTable).
			Where(squirrel.Eq{"past_invoice_id": invoiceID}).
			Limit(1)))
}

// HasRevision reports whether invoiceID has been revised.
func (r *InvoiceRepo) HasRevision(ctx context.Context, invoiceID id.ID) (bool, error) {
	sql, args, err := r.revisionQuery(invoiceID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build revision query: %w", err)
	}
	var revised bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&revised); err != nil {
		return false, fmt.Errorf("check revision: %w", err)
	}
	return revised, nil
}

// ItemRepo implements invoice.ItemRepository.
type ItemRepo struct {
	*BaseDocumentRepo[*invoice.Item]
}

// NewItemRepo creates a new invoice item repository.
func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm, itemsTable, "invoice item",
			postgres.ExtractDBColumns[invoice.Item](),
			func() *invoice.Item { return &invoice.Item{} },
		),
	}
}

func (r *ItemRepo) list(ctx context.Context, cond squirrel.Sqlizer) ([]*invoice.Item, error) {
	var out []*invoice.Item
	err := r.selectAll(ctx, &out, r.baseSelect().Where(cond).OrderBy("created_at ASC", "id ASC"))
	return out, err
}

// DeleteByIDs removes items.
func (r *ItemRepo) DeleteByIDs(ctx context.Context, itemIDs []id.ID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.Builder().Delete(itemsTable).Where(squirrel.Eq{"id": itemIDs}), "delete")
	return err
}

// GetByIDs returns the items found among itemIDs.
func (r *ItemRepo) GetByIDs(ctx context.Context, itemIDs []id.ID) ([]*invoice.Item, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, squirrel.Eq{"id": itemIDs})
}

// ListByDetail returns every item of a booking detail.
func (r *ItemRepo) ListByDetail(ctx context.Context, detailID id.ID) ([]*invoice.Item, error) {
	return r.list(ctx, squirrel.Eq{"booking_detail_id": detailID})
}

// ListByInvoice returns the items billed by an invoice.
func (r *ItemRepo) ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*invoice.Item, error) {
	return r.list(ctx, squirrel.Eq{"invoice_id": invoiceID})
}

func draftsOf(detailID id.ID, serviceIDs []id.ID) squirrel.And {
	cond := squirrel.And{
		squirrel.Eq{"booking_detail_id": detailID},
		squirrel.Eq{"invoice_id": nil},
	}
	if len(serviceIDs) > 0 {
		cond = append(cond, squirrel.Eq{"service_id": serviceIDs})
	}
	return cond
}

// DeleteDrafts removes the draft items of detailID, optionally only those
// of serviceIDs.
func (r *ItemRepo) DeleteDrafts(ctx context.Context, detailID id.ID, serviceIDs []id.ID) error {
	_, err := r.exec(ctx, r.Builder().Delete(itemsTable).Where(draftsOf(detailID, serviceIDs)), "delete")
	return err
}

// Attach links itemIDs to invoiceID.
func (r *ItemRepo) Attach(ctx context.Context, invoiceID id.ID, itemIDs []id.ID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.Builder().
		Update(itemsTable).
		Set("invoice_id", invoiceID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": itemIDs}), "attach")
	return err
}

// Detach clears the invoice link of itemIDs.
func (r *ItemRepo) Detach(ctx context.Context, itemIDs []id.ID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.Builder().
		Update(itemsTable).
		Set("invoice_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": itemIDs}), "detach")
	return err
}

// DetachInvoice clears the invoice link of every item of invoiceID.
func (r *ItemRepo) DetachInvoice(ctx context.Context, invoiceID id.ID) error {
	_, err := r.exec(ctx, r.Builder().
		Update(itemsTable).
		Set("invoice_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"invoice_id": invoiceID}), "detach")
	return err
}

// DeleteByInvoice removes every item of invoiceID.
func (r *ItemRepo) DeleteByInvoice(ctx context.Context, invoiceID id.ID) error {
	_, err := r.exec(ctx, r.Builder().Delete(itemsTable).Where(squirrel.Eq{"invoice_id": invoiceID}), "delete")
	return err
}

// CountDrafts returns how many draft items detailID still has.
func (r *ItemRepo) CountDrafts(ctx context.Context, detailID id.ID) (int, error) {
	n, err := r.count(ctx, r.Builder().Select("id").From(itemsTable).Where(draftsOf(detailID, nil)))
	return int(n), err
}

// CountBilled returns how many items of detailID are attached to an invoice.
func (r *ItemRepo) CountBilled(ctx context.Context, detailID id.ID) (int, error) {
	n, err := r.count(ctx, r.Builder().
		Select("id").
		From(itemsTable).
		Where(squirrel.Eq{"booking_detail_id": detailID}).
		Where(squirrel.NotEq{"invoice_id": nil}))
	return int(n), err
}

var (
	_ invoice.Repository     = (*InvoiceRepo)(nil)
	_ invoice.ItemRepository = (*ItemRepo)(nil)
)
