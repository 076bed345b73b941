// Package document_repo provides PostgreSQL implementations for the
// transactional records: bookings, booking details and invoices.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/infrastructure/storage/postgres"
)

// BaseDocumentRepo provides common CRUD operations for document entities.
type BaseDocumentRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	entityName string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// exec builds and runs a statement and returns the affected row count.
func (r *BaseDocumentRepo[T]) exec(ctx context.Context, q squirrel.Sqlizer, op string) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", op, err)
	}
	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", op, r.tableName, err)
	}
	return tag.RowsAffected(), nil
}

// row maps entity onto the table columns.
func (r *BaseDocumentRepo[T]) row(entity any, skip ...string) map[string]any {
	data := postgres.StructToMapExcept(entity, skip...)
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// Create inserts a new document.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, entity T) error {
	data := r.row(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}
	_, err := r.exec(ctx, r.Builder().Insert(r.tableName).SetMap(data), "insert")
	return err
}

// insertQuery builds one multi-row INSERT for entities.
func (r *BaseDocumentRepo[T]) insertQuery(entities []T) squirrel.InsertBuilder {
	q := r.Builder().Insert(r.tableName).Columns(r.selectCols...)
	for _, e := range entities {
		data := postgres.StructToMap(e)
		values := make([]any, len(r.selectCols))
		for i, col := range r.selectCols {
			values[i] = data[col]
		}
		q = q.Values(values...)
	}
	return q
}

// CreateBatch inserts entities in one statement.
func (r *BaseDocumentRepo[T]) CreateBatch(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	_, err := r.exec(ctx, r.insertQuery(entities), "insert")
	return err
}

// Update rewrites every mutable column of an existing document.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, entity T) error {
	entityID, ok := postgres.StructToMap(entity)["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field")
	}

	affected, err := r.exec(ctx, r.Builder().
		Update(r.tableName).
		SetMap(r.row(entity, "id", "created_at")).
		Where(squirrel.Eq{"id": entityID}), "update")
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

// Delete removes a document.
func (r *BaseDocumentRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	affected, err := r.exec(ctx, r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}), "delete")
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// get scans the single row selected by q.
func (r *BaseDocumentRepo[T]) get(ctx context.Context, q squirrel.SelectBuilder, key any) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}

	return entity, nil
}

// GetByID retrieves a document by ID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// GetForUpdate retrieves document with row lock.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID.String())
}

// selectAll runs q and scans every row into dst.
func (r *BaseDocumentRepo[T]) selectAll(ctx context.Context, dst any, q squirrel.SelectBuilder) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return nil
}

// count runs SELECT COUNT(*) over q.
func (r *BaseDocumentRepo[T]) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// page applies limit and offset.
func page(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

// prefixed qualifies cols with a table alias.
func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}
