// Package catalog_repo provides PostgreSQL implementations for master data
// repositories: rooms, tariffs, services, customers and holidays.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain"
	"venuedesk/internal/infrastructure/storage/postgres"
)

// MsgInUse is returned when a master record is still referenced.
const MsgInUse = "他のデータで使用されているため削除できません"

// BaseMasterRepo provides common CRUD operations for master entities.
// Embed this in specific repositories.
type BaseMasterRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	selectCols []string
	searchCols []string
	newFn      func() T
}

// NewBaseMasterRepo creates a new base master repository. searchCols are
// matched by ListFilter.Search.
func NewBaseMasterRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	searchCols []string,
	newFn func() T,
) *BaseMasterRepo[T] {
	return &BaseMasterRepo[T]{
		txm:        txm,
		tableName:  tableName,
		selectCols: selectCols,
		searchCols: searchCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseMasterRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseMasterRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// exec builds and runs a statement.
func (r *BaseMasterRepo[T]) exec(ctx context.Context, q squirrel.Sqlizer, op string) (int64, error) {
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

// columns keeps only the mapped fields that exist in the table.
func (r *BaseMasterRepo[T]) columns(entity T, skip ...string) map[string]any {
	data := postgres.StructToMapExcept(entity, skip...)
	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered
}

// Create inserts a new entity using its "db" tags.
func (r *BaseMasterRepo[T]) Create(ctx context.Context, entity T) error {
	data := r.columns(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}
	_, err := r.exec(ctx, r.Builder().Insert(r.tableName).SetMap(data), "insert")
	return err
}

// Update rewrites every mutable column of an existing entity.
func (r *BaseMasterRepo[T]) Update(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}

	set := r.columns(entity, "id", "created_at")
	affected, err := r.exec(ctx, r.Builder().
		Update(r.tableName).
		SetMap(set).
		Where(squirrel.Eq{"id": entityID}), "update")
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFound(r.tableName, entityID)
	}
	return nil
}

// baseSelect creates a SELECT builder.
func (r *BaseMasterRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID retrieves entity by ID.
func (r *BaseMasterRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1))
	if apperror.IsNotFound(err) {
		return entity, apperror.NewNotFound(r.tableName, entityID.String())
	}
	return entity, err
}

// GetForUpdate retrieves entity by ID with row lock.
func (r *BaseMasterRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"))
	if apperror.IsNotFound(err) {
		return entity, apperror.NewNotFound(r.tableName, entityID.String())
	}
	return entity, err
}

// listQuery applies the filter conditions shared by List and its count.
func (r *BaseMasterRepo[T]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()

	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	if filter.OnlyEnabled {
		q = q.Where(squirrel.Eq{"is_enabled": true})
	}
	return q
}

// List retrieves entities with filtering and pagination.
func (r *BaseMasterRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.listQuery(filter)

	// Count total (before pagination)
	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// Select runs q and scans every row.
func (r *BaseMasterRepo[T]) Select(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return items, nil
}

// Exists checks if entity exists.
func (r *BaseMasterRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"id": entityID})
}

// exists reports whether any row matches cond.
func (r *BaseMasterRepo[T]) exists(ctx context.Context, cond squirrel.Sqlizer) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return true, nil
}

// Delete performs physical removal from the database.
func (r *BaseMasterRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	affected, err := r.exec(ctx, r.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": entityID}), "delete")
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewConflict(MsgInUse).
				WithDetail("entity", r.tableName).
				WithDetail("id", entityID.String()).
				WithCause(err)
		}
		return err
	}

	if affected == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}

	return nil
}

// FindOne executes a SELECT query and returns a single entity.
func (r *BaseMasterRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.tableName, "matching query")
		}
		return entity, fmt.Errorf("find one: %w", err)
	}

	return entity, nil
}

func (r *BaseMasterRepo[T]) parseOrderBy(orderBy string) (string, error) {
	allowed := make(map[string]struct{}, len(r.selectCols))
	for _, col := range r.selectCols {
		allowed[col] = struct{}{}
	}

	if orderBy == "" {
		return "created_at ASC", nil
	}

	// Support "-field" for DESC.
	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}

	if _, ok := allowed[field]; !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy).WithDetail("field", field)
	}

	return field + " " + direction, nil
}
