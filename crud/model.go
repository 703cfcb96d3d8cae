package crud

import (
	"context"
	"fmt"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crudkit/logger"
	"github.com/rise-and-shine/crudkit/pagination"
	"github.com/rise-and-shine/crudkit/pg"
	"github.com/rise-and-shine/crudkit/sorter"
	"github.com/uptrace/bun"
)

const (
	codeConflict = "CONFLICT"

	// largeBulkSize is the threshold above which failed statements are not
	// attached to error details, to avoid huge log entries.
	largeBulkSize = 10
)

// Model provides all CRUD, search and bulk operations for one registered
// entity type. Models are created by Register and are read-only afterwards;
// they are safe for concurrent use.
type Model[E, C, U, S any] struct {
	idb bun.IDB
	log logger.Logger

	schema       Schema
	name         string
	plural       string
	notFoundCode string

	plan     BatchPlan
	conflict ConflictSpec
	upd      updatePlan
	search   []searchField

	pagecfg pagination.Config

	fromCreate  func(C) E
	applyUpdate func(*E, U)
}

// Table returns the entity's table name.
func (m *Model[E, C, U, S]) Table() string { return m.schema.Table }

// Name returns the human-readable singular entity name.
func (m *Model[E, C, U, S]) Name() string { return m.name }

// Plural returns the human-readable plural entity name.
func (m *Model[E, C, U, S]) Plural() string { return m.plural }

// Plan returns the derived batch plan.
func (m *Model[E, C, U, S]) Plan() BatchPlan { return m.plan }

// Conflict returns the resolved upsert conflict specification.
func (m *Model[E, C, U, S]) Conflict() ConflictSpec { return m.conflict }

// ColumnNames returns all column names including system columns, usable as
// the allowed-fields list for sorting.
func (m *Model[E, C, U, S]) ColumnNames() []string {
	cols := m.schema.allColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Pagination returns the pagination limits applied to list operations.
func (m *Model[E, C, U, S]) Pagination() pagination.Config { return m.pagecfg }

// CreateOne inserts a single entity from a create DTO and returns it with
// all generated columns populated.
func (m *Model[E, C, U, S]) CreateOne(ctx context.Context, dto C) (*E, error) {
	entity := m.fromCreate(dto)

	q := m.idb.NewInsert().Model(&entity).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		return nil, m.wrapStoreError(err, q, "creating")
	}

	return &entity, nil
}

// ReadOne returns the entity with the given id, or a not-found error.
func (m *Model[E, C, U, S]) ReadOne(ctx context.Context, id int64) (*E, error) {
	var entity E

	q := m.idb.NewSelect().Model(&entity).Where("id = ?", id)
	if err := q.Scan(ctx); err != nil {
		if pg.IsNotFound(err) {
			return nil, m.notFoundError(id)
		}
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return &entity, nil
}

// ReadAll returns a page of entities ordered by the given sort options.
func (m *Model[E, C, U, S]) ReadAll(
	ctx context.Context,
	page pagination.Params,
	sort sorter.SortOpts,
) ([]E, error) {
	page.Normalize(m.pagecfg)
	limit, offset := page.ToLimitOffset()

	entities := make([]E, 0)
	q := m.idb.NewSelect().Model(&entities).Limit(limit).Offset(offset)
	q = applySort(q, sort)

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entities, nil
}

// Count returns the total number of entities.
func (m *Model[E, C, U, S]) Count(ctx context.Context) (int, error) {
	q := m.idb.NewSelect().Model((*E)(nil))

	count, err := q.Count(ctx)
	if err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return count, nil
}

// UpdateOne applies the non-nil fields of an update DTO to the entity with
// the given id and returns the updated entity, or a not-found error.
func (m *Model[E, C, U, S]) UpdateOne(ctx context.Context, id int64, dto U) (*E, error) {
	entity, err := m.ReadOne(ctx, id)
	if err != nil {
		return nil, err
	}

	m.applyUpdate(entity, dto)

	q := m.idb.NewUpdate().Model(entity).WherePK().Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		return nil, m.wrapStoreError(err, q, "updating")
	}

	return entity, nil
}

// UpdateOneWithID is UpdateOne with the target id carried by the DTO itself.
func (m *Model[E, C, U, S]) UpdateOneWithID(ctx context.Context, dto U) (*E, error) {
	return m.UpdateOne(ctx, m.upd.id(dto), dto)
}

// UpsertOne inserts the entity or, on a conflict with the resolved target,
// updates the existing row. The stored row is returned in both cases.
//
// When the conflict target is ambiguous the statement degrades to
// ON CONFLICT DO NOTHING and a conflicting row is reported as a conflict
// error, since no row is returned to refresh from.
func (m *Model[E, C, U, S]) UpsertOne(ctx context.Context, dto C) (*E, error) {
	entity := m.fromCreate(dto)

	q := m.conflict.apply(m.idb.NewInsert().Model(&entity)).Returning("*")
	if _, err := q.Exec(ctx); err != nil {
		if pg.IsNotFound(err) {
			return nil, errx.New(
				fmt.Sprintf("%s already exists and upsert target is ambiguous", m.name),
				errx.WithCode(codeConflict),
				errx.WithType(errx.T_Conflict),
			)
		}
		return nil, m.wrapStoreError(err, q, "upserting")
	}

	return &entity, nil
}

// DeleteOne removes the entity with the given id, or returns a not-found
// error when no row was deleted.
func (m *Model[E, C, U, S]) DeleteOne(ctx context.Context, id int64) error {
	q := m.idb.NewDelete().Model((*E)(nil)).Where("id = ?", id)

	result, err := q.Exec(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}
	if rowsAffected == 0 {
		return m.notFoundError(id)
	}

	return nil
}

// DeleteAll removes every entity and returns the number of deleted rows.
func (m *Model[E, C, U, S]) DeleteAll(ctx context.Context) (int, error) {
	count, err := m.Count(ctx)
	if err != nil {
		return 0, err
	}

	q := m.idb.NewDelete().Model((*E)(nil)).Where("TRUE")
	if _, err := q.Exec(ctx); err != nil {
		return 0, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	m.log.Infow("deleted all rows", "count", count)

	return count, nil
}

// wrapStoreError maps store-level failures onto the error taxonomy: unique
// violations become conflict errors carrying the store's detail text,
// everything else is wrapped with query diagnostics.
func (m *Model[E, C, U, S]) wrapStoreError(err error, q fmt.Stringer, action string) error {
	if pg.IsConflict(err) {
		return errx.New(
			fmt.Sprintf("conflict while %s %s: %s", action, m.name, pg.ConflictDetail(err)),
			errx.WithCode(codeConflict),
			errx.WithType(errx.T_Conflict),
			errx.WithDetails(pg.GetPgErrorDetails(err, q)),
		)
	}
	return errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
}

// notFoundError builds the standard not-found error for a missing id.
func (m *Model[E, C, U, S]) notFoundError(id int64) error {
	return errx.New(
		fmt.Sprintf("%s with id %d not found", m.name, id),
		errx.WithCode(m.notFoundCode),
		errx.WithType(errx.T_NotFound),
	)
}

// applySort appends ORDER BY clauses for the given sort options.
func applySort(q *bun.SelectQuery, sort sorter.SortOpts) *bun.SelectQuery {
	for _, opt := range sort {
		q = q.OrderExpr("? ?", bun.Ident(opt.F), bun.Safe(string(opt.D)))
	}
	return q
}
