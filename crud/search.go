package crud

import (
	"context"
	"reflect"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crudkit/pagination"
	"github.com/rise-and-shine/crudkit/pg"
	"github.com/rise-and-shine/crudkit/sorter"
	"github.com/uptrace/bun"
)

// JoinOperator selects how search clauses are combined.
type JoinOperator string

const (
	JoinAnd JoinOperator = "and"
	JoinOr  JoinOperator = "or"
)

// Search returns the page of entities matching the set fields of the search
// DTO. Field comparisons follow the search plan built at registration:
// _min/_max fields compare with >= / <=, string columns match case-insensitive
// substrings, everything else compares for equality. Clauses are combined
// with the given join operator; nil DTO fields are ignored.
func (m *Model[E, C, U, S]) Search(
	ctx context.Context,
	dto S,
	join JoinOperator,
	page pagination.Params,
	sort sorter.SortOpts,
) ([]E, error) {
	page.Normalize(m.pagecfg)
	limit, offset := page.ToLimitOffset()

	entities := make([]E, 0)
	q := m.idb.NewSelect().Model(&entities).Limit(limit).Offset(offset)
	q = m.applySearchFilters(q, dto, join)
	q = applySort(q, sort)

	if err := q.Scan(ctx); err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, q)))
	}

	return entities, nil
}

func (m *Model[E, C, U, S]) applySearchFilters(
	q *bun.SelectQuery,
	dto S,
	join JoinOperator,
) *bun.SelectQuery {
	rv := reflect.ValueOf(dto)

	type clause struct {
		expr string
		args []any
	}
	var clauses []clause

	for _, f := range m.search {
		fv := rv.FieldByIndex(f.index)
		for fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				fv = reflect.Value{}
				break
			}
			fv = fv.Elem()
		}
		if !fv.IsValid() {
			continue
		}

		value := fv.Interface()
		switch f.op {
		case opGte:
			clauses = append(clauses, clause{"? >= ?", []any{bun.Ident(f.column.Name), value}})
		case opLte:
			clauses = append(clauses, clause{"? <= ?", []any{bun.Ident(f.column.Name), value}})
		case opILike:
			pattern := "%" + fv.String() + "%"
			clauses = append(clauses, clause{"? ILIKE ?", []any{bun.Ident(f.column.Name), pattern}})
		default:
			clauses = append(clauses, clause{"? = ?", []any{bun.Ident(f.column.Name), value}})
		}
	}

	if len(clauses) == 0 {
		return q
	}

	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, cl := range clauses {
			if join == JoinOr {
				q = q.WhereOr(cl.expr, cl.args...)
			} else {
				q = q.Where(cl.expr, cl.args...)
			}
		}
		return q
	})
}
