package crud

import (
	"context"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/crudkit/pg"
	"github.com/samber/lo"
)

// BulkResult carries the surrogate ids of every row written by a bulk
// operation, in submission order, concatenated across batches.
type BulkResult struct {
	IDs []int64 `json:"ids"`
}

// Bulk operations split their input into batches sized by the entity's batch
// plan and execute the batches strictly sequentially. Each batch is its own
// atomic unit at the store level: there is no transaction spanning the whole
// call, so a failure in batch K leaves batches 1..K-1 committed. Callers must
// treat bulk operations as not atomic across the whole input.

// CreateMany inserts the given create DTOs in batches and returns the new
// ids in submission order.
//
// A uniqueness violation aborts the whole operation with a conflict error;
// batches committed before the failing one remain committed.
func (m *Model[E, C, U, S]) CreateMany(ctx context.Context, dtos []C) (*BulkResult, error) {
	entities := lo.Map(dtos, func(dto C, _ int) E { return m.fromCreate(dto) })

	ids := make([]int64, 0, len(dtos))
	for batchNo, batch := range lo.Chunk(entities, m.plan.Size) {
		q := m.idb.NewInsert().Model(&batch).Returning("id")

		var batchIDs []int64
		if _, err := q.Exec(ctx, &batchIDs); err != nil {
			if len(batch) > largeBulkSize {
				q = nil // avoid attaching huge statements to error details
			}
			return nil, m.wrapStoreError(err, q, "bulk creating")
		}

		m.log.Debugw("bulk create batch done",
			"batch", batchNo+1,
			"size", len(batch),
		)
		ids = append(ids, batchIDs...)
	}

	return &BulkResult{IDs: ids}, nil
}

// UpsertMany inserts the given create DTOs in batches, updating existing
// rows that match the resolved conflict target. The returned ids cover every
// affected row (inserted or updated) in statement order; with a degraded
// DO NOTHING conflict spec, skipped rows are absent from the result.
func (m *Model[E, C, U, S]) UpsertMany(ctx context.Context, dtos []C) (*BulkResult, error) {
	entities := lo.Map(dtos, func(dto C, _ int) E { return m.fromCreate(dto) })

	ids := make([]int64, 0, len(dtos))
	for batchNo, batch := range lo.Chunk(entities, m.plan.Size) {
		q := m.conflict.apply(m.idb.NewInsert().Model(&batch)).Returning("id")

		var batchIDs []int64
		if _, err := q.Exec(ctx, &batchIDs); err != nil {
			if len(batch) > largeBulkSize {
				q = nil // avoid attaching huge statements to error details
			}
			return nil, m.wrapStoreError(err, q, "bulk upserting")
		}

		m.log.Debugw("bulk upsert batch done",
			"batch", batchNo+1,
			"size", len(batch),
		)
		ids = append(ids, batchIDs...)
	}

	return &BulkResult{IDs: ids}, nil
}

// UpdateManyWithID partially updates the rows addressed by the DTOs' ids,
// in batches. Each batch becomes a single UPDATE joined against a raw
// VALUES list; nil DTO fields render as NULL literals which COALESCE
// resolves to the stored value, so absent fields never overwrite data.
//
// Ids without a matching row are silently dropped from the result: the
// returned id list may be shorter than the input. A warning is logged on
// such a mismatch, but it is not an error.
func (m *Model[E, C, U, S]) UpdateManyWithID(ctx context.Context, dtos []U) (*BulkResult, error) {
	ids := make([]int64, 0, len(dtos))
	for batchNo, batch := range lo.Chunk(dtos, m.plan.Size) {
		rows := lo.Map(batch, func(dto U, _ int) string {
			return encodeRow(m.upd.rowValues(dto))
		})
		query := buildBulkUpdateSQL(m.schema.Table, m.upd.cols, rows)

		var batchIDs []int64
		if err := m.idb.NewRaw(query).Scan(ctx, &batchIDs); err != nil {
			if pg.IsConflict(err) {
				return nil, errx.New(
					fmt.Sprintf("conflict while bulk updating %s: %s", m.plural, pg.ConflictDetail(err)),
					errx.WithCode(codeConflict),
					errx.WithType(errx.T_Conflict),
					errx.WithDetails(pg.GetPgErrorDetails(err, nil)),
				)
			}
			return nil, errx.Wrap(err, errx.WithDetails(pg.GetPgErrorDetails(err, nil)))
		}

		m.log.Debugw("bulk update batch done",
			"batch", batchNo+1,
			"size", len(batch),
			"updated", len(batchIDs),
		)
		ids = append(ids, batchIDs...)
	}

	if len(ids) != len(dtos) {
		m.log.Warnw("bulk update matched fewer rows than submitted",
			"submitted", len(dtos),
			"updated", len(ids),
		)
	}

	return &BulkResult{IDs: ids}, nil
}

// buildBulkUpdateSQL renders the multi-row partial-update statement:
//
//	UPDATE "t" AS t SET
//	    "col" = COALESCE(v."col"::type, t."col"), ...,
//	    "updated_at" = now()
//	FROM (VALUES (...), ...) AS v("id", "col", ...)
//	WHERE t."id" = v."id"::bigint
//	RETURNING t."id"
//
// VALUES columns arrive untyped from literal text, so every reference casts
// back to the column's SQL type before COALESCE merges it with the stored
// value.
func buildBulkUpdateSQL(table string, cols []valueColumn, rows []string) string {
	var b strings.Builder

	b.WriteString(`UPDATE "` + table + `" AS t SET `)
	for _, vc := range cols {
		name := vc.column.Name
		fmt.Fprintf(&b, `"%s" = COALESCE(v."%s"::%s, t."%s"), `, name, name, vc.castType, name)
	}
	b.WriteString(`"updated_at" = now() FROM (VALUES `)
	b.WriteString(strings.Join(rows, ", "))
	b.WriteString(`) AS v("id"`)
	for _, vc := range cols {
		b.WriteString(`, "` + vc.column.Name + `"`)
	}
	b.WriteString(`) WHERE t."id" = v."id"::bigint RETURNING t."id"`)

	return b.String()
}
