package crud

import (
	"github.com/rise-and-shine/crudkit/logger"
	"github.com/samber/lo"
	"github.com/uptrace/bun"
)

// ConflictAction is the action an upsert statement takes when the conflict
// target matches an existing row.
type ConflictAction int

const (
	// DoUpdate overwrites the resolved update columns with the incoming values.
	DoUpdate ConflictAction = iota
	// DoNothing silently skips conflicting rows. This is the degraded-mode
	// fallback used when no unambiguous conflict target exists.
	DoNothing
)

// ConflictSpec is the resolved ON CONFLICT clause for one entity type.
// It depends only on the static schema and is computed once at registration.
type ConflictSpec struct {
	Action ConflictAction

	// TargetColumn is the single unique column used as the conflict target.
	// Empty when the target is a named constraint or when Action is DoNothing.
	TargetColumn string
	// TargetConstraint is the named multi-column constraint used as the
	// conflict target. Empty when TargetColumn is set.
	TargetConstraint string

	// UpdateColumns are the columns overwritten on conflict.
	UpdateColumns []string
}

// resolveConflict decides the upsert conflict target for a schema.
//
// A single unique column wins; otherwise a single declared multi-column
// constraint wins. With zero or multiple candidates the target is ambiguous
// and the spec degrades to DO NOTHING with a warning: upserts then behave as
// best-effort inserts that skip conflicting rows.
func resolveConflict(s Schema, log logger.Logger) ConflictSpec {
	uniqueCols := lo.Filter(s.Columns, func(c Column, _ int) bool {
		return c.Unique && !c.System
	})

	switch {
	case len(uniqueCols) == 1:
		target := uniqueCols[0]
		updateCols := lo.FilterMap(s.Columns, func(c Column, _ int) (string, bool) {
			return c.Name, !c.Unique && !c.System
		})
		return ConflictSpec{
			Action:        DoUpdate,
			TargetColumn:  target.Name,
			UpdateColumns: updateCols,
		}

	case len(s.Constraints) == 1:
		constraint := s.Constraints[0]
		updateCols := lo.FilterMap(s.Columns, func(c Column, _ int) (string, bool) {
			return c.Name, !c.System && !lo.Contains(constraint.Columns, c.Name)
		})
		return ConflictSpec{
			Action:           DoUpdate,
			TargetConstraint: constraint.Name,
			UpdateColumns:    updateCols,
		}

	default:
		log.Warnw(
			"no unambiguous conflict target; upserts degrade to ON CONFLICT DO NOTHING",
			"table", s.Table,
			"unique_columns", len(uniqueCols),
			"constraints", len(s.Constraints),
		)
		return ConflictSpec{Action: DoNothing}
	}
}

// apply augments an insert query with the resolved ON CONFLICT clause.
func (spec ConflictSpec) apply(q *bun.InsertQuery) *bun.InsertQuery {
	if spec.Action == DoNothing {
		return q.On("CONFLICT DO NOTHING")
	}

	if spec.TargetConstraint != "" {
		q = q.On("CONFLICT ON CONSTRAINT ? DO UPDATE", bun.Ident(spec.TargetConstraint))
	} else {
		q = q.On("CONFLICT (?) DO UPDATE", bun.Ident(spec.TargetColumn))
	}

	for _, col := range spec.UpdateColumns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}
	q = q.Set("? = EXCLUDED.?", bun.Ident("updated_at"), bun.Ident("updated_at"))

	return q
}
