// Package crud implements a generic entity model over PostgreSQL: single-row
// CRUD, filtered search and a batched write engine (create-many, upsert-many,
// update-many-with-id) driven by a static schema description.
//
// An entity is described once with a Schema and registered in a Registry
// together with its DTO conversion functions. Registration validates the
// schema and precomputes everything that depends only on it: the batch plan,
// the upsert conflict specification and the reflection plans for the update
// and search DTOs. The returned Model is read-only after registration and
// safe for concurrent use.
package crud

import (
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/jinzhu/inflection"
	"github.com/samber/lo"
)

const (
	codeInvalidSchema = "INVALID_SCHEMA"
)

// Kind is the logical type of a column, used for statement planning only.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTimestamp
)

// sqlType returns the PostgreSQL type used to cast VALUES-clause literals
// back to the column's type.
func (k Kind) sqlType() string {
	switch k {
	case KindNumber:
		return "numeric"
	case KindBool:
		return "boolean"
	case KindTimestamp:
		return "timestamptz"
	default:
		return "text"
	}
}

// Column describes a single entity column.
type Column struct {
	// Name is the column name in the database.
	Name string
	// Kind is the logical type of the column.
	Kind Kind
	// Unique marks the column as carrying a single-column unique index.
	Unique bool
	// System marks columns managed by the library (id, created_at,
	// updated_at, is_active). System columns are never part of conflict
	// targets or user-suppliable update sets.
	System bool
	// SQLType optionally overrides the PostgreSQL type used for casts in
	// raw VALUES statements. Defaults from Kind when empty.
	SQLType string
}

func (c Column) castType() string {
	if c.SQLType != "" {
		return c.SQLType
	}
	return c.Kind.sqlType()
}

// UniqueConstraint describes a named multi-column uniqueness constraint.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// Schema is the static description of an entity. It is consumed once at
// registration time; the Model keeps the derived values.
type Schema struct {
	// Table is the database table name. It must match the bun table name
	// declared on the entity struct.
	Table string
	// Columns lists the user-settable columns in declared order. The system
	// columns (id, created_at, updated_at, is_active) are appended
	// automatically and must not be listed here.
	Columns []Column
	// Constraints lists multi-column uniqueness constraints declared on the
	// table, used for upsert conflict-target resolution.
	Constraints []UniqueConstraint
	// BatchSizeOverride caps the batch size of bulk operations. It can only
	// reduce the derived maximum, never raise it above the protocol limit.
	BatchSizeOverride int
}

// systemColumns returns the columns managed by pg.Base, in their
// storage order.
func systemColumns() []Column {
	return []Column{
		{Name: "id", Kind: KindNumber, SQLType: "bigint", System: true},
		{Name: "created_at", Kind: KindTimestamp, System: true},
		{Name: "updated_at", Kind: KindTimestamp, System: true},
		{Name: "is_active", Kind: KindBool, System: true},
	}
}

// allColumns returns the user columns followed by the system columns.
func (s Schema) allColumns() []Column {
	return append(append([]Column{}, s.Columns...), systemColumns()...)
}

// column looks up a user column by name.
func (s Schema) column(name string) (Column, bool) {
	return lo.Find(s.Columns, func(c Column) bool { return c.Name == name })
}

// validate checks the schema for structural problems. It fails fast at
// registration time so that misconfigured entities never serve requests.
func (s Schema) validate() error {
	if s.Table == "" {
		return errx.New("schema table name is required", errx.WithCode(codeInvalidSchema))
	}

	seen := make(map[string]bool, len(s.Columns))
	reserved := lo.Map(systemColumns(), func(c Column, _ int) string { return c.Name })

	for _, c := range s.Columns {
		if c.Name == "" {
			return errx.New(
				fmt.Sprintf("table %s declares a column with an empty name", s.Table),
				errx.WithCode(codeInvalidSchema),
			)
		}
		if lo.Contains(reserved, c.Name) {
			return errx.New(
				fmt.Sprintf("table %s re-declares system column %s", s.Table, c.Name),
				errx.WithCode(codeInvalidSchema),
			)
		}
		if seen[c.Name] {
			return errx.New(
				fmt.Sprintf("table %s declares column %s twice", s.Table, c.Name),
				errx.WithCode(codeInvalidSchema),
			)
		}
		seen[c.Name] = true
	}

	for _, uc := range s.Constraints {
		if uc.Name == "" || len(uc.Columns) == 0 {
			return errx.New(
				fmt.Sprintf("table %s declares an incomplete unique constraint", s.Table),
				errx.WithCode(codeInvalidSchema),
			)
		}
		for _, col := range uc.Columns {
			if !seen[col] {
				return errx.New(
					fmt.Sprintf("constraint %s references unknown column %s", uc.Name, col),
					errx.WithCode(codeInvalidSchema),
				)
			}
		}
	}

	return nil
}

// humanName returns a human-readable singular entity name derived from the
// table name, e.g. "user_accounts" -> "User account".
func (s Schema) humanName() string {
	name := strings.ReplaceAll(inflection.Singular(s.Table), "_", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
