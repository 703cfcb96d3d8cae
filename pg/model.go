package pg

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Base provides the system columns shared by all entities: the surrogate id,
// timestamp tracking and the soft-activity flag. Embed it in entity structs
// next to bun.BaseModel:
//
//	type Note struct {
//		bun.BaseModel `bun:"table:notes,alias:notes"`
//		pg.Base
//
//		Title string `bun:"title" json:"title"`
//	}
type Base struct {
	// ID is the surrogate primary key.
	ID int64 `bun:"id,pk,autoincrement" json:"id"`
	// CreatedAt stores the timestamp when the record was created.
	CreatedAt time.Time `bun:"created_at,nullzero" json:"created_at"`
	// UpdatedAt stores the timestamp when the record was last updated.
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
	// IsActive marks the record as active; records are never hard-hidden by the library.
	IsActive bool `bun:"is_active" json:"is_active"`
}

// Verify that Base implements bun.BeforeAppendModelHook.
var _ bun.BeforeAppendModelHook = (*Base)(nil)

// BeforeAppendModel implements bun.BeforeAppendModelHook interface to automatically
// update timestamp fields before database operations.
func (m *Base) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		m.CreatedAt = time.Now()
		m.UpdatedAt = time.Now()
		m.IsActive = true
	case *bun.UpdateQuery:
		m.UpdatedAt = time.Now()
	}
	return nil
}
