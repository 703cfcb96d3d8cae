package pg_test

import (
	"context"
	"testing"
	"time"

	"github.com/rise-and-shine/crudkit/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// widget declares an entity the documented way: pg.Base next to
// bun.BaseModel in one struct.
type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:widgets"`
	pg.Base

	Name string `bun:"name" json:"name"`
}

func TestBaseHookOnInsert(t *testing.T) {
	var w widget

	err := w.BeforeAppendModel(context.Background(), (*bun.InsertQuery)(nil))
	require.NoError(t, err)

	assert.False(t, w.CreatedAt.IsZero())
	assert.False(t, w.UpdatedAt.IsZero())
	assert.True(t, w.IsActive)
}

func TestBaseHookOnUpdate(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w := widget{Base: pg.Base{CreatedAt: created, UpdatedAt: created}}

	err := w.BeforeAppendModel(context.Background(), (*bun.UpdateQuery)(nil))
	require.NoError(t, err)

	assert.Equal(t, created, w.CreatedAt, "updates never touch created_at")
	assert.True(t, w.UpdatedAt.After(created))
	assert.False(t, w.IsActive, "updates never flip is_active")
}
