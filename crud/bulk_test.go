package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBulkUpdateSQL(t *testing.T) {
	plan, err := buildUpdatePlan[noteUpdate](noteSchema())
	require.NoError(t, err)

	title := "O'Brien's Widget"
	rating := 5
	rows := []string{
		encodeRow(plan.rowValues(noteUpdate{ID: 1, Title: &title})),
		encodeRow(plan.rowValues(noteUpdate{ID: 2, Rating: &rating})),
	}

	query := buildBulkUpdateSQL("notes", plan.cols, rows)

	want := `UPDATE "notes" AS t SET ` +
		`"title" = COALESCE(v."title"::text, t."title"), ` +
		`"body" = COALESCE(v."body"::text, t."body"), ` +
		`"rating" = COALESCE(v."rating"::int, t."rating"), ` +
		`"updated_at" = now() ` +
		`FROM (VALUES (1, 'O''Brien''s Widget', NULL, NULL), (2, NULL, NULL, 5)) ` +
		`AS v("id", "title", "body", "rating") ` +
		`WHERE t."id" = v."id"::bigint RETURNING t."id"`
	assert.Equal(t, want, query)
}

func TestBuildBulkUpdateSQLSingleRow(t *testing.T) {
	plan, err := buildUpdatePlan[noteUpdate](noteSchema())
	require.NoError(t, err)

	body := "plain"
	query := buildBulkUpdateSQL("notes", plan.cols, []string{
		encodeRow(plan.rowValues(noteUpdate{ID: 42, Body: &body})),
	})

	assert.Contains(t, query, `FROM (VALUES (42, NULL, 'plain', NULL))`)
	assert.Contains(t, query, `RETURNING t."id"`)
}
