package crud

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteSchema() Schema {
	return Schema{
		Table: "notes",
		Columns: []Column{
			{Name: "title", Kind: KindString, Unique: true},
			{Name: "body", Kind: KindString},
			{Name: "rating", Kind: KindNumber, SQLType: "int"},
		},
	}
}

type noteUpdate struct {
	ID     int64   `json:"id"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Rating *int    `json:"rating"`
}

type noteSearch struct {
	Title     *string `json:"title"`
	RatingMin *int    `json:"rating_min"`
	RatingMax *int    `json:"rating_max"`
}

func TestBuildUpdatePlan(t *testing.T) {
	plan, err := buildUpdatePlan[noteUpdate](noteSchema())
	require.NoError(t, err)

	require.Len(t, plan.cols, 3)
	assert.Equal(t, "title", plan.cols[0].column.Name)
	assert.Equal(t, "text", plan.cols[0].castType)
	assert.Equal(t, "body", plan.cols[1].column.Name)
	assert.Equal(t, "rating", plan.cols[2].column.Name)
	assert.Equal(t, "int", plan.cols[2].castType, "SQLType override wins over the kind default")
}

func TestBuildUpdatePlanRejectsBadDTOs(t *testing.T) {
	type missingID struct {
		Title *string `json:"title"`
	}
	_, err := buildUpdatePlan[missingID](noteSchema())
	assert.Error(t, err)

	type unknownColumn struct {
		ID    int64   `json:"id"`
		Color *string `json:"color"`
	}
	_, err = buildUpdatePlan[unknownColumn](noteSchema())
	assert.Error(t, err)
}

func TestUpdatePlanRowValues(t *testing.T) {
	plan, err := buildUpdatePlan[noteUpdate](noteSchema())
	require.NoError(t, err)

	title := "groceries"
	dto := noteUpdate{ID: 9, Title: &title}

	values := plan.rowValues(dto)
	require.Len(t, values, 4)
	assert.Equal(t, int64(9), values[0])
	assert.Equal(t, &title, values[1])
	assert.Equal(t, int64(9), plan.id(dto))

	// Unset fields stay nil so the statement keeps the stored value.
	assert.Nil(t, values[2].(*string))
	assert.Nil(t, values[3].(*int))
}

func TestBuildSearchPlan(t *testing.T) {
	fields, err := buildSearchPlan[noteSearch](noteSchema())
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Equal(t, "title", fields[0].column.Name)
	assert.Equal(t, opILike, fields[0].op, "string columns match case-insensitively")

	assert.Equal(t, "rating", fields[1].column.Name)
	assert.Equal(t, opGte, fields[1].op)

	assert.Equal(t, "rating", fields[2].column.Name)
	assert.Equal(t, opLte, fields[2].op)
}

func TestBuildSearchPlanRejectsUnknownColumn(t *testing.T) {
	type badSearch struct {
		Color *string `json:"color"`
	}
	_, err := buildSearchPlan[badSearch](noteSchema())
	assert.Error(t, err)
}

func TestJSONFieldNameFallbacks(t *testing.T) {
	type tagless struct {
		Body    *string
		Skipped *string `json:"-"`
		Omit    *string `json:"body,omitempty"`
	}
	typ := reflect.TypeOf(tagless{})

	assert.Equal(t, "body", jsonFieldName(typ.Field(0)))
	assert.Equal(t, "", jsonFieldName(typ.Field(1)))
	assert.Equal(t, "body", jsonFieldName(typ.Field(2)))
}
