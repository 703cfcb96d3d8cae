package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, noteSchema().validate())

	t.Run("missing table name", func(t *testing.T) {
		s := noteSchema()
		s.Table = ""
		assert.Error(t, s.validate())
	})

	t.Run("duplicate column", func(t *testing.T) {
		s := noteSchema()
		s.Columns = append(s.Columns, Column{Name: "title", Kind: KindString})
		assert.Error(t, s.validate())
	})

	t.Run("system column re-declared", func(t *testing.T) {
		s := noteSchema()
		s.Columns = append(s.Columns, Column{Name: "updated_at", Kind: KindTimestamp})
		assert.Error(t, s.validate())
	})

	t.Run("constraint over unknown column", func(t *testing.T) {
		s := noteSchema()
		s.Constraints = []UniqueConstraint{{Name: "notes_x_key", Columns: []string{"missing"}}}
		assert.Error(t, s.validate())
	})

	t.Run("unnamed constraint", func(t *testing.T) {
		s := noteSchema()
		s.Constraints = []UniqueConstraint{{Columns: []string{"title"}}}
		assert.Error(t, s.validate())
	})
}

func TestSchemaAllColumns(t *testing.T) {
	all := noteSchema().allColumns()
	require.Len(t, all, 7)

	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"title", "body", "rating", "id", "created_at", "updated_at", "is_active"}, names)
}

func TestSchemaHumanName(t *testing.T) {
	assert.Equal(t, "Note", Schema{Table: "notes"}.humanName())
	assert.Equal(t, "User account", Schema{Table: "user_accounts"}.humanName())
}

func TestNotFoundCode(t *testing.T) {
	assert.Equal(t, "NOTE_NOT_FOUND", notFoundCode("notes"))
	assert.Equal(t, "USER_ACCOUNT_NOT_FOUND", notFoundCode("user_accounts"))
}

func TestColumnCastType(t *testing.T) {
	assert.Equal(t, "text", Column{Kind: KindString}.castType())
	assert.Equal(t, "numeric", Column{Kind: KindNumber}.castType())
	assert.Equal(t, "boolean", Column{Kind: KindBool}.castType())
	assert.Equal(t, "timestamptz", Column{Kind: KindTimestamp}.castType())
	assert.Equal(t, "bigint", Column{Kind: KindNumber, SQLType: "bigint"}.castType())
}
