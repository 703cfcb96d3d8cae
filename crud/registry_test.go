package crud

import (
	"testing"

	"github.com/rise-and-shine/crudkit/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type noteEntity struct {
	bun.BaseModel `bun:"table:notes,alias:notes"`
	pg.Base

	Title  string `bun:"title" json:"title"`
	Body   string `bun:"body" json:"body"`
	Rating int    `bun:"rating" json:"rating"`
}

type noteCreate struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Rating int    `json:"rating"`
}

func noteDefinition() Definition[noteEntity, noteCreate, noteUpdate, noteSearch] {
	return Definition[noteEntity, noteCreate, noteUpdate, noteSearch]{
		Schema: noteSchema(),
		FromCreate: func(c noteCreate) noteEntity {
			return noteEntity{Title: c.Title, Body: c.Body, Rating: c.Rating}
		},
		ApplyUpdate: func(e *noteEntity, u noteUpdate) {
			if u.Title != nil {
				e.Title = *u.Title
			}
			if u.Body != nil {
				e.Body = *u.Body
			}
			if u.Rating != nil {
				e.Rating = *u.Rating
			}
		},
	}
}

func TestRegisterPrecomputesPlans(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	m, err := Register(r, noteDefinition())
	require.NoError(t, err)

	assert.Equal(t, "notes", m.Table())
	assert.Equal(t, "Note", m.Name())
	assert.Equal(t, "Notes", m.Plural())
	assert.Equal(t, DoUpdate, m.Conflict().Action)
	assert.Equal(t, "title", m.Conflict().TargetColumn)

	plan := m.Plan()
	assert.Equal(t, 4681, plan.MaxSize, "7 columns against the 32767 parameter ceiling")
	assert.Equal(t, 3510, plan.Size)

	infos := r.Entities()
	require.Len(t, infos, 1)
	assert.Equal(t, "notes", infos[0].Table)
	assert.Equal(t, 7, infos[0].ColumnCount)
	assert.Equal(t, 3510, infos[0].BatchSize)
}

func TestRegisterHonorsBatchSizeOverride(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	def := noteDefinition()
	def.Schema.BatchSizeOverride = 1

	m, err := Register(r, def)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Plan().Size)
}

func TestRegisterRejectsDuplicateTable(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	_, err := Register(r, noteDefinition())
	require.NoError(t, err)

	_, err = Register(r, noteDefinition())
	assert.Error(t, err)
}

func TestRegisterRejectsMissingConverters(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	def := noteDefinition()
	def.FromCreate = nil

	_, err := Register(r, def)
	assert.Error(t, err)
}

func TestRegisterRejectsInvalidSchema(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	def := noteDefinition()
	def.Schema.Table = ""

	_, err := Register(r, def)
	assert.Error(t, err)
}

func TestMustRegisterPanicsOnBadDefinition(t *testing.T) {
	r := NewRegistry(nil, testLogger(t))

	def := noteDefinition()
	def.ApplyUpdate = nil

	assert.Panics(t, func() { MustRegister(r, def) })
}
