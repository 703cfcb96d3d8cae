package crud

import (
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/jinzhu/inflection"
	"github.com/rise-and-shine/crudkit/logger"
	"github.com/rise-and-shine/crudkit/pagination"
	"github.com/uptrace/bun"
)

// Registry holds the entities registered at startup. It replaces any implicit
// model self-registration: entities are added with explicit Register calls
// during wiring, and the registry is read-only afterwards.
type Registry struct {
	idb     bun.IDB
	log     logger.Logger
	pagecfg pagination.Config

	entities map[string]EntityInfo
}

// EntityInfo is a summary of a registered entity, kept for introspection.
type EntityInfo struct {
	Table        string
	Name         string
	ColumnCount  int
	BatchSize    int
	UpsertTarget ConflictSpec
}

// NewRegistry creates an empty registry bound to a database handle.
func NewRegistry(idb bun.IDB, log logger.Logger) *Registry {
	return &Registry{
		idb:      idb,
		log:      log.Named("crud"),
		pagecfg:  pagination.DefaultConfig(),
		entities: make(map[string]EntityInfo),
	}
}

// WithPagination overrides the default pagination limits applied to list
// endpoints of all models registered afterwards.
func (r *Registry) WithPagination(cfg pagination.Config) *Registry {
	r.pagecfg = cfg
	return r
}

// Entities returns summaries of all registered entities.
func (r *Registry) Entities() []EntityInfo {
	infos := make([]EntityInfo, 0, len(r.entities))
	for _, info := range r.entities {
		infos = append(infos, info)
	}
	return infos
}

// Definition bundles everything needed to register one entity type: its
// schema and the DTO conversion functions.
//
// Type parameters: E is the entity struct (embedding pg.Base), C the
// create DTO, U the update DTO (optional fields as pointers, plus id), and
// S the search DTO.
type Definition[E, C, U, S any] struct {
	Schema Schema

	// FromCreate converts a create DTO into a new entity value.
	FromCreate func(C) E
	// ApplyUpdate copies the non-nil fields of an update DTO onto an entity.
	ApplyUpdate func(*E, U)
}

// Register validates the definition, precomputes the schema-derived plans and
// returns the entity's Model. Configuration problems (unplannable batches,
// DTO/schema mismatches) are reported here, never at request time.
func Register[E, C, U, S any](r *Registry, def Definition[E, C, U, S]) (*Model[E, C, U, S], error) {
	s := def.Schema

	if err := s.validate(); err != nil {
		return nil, errx.Wrap(err)
	}
	if _, exists := r.entities[s.Table]; exists {
		return nil, errx.New(
			fmt.Sprintf("table %s is already registered", s.Table),
			errx.WithCode(codeInvalidSchema),
		)
	}
	if def.FromCreate == nil || def.ApplyUpdate == nil {
		return nil, errx.New(
			fmt.Sprintf("table %s needs FromCreate and ApplyUpdate functions", s.Table),
			errx.WithCode(codeInvalidSchema),
		)
	}

	plan, err := planBatches(len(s.allColumns()), s.BatchSizeOverride)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	upd, err := buildUpdatePlan[U](s)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	search, err := buildSearchPlan[S](s)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	name := s.humanName()
	m := &Model[E, C, U, S]{
		idb:          r.idb,
		log:          r.log.Named(s.Table),
		schema:       s,
		name:         name,
		plural:       inflection.Plural(name),
		notFoundCode: notFoundCode(s.Table),
		plan:         plan,
		conflict:     resolveConflict(s, r.log),
		upd:          upd,
		search:       search,
		pagecfg:      r.pagecfg,
		fromCreate:   def.FromCreate,
		applyUpdate:  def.ApplyUpdate,
	}

	r.entities[s.Table] = EntityInfo{
		Table:        s.Table,
		Name:         name,
		ColumnCount:  len(s.allColumns()),
		BatchSize:    plan.Size,
		UpsertTarget: m.conflict,
	}

	r.log.Infow("registered entity",
		"table", s.Table,
		"columns", len(s.allColumns()),
		"batch_size", plan.Size,
		"max_batch_size", plan.MaxSize,
	)

	return m, nil
}

// MustRegister is like Register but panics on configuration errors.
// Intended for use in application wiring where a bad definition is fatal.
func MustRegister[E, C, U, S any](r *Registry, def Definition[E, C, U, S]) *Model[E, C, U, S] {
	m, err := Register(r, def)
	if err != nil {
		panic(err)
	}
	return m
}

// notFoundCode derives the not-found error code for a table,
// e.g. "notes" -> "NOTE_NOT_FOUND".
func notFoundCode(table string) string {
	return strings.ToUpper(inflection.Singular(table)) + "_NOT_FOUND"
}
