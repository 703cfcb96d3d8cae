package crud

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
)

// valueColumn binds one update-DTO field to its column for the raw
// VALUES-based bulk update statement.
type valueColumn struct {
	column   Column
	castType string
	index    []int
}

// updatePlan is the reflection plan for an update DTO type: the position of
// its id field and the declared-order mapping of its remaining fields to
// columns. Computed once at registration.
type updatePlan struct {
	idIndex []int
	cols    []valueColumn
}

// buildUpdatePlan maps the exported fields of U onto schema columns in their
// declared order. U must be a struct carrying an "id" field; every other
// field must name a user column via its json tag.
func buildUpdatePlan[U any](s Schema) (updatePlan, error) {
	t := reflect.TypeOf((*U)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return updatePlan{}, errx.New(
			fmt.Sprintf("update DTO for table %s must be a struct, got %s", s.Table, t.Kind()),
			errx.WithCode(codeInvalidSchema),
		)
	}

	var plan updatePlan
	for i := range t.NumField() {
		f := t.Field(i)
		name := jsonFieldName(f)
		if name == "" {
			continue
		}

		if name == "id" {
			plan.idIndex = f.Index
			continue
		}

		col, ok := s.column(name)
		if !ok {
			return updatePlan{}, errx.New(
				fmt.Sprintf("update DTO field %s has no column in table %s", name, s.Table),
				errx.WithCode(codeInvalidSchema),
			)
		}
		plan.cols = append(plan.cols, valueColumn{
			column:   col,
			castType: col.castType(),
			index:    f.Index,
		})
	}

	if plan.idIndex == nil {
		return updatePlan{}, errx.New(
			fmt.Sprintf("update DTO for table %s must carry an id field", s.Table),
			errx.WithCode(codeInvalidSchema),
		)
	}

	return plan, nil
}

// rowValues extracts the positional values (id first, then the planned
// columns) of one update DTO.
func (p updatePlan) rowValues(dto any) []any {
	rv := reflect.ValueOf(dto)
	values := make([]any, 0, len(p.cols)+1)
	values = append(values, rv.FieldByIndex(p.idIndex).Interface())
	for _, vc := range p.cols {
		values = append(values, rv.FieldByIndex(vc.index).Interface())
	}
	return values
}

// id extracts the target identifier of one update DTO.
func (p updatePlan) id(dto any) int64 {
	return reflect.ValueOf(dto).FieldByIndex(p.idIndex).Int()
}

// searchOp is the comparison a search-DTO field maps onto.
type searchOp int

const (
	opEq searchOp = iota
	opGte
	opLte
	opILike
)

// searchField binds one search-DTO field to a column and comparison.
type searchField struct {
	column Column
	op     searchOp
	index  []int
}

// buildSearchPlan maps the exported fields of S onto columns and comparison
// operators. Field names ending in _min / _max compare with >= / <= against
// the base column; string columns match with ILIKE; everything else compares
// for equality.
func buildSearchPlan[S any](s Schema) ([]searchField, error) {
	t := reflect.TypeOf((*S)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, errx.New(
			fmt.Sprintf("search DTO for table %s must be a struct, got %s", s.Table, t.Kind()),
			errx.WithCode(codeInvalidSchema),
		)
	}

	var fields []searchField
	for i := range t.NumField() {
		f := t.Field(i)
		name := jsonFieldName(f)
		if name == "" {
			continue
		}

		op := opEq
		switch {
		case strings.HasSuffix(name, "_min"):
			name = strings.TrimSuffix(name, "_min")
			op = opGte
		case strings.HasSuffix(name, "_max"):
			name = strings.TrimSuffix(name, "_max")
			op = opLte
		}

		col, ok := s.column(name)
		if !ok {
			return nil, errx.New(
				fmt.Sprintf("search DTO field %s has no column in table %s", name, s.Table),
				errx.WithCode(codeInvalidSchema),
			)
		}

		if op == opEq && col.Kind == KindString {
			op = opILike
		}

		fields = append(fields, searchField{column: col, op: op, index: f.Index})
	}

	return fields, nil
}

// jsonFieldName resolves the column name of a DTO struct field from its json
// tag, falling back to the lowercased field name. Unexported and json-ignored
// fields resolve to an empty name.
func jsonFieldName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}

	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name
}
