// Package sorter provides utilities for parsing and working with sorting options.
// It supports parsing sorting strings (e.g., "name:asc,created_at:desc") into structured
// sorting options and converting them into SQL-compatible order clauses.
package sorter

import (
	"slices"
	"strings"
)

type (
	SortOpts []Opt

	SortDirection string
)

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Opt represents a single sorting option, consisting of a field and a direction.
type Opt struct {
	F string        // F is the field to sort by.
	D SortDirection // D is the sorting direction (asc or desc).
}

// ToSQL converts an Opt into an SQL-compatible clause (e.g., "name ASC").
func (o Opt) ToSQL() string {
	return o.F + " " + string(o.D)
}

// Make creates a slice of Opt from a variadic list of Opt.
func Make(sortOptions ...Opt) SortOpts {
	return sortOptions
}

// MakeFromStr parses a sorting string (e.g., "name:asc,created_at:desc") into a slice of Opt.
// It filters out invalid or disallowed fields and directions, ensuring only valid options are
// returned. The allowedFields parameter specifies the list of fields permitted for sorting.
func MakeFromStr(sortString string, allowedFields ...string) SortOpts {
	if sortString == "" {
		return nil
	}

	var options []Opt
	for pair := range strings.SplitSeq(sortString, ",") {
		field, direction, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}

		field = strings.TrimSpace(field)
		if !slices.Contains(allowedFields, field) {
			continue
		}

		dir := SortDirection(strings.ToLower(strings.TrimSpace(direction)))
		if dir != Asc && dir != Desc {
			continue
		}

		options = append(options, Opt{F: field, D: dir})
	}

	return options
}
