// Package sorter_test contains tests for the sorter package.
package sorter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/crudkit/sorter"
)

func TestMakeFromStr(t *testing.T) {
	tests := []struct {
		name          string
		sortString    string
		allowedFields []string
		expected      sorter.SortOpts
	}{
		{
			name:          "empty string",
			sortString:    "",
			allowedFields: []string{"name", "created_at"},
			expected:      nil,
		},
		{
			name:          "valid single sort option",
			sortString:    "name:asc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
			),
		},
		{
			name:          "valid multiple sort options",
			sortString:    "name:asc,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "invalid field not in allowed list",
			sortString:    "name:asc,age:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
			),
		},
		{
			name:          "invalid direction",
			sortString:    "name:ascending,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "invalid format missing colon",
			sortString:    "name_asc,created_at:desc",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "with spaces to trim",
			sortString:    " name : asc , created_at : desc ",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
		{
			name:          "mixed case direction",
			sortString:    "name:ASC,created_at:DESC",
			allowedFields: []string{"name", "created_at"},
			expected: sorter.Make(
				sorter.Opt{F: "name", D: "asc"},
				sorter.Opt{F: "created_at", D: "desc"},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sorter.MakeFromStr(tt.sortString, tt.allowedFields...)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOptToSQL(t *testing.T) {
	assert.Equal(t, "name asc", sorter.Opt{F: "name", D: sorter.Asc}.ToSQL())
	assert.Equal(t, "rating desc", sorter.Opt{F: "rating", D: sorter.Desc}.ToSQL())
}
