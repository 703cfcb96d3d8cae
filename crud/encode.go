package crud

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// timestampLayout is the PostgreSQL timestamptz literal format.
const timestampLayout = "2006-01-02 15:04:05.999999-07:00"

// encodeLiteral renders a typed Go value as a raw SQL literal for use inside
// a multi-row VALUES clause.
//
// Escaping is deliberately minimal: only string values are quoted, and the
// only transformation applied is doubling embedded single quotes. All other
// supported types render to literal forms that cannot carry quote characters
// (numbers, booleans, formatted timestamps). Values of unexpected types are
// stringified and quoted.
func encodeLiteral(v any) string {
	if v == nil {
		return "NULL"
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		rv = rv.Elem()
	}

	switch x := rv.Interface().(type) {
	case time.Time:
		return quoteString(x.Format(timestampLayout))
	case string:
		return quoteString(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	}

	switch rv.Kind() { //nolint:exhaustive // remaining kinds fall through to the quoted default
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.String:
		return quoteString(rv.String())
	default:
		return quoteString(fmt.Sprint(rv.Interface()))
	}
}

// quoteString single-quotes s, doubling any embedded single quotes.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// encodeRow renders one VALUES tuple from positional field values.
func encodeRow(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = encodeLiteral(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
