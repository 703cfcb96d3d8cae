package crud

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeLiteralNulls(t *testing.T) {
	assert.Equal(t, "NULL", encodeLiteral(nil))

	var s *string
	assert.Equal(t, "NULL", encodeLiteral(s))

	var n *int64
	assert.Equal(t, "NULL", encodeLiteral(n))
}

func TestEncodeLiteralStrings(t *testing.T) {
	assert.Equal(t, "'hello'", encodeLiteral("hello"))
	assert.Equal(t, "''", encodeLiteral(""))

	// Embedded single quotes are doubled, never stripped.
	assert.Equal(t, "'O''Brien''s Widget'", encodeLiteral("O'Brien's Widget"))
	assert.Equal(t, "'''; DROP TABLE notes; --'", encodeLiteral("'; DROP TABLE notes; --"))

	v := "via pointer"
	assert.Equal(t, "'via pointer'", encodeLiteral(&v))
}

func TestEncodeLiteralNumbers(t *testing.T) {
	assert.Equal(t, "42", encodeLiteral(42))
	assert.Equal(t, "-7", encodeLiteral(int64(-7)))
	assert.Equal(t, "255", encodeLiteral(uint8(255)))
	assert.Equal(t, "3.14", encodeLiteral(3.14))
	assert.Equal(t, "1.1", encodeLiteral(float32(1.1)), "float32 renders at 32-bit precision")
	assert.Equal(t, "0", encodeLiteral(0))
}

func TestEncodeLiteralBools(t *testing.T) {
	assert.Equal(t, "TRUE", encodeLiteral(true))
	assert.Equal(t, "FALSE", encodeLiteral(false))
}

func TestEncodeLiteralTimestamps(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2026, 8, 28, 13, 45, 30, 123456000, loc)

	assert.Equal(t, "'2026-08-28 13:45:30.123456+05:00'", encodeLiteral(ts))
	assert.Equal(t, "'2026-08-28 13:45:30.123456+05:00'", encodeLiteral(&ts))
}

func TestEncodeRow(t *testing.T) {
	title := "O'Brien's Widget"
	row := encodeRow([]any{int64(7), &title, nil, true})

	assert.Equal(t, "(7, 'O''Brien''s Widget', NULL, TRUE)", row)
}
