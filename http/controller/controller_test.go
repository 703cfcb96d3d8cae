package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathID(t *testing.T) {
	app := fiber.New()

	var gotID int64
	var gotErr error
	app.Get("/:id", func(c *fiber.Ctx) error {
		gotID, gotErr = pathID(c)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		param  string
		wantID int64
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.param, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()

		if tt.wantOK {
			require.NoError(t, gotErr, "param %q", tt.param)
			assert.Equal(t, tt.wantID, gotID)
		} else {
			require.Error(t, gotErr, "param %q", tt.param)
			assert.Equal(t, errx.T_Validation, errx.AsErrorX(gotErr).Type())
		}
	}
}

func TestQueryPagination(t *testing.T) {
	app := fiber.New()

	var got struct {
		limit  int
		offset int
		page   int
		size   int
	}
	app.Get("/", func(c *fiber.Ctx) error {
		p := queryPagination(c)
		got.limit, got.offset, got.page, got.size = p.Limit, p.Offset, p.Page, p.Size
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/?limit=10&offset=30", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 10, got.limit)
	assert.Equal(t, 30, got.offset)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/?page=3&size=25", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 3, got.page)
	assert.Equal(t, 25, got.size)

	// Unparsable values fall back to zero; Normalize resolves the defaults.
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/?limit=abc&offset=xyz", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 0, got.limit)
	assert.Equal(t, 0, got.offset)
}

func TestParseBodyValidates(t *testing.T) {
	type createThing struct {
		Name   string `json:"name" validate:"required"`
		Rating int    `json:"rating" validate:"gte=1,lte=5"`
	}

	app := fiber.New()

	var gotErr error
	app.Post("/", func(c *fiber.Ctx) error {
		_, gotErr = parseBody[createThing](c)
		return c.SendStatus(fiber.StatusOK)
	})

	post := func(body string) {
		req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	post(`{"name": "ok", "rating": 3}`)
	require.NoError(t, gotErr)

	post(`{"rating": 3}`)
	require.Error(t, gotErr, "missing required field")

	post(`{"name": "ok", "rating": 9}`)
	require.Error(t, gotErr, "rating above bound")

	post(`{not json`)
	require.Error(t, gotErr)
	assert.Equal(t, codeInvalidBody, errx.AsErrorX(gotErr).Code())
}

func TestParseBodySliceReportsItemIndex(t *testing.T) {
	type createThing struct {
		Name string `json:"name" validate:"required"`
	}

	app := fiber.New()

	var gotErr error
	app.Post("/", func(c *fiber.Ctx) error {
		_, gotErr = parseBodySlice[createThing](c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodPost, "/",
		strings.NewReader(`[{"name": "first"}, {"name": ""}]`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Error(t, gotErr)
	assert.Equal(t, 1, errx.AsErrorX(gotErr).Details()["index"])
}
