package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{name: "defaults", query: "", wantPage: 1, wantSize: 12, wantOffset: 0},
		{name: "explicit", query: "?page=3&page_size=20", wantPage: 3, wantSize: 20, wantOffset: 40},
		{name: "zero page clamps to first", query: "?page=0", wantPage: 1, wantSize: 12, wantOffset: 0},
		{name: "negative size falls back", query: "?page_size=-5", wantPage: 1, wantSize: 12, wantOffset: 0},
		{name: "oversized page_size is capped", query: "?page_size=5000", wantPage: 1, wantSize: 100, wantOffset: 0},
		{name: "garbage values ignored", query: "?page=abc&page_size=xyz", wantPage: 1, wantSize: 12, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/list", func(c *fiber.Ctx) error {
				page, size, offset := parsePagination(c)
				assert.Equal(t, tt.wantPage, page)
				assert.Equal(t, tt.wantSize, size)
				assert.Equal(t, tt.wantOffset, offset)
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/list"+tt.query, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{total: 0, pageSize: 12, want: 0},
		{total: 1, pageSize: 12, want: 1},
		{total: 12, pageSize: 12, want: 1},
		{total: 13, pageSize: 12, want: 2},
		{total: 100, pageSize: 10, want: 10},
	}

	for _, tt := range tests {
		if got := totalPages(tt.total, tt.pageSize); got != tt.want {
			t.Fatalf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestParseIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		assert.Equal(t, uint(42), id)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/users/not-a-number", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestValidationDetail(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	err := validator.New().Struct(payload{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	fields := validationDetail(err)
	assert.Equal(t, "email", fields["Email"])
	assert.Equal(t, "min", fields["Password"])

	assert.Empty(t, validationDetail(assert.AnError))
}
