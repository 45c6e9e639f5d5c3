package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", BearerMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(GetCallerToken(c))
	})

	tests := []struct {
		header   string
		wantCode int
		wantBody string
	}{
		{"", fiber.StatusUnauthorized, ""},
		{"Token abc", fiber.StatusUnauthorized, ""},
		{"Bearer ", fiber.StatusUnauthorized, ""},
		{"Bearer abc.def", fiber.StatusOK, "abc.def"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tt.wantCode, resp.StatusCode, tt.header)
		if tt.wantBody != "" {
			buf := new(bytes.Buffer)
			_, _ = buf.ReadFrom(resp.Body)
			assert.Equal(t, tt.wantBody, buf.String())
		}
		resp.Body.Close()
	}
}

func TestInternalKeyMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	guarded := fiber.New()
	guarded.Put("/", InternalKeyMiddleware("s3cret"), ok)

	unset := fiber.New()
	unset.Put("/", InternalKeyMiddleware(""), ok)

	tests := []struct {
		name     string
		app      *fiber.App
		key      string
		wantCode int
	}{
		{"matching key", guarded, "s3cret", fiber.StatusNoContent},
		{"wrong key", guarded, "s3cret!", fiber.StatusForbidden},
		{"missing key", guarded, "", fiber.StatusForbidden},
		{"unconfigured key denies all", unset, "", fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPut, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-Internal-Key", tt.key)
			}
			resp, err := tt.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetRequestID(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 500))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Len(t, resp.Header.Get("X-Request-ID"), 36)
}
