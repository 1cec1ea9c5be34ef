package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body io.Reader) APIResponse {
	t.Helper()
	var out APIResponse
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestBadRequestResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return BadRequestResponse(c, "invalid order", map[string]string{"orderId": "is required"})
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.False(t, out.Success)
	assert.Equal(t, "invalid order", out.Error)
	assert.Equal(t, "is required", out.Details["orderId"])
	assert.Equal(t, "req-1", out.RequestID)
}

func TestResultResponseCarriesSuccessFlag(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return ResultResponse(c, false, "no channel delivered", fiber.Map{"orderId": "1"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.RequestID)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "no such order")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "no such order", decode(t, resp.Body).Error)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
