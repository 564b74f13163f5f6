package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/killaresto/killa-backend/business_flow"
)

func TestRequestContextCarriesRequestID(t *testing.T) {
	app := fiber.New()
	app.Get("/ctx", func(c fiber.Ctx) error {
		ctx := createRequestContext(c, "test-endpoint")

		requestID, _ := ctx.Value(businessflow.RequestIDKey).(string)
		return c.SendString(requestID)
	})

	req := httptest.NewRequest("GET", "/ctx", nil)
	req.Header.Set("X-Request-ID", "req-12345")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "req-12345", string(body))
}

func TestValidatorPasswordStrength(t *testing.T) {
	v := newValidator()

	type form struct {
		Password string `validate:"password_strength"`
	}

	assert.NoError(t, v.Struct(form{Password: "Secure@1"}))
	assert.Error(t, v.Struct(form{Password: "secure@1"}))
	assert.Error(t, v.Struct(form{Password: "Secure11"}))
}
