package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	defer limiter.Close()

	app := fiber.New()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestRateLimiterTracksKeysIndependently(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Close()

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
}
