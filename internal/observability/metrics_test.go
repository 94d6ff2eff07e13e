package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesLifecycleCollectors(t *testing.T) {
	Enrollments().WithLabelValues("success").Inc()
	AttemptsSubmitted().WithLabelValues("success").Inc()
	AttemptPercentage().Observe(75)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `quizhub_enrollments_total{result="success"}`)
	require.Contains(t, string(body), `quizhub_attempts_submitted_total{result="success"}`)
	require.Contains(t, string(body), "quizhub_attempt_percentage_bucket")
}
