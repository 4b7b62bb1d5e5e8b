package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"contact-service/internal/health"
	"contact-service/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *health.Handler, path string) (int, health.HealthResponse) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp health.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHealth(t *testing.T) {
	h := health.NewHandler(logger.Discard())
	h.AddCheck("database", func(context.Context) error { return errors.New("down") })

	code, resp := serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
}

func TestReady(t *testing.T) {
	t.Run("AllChecksPass", func(t *testing.T) {
		h := health.NewHandler(logger.Discard())
		h.AddCheck("database", func(context.Context) error { return nil })

		code, resp := serve(t, h, "/ready")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("DatabaseDown", func(t *testing.T) {
		h := health.NewHandler(logger.Discard())
		h.AddCheck("database", func(context.Context) error { return errors.New("connection refused") })
		h.AddCheck("events", func(context.Context) error { return nil })

		code, resp := serve(t, h, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unavailable", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["database"])
		assert.Equal(t, "ok", resp.Checks["events"])
	})
}
