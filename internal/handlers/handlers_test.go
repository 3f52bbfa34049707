package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/temcen/movierec/internal/services"
)

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name           string
		checks         []services.HealthCheck
		expectedStatus int
		expectedBody   string
	}{
		{"healthy", []services.HealthCheck{{Name: "postgresql", Critical: true, Check: ok}}, http.StatusOK, "healthy"},
		{"degraded", []services.HealthCheck{
			{Name: "postgresql", Critical: true, Check: ok},
			{Name: "redis", Check: fail},
		}, http.StatusOK, "degraded"},
		{"unhealthy", []services.HealthCheck{{Name: "postgresql", Critical: true, Check: fail}}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthService := services.NewHealthService(testLogger(), prometheus.NewRegistry(), tt.checks...)
			handler := NewHealthHandler(testLogger(), healthService)

			router := gin.New()
			router.GET("/health", handler.Check)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestHome(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/", Home)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Movie Recommendation Engine", w.Body.String())
}
