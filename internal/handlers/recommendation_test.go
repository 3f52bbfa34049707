package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/movierec/internal/recommender"
	"github.com/temcen/movierec/pkg/models"
)

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) GetRecommendations(ctx context.Context, userID int64, count int) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, userID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecommendationResponse), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

func TestRecommendationHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockRecommendationService)
	handler := NewRecommendationHandler(mockService, testLogger())

	result := &models.RecommendationResponse{
		UserID:          1,
		Recommendations: []string{"Pulp Fiction"},
		Items:           []models.RecommendedMovie{{MovieID: 30, Title: "Pulp Fiction", Score: 3, Position: 1}},
		GeneratedAt:     time.Now(),
	}

	mockService.On("GetRecommendations", mock.Anything, int64(1), 0).Return(result, nil)
	mockService.On("GetRecommendations", mock.Anything, int64(1), 3).Return(result, nil)
	mockService.On("GetRecommendations", mock.Anything, int64(42), 0).
		Return(nil, &recommender.InsufficientDataError{UserID: 42, Reason: "user has no ratings"})
	mockService.On("GetRecommendations", mock.Anything, int64(7), 0).Return(nil, errors.New("connection refused"))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{"legacy route", "/recommend/1", http.StatusOK, ""},
		{"versioned route with count", "/api/v1/recommendations/1?count=3", http.StatusOK, ""},
		{"invalid count falls back to default", "/api/v1/recommendations/1?count=abc", http.StatusOK, ""},
		{"non numeric user", "/recommend/abc", http.StatusBadRequest, "INVALID_USER_ID"},
		{"negative user", "/recommend/-4", http.StatusBadRequest, "INVALID_USER_ID"},
		{"unknown user", "/recommend/42", http.StatusNotFound, "INSUFFICIENT_DATA"},
		{"service failure", "/recommend/7", http.StatusInternalServerError, "RECOMMENDATION_GENERATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/recommend/:userId", handler.Get)
			router.GET("/api/v1/recommendations/:userId", handler.Get)

			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.RecommendationResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, int64(1), response.UserID)
				assert.Equal(t, []string{"Pulp Fiction"}, response.Recommendations)
				return
			}

			var response map[string]map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCode, response["error"]["code"])
		})
	}

	mockService.AssertExpectations(t)
}
