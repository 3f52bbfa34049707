package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/temcen/movierec/pkg/models"
)

type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRatingStore) SeedSampleMovies(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingStore) ListRatings(ctx context.Context) ([]models.Rating, error) {
	args := m.Called(ctx)
	ratings, _ := args.Get(0).([]models.Rating)
	return ratings, args.Error(1)
}

func (m *MockRatingStore) AddRating(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	if id, ok := args.Get(1).(int64); ok {
		rating.ID = id
	}
	return args.Error(0)
}

func (m *MockRatingStore) MovieTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	args := m.Called(ctx, ids)
	titles, _ := args.Get(0).(map[int64]string)
	return titles, args.Error(1)
}

type MockRecommendationCache struct {
	mock.Mock
}

func (m *MockRecommendationCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecommendationCache) Get(ctx context.Context, generation, userID int64, count int) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, generation, userID, count)
	resp, _ := args.Get(0).(*models.RecommendationResponse)
	return resp, args.Error(1)
}

func (m *MockRecommendationCache) Set(ctx context.Context, generation, userID int64, count int, resp *models.RecommendationResponse) error {
	return m.Called(ctx, generation, userID, count, resp).Error(0)
}

func (m *MockRecommendationCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockRatingEventPublisher struct {
	mock.Mock
}

func (m *MockRatingEventPublisher) PublishRating(ctx context.Context, rating models.Rating) error {
	return m.Called(ctx, rating).Error(0)
}
