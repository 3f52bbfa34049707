package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/temcen/movierec/pkg/models"
)

// DatabaseQuerier is the subset of pgxpool.Pool the store needs
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RatingStore persists the movie catalog and the ratings users give it
type RatingStore interface {
	EnsureSchema(ctx context.Context) error
	SeedSampleMovies(ctx context.Context) (int64, error)
	ListRatings(ctx context.Context) ([]models.Rating, error)
	AddRating(ctx context.Context, rating *models.Rating) error
	MovieTitles(ctx context.Context, ids []int64) (map[int64]string, error)
}

// RecommendationCache stores computed recommendations under a generation
// counter. Bumping the generation makes every earlier entry unreachable.
type RecommendationCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation, userID int64, count int) (*models.RecommendationResponse, error)
	Set(ctx context.Context, generation, userID int64, count int, resp *models.RecommendationResponse) error
	Invalidate(ctx context.Context) error
}

// RatingEventPublisher announces newly stored ratings
type RatingEventPublisher interface {
	PublishRating(ctx context.Context, rating models.Rating) error
}

// RecommendationServiceInterface defines the interface for recommendation requests
type RecommendationServiceInterface interface {
	GetRecommendations(ctx context.Context, userID int64, count int) (*models.RecommendationResponse, error)
}

// RatingServiceInterface defines the interface for recording ratings
type RatingServiceInterface interface {
	RecordRating(ctx context.Context, req *models.RateRequest) (*models.Rating, error)
}
