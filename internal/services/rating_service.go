package services

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

// RatingService records ratings and tells the rest of the system about them
type RatingService struct {
	store     RatingStore
	cache     RecommendationCache
	publisher RatingEventPublisher
	config    *config.RecommendationConfig
	metrics   *Metrics
	logger    *logrus.Logger
}

// NewRatingService creates a new rating service. publisher may be nil.
func NewRatingService(
	store RatingStore,
	cache RecommendationCache,
	publisher RatingEventPublisher,
	cfg *config.RecommendationConfig,
	metrics *Metrics,
	logger *logrus.Logger,
) *RatingService {
	if cache == nil {
		cache = nopCache{}
	}
	return &RatingService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		config:    cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// RecordRating stores a rating, invalidates cached recommendations and
// publishes a rating event. Cache and event failures are logged only.
func (s *RatingService) RecordRating(ctx context.Context, req *models.RateRequest) (*models.Rating, error) {
	if req.UserID == nil || req.MovieID == nil || req.Rating == nil {
		return nil, fmt.Errorf("%w: user_id, movie_id and rating are required", ErrInvalidRating)
	}
	if *req.UserID < 0 || *req.UserID > math.MaxInt32 || *req.MovieID <= 0 || *req.MovieID > math.MaxInt32 {
		return nil, fmt.Errorf("%w: user_id and movie_id must fit the catalog's integer ids", ErrInvalidRating)
	}
	if *req.Rating < s.config.MinRating || *req.Rating > s.config.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d",
			ErrInvalidRating, s.config.MinRating, s.config.MaxRating)
	}

	rating := &models.Rating{
		UserID:  *req.UserID,
		MovieID: *req.MovieID,
		Rating:  *req.Rating,
	}
	if err := s.store.AddRating(ctx, rating); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate recommendation cache")
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRating(ctx, *rating); err != nil {
			s.logger.WithError(err).WithField("rating_id", rating.ID).Warn("Failed to publish rating event")
		}
	}

	s.metrics.RatingRecorded()
	s.logger.WithFields(logrus.Fields{
		"rating_id": rating.ID,
		"user_id":   rating.UserID,
		"movie_id":  rating.MovieID,
		"rating":    rating.Rating,
	}).Info("Rating recorded")

	return rating, nil
}

// HandleRatingEvent invalidates the cache for ratings recorded by other instances
func (s *RatingService) HandleRatingEvent(ctx context.Context, event models.RatingEvent) error {
	if event.Type != models.RatingRecordedEvent {
		return nil
	}
	return s.cache.Invalidate(ctx)
}
