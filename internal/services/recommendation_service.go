package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/recommender"
	"github.com/temcen/movierec/pkg/models"
)

// RecommendationService loads ratings, runs the recommender and turns movie
// ids into titles. Results are cached per rating generation.
type RecommendationService struct {
	store   RatingStore
	cache   RecommendationCache
	config  *config.RecommendationConfig
	metrics *Metrics
	logger  *logrus.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	store RatingStore,
	cache RecommendationCache,
	cfg *config.RecommendationConfig,
	metrics *Metrics,
	logger *logrus.Logger,
) *RecommendationService {
	if cache == nil {
		cache = nopCache{}
	}
	return &RecommendationService{
		store:   store,
		cache:   cache,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// GetRecommendations returns up to count movies for userID. A count outside
// (0, max_count] is replaced by the configured default or cap.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID int64, count int) (*models.RecommendationResponse, error) {
	started := time.Now()
	count = s.normalizeCount(count)

	// The generation is read before the ratings so a rating that lands while
	// we compute bumps it and our result is stored under the old key.
	generation, err := s.cache.Generation(ctx)
	useCache := err == nil
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read recommendation cache generation")
		s.metrics.ObserveCacheLookup("error")
	}

	if useCache {
		cached, err := s.cache.Get(ctx, generation, userID, count)
		switch {
		case err != nil:
			s.logger.WithError(err).WithField("user_id", userID).Warn("Recommendation cache lookup failed")
			s.metrics.ObserveCacheLookup("error")
		case cached != nil:
			s.metrics.ObserveCacheLookup("hit")
			s.metrics.ObserveRecommendation(OutcomeCacheHit, started, len(cached.Items))
			cached.CacheHit = true
			return cached, nil
		default:
			s.metrics.ObserveCacheLookup("miss")
		}
	}

	resp, err := s.compute(ctx, userID, count)
	if err != nil {
		outcome := OutcomeError
		if recommender.IsInsufficientData(err) {
			outcome = OutcomeInsufficientData
		}
		s.metrics.ObserveRecommendation(outcome, started, 0)
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, generation, userID, count, resp); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to cache recommendations")
		}
	}

	s.metrics.ObserveRecommendation(OutcomeSuccess, started, len(resp.Items))
	return resp, nil
}

func (s *RecommendationService) compute(ctx context.Context, userID int64, count int) (*models.RecommendationResponse, error) {
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	observations := make([]recommender.Observation, len(ratings))
	for i, r := range ratings {
		observations[i] = recommender.Observation{
			UserID: r.UserID,
			ItemID: r.MovieID,
			Rating: float64(r.Rating),
		}
	}

	result, err := recommender.Compute(observations, userID, recommender.Options{
		NumRecommendations: count,
		NeighborhoodSize:   s.config.NeighborhoodSize,
		Bounds: &recommender.RatingBounds{
			Min: float64(s.config.MinRating),
			Max: float64(s.config.MaxRating),
		},
	})
	if err != nil {
		return nil, err
	}

	titles, err := s.store.MovieTitles(ctx, result.ItemIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve movie titles: %w", err)
	}

	resp := &models.RecommendationResponse{
		UserID:          userID,
		Recommendations: make([]string, 0, len(result.Items)),
		Items:           make([]models.RecommendedMovie, 0, len(result.Items)),
		Neighbors:       make([]models.Neighbor, 0, len(result.Neighbors)),
		GeneratedAt:     time.Now().UTC(),
	}

	for _, item := range result.Items {
		title, ok := titles[item.ItemID]
		if !ok {
			s.logger.WithField("movie_id", item.ItemID).Warn("Recommended movie missing from catalog")
			continue
		}
		resp.Recommendations = append(resp.Recommendations, title)
		resp.Items = append(resp.Items, models.RecommendedMovie{
			MovieID:  item.ItemID,
			Title:    title,
			Score:    item.Score,
			Position: len(resp.Items) + 1,
		})
	}

	for _, nb := range result.Neighbors {
		resp.Neighbors = append(resp.Neighbors, models.Neighbor{UserID: nb.UserID, Similarity: nb.Similarity})
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"ratings":   len(ratings),
		"neighbors": len(result.Neighbors),
		"results":   len(resp.Items),
	}).Debug("Recommendations computed")

	return resp, nil
}

func (s *RecommendationService) normalizeCount(count int) int {
	if count <= 0 {
		return s.config.NumRecommendations
	}
	if s.config.MaxCount > 0 && count > s.config.MaxCount {
		return s.config.MaxCount
	}
	return count
}
