package services

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
)

type Services struct {
	Store          RatingStore
	Cache          RecommendationCache
	Metrics        *Metrics
	Health         *HealthService
	Rating         *RatingService
	Recommendation *RecommendationService

	localCache *LocalRecommendationCache
}

// New wires the services on top of db. publisher may be nil when rating
// events are disabled.
func New(
	cfg *config.Config,
	logger *logrus.Logger,
	db *database.Database,
	publisher RatingEventPublisher,
	reg prometheus.Registerer,
) (*Services, error) {
	store := NewPostgresRatingStore(db.PG, logger)
	metrics := NewMetrics(reg)

	checks := []HealthCheck{
		{Name: "postgresql", Critical: true, Check: db.PG.Ping},
	}

	var (
		cache      RecommendationCache
		localCache *LocalRecommendationCache
	)
	if db.Redis == nil {
		var err error
		localCache, err = NewLocalRecommendationCache(cfg.Recommendation.CacheTTL, cfg.Recommendation.LocalCacheSize)
		if err != nil {
			return nil, err
		}
		cache = localCache
		logger.Info("Using in-process recommendation cache")
	} else {
		cache = NewRedisRecommendationCache(db.Redis, cfg.Recommendation.CacheTTL)
		checks = append(checks, HealthCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return db.Redis.Ping(ctx).Err()
			},
		})
	}

	return &Services{
		Store:          store,
		Cache:          cache,
		Metrics:        metrics,
		Health:         NewHealthService(logger, reg, checks...),
		Rating:         NewRatingService(store, cache, publisher, &cfg.Recommendation, metrics, logger),
		Recommendation: NewRecommendationService(store, cache, &cfg.Recommendation, metrics, logger),
		localCache:     localCache,
	}, nil
}

// Bootstrap prepares the database: schema first, then the sample catalog if
// seeding is enabled.
func (s *Services) Bootstrap(ctx context.Context, cfg *config.Config) error {
	if err := s.Store.EnsureSchema(ctx); err != nil {
		return err
	}
	if !cfg.Database.SeedSampleMovies {
		return nil
	}
	_, err := s.Store.SeedSampleMovies(ctx)
	return err
}

// NeedsRatingEvents reports whether the cache is private to this instance,
// in which case ratings recorded elsewhere must be consumed to invalidate it.
func (s *Services) NeedsRatingEvents() bool {
	return s.localCache != nil
}

func (s *Services) Close() {
	if s.localCache != nil {
		s.localCache.Close()
	}
}
