package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/internal/database"
	"github.com/temcen/movierec/internal/handlers"
	"github.com/temcen/movierec/internal/messaging"
	"github.com/temcen/movierec/internal/middleware"
	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/internal/validation"
)

const bootstrapTimeout = 30 * time.Second

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	bus      *messaging.RatingEventBus
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	// Initialize database connections
	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	var publisher services.RatingEventPublisher
	if cfg.Kafka.Enabled() {
		app.bus = messaging.NewRatingEventBus(cfg, app.logger)
		publisher = app.bus
		app.logger.WithField("brokers", cfg.Kafka.Brokers).Info("Rating events enabled")
	}

	svc, err := services.New(cfg, app.logger, db, publisher, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()
	if err := svc.Bootstrap(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to prepare database: %w", err)
	}

	schemaValidator, err := validation.NewEmbeddedSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}

	app.handlers = handlers.New(app.logger, svc)
	app.router = newRouter(cfg, app.logger, app.handlers, schemaValidator)

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

// StartConsumers clears the in-process cache whenever another instance
// records a rating. Nothing is consumed when events are disabled or the
// cache lives in Redis.
func (a *App) StartConsumers(ctx context.Context) {
	if a.bus == nil || !a.services.NeedsRatingEvents() {
		return
	}
	a.logger.WithField("topic", a.config.Kafka.Topics.Ratings).Info("Consuming rating events")

	go func() {
		err := a.bus.ConsumeRatingEvents(ctx, a.services.Rating.HandleRatingEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.WithError(err).Error("Rating event consumer stopped")
		}
	}()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	var errs []error
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing rating event bus")
			errs = append(errs, err)
		}
	}

	a.services.Close()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func newRouter(cfg *config.Config, logger *logrus.Logger, h *handlers.Handlers, schemaValidator *validation.SchemaValidator) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg))

	validateRating := middleware.NewValidationMiddleware(schemaValidator).ValidateRating()

	router.GET("/", handlers.Home)
	router.GET("/health", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes kept for existing clients
	router.GET("/recommend/:userId", h.Recommendation.Get)
	router.POST("/rate", validateRating, h.Rating.Create)

	api := router.Group("/api/v1")
	{
		api.GET("/recommendations/:userId", h.Recommendation.Get)
		api.POST("/ratings", validateRating, h.Rating.Create)
	}

	return router
}
