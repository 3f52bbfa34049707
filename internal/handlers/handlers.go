package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/middleware"
	"github.com/temcen/movierec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Rating         *RatingHandler
}

func New(logger *logrus.Logger, services *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommendation, logger),
		Rating:         NewRatingHandler(services.Rating, logger),
	}
}

// Home answers the root path with the service banner
func Home(c *gin.Context) {
	c.String(http.StatusOK, "Movie Recommendation Engine")
}

// Degraded means only non-critical checks failed; recommendations are still served.
var healthStatusCodes = map[string]int{
	"healthy":   http.StatusOK,
	"degraded":  http.StatusOK,
	"unhealthy": http.StatusServiceUnavailable,
}

// HealthHandler reports the state of the rating store and the cache
type HealthHandler struct {
	checker *services.HealthService
	logger  *logrus.Logger
}

func NewHealthHandler(logger *logrus.Logger, checker *services.HealthService) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

func (h *HealthHandler) Check(c *gin.Context) {
	report := h.checker.CheckHealth(c.Request.Context())

	code, ok := healthStatusCodes[report.Status]
	if !ok {
		code = http.StatusInternalServerError
	}
	if code != http.StatusOK {
		h.logger.WithFields(logrus.Fields{
			"status":            report.Status,
			"critical_failures": report.Critical,
			"request_id":        middleware.GetRequestID(c),
		}).Warn("Health check failing")
	}

	c.JSON(code, report)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":      code,
			"message":   message,
			"requestId": middleware.GetRequestID(c),
		},
	})
}
