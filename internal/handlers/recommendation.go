package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/recommender"
	"github.com/temcen/movierec/internal/services"
)

type RecommendationHandler struct {
	service services.RecommendationServiceInterface
	logger  *logrus.Logger
}

func NewRecommendationHandler(service services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "User ID must be a non-negative integer")
		return
	}

	// Zero lets the service apply the configured default
	count := 0
	if countStr := c.Query("count"); countStr != "" {
		if parsedCount, err := strconv.Atoi(countStr); err == nil && parsedCount > 0 {
			count = parsedCount
		}
	}

	response, err := h.service.GetRecommendations(c.Request.Context(), userID, count)
	if err != nil {
		if recommender.IsInsufficientData(err) {
			respondError(c, http.StatusNotFound, "INSUFFICIENT_DATA", err.Error())
			return
		}

		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to generate recommendations")
		respondError(c, http.StatusInternalServerError, "RECOMMENDATION_GENERATION_FAILED", "Failed to generate recommendations")
		return
	}

	c.JSON(http.StatusOK, response)
}
