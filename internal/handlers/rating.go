package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/services"
	"github.com/temcen/movierec/pkg/models"
)

type RatingHandler struct {
	service   services.RatingServiceInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewRatingHandler(service services.RatingServiceInterface, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *RatingHandler) Create(c *gin.Context) {
	var req models.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body format")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	rating, err := h.service.RecordRating(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			respondError(c, http.StatusBadRequest, "INVALID_RATING", err.Error())
		case errors.Is(err, services.ErrMovieNotFound):
			respondError(c, http.StatusNotFound, "MOVIE_NOT_FOUND", "Movie does not exist")
		default:
			h.logger.WithError(err).Error("Failed to record rating")
			respondError(c, http.StatusInternalServerError, "RATING_FAILED", "Failed to record rating")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rating added successfully",
		"data":    rating,
	})
}
