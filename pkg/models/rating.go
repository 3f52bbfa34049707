package models

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID      int64 `json:"id" db:"id"`
	UserID  int64 `json:"user_id" db:"user_id"`
	MovieID int64 `json:"movie_id" db:"movie_id"`
	Rating  int   `json:"rating" db:"rating"`
}

type RateRequest struct {
	UserID  *int64 `json:"user_id" validate:"required,gte=0,lte=2147483647"`
	MovieID *int64 `json:"movie_id" validate:"required,gt=0,lte=2147483647"`
	Rating  *int   `json:"rating" validate:"required"`
}

// RatingEvent is published after a rating has been stored
type RatingEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       string    `json:"type"`
	Rating     Rating    `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

const RatingRecordedEvent = "rating.recorded"
