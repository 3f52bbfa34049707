package models

import "time"

type RecommendedMovie struct {
	MovieID  int64   `json:"movie_id"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

type Neighbor struct {
	UserID     int64   `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

type RecommendationResponse struct {
	UserID          int64              `json:"user_id"`
	Recommendations []string           `json:"recommendations"`
	Items           []RecommendedMovie `json:"items"`
	Neighbors       []Neighbor         `json:"neighbors,omitempty"`
	CacheHit        bool               `json:"cache_hit"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
