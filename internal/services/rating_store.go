package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/temcen/movierec/pkg/models"
)

// SQLSTATE for foreign_key_violation
const foreignKeyViolation = "23503"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidRating = errors.New("invalid rating")
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS movies (
	id SERIAL PRIMARY KEY,
	title VARCHAR(100) NOT NULL UNIQUE,
	genre VARCHAR(100)
);
CREATE TABLE IF NOT EXISTS ratings (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL,
	movie_id INTEGER NOT NULL REFERENCES movies(id),
	rating INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ratings_user_id ON ratings (user_id);`

// SampleMovies is the catalog seeded into an empty database
var SampleMovies = []models.Movie{
	{Title: "The Shawshank Redemption", Genre: strPtr("Drama")},
	{Title: "The Godfather", Genre: strPtr("Crime")},
	{Title: "The Dark Knight", Genre: strPtr("Action")},
	{Title: "Pulp Fiction", Genre: strPtr("Crime")},
	{Title: "Fight Club", Genre: strPtr("Drama")},
}

// PostgresRatingStore implements RatingStore on PostgreSQL
type PostgresRatingStore struct {
	db     DatabaseQuerier
	logger *logrus.Logger
}

// NewPostgresRatingStore creates a new PostgreSQL backed rating store
func NewPostgresRatingStore(db DatabaseQuerier, logger *logrus.Logger) *PostgresRatingStore {
	return &PostgresRatingStore{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the movies and ratings tables if they do not exist
func (s *PostgresRatingStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedSampleMovies inserts SampleMovies when the catalog is empty and returns
// how many rows were added.
func (s *PostgresRatingStore) SeedSampleMovies(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	placeholders := make([]string, 0, len(SampleMovies))
	args := make([]interface{}, 0, len(SampleMovies)*2)
	for i, movie := range SampleMovies {
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, norm.NFC.String(movie.Title), movie.Genre)
	}

	query := "INSERT INTO movies (title, genre) VALUES " + strings.Join(placeholders, ", ") +
		" ON CONFLICT (title) DO NOTHING"

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to seed movies: %w", err)
	}

	s.logger.WithField("movies", tag.RowsAffected()).Info("Seeded sample movies")
	return tag.RowsAffected(), nil
}

// ListRatings returns every stored rating in insertion order
func (s *PostgresRatingStore) ListRatings(ctx context.Context) ([]models.Rating, error) {
	rows, err := s.db.Query(ctx, "SELECT id, user_id, movie_id, rating FROM ratings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}

	return ratings, nil
}

// AddRating inserts a rating and fills in its id
func (s *PostgresRatingStore) AddRating(ctx context.Context, rating *models.Rating) error {
	err := s.db.QueryRow(ctx,
		"INSERT INTO ratings (user_id, movie_id, rating) VALUES ($1, $2, $3) RETURNING id",
		rating.UserID, rating.MovieID, rating.Rating,
	).Scan(&rating.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("%w: %d", ErrMovieNotFound, rating.MovieID)
		}
		return fmt.Errorf("failed to insert rating: %w", err)
	}
	return nil
}

// MovieTitles looks up titles for the given movie ids. Unknown ids are absent
// from the result.
func (s *PostgresRatingStore) MovieTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	titles := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	rows, err := s.db.Query(ctx, "SELECT id, title FROM movies WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie titles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan movie title: %w", err)
		}
		titles[id] = title
	}

	return titles, rows.Err()
}

func strPtr(s string) *string {
	return &s
}
