package domain

import (
	"context"
	"errors"
	"strings"

	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
)

type Service interface {
	// AddGenreToMovie is idempotent: tagging an already tagged movie is a no-op.
	AddGenreToMovie(ctx context.Context, movieID, genreID string) error
	// RemoveGenreFromMovie succeeds without effect when the pair is absent.
	RemoveGenreFromMovie(ctx context.Context, movieID, genreID string) error
	ListGenresForMovie(ctx context.Context, movieID string) ([]genredomain.Response, error)
}

// JoinGenreNames renders genres for display, e.g. "Action, Drama".
func JoinGenreNames(genres []genredomain.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

var (
	ErrMovieNotFound = errors.New("movie_not_found")
	ErrGenreNotFound = errors.New("genre_not_found")
	ErrInvalidID     = errors.New("invalid_id")
)
