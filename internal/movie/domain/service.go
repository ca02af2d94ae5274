package domain

import (
	"context"
	"errors"
	"time"

	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
)

type Service interface {
	Create(ctx context.Context, req Request) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByTitle(ctx context.Context, title string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	ListByGenre(ctx context.Context, genreID string) ([]Response, error)
	Update(ctx context.Context, id string, req Request) (*Response, error)
	Delete(ctx context.Context, id string) error
}

// CatalogLimits supplies the configured upper bound for release years.
type CatalogLimits interface {
	MaxYear() int
}

// Request is the admin form for creating or replacing a movie.
type Request struct {
	Title           string `json:"title" validate:"required,max=50"`
	Year            int    `json:"year"`
	LengthInMinutes *int   `json:"length_in_minutes"`
	Price           string `json:"price"`
	ExternalInfoURL string `json:"external_info_url" validate:"required"`
}

type Response struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Year            int                    `json:"year"`
	LengthInMinutes *int                   `json:"length_in_minutes,omitempty"`
	Price           string                 `json:"price"`
	ExternalInfoURL string                 `json:"external_info_url"`
	Genres          []genredomain.Response `json:"genres"`
	GenreNames      string                 `json:"genre_names"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

var (
	ErrNotFound             = errors.New("movie_not_found")
	ErrInvalidID            = errors.New("invalid_movie_id")
	ErrMovieHasEntitlements = errors.New("movie_has_entitlements")
)
