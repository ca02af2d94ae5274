package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	IsEntitled(ctx context.Context, profileID, movieID string) (bool, error)
	// Purchase charges and records an entitlement. Buying an owned movie returns
	// the existing entitlement with AlreadyOwned set and charges nothing.
	Purchase(ctx context.Context, profileID, movieID string) (*PurchaseResult, error)
	Watch(ctx context.Context, profileID, movieID string) (*WatchTicket, error)
	// ListMoviesWithWatchStatus lists the catalog, or one genre when genreID is non-empty.
	ListMoviesWithWatchStatus(ctx context.Context, profileID, genreID string) ([]MovieStatus, error)
	Library(ctx context.Context, profileID string) (*Library, error)
	Quote(ctx context.Context, profileID, movieID string) (*Quote, error)
}

// Locker serializes purchases of one movie by one profile.
type Locker interface {
	Acquire(ctx context.Context, profileID, movieID string) (release func(), ok bool, err error)
}

type WatchStatus string

const (
	StatusWatched    WatchStatus = "Watched"
	StatusNotWatched WatchStatus = "Not Watched"
)

type EntitlementResponse struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	MovieID      string    `json:"movie_id"`
	SalePrice    string    `json:"sale_price"`
	SaleDate     time.Time `json:"sale_date"`
	TimesWatched int       `json:"times_watched"`
}

type PurchaseResult struct {
	Entitlement  EntitlementResponse `json:"entitlement"`
	AlreadyOwned bool                `json:"already_owned"`
}

// WatchTicket is what the customer gets for a watch. No media is served.
type WatchTicket struct {
	MovieID         string `json:"movie_id"`
	Title           string `json:"title"`
	ExternalInfoURL string `json:"external_info_url"`
	TimesWatched    int    `json:"times_watched"`
}

type MovieStatus struct {
	MovieID    string      `json:"movie_id"`
	Title      string      `json:"title"`
	Year       int         `json:"year"`
	Price      string      `json:"price"`
	GenreNames string      `json:"genre_names"`
	Owned      bool        `json:"owned"`
	Status     WatchStatus `json:"status"`
}

type LibraryItem struct {
	MovieID      string    `json:"movie_id"`
	Title        string    `json:"title"`
	TimesWatched int       `json:"times_watched"`
	SalePrice    string    `json:"sale_price"`
	SaleDate     time.Time `json:"sale_date"`
}

type Library struct {
	Movies           []LibraryItem `json:"movies"`
	TotalMovies      int           `json:"total_movies"`
	TotalWatched     int           `json:"total_watched"`
	TotalAmountSpent string        `json:"total_amount_spent"`
}

type Quote struct {
	MovieID      string `json:"movie_id"`
	Title        string `json:"title"`
	Price        string `json:"price"`
	AlreadyOwned bool   `json:"already_owned"`
}

var (
	ErrNotEntitled        = errors.New("not_entitled")
	ErrInvalidID          = errors.New("invalid_id")
	ErrPurchaseInProgress = errors.New("purchase_in_progress")
)
