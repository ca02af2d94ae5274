package domain

import (
	"context"
	"errors"
)

// Action names written by the storefront.
const (
	ActionMovieCreate       = "movie.create"
	ActionMovieUpdate       = "movie.update"
	ActionMovieDelete       = "movie.delete"
	ActionMovieGenreAdd     = "movie.genre_add"
	ActionMovieGenreRemove  = "movie.genre_remove"
	ActionGenreCreate       = "genre.create"
	ActionGenreUpdate       = "genre.update"
	ActionGenreDelete       = "genre.delete"
	ActionProfileCreate     = "profile.create"
	ActionProfileUpdate     = "profile.update"
	ActionProfileDelete     = "profile.delete"
	ActionPurchaseCompleted = "purchase.completed"
	ActionUserRegister      = "user.register"
)

type Service interface {
	// AuditLog writes an entry attributed to the actor carried on ctx.
	AuditLog(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error
}

var ErrInvalidAction = errors.New("invalid_action")
