package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Exists(ctx context.Context, db *gorm.DB, movieID, genreID snowflake.ID) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, mg *MovieGenre) error
	Delete(ctx context.Context, db *gorm.DB, movieID, genreID snowflake.ID) (int64, error)
	DeleteByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) error
	DeleteByGenre(ctx context.Context, db *gorm.DB, genreID snowflake.ID) error
	// ListGenres returns each movie's genres in association insertion order.
	ListGenres(ctx context.Context, db *gorm.DB, movieIDs []snowflake.ID) (map[snowflake.ID][]genredomain.Genre, error)
}
