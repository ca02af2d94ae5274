package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, movie *Movie) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Movie, error)
	FindByTitle(ctx context.Context, db *gorm.DB, title string) (*Movie, error)
	// List returns the catalog in insertion order.
	List(ctx context.Context, db *gorm.DB) ([]Movie, error)
	// ListByGenre returns the genre's movies in association insertion order.
	ListByGenre(ctx context.Context, db *gorm.DB, genreID snowflake.ID) ([]Movie, error)
	Update(ctx context.Context, db *gorm.DB, movie *Movie) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
