package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Profile, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Profile, error)
	Update(ctx context.Context, db *gorm.DB, p *Profile) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
