package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByPair(ctx context.Context, db *gorm.DB, profileID, movieID snowflake.ID) (*Entitlement, error)
	// ListByProfile returns entitlements in purchase order.
	ListByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]Entitlement, error)
	// InsertIfAbsent reports false when the pair already existed.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, e *Entitlement) (bool, error)
	// IncrementWatch bumps the counter in place and returns the rows affected.
	IncrementWatch(ctx context.Context, db *gorm.DB, profileID, movieID snowflake.ID) (int64, error)
	DeleteByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) error
	CountByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) (int64, error)
}
