// Package repository is a generic GORM store for lookup tables that need no
// hand-written queries.
package repository

import (
	"context"

	"github.com/smallbiznis/movieshop/pkg/db/option"
	"gorm.io/gorm"
)

// Repository filters Find and FindOne on the non-zero fields of query.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, id any, fields map[string]any) error
	Delete(ctx context.Context, id any) error
}
