package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req Request) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByName(ctx context.Context, name string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Update(ctx context.Context, id string, req Request) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type Request struct {
	Name string `json:"name" validate:"required,max=20"`
}

type Response struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToResponse(g *Genre) Response {
	return Response{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

var (
	ErrNotFound  = errors.New("genre_not_found")
	ErrInvalidID = errors.New("invalid_genre_id")
)
