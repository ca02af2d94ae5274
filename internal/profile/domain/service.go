package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req Request) (*Response, error)
	// GetByUser returns ErrNotFound when the user has not created a profile yet.
	GetByUser(ctx context.Context, userID snowflake.ID) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

// Request carries the billing fields. CardExpiration is a YYYY-MM-DD date.
type Request struct {
	CreditCardNumber string `json:"credit_card_number" validate:"required,len=12,digits"`
	CardExpiration   string `json:"card_expiration" validate:"required"`
	AddressLine1     string `json:"address_line1" validate:"required,max=100"`
	AddressLine2     string `json:"address_line2" validate:"max=30"`
	City             string `json:"city" validate:"required,max=50"`
	State            string `json:"state" validate:"required,len=2,us_state"`
	ZIPCode          string `json:"zip_code" validate:"required,len=5,digits"`
}

// UpdateRequest is the edit form, which also renames the owning user.
type UpdateRequest struct {
	Request
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
}

type EntitlementResponse struct {
	ID           string    `json:"id"`
	MovieID      string    `json:"movie_id"`
	SalePrice    string    `json:"sale_price"`
	SaleDate     time.Time `json:"sale_date"`
	TimesWatched int       `json:"times_watched"`
}

type Response struct {
	ID               string                `json:"id"`
	UserID           string                `json:"user_id"`
	Name             string                `json:"name"`
	CreditCardNumber string                `json:"credit_card_number"`
	CardExpiration   string                `json:"card_expiration"`
	AddressLine1     string                `json:"address_line1"`
	AddressLine2     string                `json:"address_line2,omitempty"`
	City             string                `json:"city"`
	State            string                `json:"state"`
	ZIPCode          string                `json:"zip_code"`
	Address          string                `json:"address"`
	Entitlements     []EntitlementResponse `json:"entitlements"`
	TotalAmountSpent string                `json:"total_amount_spent"`
	TotalWatched     int                   `json:"total_watched"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

const DateLayout = "2006-01-02"

var (
	ErrNotFound      = errors.New("profile_not_found")
	ErrInvalidID     = errors.New("invalid_profile_id")
	ErrProfileExists = errors.New("profile_already_exists")
)
