package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Charger takes money for a purchase. Implementations must not write entitlements.
type Charger interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	ProfileID   snowflake.ID
	MovieID     snowflake.ID
	AmountCents int64
	Currency    string
}

type ChargeResult struct {
	Provider  string
	Reference string
	ChargedAt time.Time
}

// AdapterConfig is passed to a provider factory when the charger is built.
type AdapterConfig struct {
	Provider string
	Options  map[string]string
}

type AdapterFactory interface {
	Provider() string
	NewCharger(cfg AdapterConfig) (Charger, error)
}

const DefaultCurrency = "USD"

var (
	ErrProviderNotFound = errors.New("payment_provider_not_found")
	ErrChargeDeclined   = errors.New("payment_declined")
	ErrInvalidAmount    = errors.New("invalid_payment_amount")
)
