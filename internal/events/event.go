// Package events publishes storefront domain events to RabbitMQ.
package events

import (
	"context"
	"time"
)

const (
	Exchange              = "movieshop.events"
	TypePurchaseCompleted = "purchase.completed"
)

// PurchaseCompleted is emitted once per new entitlement. Re-purchases of an owned movie emit nothing.
type PurchaseCompleted struct {
	EntitlementID string    `json:"entitlement_id"`
	ProfileID     string    `json:"profile_id"`
	MovieID       string    `json:"movie_id"`
	MovieTitle    string    `json:"movie_title"`
	SalePrice     string    `json:"sale_price"`
	SaleDate      string    `json:"sale_date"`
	Reference     string    `json:"payment_reference"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers events. Publish failures never roll back the caller's work.
type Publisher interface {
	PublishPurchaseCompleted(ctx context.Context, event PurchaseCompleted) error
}

// NoopPublisher drops every event. Used when AMQP_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) PublishPurchaseCompleted(context.Context, PurchaseCompleted) error { return nil }
