package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entitlement records that a profile paid for a movie. SalePriceCents is the
// price at purchase time and never follows later catalog price changes.
type Entitlement struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	ProfileID      snowflake.ID `json:"profile_id" gorm:"column:profile_id;not null;uniqueIndex:ux_entitlements_profile_movie,priority:1"`
	MovieID        snowflake.ID `json:"movie_id" gorm:"column:movie_id;not null;uniqueIndex:ux_entitlements_profile_movie,priority:2;index"`
	SalePriceCents int64        `json:"sale_price_cents" gorm:"column:sale_price_cents;not null"`
	SaleDate       time.Time    `json:"sale_date" gorm:"column:sale_date;type:date;not null"`
	TimesWatched   int          `json:"times_watched" gorm:"column:times_watched;not null;default:0"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null"`
}

func (Entitlement) TableName() string { return "entitlements" }

// TotalAmountSpent sums the sale price snapshots.
func TotalAmountSpent(items []Entitlement) int64 {
	var total int64
	for _, item := range items {
		total += item.SalePriceCents
	}
	return total
}

// TotalWatched sums the watch counters.
func TotalWatched(items []Entitlement) int {
	total := 0
	for _, item := range items {
		total += item.TimesWatched
	}
	return total
}

// SaleDateOf truncates t to midnight UTC.
func SaleDateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
