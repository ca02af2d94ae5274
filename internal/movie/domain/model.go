package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
)

const (
	MaxTitleLength  = 50
	MaxLengthInMins = 1000
)

type Movie struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Title           string       `gorm:"type:varchar(50);not null;index"`
	Year            int          `gorm:"not null"`
	LengthInMinutes *int         `gorm:"column:length_in_minutes"`
	PriceCents      int64        `gorm:"column:price_cents;not null;default:0"`
	ExternalInfoURL string       `gorm:"column:external_info_url;type:text;not null"`
	CreatedAt       time.Time    `gorm:"not null"`
	UpdatedAt       time.Time    `gorm:"not null"`

	// Genres is filled by the service in association insertion order.
	Genres []genredomain.Genre `gorm:"-"`
}

func (Movie) TableName() string { return "movies" }
