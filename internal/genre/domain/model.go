package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Genre names are not unique. Lookups by name return the oldest match.
type Genre struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Genre) TableName() string { return "genres" }
