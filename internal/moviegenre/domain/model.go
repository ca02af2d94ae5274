package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MovieGenre tags a movie with a genre. A pair appears at most once.
type MovieGenre struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	MovieID   snowflake.ID `json:"movie_id" gorm:"column:movie_id;not null;uniqueIndex:ux_movie_genres_pair,priority:1"`
	GenreID   snowflake.ID `json:"genre_id" gorm:"column:genre_id;not null;uniqueIndex:ux_movie_genres_pair,priority:2;index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (MovieGenre) TableName() string { return "movie_genres" }
