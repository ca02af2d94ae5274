package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	"github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, movieID, genreID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM movie_genres WHERE movie_id = ? AND genre_id = ?`,
		movieID,
		genreID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, mg *domain.MovieGenre) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "movie_id"}, {Name: "genre_id"}},
			DoNothing: true,
		}).
		Create(mg).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, movieID, genreID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM movie_genres WHERE movie_id = ? AND genre_id = ?`,
		movieID,
		genreID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM movie_genres WHERE movie_id = ?`, movieID).Error
}

func (r *repo) DeleteByGenre(ctx context.Context, db *gorm.DB, genreID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM movie_genres WHERE genre_id = ?`, genreID).Error
}

type genreRow struct {
	MovieID   snowflake.ID
	GenreID   snowflake.ID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *repo) ListGenres(ctx context.Context, db *gorm.DB, movieIDs []snowflake.ID) (map[snowflake.ID][]genredomain.Genre, error) {
	out := make(map[snowflake.ID][]genredomain.Genre, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}

	var rows []genreRow
	err := db.WithContext(ctx).Raw(
		`SELECT mg.movie_id, g.id AS genre_id, g.name, g.created_at, g.updated_at
		 FROM movie_genres mg
		 JOIN genres g ON g.id = mg.genre_id
		 WHERE mg.movie_id IN ?
		 ORDER BY mg.id ASC`,
		movieIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.MovieID] = append(out[row.MovieID], genredomain.Genre{
			ID:        row.GenreID,
			Name:      row.Name,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}
