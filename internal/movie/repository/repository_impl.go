package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/movie/domain"
	"gorm.io/gorm"
)

const movieColumns = `m.id, m.title, m.year, m.length_in_minutes, m.price_cents, m.external_info_url, m.created_at, m.updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, movie *domain.Movie) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO movies (id, title, year, length_in_minutes, price_cents, external_info_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		movie.ID,
		movie.Title,
		movie.Year,
		movie.LengthInMinutes,
		movie.PriceCents,
		movie.ExternalInfoURL,
		movie.CreatedAt,
		movie.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Movie, error) {
	var m domain.Movie
	err := db.WithContext(ctx).Raw(
		`SELECT `+movieColumns+` FROM movies m WHERE m.id = ?`,
		id,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) FindByTitle(ctx context.Context, db *gorm.DB, title string) (*domain.Movie, error) {
	var m domain.Movie
	err := db.WithContext(ctx).Raw(
		`SELECT `+movieColumns+` FROM movies m WHERE m.title = ? ORDER BY m.id ASC LIMIT 1`,
		title,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Movie, error) {
	var items []domain.Movie
	err := db.WithContext(ctx).Raw(
		`SELECT ` + movieColumns + ` FROM movies m ORDER BY m.id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByGenre(ctx context.Context, db *gorm.DB, genreID snowflake.ID) ([]domain.Movie, error) {
	var items []domain.Movie
	err := db.WithContext(ctx).Raw(
		`SELECT `+movieColumns+`
		 FROM movie_genres mg
		 JOIN movies m ON m.id = mg.movie_id
		 WHERE mg.genre_id = ?
		 ORDER BY mg.id ASC`,
		genreID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, movie *domain.Movie) error {
	if movie == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE movies
		 SET title = ?, year = ?, length_in_minutes = ?, price_cents = ?, external_info_url = ?, updated_at = ?
		 WHERE id = ?`,
		movie.Title,
		movie.Year,
		movie.LengthInMinutes,
		movie.PriceCents,
		movie.ExternalInfoURL,
		movie.UpdatedAt,
		movie.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM movies WHERE id = ?`, id).Error
}
