package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/entitlement/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const columns = `id, profile_id, movie_id, sale_price_cents, sale_date, times_watched, created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByPair(ctx context.Context, db *gorm.DB, profileID, movieID snowflake.ID) (*domain.Entitlement, error) {
	var e domain.Entitlement
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM entitlements WHERE profile_id = ? AND movie_id = ?`,
		profileID,
		movieID,
	).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) ListByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) ([]domain.Entitlement, error) {
	var items []domain.Entitlement
	err := db.WithContext(ctx).Raw(
		`SELECT `+columns+` FROM entitlements WHERE profile_id = ? ORDER BY id ASC`,
		profileID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, e *domain.Entitlement) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "movie_id"}},
			DoNothing: true,
		}).
		Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IncrementWatch(ctx context.Context, db *gorm.DB, profileID, movieID snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE entitlements SET times_watched = times_watched + 1 WHERE profile_id = ? AND movie_id = ?`,
		profileID,
		movieID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) DeleteByProfile(ctx context.Context, db *gorm.DB, profileID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM entitlements WHERE profile_id = ?`, profileID).Error
}

func (r *repo) CountByMovie(ctx context.Context, db *gorm.DB, movieID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM entitlements WHERE movie_id = ?`,
		movieID,
	).Scan(&count).Error
	return count, err
}
