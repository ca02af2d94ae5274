package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/profile/domain"
	"gorm.io/gorm"
)

const columns = `id, user_id, credit_card_number, card_expiration, address_line1, address_line2, city, state, zip_code, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO profiles (`+columns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID,
		p.UserID,
		p.CreditCardNumber,
		p.CardExpiration,
		p.AddressLine1,
		p.AddressLine2,
		p.City,
		p.State,
		p.ZIPCode,
		p.CreatedAt,
		p.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Profile, error) {
	return r.findOne(ctx, db, `SELECT `+columns+` FROM profiles WHERE id = ?`, id)
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Profile, error) {
	return r.findOne(ctx, db, `SELECT `+columns+` FROM profiles WHERE user_id = ?`, userID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Profile, error) {
	var p domain.Profile
	if err := db.WithContext(ctx).Raw(query, arg).Scan(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`UPDATE profiles
		SET credit_card_number = ?, card_expiration = ?, address_line1 = ?, address_line2 = ?,
			city = ?, state = ?, zip_code = ?, updated_at = ?
		WHERE id = ?`,
		p.CreditCardNumber,
		p.CardExpiration,
		p.AddressLine1,
		p.AddressLine2,
		p.City,
		p.State,
		p.ZIPCode,
		p.UpdatedAt,
		p.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM profiles WHERE id = ?`, id).Error
}
