package repository

import (
	"github.com/smallbiznis/movieshop/internal/genre/domain"
	"github.com/smallbiznis/movieshop/pkg/repository"
	"gorm.io/gorm"
)

func Provide(db *gorm.DB) domain.Repository {
	return repository.ProvideStore[domain.Genre](db)
}
