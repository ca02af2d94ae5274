package domain

import "github.com/smallbiznis/movieshop/pkg/repository"

// Repository is the generic single-table store over genres.
type Repository = repository.Repository[Genre]
