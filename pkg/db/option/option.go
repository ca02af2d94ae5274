package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a query before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// QuerySortBy orders by Field when it is in Allow, otherwise by Default.
// id is always appended as a tiebreaker so equal keys keep insertion order.
type QuerySortBy struct {
	Field   string
	Desc    bool
	Default string
	Allow   map[string]bool
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.ToLower(strings.TrimSpace(sort.Field))
		if !sort.Allow[field] {
			field = sort.Default
		}
		dir := "ASC"
		if sort.Desc {
			dir = "DESC"
		}
		if field == "" || field == "id" {
			return db.Order("id " + dir)
		}
		return db.Order(fmt.Sprintf("%s %s, id %s", field, dir, dir))
	})
}

// WithLimit caps the number of rows returned.
func WithLimit(n int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	})
}
