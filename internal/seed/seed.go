package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/movieshop/internal/auth/domain"
	"github.com/smallbiznis/movieshop/internal/auth/password"
	"github.com/smallbiznis/movieshop/internal/authorization"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/config"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultAdminFirstName = "Admin"
	defaultAdminLastName  = "Admin"
)

type sampleMovie struct {
	Title      string
	Year       int
	Length     int
	PriceCents int64
	URL        string
	Genres     []string
}

var sampleCatalog = []sampleMovie{
	{"The Lord of the Rings: The Fellowship of the Ring", 2001, 178, 1000, "https://www.imdb.com/title/tt0120737", []string{"Action", "Adventure"}},
	{"The Godfather", 1972, 175, 750, "https://www.imdb.com/title/tt0068646", []string{"Drama", "Crime"}},
	{"Forrest Gump", 1994, 142, 899, "https://www.imdb.com/title/tt0109830", []string{"Drama", "Romance"}},
	{"The Silence of the Lambs", 1991, 118, 799, "https://www.imdb.com/title/tt0102926", []string{"Drama", "Crime", "Thriller"}},
	{"The Lion King", 1994, 88, 500, "https://www.imdb.com/title/tt0110357", []string{"Drama", "Adventure"}},
	{"Gladiator", 2000, 155, 499, "https://www.imdb.com/title/tt0172495", []string{"Action", "Adventure"}},
	{"Braveheart", 1995, 178, 650, "https://www.imdb.com/title/tt0112573", []string{"Drama"}},
	{"Amadeus", 1984, 160, 499, "https://www.imdb.com/title/tt0086879", []string{"Drama"}},
	{"Hamilton", 2020, 160, 1999, "https://www.imdb.com/title/tt8503618", []string{"Musical"}},
	{"1917", 2019, 119, 1599, "https://www.imdb.com/title/tt8579674", []string{"Thriller"}},
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Config config.Config
	GenID  *snowflake.Node
	Clock  clock.Clock
	Authz  authorization.Service
	Log    *zap.Logger
}

// Run seeds the admin account, the default genres and, when enabled, the
// sample catalog. Every step looks rows up first so it is safe on each start.
func Run(ctx context.Context, p Params) error {
	if p.DB == nil {
		return errors.New("seed database handle is required")
	}
	log := p.Log.Named("seed")
	now := p.Clock.Now()
	boot := p.Config.Bootstrap

	var admin authdomain.User
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		admin, err = ensureAdminTx(ctx, tx, p.GenID, now, boot.AdminEmail, boot.AdminPassword)
		if err != nil {
			return err
		}

		genres, err := ensureGenresTx(ctx, tx, p.GenID, now, boot.DefaultGenres)
		if err != nil {
			return err
		}
		if !boot.SampleCatalog {
			return nil
		}
		return ensureSampleCatalogTx(ctx, tx, p.GenID, now, genres)
	})
	if err != nil {
		return err
	}

	// Role grants go through the casbin adapter, which holds its own handle.
	if err := p.Authz.AssignRole(ctx, admin.ID, authorization.RoleAdmin); err != nil {
		return err
	}

	log.Info("seed complete",
		zap.String("admin_email", admin.Email),
		zap.Int("genres", len(boot.DefaultGenres)),
		zap.Bool("sample_catalog", boot.SampleCatalog),
	)
	return nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time, email, rawPassword string) (authdomain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return authdomain.User{}, errors.New("admin email is required")
	}

	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return user, err
	}
	user = authdomain.User{
		ID:           node.Generate(),
		Email:        email,
		FirstName:    defaultAdminFirstName,
		LastName:     defaultAdminLastName,
		PasswordHash: &hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

// ensureGenresTx returns the id of the oldest genre carrying each name.
func ensureGenresTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time, names []string) (map[string]snowflake.ID, error) {
	out := make(map[string]snowflake.ID, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var g genredomain.Genre
		err := tx.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&g).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			g = genredomain.Genre{ID: node.Generate(), Name: name, CreatedAt: now, UpdatedAt: now}
			if err := tx.WithContext(ctx).Create(&g).Error; err != nil {
				return nil, err
			}
		}
		out[name] = g.ID
	}
	return out, nil
}

func ensureSampleCatalogTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, now time.Time, genres map[string]snowflake.ID) error {
	for _, sm := range sampleCatalog {
		var m moviedomain.Movie
		err := tx.WithContext(ctx).Where("title = ?", sm.Title).Order("id ASC").First(&m).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			length := sm.Length
			m = moviedomain.Movie{
				ID:              node.Generate(),
				Title:           sm.Title,
				Year:            sm.Year,
				LengthInMinutes: &length,
				PriceCents:      sm.PriceCents,
				ExternalInfoURL: sm.URL,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := tx.WithContext(ctx).Create(&m).Error; err != nil {
				return err
			}
		}

		for _, name := range sm.Genres {
			genreID, ok := genres[name]
			if !ok {
				continue
			}
			link := moviegenredomain.MovieGenre{ID: node.Generate(), MovieID: m.ID, GenreID: genreID, CreatedAt: now}
			err := tx.WithContext(ctx).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "movie_id"}, {Name: "genre_id"}},
					DoNothing: true,
				}).
				Create(&link).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}
