package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/clock"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	genrerepo "github.com/smallbiznis/movieshop/internal/genre/repository"
	moviedomain "github.com/smallbiznis/movieshop/internal/movie/domain"
	movierepo "github.com/smallbiznis/movieshop/internal/movie/repository"
	"github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	"github.com/smallbiznis/movieshop/internal/moviegenre/repository"
	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	movie snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&moviedomain.Movie{}, &genredomain.Genre{}, &domain.MovieGenre{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	m := moviedomain.Movie{
		ID: node.Generate(), Title: "Alien", Year: 1979, PriceCents: 999,
		ExternalInfoURL: "https://example.com/alien", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, movierepo.Provide().Insert(context.Background(), conn, &m))

	svc := New(Params{
		DB:        conn,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clock.NewFakeClock(now),
		Repo:      repository.Provide(),
		MovieRepo: movierepo.Provide(),
		GenreRepo: genrerepo.Provide(conn),
	})
	return &fixture{svc: svc, db: conn, node: node, movie: m.ID}
}

func (f *fixture) genre(t *testing.T, name string) snowflake.ID {
	t.Helper()
	g := genredomain.Genre{ID: f.node.Generate(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, f.db.Create(&g).Error)
	return g.ID
}

func (f *fixture) pairs(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&domain.MovieGenre{}).Count(&count).Error)
	return count
}

func TestAddGenreToMovieIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	horror := f.genre(t, "Horror")

	require.NoError(t, f.svc.AddGenreToMovie(ctx, f.movie.String(), horror.String()))
	require.NoError(t, f.svc.AddGenreToMovie(ctx, f.movie.String(), horror.String()))

	assert.Equal(t, int64(1), f.pairs(t))
}

func TestAddGenreToMovieConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	action := f.genre(t, "Action")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.AddGenreToMovie(ctx, f.movie.String(), action.String())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), f.pairs(t))
}

func TestAddGenreToMovieMissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drama := f.genre(t, "Drama")

	err := f.svc.AddGenreToMovie(ctx, f.node.Generate().String(), drama.String())
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)

	err = f.svc.AddGenreToMovie(ctx, f.movie.String(), f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrGenreNotFound)

	err = f.svc.AddGenreToMovie(ctx, "x", drama.String())
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	assert.Zero(t, f.pairs(t))
}

func TestRemoveGenreFromMovie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comedy := f.genre(t, "Comedy")
	drama := f.genre(t, "Drama")

	require.NoError(t, f.svc.AddGenreToMovie(ctx, f.movie.String(), comedy.String()))
	require.NoError(t, f.svc.AddGenreToMovie(ctx, f.movie.String(), drama.String()))

	require.NoError(t, f.svc.RemoveGenreFromMovie(ctx, f.movie.String(), comedy.String()))
	// Removing an absent pair is a no-op.
	require.NoError(t, f.svc.RemoveGenreFromMovie(ctx, f.movie.String(), comedy.String()))

	genres, err := f.svc.ListGenresForMovie(ctx, f.movie.String())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Drama", genres[0].Name)
}

func TestListGenresForMovieOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	names := []string{"Western", "Action", "Noir"}
	for _, name := range names {
		require.NoError(t, f.svc.AddGenreToMovie(ctx, f.movie.String(), f.genre(t, name).String()))
	}

	genres, err := f.svc.ListGenresForMovie(ctx, f.movie.String())
	require.NoError(t, err)
	got := make([]string, 0, len(genres))
	for _, g := range genres {
		got = append(got, g.Name)
	}
	assert.Equal(t, names, got)

	_, err = f.svc.ListGenresForMovie(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)
}

func TestJoinGenreNames(t *testing.T) {
	assert.Equal(t, "", domain.JoinGenreNames(nil))
	assert.Equal(t, "Action", domain.JoinGenreNames([]genredomain.Genre{{Name: "Action"}}))
	assert.Equal(t, "Action, Drama, Horror", domain.JoinGenreNames([]genredomain.Genre{
		{Name: "Action"}, {Name: "Drama"}, {Name: "Horror"},
	}))
}
