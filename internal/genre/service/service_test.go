package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/genre/domain"
	"github.com/smallbiznis/movieshop/internal/genre/repository"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	moviegenrerepo "github.com/smallbiznis/movieshop/internal/moviegenre/repository"
	"github.com/smallbiznis/movieshop/internal/validation"
	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Genre{}, &moviegenredomain.MovieGenre{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{
		DB:             conn,
		Log:            zap.NewNop(),
		GenID:          node,
		Clock:          clock.NewFakeClock(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:           repository.Provide(conn),
		MovieGenreRepo: moviegenrerepo.Provide(),
	})
	return svc, conn, node
}

func TestCreateGetList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	drama, err := svc.Create(ctx, domain.Request{Name: " Drama "})
	require.NoError(t, err)
	assert.Equal(t, "Drama", drama.Name)

	_, err = svc.Create(ctx, domain.Request{Name: "Action"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, drama.ID)
	require.NoError(t, err)
	assert.Equal(t, drama.ID, got.ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Drama", all[0].Name)
	assert.Equal(t, "Action", all[1].Name)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Request{Name: "  "})
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, validation.FieldError{Field: "name", Code: "required", Message: "Genre must have a name."}, errs[0])

	_, err = svc.Create(ctx, domain.Request{Name: "Extremely Long Genre Name"})
	errs, ok = validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Genre name must be 20 or fewer characters.", errs[0].Message)

	_, err = svc.Create(ctx, domain.Request{Name: "Twenty Chars Exactly"})
	assert.NoError(t, err)
}

func TestGetByNameReturnsOldestMatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.Request{Name: "Horror"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.Request{Name: "Horror"})
	require.NoError(t, err)

	got, err := svc.GetByName(ctx, "Horror")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = svc.GetByName(ctx, "Western")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, domain.Request{Name: "Sci-Fi"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, g.ID, domain.Request{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", updated.Name)

	got, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", got.Name)

	_, err = svc.Update(ctx, node.Generate().String(), domain.Request{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(ctx, g.ID, domain.Request{})
	assert.ErrorIs(t, err, validation.ErrValidationFailed)
}

func TestDeleteCascadesAssociations(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	g, err := svc.Create(ctx, domain.Request{Name: "Comedy"})
	require.NoError(t, err)
	genreID, err := snowflake.ParseString(g.ID)
	require.NoError(t, err)

	require.NoError(t, conn.Create(&moviegenredomain.MovieGenre{
		ID: node.Generate(), MovieID: node.Generate(), GenreID: genreID, CreatedAt: time.Now(),
	}).Error)

	require.NoError(t, svc.Delete(ctx, g.ID))

	var links int64
	require.NoError(t, conn.Model(&moviegenredomain.MovieGenre{}).Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, svc.Delete(ctx, g.ID), domain.ErrNotFound)
	_, err = svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
