package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/config"
	entitlementdomain "github.com/smallbiznis/movieshop/internal/entitlement/domain"
	entitlementrepo "github.com/smallbiznis/movieshop/internal/entitlement/repository"
	genredomain "github.com/smallbiznis/movieshop/internal/genre/domain"
	genrerepo "github.com/smallbiznis/movieshop/internal/genre/repository"
	"github.com/smallbiznis/movieshop/internal/movie/domain"
	"github.com/smallbiznis/movieshop/internal/movie/repository"
	moviegenredomain "github.com/smallbiznis/movieshop/internal/moviegenre/domain"
	moviegenrerepo "github.com/smallbiznis/movieshop/internal/moviegenre/repository"
	"github.com/smallbiznis/movieshop/internal/validation"
	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordedAudit struct {
	action   string
	targetID string
}

type fakeAudit struct {
	entries []recordedAudit
}

func (f *fakeAudit) AuditLog(_ context.Context, action, _ string, targetID string, _ map[string]any) error {
	f.entries = append(f.entries, recordedAudit{action: action, targetID: targetID})
	return nil
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	audit *fakeAudit
}

func newFixture(t *testing.T, maxYear int) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Movie{},
		&genredomain.Genre{},
		&moviegenredomain.MovieGenre{},
		&entitlementdomain.Entitlement{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	audit := &fakeAudit{}
	svc := New(Params{
		DB:              conn,
		Log:             zap.NewNop(),
		GenID:           node,
		Clock:           clock.NewFakeClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
		Limits:          config.NewStaticCatalogConfigHolder(config.CatalogConfig{MaxYear: maxYear}),
		Repo:            repository.Provide(),
		GenreRepo:       genrerepo.Provide(conn),
		MovieGenreRepo:  moviegenrerepo.Provide(),
		EntitlementRepo: entitlementrepo.Provide(),
		AuditSvc:        audit,
	})
	return &fixture{svc: svc, db: conn, node: node, audit: audit}
}

func (f *fixture) genre(t *testing.T, name string) snowflake.ID {
	t.Helper()
	g := genredomain.Genre{ID: f.node.Generate(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, f.db.Create(&g).Error)
	return g.ID
}

func (f *fixture) tag(t *testing.T, movieID string, genreID snowflake.ID) {
	t.Helper()
	id, err := snowflake.ParseString(movieID)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&moviegenredomain.MovieGenre{
		ID: f.node.Generate(), MovieID: id, GenreID: genreID, CreatedAt: time.Now(),
	}).Error)
}

func validRequest() domain.Request {
	length := 112
	return domain.Request{
		Title:           "Jaws",
		Year:            1975,
		LengthInMinutes: &length,
		Price:           "12.5",
		ExternalInfoURL: "https://www.imdb.com/title/tt0073195/",
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "12.50", created.Price)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jaws", got.Title)
	assert.Equal(t, 1975, got.Year)
	require.NotNil(t, got.LengthInMinutes)
	assert.Equal(t, 112, *got.LengthInMinutes)
	assert.Equal(t, "12.50", got.Price)
	assert.Equal(t, "https://www.imdb.com/title/tt0073195/", got.ExternalInfoURL)
	assert.Empty(t, got.Genres)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "movie.create", f.audit.entries[0].action)
}

func TestCreateCollectsEveryViolation(t *testing.T) {
	f := newFixture(t, 2031)
	length := 1001

	_, err := f.svc.Create(context.Background(), domain.Request{
		Title:           "   ",
		Year:            1700,
		LengthInMinutes: &length,
		Price:           "1000",
		ExternalInfoURL: "",
	})
	require.ErrorIs(t, err, validation.ErrValidationFailed)

	errs, ok := validation.As(err)
	require.True(t, ok)
	fields := map[string]string{}
	for _, fe := range errs {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Movie must have a title.", fields["title"])
	assert.Equal(t, "The Movie Year must fall between 1832 and 2031.", fields["year"])
	assert.Equal(t, "The Length of the movie must be between 0 and 1000 minutes.", fields["length_in_minutes"])
	assert.Equal(t, "The Price must be less than 999.99, and a valid dollar amount.", fields["price"])
	assert.Equal(t, "You must include the URL.", fields["external_info_url"])

	var count int64
	require.NoError(t, f.db.Model(&domain.Movie{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestYearBounds(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	cases := []struct {
		year int
		ok   bool
	}{
		{1831, false},
		{1832, true},
		{2031, true},
		{2032, false},
	}
	for _, tc := range cases {
		req := validRequest()
		req.Year = tc.year
		_, err := f.svc.Create(ctx, req)
		if tc.ok {
			assert.NoError(t, err, "year %d", tc.year)
		} else {
			assert.ErrorIs(t, err, validation.ErrValidationFailed, "year %d", tc.year)
		}
	}
}

func TestTitleLength(t *testing.T) {
	f := newFixture(t, 2031)
	req := validRequest()
	req.Title = "Night of the Living Dead: The Extended Director Cut"
	require.Len(t, []rune(req.Title), 51)

	_, err := f.svc.Create(context.Background(), req)
	errs, ok := validation.As(err)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
	assert.Equal(t, "too_long", errs[0].Code)
}

func TestGetLoadsGenresInAssociationOrder(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	horror := f.genre(t, "Horror")
	action := f.genre(t, "Action")
	m, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	f.tag(t, m.ID, horror)
	f.tag(t, m.ID, action)

	got, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.Genres, 2)
	assert.Equal(t, "Horror", got.Genres[0].Name)
	assert.Equal(t, "Action", got.Genres[1].Name)
	assert.Equal(t, "Horror, Action", got.GenreNames)
}

func TestGetErrors(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.Get(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetByTitle(ctx, "Nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByTitleReturnsFirstMatch(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	got, err := f.svc.GetByTitle(ctx, " Jaws ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestListAndListByGenre(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	drama := f.genre(t, "Drama")
	titles := []string{"A", "B", "C"}
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		req := validRequest()
		req.Title = title
		m, err := f.svc.Create(ctx, req)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}
	f.tag(t, ids[2], drama)
	f.tag(t, ids[0], drama)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Title)
	assert.Equal(t, "C", all[2].Title)
	assert.Equal(t, "Drama", all[2].GenreNames)

	byGenre, err := f.svc.ListByGenre(ctx, drama.String())
	require.NoError(t, err)
	require.Len(t, byGenre, 2)
	assert.Equal(t, "C", byGenre[0].Title)
	assert.Equal(t, "A", byGenre[1].Title)

	_, err = f.svc.ListByGenre(ctx, f.node.Generate().String())
	assert.ErrorIs(t, err, genredomain.ErrNotFound)
}

func TestUpdateReplacesScalars(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, m.ID, domain.Request{
		Title:           "Jaws 2",
		Year:            1978,
		Price:           "3",
		ExternalInfoURL: "https://example.com/jaws2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jaws 2", updated.Title)
	assert.Nil(t, updated.LengthInMinutes)
	assert.Equal(t, "3.00", updated.Price)

	_, err = f.svc.Update(ctx, f.node.Generate().String(), validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMaxYearIsReadPerOperation(t *testing.T) {
	f := newFixture(t, 2031)
	holder := config.NewStaticCatalogConfigHolder(config.CatalogConfig{MaxYear: 2031})
	f.svc.(*Service).limits = holder

	req := validRequest()
	req.Year = 2035
	_, err := f.svc.Create(context.Background(), req)
	require.ErrorIs(t, err, validation.ErrValidationFailed)

	require.NoError(t, holder.Set(config.CatalogConfig{MaxYear: 2040}))
	_, err = f.svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestDeleteCascadesAssociations(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	g := f.genre(t, "Action")
	m, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	f.tag(t, m.ID, g)

	require.NoError(t, f.svc.Delete(ctx, m.ID))

	var links int64
	require.NoError(t, f.db.Model(&moviegenredomain.MovieGenre{}).Count(&links).Error)
	assert.Zero(t, links)

	_, err = f.svc.Get(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, m.ID), domain.ErrNotFound)
}

func TestDeleteRejectsPurchasedMovie(t *testing.T) {
	f := newFixture(t, 2031)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, validRequest())
	require.NoError(t, err)
	movieID, _ := snowflake.ParseString(m.ID)
	require.NoError(t, f.db.Create(&entitlementdomain.Entitlement{
		ID:             f.node.Generate(),
		ProfileID:      f.node.Generate(),
		MovieID:        movieID,
		SalePriceCents: 1250,
		SaleDate:       time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		CreatedAt:      time.Now(),
	}).Error)

	err = f.svc.Delete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrMovieHasEntitlements)

	_, err = f.svc.Get(ctx, m.ID)
	assert.NoError(t, err)
}
