package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/movieshop/pkg/db"
	"github.com/smallbiznis/movieshop/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type film struct {
	ID    int64 `gorm:"primaryKey"`
	Title string
	Year  int
}

func newStore(t *testing.T) Repository[film] {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&film{}))
	return ProvideStore[film](conn)
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, f := range []*film{
		{ID: 1, Title: "Alien", Year: 1979},
		{ID: 2, Title: "Aliens", Year: 1986},
		{ID: 3, Title: "Heat", Year: 1995},
	} {
		require.NoError(t, store.Create(ctx, f))
	}

	got, err := store.FindOne(ctx, &film{Title: "Heat"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.ID)

	missing, err := store.FindOne(ctx, &film{Title: "Jaws"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Update(ctx, int64(3), map[string]any{"year": 1996}))
	got, err = store.FindOne(ctx, &film{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, 1996, got.Year)

	require.NoError(t, store.Delete(ctx, int64(1)))
	remaining, err := store.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestStoreFindOptions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	for i, year := range []int{1995, 1979, 2001, 1979} {
		require.NoError(t, store.Create(ctx, &film{ID: int64(i + 1), Title: "f", Year: year}))
	}

	items, err := store.Find(ctx, &film{},
		option.WithSortBy(option.QuerySortBy{Field: "year", Allow: map[string]bool{"year": true}}),
	)
	require.NoError(t, err)
	got := make([]int64, 0, len(items))
	for _, item := range items {
		got = append(got, item.ID)
	}
	assert.Equal(t, []int64{2, 4, 1, 3}, got)

	first, err := store.FindOne(ctx, &film{Year: 1979},
		option.WithSortBy(option.QuerySortBy{Field: "title; DROP TABLE films", Default: "id", Desc: true}),
	)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, int64(4), first.ID)

	limited, err := store.Find(ctx, &film{}, option.WithSortBy(option.QuerySortBy{}), option.WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
