package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("SEED_GENRES", "")

	cfg := Load()

	assert.Equal(t, "movieshop", cfg.AppName)
	assert.Equal(t, "Movie Shop", cfg.AppDisplayName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.False(t, cfg.AuthCookieSecure)
	assert.Contains(t, cfg.Bootstrap.DefaultGenres, "Action")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("APP_DISPLAY_NAME", "Late Night Cinema")
	t.Setenv("DATABASE_TYPE", "sqlite")
	t.Setenv("LOGIN_BURST", "not-a-number")
	t.Setenv("SEED_GENRES", " Noir , ,Western ")
	t.Setenv("PAYMENT_OPTIONS", "Decline_Above_Cents=1000, junk ,=x")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.AuthCookieSecure)
	assert.Equal(t, "Late Night Cinema", cfg.AppDisplayName)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.Equal(t, []string{"Noir", "Western"}, cfg.Bootstrap.DefaultGenres)
	assert.Equal(t, map[string]string{"decline_above_cents": "1000"}, cfg.PaymentOptions)
}

func TestCatalogConfigHolderDefaults(t *testing.T) {
	t.Setenv("MAX_YEAR", "")

	holder, err := NewCatalogConfigHolder()
	require.NoError(t, err)
	assert.Equal(t, 2031, holder.MaxYear())
}

func TestCatalogConfigHolderEnvOverride(t *testing.T) {
	t.Setenv("MAX_YEAR", "2040")

	holder, err := NewCatalogConfigHolder()
	require.NoError(t, err)
	assert.Equal(t, 2040, holder.MaxYear())
}

func TestCatalogConfigHolderRejectsYearBeforeMinimum(t *testing.T) {
	t.Setenv("MAX_YEAR", "1800")

	_, err := NewCatalogConfigHolder()
	require.Error(t, err)
}

func TestStaticCatalogConfigHolder(t *testing.T) {
	holder := NewStaticCatalogConfigHolder(CatalogConfig{MaxYear: 1999})
	assert.Equal(t, 1999, holder.MaxYear())
}

func TestCatalogConfigHolderSetValidates(t *testing.T) {
	holder := NewStaticCatalogConfigHolder(DefaultCatalogConfig())

	require.Error(t, holder.Set(CatalogConfig{MaxYear: 1831}))
	assert.Equal(t, 2031, holder.MaxYear())

	require.NoError(t, holder.Set(CatalogConfig{MaxYear: 1832}))
	assert.Equal(t, 1832, holder.MaxYear())
}
