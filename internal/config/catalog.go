package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MinMovieYear is the earliest release year accepted for a movie.
const MinMovieYear = 1832

// CatalogConfig holds catalog rules that can change without a restart.
type CatalogConfig struct {
	MaxYear int `mapstructure:"maxYear"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{MaxYear: 2031}
}

type CatalogConfigHolder struct {
	current atomic.Value // holds CatalogConfig
}

// NewCatalogConfigHolder reads catalog.yml and keeps watching it for changes.
// MAX_YEAR overrides the file value.
func NewCatalogConfigHolder() (*CatalogConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/movieshop")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOVIESHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("catalog.maxYear", "MAX_YEAR")
	v.SetDefault("catalog.maxYear", DefaultCatalogConfig().MaxYear)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	cfg := readCatalogConfig(v)
	if err := validateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			if err := holder.Set(readCatalogConfig(v)); err != nil {
				log.Printf("[catalog-config] invalid config ignored: %v", err)
				return
			}
			log.Printf("[catalog-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// NewStaticCatalogConfigHolder returns a holder that never reloads.
func NewStaticCatalogConfigHolder(cfg CatalogConfig) *CatalogConfigHolder {
	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *CatalogConfigHolder) Get() CatalogConfig {
	return h.current.Load().(CatalogConfig)
}

// Set swaps in cfg if it is valid.
func (h *CatalogConfigHolder) Set(cfg CatalogConfig) error {
	if err := validateCatalogConfig(cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

// MaxYear is the latest release year accepted for a movie.
func (h *CatalogConfigHolder) MaxYear() int {
	return h.Get().MaxYear
}

func readCatalogConfig(v *viper.Viper) CatalogConfig {
	return CatalogConfig{MaxYear: v.GetInt("catalog.maxYear")}
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if cfg.MaxYear < MinMovieYear {
		return fmt.Errorf("catalog.maxYear must be at least %d, got %d", MinMovieYear, cfg.MaxYear)
	}
	return nil
}
