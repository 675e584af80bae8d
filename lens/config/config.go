package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/duegraph/entitylens/lens"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Directory DirectoryConfig `mapstructure:"directory"`
	Screening ScreeningConfig `mapstructure:"screening"`
	External  ExternalConfig  `mapstructure:"external"`
}

// ResolverConfig tunes the turn-resolution pipeline.
type ResolverConfig struct {
	PrecheckLimit int  `mapstructure:"precheck_limit"` // fuzzy precheck candidate cap
	EnableTracing bool `mapstructure:"enable_tracing"` // emit debug spans per turn
}

// SuggestConfig tunes the debounced suggestion fetcher.
type SuggestConfig struct {
	Debounce time.Duration `mapstructure:"debounce"` // quiet period before issuing a query
	Limit    int           `mapstructure:"limit"`    // max suggestions per query
}

// DirectoryConfig selects and configures the entity directory backend.
type DirectoryConfig struct {
	Driver       string `mapstructure:"driver"`        // "memory" or "libsql"
	DatabasePath string `mapstructure:"database_path"` // libsql only
}

// ScreeningConfig configures the post-resolution name scan.
type ScreeningConfig struct {
	WatchlistPath string `mapstructure:"watchlist_path"`
	FuzzyLimit    int    `mapstructure:"fuzzy_limit"`
}

// ExternalConfig holds endpoints for the remote collaborators. An empty URL
// disables that collaborator; the pipeline falls back to a no-op.
type ExternalConfig struct {
	GraphParserURL string        `mapstructure:"graph_parser_url"`
	SearchURL      string        `mapstructure:"search_url"`
	EnrichmentURL  string        `mapstructure:"enrichment_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("resolver.precheck_limit", 5)
	viper.SetDefault("resolver.enable_tracing", true)

	viper.SetDefault("suggest.debounce", "200ms")
	viper.SetDefault("suggest.limit", 8)

	viper.SetDefault("directory.driver", internal.DefaultDirectoryDriver)
	viper.SetDefault("directory.database_path", internal.DefaultDatabasePath)

	viper.SetDefault("screening.watchlist_path", internal.DefaultWatchlistPath)
	viper.SetDefault("screening.fuzzy_limit", 5)

	viper.SetDefault("external.graph_parser_url", "")
	viper.SetDefault("external.search_url", "")
	viper.SetDefault("external.enrichment_url", "")
	viper.SetDefault("external.timeout", "10s")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults apply.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
