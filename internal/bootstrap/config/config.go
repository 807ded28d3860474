package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"refseeder/internal/bootstrap/logging"
	"refseeder/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Seeder    SeederConfig    `mapstructure:"seeder"`
	Search    SearchConfig    `mapstructure:"search"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// StorageConfig locates the blob area for reference image bytes.
type StorageConfig struct {
	Root string `mapstructure:"root"`
}

// SeederConfig tunes the queue worker and the shared per-image pipeline.
type SeederConfig struct {
	BatchSize         int           `mapstructure:"batch_size"`
	MaxRetries        int           `mapstructure:"max_retries"`
	BatchDelay        time.Duration `mapstructure:"batch_delay"`
	StaleAfter        time.Duration `mapstructure:"stale_after"`
	MaxItems          int           `mapstructure:"max_items"`
	MinSeedCandidates int           `mapstructure:"min_seed_candidates"`
	EmbedCooldown     time.Duration `mapstructure:"embed_cooldown"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	MinBytes          int           `mapstructure:"min_bytes"`
	MaxBytes          int           `mapstructure:"max_bytes"`
	MinDimension      int           `mapstructure:"min_dimension"`
}

// SearchConfig tunes the search-driven seeder and its image-search credential.
type SearchConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	ResultsPerQuery int           `mapstructure:"results_per_query"`
	TargetPerFamily int           `mapstructure:"target_per_family"`
	FamiliesPerRun  int           `mapstructure:"families_per_run"`
	QueryDelay      time.Duration `mapstructure:"query_delay"`
	QueryCooldown   time.Duration `mapstructure:"query_cooldown"`
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, errs.Wrap(err, "validate config")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "refseeder")
	v.SetDefault("app.env", "dev")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/refseeder.sqlite")

	v.SetDefault("storage.root", "data/images")

	v.SetDefault("seeder.batch_size", 3)
	v.SetDefault("seeder.max_retries", 3)
	v.SetDefault("seeder.batch_delay", "2s")
	v.SetDefault("seeder.stale_after", "10m")
	v.SetDefault("seeder.max_items", 0)
	v.SetDefault("seeder.min_seed_candidates", 3)
	v.SetDefault("seeder.embed_cooldown", "30s")
	v.SetDefault("seeder.download_timeout", "30s")
	v.SetDefault("seeder.min_bytes", 4096)
	v.SetDefault("seeder.max_bytes", 10*1024*1024)
	v.SetDefault("seeder.min_dimension", 200)

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "https://serpapi.com/search.json")
	v.SetDefault("search.results_per_query", 20)
	v.SetDefault("search.target_per_family", 25)
	v.SetDefault("search.families_per_run", 10)
	v.SetDefault("search.query_delay", "2s")
	v.SetDefault("search.query_cooldown", "168h")

	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.model", "clip-vit-base-patch32")
}

func validate(cfg Config) error {
	if cfg.Seeder.BatchSize < 1 {
		return errors.New("seeder.batch_size must be at least 1")
	}
	if cfg.Seeder.MaxRetries < 0 {
		return errors.New("seeder.max_retries must not be negative")
	}
	if cfg.Seeder.StaleAfter <= 0 {
		return errors.New("seeder.stale_after must be positive")
	}
	if cfg.Seeder.MinBytes < 1 || cfg.Seeder.MaxBytes <= cfg.Seeder.MinBytes {
		return errors.New("seeder byte limits must satisfy 0 < min_bytes < max_bytes")
	}
	if cfg.Seeder.MinDimension < 1 {
		return errors.New("seeder.min_dimension must be at least 1")
	}
	if cfg.Search.TargetPerFamily < 1 {
		return errors.New("search.target_per_family must be at least 1")
	}
	if cfg.Search.FamiliesPerRun < 1 {
		return errors.New("search.families_per_run must be at least 1")
	}
	return nil
}
