package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"refseeder/internal/bootstrap/config"
	"refseeder/internal/bootstrap/database"
	"refseeder/internal/bootstrap/logging"
	"refseeder/internal/imagemeta"
	"refseeder/internal/infrastructure/blob"
	cacheinfra "refseeder/internal/infrastructure/cache"
	"refseeder/internal/infrastructure/download"
	"refseeder/internal/infrastructure/embedding"
	"refseeder/internal/infrastructure/persistence/repository"
	"refseeder/internal/infrastructure/persistence/uow"
	"refseeder/internal/infrastructure/search"
	"refseeder/internal/ports"
	uselibrary "refseeder/internal/usecase/library"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			repository.NewFamilyRepository,
			fx.As(new(ports.FamilyRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewQueueRepository,
			fx.As(new(ports.QueueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewImageRepository,
			fx.As(new(ports.ImageRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			uow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewDBCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideBlobStore),
	fx.Provide(provideFetcher),
	fx.Provide(provideEmbedder),
	fx.Provide(provideSearcher),
	fx.Provide(provideService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideBlobStore(cfg config.Config) (ports.BlobStore, error) {
	return blob.NewFSStore(cfg.Storage.Root)
}

func provideFetcher(cfg config.Config) ports.Fetcher {
	return download.NewHTTPFetcher(cfg.Seeder.DownloadTimeout, int64(cfg.Seeder.MaxBytes))
}

func provideEmbedder(cfg config.Config) ports.Embedder {
	return embedding.NewClient(embedding.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
}

func provideSearcher(cfg config.Config) ports.ImageSearcher {
	return search.NewSerpAPIClient(cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Seeder.DownloadTimeout)
}

func provideService(
	cfg config.Config,
	families ports.FamilyRepository,
	queue ports.QueueRepository,
	images ports.ImageRepository,
	unit ports.UnitOfWork,
	cache ports.Cache,
	blobs ports.BlobStore,
	fetcher ports.Fetcher,
	embedder ports.Embedder,
	searcher ports.ImageSearcher,
) *uselibrary.Service {
	opts := uselibrary.Options{
		BatchSize:         cfg.Seeder.BatchSize,
		MaxRetries:        cfg.Seeder.MaxRetries,
		BatchDelay:        cfg.Seeder.BatchDelay,
		StaleAfter:        cfg.Seeder.StaleAfter,
		MaxItems:          cfg.Seeder.MaxItems,
		MinSeedCandidates: cfg.Seeder.MinSeedCandidates,
		EmbedCooldown:     cfg.Seeder.EmbedCooldown,
		Limits: imagemeta.Limits{
			MinBytes:     cfg.Seeder.MinBytes,
			MaxBytes:     cfg.Seeder.MaxBytes,
			MinDimension: cfg.Seeder.MinDimension,
		},
		ResultsPerQuery: cfg.Search.ResultsPerQuery,
		TargetPerFamily: cfg.Search.TargetPerFamily,
		FamiliesPerRun:  cfg.Search.FamiliesPerRun,
		QueryDelay:      cfg.Search.QueryDelay,
		QueryCooldown:   cfg.Search.QueryCooldown,
	}

	return uselibrary.NewService(opts, families, queue, images, unit, cache, blobs, fetcher, embedder, searcher)
}
