// Package library holds the ingestion usecases that populate the per-family
// reference image library: the seed-file loader, the queue-draining worker,
// the search-driven seeder and the readiness report.
package library

import (
	"time"

	"refseeder/internal/imagemeta"
	"refseeder/internal/ports"
)

// Options is the runtime tuning for the seeder usecases, mapped from the
// seeder/search config sections at bootstrap.
type Options struct {
	BatchSize         int
	MaxRetries        int
	BatchDelay        time.Duration
	StaleAfter        time.Duration
	MaxItems          int
	MinSeedCandidates int
	EmbedCooldown     time.Duration
	Limits            imagemeta.Limits

	ResultsPerQuery int
	TargetPerFamily int
	FamiliesPerRun  int
	QueryDelay      time.Duration
	QueryCooldown   time.Duration
}

type Service struct {
	opts     Options
	families ports.FamilyRepository
	queue    ports.QueueRepository
	images   ports.ImageRepository
	uow      ports.UnitOfWork
	cache    ports.Cache
	blobs    ports.BlobStore
	fetcher  ports.Fetcher
	embedder ports.Embedder
	searcher ports.ImageSearcher
}

// NewService wires the seeder usecases with injected collaborators. No
// ambient singletons: tests substitute fakes for any port.
func NewService(
	opts Options,
	families ports.FamilyRepository,
	queue ports.QueueRepository,
	images ports.ImageRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	blobs ports.BlobStore,
	fetcher ports.Fetcher,
	embedder ports.Embedder,
	searcher ports.ImageSearcher,
) *Service {
	return &Service{
		opts:     opts,
		families: families,
		queue:    queue,
		images:   images,
		uow:      uow,
		cache:    cache,
		blobs:    blobs,
		fetcher:  fetcher,
		embedder: embedder,
		searcher: searcher,
	}
}
