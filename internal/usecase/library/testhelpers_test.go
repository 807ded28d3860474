package library

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"refseeder/internal/imagemeta"
	"refseeder/internal/infrastructure/persistence/model"
	"refseeder/internal/infrastructure/persistence/repository"
	"refseeder/internal/infrastructure/persistence/uow"
	"refseeder/internal/ports"
)

// pngImage fabricates a minimal PNG header with the given dimensions,
// padded to size bytes. seed varies the padding so distinct images hash
// differently.
func pngImage(width, height uint32, size int, seed byte) []byte {
	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	data = append(data, 0, 0, 0, 13)
	data = append(data, 'I', 'H', 'D', 'R')
	data = binary.BigEndian.AppendUint32(data, width)
	data = binary.BigEndian.AppendUint32(data, height)
	for len(data) < size {
		data = append(data, seed)
	}
	return data
}

func testOptions() Options {
	return Options{
		BatchSize:         3,
		MaxRetries:        3,
		BatchDelay:        0,
		StaleAfter:        10 * time.Minute,
		MinSeedCandidates: 3,
		EmbedCooldown:     time.Millisecond,
		Limits: imagemeta.Limits{
			MinBytes:     64,
			MaxBytes:     1 << 20,
			MinDimension: 50,
		},
		ResultsPerQuery: 10,
		TargetPerFamily: 5,
		FamiliesPerRun:  10,
		QueryDelay:      0,
		QueryCooldown:   time.Hour,
	}
}

type fixture struct {
	svc      *Service
	families *repository.FamilyRepository
	queue    *repository.QueueRepository
	images   *repository.ImageRepository
	fetcher  *fakeFetcher
	blobs    *fakeBlobStore
	embedder *fakeEmbedder
	searcher *fakeSearcher
	cache    *fakeCache
}

func setupFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "library.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Family{}, &model.QueueItem{}, &model.RefImage{}, &model.SeederKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	opts := testOptions()
	if mutate != nil {
		mutate(&opts)
	}

	f := &fixture{
		families: repository.NewFamilyRepository(db),
		queue:    repository.NewQueueRepository(db),
		images:   repository.NewImageRepository(db),
		fetcher:  newFakeFetcher(),
		blobs:    newFakeBlobStore(),
		embedder: &fakeEmbedder{vector: []float32{0.1, 0.2}},
		searcher: newFakeSearcher(),
		cache:    newFakeCache(),
	}
	f.svc = NewService(
		opts,
		f.families,
		f.queue,
		f.images,
		uow.NewUnitOfWork(db),
		f.cache,
		f.blobs,
		f.fetcher,
		f.embedder,
		f.searcher,
	)
	return f
}

func (f *fixture) createFamily(t *testing.T, category, brand, name string, minRequired int) ports.FamilyRecord {
	t.Helper()
	fam, _, err := f.families.FindOrCreate(context.Background(), ports.FamilyCreate{
		Category:          category,
		Brand:             brand,
		Name:              name,
		MinImagesRequired: minRequired,
		CreatedAt:         time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		t.Fatalf("create family %s/%s: %v", brand, name, err)
	}
	return fam
}

func (f *fixture) enqueue(t *testing.T, familyID uint64, url string) {
	t.Helper()
	if _, err := f.queue.Enqueue(context.Background(), familyID, url, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		t.Fatalf("enqueue %s: %v", url, err)
	}
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	failures  map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: map[string][]byte{},
		failures:  map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeFetcher) serve(url string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = data
}

func (f *fakeFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[url] = err
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.failures[url]; ok {
		return nil, err
	}
	if data, ok := f.responses[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no response registered for %s", url)
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (b *fakeBlobStore) Put(_ context.Context, path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[path] = data
	return nil
}

func (b *fakeBlobStore) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// fakeEmbedder returns the queued errors first, then vector forever.
type fakeEmbedder struct {
	mu     sync.Mutex
	vector []float32
	errs   []error
	calls  int
}

func (e *fakeEmbedder) Embed(_ context.Context, _ []byte) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if len(e.errs) > 0 {
		err := e.errs[0]
		e.errs = e.errs[1:]
		return nil, err
	}
	return e.vector, nil
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]ports.ImageSearchResult
	err     error
	queries []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string][]ports.ImageSearchResult{}}
}

func (s *fakeSearcher) SearchImages(_ context.Context, query string, _ int) ([]ports.ImageSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

func (s *fakeSearcher) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}
