package ports

import (
	"context"
	"errors"
)

// BlobStore persists validated image bytes under a deterministic path.
// Put must be idempotent on identical path+bytes.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) error
}

// Fetcher downloads raw bytes from a source URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Embedder converts image bytes to a fixed-length vector. Rate-limited
// responses satisfy errors.Is(err, library.ErrRateLimited).
type Embedder interface {
	Embed(ctx context.Context, data []byte) ([]float32, error)
}

// ErrSearchNotConfigured means the image-search credential is missing. The
// affected category run aborts with a structured error; siblings continue.
var ErrSearchNotConfigured = errors.New("image search api key not configured")

// ImageSearchResult is one candidate from the image-search API.
type ImageSearchResult struct {
	OriginalURL  string
	ThumbnailURL string
	Title        string
}

type ImageSearcher interface {
	SearchImages(ctx context.Context, query string, limit int) ([]ImageSearchResult, error)
}
