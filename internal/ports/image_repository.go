package ports

import (
	"context"
	"errors"

	"refseeder/internal/domain/library"
)

// ErrDuplicateImage reports an insert that lost to the sha256 unique
// constraint. The pre-insert hash check makes this rare, not impossible.
var ErrDuplicateImage = errors.New("image content already stored")

// RefImageRecord is one accepted, deduplicated reference image.
type RefImageRecord struct {
	ID           string
	FamilyID     uint64
	SHA256       string
	StoragePath  string
	OriginalURL  string
	FileSize     int64
	Width        int
	Height       int
	ContentType  string
	Embedding    []float32
	Source       library.ImageSource
	QualityScore *float64
	CreatedAt    string
}

type ImageRepository interface {
	// Insert stores a new image row. Returns ErrDuplicateImage when the
	// sha256 already exists.
	Insert(ctx context.Context, record RefImageRecord) error

	ExistsBySHA256(ctx context.Context, sha256 string) (bool, error)

	CountByFamily(ctx context.Context, familyID uint64) (int64, error)

	CountAll(ctx context.Context) (int64, error)
}
