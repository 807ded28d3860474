package library

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"refseeder/internal/bootstrap/logging"
	domainlibrary "refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/imagemeta"
	"refseeder/internal/ports"
)

type ingestOutcome int

const (
	outcomeStored ingestOutcome = iota
	outcomeDuplicate
	outcomeRejected
)

type ingestResult struct {
	Outcome ingestOutcome
	// Reason explains a duplicate or rejection; empty for stored images.
	Reason string
	Image  ports.RefImageRecord
}

// ingestImage runs the shared per-image pipeline used by both ingestion
// paths: download, validate, hash-dedup, blob write, best-effort embedding,
// catalog insert. Validation failures and duplicates are reported as
// outcomes, not errors; a returned error is a download/storage problem whose
// retryability the caller classifies.
func (s *Service) ingestImage(ctx context.Context, fam ports.FamilyRecord, sourceURL string, source domainlibrary.ImageSource) (ingestResult, error) {
	data, err := s.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return ingestResult{}, errs.Wrap(err, "download image")
	}

	info, err := imagemeta.Validate(data, s.opts.Limits)
	if err != nil {
		return ingestResult{Outcome: outcomeRejected, Reason: err.Error()}, nil
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	exists, err := s.images.ExistsBySHA256(ctx, contentHash)
	if err != nil {
		return ingestResult{}, errs.Wrap(err, "check content hash")
	}
	if exists {
		return ingestResult{Outcome: outcomeDuplicate, Reason: "duplicate content hash"}, nil
	}

	storagePath := domainlibrary.ImagePath(fam.Category, fam.Brand, fam.ID, contentHash, info.ContentType)
	if err := s.blobs.Put(ctx, storagePath, data); err != nil {
		return ingestResult{}, errs.Wrap(err, "store image bytes")
	}

	record := ports.RefImageRecord{
		ID:          uuid.NewString(),
		FamilyID:    fam.ID,
		SHA256:      contentHash,
		StoragePath: storagePath,
		OriginalURL: sourceURL,
		FileSize:    int64(len(data)),
		Width:       info.Width,
		Height:      info.Height,
		ContentType: info.ContentType,
		Embedding:   s.embedBestEffort(ctx, data, sourceURL),
		Source:      source,
		CreatedAt:   nowUTCString(),
	}

	if err := s.images.Insert(ctx, record); err != nil {
		if errors.Is(err, ports.ErrDuplicateImage) {
			// Two pipelines raced on the same bytes; the constraint is the
			// authoritative guard and losing is not a failure.
			return ingestResult{Outcome: outcomeDuplicate, Reason: "duplicate content hash (insert race)"}, nil
		}
		return ingestResult{}, errs.Wrap(err, "insert image row")
	}

	return ingestResult{Outcome: outcomeStored, Image: record}, nil
}

// embedBestEffort returns nil when no vector could be produced. A rate
// limit gets one long cooldown and a single retry; any other failure means
// the image is stored without a vector. Having the reference image matters
// more than having it searchable.
func (s *Service) embedBestEffort(ctx context.Context, data []byte, sourceURL string) []float32 {
	if s.embedder == nil {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, data)
	if err == nil {
		return vector
	}

	if errors.Is(err, domainlibrary.ErrRateLimited) {
		logging.Warn(ctx, "embedding rate limited, cooling down",
			slog.String("url", sourceURL),
			slog.Duration("cooldown", s.opts.EmbedCooldown))
		sleepCtx(ctx, s.opts.EmbedCooldown)

		vector, err = s.embedder.Embed(ctx, data)
		if err == nil {
			return vector
		}
	}

	logging.Warn(ctx, "storing image without embedding",
		slog.String("url", sourceURL),
		slog.Any("err", errs.Loggable(err)))
	return nil
}
