package library

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"refseeder/internal/bootstrap/logging"
	domainlibrary "refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// DrainInput tunes one worker run. Zero values fall back to Options.
type DrainInput struct {
	MaxItems int
}

// RunStats summarizes one queue drain.
type RunStats struct {
	Claimed       int
	Completed     int
	Failed        int
	Skipped       int
	Requeued      int
	StatusChanges int
}

type itemOutcome int

const (
	itemCompleted itemOutcome = iota
	itemFailed
	itemSkipped
	itemRequeued
)

// DrainQueue claims and processes batches until no actionable items remain
// (or the max-items cap is hit), then reconciles every family's readiness
// status. Individual item failures never abort the loop.
func (s *Service) DrainQueue(ctx context.Context, input DrainInput) (RunStats, error) {
	if ctx == nil {
		return RunStats{}, errors.New("context is required")
	}
	if s.queue == nil || s.families == nil || s.images == nil {
		return RunStats{}, errors.New("queue, family and image repositories are required")
	}

	maxItems := input.MaxItems
	if maxItems <= 0 {
		maxItems = s.opts.MaxItems
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "seeder_worker"))
	logging.Info(logCtx, "starting queue drain",
		slog.Int("batch_size", s.opts.BatchSize),
		slog.Int("max_items", maxItems))

	stats := RunStats{}
	for {
		if err := ctx.Err(); err != nil {
			return stats, errs.Wrap(err, "check context")
		}

		limit := s.opts.BatchSize
		if maxItems > 0 && maxItems-stats.Claimed < limit {
			limit = maxItems - stats.Claimed
		}
		if limit <= 0 {
			break
		}

		staleBefore := formatUTC(time.Now().Add(-s.opts.StaleAfter))
		items, err := s.queue.ClaimBatch(ctx, limit, staleBefore, nowUTCString())
		if err != nil {
			return stats, errs.Wrap(err, "claim batch")
		}
		if len(items) == 0 {
			break
		}
		stats.Claimed += len(items)

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, item := range items {
			wg.Add(1)
			go func(item ports.QueueItemRecord) {
				defer wg.Done()
				outcome := s.processQueueItem(logCtx, item)
				mu.Lock()
				switch outcome {
				case itemCompleted:
					stats.Completed++
				case itemFailed:
					stats.Failed++
				case itemSkipped:
					stats.Skipped++
				case itemRequeued:
					stats.Requeued++
				}
				mu.Unlock()
			}(item)
		}
		wg.Wait()

		if maxItems > 0 && stats.Claimed >= maxItems {
			break
		}
		sleepCtx(ctx, s.opts.BatchDelay)
	}

	changes, err := s.ReconcileFamilies(ctx)
	if err != nil {
		return stats, errs.Wrap(err, "reconcile family statuses")
	}
	stats.StatusChanges = changes

	logging.Info(logCtx, "queue drain finished",
		slog.Int("claimed", stats.Claimed),
		slog.Int("completed", stats.Completed),
		slog.Int("failed", stats.Failed),
		slog.Int("skipped", stats.Skipped),
		slog.Int("requeued", stats.Requeued),
		slog.Int("status_changes", stats.StatusChanges))

	return stats, nil
}

func (s *Service) processQueueItem(ctx context.Context, item ports.QueueItemRecord) itemOutcome {
	itemCtx := logging.WithAttrs(ctx,
		slog.Uint64("item_id", item.ID),
		slog.Uint64("family_id", item.FamilyID),
		slog.String("url", item.SourceURL))

	fam, err := s.families.GetFamily(ctx, item.FamilyID)
	if err != nil {
		if errors.Is(err, ports.ErrFamilyNotFound) {
			// Data integrity problem, never retryable.
			s.resolve(itemCtx, item.ID, domainlibrary.QueueFailed, "family not found")
			return itemFailed
		}
		return s.failOrRequeue(itemCtx, item, err)
	}

	result, err := s.ingestImage(ctx, fam, item.SourceURL, domainlibrary.SourceSeed)
	if err != nil {
		return s.failOrRequeue(itemCtx, item, err)
	}

	switch result.Outcome {
	case outcomeDuplicate:
		s.resolve(itemCtx, item.ID, domainlibrary.QueueSkipped, result.Reason)
		return itemSkipped
	case outcomeRejected:
		s.resolve(itemCtx, item.ID, domainlibrary.QueueFailed, truncateMessage(result.Reason))
		return itemFailed
	default:
		s.resolve(itemCtx, item.ID, domainlibrary.QueueCompleted, "")
		logging.Info(itemCtx, "image stored",
			slog.String("sha256", result.Image.SHA256),
			slog.Bool("embedded", len(result.Image.Embedding) > 0))
		return itemCompleted
	}
}

// failOrRequeue applies the retry policy: transient errors requeue while
// retries remain, everything else resolves failed.
func (s *Service) failOrRequeue(ctx context.Context, item ports.QueueItemRecord, cause error) itemOutcome {
	message := truncateMessage(cause.Error())

	if domainlibrary.Retryable(cause) && item.RetryCount < s.opts.MaxRetries {
		if err := s.queue.Requeue(ctx, item.ID, message, nowUTCString()); err != nil {
			logging.Warn(ctx, "requeue failed", slog.Any("err", errs.Loggable(err)))
			return itemFailed
		}
		logging.Warn(ctx, "item requeued after transient error",
			slog.Int("retry_count", item.RetryCount+1),
			slog.String("cause", message))
		return itemRequeued
	}

	s.resolve(ctx, item.ID, domainlibrary.QueueFailed, message)
	return itemFailed
}

func (s *Service) resolve(ctx context.Context, itemID uint64, status domainlibrary.QueueStatus, message string) {
	if err := s.queue.Resolve(ctx, itemID, status, message, nowUTCString()); err != nil {
		// Losing a resolve race to a reclaiming worker is survivable; the
		// content-hash constraint prevents double storage.
		logging.Warn(ctx, "resolve failed",
			slog.String("status", string(status)),
			slog.Any("err", errs.Loggable(err)))
	}
}

// ReconcileFamilies recomputes every family's readiness from its stored
// image count. Locked families are never touched. Returns how many statuses
// changed.
func (s *Service) ReconcileFamilies(ctx context.Context) (int, error) {
	families, err := s.families.ListFamilies(ctx, "")
	if err != nil {
		return 0, errs.Wrap(err, "list families")
	}

	changes := 0
	for _, fam := range families {
		count, err := s.images.CountByFamily(ctx, fam.ID)
		if err != nil {
			return changes, errs.Wrapf(err, "count images for family %d", fam.ID)
		}

		next := domainlibrary.NextFamilyStatus(fam.Status, count, fam.MinImagesRequired)
		if next == fam.Status {
			continue
		}

		if err := s.families.UpdateStatus(ctx, fam.ID, next, nowUTCString()); err != nil {
			return changes, errs.Wrapf(err, "update status for family %d", fam.ID)
		}
		changes++
		logging.Info(ctx, "family status changed",
			slog.Uint64("family_id", fam.ID),
			slog.String("from", string(fam.Status)),
			slog.String("to", string(next)),
			slog.Int64("image_count", count))
	}

	return changes, nil
}
