package ports

import (
	"context"
	"errors"

	"refseeder/internal/domain/library"
)

var (
	ErrQueueItemNotFound = errors.New("queue item not found")
	// ErrNotProcessing means a resolve/requeue hit an item that is not in
	// processing state, typically because another worker got there first.
	ErrNotProcessing = errors.New("queue item is not processing")
)

// QueueItemRecord is one candidate image URL queued against one family.
type QueueItemRecord struct {
	ID           uint64
	FamilyID     uint64
	SourceURL    string
	Status       library.QueueStatus
	RetryCount   int
	ErrorMessage string
	CreatedAt    string
	ClaimedAt    *string
	ProcessedAt  *string
}

type QueueRepository interface {
	// Enqueue inserts a pending item unless the (familyID, sourceURL) pair
	// already exists in any status. The bool reports whether a row was
	// inserted.
	Enqueue(ctx context.Context, familyID uint64, sourceURL string, now string) (bool, error)

	// ClaimBatch atomically claims up to limit items that are pending, or
	// processing but claimed before staleBefore (abandoned by a dead
	// worker). Oldest first. Two concurrent claimers never share an item.
	ClaimBatch(ctx context.Context, limit int, staleBefore string, now string) ([]QueueItemRecord, error)

	// Resolve moves a processing item to a terminal status and stamps
	// processed_at.
	Resolve(ctx context.Context, itemID uint64, status library.QueueStatus, errorMessage string, now string) error

	// Requeue returns a processing item to pending and increments its retry
	// count.
	Requeue(ctx context.Context, itemID uint64, errorMessage string, now string) error

	GetItem(ctx context.Context, itemID uint64) (QueueItemRecord, error)

	CountByStatus(ctx context.Context) (map[library.QueueStatus]int64, error)
}
