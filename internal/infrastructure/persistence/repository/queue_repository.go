package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/infrastructure/persistence/model"
	"refseeder/internal/ports"
)

type QueueRepository struct {
	db *gorm.DB
}

var _ ports.QueueRepository = (*QueueRepository)(nil)

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func (r *QueueRepository) Enqueue(ctx context.Context, familyID uint64, sourceURL string, now string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	sourceURL = strings.TrimSpace(sourceURL)
	if familyID == 0 || sourceURL == "" {
		return false, errors.New("family id and source url are required")
	}

	row := model.QueueItem{
		FamilyID:  familyID,
		SourceURL: sourceURL,
		Status:    string(library.QueuePending),
		CreatedAt: now,
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, errs.Wrap(res.Error, "enqueue item")
	}
	return res.RowsAffected > 0, nil
}

// ClaimBatch selects candidates oldest-first, then claims each one with a
// single conditional update keyed on the previously observed state. A lost
// race just means that candidate is skipped.
func (r *QueueRepository) ClaimBatch(ctx context.Context, limit int, staleBefore string, now string) ([]ports.QueueItemRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, errors.New("claim limit must be at least 1")
	}

	var candidates []model.QueueItem
	if err := db.
		Where("status = ? OR (status = ? AND claimed_at < ?)",
			string(library.QueuePending), string(library.QueueProcessing), staleBefore).
		Order("created_at asc, id asc").
		Limit(limit).
		Find(&candidates).Error; err != nil {
		return nil, errs.Wrap(err, "query claim candidates")
	}

	claimed := make([]ports.QueueItemRecord, 0, len(candidates))
	for _, candidate := range candidates {
		guard := db.Model(&model.QueueItem{}).
			Where("id = ? AND status = ?", candidate.ID, candidate.Status)
		if candidate.Status == string(library.QueueProcessing) {
			// Reclaiming a stale item: guard on its old claim stamp so two
			// reclaimers cannot both win.
			guard = guard.Where("claimed_at = ?", candidate.ClaimedAt)
		}

		res := guard.Updates(map[string]any{
			"status":     string(library.QueueProcessing),
			"claimed_at": now,
		})
		if res.Error != nil {
			return nil, errs.Wrap(res.Error, "claim queue item")
		}
		if res.RowsAffected == 0 {
			continue
		}

		candidate.Status = string(library.QueueProcessing)
		claimedAt := now
		candidate.ClaimedAt = &claimedAt
		claimed = append(claimed, mapQueueItem(candidate))
	}

	return claimed, nil
}

func (r *QueueRepository) Resolve(ctx context.Context, itemID uint64, status library.QueueStatus, errorMessage string, now string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}
	if !library.ResolvableTo(status) {
		return fmt.Errorf("status %q is not a terminal outcome", status)
	}

	res := db.Model(&model.QueueItem{}).
		Where("id = ? AND status = ?", itemID, string(library.QueueProcessing)).
		Updates(map[string]any{
			"status":        string(status),
			"error_message": errorMessage,
			"processed_at":  now,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "resolve queue item")
	}
	if res.RowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, itemID)
	}
	return nil
}

func (r *QueueRepository) Requeue(ctx context.Context, itemID uint64, errorMessage string, now string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.QueueItem{}).
		Where("id = ? AND status = ?", itemID, string(library.QueueProcessing)).
		Updates(map[string]any{
			"status":        string(library.QueuePending),
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": errorMessage,
			"claimed_at":    nil,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "requeue item")
	}
	if res.RowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, itemID)
	}
	return nil
}

func (r *QueueRepository) GetItem(ctx context.Context, itemID uint64) (ports.QueueItemRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.QueueItemRecord{}, err
	}

	var row model.QueueItem
	if err := db.Where("id = ?", itemID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.QueueItemRecord{}, ports.ErrQueueItemNotFound
		}
		return ports.QueueItemRecord{}, errs.Wrap(err, "query queue item")
	}
	return mapQueueItem(row), nil
}

func (r *QueueRepository) CountByStatus(ctx context.Context) (map[library.QueueStatus]int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Total  int64
	}

	var rows []statusCount
	if err := db.Model(&model.QueueItem{}).
		Select("status, count(*) as total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "count queue items by status")
	}

	counts := make(map[library.QueueStatus]int64, len(rows))
	for _, row := range rows {
		counts[library.QueueStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func (r *QueueRepository) classifyMissedUpdate(ctx context.Context, itemID uint64) error {
	if _, err := r.GetItem(ctx, itemID); err != nil {
		return err
	}
	return ports.ErrNotProcessing
}

func mapQueueItem(row model.QueueItem) ports.QueueItemRecord {
	return ports.QueueItemRecord{
		ID:           row.ID,
		FamilyID:     row.FamilyID,
		SourceURL:    row.SourceURL,
		Status:       library.QueueStatus(row.Status),
		RetryCount:   row.RetryCount,
		ErrorMessage: row.ErrorMessage,
		CreatedAt:    row.CreatedAt,
		ClaimedAt:    row.ClaimedAt,
		ProcessedAt:  row.ProcessedAt,
	}
}
