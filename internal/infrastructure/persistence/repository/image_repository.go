package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"refseeder/internal/errs"
	"refseeder/internal/infrastructure/persistence/model"
	"refseeder/internal/ports"
)

type ImageRepository struct {
	db *gorm.DB
}

var _ ports.ImageRepository = (*ImageRepository)(nil)

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Insert(ctx context.Context, record ports.RefImageRecord) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if strings.TrimSpace(record.ID) == "" {
		return errors.New("image id is required")
	}
	if strings.TrimSpace(record.SHA256) == "" {
		return errors.New("image sha256 is required")
	}

	row := model.RefImage{
		ID:           record.ID,
		FamilyID:     record.FamilyID,
		SHA256:       record.SHA256,
		StoragePath:  record.StoragePath,
		OriginalURL:  record.OriginalURL,
		FileSize:     record.FileSize,
		Width:        record.Width,
		Height:       record.Height,
		ContentType:  record.ContentType,
		Source:       string(record.Source),
		QualityScore: record.QualityScore,
		CreatedAt:    record.CreatedAt,
	}

	if len(record.Embedding) > 0 {
		encoded, err := json.Marshal(record.Embedding)
		if err != nil {
			return errs.Wrap(err, "encode embedding")
		}
		value := string(encoded)
		row.EmbeddingJSON = &value
	}

	if err := db.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateImage
		}
		return errs.Wrap(err, "insert ref image")
	}
	return nil
}

func (r *ImageRepository) ExistsBySHA256(ctx context.Context, sha256 string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.RefImage{}).Where("sha256 = ?", sha256).Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count images by sha256")
	}
	return count > 0, nil
}

func (r *ImageRepository) CountByFamily(ctx context.Context, familyID uint64) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.RefImage{}).Where("family_id = ?", familyID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count images by family")
	}
	return count, nil
}

func (r *ImageRepository) CountAll(ctx context.Context) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.RefImage{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count images")
	}
	return count, nil
}

// DecodeEmbedding restores the serialized vector from a stored row. Kept
// here so readers of the catalog share one decoding path.
func DecodeEmbedding(encoded *string) ([]float32, error) {
	if encoded == nil || *encoded == "" {
		return nil, nil
	}
	var vector []float32
	if err := json.Unmarshal([]byte(*encoded), &vector); err != nil {
		return nil, errs.Wrap(err, "decode embedding")
	}
	return vector, nil
}
