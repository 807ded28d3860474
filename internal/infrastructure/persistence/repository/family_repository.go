package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/infrastructure/persistence/model"
	"refseeder/internal/ports"
)

// DefaultMinImagesRequired applies when a family is created without an
// explicit threshold.
const DefaultMinImagesRequired = 15

type FamilyRepository struct {
	db *gorm.DB
}

var _ ports.FamilyRepository = (*FamilyRepository)(nil)

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) FindOrCreate(ctx context.Context, create ports.FamilyCreate) (ports.FamilyRecord, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.FamilyRecord{}, false, err
	}

	category := strings.TrimSpace(create.Category)
	brand := strings.TrimSpace(create.Brand)
	name := strings.TrimSpace(create.Name)
	if category == "" || brand == "" || name == "" {
		return ports.FamilyRecord{}, false, errors.New("category, brand and name are required")
	}

	var row model.Family
	findErr := db.Where("category = ? AND brand = ? AND name = ?", category, brand, name).Take(&row).Error
	if findErr == nil {
		return mapFamily(row), false, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return ports.FamilyRecord{}, false, errs.Wrap(findErr, "query family")
	}

	minRequired := create.MinImagesRequired
	if minRequired <= 0 {
		minRequired = DefaultMinImagesRequired
	}
	displayName := strings.TrimSpace(create.DisplayName)
	if displayName == "" {
		displayName = brand + " " + name
	}

	row = model.Family{
		Category:          category,
		Brand:             brand,
		Name:              name,
		DisplayName:       displayName,
		MinImagesRequired: minRequired,
		Status:            string(library.FamilyBuilding),
		AttributesJSON:    create.AttributesJSON,
		CreatedAt:         create.CreatedAt,
		UpdatedAt:         create.CreatedAt,
	}

	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return ports.FamilyRecord{}, false, errs.Wrap(res.Error, "create family")
	}
	if res.RowsAffected == 0 {
		// Lost a create race; the row exists now.
		if err := db.Where("category = ? AND brand = ? AND name = ?", category, brand, name).Take(&row).Error; err != nil {
			return ports.FamilyRecord{}, false, errs.Wrap(err, "re-query family after conflict")
		}
		return mapFamily(row), false, nil
	}

	return mapFamily(row), true, nil
}

func (r *FamilyRepository) GetFamily(ctx context.Context, familyID uint64) (ports.FamilyRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.FamilyRecord{}, err
	}

	var row model.Family
	if err := db.Where("id = ?", familyID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.FamilyRecord{}, ports.ErrFamilyNotFound
		}
		return ports.FamilyRecord{}, errs.Wrap(err, "query family by id")
	}
	return mapFamily(row), nil
}

func (r *FamilyRepository) ListFamilies(ctx context.Context, category string) ([]ports.FamilyRecord, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Family{})
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}

	var rows []model.Family
	if err := query.Order("category asc, brand asc, name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query families")
	}

	records := make([]ports.FamilyRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapFamily(row))
	}
	return records, nil
}

func (r *FamilyRepository) UpdateStatus(ctx context.Context, familyID uint64, status library.FamilyStatus, now string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.Family{}).
		Where("id = ?", familyID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": now,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update family status")
	}
	if res.RowsAffected == 0 {
		return ports.ErrFamilyNotFound
	}
	return nil
}

func mapFamily(row model.Family) ports.FamilyRecord {
	return ports.FamilyRecord{
		ID:                row.ID,
		Category:          row.Category,
		Brand:             row.Brand,
		Name:              row.Name,
		DisplayName:       row.DisplayName,
		MinImagesRequired: row.MinImagesRequired,
		Status:            library.FamilyStatus(row.Status),
		AttributesJSON:    row.AttributesJSON,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
