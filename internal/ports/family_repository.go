package ports

import (
	"context"
	"errors"

	"refseeder/internal/domain/library"
)

var ErrFamilyNotFound = errors.New("family not found")

// FamilyRecord is one product family (a brand+model grouping in a category).
type FamilyRecord struct {
	ID                uint64
	Category          string
	Brand             string
	Name              string
	DisplayName       string
	MinImagesRequired int
	Status            library.FamilyStatus
	AttributesJSON    string
	CreatedAt         string
	UpdatedAt         string
}

// FamilyCreate carries the identity and defaults for find-or-create.
type FamilyCreate struct {
	Category          string
	Brand             string
	Name              string
	DisplayName       string
	MinImagesRequired int
	AttributesJSON    string
	CreatedAt         string
}

type FamilyRepository interface {
	// FindOrCreate matches on (category, brand, name); the bool reports
	// whether a new row was created.
	FindOrCreate(ctx context.Context, create FamilyCreate) (FamilyRecord, bool, error)

	GetFamily(ctx context.Context, familyID uint64) (FamilyRecord, error)

	// ListFamilies returns all families, optionally filtered by category.
	ListFamilies(ctx context.Context, category string) ([]FamilyRecord, error)

	// UpdateStatus is used only by post-run reconciliation.
	UpdateStatus(ctx context.Context, familyID uint64, status library.FamilyStatus, now string) error
}
