package library

import (
	"context"
	"errors"

	domainlibrary "refseeder/internal/domain/library"
	"refseeder/internal/errs"
)

// FamilyReportRow is one family's standing in the readiness report.
type FamilyReportRow struct {
	FamilyID          uint64
	Category          string
	DisplayName       string
	Status            domainlibrary.FamilyStatus
	ImageCount        int64
	MinImagesRequired int
}

// Report aggregates family registry and ingest queue state.
type Report struct {
	TotalFamilies      int
	TotalImages        int64
	MinImagesPerFamily int64
	MaxImagesPerFamily int64
	AvgImagesPerFamily float64
	ReadyOrLocked      int
	Underfilled        []FamilyReportRow
	QueueCounts        map[domainlibrary.QueueStatus]int64
	LibraryReady       bool
}

// BuildReport computes the readiness report. "Library ready" means at least
// one family exists and none is below its own threshold (locked families
// count as pinned-ready whatever their count).
func (s *Service) BuildReport(ctx context.Context) (Report, error) {
	if ctx == nil {
		return Report{}, errors.New("context is required")
	}

	families, err := s.families.ListFamilies(ctx, "")
	if err != nil {
		return Report{}, errs.Wrap(err, "list families")
	}

	report := Report{TotalFamilies: len(families)}

	for i, fam := range families {
		count, err := s.images.CountByFamily(ctx, fam.ID)
		if err != nil {
			return Report{}, errs.Wrapf(err, "count images for family %d", fam.ID)
		}

		report.TotalImages += count
		if i == 0 || count < report.MinImagesPerFamily {
			report.MinImagesPerFamily = count
		}
		if count > report.MaxImagesPerFamily {
			report.MaxImagesPerFamily = count
		}

		if fam.Status == domainlibrary.FamilyReady || fam.Status == domainlibrary.FamilyLocked {
			report.ReadyOrLocked++
		}

		if fam.Status != domainlibrary.FamilyLocked && count < int64(fam.MinImagesRequired) {
			report.Underfilled = append(report.Underfilled, FamilyReportRow{
				FamilyID:          fam.ID,
				Category:          fam.Category,
				DisplayName:       fam.DisplayName,
				Status:            fam.Status,
				ImageCount:        count,
				MinImagesRequired: fam.MinImagesRequired,
			})
		}
	}

	if report.TotalFamilies > 0 {
		report.AvgImagesPerFamily = float64(report.TotalImages) / float64(report.TotalFamilies)
	}

	counts, err := s.queue.CountByStatus(ctx)
	if err != nil {
		return Report{}, errs.Wrap(err, "count queue items")
	}
	report.QueueCounts = counts

	report.LibraryReady = report.TotalFamilies > 0 && len(report.Underfilled) == 0
	return report, nil
}
