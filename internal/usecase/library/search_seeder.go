package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"refseeder/internal/bootstrap/logging"
	domainlibrary "refseeder/internal/domain/library"
	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// CategoryRunResult reports one category's search-driven run. Err is set
// only for category-fatal problems (missing credential); per-image trouble
// lands in Errors and never aborts the category.
type CategoryRunResult struct {
	Category          string
	FamiliesProcessed int
	ImagesAdded       int
	Errors            []string
	Err               error
}

type SearchRunResult struct {
	Categories        []CategoryRunResult
	FamiliesProcessed int
	ImagesAdded       int
}

// RunSearchSeeder fills underfilled families straight from image search,
// bypassing the queue. Each category runs independently: a failed category
// never affects its siblings.
func (s *Service) RunSearchSeeder(ctx context.Context, categories []CategoryConfig) (SearchRunResult, error) {
	if ctx == nil {
		return SearchRunResult{}, errors.New("context is required")
	}
	if s.searcher == nil {
		return SearchRunResult{}, errors.New("image searcher is required")
	}

	result := SearchRunResult{}
	for _, cat := range categories {
		catResult := s.seedCategory(ctx, cat)
		result.Categories = append(result.Categories, catResult)
		result.FamiliesProcessed += catResult.FamiliesProcessed
		result.ImagesAdded += catResult.ImagesAdded
	}

	if _, err := s.ReconcileFamilies(ctx); err != nil {
		return result, errs.Wrap(err, "reconcile family statuses")
	}
	return result, nil
}

func (s *Service) seedCategory(ctx context.Context, cat CategoryConfig) CategoryRunResult {
	result := CategoryRunResult{Category: cat.Name()}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "search_seeder"),
		slog.String("category", cat.Name()))

	target := cat.TargetPerFamily()
	if target <= 0 {
		target = s.opts.TargetPerFamily
	}

	families, err := s.families.ListFamilies(ctx, cat.Name())
	if err != nil {
		result.Err = errs.Wrapf(err, "list families for category %s", cat.Name())
		return result
	}

	type underfilled struct {
		fam   ports.FamilyRecord
		count int64
	}

	selected := make([]underfilled, 0, s.opts.FamiliesPerRun)
	for _, fam := range families {
		if len(selected) >= s.opts.FamiliesPerRun {
			break
		}
		count, err := s.images.CountByFamily(ctx, fam.ID)
		if err != nil {
			result.Err = errs.Wrapf(err, "count images for family %d", fam.ID)
			return result
		}
		if count < int64(target) {
			selected = append(selected, underfilled{fam: fam, count: count})
		}
	}

	logging.Info(logCtx, "search seeding category",
		slog.Int("underfilled_selected", len(selected)),
		slog.Int("target_per_family", target))

	for _, entry := range selected {
		added, itemErrors, fatal := s.seedFamilyFromSearch(logCtx, cat, entry.fam, target, entry.count)
		result.FamiliesProcessed++
		result.ImagesAdded += added
		result.Errors = append(result.Errors, itemErrors...)
		if fatal != nil {
			result.Err = fatal
			return result
		}
	}

	return result
}

// seedFamilyFromSearch streams search candidates through the shared
// pipeline until the family's target is met or candidates run out.
func (s *Service) seedFamilyFromSearch(ctx context.Context, cat CategoryConfig, fam ports.FamilyRecord, target int, have int64) (int, []string, error) {
	famCtx := logging.WithAttrs(ctx,
		slog.Uint64("family_id", fam.ID),
		slog.String("family", fam.DisplayName))

	needed := target - int(have)
	added := 0
	var itemErrors []string

	for _, query := range cat.BuildSearchQueries(fam.Brand, fam.Name) {
		if needed <= 0 {
			break
		}
		if s.recentlyQueried(ctx, cat.Name(), query) {
			logging.Info(famCtx, "skipping recently spent query", slog.String("query", query))
			continue
		}

		results, err := s.searcher.SearchImages(ctx, query, s.opts.ResultsPerQuery)
		if err != nil {
			if errors.Is(err, ports.ErrSearchNotConfigured) {
				return added, itemErrors, err
			}
			itemErrors = append(itemErrors, fmt.Sprintf("search %q: %s", query, truncateMessage(err.Error())))
			continue
		}
		s.markQueried(ctx, cat.Name(), query)

		logging.Info(famCtx, "search returned candidates",
			slog.String("query", query),
			slog.Int("results", len(results)))

		for _, candidate := range results {
			if needed <= 0 {
				break
			}
			url := candidate.OriginalURL
			if url == "" {
				url = candidate.ThumbnailURL
			}

			ingest, err := s.ingestImage(ctx, fam, url, domainlibrary.SourceSerpAPI)
			if err != nil {
				itemErrors = append(itemErrors, fmt.Sprintf("%s: %s", url, truncateMessage(err.Error())))
				continue
			}
			if ingest.Outcome != outcomeStored {
				continue
			}
			added++
			needed--
		}

		// Politeness toward the search API between queries.
		sleepCtx(ctx, s.opts.QueryDelay)
	}

	logging.Info(famCtx, "family search seeding finished",
		slog.Int("added", added),
		slog.Int("errors", len(itemErrors)))

	return added, itemErrors, nil
}

func searchQueryKey(category, query string) string {
	return "serp_query:" + category + ":" + query
}

// recentlyQueried consults the KV cache so repeated runs do not respend the
// same search quota inside the cooldown window. Best effort only.
func (s *Service) recentlyQueried(ctx context.Context, category, query string) bool {
	if s.cache == nil || s.opts.QueryCooldown <= 0 {
		return false
	}

	value, ok, err := s.cache.Get(ctx, searchQueryKey(category, query))
	if err != nil || !ok {
		return false
	}

	spent, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return false
	}
	return time.Since(spent) < s.opts.QueryCooldown
}

func (s *Service) markQueried(ctx context.Context, category, query string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, searchQueryKey(category, query), nowUTCString(), s.opts.QueryCooldown)
}
