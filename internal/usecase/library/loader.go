package library

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"refseeder/internal/bootstrap/logging"
	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// SeedManifest is the static seed file format: one entry per product family
// with its candidate image URLs.
type SeedManifest struct {
	Families []SeedFamily `json:"families"`
}

type SeedFamily struct {
	Brand       string         `json:"brand"`
	ModelFamily string         `json:"modelFamily"`
	DisplayName string         `json:"displayName"`
	Attributes  map[string]any `json:"attributes"`
	Images      []string       `json:"images"`
}

type LoadInput struct {
	ManifestPath string
	Category     string
}

type LoadResult struct {
	FamiliesSeen    int
	FamiliesSkipped int
	FamiliesCreated int
	NewlyQueued     int
	AlreadyQueued   int
}

// LoadSeedFile populates the ingest queue from a seed manifest. Re-running
// the loader on the same manifest is idempotent: existing (family, url)
// pairs are never queued twice.
func (s *Service) LoadSeedFile(ctx context.Context, input LoadInput) (LoadResult, error) {
	if ctx == nil {
		return LoadResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return LoadResult{}, errs.Wrap(err, "check context")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return LoadResult{}, errors.New("category is required")
	}

	raw, err := os.ReadFile(input.ManifestPath)
	if err != nil {
		return LoadResult{}, errs.Wrapf(err, "read seed manifest %q", input.ManifestPath)
	}

	var manifest SeedManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return LoadResult{}, errs.Wrap(err, "parse seed manifest")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "seed_loader"), slog.String("category", category))

	result := LoadResult{}
	for _, entry := range manifest.Families {
		result.FamiliesSeen++

		urls := dedupURLs(entry.Images)
		if len(urls) < s.opts.MinSeedCandidates {
			result.FamiliesSkipped++
			logging.Warn(logCtx, "skipping family with too few candidate urls",
				slog.String("brand", entry.Brand),
				slog.String("family", entry.ModelFamily),
				slog.Int("candidates", len(urls)))
			continue
		}

		if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
			attributesJSON := ""
			if len(entry.Attributes) > 0 {
				encoded, err := json.Marshal(entry.Attributes)
				if err != nil {
					return errs.Wrap(err, "encode family attributes")
				}
				attributesJSON = string(encoded)
			}

			fam, created, err := s.families.FindOrCreate(txCtx, ports.FamilyCreate{
				Category:       category,
				Brand:          entry.Brand,
				Name:           entry.ModelFamily,
				DisplayName:    entry.DisplayName,
				AttributesJSON: attributesJSON,
				CreatedAt:      nowUTCString(),
			})
			if err != nil {
				return err
			}
			if created {
				result.FamiliesCreated++
			}

			for _, url := range urls {
				inserted, err := s.queue.Enqueue(txCtx, fam.ID, url, nowUTCString())
				if err != nil {
					return err
				}
				if inserted {
					result.NewlyQueued++
				} else {
					result.AlreadyQueued++
				}
			}
			return nil
		}); err != nil {
			return result, errs.Wrapf(err, "load family %s %s", entry.Brand, entry.ModelFamily)
		}
	}

	logging.Info(logCtx, "seed manifest loaded",
		slog.Int("families_seen", result.FamiliesSeen),
		slog.Int("families_skipped", result.FamiliesSkipped),
		slog.Int("families_created", result.FamiliesCreated),
		slog.Int("newly_queued", result.NewlyQueued),
		slog.Int("already_queued", result.AlreadyQueued))

	return result, nil
}

func dedupURLs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		url := strings.TrimSpace(raw)
		if url == "" {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, url)
	}
	return out
}
