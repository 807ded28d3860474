package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	domainlibrary "refseeder/internal/domain/library"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

const seikoManifest = `{
	"families": [
		{
			"brand": "Seiko",
			"modelFamily": "5 Sports",
			"displayName": "Seiko 5 Sports",
			"attributes": {"movement": "automatic"},
			"images": [
				"https://example.com/seiko/1.jpg",
				"https://example.com/seiko/2.jpg",
				"https://example.com/seiko/2.jpg",
				"https://example.com/seiko/3.jpg"
			]
		},
		{
			"brand": "Casio",
			"modelFamily": "G-Shock",
			"images": ["https://example.com/casio/1.jpg"]
		}
	]
}`

func TestLoadSeedFileQueuesAndSkips(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	path := writeManifest(t, seikoManifest)

	result, err := f.svc.LoadSeedFile(ctx, LoadInput{ManifestPath: path, Category: "watches"})
	if err != nil {
		t.Fatalf("LoadSeedFile() error = %v", err)
	}
	if result.FamiliesSeen != 2 {
		t.Fatalf("FamiliesSeen = %d, want 2", result.FamiliesSeen)
	}
	// G-Shock has one candidate URL, below the minimum of 3.
	if result.FamiliesSkipped != 1 {
		t.Fatalf("FamiliesSkipped = %d, want 1", result.FamiliesSkipped)
	}
	if result.FamiliesCreated != 1 {
		t.Fatalf("FamiliesCreated = %d, want 1", result.FamiliesCreated)
	}
	// The duplicated URL collapses to 3 queue entries.
	if result.NewlyQueued != 3 {
		t.Fatalf("NewlyQueued = %d, want 3", result.NewlyQueued)
	}
	if result.AlreadyQueued != 0 {
		t.Fatalf("AlreadyQueued = %d, want 0", result.AlreadyQueued)
	}

	families, err := f.families.ListFamilies(ctx, "watches")
	if err != nil {
		t.Fatalf("ListFamilies() error = %v", err)
	}
	if len(families) != 1 {
		t.Fatalf("ListFamilies() len = %d, want 1", len(families))
	}
	if families[0].DisplayName != "Seiko 5 Sports" {
		t.Fatalf("family display name = %q", families[0].DisplayName)
	}
	if families[0].AttributesJSON != `{"movement":"automatic"}` {
		t.Fatalf("family attributes = %q", families[0].AttributesJSON)
	}

	counts, err := f.queue.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[domainlibrary.QueuePending] != 3 {
		t.Fatalf("pending count = %d, want 3", counts[domainlibrary.QueuePending])
	}
}

func TestLoadSeedFileIsIdempotent(t *testing.T) {
	f := setupFixture(t, nil)
	ctx := context.Background()
	path := writeManifest(t, seikoManifest)

	if _, err := f.svc.LoadSeedFile(ctx, LoadInput{ManifestPath: path, Category: "watches"}); err != nil {
		t.Fatalf("LoadSeedFile(first) error = %v", err)
	}

	result, err := f.svc.LoadSeedFile(ctx, LoadInput{ManifestPath: path, Category: "watches"})
	if err != nil {
		t.Fatalf("LoadSeedFile(second) error = %v", err)
	}
	if result.FamiliesCreated != 0 {
		t.Fatalf("FamiliesCreated = %d, want 0", result.FamiliesCreated)
	}
	if result.NewlyQueued != 0 {
		t.Fatalf("NewlyQueued = %d, want 0", result.NewlyQueued)
	}
	if result.AlreadyQueued != 3 {
		t.Fatalf("AlreadyQueued = %d, want 3", result.AlreadyQueued)
	}
}

func TestLoadSeedFileRequiresCategory(t *testing.T) {
	f := setupFixture(t, nil)
	path := writeManifest(t, seikoManifest)

	if _, err := f.svc.LoadSeedFile(context.Background(), LoadInput{ManifestPath: path}); err == nil {
		t.Fatalf("LoadSeedFile() error = nil, want category error")
	}
}

func TestLoadSeedFileRejectsBadManifest(t *testing.T) {
	f := setupFixture(t, nil)

	if _, err := f.svc.LoadSeedFile(context.Background(), LoadInput{
		ManifestPath: writeManifest(t, "{not json"),
		Category:     "watches",
	}); err == nil {
		t.Fatalf("LoadSeedFile(bad json) error = nil, want parse error")
	}

	if _, err := f.svc.LoadSeedFile(context.Background(), LoadInput{
		ManifestPath: filepath.Join(t.TempDir(), "missing.json"),
		Category:     "watches",
	}); err == nil {
		t.Fatalf("LoadSeedFile(missing file) error = nil, want read error")
	}
}
