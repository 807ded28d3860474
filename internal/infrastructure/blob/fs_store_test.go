package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPutIsIdempotentForEqualContent(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	ctx := context.Background()

	payload := []byte("image bytes")
	if err := store.Put(ctx, "watches/seiko/1/abcd.jpg", payload); err != nil {
		t.Fatalf("Put(first) error = %v", err)
	}
	if err := store.Put(ctx, "watches/seiko/1/abcd.jpg", payload); err != nil {
		t.Fatalf("Put(repeat) error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(store.root, "watches", "seiko", "1", "abcd.jpg"))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(got) != "image bytes" {
		t.Fatalf("blob content = %q", got)
	}
}

func TestPutRefusesDifferentContentAtSamePath(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "watches/seiko/1/abcd.jpg", []byte("one")); err != nil {
		t.Fatalf("Put(first) error = %v", err)
	}
	if err := store.Put(ctx, "watches/seiko/1/abcd.jpg", []byte("two")); err == nil {
		t.Fatalf("Put(conflict) error = nil, want content conflict")
	}

	got, err := os.ReadFile(filepath.Join(store.root, "watches", "seiko", "1", "abcd.jpg"))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(got) != "one" {
		t.Fatalf("blob content = %q, original must survive", got)
	}
}

func TestPutRejectsEscapingPaths(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}

	if err := store.Put(context.Background(), "../outside.jpg", []byte("x")); err == nil {
		t.Fatalf("Put(escape) error = nil, want path error")
	}
}

func TestNewFSStoreRequiresRoot(t *testing.T) {
	if _, err := NewFSStore("  "); err == nil {
		t.Fatalf("NewFSStore(blank) error = nil, want root error")
	}
}
