// Package blob persists reference image bytes under a content-addressed,
// human-navigable filesystem layout.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"refseeder/internal/errs"
	"refseeder/internal/ports"
)

// FSStore writes blobs under a root directory. An existing object with the
// same path is never overwritten: content addressing makes the write
// idempotent.
type FSStore struct {
	root string
}

var _ ports.BlobStore = (*FSStore)(nil)

func NewFSStore(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("blob root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errs.Wrapf(err, "create blob root %q", root)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) Put(ctx context.Context, path string, data []byte) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return fmt.Errorf("blob path %q escapes storage root", path)
	}

	if existing, err := os.ReadFile(full); err == nil {
		if bytes.Equal(existing, data) {
			return nil
		}
		return fmt.Errorf("blob path %q already holds different content", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return errs.Wrap(err, "stat existing blob")
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errs.Wrap(err, "create blob directory")
	}

	// Write through a temp file so a crash never leaves a torn object at the
	// content-addressed path.
	tmp, err := os.CreateTemp(filepath.Dir(full), ".blob-*")
	if err != nil {
		return errs.Wrap(err, "create temp blob")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errs.Wrap(err, "write temp blob")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrap(err, "close temp blob")
	}
	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return errs.Wrap(err, "publish blob")
	}
	return nil
}
