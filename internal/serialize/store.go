package serialize

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/lsst-dm/Daxgen/internal/ctxlog"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Store persists artifacts under relative paths.
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
}

// FileStore writes artifacts below a base location through afs, so any
// registered scheme (file://, mem://, ...) can be a target.
type FileStore struct {
	fs   afs.Service
	base string
}

// NewFileStore creates a store rooted at base. A plain path is treated as a
// local directory.
func NewFileStore(fs afs.Service, base string) *FileStore {
	if !strings.Contains(base, "://") {
		base = url.Normalize(base, file.Scheme)
	}
	return &FileStore{fs: fs, base: base}
}

// Base returns the normalized root URL of the store.
func (s *FileStore) Base() string {
	return s.base
}

// URL returns the location an artifact path is written to.
func (s *FileStore) URL(path string) string {
	return url.Join(s.base, path)
}

// Put uploads one artifact.
func (s *FileStore) Put(ctx context.Context, path string, data []byte) error {
	if err := s.fs.Upload(ctx, s.URL(path), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)

// Write stores every artifact in order, stopping at the first failure.
func (a *Artifacts) Write(ctx context.Context, store Store) error {
	logger := ctxlog.FromContext(ctx)
	for _, f := range a.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.Put(ctx, f.Path, f.Data); err != nil {
			return err
		}
	}
	logger.Info("Artifacts written.", "count", len(a.Files), "workflow_id", a.WorkflowID)
	return nil
}
