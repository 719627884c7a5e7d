package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/config"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// DiskStore is a disk-backed object store. Objects live under
// <root>/<bucket>/<id> with a small JSON sidecar carrying the original
// file name and size. Ids are server-assigned and opaque to callers.
type DiskStore struct {
	root    string
	maxSize int64
	logger  *logger.Logger
}

// New creates a disk store rooted at cfg.Root, creating the directory if
// needed.
func New(cfg config.StorageConfig, appLogger *logger.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &DiskStore{
		root:    cfg.Root,
		maxSize: cfg.MaxUploadSize,
		logger:  appLogger,
	}, nil
}

// Put stores an object and returns its assigned id. Uploads larger than
// the configured ceiling are rejected before anything is written; the
// declared size is also enforced while copying in case it lied.
func (s *DiskStore) Put(ctx context.Context, bucket, fileName string, size int64, r io.Reader) (string, error) {
	if size > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", entities.ErrObjectTooLarge, size, s.maxSize)
	}

	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	id := uuid.New().String()
	path := s.objectPath(bucket, id)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create object file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxSize {
		err = fmt.Errorf("%w: stream exceeded %d bytes", entities.ErrObjectTooLarge, s.maxSize)
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			s.logger.Warn("Failed to clean up partial object", "object_id", id, "error", removeErr)
		}
		return "", fmt.Errorf("write object: %w", err)
	}

	info := ports.ObjectInfo{ID: id, FileName: fileName, Size: written}
	meta, err := json.Marshal(info)
	if err == nil {
		err = os.WriteFile(s.metaPath(bucket, id), meta, 0o644)
	}
	if err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			s.logger.Warn("Failed to clean up object after meta failure", "object_id", id, "error", removeErr)
		}
		return "", fmt.Errorf("write object metadata: %w", err)
	}

	s.logger.Debug("Object stored", "bucket", bucket, "object_id", id, "size", written)

	return id, nil
}

// Open returns a reader over the object's content along with its metadata.
func (s *DiskStore) Open(ctx context.Context, bucket, objectID string) (io.ReadCloser, *ports.ObjectInfo, error) {
	meta, err := os.ReadFile(s.metaPath(bucket, objectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, entities.ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("read object metadata: %w", err)
	}

	var info ports.ObjectInfo
	if err := json.Unmarshal(meta, &info); err != nil {
		return nil, nil, fmt.Errorf("decode object metadata: %w", err)
	}

	f, err := os.Open(s.objectPath(bucket, objectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, entities.ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("open object: %w", err)
	}

	return f, &info, nil
}

// URL returns the view path for an object, resolved by the HTTP layer.
func (s *DiskStore) URL(bucket, objectID string) string {
	return fmt.Sprintf("/api/v1/files/%s/%s/view", bucket, objectID)
}

// Delete removes an object and its metadata. Deleting a missing object
// returns ErrObjectNotFound so callers can decide whether they care.
func (s *DiskStore) Delete(ctx context.Context, bucket, objectID string) error {
	path := s.objectPath(bucket, objectID)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return entities.ErrObjectNotFound
		}
		return fmt.Errorf("delete object: %w", err)
	}

	if err := os.Remove(s.metaPath(bucket, objectID)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to delete object metadata", "object_id", objectID, "error", err)
	}

	return nil
}

func (s *DiskStore) objectPath(bucket, id string) string {
	// Ids are generated here, never caller-supplied paths; Base guards the
	// view handler's bucket/id parameters all the same.
	return filepath.Join(s.root, filepath.Base(bucket), filepath.Base(id))
}

func (s *DiskStore) metaPath(bucket, id string) string {
	return s.objectPath(bucket, id) + ".json"
}
