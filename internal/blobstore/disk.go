package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pesanapp/internal/common"
)

// DiskStore keeps each bucket as a flat directory under baseDir.
// Directories are created lazily on first write.
type DiskStore struct {
	baseDir string
}

func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir}
}

func (s *DiskStore) path(bucket Bucket, filename string) string {
	// filename is always generated server-side, but Base strips any
	// path segments just in case
	return filepath.Join(s.baseDir, string(bucket), filepath.Base(filename))
}

func (s *DiskStore) Put(ctx context.Context, bucket Bucket, filename string, data []byte) error {
	dir := filepath.Join(s.baseDir, string(bucket))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create bucket %s: %v", common.ErrStorageWrite, bucket, err)
	}

	if err := os.WriteFile(s.path(bucket, filename), data, 0644); err != nil {
		return fmt.Errorf("%w: write %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
	}
	return nil
}

func (s *DiskStore) Get(ctx context.Context, bucket Bucket, filename string) ([]byte, error) {
	data, err := os.ReadFile(s.path(bucket, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", common.ErrNotFound, bucket, filename)
		}
		return nil, fmt.Errorf("%w: read %s/%s: %v", common.ErrStorageRead, bucket, filename, err)
	}
	return data, nil
}

func (s *DiskStore) Delete(ctx context.Context, bucket Bucket, filename string) error {
	err := os.Remove(s.path(bucket, filename))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("%w: delete %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
}
