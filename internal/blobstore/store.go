// Package blobstore is the file area behind message and profile attachments:
// three named buckets of opaque byte blobs keyed by filename. The database row
// is the only index of which blobs are live; the store itself keeps no manifest.
package blobstore

import "context"

// Bucket is a named logical partition of the blob store
type Bucket string

const (
	BucketImages  Bucket = "images"
	BucketVoice   Bucket = "voice"
	BucketProfile Bucket = "profile-images"
)

// Store is the byte-blob capability the persistence core writes through.
//
// Put guarantees the blob is readable by Get as soon as it returns.
// Get fails with common.ErrNotFound when the filename is absent.
// Delete is idempotent: deleting an absent filename is not an error. Real I/O
// failures during Delete are returned, but callers treat them as advisory —
// cleanup is always a secondary effect of a primary failure already reported.
type Store interface {
	Put(ctx context.Context, bucket Bucket, filename string, data []byte) error
	Get(ctx context.Context, bucket Bucket, filename string) ([]byte, error)
	Delete(ctx context.Context, bucket Bucket, filename string) error
}
