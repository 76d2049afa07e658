package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pesanapp/internal/common"
	"pesanapp/internal/config"
)

// mediaBucket is the slice of GridFS bucket behavior the store uses.
// Tests substitute it with stream mocks.
type mediaBucket interface {
	OpenUploadStream(filename string) (io.WriteCloser, error)
	DownloadToStreamByName(filename string, w io.Writer) (int64, error)
	FindFileIDs(ctx context.Context, filename string) ([]interface{}, error)
	Delete(fileID interface{}) error
}

// mongoBucket adapts *gridfs.Bucket to mediaBucket
type mongoBucket struct {
	bucket *gridfs.Bucket
}

func (b *mongoBucket) OpenUploadStream(filename string) (io.WriteCloser, error) {
	return b.bucket.OpenUploadStream(filename)
}

func (b *mongoBucket) DownloadToStreamByName(filename string, w io.Writer) (int64, error) {
	return b.bucket.DownloadToStreamByName(filename, w)
}

func (b *mongoBucket) FindFileIDs(ctx context.Context, filename string) ([]interface{}, error) {
	cursor, err := b.bucket.Find(bson.M{"filename": filename})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []interface{}
	for cursor.Next(ctx) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		ids = append(ids, file.ID)
	}
	return ids, nil
}

func (b *mongoBucket) Delete(fileID interface{}) error {
	return b.bucket.Delete(fileID)
}

// GridFSStore maps each bucket onto its own GridFS bucket. Same contract as
// DiskStore, for deployments that already run MongoDB for media.
type GridFSStore struct {
	client  *mongo.Client
	buckets map[Bucket]mediaBucket
}

func NewGridFSStore(c *config.Config) (*GridFSStore, error) {
	clientOptions := options.Client().ApplyURI(c.MongoDB.URI)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	database := client.Database(c.MongoDB.Database)
	buckets := make(map[Bucket]mediaBucket)
	for _, b := range []Bucket{BucketImages, BucketVoice, BucketProfile} {
		bucket, err := gridfs.NewBucket(database, options.GridFSBucket().SetName(string(b)))
		if err != nil {
			return nil, fmt.Errorf("failed to create GridFS bucket %s: %w", b, err)
		}
		buckets[b] = &mongoBucket{bucket: bucket}
	}

	return &GridFSStore{
		client:  client,
		buckets: buckets,
	}, nil
}

// newGridFSStoreWithBuckets wires pre-built buckets, for tests
func newGridFSStoreWithBuckets(buckets map[Bucket]mediaBucket) *GridFSStore {
	return &GridFSStore{buckets: buckets}
}

func (s *GridFSStore) Put(ctx context.Context, bucket Bucket, filename string, data []byte) error {
	gfs, ok := s.buckets[bucket]
	if !ok {
		return fmt.Errorf("%w: unknown bucket %s", common.ErrStorageWrite, bucket)
	}

	stream, err := gfs.OpenUploadStream(filename)
	if err != nil {
		return fmt.Errorf("%w: upload %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
	}

	if _, err := stream.Write(data); err != nil {
		stream.Close()
		return fmt.Errorf("%w: write %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
	}

	// GridFS only commits the files document when the stream closes, so a
	// Close failure means the blob is not readable by Get
	if err := stream.Close(); err != nil {
		return fmt.Errorf("%w: commit %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
	}
	return nil
}

func (s *GridFSStore) Get(ctx context.Context, bucket Bucket, filename string) ([]byte, error) {
	gfs, ok := s.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: unknown bucket %s", common.ErrStorageRead, bucket)
	}

	var buf bytes.Buffer
	if _, err := gfs.DownloadToStreamByName(filename, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", common.ErrNotFound, bucket, filename)
		}
		return nil, fmt.Errorf("%w: read %s/%s: %v", common.ErrStorageRead, bucket, filename, err)
	}
	return buf.Bytes(), nil
}

func (s *GridFSStore) Delete(ctx context.Context, bucket Bucket, filename string) error {
	gfs, ok := s.buckets[bucket]
	if !ok {
		return fmt.Errorf("%w: unknown bucket %s", common.ErrStorageWrite, bucket)
	}

	// GridFS deletes by file id, so look the name up first. An absent
	// filename matches nothing and is not an error.
	ids, err := gfs.FindFileIDs(ctx, filename)
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
	}

	for _, id := range ids {
		if err := gfs.Delete(id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("%w: delete %s/%s: %v", common.ErrStorageWrite, bucket, filename, err)
		}
	}
	return nil
}

// Close disconnects the underlying Mongo client
func (s *GridFSStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
