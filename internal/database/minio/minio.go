package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docintell/internal/config"
)

// ObjectStore archives the raw bytes of uploaded documents, keyed by
// document id, so the original file survives next to its extracted text.
type ObjectStore struct {
	client *minio.Client
	bucket string
}

// Connect creates the MinIO client and makes sure the bucket exists.
func Connect(ctx context.Context, cfg *config.MinIOConfig) (*ObjectStore, error) {
	c, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create MinIO client: %w", err)
	}

	exists, err := c.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("cannot check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := c.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("cannot create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &ObjectStore{client: c, bucket: cfg.Bucket}, nil
}

// Put stores the raw bytes of a document under its id.
func (s *ObjectStore) Put(ctx context.Context, documentID string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, documentID, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("cannot store object %q: %w", documentID, err)
	}
	return nil
}

// Remove deletes the raw bytes of a document. Removing an absent object is
// not an error.
func (s *ObjectStore) Remove(ctx context.Context, documentID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, documentID, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("cannot remove object %q: %w", documentID, err)
	}
	return nil
}

// HealthCheck lists buckets to verify connectivity and credentials.
func (s *ObjectStore) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("minio client is not initialized")
	}
	if _, err := s.client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}
