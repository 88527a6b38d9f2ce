package minio_storage

import (
	"context"
	"fmt"

	"LiqLearns/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStorage struct {
	client  *minio.Client
	buckets map[string]config.BucketConfig
}

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, buckets map[string]config.BucketConfig) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	for _, bc := range buckets {
		if err := ensureBucket(ctx, client, bc.Name); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, buckets: buckets}, nil
}

// Bucket returns the configured bucket for a logical name.
func (s *MinioStorage) Bucket(name string) (config.BucketConfig, error) {
	bc, ok := s.buckets[name]
	if !ok {
		return config.BucketConfig{}, fmt.Errorf("bucket %q is not configured", name)
	}
	return bc, nil
}

func ensureBucket(ctx context.Context, client *minio.Client, name string) error {
	exists, err := client.BucketExists(ctx, name)
	if err != nil {
		return fmt.Errorf("error checking bucket %s: %w", name, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("error creating bucket %s: %w", name, err)
		}
	}
	return nil
}
