package minio_storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"LiqLearns/internal/app_errors"
	"LiqLearns/internal/models"

	"github.com/minio/minio-go/v7"
)

const SlideMediaBucket = "slide_media"

// SlideMediaStorage keeps images extracted from decks. Object keys are the
// content-addressed image refs, so storing the same bytes twice is a no-op.
type SlideMediaStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewSlideMediaStorage(storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*SlideMediaStorage, error) {
	if err := ensureBucket(context.Background(), storage.client, bucketName); err != nil {
		return nil, err
	}
	if presignedTTL <= 0 {
		presignedTTL = time.Hour
	}
	return &SlideMediaStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

func (s *SlideMediaStorage) StoreMedia(ctx context.Context, ref models.ImageRef, data []byte, contentType string) error {
	key := string(ref)
	if _, err := s.storage.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return nil
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("stat %s: %w", key, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.storage.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SlideMediaStorage) MediaURL(ctx context.Context, ref models.ImageRef) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		string(ref),
		s.presignedTTL,
		reqParams,
	)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

// Media returns the raw bytes and content type of ref. A missing object is
// reported as app_errors.ErrMediaNotFound.
func (s *SlideMediaStorage) Media(ctx context.Context, ref models.ImageRef) ([]byte, string, error) {
	obj, err := s.storage.client.GetObject(ctx, s.bucket, string(ref), minio.GetObjectOptions{})
	if err != nil {
		return nil, "", mediaErr(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", mediaErr(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", err
	}
	return data, info.ContentType, nil
}

func mediaErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return app_errors.ErrMediaNotFound
	}
	return err
}
