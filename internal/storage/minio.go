package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage stores objects in an S3-compatible bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, bucket: bucket}, nil
}

func (ms *MinioStorage) Save(ctx context.Context, path string, data io.Reader, size int64, contentType string) error {
	_, err := ms.client.PutObject(ctx, ms.bucket, path, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (ms *MinioStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if _, err := ms.client.StatObject(ctx, ms.bucket, path, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s not found: %w", path, err)
		}
		return nil, err
	}

	return ms.client.GetObject(ctx, ms.bucket, path, minio.GetObjectOptions{})
}

func (ms *MinioStorage) Delete(ctx context.Context, path string) error {
	err := ms.client.RemoveObject(ctx, ms.bucket, path, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return err
}
