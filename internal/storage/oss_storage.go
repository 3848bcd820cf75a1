package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"metagen/internal/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossStore struct {
	bucket *oss.Bucket
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return newRemoteStorage(&ossStore{bucket: bucket}, cfg.StorageOSSPrefix), nil
}

func (s *ossStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.bucket.PutObject(key, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
	)
}

func (s *ossStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.bucket.IsObjectExist(key, oss.WithContext(ctx))
}
