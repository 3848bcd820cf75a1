package storage

import (
	"errors"
	"fmt"
	"metagen/internal/config"
	"strings"
)

// NewR2Storage targets Cloudflare R2 through its S3 compatible API.
func NewR2Storage(cfg config.Config) (Storage, error) {
	bucket := strings.TrimSpace(cfg.StorageR2Bucket)
	if bucket == "" {
		return nil, errors.New("storage: missing R2 bucket")
	}

	endpoint, err := r2Endpoint(cfg.StorageR2Endpoint, cfg.StorageR2AccountID)
	if err != nil {
		return nil, err
	}

	region := strings.TrimSpace(cfg.StorageR2Region)
	if region == "" {
		region = "auto"
	}

	client, err := newS3Client(s3ClientOptions{
		Region:          region,
		Endpoint:        endpoint,
		AccessKeyID:     cfg.StorageR2AccessKeyID,
		SecretAccessKey: cfg.StorageR2SecretAccessKey,
		ForcePathStyle:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create R2 client: %w", err)
	}

	return newRemoteStorage(&s3Store{client: client, bucket: bucket}, cfg.StorageR2Prefix), nil
}

func r2Endpoint(endpoint, accountID string) (string, error) {
	if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
		return endpoint, nil
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", errors.New("storage: missing R2 endpoint or account id")
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID), nil
}
