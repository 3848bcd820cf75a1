package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"metagen/internal/config"
	"net/http"
	"net/url"
	"strings"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type cosStore struct {
	client *cos.Client
}

func NewCOSStorage(cfg config.Config) (Storage, error) {
	baseURL := strings.TrimSpace(cfg.StorageCOSBucketURL)
	if baseURL == "" {
		return nil, errors.New("storage: missing COS bucket URL")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse COS bucket URL: %w", err)
	}

	secretID := strings.TrimSpace(cfg.StorageCOSSecretID)
	secretKey := strings.TrimSpace(cfg.StorageCOSSecretKey)
	if secretID == "" || secretKey == "" {
		return nil, errors.New("storage: missing COS credentials")
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: parsedURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  secretID,
			SecretKey: secretKey,
		},
	})

	return newRemoteStorage(&cosStore{client: client}, cfg.StorageCOSPrefix), nil
}

func (s *cosStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	resp, err := s.client.Object.Put(ctx, key, bytes.NewReader(data), &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{ContentType: contentType},
	})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return err
}

func (s *cosStore) Exists(ctx context.Context, key string) (bool, error) {
	resp, err := s.client.Object.Head(ctx, key, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err == nil {
		return true, nil
	}
	if cos.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}
