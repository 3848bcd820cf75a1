package storage

import (
	"context"
	"fmt"
	"time"
)

// objectStore is the bucket-level surface shared by S3, R2, OSS and COS.
type objectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// remoteStorage builds keys and delegates writes to an objectStore.
type remoteStorage struct {
	store  objectStore
	prefix string
	now    func() time.Time
}

func newRemoteStorage(store objectStore, prefix string) *remoteStorage {
	return &remoteStorage{store: store, prefix: trimPrefix(prefix), now: time.Now}
}

func (s *remoteStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if len(data) == 0 {
		return "", errEmptyPayload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := buildObjectPath(s.now(), opts)
	if s.prefix != "" {
		key = joinPrefix(s.prefix, key)
	}

	if opts.SkipIfExists {
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check object: %w", err)
		}
		if exists {
			return key, nil
		}
	}

	if err := s.store.Put(ctx, key, data, contentTypeFor(opts)); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

var _ Storage = (*remoteStorage)(nil)
