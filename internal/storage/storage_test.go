package storage

import (
	"context"
	"errors"
	"metagen/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildObjectPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC+8", 8*3600))

	tests := []struct {
		name string
		opts SaveOptions
		want string
	}{
		{
			name: "named csv export",
			opts: SaveOptions{Category: "exports", BaseName: "Task 42", Extension: ".csv"},
			want: "exports/2024/03/09/task-42.csv",
		},
		{
			name: "defaults",
			opts: SaveOptions{},
			want: "misc/2024/03/09/" + "1709998200000000000" + ".bin",
		},
		{
			name: "category sanitized",
			opts: SaveOptions{Category: "Ex/ports!", BaseName: "a", Extension: "CSV"},
			want: "exports/2024/03/09/a.csv",
		},
	}

	for _, tt := range tests {
		if got := buildObjectPath(now, tt.opts); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor(SaveOptions{ContentType: "text/csv; charset=utf-8", Extension: "bin"}); got != "text/csv; charset=utf-8" {
		t.Fatalf("explicit content type not kept: %q", got)
	}
	if got := contentTypeFor(SaveOptions{Extension: "zzz-unknown"}); got != "application/octet-stream" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestJoinPrefix(t *testing.T) {
	if got := joinPrefix("/team/", "/exports/a.csv"); got != "team/exports/a.csv" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := joinPrefix("  ", "/a.csv"); got != "a.csv" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	store.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }

	ctx := context.Background()
	key, err := store.Save(ctx, []byte("a,b\n"), SaveOptions{Category: "exports", BaseName: "task-1", Extension: "csv"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if key != "exports/2024/01/02/task-1.csv" {
		t.Fatalf("unexpected key %q", key)
	}

	abs, err := store.Resolve(key)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil || string(data) != "a,b\n" {
		t.Fatalf("unexpected file content %q: %v", data, err)
	}

	key2, err := store.Save(ctx, []byte("other"), SaveOptions{Category: "exports", BaseName: "task-1", Extension: "csv", SkipIfExists: true})
	if err != nil || key2 != key {
		t.Fatalf("SkipIfExists: %q %v", key2, err)
	}
	data, _ = os.ReadFile(abs)
	if string(data) != "a,b\n" {
		t.Fatalf("SkipIfExists overwrote file: %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(abs))
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}

	if _, err := store.Save(ctx, nil, SaveOptions{}); !errors.Is(err, errEmptyPayload) {
		t.Fatalf("expected empty payload error, got %v", err)
	}
	if _, err := store.Resolve("../../etc/passwd"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

type memoryStore struct {
	objects map[string]string
	types   map[string]string
}

func (m *memoryStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	m.objects[key] = string(data)
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.objects[key]
	return ok, nil
}

func TestRemoteStorageSave(t *testing.T) {
	mem := &memoryStore{objects: map[string]string{}, types: map[string]string{}}
	store := newRemoteStorage(mem, "/tenant/")
	store.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }

	key, err := store.Save(context.Background(), []byte("x"), SaveOptions{Category: "exports", BaseName: "t", Extension: "csv", ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if key != "tenant/exports/2024/05/06/t.csv" {
		t.Fatalf("unexpected key %q", key)
	}
	if mem.types[key] != "text/csv" {
		t.Fatalf("unexpected content type %q", mem.types[key])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, []byte("x"), SaveOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewStorage(t *testing.T) {
	s, err := NewStorage(config.Config{StorageType: "none"})
	if err != nil || s != nil {
		t.Fatalf("none: expected nil storage, got %v %v", s, err)
	}

	s, err = NewStorage(config.Config{StorageType: "LOCAL", StorageLocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := s.(*LocalStorage); !ok {
		t.Fatalf("expected LocalStorage, got %T", s)
	}

	if _, err := NewStorage(config.Config{StorageType: "ftp"}); err == nil {
		t.Fatal("expected unsupported type error")
	}
	if _, err := NewStorage(config.Config{StorageType: "s3"}); err == nil {
		t.Fatal("expected missing bucket error")
	}
	if _, err := r2Endpoint("", ""); err == nil {
		t.Fatal("expected missing R2 endpoint error")
	}
	if got, _ := r2Endpoint("", "acc"); got != "https://acc.r2.cloudflarestorage.com" {
		t.Fatalf("unexpected R2 endpoint %q", got)
	}
}
