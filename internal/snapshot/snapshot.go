// Package snapshot dumps the users collection to object storage as one JSON array.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/crudusers/users-service/internal/models"
)

const contentType = "application/json"

// Lister is the read side of users.Repository.
type Lister interface {
	List(ctx context.Context) ([]*models.User, error)
}

// Uploader is implemented by storage.MinIOStorage.
type Uploader interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// Downloader is implemented by storage.MinIOStorage.
type Downloader interface {
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// Key returns the default object key for a snapshot taken at t.
func Key(t time.Time) string {
	return "users/" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Write lists every user and uploads them under key. It returns the number
// of users written.
func Write(ctx context.Context, src Lister, dst Uploader, key string) (int, error) {
	list, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if list == nil {
		list = []*models.User{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := dst.UploadFile(ctx, key, bytes.NewReader(b), int64(len(b)), contentType); err != nil {
		return 0, fmt.Errorf("upload %s: %w", key, err)
	}
	return len(list), nil
}

// Read downloads and decodes the snapshot stored under key.
func Read(ctx context.Context, src Downloader, key string) ([]*models.User, error) {
	rc, err := src.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer rc.Close()

	var list []*models.User
	if err := json.NewDecoder(rc).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return list, nil
}
