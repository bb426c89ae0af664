package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// FileStorer is where raw uploads live between upload and ingestion.
type FileStorer interface {
	Upload(ctx context.Context, file io.Reader, key, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// UploadKey builds the storage key of an upload: uploads/{owner}/{id}{ext}.
func UploadKey(ownerID int64, id uuid.UUID, ext string) string {
	return path.Join("uploads", fmt.Sprint(ownerID), id.String()+ext)
}
