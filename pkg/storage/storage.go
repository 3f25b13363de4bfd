// Package storage provides the object store used to archive evidence logs
// and processed outputs. Two backends are supported behind one interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/haiphan0412/invoice-gate/pkg/logger"
	"github.com/haiphan0412/invoice-gate/pkg/storage/minio"
	"github.com/haiphan0412/invoice-gate/pkg/storage/s3"
)

// StorageType selects the backend.
type StorageType string

const (
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// Storage is the object-store contract consumed by the evidence sink and
// the result archive.
type Storage interface {
	// Store writes an object and returns its key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get reads an object.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes objects last modified before the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage is the backend factory.
func NewStorage(storageType StorageType, log logger.Logger) (Storage, error) {
	switch storageType {
	case StorageTypeS3:
		return s3.GetClient(log)
	case StorageTypeMinio:
		return minio.GetClient(log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
