package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/pkg/storage"
)

// ObjectEvidenceSink archives evidence logs as JSON objects so auditors can
// trace every emitted field back to its origin.
type ObjectEvidenceSink struct {
	store storage.Storage
}

// NewObjectEvidenceSink wraps an object storage backend.
func NewObjectEvidenceSink(store storage.Storage) *ObjectEvidenceSink {
	return &ObjectEvidenceSink{store: store}
}

// Append implements EvidenceSink.Append.
func (s *ObjectEvidenceSink) Append(ctx context.Context, tenantID, docID string, entries []models.Evidence) error {
	if len(entries) == 0 {
		return nil
	}
	if tenantID == "" {
		tenantID = "default"
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	key := fmt.Sprintf("evidence/%s/%s.json", tenantID, docID)
	if _, err := s.store.Store(ctx, bytes.NewReader(data), key); err != nil {
		return fmt.Errorf("failed to store evidence: %w", err)
	}
	return nil
}
