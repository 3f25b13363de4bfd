// Package repository defines the collaborators invoked at the boundary of a
// pipeline run: result persistence, approval routing and evidence audit.
// The pipeline core never touches these; only the document service does.
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// ResultRepository persists the fixed-schema output of a run.
type ResultRepository interface {
	Save(ctx context.Context, tenantID, docID string, out *models.Output) error
	Get(ctx context.Context, tenantID, docID string) (*models.Output, error)
}

// ApprovalItem is one document routed to a human approver.
type ApprovalItem struct {
	DocID    string          `json:"doc_id"`
	TenantID string          `json:"tenant_id,omitempty"`
	Reasons  []string        `json:"reasons"`
	Priority int             `json:"priority"`
	Amount   decimal.Decimal `json:"amount"`
}

// ApprovalQueue receives documents that cannot be auto-posted.
type ApprovalQueue interface {
	Push(ctx context.Context, item *ApprovalItem) error
}

// EvidenceSink receives the evidence log of a run for audit.
type EvidenceSink interface {
	Append(ctx context.Context, tenantID, docID string, entries []models.Evidence) error
}
