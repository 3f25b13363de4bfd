package document

import (
	"context"

	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/pkg/queue"
)

// DocumentProcessor runs documents through the pipeline and dispatches the
// boundary collaborators (result repository, evidence sink, approval queue).
type DocumentProcessor interface {
	// Process runs one document synchronously. The returned output is
	// always non-nil; err reports collaborator wiring failures only.
	Process(ctx context.Context, req *models.ProcessRequest) (*models.Output, error)

	// ProcessBatch fans out over many documents concurrently; each
	// document gets its own exclusive pipeline run.
	ProcessBatch(ctx context.Context, reqs []*models.ProcessRequest) ([]*models.Output, error)

	// Enqueue schedules an asynchronous run and returns the doc id.
	Enqueue(ctx context.Context, req *models.ProcessRequest) (string, error)

	// GetResult fetches a persisted run output.
	GetResult(ctx context.Context, tenantID, docID string) (*models.Output, error)

	// HandleDocument is the worker callback for queued tasks.
	HandleDocument(ctx context.Context, task *queue.Task) error

	// GetTaskStatus reports the processing state of a queued document.
	GetTaskStatus(ctx context.Context, docID string) (*queue.TaskStatus, error)
}
