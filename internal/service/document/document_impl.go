package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/haiphan0412/invoice-gate/config"
	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/internal/pipeline"
	"github.com/haiphan0412/invoice-gate/internal/repository"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
	"github.com/haiphan0412/invoice-gate/pkg/queue"
	"github.com/haiphan0412/invoice-gate/pkg/storage"
)

type DocumentService struct {
	pipeline  *pipeline.Pipeline
	repo      repository.ResultRepository
	approvals repository.ApprovalQueue
	evidence  repository.EvidenceSink
	queue     queue.Queue
	logger    logger.Logger
	config    *ServiceConfig
}

type ServiceConfig struct {
	MaxConcurrent int
	QueuePriority int
	ResultTTL     time.Duration
}

func NewService(
	pl *pipeline.Pipeline,
	repo repository.ResultRepository,
	approvals repository.ApprovalQueue,
	evidence repository.EvidenceSink,
	q queue.Queue,
	log logger.Logger,
	cfg *ServiceConfig,
) DocumentProcessor {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxConcurrent: 5,
			QueuePriority: 2,
			ResultTTL:     24 * time.Hour,
		}
	}

	return &DocumentService{
		pipeline:  pl,
		repo:      repo,
		approvals: approvals,
		evidence:  evidence,
		queue:     q,
		logger:    log,
		config:    cfg,
	}
}

// GetService wires the default production dependencies: Redis for results
// and task status, MinIO for evidence, asynq for queues.
func GetService(log logger.Logger) (DocumentProcessor, error) {
	redisCfg := config.GetRedisConfig()

	pipelineCfg, err := config.LoadPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}

	store, err := storage.NewStorage(storage.StorageTypeMinio, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	q, err := queue.NewAsynqQueue(&queue.QueueConfig{
		RedisAddr: redisCfg.Addr,
		RedisDB:   redisCfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisCfg.Addr,
		DB:   redisCfg.DB,
	})
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisCfg.Addr,
		DB:   redisCfg.DB,
	})

	return NewService(
		pipeline.New(pipelineCfg, log),
		repository.NewRedisResultRepository(redisClient, 24*time.Hour),
		repository.NewAsynqApprovalQueue(asynqClient),
		repository.NewObjectEvidenceSink(store),
		q,
		log,
		nil,
	), nil
}

// Process runs one document through the pipeline and dispatches the
// boundary collaborators. The output is always non-nil; collaborator
// failures are logged and never alter the result.
func (s *DocumentService) Process(ctx context.Context, req *models.ProcessRequest) (*models.Output, error) {
	out, evidenceLog := s.pipeline.RunDetailed(req)

	if err := s.repo.Save(ctx, out.TenantID, out.DocID, out); err != nil {
		s.logger.Error("Failed to persist output",
			logger.String("docId", out.DocID),
			logger.Error(err),
		)
	}

	if err := s.evidence.Append(ctx, out.TenantID, out.DocID, evidenceLog); err != nil {
		s.logger.Error("Failed to archive evidence",
			logger.String("docId", out.DocID),
			logger.Error(err),
		)
	}

	if out.NeedsHumanReview {
		item := &repository.ApprovalItem{
			DocID:    out.DocID,
			TenantID: out.TenantID,
			Reasons:  out.ReviewReasons,
			Priority: 2,
			Amount:   decimal.Zero,
		}
		if out.ApprovalThresholdExceeded {
			item.Priority = 1
		}
		if out.Document.Tax.GrandTotal != nil {
			item.Amount = *out.Document.Tax.GrandTotal
		}
		if err := s.approvals.Push(ctx, item); err != nil {
			s.logger.Error("Failed to push approval item",
				logger.String("docId", out.DocID),
				logger.Error(err),
			)
		}
	}

	return out, nil
}

// ProcessBatch fans out over documents with errgroup; each run owns its own
// state so no locking is needed beyond collecting results.
func (s *DocumentService) ProcessBatch(ctx context.Context, reqs []*models.ProcessRequest) ([]*models.Output, error) {
	outputs := make([]*models.Output, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			out, err := s.Process(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to process document %s: %w", req.DocID, err)
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outputs, err
	}

	return outputs, nil
}

// Enqueue schedules an asynchronous run.
func (s *DocumentService) Enqueue(ctx context.Context, req *models.ProcessRequest) (string, error) {
	if req.DocID == "" {
		req.DocID = uuid.New().String()
	}

	task := &queue.Task{
		ID:       req.DocID,
		Type:     queue.TaskTypeDocumentProcess,
		Priority: s.config.QueuePriority,
		Request:  req,
		Metadata: map[string]string{
			"tenantId": req.TenantID,
			"mode":     req.Mode,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("Failed to enqueue document",
			logger.String("docId", req.DocID),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to enqueue document: %w", err)
	}

	if err := s.queue.SaveFinalStatus(ctx, &queue.TaskStatus{
		TaskID:    req.DocID,
		Status:    "pending",
		StartedAt: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("Failed to save initial status",
			logger.String("docId", req.DocID),
			logger.Error(err),
		)
	}

	s.logger.Info("Document enqueued",
		logger.String("docId", req.DocID),
		logger.String("tenantId", req.TenantID),
	)

	return req.DocID, nil
}

// HandleDocument runs a queued task through the pipeline.
func (s *DocumentService) HandleDocument(ctx context.Context, task *queue.Task) error {
	if task == nil || task.Request == nil {
		return fmt.Errorf("invalid task: missing request")
	}

	s.logger.Info("Processing queued document",
		logger.String("docId", task.ID),
	)

	out, err := s.Process(ctx, task.Request)
	if err != nil {
		return err
	}

	status := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "completed",
		Progress:   1.0,
		StartedAt:  task.CreatedAt,
		FinishedAt: time.Now().UTC(),
	}
	if out.ErrorMessage != "" {
		status.Error = out.ErrorMessage
	}

	if err := s.queue.SaveFinalStatus(ctx, status); err != nil {
		s.logger.Error("Failed to save final status",
			logger.String("docId", task.ID),
			logger.Error(err),
		)
	}

	return nil
}

// GetResult fetches a persisted run output.
func (s *DocumentService) GetResult(ctx context.Context, tenantID, docID string) (*models.Output, error) {
	return s.repo.Get(ctx, tenantID, docID)
}

// GetTaskStatus reports the processing state of a queued document.
func (s *DocumentService) GetTaskStatus(ctx context.Context, docID string) (*queue.TaskStatus, error) {
	return s.queue.GetTaskStatus(ctx, docID)
}
