package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/haiphan0412/invoice-gate/internal/service/document"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
	"github.com/haiphan0412/invoice-gate/pkg/queue"
)

// DocumentWorker consumes queued pipeline runs.
type DocumentWorker struct {
	BaseWorker
	docService document.DocumentProcessor
}

func NewDocumentWorker(cfg *Config, docService document.DocumentProcessor, log logger.Logger) (*DocumentWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &DocumentWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		docService: docService,
	}

	w.mux.HandleFunc(queue.TaskTypeDocumentProcess, w.handleDocumentProcess)
	return w, nil
}

func (w *DocumentWorker) handleDocumentProcess(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	if task.ID == "" || task.Request == nil {
		w.logger.Error("Invalid task data",
			logger.String("taskId", task.ID),
		)
		return fmt.Errorf("invalid task data: missing required fields")
	}

	w.logger.Info("Processing document task",
		logger.String("taskId", task.ID),
		logger.Any("metadata", task.Metadata),
	)

	if err := w.docService.HandleDocument(ctx, &task); err != nil {
		w.logger.Error("Document processing failed",
			logger.String("taskId", task.ID),
			logger.Error(err),
		)
		return err
	}

	return nil
}

func (w *DocumentWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
