package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/internal/repository"
	"github.com/haiphan0412/invoice-gate/internal/service/document"
	"github.com/haiphan0412/invoice-gate/internal/utils/validator"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
)

type DocumentHandler struct {
	service   document.DocumentProcessor
	validator *validator.RequestValidator
	logger    logger.Logger
}

// BatchRequest wraps many documents for one call.
type BatchRequest struct {
	Documents []*models.ProcessRequest `json:"documents"`
}

// EnqueueResponse acknowledges an asynchronous submission.
type EnqueueResponse struct {
	DocID  string `json:"docId"`
	Status string `json:"status"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string                      `json:"error,omitempty"`
	Message string                      `json:"message"`
	Details []validator.ValidationError `json:"details,omitempty"`
}

func NewDocumentHandler(service document.DocumentProcessor, log logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:   service,
		validator: validator.NewRequestValidator(nil),
		logger:    log,
	}
}

// ProcessDocument runs one document synchronously and returns the full
// pipeline output.
func (h *DocumentHandler) ProcessDocument(c *gin.Context) {
	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if result := h.validator.ValidateRequest(&req); !result.IsValid {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Request validation failed",
			Details: result.Errors,
		})
		return
	}

	out, err := h.service.Process(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to process document", err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// ProcessBatch runs many documents concurrently.
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if result := h.validator.ValidateBatch(req.Documents); !result.IsValid {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Batch validation failed",
			Details: result.Errors,
		})
		return
	}

	outputs, err := h.service.ProcessBatch(c.Request.Context(), req.Documents)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to process batch", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(outputs),
		"results": outputs,
	})
}

// EnqueueDocument schedules an asynchronous run.
func (h *DocumentHandler) EnqueueDocument(c *gin.Context) {
	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if result := h.validator.ValidateRequest(&req); !result.IsValid {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Request validation failed",
			Details: result.Errors,
		})
		return
	}

	docID, err := h.service.Enqueue(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to enqueue document", err)
		return
	}

	c.JSON(http.StatusAccepted, EnqueueResponse{
		DocID:  docID,
		Status: "pending",
	})
}

// GetResult returns a persisted pipeline output.
func (h *DocumentHandler) GetResult(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		h.handleError(c, http.StatusBadRequest, "Document ID is required", nil)
		return
	}
	tenantID := c.Query("tenantId")

	out, err := h.service.GetResult(c.Request.Context(), tenantID, docID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			h.handleError(c, http.StatusNotFound, "Result not found", err)
			return
		}
		h.handleError(c, http.StatusInternalServerError, "Failed to get result", err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetStatus reports the processing state of a queued document.
func (h *DocumentHandler) GetStatus(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		h.handleError(c, http.StatusBadRequest, "Document ID is required", nil)
		return
	}

	status, err := h.service.GetTaskStatus(c.Request.Context(), docID)
	if err != nil {
		h.handleError(c, http.StatusNotFound, "Task not found", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
