package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/internal/repository"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
	"github.com/haiphan0412/invoice-gate/pkg/queue"
)

type stubService struct {
	output    *models.Output
	getErr    error
	enqueueID string
}

func (s *stubService) Process(_ context.Context, req *models.ProcessRequest) (*models.Output, error) {
	return s.output, nil
}

func (s *stubService) ProcessBatch(_ context.Context, reqs []*models.ProcessRequest) ([]*models.Output, error) {
	outputs := make([]*models.Output, len(reqs))
	for i := range reqs {
		outputs[i] = s.output
	}
	return outputs, nil
}

func (s *stubService) Enqueue(_ context.Context, req *models.ProcessRequest) (string, error) {
	return s.enqueueID, nil
}

func (s *stubService) GetResult(_ context.Context, tenantID, docID string) (*models.Output, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.output, nil
}

func (s *stubService) HandleDocument(_ context.Context, task *queue.Task) error {
	return nil
}

func (s *stubService) GetTaskStatus(_ context.Context, docID string) (*queue.TaskStatus, error) {
	return &queue.TaskStatus{TaskID: docID, Status: "pending"}, nil
}

func setupRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDocumentHandler(svc, logger.NewTestLogger())
	r := gin.New()
	r.POST("/process", h.ProcessDocument)
	r.POST("/batch", h.ProcessBatch)
	r.POST("/enqueue", h.EnqueueDocument)
	r.GET("/result/:docId", h.GetResult)
	r.GET("/status/:docId", h.GetStatus)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessDocumentOK(t *testing.T) {
	svc := &stubService{output: &models.Output{DocID: "doc-1"}}
	r := setupRouter(svc)

	w := postJSON(r, "/process", models.ProcessRequest{OCRText: "hoa don"})

	require.Equal(t, http.StatusOK, w.Code)
	var out models.Output
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "doc-1", out.DocID)
}

func TestProcessDocumentInvalidMode(t *testing.T) {
	r := setupRouter(&stubService{output: &models.Output{}})

	w := postJSON(r, "/process", models.ProcessRequest{Mode: "LOOSE"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "INVALID_MODE", resp.Details[0].Code)
}

func TestProcessDocumentMalformedBody(t *testing.T) {
	r := setupRouter(&stubService{output: &models.Output{}})

	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessBatchEmpty(t *testing.T) {
	r := setupRouter(&stubService{output: &models.Output{}})

	w := postJSON(r, "/batch", BatchRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessBatchOK(t *testing.T) {
	r := setupRouter(&stubService{output: &models.Output{DocID: "doc-1"}})

	w := postJSON(r, "/batch", BatchRequest{
		Documents: []*models.ProcessRequest{
			{OCRText: "a"},
			{OCRText: "b"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestEnqueueDocumentAccepted(t *testing.T) {
	r := setupRouter(&stubService{enqueueID: "doc-7"})

	w := postJSON(r, "/enqueue", models.ProcessRequest{OCRText: "hoa don"})

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp EnqueueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "doc-7", resp.DocID)
	assert.Equal(t, "pending", resp.Status)
}

func TestGetResultNotFound(t *testing.T) {
	r := setupRouter(&stubService{getErr: repository.ErrResultNotFound})

	req := httptest.NewRequest(http.MethodGet, "/result/doc-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetStatus(t *testing.T) {
	r := setupRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/status/doc-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var status queue.TaskStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "doc-1", status.TaskID)
}
