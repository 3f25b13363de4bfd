package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// Stage is one step of the document-processing state machine.
type Stage string

const (
	StageIngest    Stage = "INGEST"
	StageClassify  Stage = "CLASSIFY"
	StageExtract   Stage = "EXTRACT"
	StageValidate  Stage = "VALIDATE"
	StageReconcile Stage = "RECONCILE"
	StageDecision  Stage = "DECISION"
	StageComplete  Stage = "COMPLETE"
	StageError     Stage = "ERROR"
)

var validStages = map[Stage]bool{
	StageIngest:    true,
	StageClassify:  true,
	StageExtract:   true,
	StageValidate:  true,
	StageReconcile: true,
	StageDecision:  true,
	StageComplete:  true,
	StageError:     true,
}

var terminalStages = map[Stage]bool{
	StageComplete: true,
	StageError:    true,
}

// IsTerminal returns true if no further transitions are allowed.
func (s Stage) IsTerminal() bool {
	return terminalStages[s]
}

// IsValid returns true if the stage is part of the state machine.
func (s Stage) IsValid() bool {
	return validStages[s]
}

func (s Stage) String() string {
	return string(s)
}

// WorkflowState is the single mutable context threaded through the stages.
// Each run owns its state exclusively; it is never shared across documents.
type WorkflowState struct {
	DocID     string
	TenantID  string
	RequestID string
	Mode      models.Mode

	RawText          string
	Structured       map[string]interface{}
	BankTransactions []models.BankTransaction
	FileMetadata     map[string]interface{}

	NormalizedText string
	Blocks         []string

	DocType    models.DocType
	Confidence float64

	Header  models.DocumentHeader
	Invoice models.InvoiceInfo
	Tax     models.TaxFigures
	Items   []models.LineItem

	Status           models.ValidationStatus
	MissingFields    []string
	Reconciliation   models.ReconcileResult
	NeedsHumanReview bool
	ReviewReasons    []string

	ApprovalThresholdExceeded bool

	Warnings    []string
	EvidenceLog []models.Evidence
	Steps       []models.StepRecord

	Stage      Stage
	ErrStep    string
	ErrMessage string

	missingSeen map[string]bool
	reasonSeen  map[string]bool
}

// NewWorkflowState builds a fresh state from the request, generating
// identifiers that were not supplied.
func NewWorkflowState(req *models.ProcessRequest) *WorkflowState {
	st := &WorkflowState{
		DocID:            req.DocID,
		TenantID:         req.TenantID,
		RequestID:        req.RequestID,
		Mode:             models.ParseMode(req.Mode),
		RawText:          req.OCRText,
		Structured:       req.StructuredFields,
		BankTransactions: req.BankTransactions,
		FileMetadata:     req.FileMetadata,
		DocType:          models.DocTypeOther,
		Status:           models.ValidationPass,
		Stage:            StageIngest,
		missingSeen:      make(map[string]bool),
		reasonSeen:       make(map[string]bool),
	}
	if st.DocID == "" {
		st.DocID = uuid.New().String()
	}
	if st.RequestID == "" {
		st.RequestID = uuid.New().String()
	}
	return st
}

// RecordStep appends one entry to the step trace.
func (s *WorkflowState) RecordStep(stage Stage, meta map[string]interface{}) {
	s.Steps = append(s.Steps, models.StepRecord{
		Stage:     stage.String(),
		Timestamp: time.Now().UTC(),
		Metadata:  meta,
	})
}

// AddEvidence appends an immutable evidence entry.
func (s *WorkflowState) AddEvidence(field, value string, source models.EvidenceSource, snippet string) {
	s.EvidenceLog = append(s.EvidenceLog, models.Evidence{
		Field:     field,
		Value:     value,
		Source:    source,
		Snippet:   snippet,
		Timestamp: time.Now().UTC(),
	})
}

// AddWarning accumulates a non-blocking warning.
func (s *WorkflowState) AddWarning(msg string) {
	s.Warnings = append(s.Warnings, msg)
}

// AddMissingField records a missing required field, keeping first-seen order
// and dropping duplicates.
func (s *WorkflowState) AddMissingField(field string) {
	if s.missingSeen[field] {
		return
	}
	s.missingSeen[field] = true
	s.MissingFields = append(s.MissingFields, field)
}

// FlagReview marks the document for human review with a deduplicated reason.
func (s *WorkflowState) FlagReview(reason string) {
	s.NeedsHumanReview = true
	if s.reasonSeen[reason] {
		return
	}
	s.reasonSeen[reason] = true
	s.ReviewReasons = append(s.ReviewReasons, reason)
}
