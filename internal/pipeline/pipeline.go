// Package pipeline implements the six-stage document-processing state
// machine: Ingest, Classify, Extract, Validate, Reconcile, Decide. A run
// owns its WorkflowState exclusively and never raises errors past the
// pipeline boundary; failures surface inside the structured output.
package pipeline

import (
	"fmt"

	"github.com/haiphan0412/invoice-gate/internal/models"
	"github.com/haiphan0412/invoice-gate/pkg/logger"
)

// InputError indicates the run had no usable input and aborted at Ingest.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// Pipeline drives WorkflowState through the stages in fixed order.
type Pipeline struct {
	cfg *Config
	log logger.Logger
}

// New creates a pipeline with the given config; nil config means defaults.
func New(cfg *Config, log logger.Logger) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Config exposes the active configuration.
func (p *Pipeline) Config() *Config {
	return p.cfg
}

type stageFunc func(*WorkflowState) error

// Run executes one document through the state machine and always returns a
// fixed-shape output, even when the run terminates in ERROR.
func (p *Pipeline) Run(req *models.ProcessRequest) *models.Output {
	out, _ := p.RunDetailed(req)
	return out
}

// RunDetailed also returns the unbounded evidence log so the caller can
// forward it to an audit sink; the output itself carries only the bounded
// excerpt.
func (p *Pipeline) RunDetailed(req *models.ProcessRequest) (*models.Output, []models.Evidence) {
	st := NewWorkflowState(req)

	p.log.Info("pipeline run started",
		logger.String("docId", st.DocID),
		logger.String("tenantId", st.TenantID),
		logger.String("mode", string(st.Mode)),
	)

	stages := []struct {
		stage Stage
		fn    stageFunc
	}{
		{StageIngest, p.ingest},
		{StageClassify, p.classify},
		{StageExtract, p.extract},
		{StageValidate, p.validate},
		{StageReconcile, p.reconcile},
		{StageDecision, p.decide},
	}

	for _, s := range stages {
		if s.stage == StageReconcile && len(st.BankTransactions) == 0 {
			st.RecordStep(StageReconcile, map[string]interface{}{"skipped": true})
			continue
		}

		st.Stage = s.stage
		if err := p.runStage(st, s.stage, s.fn); err != nil {
			st.Stage = StageError
			st.ErrStep = s.stage.String()
			st.ErrMessage = err.Error()
			st.RecordStep(StageError, map[string]interface{}{"error": err.Error()})
			p.log.Error("pipeline stage failed",
				logger.String("docId", st.DocID),
				logger.String("stage", s.stage.String()),
				logger.Error(err),
			)
			break
		}
		st.RecordStep(s.stage, nil)
	}

	if st.Stage != StageError {
		st.Stage = StageComplete
		st.RecordStep(StageComplete, nil)
	}

	out := buildOutput(st)

	p.log.Info("pipeline run finished",
		logger.String("docId", st.DocID),
		logger.String("stage", st.Stage.String()),
		logger.Bool("needsReview", out.NeedsHumanReview),
	)

	return out, st.EvidenceLog
}

// runStage executes one stage handler, converting panics into stage errors
// so the run degrades to ERROR instead of crashing the caller.
func (p *Pipeline) runStage(st *WorkflowState, stage Stage, fn stageFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in stage %s: %v", stage, r)
		}
	}()
	return fn(st)
}

// ingest checks the at-least-one-input invariant and normalizes the raw
// text into ordered blocks.
func (p *Pipeline) ingest(st *WorkflowState) error {
	if st.RawText == "" && len(st.Structured) == 0 {
		return &InputError{Msg: "no input provided: ocr_text or structured_fields required"}
	}
	st.NormalizedText = NormalizeText(st.RawText)
	st.Blocks = SplitBlocks(st.NormalizedText)
	return nil
}

func (p *Pipeline) classify(st *WorkflowState) error {
	res := Classify(st.NormalizedText, st.Structured)
	st.DocType = res.Type
	st.Confidence = res.Confidence

	if res.FromStructured {
		st.AddEvidence("doc_type", res.Type.String(), models.SourceStructured, "doc_type")
	} else {
		for _, kw := range res.Keywords {
			st.AddEvidence("doc_type", res.Type.String(), models.SourceOCR, kw)
		}
	}
	return nil
}

func (p *Pipeline) extract(st *WorkflowState) error {
	Extract(st)
	return nil
}

func (p *Pipeline) validate(st *WorkflowState) error {
	Validate(st)
	return nil
}

func (p *Pipeline) reconcile(st *WorkflowState) error {
	vendor := st.Header.Store
	if vendor == "" {
		vendor = st.Header.Company
	}
	inv := InvoiceView{
		InvoiceID: st.DocID,
		Amount:    st.Tax.GrandTotal,
		Date:      st.Header.Date,
		Vendor:    vendor,
		Number:    st.Invoice.Number,
	}

	result, warnings := Reconcile([]InvoiceView{inv}, st.BankTransactions, p.cfg)
	st.Reconciliation = result
	for _, w := range warnings {
		st.AddWarning(w)
	}
	return nil
}

func (p *Pipeline) decide(st *WorkflowState) error {
	Decide(st, p.cfg)
	return nil
}
