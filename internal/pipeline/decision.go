package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// Output excerpt bounds keep the result size predictable.
const (
	maxTextEvidence    = 10
	maxNumericEvidence = 20
)

// localCurrency is the currency that needs no exchange approval.
const localCurrency = "VND"

// roundAmountUnit flags conspicuously round grand totals.
var roundAmountUnit = decimal.NewFromInt(1_000_000)

// Decide aggregates validation, classification and reconciliation signals
// into the review routing decision. This is the single owner of
// review-reason generation; risk heuristics live here too, not in a
// separate policy checker.
func Decide(st *WorkflowState, cfg *Config) {
	if st.Status == models.ValidationFail {
		st.FlagReview("validation failed: required fields missing")
	}
	if st.Mode == models.ModeStrict && st.DocType == models.DocTypeVATInvoice && len(st.MissingFields) > 0 {
		st.FlagReview(fmt.Sprintf("missing required fields: %s", strings.Join(st.MissingFields, ", ")))
	}
	if st.Confidence < cfg.MinConfidence {
		st.FlagReview(fmt.Sprintf("classification confidence %.2f below %.2f", st.Confidence, cfg.MinConfidence))
	}
	if st.Tax.GrandTotal != nil && st.Tax.GrandTotal.GreaterThan(cfg.AutoApprovalThreshold) {
		st.ApprovalThresholdExceeded = true
		st.FlagReview(fmt.Sprintf("grand total %s exceeds auto-approval threshold %s",
			st.Tax.GrandTotal, cfg.AutoApprovalThreshold))
	}
	if st.Reconciliation.Executed && len(st.Reconciliation.Matched) == 0 {
		st.FlagReview("bank transactions supplied but no reconciliation match found")
	}

	if currency := stringField(st.Structured, "currency"); currency != "" && !strings.EqualFold(currency, localCurrency) {
		st.FlagReview(fmt.Sprintf("foreign currency %s requires approval", strings.ToUpper(currency)))
	}
	if st.Tax.GrandTotal != nil && st.Tax.GrandTotal.GreaterThanOrEqual(roundAmountUnit) &&
		st.Tax.GrandTotal.Mod(roundAmountUnit).IsZero() {
		st.AddWarning(fmt.Sprintf("grand total %s is a round amount", st.Tax.GrandTotal))
	}
}

// buildOutput assembles the fixed-schema result. Every key is populated even
// for runs that ended in ERROR; slices are never nil.
func buildOutput(st *WorkflowState) *models.Output {
	out := &models.Output{
		DocID:     st.DocID,
		TenantID:  st.TenantID,
		RequestID: st.RequestID,
		Mode:      st.Mode,
		Document: models.DocumentPayload{
			DocType:    st.DocType,
			Confidence: st.Confidence,
			Header:     st.Header,
			Invoice:    st.Invoice,
			Tax:        st.Tax,
			Items:      st.Items,
		},
		Reconciliation:            st.Reconciliation,
		ValidationStatus:          st.Status,
		NeedsHumanReview:          st.NeedsHumanReview,
		ReviewReasons:             st.ReviewReasons,
		ApprovalThresholdExceeded: st.ApprovalThresholdExceeded,
		MissingFields:             st.MissingFields,
		Warnings:                  st.Warnings,
		Evidence:                  excerptEvidence(st.EvidenceLog),
		StepTrace:                 st.Steps,
		ProcessedAt:               time.Now().UTC(),
		ErrorStep:                 st.ErrStep,
		ErrorMessage:              st.ErrMessage,
	}

	if out.ReviewReasons == nil {
		out.ReviewReasons = []string{}
	}
	if out.MissingFields == nil {
		out.MissingFields = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.StepTrace == nil {
		out.StepTrace = []models.StepRecord{}
	}
	if !out.Reconciliation.Executed {
		out.Reconciliation.Matched = []models.ReconcileMatch{}
		out.Reconciliation.UnmatchedInvoices = []string{}
		out.Reconciliation.UnmatchedTransactions = []string{}
	}
	return out
}

// excerptEvidence bounds the evidence log to at most 10 textual and 20
// numeric entries, preserving order.
func excerptEvidence(log []models.Evidence) []models.Evidence {
	excerpt := make([]models.Evidence, 0, len(log))
	textCount, numCount := 0, 0
	for _, e := range log {
		if _, err := decimal.NewFromString(e.Value); err == nil && e.Value != "" {
			if numCount >= maxNumericEvidence {
				continue
			}
			numCount++
		} else {
			if textCount >= maxTextEvidence {
				continue
			}
			textCount++
		}
		excerpt = append(excerpt, e)
	}
	return excerpt
}
