// Package validator performs transport-level checks on incoming process
// requests before they reach the pipeline. Semantic failures (missing
// input, missing fields) are the pipeline's job and are not rejected here.
package validator

import (
	"fmt"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// RequestValidator validates incoming requests against size and shape
// limits.
type RequestValidator struct {
	config *ValidatorConfig
}

// ValidatorConfig bounds request size and shape.
type ValidatorConfig struct {
	MaxTextBytes        int
	MaxBankTransactions int
	MaxBatchSize        int
}

// ValidationResult is the outcome of request validation.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError describes one rejected aspect of the request.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewRequestValidator creates a validator; nil config applies defaults.
func NewRequestValidator(config *ValidatorConfig) *RequestValidator {
	if config == nil {
		config = &ValidatorConfig{
			MaxTextBytes:        1 << 20, // 1MB of OCR text
			MaxBankTransactions: 500,
			MaxBatchSize:        100,
		}
	}
	return &RequestValidator{config: config}
}

// ValidateRequest checks one process request.
func (v *RequestValidator) ValidateRequest(req *models.ProcessRequest) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if req.Mode != "" && req.Mode != string(models.ModeStrict) && req.Mode != string(models.ModeRelaxed) {
		result.add("INVALID_MODE", fmt.Sprintf("mode must be STRICT or RELAXED, got %q", req.Mode), "mode")
	}

	if len(req.OCRText) > v.config.MaxTextBytes {
		result.add("TEXT_TOO_LARGE",
			fmt.Sprintf("ocr_text exceeds maximum size of %d bytes", v.config.MaxTextBytes), "ocr_text")
	}

	if len(req.BankTransactions) > v.config.MaxBankTransactions {
		result.add("TOO_MANY_TRANSACTIONS",
			fmt.Sprintf("at most %d bank transactions allowed", v.config.MaxBankTransactions), "bank_transactions")
	}

	seen := make(map[string]bool, len(req.BankTransactions))
	for i, txn := range req.BankTransactions {
		if txn.TxnID == "" {
			result.add("MISSING_TXN_ID",
				fmt.Sprintf("bank_transactions[%d] has no txn_id", i), "bank_transactions")
			continue
		}
		if seen[txn.TxnID] {
			result.add("DUPLICATE_TXN_ID",
				fmt.Sprintf("duplicate txn_id %q", txn.TxnID), "bank_transactions")
		}
		seen[txn.TxnID] = true
	}

	return result
}

// ValidateBatch checks a batch of requests.
func (v *RequestValidator) ValidateBatch(reqs []*models.ProcessRequest) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if len(reqs) == 0 {
		result.add("EMPTY_BATCH", "no documents provided", "documents")
		return result
	}
	if len(reqs) > v.config.MaxBatchSize {
		result.add("BATCH_TOO_LARGE",
			fmt.Sprintf("at most %d documents per batch", v.config.MaxBatchSize), "documents")
		return result
	}

	for i, req := range reqs {
		sub := v.ValidateRequest(req)
		if !sub.IsValid {
			for _, e := range sub.Errors {
				e.Field = fmt.Sprintf("documents[%d].%s", i, e.Field)
				result.IsValid = false
				result.Errors = append(result.Errors, e)
			}
		}
	}

	return result
}

func (r *ValidationResult) add(code, message, field string) {
	r.IsValid = false
	r.Errors = append(r.Errors, ValidationError{Code: code, Message: message, Field: field})
}
