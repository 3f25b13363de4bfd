package validator

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

func codes(result *ValidationResult) []string {
	out := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		out[i] = e.Code
	}
	return out
}

func TestValidateRequestAcceptsMinimal(t *testing.T) {
	v := NewRequestValidator(nil)
	result := v.ValidateRequest(&models.ProcessRequest{OCRText: "hoa don"})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidateRequestEmptyIsTransportValid(t *testing.T) {
	// Missing input is a pipeline concern, not a transport rejection.
	v := NewRequestValidator(nil)
	result := v.ValidateRequest(&models.ProcessRequest{})
	assert.True(t, result.IsValid)
}

func TestValidateRequestInvalidMode(t *testing.T) {
	v := NewRequestValidator(nil)
	result := v.ValidateRequest(&models.ProcessRequest{Mode: "LOOSE"})
	assert.False(t, result.IsValid)
	assert.Contains(t, codes(result), "INVALID_MODE")
}

func TestValidateRequestTextTooLarge(t *testing.T) {
	v := NewRequestValidator(&ValidatorConfig{
		MaxTextBytes:        16,
		MaxBankTransactions: 500,
		MaxBatchSize:        100,
	})
	result := v.ValidateRequest(&models.ProcessRequest{OCRText: strings.Repeat("x", 17)})
	assert.False(t, result.IsValid)
	assert.Contains(t, codes(result), "TEXT_TOO_LARGE")
}

func TestValidateRequestTransactionLimits(t *testing.T) {
	v := NewRequestValidator(&ValidatorConfig{
		MaxTextBytes:        1 << 20,
		MaxBankTransactions: 2,
		MaxBatchSize:        100,
	})
	txns := []models.BankTransaction{
		{TxnID: "a", Amount: decimal.NewFromInt(1)},
		{TxnID: "b", Amount: decimal.NewFromInt(2)},
		{TxnID: "c", Amount: decimal.NewFromInt(3)},
	}
	result := v.ValidateRequest(&models.ProcessRequest{BankTransactions: txns})
	assert.False(t, result.IsValid)
	assert.Contains(t, codes(result), "TOO_MANY_TRANSACTIONS")
}

func TestValidateRequestTxnIDs(t *testing.T) {
	v := NewRequestValidator(nil)

	t.Run("missing txn id", func(t *testing.T) {
		result := v.ValidateRequest(&models.ProcessRequest{
			BankTransactions: []models.BankTransaction{{Amount: decimal.NewFromInt(1)}},
		})
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result), "MISSING_TXN_ID")
	})

	t.Run("duplicate txn id", func(t *testing.T) {
		result := v.ValidateRequest(&models.ProcessRequest{
			BankTransactions: []models.BankTransaction{
				{TxnID: "txn-1", Amount: decimal.NewFromInt(1)},
				{TxnID: "txn-1", Amount: decimal.NewFromInt(2)},
			},
		})
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result), "DUPLICATE_TXN_ID")
	})
}

func TestValidateBatch(t *testing.T) {
	v := NewRequestValidator(&ValidatorConfig{
		MaxTextBytes:        1 << 20,
		MaxBankTransactions: 500,
		MaxBatchSize:        2,
	})

	t.Run("empty batch", func(t *testing.T) {
		result := v.ValidateBatch(nil)
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result), "EMPTY_BATCH")
	})

	t.Run("too large", func(t *testing.T) {
		reqs := []*models.ProcessRequest{{}, {}, {}}
		result := v.ValidateBatch(reqs)
		assert.False(t, result.IsValid)
		assert.Contains(t, codes(result), "BATCH_TOO_LARGE")
	})

	t.Run("per document errors carry index", func(t *testing.T) {
		reqs := []*models.ProcessRequest{
			{OCRText: "ok"},
			{Mode: "LOOSE"},
		}
		result := v.ValidateBatch(reqs)
		require.False(t, result.IsValid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "documents[1].mode", result.Errors[0].Field)
	})
}
