package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

func TestClassifyExplicitDocType(t *testing.T) {
	res := Classify("", map[string]interface{}{"doc_type": "receipt"})
	assert.Equal(t, models.DocTypeReceipt, res.Type)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.FromStructured)
}

func TestClassifyExplicitUnknownDocType(t *testing.T) {
	res := Classify("", map[string]interface{}{"doc_type": "memo"})
	assert.Equal(t, models.DocTypeOther, res.Type)
	assert.Equal(t, 1.0, res.Confidence)
	assert.True(t, res.FromStructured)
}

func TestClassifyKeywords(t *testing.T) {
	res := Classify("hoa don gtgt\nserial AB/23E", nil)
	assert.Equal(t, models.DocTypeVATInvoice, res.Type)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	assert.Contains(t, res.Keywords, "hoa don")
	assert.False(t, res.FromStructured)
}

func TestClassifyReceiptKeywords(t *testing.T) {
	res := Classify("store receipt\ncash total 121000", nil)
	assert.Equal(t, models.DocTypeReceipt, res.Type)
	assert.False(t, res.FromStructured)
}

func TestClassifyBankSlipKeywords(t *testing.T) {
	res := Classify("bank statement\naccount balance", nil)
	assert.Equal(t, models.DocTypeBankSlip, res.Type)
}

func TestClassifyTieFallsBackToOther(t *testing.T) {
	// One vat keyword and one receipt keyword, no bank keywords.
	res := Classify("invoice receipt", nil)
	assert.Equal(t, models.DocTypeOther, res.Type)
	assert.Equal(t, 0.3, res.Confidence)
}

func TestClassifyNoSignal(t *testing.T) {
	res := Classify("nothing relevant here", nil)
	assert.Equal(t, models.DocTypeOther, res.Type)
	assert.Equal(t, 0.3, res.Confidence)
}

func TestClassifyStructuredBonus(t *testing.T) {
	res := Classify("", map[string]interface{}{"tax_id": "0312345678"})
	assert.Equal(t, models.DocTypeVATInvoice, res.Type)
	assert.InDelta(t, 0.7, res.Confidence, 1e-9)
}

func TestClassifyConfidenceClamped(t *testing.T) {
	res := Classify(strings.Repeat("invoice ", 12), nil)
	assert.Equal(t, models.DocTypeVATInvoice, res.Type)
	assert.Equal(t, 0.95, res.Confidence)
}

func TestClassifyKeywordsBounded(t *testing.T) {
	res := Classify("bank sao kê statement transfer swift txn", nil)
	assert.Equal(t, models.DocTypeBankSlip, res.Type)
	assert.LessOrEqual(t, len(res.Keywords), 3)
}

func TestClassifyDeterministic(t *testing.T) {
	text := "hoa don gtgt invoice serial"
	first := Classify(text, nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Classify(text, nil))
	}
}
