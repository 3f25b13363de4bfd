package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

func newState(text string, structured map[string]interface{}) *WorkflowState {
	return NewWorkflowState(&models.ProcessRequest{
		OCRText:          text,
		StructuredFields: structured,
	})
}

func TestExtractHeaderFromStructured(t *testing.T) {
	st := newState("", map[string]interface{}{
		"store":   "Circle K",
		"company": "Circle K Vietnam",
		"address": "123 Le Loi, HCMC",
		"date":    "15/03/2024",
	})
	Extract(st)

	assert.Equal(t, "Circle K", st.Header.Store)
	assert.Equal(t, "Circle K Vietnam", st.Header.Company)
	assert.Equal(t, "123 Le Loi, HCMC", st.Header.Address)
	assert.Equal(t, "15/03/2024", st.Header.Date)

	for _, e := range st.EvidenceLog {
		assert.Equal(t, models.SourceStructured, e.Source)
	}
}

func TestExtractDateFallbackFromText(t *testing.T) {
	st := newState("Ngay thanh toan 15/03/2024 tai quay", nil)
	st.NormalizedText = NormalizeText(st.RawText)
	Extract(st)

	assert.Equal(t, "15/03/2024", st.Header.Date)

	var found bool
	for _, e := range st.EvidenceLog {
		if e.Field == "header.date" {
			found = true
			assert.Equal(t, models.SourceOCR, e.Source)
			assert.Equal(t, "15/03/2024", e.Snippet)
		}
	}
	assert.True(t, found, "date fallback must leave an evidence entry")
}

func TestExtractDateISOFormat(t *testing.T) {
	st := newState("issued 2024-03-15 by system", nil)
	st.NormalizedText = NormalizeText(st.RawText)
	Extract(st)
	assert.Equal(t, "2024-03-15", st.Header.Date)
}

func TestExtractNoDateInvented(t *testing.T) {
	st := newState("no usable date here 123/456", map[string]interface{}{"store": "X"})
	st.NormalizedText = NormalizeText(st.RawText)
	Extract(st)
	assert.Empty(t, st.Header.Date)
}

func TestExtractInvoiceInfo(t *testing.T) {
	st := newState("", map[string]interface{}{
		"invoice_serial": "AB/23E",
		"invoice_number": "0001234",
		"tax_id":         "0312345678",
		"tax_account":    "33311",
		"tax_group":      "10",
	})
	Extract(st)

	assert.Equal(t, "AB/23E", st.Invoice.Serial)
	assert.Equal(t, "0001234", st.Invoice.Number)
	assert.Equal(t, "0312345678", st.Invoice.TaxID)
	assert.Equal(t, "33311", st.Invoice.TaxAccount)
	assert.Equal(t, "10", st.Invoice.TaxGroup)
}

func TestExtractTaxFigures(t *testing.T) {
	st := newState("", map[string]interface{}{
		"subtotal":    float64(110000),
		"vat_rate":    float64(10),
		"vat_amount":  float64(11000),
		"grand_total": "121,000",
	})
	Extract(st)

	require.NotNil(t, st.Tax.Subtotal)
	require.NotNil(t, st.Tax.GrandTotal)
	assert.True(t, st.Tax.Subtotal.Equal(decimal.NewFromInt(110000)))
	assert.True(t, st.Tax.GrandTotal.Equal(decimal.NewFromInt(121000)))
}

func TestExtractNullFieldsStayAbsent(t *testing.T) {
	st := newState("", map[string]interface{}{
		"invoice_serial": nil,
		"grand_total":    nil,
	})
	Extract(st)

	assert.Empty(t, st.Invoice.Serial)
	assert.Nil(t, st.Tax.GrandTotal)
	assert.Empty(t, st.EvidenceLog, "absent fields must not produce evidence")
}

func TestInferVATRate(t *testing.T) {
	d := func(v int64) *decimal.Decimal {
		x := decimal.NewFromInt(v)
		return &x
	}

	t.Run("exact ten percent", func(t *testing.T) {
		rate := inferVATRate(d(11000), d(110000))
		require.NotNil(t, rate)
		assert.True(t, rate.Equal(decimal.NewFromInt(10)))
	})

	t.Run("snaps within one point", func(t *testing.T) {
		// 10450/110000 = 9.5% snaps to 10.
		rate := inferVATRate(d(10450), d(110000))
		require.NotNil(t, rate)
		assert.True(t, rate.Equal(decimal.NewFromInt(10)))
	})

	t.Run("eight percent rate", func(t *testing.T) {
		rate := inferVATRate(d(8000), d(100000))
		require.NotNil(t, rate)
		assert.True(t, rate.Equal(decimal.NewFromInt(8)))
	})

	t.Run("out of set rate is not guessed", func(t *testing.T) {
		// 15% is not an allowed rate.
		assert.Nil(t, inferVATRate(d(15000), d(100000)))
	})

	t.Run("zero subtotal", func(t *testing.T) {
		assert.Nil(t, inferVATRate(d(11000), d(0)))
	})

	t.Run("missing inputs", func(t *testing.T) {
		assert.Nil(t, inferVATRate(nil, d(100000)))
		assert.Nil(t, inferVATRate(d(11000), nil))
	})
}

func TestExtractInfersVATRateWithEvidence(t *testing.T) {
	st := newState("", map[string]interface{}{
		"subtotal":   float64(110000),
		"vat_amount": float64(11000),
	})
	Extract(st)

	require.NotNil(t, st.Tax.VATRate)
	assert.True(t, st.Tax.VATRate.Equal(decimal.NewFromInt(10)))

	var inferred bool
	for _, e := range st.EvidenceLog {
		if e.Field == "tax.vat_rate" {
			inferred = true
			assert.Equal(t, models.SourceInferred, e.Source)
		}
	}
	assert.True(t, inferred)
}

func TestExtractLineItems(t *testing.T) {
	st := newState("", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{
				"description": "Coffee",
				"quantity":    float64(2),
				"unit_price":  float64(25000),
				"amount":      float64(50000),
			},
			map[string]interface{}{
				"description": "Water",
				"amount":      float64(10000),
			},
			"not a row",
		},
	})
	Extract(st)

	require.Len(t, st.Items, 2)
	assert.Equal(t, "Coffee", st.Items[0].Description)
	require.NotNil(t, st.Items[0].Quantity)
	assert.True(t, st.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "Water", st.Items[1].Description)
	assert.Nil(t, st.Items[1].UnitPrice)
}

func TestExtractIgnoresMalformedItems(t *testing.T) {
	st := newState("", map[string]interface{}{"items": "not a list"})
	Extract(st)
	assert.Empty(t, st.Items)
}
