package pipeline

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// Date patterns tried in order against normalized text when the structured
// input carries no date. This is the only free-text extraction allowed.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{2}-\d{2}-\d{4}\b`),
}

// allowedVATRates is the closed set a computed rate may snap to.
var allowedVATRates = []int64{0, 5, 8, 10}

// vatRateSnapTolerance is the max distance, in percentage points, between a
// computed rate and an allowed rate.
var vatRateSnapTolerance = decimal.NewFromInt(1)

// Extract populates the four fixed document sections on the state. String
// and numeric fields come from structured input only; dates may additionally
// be pattern-matched from normalized text. Every value gets an evidence
// entry naming its origin.
func Extract(st *WorkflowState) {
	extractHeader(st)
	extractInvoiceInfo(st)
	extractTaxFigures(st)
	extractLineItems(st)
}

func extractHeader(st *WorkflowState) {
	st.Header.Store = takeString(st, "store", "header.store")
	st.Header.Company = takeString(st, "company", "header.company")
	st.Header.Address = takeString(st, "address", "header.address")

	if date := takeString(st, "date", "header.date"); date != "" {
		st.Header.Date = date
		return
	}
	if date := takeString(st, "invoice_date", "header.date"); date != "" {
		st.Header.Date = date
		return
	}

	// Fallback: recognize a date in the normalized text.
	for _, re := range datePatterns {
		if m := re.FindString(st.NormalizedText); m != "" {
			st.Header.Date = m
			st.AddEvidence("header.date", m, models.SourceOCR, m)
			return
		}
	}
}

func extractInvoiceInfo(st *WorkflowState) {
	st.Invoice.Serial = takeString(st, "invoice_serial", "invoice.serial")
	st.Invoice.Number = takeString(st, "invoice_number", "invoice.number")
	st.Invoice.TaxID = takeString(st, "tax_id", "invoice.tax_id")
	st.Invoice.TaxAccount = takeString(st, "tax_account", "invoice.tax_account")
	st.Invoice.TaxGroup = takeString(st, "tax_group", "invoice.tax_group")
}

func extractTaxFigures(st *WorkflowState) {
	st.Tax.Subtotal = takeDecimal(st, "subtotal", "tax.subtotal")
	st.Tax.VATRate = takeDecimal(st, "vat_rate", "tax.vat_rate")
	st.Tax.VATAmount = takeDecimal(st, "vat_amount", "tax.vat_amount")
	st.Tax.GrandTotal = takeDecimal(st, "grand_total", "tax.grand_total")

	if st.Tax.VATRate == nil {
		if rate := inferVATRate(st.Tax.VATAmount, st.Tax.Subtotal); rate != nil {
			st.Tax.VATRate = rate
			st.AddEvidence("tax.vat_rate", rate.String(), models.SourceInferred,
				"computed from vat_amount/subtotal")
		}
	}
}

func extractLineItems(st *WorkflowState) {
	raw, ok := st.Structured["items"]
	if !ok {
		return
	}
	list, ok := raw.([]interface{})
	if !ok {
		return
	}
	for _, entry := range list {
		row, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		item := models.LineItem{
			Description: stringField(row, "description"),
			Quantity:    decimalField(row, "quantity"),
			UnitPrice:   decimalField(row, "unit_price"),
			Amount:      decimalField(row, "amount"),
		}
		st.Items = append(st.Items, item)
	}
	if len(st.Items) > 0 {
		st.AddEvidence("items", "", models.SourceStructured, "")
	}
}

// inferVATRate computes amount/subtotal*100 and snaps it to the nearest
// allowed rate within tolerance. Out-of-set rates are never guessed.
func inferVATRate(amount, subtotal *decimal.Decimal) *decimal.Decimal {
	if amount == nil || subtotal == nil || subtotal.IsZero() {
		return nil
	}
	computed := amount.Div(*subtotal).Mul(decimal.NewFromInt(100))
	for _, allowed := range allowedVATRates {
		candidate := decimal.NewFromInt(allowed)
		if computed.Sub(candidate).Abs().LessThanOrEqual(vatRateSnapTolerance) {
			return &candidate
		}
	}
	return nil
}

func takeString(st *WorkflowState, key, field string) string {
	v := stringField(st.Structured, key)
	if v != "" {
		st.AddEvidence(field, v, models.SourceStructured, key)
	}
	return v
}

func takeDecimal(st *WorkflowState, key, field string) *decimal.Decimal {
	v := decimalField(st.Structured, key)
	if v != nil {
		st.AddEvidence(field, v.String(), models.SourceStructured, key)
	}
	return v
}
