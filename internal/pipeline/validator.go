package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// amountTolerance is the slack allowed in the subtotal+vat=total check, in
// currency units. Rounding on printed documents makes exact equality too
// strict.
var amountTolerance = decimal.NewFromInt(1)

// requiredFields returns the ordered required-field names for a document
// type and mode combination.
func requiredFields(docType models.DocType, mode models.Mode) []string {
	switch {
	case docType == models.DocTypeVATInvoice && mode == models.ModeStrict:
		return []string{"invoice_serial", "invoice_number", "date", "tax_id", "tax_account", "tax_group"}
	case docType == models.DocTypeVATInvoice && mode == models.ModeRelaxed:
		return []string{"invoice_serial", "invoice_number"}
	case docType == models.DocTypeReceipt && mode == models.ModeStrict:
		return []string{"grand_total"}
	default:
		return nil
	}
}

// Validate checks required-field completeness and arithmetic consistency,
// then resolves the validation status on the state.
func Validate(st *WorkflowState) {
	for _, field := range requiredFields(st.DocType, st.Mode) {
		if !fieldPresent(st, field) {
			st.AddMissingField(field)
		}
	}

	checkArithmetic(st)

	switch {
	case st.Mode == models.ModeStrict && st.DocType == models.DocTypeVATInvoice && len(st.MissingFields) > 0:
		st.Status = models.ValidationFail
	case len(st.Warnings) > 0 || (len(st.MissingFields) > 0 && st.DocType != models.DocTypeVATInvoice):
		st.Status = models.ValidationWarn
	default:
		st.Status = models.ValidationPass
	}
}

func fieldPresent(st *WorkflowState, field string) bool {
	switch field {
	case "invoice_serial":
		return st.Invoice.Serial != ""
	case "invoice_number":
		return st.Invoice.Number != ""
	case "date":
		return st.Header.Date != ""
	case "tax_id":
		return st.Invoice.TaxID != ""
	case "tax_account":
		return st.Invoice.TaxAccount != ""
	case "tax_group":
		return st.Invoice.TaxGroup != ""
	case "grand_total":
		return st.Tax.GrandTotal != nil
	default:
		return false
	}
}

// checkArithmetic asserts subtotal + vat_amount == grand_total within one
// currency unit when all three amounts are present. A violation is a
// warning, never a hard failure.
func checkArithmetic(st *WorkflowState) {
	if st.Tax.Subtotal == nil || st.Tax.VATAmount == nil || st.Tax.GrandTotal == nil {
		return
	}
	sum := st.Tax.Subtotal.Add(*st.Tax.VATAmount)
	if sum.Sub(*st.Tax.GrandTotal).Abs().GreaterThan(amountTolerance) {
		st.AddWarning(fmt.Sprintf(
			"amount mismatch: subtotal %s + vat %s != grand total %s",
			st.Tax.Subtotal, st.Tax.VATAmount, st.Tax.GrandTotal,
		))
	}
}
