package pipeline

import (
	"strings"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// Keyword sets are ordered slices so scoring is fully deterministic.
var (
	vatInvoiceKeywords = []string{
		"hóa đơn", "hoa don", "gtgt", "tax invoice", "vat", "invoice",
		"mẫu số", "ký hiệu", "serial",
	}
	receiptKeywords = []string{
		"receipt", "phiếu thu", "biên lai", "cash", "pos", "store",
		"thanh toán", "total",
	}
	bankSlipKeywords = []string{
		"bank", "sao kê", "statement", "account balance", "transfer",
		"swift", "txn", "chuyển khoản",
	}
)

// ClassifyResult is the outcome of the classification stage.
type ClassifyResult struct {
	Type           models.DocType
	Confidence     float64
	Keywords       []string
	FromStructured bool
}

// Classify assigns a document type from normalized text and structured
// fields. An explicit doc_type in the structured input is trusted outright.
// Otherwise three keyword sets are scored by case-insensitive substring
// counts; structured identity hints add fixed bonuses. Ties fall back to
// "other". Identical input always yields an identical result.
func Classify(normalized string, structured map[string]interface{}) ClassifyResult {
	if explicit := stringField(structured, "doc_type"); explicit != "" {
		t := models.DocType(explicit)
		if !t.IsValid() {
			t = models.DocTypeOther
		}
		return ClassifyResult{Type: t, Confidence: 1.0, FromStructured: true}
	}

	lower := strings.ToLower(normalized)

	vatScore, vatHits := scoreKeywords(lower, vatInvoiceKeywords)
	receiptScore, receiptHits := scoreKeywords(lower, receiptKeywords)
	bankScore, bankHits := scoreKeywords(lower, bankSlipKeywords)

	if stringField(structured, "invoice_serial") != "" || stringField(structured, "tax_id") != "" {
		vatScore += 2
	}
	if stringField(structured, "store") != "" || stringField(structured, "company") != "" {
		receiptScore += 1
	}

	best := models.DocTypeOther
	bestScore := 0
	bestHits := []string(nil)

	// Strictly-highest wins; any tie keeps "other".
	switch {
	case vatScore > receiptScore && vatScore > bankScore:
		best, bestScore, bestHits = models.DocTypeVATInvoice, vatScore, vatHits
	case receiptScore > vatScore && receiptScore > bankScore:
		best, bestScore, bestHits = models.DocTypeReceipt, receiptScore, receiptHits
	case bankScore > vatScore && bankScore > receiptScore:
		best, bestScore, bestHits = models.DocTypeBankSlip, bankScore, bankHits
	}

	if best == models.DocTypeOther {
		return ClassifyResult{Type: models.DocTypeOther, Confidence: 0.3}
	}

	confidence := 0.5 + 0.1*float64(bestScore)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if len(bestHits) > 3 {
		bestHits = bestHits[:3]
	}
	return ClassifyResult{Type: best, Confidence: confidence, Keywords: bestHits}
}

func scoreKeywords(lower string, keywords []string) (int, []string) {
	score := 0
	var hits []string
	for _, kw := range keywords {
		if n := strings.Count(lower, kw); n > 0 {
			score += n
			hits = append(hits, kw)
		}
	}
	return score, hits
}
