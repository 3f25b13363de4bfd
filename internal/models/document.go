package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocType classifies the source accounting document.
type DocType string

const (
	DocTypeVATInvoice DocType = "vat_invoice"
	DocTypeReceipt    DocType = "receipt"
	DocTypeBankSlip   DocType = "bank_slip"
	DocTypeOther      DocType = "other"
)

var validDocTypes = map[DocType]bool{
	DocTypeVATInvoice: true,
	DocTypeReceipt:    true,
	DocTypeBankSlip:   true,
	DocTypeOther:      true,
}

// IsValid returns true if the doc type is one of the closed set.
func (t DocType) IsValid() bool {
	return validDocTypes[t]
}

func (t DocType) String() string {
	return string(t)
}

// Mode toggles which fields are mandatory for a document type.
type Mode string

const (
	ModeStrict  Mode = "STRICT"
	ModeRelaxed Mode = "RELAXED"
)

// ParseMode maps a request string to a Mode, defaulting to RELAXED.
func ParseMode(s string) Mode {
	if s == string(ModeStrict) {
		return ModeStrict
	}
	return ModeRelaxed
}

// ValidationStatus is the outcome of the field validation stage.
type ValidationStatus string

const (
	ValidationPass ValidationStatus = "pass"
	ValidationWarn ValidationStatus = "warn"
	ValidationFail ValidationStatus = "fail"
)

// EvidenceSource identifies where an extracted value came from.
type EvidenceSource string

const (
	SourceStructured EvidenceSource = "structured"
	SourceOCR        EvidenceSource = "ocr"
	SourceInferred   EvidenceSource = "inferred"
)

// Evidence links an extracted value to its verifiable origin. Entries are
// append-only and never mutated after creation.
type Evidence struct {
	Field     string         `json:"field"`
	Value     string         `json:"value"`
	Source    EvidenceSource `json:"source"`
	Snippet   string         `json:"snippet,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// BankTransaction is one candidate row from a bank statement.
type BankTransaction struct {
	TxnID   string          `json:"txn_id"`
	Amount  decimal.Decimal `json:"amount"`
	TxnDate string          `json:"txn_date"`
	Memo    string          `json:"memo"`
}

// ProcessRequest is the full input to one pipeline run.
type ProcessRequest struct {
	DocID            string                 `json:"doc_id,omitempty"`
	TenantID         string                 `json:"tenant_id,omitempty"`
	RequestID        string                 `json:"request_id,omitempty"`
	Mode             string                 `json:"mode,omitempty"`
	OCRText          string                 `json:"ocr_text,omitempty"`
	StructuredFields map[string]interface{} `json:"structured_fields,omitempty"`
	BankTransactions []BankTransaction      `json:"bank_transactions,omitempty"`
	FileMetadata     map[string]interface{} `json:"file_metadata,omitempty"`
}

// DocumentHeader holds vendor-level fields of the document.
type DocumentHeader struct {
	Store   string `json:"store,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Date    string `json:"date,omitempty"`
}

// InvoiceInfo holds the identifying fields of a VAT invoice.
type InvoiceInfo struct {
	Serial     string `json:"invoice_serial,omitempty"`
	Number     string `json:"invoice_number,omitempty"`
	TaxID      string `json:"tax_id,omitempty"`
	TaxAccount string `json:"tax_account,omitempty"`
	TaxGroup   string `json:"tax_group,omitempty"`
}

// TaxFigures holds the monetary fields. Nil means the field was absent from
// the source; the pipeline never fabricates amounts.
type TaxFigures struct {
	Subtotal   *decimal.Decimal `json:"subtotal,omitempty"`
	VATRate    *decimal.Decimal `json:"vat_rate,omitempty"`
	VATAmount  *decimal.Decimal `json:"vat_amount,omitempty"`
	GrandTotal *decimal.Decimal `json:"grand_total,omitempty"`
}

// LineItem is one row of the document's item table.
type LineItem struct {
	Description string           `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// DocumentPayload is the fixed four-section extraction result.
type DocumentPayload struct {
	DocType    DocType        `json:"doc_type"`
	Confidence float64        `json:"confidence"`
	Header     DocumentHeader `json:"header"`
	Invoice    InvoiceInfo    `json:"invoice"`
	Tax        TaxFigures     `json:"tax"`
	Items      []LineItem     `json:"items,omitempty"`
}

// ReconcileMatch pairs an invoice with its best-scoring bank transaction.
type ReconcileMatch struct {
	InvoiceID  string          `json:"invoice_id"`
	TxnID      string          `json:"txn_id"`
	MatchScore float64         `json:"match_score"`
	Reasons    []string        `json:"reasons"`
	AmountDiff decimal.Decimal `json:"amount_diff"`
}

// ReconcileResult is the full outcome of the reconciliation stage.
type ReconcileResult struct {
	Executed              bool             `json:"executed"`
	Matched               []ReconcileMatch `json:"matched"`
	UnmatchedInvoices     []string         `json:"unmatched_invoices"`
	UnmatchedTransactions []string         `json:"unmatched_transactions"`
}

// StepRecord is one entry of the pipeline step trace.
type StepRecord struct {
	Stage     string                 `json:"stage"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Output is the fixed-schema result of one pipeline run. Every key is
// present even when the run ends in ERROR.
type Output struct {
	DocID                     string           `json:"doc_id"`
	TenantID                  string           `json:"tenant_id,omitempty"`
	RequestID                 string           `json:"request_id,omitempty"`
	Mode                      Mode             `json:"mode"`
	Document                  DocumentPayload  `json:"document"`
	Reconciliation            ReconcileResult  `json:"reconciliation"`
	ValidationStatus          ValidationStatus `json:"validation_status"`
	NeedsHumanReview          bool             `json:"needs_human_review"`
	ReviewReasons             []string         `json:"review_reasons"`
	ApprovalThresholdExceeded bool             `json:"approval_threshold_exceeded"`
	MissingFields             []string         `json:"missing_fields"`
	Warnings                  []string         `json:"warnings"`
	Evidence                  []Evidence       `json:"evidence"`
	StepTrace                 []StepRecord     `json:"step_trace"`
	ProcessedAt               time.Time        `json:"processed_at"`
	ErrorStep                 string           `json:"error_step,omitempty"`
	ErrorMessage              string           `json:"error_message,omitempty"`
}
