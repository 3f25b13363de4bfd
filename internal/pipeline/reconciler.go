package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/haiphan0412/invoice-gate/internal/models"
)

// txnDateFormats are tried in order; an unparseable date simply contributes
// nothing to the date signal.
var txnDateFormats = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// InvoiceView is the slice of an extracted document that reconciliation
// needs.
type InvoiceView struct {
	InvoiceID string
	Amount    *decimal.Decimal
	Date      string
	Vendor    string
	Number    string
}

// candidate is one accepted (invoice, transaction) pairing before best-match
// selection.
type candidate struct {
	txnIndex int
	match    models.ReconcileMatch
}

// Reconcile scores every bank transaction against every invoice using
// amount, date and memo-keyword signals, and keeps at most one best match
// per invoice. A transaction consumed by one invoice is never offered to a
// later one. Returned warnings are non-fatal.
func Reconcile(invoices []InvoiceView, txns []models.BankTransaction, cfg *Config) (models.ReconcileResult, []string) {
	result := models.ReconcileResult{
		Executed:              true,
		Matched:               []models.ReconcileMatch{},
		UnmatchedInvoices:     []string{},
		UnmatchedTransactions: []string{},
	}
	var warnings []string

	consumed := make([]bool, len(txns))

	for _, inv := range invoices {
		var candidates []candidate
		for i, txn := range txns {
			if consumed[i] {
				continue
			}
			score, reasons, diff := scoreTransaction(inv, txn, cfg)
			if score < cfg.MinMatchScore {
				continue
			}
			candidates = append(candidates, candidate{
				txnIndex: i,
				match: models.ReconcileMatch{
					InvoiceID:  inv.InvoiceID,
					TxnID:      txn.TxnID,
					MatchScore: score,
					Reasons:    reasons,
					AmountDiff: diff,
				},
			})
		}

		if len(candidates) == 0 {
			result.UnmatchedInvoices = append(result.UnmatchedInvoices, inv.InvoiceID)
			warnings = append(warnings, fmt.Sprintf("no reconciliation match for invoice %s", inv.InvoiceID))
			continue
		}

		// Highest score wins; ties keep the first encountered.
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.match.MatchScore > best.match.MatchScore {
				best = c
			}
		}
		consumed[best.txnIndex] = true
		result.Matched = append(result.Matched, best.match)
	}

	for i, txn := range txns {
		if !consumed[i] {
			result.UnmatchedTransactions = append(result.UnmatchedTransactions, txn.TxnID)
		}
	}

	return result, warnings
}

// scoreTransaction computes the additive match score. Each signal
// contributes at most once; the total is clamped to 1.0.
func scoreTransaction(inv InvoiceView, txn models.BankTransaction, cfg *Config) (float64, []string, decimal.Decimal) {
	score := 0.0
	var reasons []string
	diff := decimal.Zero

	if inv.Amount != nil {
		diff = txn.Amount.Sub(*inv.Amount).Abs()
		switch {
		case txn.Amount.Equal(*inv.Amount):
			score += 0.5
			reasons = append(reasons, "amount exact (+0.5)")
		case withinPercent(diff, *inv.Amount, cfg.AmountTolerancePercent):
			score += 0.4
			reasons = append(reasons, fmt.Sprintf("amount within %.2f%% (+0.4)", cfg.AmountTolerancePercent))
		case diff.LessThanOrEqual(cfg.AmountToleranceFixed):
			score += 0.3
			reasons = append(reasons, fmt.Sprintf("amount within %s (+0.3)", cfg.AmountToleranceFixed))
		}
	}

	invDate, invOK := parseTxnDate(inv.Date)
	txnDate, txnOK := parseTxnDate(txn.TxnDate)
	if invOK && txnOK {
		dayDiff := daysBetween(invDate, txnDate)
		switch {
		case dayDiff == 0:
			score += 0.3
			reasons = append(reasons, "same date (+0.3)")
		case dayDiff <= cfg.DateWindowDays:
			score += 0.2
			reasons = append(reasons, fmt.Sprintf("date within %d days (+0.2)", cfg.DateWindowDays))
		}
	}

	memo := strings.ToLower(txn.Memo)
	if inv.Vendor != "" && strings.Contains(memo, strings.ToLower(inv.Vendor)) {
		score += 0.15
		reasons = append(reasons, "vendor in memo (+0.15)")
	}
	if inv.Number != "" && strings.Contains(memo, strings.ToLower(inv.Number)) {
		score += 0.15
		reasons = append(reasons, "invoice number in memo (+0.15)")
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, reasons, diff
}

func withinPercent(diff, base decimal.Decimal, tolerancePercent float64) bool {
	if base.IsZero() {
		return false
	}
	pct := diff.Div(base.Abs()).Mul(decimal.NewFromInt(100))
	return pct.LessThanOrEqual(decimal.NewFromFloat(tolerancePercent))
}

func parseTxnDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range txnDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func daysBetween(a, b time.Time) int {
	a = a.Truncate(24 * time.Hour)
	b = b.Truncate(24 * time.Hour)
	d := int(b.Sub(a).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}
