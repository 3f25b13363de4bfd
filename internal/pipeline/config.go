package pipeline

import (
	"github.com/shopspring/decimal"
)

// Config holds the tunable thresholds of the pipeline. All values have
// working defaults. Overrides come from the yaml
// pipeline file loaded by the config package.
type Config struct {
	// AmountTolerancePercent is the percent difference accepted for the
	// mid-strength amount signal during reconciliation.
	AmountTolerancePercent float64

	// AmountToleranceFixed is the absolute currency-unit difference
	// accepted for the weakest amount signal.
	AmountToleranceFixed decimal.Decimal

	// DateWindowDays is the window for the near-date signal.
	DateWindowDays int

	// MinMatchScore is the acceptance floor for a candidate match.
	MinMatchScore float64

	// MinConfidence is the classification confidence below which the
	// document is routed to a human.
	MinConfidence float64

	// AutoApprovalThreshold is the grand-total cutoff above which review
	// is mandatory regardless of other checks.
	AutoApprovalThreshold decimal.Decimal
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		AmountTolerancePercent: 0.5,
		AmountToleranceFixed:   decimal.NewFromInt(1000),
		DateWindowDays:         3,
		MinMatchScore:          0.5,
		MinConfidence:          0.5,
		AutoApprovalThreshold:  decimal.NewFromInt(10_000_000),
	}
}
