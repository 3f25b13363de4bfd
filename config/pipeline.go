package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/haiphan0412/invoice-gate/internal/pipeline"
)

// pipelineFile mirrors the yaml tuning file. Amounts are plain numbers in
// yaml and converted to decimals on load.
type pipelineFile struct {
	AmountTolerancePercent *float64 `yaml:"amountTolerancePercent"`
	AmountToleranceFixed   *int64   `yaml:"amountToleranceFixed"`
	DateWindowDays         *int     `yaml:"dateWindowDays"`
	MinMatchScore          *float64 `yaml:"minMatchScore"`
	MinConfidence          *float64 `yaml:"minConfidence"`
	AutoApprovalThreshold  *int64   `yaml:"autoApprovalThreshold"`
}

// LoadPipeline reads the yaml tuning file at path and overlays it on the
// pipeline defaults. An empty path checks PIPELINE_CONFIG; a missing file
// just returns the defaults.
func LoadPipeline(path string) (*pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	if path == "" {
		loadDotenv()
		path = os.Getenv("PIPELINE_CONFIG")
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	var file pipelineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if file.AmountTolerancePercent != nil {
		cfg.AmountTolerancePercent = *file.AmountTolerancePercent
	}
	if file.AmountToleranceFixed != nil {
		cfg.AmountToleranceFixed = decimal.NewFromInt(*file.AmountToleranceFixed)
	}
	if file.DateWindowDays != nil {
		cfg.DateWindowDays = *file.DateWindowDays
	}
	if file.MinMatchScore != nil {
		cfg.MinMatchScore = *file.MinMatchScore
	}
	if file.MinConfidence != nil {
		cfg.MinConfidence = *file.MinConfidence
	}
	if file.AutoApprovalThreshold != nil {
		cfg.AutoApprovalThreshold = decimal.NewFromInt(*file.AutoApprovalThreshold)
	}

	return cfg, nil
}
