package config

import (
	"fmt"
	"math"

	"dartscope/internal/core/errors"
)

// WeightEpsilon is the tolerance for weight tables that must sum to 1.0.
const WeightEpsilon = 1e-6

// Validate checks the whole configuration. Weight-table violations are
// returned as CONFIGURATION_ERROR and abort the run before any scoring
// happens; weights are never silently renormalized.
func (c *Config) Validate() error {
	if err := validateParser(c); err != nil {
		return err
	}
	if err := validateDiscovery(c); err != nil {
		return err
	}
	if err := validateDuplication(c); err != nil {
		return err
	}
	if err := ValidateWeights(c); err != nil {
		return err
	}
	return nil
}

func validateParser(c *Config) error {
	switch c.Parser.Strategy {
	case "auto", "ast", "lexical":
		return nil
	default:
		return fmt.Errorf("parser.strategy must be one of: auto, ast, lexical; got %q", c.Parser.Strategy)
	}
}

func validateDiscovery(c *Config) error {
	if len(c.Discovery.Roots) == 0 {
		return fmt.Errorf("discovery.roots must not be empty")
	}
	return nil
}

func validateDuplication(c *Config) error {
	if c.Duplication.MinTokens < 2 {
		return fmt.Errorf("duplication.min_tokens must be >= 2, got %d", c.Duplication.MinTokens)
	}
	if c.Duplication.MinLines < 1 {
		return fmt.Errorf("duplication.min_lines must be >= 1, got %d", c.Duplication.MinLines)
	}
	if c.Duplication.MaxPairs < 1 {
		return fmt.Errorf("duplication.max_pairs must be >= 1, got %d", c.Duplication.MaxPairs)
	}
	return nil
}

// ValidateWeights checks every declarative weight table that must sum to
// 1.0 within WeightEpsilon.
func ValidateWeights(c *Config) error {
	if err := checkWeightSum("wmfp_weights", c.WMFP.Sum()); err != nil {
		return err
	}
	if err := checkWeightSum("fpy", c.FPY.WeightSum()); err != nil {
		return err
	}
	if err := checkWeightSum("rating", c.Rating.WeightSum()); err != nil {
		return err
	}
	return nil
}

func checkWeightSum(table string, sum float64) error {
	if math.Abs(sum-1.0) > WeightEpsilon {
		return errors.Newf(errors.CodeConfiguration,
			"%s weights must sum to 1.0 within %g, got %g", table, WeightEpsilon, sum)
	}
	return nil
}
