// =============================================================================
// PayPal to GnuCash Importer - YAML Rule Source
// =============================================================================
//
// A YAML rule source is a plain list of routing rules:
//
//   rules:
//     - type: Donation
//       status: Completed
//       account1: PayPal
//       account2: Donations
//       strategy: donation
//     - type: Payment
//       status: Completed
//       account1: PayPal
//       account2: Sales
//       strategy: payment
//
// The strategy field is optional and defaults to "default".
//
// =============================================================================

package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRuleFile is the on-disk layout of a YAML rule source.
type yamlRuleFile struct {
	Rules []yamlRule `yaml:"rules"`
}

// yamlRule is one rule entry.
type yamlRule struct {
	Type     string `yaml:"type"`
	Status   string `yaml:"status"`
	Account1 string `yaml:"account1"`
	Account2 string `yaml:"account2"`
	Strategy string `yaml:"strategy"`
}

// LoadYAML loads routing rules from a YAML file.
func LoadYAML(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file yamlRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("no rules defined")
	}

	loaded := make([]Rule, 0, len(file.Rules))
	for _, r := range file.Rules {
		rule, err := resolveStrategy(Rule{
			Type:         r.Type,
			Status:       r.Status,
			Account1:     r.Account1,
			Account2:     r.Account2,
			StrategyName: r.Strategy,
		}, path)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, rule)
	}

	return loaded, nil
}
