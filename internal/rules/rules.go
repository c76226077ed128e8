// =============================================================================
// PayPal to GnuCash Importer - Routing Rules Module
// =============================================================================
//
// The routing table decides, per transaction, which two ledger accounts a
// transaction is booked against and which construction strategy builds it.
// Lookup is an exact match on the concatenation of transaction type and
// state ("DonationCompleted"); a miss falls back to the default rule, which
// books the row between "PayPal" and "Imbalance".
//
// Rules come from external sources (YAML files or XLSX sheets, see yaml.go
// and xlsx.go) loaded before processing. Sources are applied in the order
// given on the command line; a later source shadows an earlier one on a key
// collision.
//
// Each rule's construction strategy is a plain function value picked from
// the registry in strategies.go. New behavior means registering a new named
// strategy, not touching the import core.
//
// =============================================================================

package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gncutils/paypal-import/internal/gnucash"
)

// Account names of the fallback rule. Transactions no rule claims end up on
// the Imbalance account where they are easy to find.
const (
	DefaultAccount1 = "PayPal"
	DefaultAccount2 = "Imbalance"
)

// =============================================================================
// RULE
// =============================================================================

// Rule routes one (type, state) combination.
type Rule struct {
	// Type is the PayPal transaction type, e.g. "Donation".
	Type string

	// Status is the transaction state, e.g. "Completed".
	Status string

	// Account1 and Account2 are the display names of the two accounts the
	// transaction is booked against, resolved to GUIDs at import time.
	Account1 string
	Account2 string

	// StrategyName names the construction strategy in the registry.
	StrategyName string

	// Strategy builds the transaction element.
	Strategy Strategy
}

// Key is the routing key: type and state concatenated.
func (r Rule) Key() string {
	return r.Type + r.Status
}

// =============================================================================
// TABLE
// =============================================================================

// Table is the assembled routing table.
type Table struct {
	rules       map[string]Rule
	defaultRule Rule
}

// NewTable creates a table containing only the default rule.
func NewTable() *Table {
	return &Table{
		rules: make(map[string]Rule),
		defaultRule: Rule{
			Account1:     DefaultAccount1,
			Account2:     DefaultAccount2,
			StrategyName: StrategyDefault,
			Strategy:     defaultStrategy,
		},
	}
}

// Add registers a rule. An existing rule with the same key is shadowed;
// sources must therefore be added in precedence order, lowest first.
func (t *Table) Add(rule Rule) {
	t.rules[rule.Key()] = rule
}

// Route returns the rule for the given type and state, or the default rule
// when no registered rule matches exactly.
func (t *Table) Route(txnType, txnStatus string) Rule {
	if rule, ok := t.rules[txnType+txnStatus]; ok {
		return rule
	}
	return t.defaultRule
}

// Len returns the number of registered (non-default) rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// =============================================================================
// SOURCE LOADING
// =============================================================================

// LoadSources loads rule files in order and assembles them into a table.
// Supported source formats are YAML (.yaml/.yml) and XLSX (.xlsx).
func LoadSources(paths []string) (*Table, error) {
	table := NewTable()

	for _, path := range paths {
		var (
			rules []Rule
			err   error
		)

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			rules, err = LoadYAML(path)
		case ".xlsx":
			rules, err = LoadXLSX(path)
		default:
			err = fmt.Errorf("unsupported rule source format %q", filepath.Ext(path))
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load rule source %s: %w", path, err)
		}

		for _, rule := range rules {
			table.Add(rule)
		}
	}

	return table, nil
}

// resolveStrategy attaches the named strategy to a raw rule and validates
// the remaining fields.
func resolveStrategy(rule Rule, source string) (Rule, error) {
	if rule.Type == "" {
		return Rule{}, fmt.Errorf("%s: rule with empty type", source)
	}
	if rule.Account1 == "" || rule.Account2 == "" {
		return Rule{}, fmt.Errorf("%s: rule %q must name two accounts", source, rule.Key())
	}

	if rule.StrategyName == "" {
		rule.StrategyName = StrategyDefault
	}

	strategy, ok := LookupStrategy(rule.StrategyName)
	if !ok {
		return Rule{}, fmt.Errorf("%s: rule %q references unknown strategy %q",
			source, rule.Key(), rule.StrategyName)
	}

	rule.Strategy = strategy
	return rule, nil
}

// =============================================================================
// TRANSACTION CONTEXT
// =============================================================================

// TxnContext is the full transaction context a strategy builds from. Amount
// fields are the raw export strings; the build callback normalizes them.
type TxnContext struct {
	// Type, Name and Status come straight from the record.
	Type   string
	Name   string
	Status string

	// Date is the formatted posting timestamp.
	Date string

	// Currency is the effective transaction currency (after a conversion
	// merge); RealCurrency is the currency the record itself carried.
	Currency     string
	RealCurrency string

	// Gross, Fee and Net are the record's raw amount strings.
	Gross string
	Fee   string
	Net   string

	// Value is the effective raw amount to book (the merged net when a
	// conversion was folded in, the record's net otherwise).
	Value string

	// TransactionID is PayPal's identifier for the record.
	TransactionID string

	// Comment is the synthesized conversion trace, or "".
	Comment string

	// Account1GUID and Account2GUID are the resolved ledger accounts.
	Account1GUID string
	Account2GUID string
}

// BuildFunc constructs a balanced ledger transaction from the routed
// accounts and the raw amount string. Implemented by the import driver.
type BuildFunc func(date, account1GUID, memo1, account2GUID, memo2,
	currency, value, description string) (*gnucash.Element, error)

// Strategy turns a transaction context into a ledger transaction element.
type Strategy func(ctx TxnContext, build BuildFunc) (*gnucash.Element, error)
