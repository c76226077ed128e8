// =============================================================================
// PayPal to GnuCash Importer - Transaction Validation
// =============================================================================
//
// Structural validation of constructed transaction elements against the
// GnuCash grammar before they are appended to the ledger. A violation here
// means the importer assembled something GnuCash itself would reject -- an
// incompatibility with the ledger format that must be surfaced with enough
// context to debug, never silently written out.
//
// A schema violation does not abort the run: the offending transaction is
// reported and dropped, and the remaining records are still imported. The
// fatal error taxonomy (amounts, accounts, conversions, currency) has
// already been enforced upstream by that point.
//
// =============================================================================

package gnucash

import (
	"fmt"
	"math/big"

	"github.com/gncutils/paypal-import/internal/money"
)

// =============================================================================
// SCHEMA VIOLATION ERROR
// =============================================================================

// SchemaViolationError reports a transaction element that violates the
// GnuCash structure.
type SchemaViolationError struct {
	// Element is the name of the offending element.
	Element string

	// Location describes where inside the transaction the problem sits,
	// e.g. "split 2".
	Location string

	// Detail is a human-readable description of the violation.
	Detail string
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("schema violation in %s (%s): %s", e.Element, e.Location, e.Detail)
	}
	return fmt.Sprintf("schema violation in %s: %s", e.Element, e.Detail)
}

// violation builds a SchemaViolationError.
func violation(element, location, format string, args ...interface{}) error {
	return &SchemaViolationError{
		Element:  element,
		Location: location,
		Detail:   fmt.Sprintf(format, args...),
	}
}

// =============================================================================
// ELEMENT GRAMMAR
// =============================================================================

// Children GnuCash accepts on gnc:transaction. The map value marks the ones
// that must be present.
var transactionChildren = map[string]bool{
	"trn:id":           true,
	"trn:currency":     true,
	"trn:date-posted":  true,
	"trn:date-entered": true,
	"trn:description":  false,
	"trn:num":          false,
	"trn:slots":        false,
	"trn:splits":       true,
}

// Children GnuCash accepts on trn:split.
var splitChildren = map[string]bool{
	"split:id":               true,
	"split:memo":             false,
	"split:action":           false,
	"split:reconciled-state": true,
	"split:reconcile-date":   false,
	"split:value":            true,
	"split:quantity":         true,
	"split:account":          true,
	"split:lot":              false,
	"split:slots":            false,
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateTransaction checks a constructed transaction element against the
// GnuCash structure: known elements only, required elements present, exactly
// two splits, split values parse as fractions, sum to zero and share the
// transaction currency.
func ValidateTransaction(el *Element) error {
	if el.Name != elemTransaction {
		return violation(el.Name, "", "expected %s element", elemTransaction)
	}
	if el.Attr("version") != transactionVersion {
		return violation(el.Name, "", "missing or unexpected version attribute %q", el.Attr("version"))
	}

	if err := checkChildren(el, transactionChildren); err != nil {
		return err
	}

	currency := ""
	if c := el.Find("trn:currency"); c != nil {
		currency = c.ChildText("cmdty:id")
		if c.ChildText("cmdty:space") != "ISO4217" {
			return violation("trn:currency", "", "commodity space %q is not ISO4217", c.ChildText("cmdty:space"))
		}
	}
	if currency == "" {
		return violation("trn:currency", "", "missing currency code")
	}

	for _, name := range []string{"trn:date-posted", "trn:date-entered"} {
		if d := el.Find(name); d == nil || d.ChildText("ts:date") == "" {
			return violation(name, "", "missing ts:date value")
		}
	}

	splits := el.Find("trn:splits").FindAll("trn:split")
	if len(splits) != 2 {
		return violation("trn:splits", "", "expected exactly 2 splits, found %d", len(splits))
	}

	sum := new(big.Rat)
	for i, split := range splits {
		loc := fmt.Sprintf("split %d", i+1)

		if err := checkChildren(split, splitChildren); err != nil {
			return err
		}

		if split.ChildText("split:account") == "" {
			return violation("split:account", loc, "missing account reference")
		}
		if state := split.ChildText("split:reconciled-state"); state != reconciledStateNew {
			return violation("split:reconciled-state", loc, "new split has state %q, expected %q", state, reconciledStateNew)
		}

		value := split.ChildText("split:value")
		num, den, err := money.ParseFraction(value)
		if err != nil {
			return violation("split:value", loc, "%v", err)
		}
		if quantity := split.ChildText("split:quantity"); quantity != value {
			return violation("split:quantity", loc, "quantity %q differs from value %q", quantity, value)
		}

		sum.Add(sum, big.NewRat(num, den))
	}

	if sum.Sign() != 0 {
		return violation("trn:splits", "", "split values sum to %s, not zero", sum.RatString())
	}

	return nil
}

// checkChildren verifies an element holds only known children and all
// required ones.
func checkChildren(el *Element, allowed map[string]bool) error {
	seen := make(map[string]bool, len(allowed))

	for _, child := range el.Children {
		if _, known := allowed[child.Name]; !known {
			return violation(child.Name, el.Name, "unrecognized element")
		}
		seen[child.Name] = true
	}

	for name, required := range allowed {
		if required && !seen[name] {
			return violation(name, el.Name, "required element missing")
		}
	}

	return nil
}
