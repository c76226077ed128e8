// =============================================================================
// PayPal to GnuCash Importer - Import Errors
// =============================================================================
//
// Fatal error types raised by the import driver. Together with the
// normalization and merge errors defined next to their producers
// (paypal.MalformedAmountError, paypal.InconsistentConversionError,
// gnucash.SchemaViolationError) they form the full taxonomy of the run.
//
// Everything in this file is fatal: the run aborts and no output is
// written.
//
// =============================================================================

package importer

import (
	"fmt"
)

// UnknownAccountError reports an account name no ledger account matched.
type UnknownAccountError struct {
	// Name is the account name that failed to resolve.
	Name string
}

// Error implements the error interface.
func (e *UnknownAccountError) Error() string {
	return fmt.Sprintf("did not find account with name %q in current book", e.Name)
}

// WrongCurrencyError reports a transaction whose effective currency is not
// the ledger's base currency.
type WrongCurrencyError struct {
	// Line is the source line of the offending record.
	Line int

	// Currency is the effective currency encountered.
	Currency string

	// Expected is the ledger's base currency.
	Expected string
}

// Error implements the error interface.
func (e *WrongCurrencyError) Error() string {
	return fmt.Sprintf("wrong currency %q for main transaction at line %d, expected %q",
		e.Currency, e.Line, e.Expected)
}
