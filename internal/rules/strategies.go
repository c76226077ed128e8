// =============================================================================
// PayPal to GnuCash Importer - Construction Strategies
// =============================================================================
//
// A strategy decides how a routed transaction is rendered into the ledger:
// the memos on the two splits and the description on the transaction. The
// registry maps the strategy names rule sources may reference to function
// values.
//
// The default strategy produces a deliberately verbose description that
// encodes everything needed to audit the row later (type, payer, state,
// PayPal id, gross/fee/net in the original currency) because transactions
// it handles have, by definition, not been classified by any rule.
//
// =============================================================================

package rules

import (
	"fmt"

	"github.com/gncutils/paypal-import/internal/gnucash"
)

// Names of the built-in strategies.
const (
	StrategyDefault  = "default"
	StrategyPayment  = "payment"
	StrategyDonation = "donation"
)

// strategies is the registry rule sources resolve strategy names against.
var strategies = map[string]Strategy{
	StrategyDefault:  defaultStrategy,
	StrategyPayment:  paymentStrategy,
	StrategyDonation: donationStrategy,
}

// LookupStrategy returns the named strategy.
func LookupStrategy(name string) (Strategy, bool) {
	s, ok := strategies[name]
	return s, ok
}

// StrategyNames returns the registered strategy names (for error messages
// and help output).
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	return names
}

// =============================================================================
// BUILT-IN STRATEGIES
// =============================================================================

// defaultStrategy books an unclassified transaction with a full audit trail
// in the description.
func defaultStrategy(ctx TxnContext, build BuildFunc) (*gnucash.Element, error) {
	description := fmt.Sprintf(
		"PayPal %s from %s - state: %s - ID: %s - gross: %s %s - fee: %s %s - net %s %s %s",
		ctx.Type, ctx.Name, ctx.Status, ctx.TransactionID,
		ctx.RealCurrency, ctx.Gross,
		ctx.RealCurrency, ctx.Fee,
		ctx.RealCurrency, ctx.Net,
		ctx.Comment)

	return build(ctx.Date,
		ctx.Account1GUID, "Unknown transaction",
		ctx.Account2GUID, "Unknown PayPal",
		ctx.Currency, ctx.Value, description)
}

// paymentStrategy books a classified payment with the counterparty in the
// description and the PayPal id on the memos.
func paymentStrategy(ctx TxnContext, build BuildFunc) (*gnucash.Element, error) {
	memo := fmt.Sprintf("PayPal ID: %s %s", ctx.TransactionID, ctx.Comment)

	return build(ctx.Date,
		ctx.Account1GUID, memo,
		ctx.Account2GUID, memo,
		ctx.Currency, ctx.Value,
		fmt.Sprintf("PayPal payment from %s", ctx.Name))
}

// donationStrategy books a donation; the payer name goes into the
// description so donor reports stay readable in the ledger.
func donationStrategy(ctx TxnContext, build BuildFunc) (*gnucash.Element, error) {
	memo := fmt.Sprintf("PayPal ID: %s %s", ctx.TransactionID, ctx.Comment)

	return build(ctx.Date,
		ctx.Account1GUID, memo,
		ctx.Account2GUID, memo,
		ctx.Currency, ctx.Value,
		fmt.Sprintf("Donation from %s", ctx.Name))
}
