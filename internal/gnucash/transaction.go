// =============================================================================
// PayPal to GnuCash Importer - Transaction Builder
// =============================================================================
//
// Constructs balanced double-entry transaction elements in the GnuCash wire
// format:
//
//   <gnc:transaction version="2.0.0">
//     <trn:id type="guid">9c23...</trn:id>
//     <trn:currency>
//       <cmdty:space>ISO4217</cmdty:space>
//       <cmdty:id>EUR</cmdty:id>
//     </trn:currency>
//     <trn:date-posted><ts:date>2013-01-03 18:32:29 +0100</ts:date></trn:date-posted>
//     <trn:date-entered><ts:date>...</ts:date></trn:date-entered>
//     <trn:description>...</trn:description>
//     <trn:splits>
//       <trn:split>...</trn:split>   <!-- value  v -->
//       <trn:split>...</trn:split>   <!-- value -v -->
//     </trn:splits>
//   </gnc:transaction>
//
// Every transaction and split gets a freshly generated GUID. The two splits
// always carry exactly opposite values in the same currency, so the entry
// balances by construction.
//
// =============================================================================

package gnucash

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gncutils/paypal-import/internal/money"
)

// transactionVersion is the schema version GnuCash expects on gnc:transaction.
const transactionVersion = "2.0.0"

// reconciledStateNew marks a split that has not been reconciled yet. Every
// imported split starts out unreconciled.
const reconciledStateNew = "n"

// =============================================================================
// BUILD PARAMETERS
// =============================================================================

// BuildParams carries everything needed to construct a transaction element.
type BuildParams struct {
	// PostedDate is the formatted posting timestamp (see paypal.FormatTimestamp).
	PostedDate string

	// EnteredDate is the formatted entry timestamp. The driver captures it
	// once at process start and passes it in so construction stays
	// deterministic.
	EnteredDate string

	// Description is the transaction description.
	Description string

	// Value is the exact amount of the first split; the second split gets
	// the exact negation. The currency of the transaction is Value.Currency.
	Value money.Money

	// Account1GUID and Memo1 describe the first split.
	Account1GUID string
	Memo1        string

	// Account2GUID and Memo2 describe the second split.
	Account2GUID string
	Memo2        string
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// NewGUID returns a fresh 32-hex GnuCash identifier.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// BuildTransaction constructs a balanced two-split transaction element.
func BuildTransaction(p BuildParams) *Element {
	return NewElement(elemTransaction).
		SetAttr("version", transactionVersion).
		Append(
			NewTextElement("trn:id", NewGUID()).SetAttr("type", "guid"),
			NewElement("trn:currency").Append(
				NewTextElement("cmdty:space", "ISO4217"),
				NewTextElement("cmdty:id", p.Value.Currency),
			),
			NewElement("trn:date-posted").Append(
				NewTextElement("ts:date", p.PostedDate),
			),
			NewElement("trn:date-entered").Append(
				NewTextElement("ts:date", p.EnteredDate),
			),
			NewTextElement("trn:description", p.Description),
			NewElement("trn:splits").Append(
				buildSplit(p.Account1GUID, p.Memo1, p.Value),
				buildSplit(p.Account2GUID, p.Memo2, p.Value.Neg()),
			),
		)
}

// buildSplit constructs one split leg. Value and quantity carry the same
// fraction: the split is denominated in the transaction currency.
func buildSplit(accountGUID, memo string, value money.Money) *Element {
	return NewElement("trn:split").Append(
		NewTextElement("split:id", NewGUID()).SetAttr("type", "guid"),
		NewTextElement("split:memo", memo),
		NewTextElement("split:reconciled-state", reconciledStateNew),
		NewTextElement("split:value", value.GnucashString()),
		NewTextElement("split:quantity", value.GnucashString()),
		NewTextElement("split:account", accountGUID).SetAttr("type", "guid"),
	)
}
