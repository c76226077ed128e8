// =============================================================================
// PayPal to GnuCash Importer - Account Resolver
// =============================================================================
//
// Maps the human-readable account names routing rules use to the stable
// GUIDs the ledger addresses accounts by.
//
// LOOKUP SEMANTICS:
//   A name matches the first account in document order whose display name
//   contains it as a substring. This is intentionally loose: rules say
//   "Donations" and match "Income:Donations 2013". When several accounts
//   match, the first one wins; if the ledger is ambiguous enough for that
//   to pick the wrong account, the fix is a more specific rule name.
//
// CACHING:
//   Resolution is memoized in an explicit name-to-GUID table. Repeat
//   lookups of the same name hit the cache and never rescan the document,
//   so resolution is idempotent: one identity per distinct name per run.
//
// =============================================================================

package importer

import (
	"strings"

	"github.com/gncutils/paypal-import/internal/gnucash"
)

// AccountCache resolves account names against a ledger document, memoizing
// results.
type AccountCache struct {
	accounts []gnucash.Account
	byName   map[string]string

	// scans counts document scans, exposed for tests asserting cache hits.
	scans int
}

// NewAccountCache creates a resolver over the document's account list.
// The list is captured once; the import pipeline never adds accounts.
func NewAccountCache(doc *gnucash.Document) *AccountCache {
	return &AccountCache{
		accounts: doc.Accounts(),
		byName:   make(map[string]string),
	}
}

// Resolve maps an account name to its ledger identity.
//
// PARAMETERS:
//   - name: The display name (or distinctive substring) of the account.
//
// RETURNS:
//   - The account reference (GUID plus the name used to resolve it).
//   - An UnknownAccountError if no account name contains the given name.
func (c *AccountCache) Resolve(name string) (gnucash.Account, error) {
	if guid, ok := c.byName[name]; ok {
		return gnucash.Account{GUID: guid, Name: name}, nil
	}

	c.scans++
	for _, account := range c.accounts {
		if strings.Contains(account.Name, name) {
			c.byName[name] = account.GUID
			return gnucash.Account{GUID: account.GUID, Name: name}, nil
		}
	}

	return gnucash.Account{}, &UnknownAccountError{Name: name}
}
