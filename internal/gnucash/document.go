// =============================================================================
// PayPal to GnuCash Importer - Ledger Document
// =============================================================================
//
// Document wraps the parsed ledger file. GnuCash writes its files either
// gzip-compressed or as plain XML depending on a user preference, so loading
// tries decompression first and falls back to a raw read.
//
// The import pipeline only ever appends transactions to the book; existing
// elements are never mutated, and the output is always written to a separate
// path.
//
// =============================================================================

package gnucash

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gncutils/paypal-import/pkg/utils"
)

// Well-known element names used by the importer.
const (
	elemBook        = "gnc:book"
	elemAccount     = "gnc:account"
	elemTransaction = "gnc:transaction"
)

// =============================================================================
// ACCOUNT REFERENCE
// =============================================================================

// Account is the identity of one ledger account: the stable GUID the ledger
// addresses it by, plus the display name used to find it.
type Account struct {
	// GUID is the 32-hex account identifier.
	GUID string

	// Name is the account's display name.
	Name string
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is a loaded GnuCash ledger.
type Document struct {
	root *Element
	book *Element
}

// LoadDocument reads a ledger file, transparently handling gzip compression.
func LoadDocument(path string) (*Document, error) {
	data, err := utils.ReadFileMaybeGzip(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a ledger document from a reader.
func Parse(r io.Reader) (*Document, error) {
	root, err := parseElement(r)
	if err != nil {
		return nil, err
	}

	book := root.Find(elemBook)
	if book == nil {
		return nil, fmt.Errorf("no %s element found: not a GnuCash ledger", elemBook)
	}

	return &Document{root: root, book: book}, nil
}

// Root returns the document root element.
func (d *Document) Root() *Element {
	return d.root
}

// Book returns the gnc:book element.
func (d *Document) Book() *Element {
	return d.book
}

// Accounts returns the ledger's accounts in document order.
func (d *Document) Accounts() []Account {
	var accounts []Account
	for _, el := range d.book.FindAll(elemAccount) {
		accounts = append(accounts, Account{
			GUID: el.ChildText("act:id"),
			Name: el.ChildText("act:name"),
		})
	}
	return accounts
}

// Transactions returns the ledger's transaction elements in document order.
func (d *Document) Transactions() []*Element {
	return d.book.FindAll(elemTransaction)
}

// AppendTransaction appends a transaction element to the book. Existing
// elements are left untouched.
func (d *Document) AppendTransaction(el *Element) {
	d.book.Children = append(d.book.Children, el)
}

// Write serializes the amended document to w.
func (d *Document) Write(w io.Writer, options WriteOptions) error {
	return WriteDocument(w, d.root, options)
}
