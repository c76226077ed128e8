// =============================================================================
// PayPal to GnuCash Importer - PayPal Record Module
// =============================================================================
//
// This package models the PayPal side of the import: the transaction export
// record, the locale normalization of its date and amount fields, and the
// currency-conversion merger.
//
// =============================================================================

package paypal

import (
	"github.com/gncutils/paypal-import/internal/csvparser"
)

// =============================================================================
// FIELD NAMES
// =============================================================================

// Canonical column names of the PayPal transaction export. Header cells are
// trimmed by the CSV parser, so the leading space PayPal pads them with does
// not appear here.
const (
	FieldDate          = "Date"
	FieldTime          = "Time"
	FieldTimeZone      = "Time Zone"
	FieldType          = "Type"
	FieldStatus        = "Status"
	FieldName          = "Name"
	FieldCurrency      = "Currency"
	FieldGross         = "Gross"
	FieldFee           = "Fee"
	FieldNet           = "Net"
	FieldTransactionID = "Transaction ID"
)

// RequiredFields lists the columns an export must provide to be importable.
// The Time Zone column is deliberately absent: it is known to be ambiguous
// and is ignored (see ParseDate).
var RequiredFields = []string{
	FieldDate,
	FieldTime,
	FieldType,
	FieldStatus,
	FieldName,
	FieldCurrency,
	FieldGross,
	FieldFee,
	FieldNet,
	FieldTransactionID,
}

// TypeCurrencyConversion is the transaction type PayPal assigns to the two
// bookkeeping rows of a currency exchange.
const TypeCurrencyConversion = "Currency Conversion"

// =============================================================================
// RECORD
// =============================================================================

// Record is a single row of the export with typed accessors for the fields
// the import pipeline cares about. It is immutable once read; the merger
// overrides currency/value on the side, never in the record itself.
type Record struct {
	csvparser.Record
}

// WrapRecords converts parsed CSV records into PayPal records, preserving
// file order.
func WrapRecords(rows []csvparser.Record) []Record {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record{row}
	}
	return records
}

// Type returns the transaction type (e.g. "Payment", "Donation").
func (r Record) Type() string { return r.Get(FieldType) }

// Status returns the transaction state (e.g. "Completed", "Pending").
func (r Record) Status() string { return r.Get(FieldStatus) }

// Name returns the counterparty name.
func (r Record) Name() string { return r.Get(FieldName) }

// Currency returns the ISO 4217 currency code of the row.
func (r Record) Currency() string { return r.Get(FieldCurrency) }

// Gross returns the raw locale-formatted gross amount.
func (r Record) Gross() string { return r.Get(FieldGross) }

// Fee returns the raw locale-formatted fee amount.
func (r Record) Fee() string { return r.Get(FieldFee) }

// Net returns the raw locale-formatted net amount.
func (r Record) Net() string { return r.Get(FieldNet) }

// TransactionID returns PayPal's transaction identifier.
func (r Record) TransactionID() string { return r.Get(FieldTransactionID) }

// Date returns the raw day.month.year date field.
func (r Record) Date() string { return r.Get(FieldDate) }

// Time returns the raw hour:minute:second time field.
func (r Record) Time() string { return r.Get(FieldTime) }

// IsConversion reports whether the row is a currency-conversion leg.
func (r Record) IsConversion() bool {
	return r.Type() == TypeCurrencyConversion
}
