// =============================================================================
// PayPal to GnuCash Importer - Import Driver
// =============================================================================
//
// The driver runs the single sequential pass over the export records and
// orchestrates the pipeline:
//
//   record -> conversion merger -> currency check -> routing -> account
//   resolution -> normalization -> strategy/build -> schema validation ->
//   append to document
//
// Row order is semantically required (the merger folds adjacent rows), so
// the pass is strictly sequential. Any fatal condition (malformed amount,
// unknown account, inconsistent conversion, wrong currency) aborts the run
// before any output is written; schema violations on individual
// transactions are logged, counted and skipped.
//
// =============================================================================

package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gncutils/paypal-import/internal/gnucash"
	"github.com/gncutils/paypal-import/internal/money"
	"github.com/gncutils/paypal-import/internal/paypal"
	"github.com/gncutils/paypal-import/internal/rules"
)

// =============================================================================
// OPTIONS AND STATS
// =============================================================================

// Options configures an import run.
type Options struct {
	// BaseCurrency is the ledger's currency; every imported transaction
	// must resolve to it. Default "EUR".
	BaseCurrency string

	// Location is the fixed UTC offset applied to posting timestamps.
	Location *time.Location

	// EntryTime is the "date entered" for every created transaction,
	// captured once at process start.
	EntryTime time.Time
}

// Stats summarizes a completed run.
type Stats struct {
	// Rows is the number of CSV records seen.
	Rows int

	// ConversionRows is the number of records consumed as conversion legs.
	ConversionRows int

	// Appended is the number of transactions appended to the ledger.
	Appended int

	// Skipped is the number of transactions dropped due to schema
	// violations.
	Skipped int
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer drives one import run against a loaded ledger document.
type Importer struct {
	doc     *gnucash.Document
	table   *rules.Table
	cache   *AccountCache
	log     zerolog.Logger
	opts    Options
	entered string
}

// New creates an importer for the given document and routing table.
func New(doc *gnucash.Document, table *rules.Table, log zerolog.Logger, opts Options) *Importer {
	if opts.BaseCurrency == "" {
		opts.BaseCurrency = "EUR"
	}
	if opts.Location == nil {
		opts.Location = time.FixedZone("", 3600)
	}
	if opts.EntryTime.IsZero() {
		opts.EntryTime = time.Now()
	}

	return &Importer{
		doc:     doc,
		table:   table,
		cache:   NewAccountCache(doc),
		log:     log,
		opts:    opts,
		entered: paypal.FormatTimestamp(opts.EntryTime.In(opts.Location)),
	}
}

// Run processes the records in file order, appending the resulting
// transactions to the document. On a fatal error the document must be
// considered unusable and nothing may be written.
func (imp *Importer) Run(records []paypal.Record) (Stats, error) {
	var stats Stats
	merger := paypal.NewMerger()

	for _, rec := range records {
		stats.Rows++

		result, err := merger.Process(rec)
		if err != nil {
			return stats, err
		}
		if result.Consumed {
			stats.ConversionRows++
			imp.log.Debug().Int("line", rec.Line).
				Str("currency", rec.Currency()).
				Msg("buffered currency conversion row")
			continue
		}

		currency := rec.Currency()
		value := rec.Net()
		comment := ""
		if result.Merged {
			currency = result.Currency
			value = result.Net
			comment = result.Comment
			imp.log.Debug().Int("line", rec.Line).
				Str("currency", currency).
				Msg("merged currency conversion pair into transaction")
		}

		if currency != imp.opts.BaseCurrency {
			return stats, &WrongCurrencyError{
				Line:     rec.Line,
				Currency: currency,
				Expected: imp.opts.BaseCurrency,
			}
		}

		rule := imp.table.Route(rec.Type(), rec.Status())

		account1, err := imp.cache.Resolve(rule.Account1)
		if err != nil {
			return stats, err
		}
		account2, err := imp.cache.Resolve(rule.Account2)
		if err != nil {
			return stats, err
		}

		posted, err := paypal.ParseDate(rec.Date(), rec.Time(), imp.opts.Location)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", rec.Line, err)
		}

		ctx := rules.TxnContext{
			Type:          rec.Type(),
			Name:          rec.Name(),
			Status:        rec.Status(),
			Date:          paypal.FormatTimestamp(posted),
			Currency:      currency,
			RealCurrency:  rec.Currency(),
			Gross:         rec.Gross(),
			Fee:           rec.Fee(),
			Net:           rec.Net(),
			Value:         value,
			TransactionID: rec.TransactionID(),
			Comment:       comment,
			Account1GUID:  account1.GUID,
			Account2GUID:  account2.GUID,
		}

		el, err := rule.Strategy(ctx, imp.build)
		if err != nil {
			return stats, fmt.Errorf("line %d: %w", rec.Line, err)
		}

		if err := gnucash.ValidateTransaction(el); err != nil {
			var sv *gnucash.SchemaViolationError
			if errors.As(err, &sv) {
				// Incompatibility with the ledger format: surface it with
				// full context, drop the transaction, keep going.
				imp.log.Error().Int("line", rec.Line).
					Str("element", sv.Element).
					Str("location", sv.Location).
					Str("detail", sv.Detail).
					Str("transaction_id", rec.TransactionID()).
					Msg("transaction rejected by ledger schema, skipping")
				stats.Skipped++
				continue
			}
			return stats, err
		}

		imp.doc.AppendTransaction(el)
		stats.Appended++
	}

	if err := merger.Finish(); err != nil {
		return stats, err
	}

	return stats, nil
}

// build is the BuildFunc handed to strategies: it normalizes the raw amount
// and constructs the balanced transaction element.
func (imp *Importer) build(date, account1GUID, memo1, account2GUID, memo2,
	currency, value, description string) (*gnucash.Element, error) {

	amount, err := paypal.ParseAmount(value)
	if err != nil {
		return nil, err
	}

	return gnucash.BuildTransaction(gnucash.BuildParams{
		PostedDate:   date,
		EnteredDate:  imp.entered,
		Description:  description,
		Value:        money.FromDecimal(amount, currency),
		Account1GUID: account1GUID,
		Memo1:        memo1,
		Account2GUID: account2GUID,
		Memo2:        memo2,
	}), nil
}
