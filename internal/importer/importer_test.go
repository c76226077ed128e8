package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncutils/paypal-import/internal/csvparser"
	"github.com/gncutils/paypal-import/internal/gnucash"
	"github.com/gncutils/paypal-import/internal/importer"
	"github.com/gncutils/paypal-import/internal/paypal"
	"github.com/gncutils/paypal-import/internal/rules"
)

// testLedger carries the accounts the default rule and the donation rule
// resolve against.
const testLedger = `<?xml version="1.0" encoding="utf-8"?>
<gnc-v2
     xmlns:gnc="http://www.gnucash.org/XML/gnc"
     xmlns:act="http://www.gnucash.org/XML/act"
     xmlns:book="http://www.gnucash.org/XML/book"
     xmlns:cmdty="http://www.gnucash.org/XML/cmdty"
     xmlns:split="http://www.gnucash.org/XML/split"
     xmlns:trn="http://www.gnucash.org/XML/trn"
     xmlns:ts="http://www.gnucash.org/XML/ts">
<gnc:book version="2.0.0">
<book:id type="guid">11111111111111111111111111111111</book:id>
<gnc:account version="2.0.0">
<act:name>Assets:PayPal account</act:name>
<act:id type="guid">aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa</act:id>
<act:type>BANK</act:type>
</gnc:account>
<gnc:account version="2.0.0">
<act:name>Imbalance-EUR</act:name>
<act:id type="guid">bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb</act:id>
<act:type>BANK</act:type>
</gnc:account>
<gnc:account version="2.0.0">
<act:name>Income:Donations</act:name>
<act:id type="guid">cccccccccccccccccccccccccccccccc</act:id>
<act:type>INCOME</act:type>
</gnc:account>
</gnc:book>
</gnc-v2>
`

func testDoc(t *testing.T) *gnucash.Document {
	t.Helper()
	doc, err := gnucash.Parse(strings.NewReader(testLedger))
	require.NoError(t, err)
	return doc
}

func testOptions() importer.Options {
	return importer.Options{
		BaseCurrency: "EUR",
		Location:     time.FixedZone("", 3600),
		EntryTime:    time.Date(2013, 2, 1, 10, 0, 0, 0, time.FixedZone("", 3600)),
	}
}

// record builds a full export row.
func record(line int, typ, status, name, currency, gross, fee, net, id string) paypal.Record {
	rows := paypal.WrapRecords([]csvparser.Record{csvparser.NewRecord(line, map[string]string{
		paypal.FieldDate:          "03.01.2013",
		paypal.FieldTime:          "18:32:29",
		paypal.FieldType:          typ,
		paypal.FieldStatus:        status,
		paypal.FieldName:          name,
		paypal.FieldCurrency:      currency,
		paypal.FieldGross:         gross,
		paypal.FieldFee:           fee,
		paypal.FieldNet:           net,
		paypal.FieldTransactionID: id,
	})})
	return rows[0]
}

func payment(line int, id string) paypal.Record {
	return record(line, "Payment", "Completed", "ACME Corp", "EUR", "-11,00", "-1,00", "-10,00", id)
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestRun_ImportsRecords(t *testing.T) {
	doc := testDoc(t)
	table := rules.NewTable()
	table.Add(rules.Rule{
		Type: "Donation", Status: "Completed",
		Account1: "PayPal", Account2: "Donations",
		StrategyName: rules.StrategyDonation,
		Strategy:     mustStrategy(t, rules.StrategyDonation),
	})

	imp := importer.New(doc, table, zerolog.Nop(), testOptions())

	records := []paypal.Record{
		payment(2, "MAIN1"),
		record(3, "Currency Conversion", "Completed", "ACME Corp", "EUR", "-8,05", "0,00", "-8,05", "CONV1"),
		record(4, "Currency Conversion", "Completed", "ACME Corp", "USD", "10,00", "0,00", "10,00", "CONV2"),
		record(5, "Payment", "Completed", "ACME Corp", "USD", "-10,00", "0,00", "-10,00", "MAIN2"),
		record(6, "Donation", "Completed", "Jane Doe", "EUR", "5,00", "-0,50", "4,50", "MAIN3"),
	}

	stats, err := imp.Run(records)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 2, stats.ConversionRows)
	assert.Equal(t, 3, stats.Appended)
	assert.Zero(t, stats.Skipped)

	transactions := doc.Transactions()
	require.Len(t, transactions, 3)

	// The pre-existing book content is untouched.
	require.Len(t, doc.Accounts(), 3)
	assert.Equal(t, "11111111111111111111111111111111", doc.Book().ChildText("book:id"))

	// Every transaction carries exactly two balanced splits.
	for _, tx := range transactions {
		require.NoError(t, gnucash.ValidateTransaction(tx))
		assert.Len(t, tx.Find("trn:splits").FindAll("trn:split"), 2)
	}

	// The plain payment books between PayPal and Imbalance with the full
	// audit description.
	first := transactions[0]
	assert.Contains(t, first.ChildText("trn:description"), "PayPal Payment from ACME Corp")
	assert.Contains(t, first.ChildText("trn:description"), "ID: MAIN1")
	splits := first.Find("trn:splits").FindAll("trn:split")
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", splits[0].ChildText("split:account"))
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", splits[1].ChildText("split:account"))
	assert.Equal(t, "-10/1", splits[0].ChildText("split:value"))
	assert.Equal(t, "2013-01-03 18:32:29 +0100", first.Find("trn:date-posted").ChildText("ts:date"))
	assert.Equal(t, "2013-02-01 10:00:00 +0100", first.Find("trn:date-entered").ChildText("ts:date"))

	// The merged payment is booked in the base currency with the converted
	// amount and the conversion trace.
	merged := transactions[1]
	assert.Equal(t, "EUR", merged.Find("trn:currency").ChildText("cmdty:id"))
	assert.Contains(t, merged.ChildText("trn:description"), "via CONV1 and CONV2")
	mergedSplits := merged.Find("trn:splits").FindAll("trn:split")
	assert.Equal(t, "-161/20", mergedSplits[0].ChildText("split:value"))

	// The donation follows its routing rule.
	donation := transactions[2]
	assert.Equal(t, "Donation from Jane Doe", donation.ChildText("trn:description"))
	donationSplits := donation.Find("trn:splits").FindAll("trn:split")
	assert.Equal(t, "cccccccccccccccccccccccccccccccc", donationSplits[1].ChildText("split:account"))
}

func TestRun_EmptyInput(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	stats, err := imp.Run(nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Rows)
	assert.Empty(t, doc.Transactions())
}

// =============================================================================
// FATAL CONDITIONS
// =============================================================================

func TestRun_WrongCurrency(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	records := []paypal.Record{
		record(2, "Payment", "Completed", "ACME Corp", "USD", "-10,00", "0,00", "-10,00", "MAIN1"),
	}

	_, err := imp.Run(records)
	require.Error(t, err)

	var wrong *importer.WrongCurrencyError
	require.ErrorAs(t, err, &wrong)
	assert.Equal(t, 2, wrong.Line)
	assert.Equal(t, "USD", wrong.Currency)
	assert.Equal(t, "EUR", wrong.Expected)
	assert.Empty(t, doc.Transactions(), "nothing may be appended on a fatal error")
}

func TestRun_UnknownAccount(t *testing.T) {
	doc := testDoc(t)
	table := rules.NewTable()
	table.Add(rules.Rule{
		Type: "Payment", Status: "Completed",
		Account1: "PayPal", Account2: "Liabilities",
		StrategyName: rules.StrategyPayment,
		Strategy:     mustStrategy(t, rules.StrategyPayment),
	})

	imp := importer.New(doc, table, zerolog.Nop(), testOptions())

	_, err := imp.Run([]paypal.Record{payment(2, "MAIN1")})
	require.Error(t, err)

	var unknown *importer.UnknownAccountError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Liabilities", unknown.Name)
}

func TestRun_MalformedAmount(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	records := []paypal.Record{
		record(2, "Payment", "Completed", "ACME Corp", "EUR", "-11,00", "-1,00", "-1,0,0", "MAIN1"),
	}

	_, err := imp.Run(records)
	require.Error(t, err)

	var malformed *paypal.MalformedAmountError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, err.Error(), "line 2")
}

func TestRun_MalformedDate(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	rec := paypal.WrapRecords([]csvparser.Record{csvparser.NewRecord(2, map[string]string{
		paypal.FieldDate:          "2013/01/03",
		paypal.FieldTime:          "18:32:29",
		paypal.FieldType:          "Payment",
		paypal.FieldStatus:        "Completed",
		paypal.FieldName:          "ACME Corp",
		paypal.FieldCurrency:      "EUR",
		paypal.FieldNet:           "-10,00",
		paypal.FieldTransactionID: "MAIN1",
	})})

	_, err := imp.Run(rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed date/time")
}

func TestRun_DanglingConversionPair(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	records := []paypal.Record{
		payment(2, "MAIN1"),
		record(3, "Currency Conversion", "Completed", "ACME Corp", "EUR", "-8,05", "0,00", "-8,05", "CONV1"),
		record(4, "Currency Conversion", "Completed", "ACME Corp", "USD", "10,00", "0,00", "10,00", "CONV2"),
	}

	_, err := imp.Run(records)
	require.Error(t, err)

	var inconsistent *paypal.InconsistentConversionError
	require.ErrorAs(t, err, &inconsistent)
}

func TestRun_BrokenConversionTriple(t *testing.T) {
	doc := testDoc(t)
	imp := importer.New(doc, rules.NewTable(), zerolog.Nop(), testOptions())

	records := []paypal.Record{
		record(2, "Currency Conversion", "Completed", "ACME Corp", "EUR", "-8,05", "0,00", "-8,05", "CONV1"),
		record(3, "Payment", "Completed", "ACME Corp", "USD", "-10,00", "0,00", "-10,00", "MAIN1"),
	}

	_, err := imp.Run(records)
	require.Error(t, err)

	var inconsistent *paypal.InconsistentConversionError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, 3, inconsistent.Line)
}

// =============================================================================
// SCHEMA VIOLATIONS
// =============================================================================

// TestRun_SchemaViolationSkipsTransaction wires a strategy that produces an
// element the ledger grammar rejects; the row must be dropped and counted
// while the rest of the run continues.
func TestRun_SchemaViolationSkipsTransaction(t *testing.T) {
	doc := testDoc(t)
	table := rules.NewTable()
	table.Add(rules.Rule{
		Type: "Payment", Status: "Completed",
		Account1: "PayPal", Account2: "Imbalance",
		StrategyName: "broken",
		Strategy: func(ctx rules.TxnContext, build rules.BuildFunc) (*gnucash.Element, error) {
			el, err := build(ctx.Date, ctx.Account1GUID, "", ctx.Account2GUID, "",
				ctx.Currency, ctx.Value, "broken")
			if err != nil {
				return nil, err
			}
			el.Append(gnucash.NewTextElement("trn:bogus", "x"))
			return el, nil
		},
	})

	imp := importer.New(doc, table, zerolog.Nop(), testOptions())

	records := []paypal.Record{
		payment(2, "MAIN1"),
		record(3, "Donation", "Completed", "Jane Doe", "EUR", "5,00", "-0,50", "4,50", "MAIN2"),
	}

	stats, err := imp.Run(records)
	require.NoError(t, err, "a schema violation must not abort the run")

	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Appended)
	require.Len(t, doc.Transactions(), 1)
	assert.Contains(t, doc.Transactions()[0].ChildText("trn:description"), "Donation")
}

// mustStrategy resolves a registered strategy for test rules.
func mustStrategy(t *testing.T, name string) rules.Strategy {
	t.Helper()
	s, ok := rules.LookupStrategy(name)
	require.True(t, ok)
	return s
}
