package csvparser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncutils/paypal-import/internal/csvparser"
)

// sampleExport mimics the shape of a real PayPal export: tab separated,
// header names padded with a leading space.
const sampleExport = "Date\t Time\t Type\t Net\n" +
	"03.01.2013\t18:32:29\tPayment\t-10,00\n" +
	"\t\t\t\n" +
	"04.01.2013\t09:12:00\tDonation\t-5,00\n"

func TestParseReader_TabDelimited(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", QuoteChar: "\"", Encoding: "utf-8"}

	records, err := csvparser.ParseReader(strings.NewReader(sampleExport), settings, []string{"Date", "Type", "Net"})
	require.NoError(t, err)
	require.Len(t, records, 2, "the all-empty row must be dropped")

	assert.Equal(t, "Payment", records[0].Get("Type"))
	assert.Equal(t, "-10,00", records[0].Get("Net"))
	assert.Equal(t, "Donation", records[1].Get("Type"))

	// Headers are addressed without PayPal's leading space.
	assert.True(t, records[0].Has("Time"))
	assert.Equal(t, "18:32:29", records[0].Get("Time"))
}

func TestParseReader_LineNumbers(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", Encoding: "utf-8"}

	records, err := csvparser.ParseReader(strings.NewReader(sampleExport), settings, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2, records[0].Line, "first data row sits below the header")
	assert.Equal(t, 4, records[1].Line, "dropped empty rows keep their line slot")
}

func TestParseReader_MissingRequiredHeader(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", Encoding: "utf-8"}

	_, err := csvparser.ParseReader(strings.NewReader(sampleExport), settings, []string{"Date", "Transaction ID"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transaction ID")
}

func TestParseReader_Latin1Encoding(t *testing.T) {
	// "Müller" in ISO-8859-1: 0xFC for "ü".
	data := []byte("Name;Net\nM\xfcller;-1,00\n")
	settings := csvparser.Settings{Delimiter: ";", Encoding: "iso-8859-1"}

	records, err := csvparser.ParseReader(strings.NewReader(string(data)), settings, []string{"Name"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Müller", records[0].Get("Name"))
}

func TestParseReader_UnsupportedEncoding(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", Encoding: "ebcdic"}

	_, err := csvparser.ParseReader(strings.NewReader(sampleExport), settings, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestParseReader_UnsupportedQuoteChar(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", QuoteChar: "'", Encoding: "utf-8"}

	_, err := csvparser.ParseReader(strings.NewReader(sampleExport), settings, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote character")
}

func TestParseReader_QuotedFieldWithDelimiter(t *testing.T) {
	data := "Name,Net\n\"Doe, Jane\",\"-1,00\"\n"
	settings := csvparser.Settings{Delimiter: ",", Encoding: "utf-8"}

	records, err := csvparser.ParseReader(strings.NewReader(data), settings, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "Doe, Jane", records[0].Get("Name"))
	assert.Equal(t, "-1,00", records[0].Get("Net"))
}

func TestParseReader_ShortRowYieldsEmptyFields(t *testing.T) {
	data := "A\tB\tC\nx\ty\n"
	settings := csvparser.Settings{Delimiter: "tab", Encoding: "utf-8"}

	records, err := csvparser.ParseReader(strings.NewReader(data), settings, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "x", records[0].Get("A"))
	assert.Equal(t, "", records[0].Get("C"))
	assert.True(t, records[0].Has("C"))
}

func TestParseReader_Empty(t *testing.T) {
	settings := csvparser.Settings{Delimiter: "tab", Encoding: "utf-8"}

	_, err := csvparser.ParseReader(strings.NewReader(""), settings, nil)
	require.Error(t, err)
}
