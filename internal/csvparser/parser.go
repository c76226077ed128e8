// =============================================================================
// PayPal to GnuCash Importer - CSV Parser Module
// =============================================================================
//
// This module is responsible for parsing the transaction export downloaded
// from PayPal. It handles the quirks of that format:
//   - Configurable delimiters (PayPal historically exported tab-separated)
//   - Non-UTF-8 encodings (the classic export is ISO-8859-1)
//   - Header names padded with a leading space (" Type", " Net", ...)
//   - Quoted fields with embedded delimiters
//
// Records are returned in file order. Order is semantically significant:
// the currency-conversion merger downstream folds adjacent rows together,
// so the parser must never reorder or drop non-empty rows.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// =============================================================================
// SETTINGS
// =============================================================================

// Settings contains the options for reading a CSV export.
type Settings struct {
	// Delimiter is the field separator. Accepts a literal character or the
	// aliases "tab", "pipe" and "semicolon".
	Delimiter string

	// QuoteChar is the character used to quote fields. Go's csv package only
	// supports the double quote; any other value is rejected up front rather
	// than silently misparsed.
	QuoteChar string

	// Encoding is the character encoding of the file.
	// Supported: "utf-8", "iso-8859-1" (alias "latin1"), "windows-1252".
	Encoding string
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one data row of the export, addressed by header name.
type Record struct {
	// Line is the 1-based line number in the source file, counting the
	// header line. Used in error messages.
	Line int

	fields map[string]string
}

// Get returns the value of the named field. Unknown fields yield "".
func (r Record) Get(name string) string {
	return r.fields[name]
}

// Has reports whether the named field exists in the record.
func (r Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// NewRecord builds a record from explicit fields. Intended for tests and for
// synthesized rows; production records come from Parse.
func NewRecord(line int, fields map[string]string) Record {
	return Record{Line: line, fields: fields}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns its data rows in file order.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, quote and encoding options.
//   - required: Header names that must be present; a missing one is an error.
//
// RETURNS:
//   - The records in file order.
//   - An error if the file cannot be read, decoded or is missing headers.
func Parse(filePath string, settings Settings, required []string) ([]Record, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	records, err := ParseReader(bufio.NewReader(file), settings, required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return records, nil
}

// ParseReader reads CSV data from an io.Reader. See Parse.
func ParseReader(r io.Reader, settings Settings, required []string) ([]Record, error) {
	decoded, err := decodingReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	if err := checkQuoteChar(settings.QuoteChar); err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers := cleanHeaders(allRows[0])

	if err := checkRequiredHeaders(headers, required); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(allRows)-1)

	for i, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}

		fields := make(map[string]string, len(headers))
		for col, header := range headers {
			if col < len(row) {
				fields[header] = strings.TrimSpace(row[col])
			} else {
				fields[header] = ""
			}
		}

		// Line 1 is the header, so data row i sits on line i+2.
		records = append(records, Record{Line: i + 2, fields: fields})
	}

	return records, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// PayPal exports occasionally carry ragged rows and sloppy quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = false
}

// decodingReader wraps r with a charset decoder for the configured encoding.
func decodingReader(r io.Reader, enc string) (io.Reader, error) {
	var e encoding.Encoding

	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		e = charmap.ISO8859_1
	case "windows-1252", "cp1252":
		e = charmap.Windows1252
	case "utf-16", "utf16":
		e = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}

	return e.NewDecoder().Reader(r), nil
}

// checkQuoteChar rejects quote characters the underlying csv package cannot
// honor. Known limitation: only the double quote is supported.
func checkQuoteChar(q string) error {
	if q == "" || q == "\"" {
		return nil
	}
	return fmt.Errorf("unsupported quote character %q: only double quote is supported", q)
}

// checkRequiredHeaders verifies that every required column is present.
func checkRequiredHeaders(headers, required []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// cleanHeaders trims whitespace from header cells. The PayPal export pads
// every header after the first with a leading space; trimming lets records
// be addressed by the canonical names ("Type", not " Type").
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
