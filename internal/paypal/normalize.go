// =============================================================================
// PayPal to GnuCash Importer - Normalizer Module
// =============================================================================
//
// This module converts the locale-formatted date and amount strings of the
// PayPal export into canonical values.
//
// AMOUNT FORMAT:
//   The export uses the German number format: "." is the thousands separator
//   and "," the decimal separator. The sign can appear at any position
//   before the digits (the export places it in front of the thousands
//   separators it already removed), so the sign is detected and stripped
//   before everything else.
//
// DATE FORMAT:
//   Dates are "02.01.2006", times "15:04:05". The export's Time Zone column
//   is ignored and a fixed configured UTC offset is applied instead; the
//   column's values ("GMT+01:00" style) were ambiguous across PayPal
//   locales and older runtime libraries, which is a known limitation of
//   this importer, not something it tries to correct.
//
// =============================================================================

package paypal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts of the export's date and time fields.
const (
	dateLayout = "02.01.2006"
	timeLayout = "15:04:05"
)

// TimestampLayout is the layout GnuCash uses for ts:date values.
const TimestampLayout = "2006-01-02 15:04:05 -0700"

// =============================================================================
// AMOUNT ERRORS
// =============================================================================

// MalformedAmountError reports an unparseable numeric field. It is fatal for
// the whole run: a number that cannot be read exactly must never be guessed.
type MalformedAmountError struct {
	// Raw is the offending field value.
	Raw string

	// Reason describes what was wrong with it.
	Reason string
}

// Error implements the error interface.
func (e *MalformedAmountError) Error() string {
	return fmt.Sprintf("malformed amount %q: %s", e.Raw, e.Reason)
}

// =============================================================================
// AMOUNT PARSING
// =============================================================================

// ParseAmount parses a signed, German-locale formatted number.
//
// PARAMETERS:
//   - raw: The field value, e.g. "-1.234,56".
//
// RETURNS:
//   - The exact decimal value, e.g. -1234.56.
//   - A MalformedAmountError if the value contains more than one decimal
//     separator or non-numeric garbage.
//
// ALGORITHM:
//   1. Find a minus sign anywhere before the digits, record it, and strip
//      everything up to and including it.
//   2. Strip all "." thousands separators.
//   3. Split on ",": one part is an integer, two parts are integer and
//      fractional component (fraction = digits / 10^len(digits)), more than
//      two parts is malformed input.
func ParseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	multiplier := decimal.NewFromInt(1)

	if idx := strings.Index(value, "-"); idx != -1 {
		value = value[idx+1:]
		multiplier = decimal.NewFromInt(-1)
	}

	value = strings.ReplaceAll(value, ".", "")
	parts := strings.Split(value, ",")

	switch len(parts) {
	case 1:
		intPart, err := parseDigits(raw, parts[0])
		if err != nil {
			return decimal.Zero, err
		}
		return intPart.Mul(multiplier), nil

	case 2:
		intPart, err := parseDigits(raw, parts[0])
		if err != nil {
			return decimal.Zero, err
		}
		fracPart, err := parseDigits(raw, parts[1])
		if err != nil {
			return decimal.Zero, err
		}
		frac := fracPart.Shift(int32(-len(parts[1])))
		return intPart.Add(frac).Mul(multiplier), nil

	default:
		return decimal.Zero, &MalformedAmountError{
			Raw:    raw,
			Reason: "more than one decimal separator",
		}
	}
}

// parseDigits parses one digit group of an amount.
func parseDigits(raw, digits string) (decimal.Decimal, error) {
	if digits == "" {
		return decimal.Zero, &MalformedAmountError{Raw: raw, Reason: "empty digit group"}
	}
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, &MalformedAmountError{Raw: raw, Reason: "not a number"}
	}
	return d, nil
}

// =============================================================================
// DATE PARSING
// =============================================================================

// ParseDate combines the export's date and time fields into a timestamp in
// the given fixed-offset location.
//
// PARAMETERS:
//   - dateStr: The "02.01.2006" date field.
//   - timeStr: The "15:04:05" time field.
//   - loc: The fixed-offset location configured for the ledger.
//
// RETURNS:
//   - The combined timestamp.
//   - An error if either field does not match the export layout.
func ParseDate(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	combined := strings.TrimSpace(dateStr) + " " + strings.TrimSpace(timeStr)

	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, combined, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date/time %q: %w", combined, err)
	}
	return t, nil
}

// FormatTimestamp renders a timestamp the way GnuCash expects ts:date
// values, e.g. "2013-01-03 18:32:29 +0100".
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
