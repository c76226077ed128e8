// =============================================================================
// PayPal to GnuCash Importer - Money Module
// =============================================================================
//
// This module provides the exact monetary representation used when writing
// transactions into a GnuCash ledger. GnuCash stores all split values as
// rational numbers ("numerator/denominator") rather than floating point, so
// every amount parsed from the PayPal export has to be converted into a
// fraction before it can be serialized.
//
// REPRESENTATION:
//   A Money value is an exact fraction (int64 numerator and denominator,
//   denominator bounded by MaxDenominator) plus an ISO 4217 currency code.
//   For all real currency amounts (multiples of 1/100) the conversion is
//   lossless; for anything else the nearest fraction with a denominator
//   within the bound is chosen.
//
// =============================================================================

package money

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxDenominator bounds the denominator of encoded amounts. GnuCash itself
// has no hard limit, but bounded fractions keep value/quantity fields stable
// and guarantee lossless encoding of cent amounts.
const MaxDenominator = 1000

// =============================================================================
// MONEY TYPE
// =============================================================================

// Money is an exact rational amount in a single currency.
type Money struct {
	// Num is the signed numerator of the amount.
	Num int64

	// Den is the denominator. Always positive, never larger than
	// MaxDenominator.
	Den int64

	// Currency is the ISO 4217 currency code (e.g. "EUR").
	Currency string
}

// FromDecimal converts a parsed decimal amount into a Money value.
//
// PARAMETERS:
//   - d: The normalized decimal amount (see paypal.ParseAmount).
//   - currency: The ISO 4217 currency code.
//
// RETURNS:
//   - The Money value with denominator bounded by MaxDenominator.
//
// The conversion finds the rational approximation with the smallest error
// among all fractions with denominator <= MaxDenominator (continued-fraction
// search). Applied to an exact multiple of 1/100 the result reproduces the
// input exactly.
func FromDecimal(d decimal.Decimal, currency string) Money {
	num, den := limitDenominator(d.Rat(), MaxDenominator)
	return Money{Num: num, Den: den, Currency: currency}
}

// Neg returns the amount with its sign inverted. The magnitude and the
// currency are unchanged.
func (m Money) Neg() Money {
	return Money{Num: -m.Num, Den: m.Den, Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Num == 0
}

// GnucashString renders the amount in GnuCash's wire format, e.g. "-1050/100"
// reduced to lowest terms ("-21/2").
func (m Money) GnucashString() string {
	return strconv.FormatInt(m.Num, 10) + "/" + strconv.FormatInt(m.Den, 10)
}

// Rat returns the amount as a big.Rat for exact arithmetic.
func (m Money) Rat() *big.Rat {
	return big.NewRat(m.Num, m.Den)
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return m.GnucashString() + " " + m.Currency
}

// =============================================================================
// FRACTION PARSING
// =============================================================================

// ParseFraction parses a GnuCash "numerator/denominator" value string.
// A bare integer is accepted as a fraction with denominator 1.
func ParseFraction(s string) (num, den int64, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)

	num, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fraction %q: %w", s, err)
	}

	den = 1
	if len(parts) == 2 {
		den, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid fraction %q: %w", s, err)
		}
		if den <= 0 {
			return 0, 0, fmt.Errorf("invalid fraction %q: denominator must be positive", s)
		}
	}

	return num, den, nil
}

// =============================================================================
// DENOMINATOR LIMITING
// =============================================================================

// limitDenominator returns the closest fraction to r whose denominator does
// not exceed maxDen. This is the classic continued-fraction convergent walk:
// the lower and upper bounds of the last affordable convergent pair are
// compared and the closer one wins (the upper bound on a tie).
func limitDenominator(r *big.Rat, maxDen int64) (int64, int64) {
	if r.Denom().Cmp(big.NewInt(maxDen)) <= 0 {
		return r.Num().Int64(), r.Denom().Int64()
	}

	max := big.NewInt(maxDen)

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)

	n := new(big.Int).Abs(r.Num())
	d := new(big.Int).Set(r.Denom())

	for {
		a := new(big.Int).Quo(n, d)

		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(max) > 0 {
			break
		}

		p0, q0, p1, q1 = p1, q1, new(big.Int).Add(p0, new(big.Int).Mul(a, p1)), q2

		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}

	// k is the largest multiplier that keeps the semiconvergent denominator
	// within the bound.
	k := new(big.Int).Quo(new(big.Int).Sub(max, q0), q1)

	lowerNum := new(big.Int).Add(p0, new(big.Int).Mul(k, p1))
	lowerDen := new(big.Int).Add(q0, new(big.Int).Mul(k, q1))

	abs := new(big.Rat).Abs(r)
	lower := new(big.Rat).SetFrac(lowerNum, lowerDen)
	upper := new(big.Rat).SetFrac(p1, q1)

	dLower := new(big.Rat).Abs(new(big.Rat).Sub(lower, abs))
	dUpper := new(big.Rat).Abs(new(big.Rat).Sub(upper, abs))

	best := upper
	if dLower.Cmp(dUpper) < 0 {
		best = lower
	}

	num := best.Num().Int64()
	if r.Sign() < 0 {
		num = -num
	}
	return num, best.Denom().Int64()
}
