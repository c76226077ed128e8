// =============================================================================
// PayPal to GnuCash Importer - Conversion Merger Module
// =============================================================================
//
// PayPal books a currency exchange as three consecutive rows: a "Currency
// Conversion" row debiting the foreign currency, a "Currency Conversion" row
// crediting EUR, and finally the real economic transaction. The ledger only
// wants the last one, denominated in the currency of the first.
//
// The merger is a small state machine over the row stream:
//
//   EMPTY     --conversion row-->     BUFFERING (row buffered)
//   BUFFERING --conversion row-->     BUFFERING (row appended)
//   BUFFERING --other row-->          flush: validate pair, fold currency,
//                                     net and a synthesized comment into the
//                                     current row, reset to EMPTY
//   EMPTY     --other row-->          pass through unchanged
//
// The buffer may transiently hold more than two rows; it is validated only
// at flush time. A flush with anything other than exactly two rows, or whose
// first row is not a completed EUR conversion, aborts the entire run: the
// export is inconsistent and silently guessing would corrupt the ledger.
//
// =============================================================================

package paypal

import (
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

// InconsistentConversionError reports a conversion buffer that violated the
// two-row/EUR/Completed invariant when it was flushed. Fatal for the run.
type InconsistentConversionError struct {
	// Line is the source line of the record that triggered the flush.
	Line int

	// Reason describes the violated invariant.
	Reason string
}

// Error implements the error interface.
func (e *InconsistentConversionError) Error() string {
	return fmt.Sprintf("inconsistent currency conversion at line %d: %s", e.Line, e.Reason)
}

// =============================================================================
// STATE MACHINE
// =============================================================================

// mergerState is the tagged state of the conversion merger.
type mergerState int

const (
	// stateEmpty means no conversion rows are pending.
	stateEmpty mergerState = iota

	// stateBuffering means conversion rows are buffered and the next
	// non-conversion row will trigger a flush.
	stateBuffering
)

// Merger folds currency-conversion row pairs into the primary transaction
// that follows them. It must see rows in file order.
type Merger struct {
	state  mergerState
	buffer []Record
}

// NewMerger returns a merger in the EMPTY state.
func NewMerger() *Merger {
	return &Merger{state: stateEmpty}
}

// MergeResult is the outcome of feeding one record to the merger.
type MergeResult struct {
	// Consumed is true when the record was a conversion leg and has been
	// buffered; the caller must not emit a transaction for it.
	Consumed bool

	// Merged is true when a buffered conversion pair was folded into this
	// record. Currency, Net and Comment then carry the effective values.
	Merged bool

	// Currency is the effective currency of the transaction (the first
	// buffered row's currency).
	Currency string

	// Net is the effective raw net amount (the first buffered row's net,
	// still in export locale format).
	Net string

	// Comment is a human-readable trace of the merged conversion, e.g.
	// "[ACME Corp via 5V11... and 9X77...]".
	Comment string
}

// Process feeds the next record, in file order, to the state machine.
//
// RETURNS:
//   - The merge result for this record.
//   - An InconsistentConversionError if a flush finds an invalid buffer.
func (m *Merger) Process(rec Record) (MergeResult, error) {
	if rec.IsConversion() {
		m.buffer = append(m.buffer, rec)
		m.state = stateBuffering
		return MergeResult{Consumed: true}, nil
	}

	if m.state == stateEmpty {
		return MergeResult{}, nil
	}

	// Flush: the buffered pair applies to this record.
	if err := m.validateBuffer(rec.Line); err != nil {
		return MergeResult{}, err
	}

	first, second := m.buffer[0], m.buffer[1]
	result := MergeResult{
		Merged:   true,
		Currency: first.Currency(),
		Net:      first.Net(),
		Comment: fmt.Sprintf("[%s via %s and %s]",
			first.Name(), first.TransactionID(), second.TransactionID()),
	}

	m.buffer = nil
	m.state = stateEmpty

	return result, nil
}

// Finish must be called after the last record. A non-empty buffer at end of
// input is a conversion pair with no primary transaction to merge into.
func (m *Merger) Finish() error {
	if m.state == stateBuffering {
		line := 0
		if len(m.buffer) > 0 {
			line = m.buffer[len(m.buffer)-1].Line
		}
		return &InconsistentConversionError{
			Line:   line,
			Reason: "conversion rows at end of input with no following transaction",
		}
	}
	return nil
}

// validateBuffer checks the two-row/EUR/Completed invariant at flush time.
func (m *Merger) validateBuffer(line int) error {
	if len(m.buffer) != 2 {
		return &InconsistentConversionError{
			Line:   line,
			Reason: fmt.Sprintf("expected 2 buffered conversion rows, found %d", len(m.buffer)),
		}
	}
	if m.buffer[0].Currency() != "EUR" {
		return &InconsistentConversionError{
			Line:   line,
			Reason: fmt.Sprintf("first conversion row is %q, expected EUR", m.buffer[0].Currency()),
		}
	}
	if m.buffer[0].Status() != "Completed" {
		return &InconsistentConversionError{
			Line:   line,
			Reason: fmt.Sprintf("first conversion row state is %q, expected Completed", m.buffer[0].Status()),
		}
	}
	return nil
}
