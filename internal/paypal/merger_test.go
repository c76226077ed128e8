package paypal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gncutils/paypal-import/internal/csvparser"
	"github.com/gncutils/paypal-import/internal/paypal"
)

// row builds a test record on the given source line.
func row(line int, fields map[string]string) paypal.Record {
	return paypal.WrapRecords([]csvparser.Record{csvparser.NewRecord(line, fields)})[0]
}

// conversionRow builds one leg of a currency exchange.
func conversionRow(line int, currency, status, net, id string) paypal.Record {
	return row(line, map[string]string{
		paypal.FieldType:          paypal.TypeCurrencyConversion,
		paypal.FieldStatus:        status,
		paypal.FieldName:          "ACME Corp",
		paypal.FieldCurrency:      currency,
		paypal.FieldNet:           net,
		paypal.FieldTransactionID: id,
	})
}

// paymentRow builds an ordinary completed payment.
func paymentRow(line int, currency string) paypal.Record {
	return row(line, map[string]string{
		paypal.FieldType:          "Payment",
		paypal.FieldStatus:        "Completed",
		paypal.FieldName:          "ACME Corp",
		paypal.FieldCurrency:      currency,
		paypal.FieldNet:           "-10,00",
		paypal.FieldTransactionID: "MAIN1",
	})
}

func TestMerger_PassThrough(t *testing.T) {
	m := paypal.NewMerger()

	result, err := m.Process(paymentRow(2, "EUR"))
	require.NoError(t, err)
	assert.False(t, result.Consumed)
	assert.False(t, result.Merged)

	require.NoError(t, m.Finish())
}

func TestMerger_FoldsConversionPair(t *testing.T) {
	m := paypal.NewMerger()

	result, err := m.Process(conversionRow(2, "EUR", "Completed", "-8,05", "CONV1"))
	require.NoError(t, err)
	assert.True(t, result.Consumed)

	result, err = m.Process(conversionRow(3, "USD", "Completed", "10,00", "CONV2"))
	require.NoError(t, err)
	assert.True(t, result.Consumed)

	result, err = m.Process(paymentRow(4, "USD"))
	require.NoError(t, err)
	assert.False(t, result.Consumed)
	assert.True(t, result.Merged)
	assert.Equal(t, "EUR", result.Currency, "effective currency comes from the first leg")
	assert.Equal(t, "-8,05", result.Net, "effective net comes from the first leg")
	assert.Equal(t, "[ACME Corp via CONV1 and CONV2]", result.Comment)

	require.NoError(t, m.Finish())
}

func TestMerger_ResetsAfterFlush(t *testing.T) {
	m := paypal.NewMerger()

	_, err := m.Process(conversionRow(2, "EUR", "Completed", "-8,05", "CONV1"))
	require.NoError(t, err)
	_, err = m.Process(conversionRow(3, "USD", "Completed", "10,00", "CONV2"))
	require.NoError(t, err)
	_, err = m.Process(paymentRow(4, "USD"))
	require.NoError(t, err)

	// The next plain row must pass through untouched.
	result, err := m.Process(paymentRow(5, "EUR"))
	require.NoError(t, err)
	assert.False(t, result.Merged)
}

func TestMerger_FlushErrors(t *testing.T) {
	cases := []struct {
		name   string
		legs   []paypal.Record
		reason string
	}{
		{
			name:   "single leg",
			legs:   []paypal.Record{conversionRow(2, "EUR", "Completed", "-8,05", "CONV1")},
			reason: "found 1",
		},
		{
			name: "three legs",
			legs: []paypal.Record{
				conversionRow(2, "EUR", "Completed", "-8,05", "CONV1"),
				conversionRow(3, "USD", "Completed", "10,00", "CONV2"),
				conversionRow(4, "USD", "Completed", "1,00", "CONV3"),
			},
			reason: "found 3",
		},
		{
			name: "first leg not base currency",
			legs: []paypal.Record{
				conversionRow(2, "USD", "Completed", "10,00", "CONV1"),
				conversionRow(3, "EUR", "Completed", "-8,05", "CONV2"),
			},
			reason: "expected EUR",
		},
		{
			name: "first leg not completed",
			legs: []paypal.Record{
				conversionRow(2, "EUR", "Pending", "-8,05", "CONV1"),
				conversionRow(3, "USD", "Completed", "10,00", "CONV2"),
			},
			reason: "expected Completed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := paypal.NewMerger()
			for _, leg := range tc.legs {
				_, err := m.Process(leg)
				require.NoError(t, err)
			}

			_, err := m.Process(paymentRow(10, "USD"))
			require.Error(t, err)

			var inconsistent *paypal.InconsistentConversionError
			require.True(t, errors.As(err, &inconsistent))
			assert.Equal(t, 10, inconsistent.Line)
			assert.Contains(t, inconsistent.Reason, tc.reason)
		})
	}
}

func TestMerger_FinishWithPendingBuffer(t *testing.T) {
	m := paypal.NewMerger()

	_, err := m.Process(conversionRow(7, "EUR", "Completed", "-8,05", "CONV1"))
	require.NoError(t, err)
	_, err = m.Process(conversionRow(8, "USD", "Completed", "10,00", "CONV2"))
	require.NoError(t, err)

	err = m.Finish()
	require.Error(t, err)

	var inconsistent *paypal.InconsistentConversionError
	require.True(t, errors.As(err, &inconsistent))
	assert.Equal(t, 8, inconsistent.Line)
}
