package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_UnmarshalLenient(t *testing.T) {
	var v struct {
		Amount Amount `json:"Amount"`
	}

	cases := []struct {
		in   string
		want float64
	}{
		{`{"Amount": 150.25}`, 150.25},
		{`{"Amount": "150.25"}`, 150.25},
		{`{"Amount": null}`, 0},
		{`{"Amount": ""}`, 0},
		{`{"Amount": "garbage"}`, 0},
	}
	for _, tc := range cases {
		v.Amount = 0
		require.NoError(t, json.Unmarshal([]byte(tc.in), &v), tc.in)
		assert.Equal(t, tc.want, float64(v.Amount), tc.in)
	}
}

func TestContact_DisplayName(t *testing.T) {
	assert.Equal(t, "Acme Pty Ltd", Contact{Name: "Acme Pty Ltd"}.DisplayName())
	assert.Equal(t, "Unknown Contact", Contact{}.DisplayName())
}

func TestInvoice_DecodePage(t *testing.T) {
	payload := `{
		"Invoices": [{
			"InvoiceNumber": "INV-0042",
			"InvoiceID": "b3f1",
			"Type": "ACCREC",
			"Status": "AUTHORISED",
			"Date": "\/Date(1706572800000+0000)\/",
			"DueDate": "2024-02-29",
			"AmountDue": 150.25,
			"Total": "150.25",
			"Contact": {"Name": "Acme Pty Ltd"},
			"Payments": [{"Date": "2024-02-01", "Amount": 50}]
		}]
	}`

	var page InvoicePage
	require.NoError(t, json.Unmarshal([]byte(payload), &page))
	require.Len(t, page.Invoices, 1)

	inv := page.Invoices[0]
	assert.Equal(t, "INV-0042", inv.InvoiceNumber)
	assert.Equal(t, date(2024, 1, 30), ParseDate(inv.Date))
	assert.Equal(t, 150.25, float64(inv.AmountDue))
	assert.Equal(t, 150.25, float64(inv.Total))
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, 50.0, float64(inv.Payments[0].Amount))
}
