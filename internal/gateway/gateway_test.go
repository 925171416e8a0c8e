package gateway

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directsales/internal/domain"
)

func testGateway(testMode bool) Gateway {
	return Gateway{
		MerchantID:  "m-1",
		MerchantKey: "k-1",
		TestMode:    testMode,
		ReturnURL:   "https://shop.example/return",
		CancelURL:   "https://shop.example/cancel",
		NotifyURL:   "https://api.example/payments/notify",
	}
}

func fieldMap(fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestProcessURL(t *testing.T) {
	assert.Equal(t, SandboxProcessURL, testGateway(true).ProcessURL())
	assert.Equal(t, LiveProcessURL, testGateway(false).ProcessURL())
}

func TestForm(t *testing.T) {
	tx := domain.PaymentTransaction{
		ID:          "tx-1",
		MerchantID:  "m-1",
		MerchantKey: "k-1",
		Amount:      decimal.RequireFromString("230"),
	}
	fields := testGateway(true).Form(tx, Payer{Email: "a@b.c", FirstName: "Ann"}, "Order ORD-1")
	got := fieldMap(fields)

	assert.Equal(t, "merchant_id", fields[0].Name)
	assert.Equal(t, "230.00", got["amount"])
	assert.Equal(t, "tx-1", got["m_payment_id"])
	assert.Equal(t, "a@b.c", got["email_address"])
	assert.Equal(t, "Order ORD-1", got["item_name"])
	assert.Equal(t, "true", got["testing"])

	live := fieldMap(testGateway(false).Form(tx, Payer{Email: "a@b.c"}, "x"))
	_, ok := live["testing"]
	assert.False(t, ok)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "2.9985", decimal.RequireFromString("2.9985").String())
	assert.Equal(t, "3.00", FormatAmount(decimal.RequireFromString("2.9985")))
	assert.Equal(t, "0.10", FormatAmount(decimal.RequireFromString("0.1")))
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification(url.Values{
		"m_payment_id":   {"T1"},
		"payment_status": {"COMPLETE"},
		"pf_payment_id":  {"9001"},
		"amount_gross":   {"150.00"},
	})
	require.NoError(t, err)
	assert.Equal(t, "T1", n.PaymentID)
	assert.Equal(t, domain.PaymentCompleted, n.Status)
	assert.True(t, n.Succeeded())
	assert.Equal(t, "9001", n.GatewayPaymentID)
	require.NotNil(t, n.AmountGross)
	assert.True(t, n.AmountGross.Equal(decimal.NewFromInt(150)))
}

func TestParseNotification_Errors(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		want error
	}{
		{"missing correlator", url.Values{"payment_status": {"COMPLETE"}}, ErrMissingCorrelator},
		{"missing status", url.Values{"m_payment_id": {"T1"}}, ErrMissingStatus},
		{"unknown status", url.Values{"m_payment_id": {"T1"}, "payment_status": {"MAYBE"}}, ErrUnknownStatus},
		{"lower-case sentinel", url.Values{"m_payment_id": {"T1"}, "payment_status": {" complete "}}, ErrUnknownStatus},
		{"mixed-case sentinel", url.Values{"m_payment_id": {"T1"}, "payment_status": {"Complete"}}, ErrUnknownStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseNotification(tc.form)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := ParseNotification(url.Values{"m_payment_id": {"T1"}, "payment_status": {"COMPLETE"}, "amount_gross": {"abc"}})
	require.Error(t, err)
}

func TestMapStatus(t *testing.T) {
	for raw, want := range map[string]string{
		StatusComplete:  domain.PaymentCompleted,
		StatusFailed:    domain.PaymentFailed,
		StatusCancelled: domain.PaymentCancelled,
		StatusPending:   domain.PaymentProcessing,
	} {
		got, ok := MapStatus(raw)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := MapStatus("complete")
	assert.False(t, ok)
}
