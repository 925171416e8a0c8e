// Package gateway builds the hosted payment page form and parses the
// gateway's server-to-server notifications.
package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"directsales/internal/domain"
)

const (
	SandboxProcessURL = "https://sandbox.payfast.co.za/eng/process"
	LiveProcessURL    = "https://www.payfast.co.za/eng/process"

	// StatusComplete is the gateway's success sentinel.
	StatusComplete  = "COMPLETE"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
	StatusPending   = "PENDING"

	PaymentMethod = "payfast"
)

var (
	ErrMissingCorrelator = errors.New("m_payment_id required")
	ErrMissingStatus     = errors.New("payment_status required")
	ErrUnknownStatus     = errors.New("unknown payment_status")
)

// Gateway holds the merchant credentials and callback URLs in force.
type Gateway struct {
	MerchantID  string
	MerchantKey string
	TestMode    bool
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
}

// ProcessURL is where the payer's browser posts the form.
func (g Gateway) ProcessURL() string {
	if g.TestMode {
		return SandboxProcessURL
	}
	return LiveProcessURL
}

// Field is one form input. Order matters to the gateway.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Payer identifies who is paying.
type Payer struct {
	Email     string
	FirstName string
	LastName  string
}

// Form builds the redirect payload for tx. The transaction id is the
// correlator the gateway echoes back as m_payment_id.
func (g Gateway) Form(tx domain.PaymentTransaction, payer Payer, itemName string) []Field {
	fields := []Field{
		{Name: "merchant_id", Value: tx.MerchantID},
		{Name: "merchant_key", Value: tx.MerchantKey},
		{Name: "return_url", Value: g.ReturnURL},
		{Name: "cancel_url", Value: g.CancelURL},
		{Name: "notify_url", Value: g.NotifyURL},
		{Name: "name_first", Value: payer.FirstName},
		{Name: "name_last", Value: payer.LastName},
		{Name: "email_address", Value: payer.Email},
		{Name: "m_payment_id", Value: tx.ID},
		{Name: "amount", Value: FormatAmount(tx.Amount)},
		{Name: "item_name", Value: itemName},
	}
	if g.TestMode {
		fields = append(fields, Field{Name: "testing", Value: "true"})
	}
	return fields
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Notification is a parsed callback.
type Notification struct {
	PaymentID        string
	RawStatus        string
	Status           string
	GatewayPaymentID string
	AmountGross      *decimal.Decimal
}

// Succeeded reports whether the gateway sent its success sentinel.
func (n Notification) Succeeded() bool {
	return n.RawStatus == StatusComplete
}

// ParseNotification validates the form body of a callback. A missing
// payment_status is rejected rather than assumed successful.
func ParseNotification(form url.Values) (Notification, error) {
	id := strings.TrimSpace(form.Get("m_payment_id"))
	if id == "" {
		return Notification{}, ErrMissingCorrelator
	}
	// Status codes are case-sensitive; "complete" is not the success sentinel.
	raw := strings.TrimSpace(form.Get("payment_status"))
	if raw == "" {
		return Notification{}, ErrMissingStatus
	}
	status, ok := MapStatus(raw)
	if !ok {
		return Notification{}, fmt.Errorf("%w: %s", ErrUnknownStatus, raw)
	}
	n := Notification{
		PaymentID:        id,
		RawStatus:        raw,
		Status:           status,
		GatewayPaymentID: strings.TrimSpace(form.Get("pf_payment_id")),
	}
	if gross := strings.TrimSpace(form.Get("amount_gross")); gross != "" {
		amt, err := decimal.NewFromString(gross)
		if err != nil {
			return Notification{}, fmt.Errorf("amount_gross: %w", err)
		}
		n.AmountGross = &amt
	}
	return n, nil
}

// MapStatus converts a gateway status code to a transaction status.
func MapStatus(raw string) (string, bool) {
	switch raw {
	case StatusComplete:
		return domain.PaymentCompleted, true
	case StatusFailed:
		return domain.PaymentFailed, true
	case StatusCancelled:
		return domain.PaymentCancelled, true
	case StatusPending:
		return domain.PaymentProcessing, true
	}
	return "", false
}
