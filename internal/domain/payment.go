package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending    = "pending"
	PaymentInitiated  = "initiated"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
)

// PaymentTerminal reports whether status can no longer change.
func PaymentTerminal(status string) bool {
	switch status {
	case PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

// PaymentTransaction reconciles a gateway notification with an internal order.
type PaymentTransaction struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	OrderID          string          `json:"orderId"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"paymentMethod"`
	MerchantID       string          `json:"merchantId"`
	MerchantKey      string          `json:"-"`
	Status           string          `json:"paymentStatus"`
	GatewayPaymentID string          `json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
