package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const SaleCompleted = "completed"

// Sale is the financial outcome of a completed payment. Only the payment
// callback writes sales.
type Sale struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	OrderID        string          `json:"orderId"`
	TransactionID  string          `json:"transactionId"`
	Amount         decimal.Decimal `json:"amount"`
	PersonalVolume int64           `json:"personalVolume"`
	Status         string          `json:"status"`
	SaleDate       time.Time       `json:"saleDate"`
}

// Commission is the sponsor's share of a downline sale.
type Commission struct {
	ID           string          `json:"id"`
	EarnerID     string          `json:"earnerId"`
	SaleID       string          `json:"saleId"`
	SourceUserID string          `json:"sourceUserId"`
	Rate         decimal.Decimal `json:"rate"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"createdAt"`
}
