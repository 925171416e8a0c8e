package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"directsales/internal/domain"
)

// Totals aggregates a user's sales.
type Totals struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Volume int64           `json:"volume"`
}

// MonthPoint is one bucket of the dashboard chart.
type MonthPoint struct {
	Month  time.Time       `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Volume int64           `json:"volume"`
}

// Repository reads sales. Sales are written only when a payment completes.
type Repository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Sale, error)
	TotalsByUser(ctx context.Context, userID string) (Totals, error)
	// Monthly returns per-month sums since the first day of since's month.
	// Months without sales are absent.
	Monthly(ctx context.Context, userID string, since time.Time) ([]MonthPoint, error)
}
