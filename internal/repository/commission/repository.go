package commission

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"directsales/internal/domain"
)

// EarnerTotal is one line of the commission report.
type EarnerTotal struct {
	EarnerID string          `json:"earnerId"`
	Email    string          `json:"email"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

type Repository interface {
	ListByEarner(ctx context.Context, earnerID string, limit int) ([]domain.Commission, error)
	Earned(ctx context.Context, earnerID string) (decimal.Decimal, error)
	// Report sums commissions per earner created at or after since.
	Report(ctx context.Context, since time.Time) ([]EarnerTotal, error)
}
