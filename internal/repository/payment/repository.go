package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"directsales/internal/domain"
)

// Filter narrows List. Empty fields match everything.
type Filter struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

// Resolution is a gateway outcome to apply to a recorded transaction.
type Resolution struct {
	TransactionID    string
	Status           string
	GatewayPaymentID string
	// AmountGross, when set, must equal the recorded amount at 2 dp.
	AmountGross *decimal.Decimal
}

// Result reports what ApplyResolution changed.
type Result struct {
	Transaction *domain.PaymentTransaction
	// Applied is false when the transaction was already terminal.
	Applied    bool
	Sale       *domain.Sale
	Commission *domain.Commission
	// Promoted is set when the buyer moved up the ladder.
	Promoted *domain.Rank
	// UplinePromotions maps upline profile ids to the rank the sale's
	// group volume lifted them to.
	UplinePromotions map[string]domain.Rank
}

type Repository interface {
	Create(ctx context.Context, tx domain.PaymentTransaction) (*domain.PaymentTransaction, error)
	GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error)
	List(ctx context.Context, f Filter) ([]domain.PaymentTransaction, int, error)
	// ApplyResolution transitions the transaction and, on completion,
	// records the sale with all its volume and commission effects. It is
	// one unit of work and is a no-op for terminal transactions.
	ApplyResolution(ctx context.Context, res Resolution) (*Result, error)
	// ExpireStale cancels pending and initiated transactions created before
	// cutoff, together with their orders. It returns the expired ids.
	ExpireStale(ctx context.Context, cutoff time.Time) ([]string, error)
}
