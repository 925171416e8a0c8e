package withdrawal

import (
	"context"

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

type Repository interface {
	// Create records a pending withdrawal if amount fits in the user's
	// available balance, otherwise it returns domain.ErrInsufficientFunds.
	Create(ctx context.Context, userID string, amount decimal.Decimal, note string) (*domain.Withdrawal, error)
	GetByID(ctx context.Context, id string) (*domain.Withdrawal, error)
	List(ctx context.Context, f Filter) ([]domain.Withdrawal, int, error)
	// Decide approves or rejects a pending withdrawal. Decided withdrawals
	// return domain.ErrConflict.
	Decide(ctx context.Context, id, status, note string) (*domain.Withdrawal, error)
	// Available is earned commissions minus pending and approved withdrawals.
	Available(ctx context.Context, userID string) (decimal.Decimal, error)
}
