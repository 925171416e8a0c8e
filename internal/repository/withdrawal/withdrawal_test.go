package withdrawal

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directsales/internal/dbtest"
	"directsales/internal/domain"
)

func TestPostgres_BalanceAndDecisions(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	earner := dbtest.InsertProfile(t, pool, "earner@example.com", nil)
	buyer := dbtest.InsertProfile(t, pool, "buyer@example.com", &earner)

	_, err := pool.Exec(ctx, `
WITH o AS (
    INSERT INTO orders (order_number, user_id, subtotal, tax, total, tax_rate)
    VALUES ('ORD-W', $1, 100, 0, 100, 0.15) RETURNING id
), tx AS (
    INSERT INTO payment_transactions (user_id, order_id, amount, payment_method, merchant_id, merchant_key, payment_status)
    SELECT $1, id, 100, 'payfast', 'm', 'k', 'completed' FROM o RETURNING id, order_id
), s AS (
    INSERT INTO sales (user_id, order_id, transaction_id, amount, personal_volume, status)
    SELECT $1, order_id, id, 100, 100, 'completed' FROM tx RETURNING id
)
INSERT INTO commissions (earner_id, sale_id, source_user_id, rate, amount)
SELECT $2, id, $1, 25, 25 FROM s
`, buyer, earner)
	require.NoError(t, err)

	available, err := repo.Available(ctx, earner)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(25)), available.String())

	_, err = repo.Create(ctx, earner, decimal.NewFromInt(30), "")
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds))

	first, err := repo.Create(ctx, earner, decimal.NewFromInt(20), "bank")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, first.Status)

	_, err = repo.Create(ctx, earner, decimal.NewFromInt(10), "")
	assert.True(t, errors.Is(err, domain.ErrInsufficientFunds), "pending withdrawals reserve balance")

	rejected, err := repo.Decide(ctx, first.ID, domain.WithdrawalRejected, "details missing")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalRejected, rejected.Status)
	assert.NotNil(t, rejected.DecidedAt)

	_, err = repo.Decide(ctx, first.ID, domain.WithdrawalApproved, "")
	assert.True(t, errors.Is(err, domain.ErrConflict))

	available, err = repo.Available(ctx, earner)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(25)))
}
