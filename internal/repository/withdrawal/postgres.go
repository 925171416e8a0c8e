package withdrawal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/db"
	"directsales/internal/domain"
	"directsales/internal/logging"
)

const withdrawalColumns = `id::text, user_id::text, amount, status, note, created_at, decided_at`

const availableQuery = `
SELECT (SELECT COALESCE(sum(amount), 0) FROM commissions WHERE earner_id = $1)
     - (SELECT COALESCE(sum(amount), 0) FROM withdrawals WHERE user_id = $1 AND status IN ('pending', 'approved'))
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("withdrawal_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, userID string, amount decimal.Decimal, note string) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Serialises concurrent requests from the same user.
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id::text FROM profiles WHERE id = $1 FOR UPDATE`, userID).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}

		var available decimal.Decimal
		if err := tx.QueryRow(ctx, availableQuery, userID).Scan(&available); err != nil {
			return err
		}
		if amount.GreaterThan(available) {
			return fmt.Errorf("requested %s, available %s: %w", amount.StringFixed(2), available.StringFixed(2), domain.ErrInsufficientFunds)
		}

		var err error
		out, err = scanWithdrawal(tx.QueryRow(ctx, `
INSERT INTO withdrawals (user_id, amount, note)
VALUES ($1, $2, $3)
RETURNING `+withdrawalColumns, userID, amount, note))
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientFunds) && !errors.Is(err, domain.ErrNotFound) {
			r.logger.Error("create", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	r.logger.Info("requested", zap.String("id", out.ID), zap.String("user_id", userID), zap.String("amount", amount.StringFixed(2)))
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Withdrawal, error) {
	return scanWithdrawal(r.pool.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Withdrawal, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	const where = `
WHERE ($1::text = '' OR user_id::text = $1::text)
  AND ($2::text = '' OR status = $2::text)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM withdrawals`+where, f.UserID, f.Status).Scan(&total); err != nil {
		r.logger.Error("count", zap.Error(err))
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals`+where+`
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`, f.UserID, f.Status, f.Limit, f.Offset)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Withdrawal, 0, f.Limit)
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *w)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) Decide(ctx context.Context, id, status, note string) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanWithdrawal(tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if current.Status != domain.WithdrawalPending {
			return fmt.Errorf("withdrawal already %s: %w", current.Status, domain.ErrConflict)
		}
		out, err = scanWithdrawal(tx.QueryRow(ctx, `
UPDATE withdrawals
SET status = $2, note = CASE WHEN $3::text = '' THEN note ELSE $3::text END, decided_at = now()
WHERE id = $1
RETURNING `+withdrawalColumns, id, status, note))
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrConflict) {
			r.logger.Error("decide", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	r.logger.Info("decided", zap.String("id", id), zap.String("status", status))
	return out, nil
}

func (r *postgresRepo) Available(ctx context.Context, userID string) (decimal.Decimal, error) {
	var available decimal.Decimal
	if err := r.pool.QueryRow(ctx, availableQuery, userID).Scan(&available); err != nil {
		r.logger.Error("available", zap.String("user_id", userID), zap.Error(err))
		return decimal.Zero, err
	}
	return available, nil
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Status, &w.Note, &w.CreatedAt, &w.DecidedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}
