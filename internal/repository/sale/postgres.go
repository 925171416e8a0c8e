package sale

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("sale_repo")}
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Sale, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
SELECT id::text, user_id::text, order_id::text, transaction_id::text, amount, personal_volume, status, sale_date
FROM sales
WHERE user_id = $1
ORDER BY sale_date DESC
LIMIT $2
`, userID, limit)
	if err != nil {
		r.logger.Error("list by user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Sale, error) {
		var s domain.Sale
		err := row.Scan(&s.ID, &s.UserID, &s.OrderID, &s.TransactionID, &s.Amount, &s.PersonalVolume, &s.Status, &s.SaleDate)
		return s, err
	})
}

func (r *postgresRepo) TotalsByUser(ctx context.Context, userID string) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `
SELECT count(*), COALESCE(sum(amount), 0), COALESCE(sum(personal_volume), 0)::bigint
FROM sales
WHERE user_id = $1
`, userID).Scan(&t.Count, &t.Amount, &t.Volume)
	if err != nil {
		r.logger.Error("totals", zap.String("user_id", userID), zap.Error(err))
	}
	return t, err
}

func (r *postgresRepo) Monthly(ctx context.Context, userID string, since time.Time) ([]MonthPoint, error) {
	rows, err := r.pool.Query(ctx, `
SELECT date_trunc('month', sale_date) AS month, sum(amount), sum(personal_volume)::bigint
FROM sales
WHERE user_id = $1 AND sale_date >= date_trunc('month', $2::timestamptz)
GROUP BY month
ORDER BY month
`, userID, since)
	if err != nil {
		r.logger.Error("monthly", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (MonthPoint, error) {
		var p MonthPoint
		err := row.Scan(&p.Month, &p.Amount, &p.Volume)
		return p, err
	})
}
