package commission

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("commission_repo")}
}

func (r *postgresRepo) ListByEarner(ctx context.Context, earnerID string, limit int) ([]domain.Commission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
SELECT id::text, earner_id::text, sale_id::text, source_user_id::text, rate, amount, created_at
FROM commissions
WHERE earner_id = $1
ORDER BY created_at DESC
LIMIT $2
`, earnerID, limit)
	if err != nil {
		r.logger.Error("list by earner", zap.String("earner_id", earnerID), zap.Error(err))
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Commission, error) {
		var c domain.Commission
		err := row.Scan(&c.ID, &c.EarnerID, &c.SaleID, &c.SourceUserID, &c.Rate, &c.Amount, &c.CreatedAt)
		return c, err
	})
}

func (r *postgresRepo) Earned(ctx context.Context, earnerID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(sum(amount), 0) FROM commissions WHERE earner_id = $1`, earnerID).Scan(&total)
	if err != nil {
		r.logger.Error("earned", zap.String("earner_id", earnerID), zap.Error(err))
	}
	return total, err
}

func (r *postgresRepo) Report(ctx context.Context, since time.Time) ([]EarnerTotal, error) {
	rows, err := r.pool.Query(ctx, `
SELECT c.earner_id::text, p.email, count(*), sum(c.amount)
FROM commissions c
JOIN profiles p ON p.id = c.earner_id
WHERE c.created_at >= $1
GROUP BY c.earner_id, p.email
ORDER BY sum(c.amount) DESC, p.email
`, since)
	if err != nil {
		r.logger.Error("report", zap.Error(err))
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (EarnerTotal, error) {
		var e EarnerTotal
		err := row.Scan(&e.EarnerID, &e.Email, &e.Count, &e.Amount)
		return e, err
	})
}
