package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/db"
	"directsales/internal/domain"
	"directsales/internal/logging"
)

const orderColumns = `id::text, order_number, user_id::text, subtotal, tax, total, tax_rate, status, items, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("order_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	out, err := scanOrder(r.pool.QueryRow(ctx, `
INSERT INTO orders (order_number, user_id, subtotal, tax, total, tax_rate, status, items)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+orderColumns,
		o.OrderNumber, o.UserID, o.Subtotal, o.Tax, o.Total, o.TaxRate, o.Status, o.Items))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("create", zap.String("user_id", o.UserID), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	const where = `
WHERE ($1::text = '' OR user_id::text = $1::text)
  AND ($2::text = '' OR status = $2::text)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, f.UserID, f.Status).Scan(&total); err != nil {
		r.logger.Error("count", zap.Error(err))
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders`+where+`
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`, f.UserID, f.Status, f.Limit, f.Offset)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Order, 0, f.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	out, err := scanOrder(r.pool.QueryRow(ctx, `
UPDATE orders SET status = $2
WHERE id = $1 AND status = 'pending'
RETURNING `+orderColumns, id, status))
	if errors.Is(err, domain.ErrNotFound) {
		return r.GetByID(ctx, id)
	}
	if err != nil {
		r.logger.Error("update status", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Subtotal, &o.Tax, &o.Total, &o.TaxRate, &o.Status, &o.Items, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
