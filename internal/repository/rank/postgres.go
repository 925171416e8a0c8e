package rank

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/db"
	"directsales/internal/domain"
	"directsales/internal/logging"
	"directsales/internal/rankladder"
)

const rankColumns = `id::text, name, commission_rate::float8, threshold_pv, threshold_gv, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("rank_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Rank, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+rankColumns+` FROM ranks ORDER BY threshold_pv ASC, name ASC`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.Rank
	for rows.Next() {
		rk, err := scanRank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rk)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Rank, error) {
	return scanRank(r.pool.QueryRow(ctx, `SELECT `+rankColumns+` FROM ranks WHERE id = $1`, id))
}

func (r *postgresRepo) Create(ctx context.Context, rk domain.Rank) (*domain.Rank, error) {
	out, err := scanRank(r.pool.QueryRow(ctx, `
INSERT INTO ranks (name, commission_rate, threshold_pv, threshold_gv)
VALUES ($1, $2, $3, $4)
RETURNING `+rankColumns, rk.Name, rk.CommissionRate, rk.ThresholdPV, rk.ThresholdGV))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("create", zap.String("name", rk.Name), zap.Error(err))
		return nil, err
	}
	r.logger.Info("created", zap.String("id", out.ID), zap.String("name", out.Name))
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, rk domain.Rank) (*domain.Rank, error) {
	// threshold uniqueness is deferred, so the check fires on commit.
	var out *domain.Rank
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		out, err = scanRank(tx.QueryRow(ctx, `
UPDATE ranks
SET name = $2, commission_rate = $3, threshold_pv = $4, threshold_gv = $5
WHERE id = $1
RETURNING `+rankColumns, rk.ID, rk.Name, rk.CommissionRate, rk.ThresholdPV, rk.ThresholdGV))
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		if !errors.Is(err, domain.ErrNotFound) {
			r.logger.Error("update", zap.String("id", rk.ID), zap.Error(err))
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ranks WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("rank %s is assigned to profiles: %w", id, domain.ErrConflict)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SwapThresholds(ctx context.Context, firstID, secondID string) error {
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
SELECT id::text, threshold_pv, threshold_gv
FROM ranks
WHERE id IN ($1, $2)
FOR UPDATE
`, firstID, secondID)
		if err != nil {
			return err
		}
		type thresholds struct{ pv, gv int64 }
		found := map[string]thresholds{}
		for rows.Next() {
			var id string
			var th thresholds
			if err := rows.Scan(&id, &th.pv, &th.gv); err != nil {
				rows.Close()
				return err
			}
			found[id] = th
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		a, okA := found[firstID]
		b, okB := found[secondID]
		if !okA || !okB {
			return domain.ErrNotFound
		}

		const q = `UPDATE ranks SET threshold_pv = $2, threshold_gv = $3 WHERE id = $1`
		if _, err := tx.Exec(ctx, q, firstID, b.pv, b.gv); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, q, secondID, a.pv, a.gv); err != nil {
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.Error("swap thresholds", zap.String("first", firstID), zap.String("second", secondID), zap.Error(err))
	}
	return err
}

// LoadLadder reads every rank through q, so callers inside a transaction
// see the ladder that transaction sees.
func LoadLadder(ctx context.Context, q db.Querier) (rankladder.Ladder, error) {
	rows, err := q.Query(ctx, `SELECT `+rankColumns+` FROM ranks`)
	if err != nil {
		return rankladder.Ladder{}, fmt.Errorf("load ranks: %w", err)
	}
	ranks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Rank, error) {
		rk, err := scanRank(row)
		if err != nil {
			return domain.Rank{}, err
		}
		return *rk, nil
	})
	if err != nil {
		return rankladder.Ladder{}, fmt.Errorf("load ranks: %w", err)
	}
	return rankladder.New(ranks), nil
}

func scanRank(row pgx.Row) (*domain.Rank, error) {
	var rk domain.Rank
	if err := row.Scan(&rk.ID, &rk.Name, &rk.CommissionRate, &rk.ThresholdPV, &rk.ThresholdGV, &rk.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rk, nil
}
