package token

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("token_repo")}
}

func (r *postgresRepo) Revoke(ctx context.Context, rev Revocation) error {
	const q = `
INSERT INTO revoked_tokens (token_id, user_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token_id) DO NOTHING
`
	if _, err := r.pool.Exec(ctx, q, rev.TokenID, rev.UserID, rev.ExpiresAt); err != nil {
		r.logger.Error("revoke", zap.String("token_id", rev.TokenID), zap.Error(err))
		return err
	}
	return nil
}

func (r *postgresRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID).Scan(&revoked)
	if err != nil {
		r.logger.Error("is revoked", zap.String("token_id", tokenID), zap.Error(err))
		return false, err
	}
	return revoked, nil
}

func (r *postgresRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		r.logger.Error("prune", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
