package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"directsales/internal/db"
	"directsales/internal/domain"
	"directsales/internal/logging"
	rankrepo "directsales/internal/repository/rank"
)

const referralCodeConstraint = "profiles_referral_code_key"

const selectProfile = `
SELECT p.id::text, p.email, p.password_hash, p.role, p.first_name, p.last_name, p.referral_code,
       p.sponsor_id::text, p.rank_id::text, p.personal_volume, p.group_volume, p.team_size, p.created_at,
       r.name, r.commission_rate, r.threshold_pv, r.threshold_gv
FROM profiles p
LEFT JOIN ranks r ON r.id = p.rank_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("profile_repo")}
}

// Create inserts the profile and adds one to the team size of every
// upline member in the same transaction. A profile without a rank starts
// on the highest rung that needs no volume.
func (r *postgresRepo) Create(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	var id string
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if p.RankID == nil {
			ladder, err := rankrepo.LoadLadder(ctx, tx)
			if err != nil {
				return err
			}
			if entry := ladder.Qualify(0, 0); entry != nil {
				p.RankID = &entry.ID
			}
		}
		err := tx.QueryRow(ctx, `
INSERT INTO profiles (email, password_hash, role, first_name, last_name, referral_code, sponsor_id, rank_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text
`, strings.ToLower(p.Email), p.PasswordHash, p.Role, p.FirstName, p.LastName, p.ReferralCode, p.SponsorID, p.RankID).Scan(&id)
		if err != nil {
			return err
		}
		if p.SponsorID == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `
WITH RECURSIVE upline AS (
    SELECT id, sponsor_id, 1 AS depth FROM profiles WHERE id = $1
    UNION ALL
    SELECT pr.id, pr.sponsor_id, u.depth + 1
    FROM profiles pr
    JOIN upline u ON pr.id = u.sponsor_id
    WHERE u.depth < 64
)
UPDATE profiles SET team_size = team_size + 1
WHERE id IN (SELECT id FROM upline)
`, *p.SponsorID)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			if db.ConstraintName(err) == referralCodeConstraint {
				return nil, ErrReferralCodeTaken
			}
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("create", zap.String("email", p.Email), zap.Error(err))
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, selectProfile+`WHERE lower(p.email) = lower($1) LIMIT 1`, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, selectProfile+`WHERE p.id = $1`, id))
}

func (r *postgresRepo) GetByReferralCode(ctx context.Context, code string) (*domain.Profile, error) {
	return r.scanProfile(r.pool.QueryRow(ctx, selectProfile+`WHERE p.referral_code = $1`, code))
}

func (r *postgresRepo) List(ctx context.Context, limit, offset int) ([]domain.Profile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, selectProfile+`ORDER BY p.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in AdminUpdate) (*domain.Profile, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE profiles
SET role = COALESCE($2, role),
    rank_id = COALESCE($3::uuid, rank_id),
    personal_volume = COALESCE($4, personal_volume),
    group_volume = COALESCE($5, group_volume)
WHERE id = $1
`, id, in.Role, in.RankID, in.PersonalVolume, in.GroupVolume)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, domain.Invalid("rankId", "unknown rank")
		}
		r.logger.Error("update", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) DirectDownline(ctx context.Context, id string) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, selectProfile+`WHERE p.sponsor_id = $1 ORDER BY p.created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// DownlineSize counts everyone recruited directly or indirectly by id.
func (r *postgresRepo) DownlineSize(ctx context.Context, id string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
WITH RECURSIVE downline AS (
    SELECT id, 1 AS depth FROM profiles WHERE sponsor_id = $1
    UNION ALL
    SELECT p.id, d.depth + 1
    FROM profiles p
    JOIN downline d ON p.sponsor_id = d.id
    WHERE d.depth < 64
)
SELECT count(*) FROM downline
`, id).Scan(&n)
	return n, err
}

func (r *postgresRepo) collect(rows pgx.Rows) ([]domain.Profile, error) {
	defer rows.Close()
	var out []domain.Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		p        domain.Profile
		rankName *string
		rankRate *float64
		rankPV   *int64
		rankGV   *int64
	)
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.PasswordHash,
		&p.Role,
		&p.FirstName,
		&p.LastName,
		&p.ReferralCode,
		&p.SponsorID,
		&p.RankID,
		&p.PersonalVolume,
		&p.GroupVolume,
		&p.TeamSize,
		&p.CreatedAt,
		&rankName,
		&rankRate,
		&rankPV,
		&rankGV,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("scan", zap.Error(err))
		return nil, err
	}
	if p.RankID != nil && rankName != nil {
		p.Rank = &domain.Rank{
			ID:             *p.RankID,
			Name:           *rankName,
			CommissionRate: deref(rankRate),
			ThresholdPV:    deref(rankPV),
			ThresholdGV:    deref(rankGV),
		}
	}
	return &p, nil
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
