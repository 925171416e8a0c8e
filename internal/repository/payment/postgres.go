package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/db"
	"directsales/internal/domain"
	"directsales/internal/logging"
	"directsales/internal/rankladder"
	rankrepo "directsales/internal/repository/rank"
)

const txColumns = `id::text, user_id::text, order_id::text, amount, payment_method, merchant_id, merchant_key,
       payment_status, COALESCE(gateway_payment_id, ''), created_at, updated_at`

var hundred = decimal.NewFromInt(100)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger).Named("payment_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, t domain.PaymentTransaction) (*domain.PaymentTransaction, error) {
	if t.Status == "" {
		t.Status = domain.PaymentInitiated
	}
	out, err := scanTransaction(r.pool.QueryRow(ctx, `
INSERT INTO payment_transactions (user_id, order_id, amount, payment_method, merchant_id, merchant_key, payment_status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+txColumns,
		t.UserID, t.OrderID, t.Amount, t.PaymentMethod, t.MerchantID, t.MerchantKey, t.Status))
	if err != nil {
		r.logger.Error("create", zap.String("order_id", t.OrderID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("initiated",
		zap.String("id", out.ID),
		zap.String("order_id", out.OrderID),
		zap.String("amount", out.Amount.StringFixed(2)),
	)
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM payment_transactions WHERE id = $1`, id))
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.PaymentTransaction, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	const where = `
WHERE ($1::text = '' OR user_id::text = $1::text)
  AND ($2::text = '' OR payment_status = $2::text)`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM payment_transactions`+where, f.UserID, f.Status).Scan(&total); err != nil {
		r.logger.Error("count", zap.Error(err))
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+txColumns+` FROM payment_transactions`+where+`
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`, f.UserID, f.Status, f.Limit, f.Offset)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.PaymentTransaction, 0, f.Limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *postgresRepo) ApplyResolution(ctx context.Context, res Resolution) (*Result, error) {
	var result *Result
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanTransaction(tx.QueryRow(ctx,
			`SELECT `+txColumns+` FROM payment_transactions WHERE id = $1 FOR UPDATE`, res.TransactionID))
		if err != nil {
			return err
		}
		if res.AmountGross != nil && !res.AmountGross.Round(2).Equal(current.Amount.Round(2)) {
			return domain.Invalid("amount_gross", fmt.Sprintf("%s does not match recorded amount %s",
				res.AmountGross.StringFixed(2), current.Amount.StringFixed(2)))
		}
		if domain.PaymentTerminal(current.Status) {
			result = &Result{Transaction: current}
			return nil
		}

		updated, err := scanTransaction(tx.QueryRow(ctx, `
UPDATE payment_transactions
SET payment_status = $2,
    gateway_payment_id = COALESCE(NULLIF($3::text, ''), gateway_payment_id),
    updated_at = now()
WHERE id = $1
RETURNING `+txColumns, current.ID, res.Status, res.GatewayPaymentID))
		if err != nil {
			return err
		}
		result = &Result{Transaction: updated, Applied: true}

		switch res.Status {
		case domain.PaymentCompleted:
			return r.recordSale(ctx, tx, updated, result)
		case domain.PaymentFailed:
			return setOrderStatus(ctx, tx, updated.OrderID, domain.OrderFailed)
		case domain.PaymentCancelled:
			return setOrderStatus(ctx, tx, updated.OrderID, domain.OrderCancelled)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrInvalidInput) {
			r.logger.Error("apply resolution", zap.String("id", res.TransactionID), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

// recordSale writes the single sale for the transaction's order, credits its
// volumes and settles the order.
func (r *postgresRepo) recordSale(ctx context.Context, tx pgx.Tx, t *domain.PaymentTransaction, result *Result) error {
	pv := t.Amount.Floor().IntPart()

	var sale domain.Sale
	err := tx.QueryRow(ctx, `
INSERT INTO sales (user_id, order_id, transaction_id, amount, personal_volume, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (order_id) DO NOTHING
RETURNING id::text, user_id::text, order_id::text, transaction_id::text, amount, personal_volume, status, sale_date
`, t.UserID, t.OrderID, t.ID, t.Amount, pv, domain.SaleCompleted).Scan(
		&sale.ID, &sale.UserID, &sale.OrderID, &sale.TransactionID, &sale.Amount, &sale.PersonalVolume, &sale.Status, &sale.SaleDate)
	if errors.Is(err, pgx.ErrNoRows) {
		// The order was already credited through another transaction.
		r.logger.Warn("sale exists for order", zap.String("order_id", t.OrderID), zap.String("transaction_id", t.ID))
		return setOrderStatus(ctx, tx, t.OrderID, domain.OrderPaid)
	}
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	result.Sale = &sale

	if err := creditVolumes(ctx, tx, &sale, result); err != nil {
		return err
	}
	return settleOrder(ctx, tx, t)
}

// standing is a profile's volumes and rank as seen inside a sale.
type standing struct {
	ID       string
	Personal int64
	Group    int64
	RankID   *string
}

// creditVolumes adds the sale's PV to the buyer and to every upline
// member's group volume, re-qualifies each of them and pays the sponsor.
func creditVolumes(ctx context.Context, tx pgx.Tx, sale *domain.Sale, result *Result) error {
	ladder, err := rankrepo.LoadLadder(ctx, tx)
	if err != nil {
		return err
	}

	buyer := standing{ID: sale.UserID}
	var sponsorID *string
	err = tx.QueryRow(ctx, `
UPDATE profiles SET personal_volume = personal_volume + $2
WHERE id = $1
RETURNING personal_volume, group_volume, rank_id::text, sponsor_id::text
`, sale.UserID, sale.PersonalVolume).Scan(&buyer.Personal, &buyer.Group, &buyer.RankID, &sponsorID)
	if err != nil {
		return fmt.Errorf("credit personal volume: %w", err)
	}
	if result.Promoted, err = requalify(ctx, tx, ladder, buyer); err != nil {
		return err
	}

	if sponsorID == nil {
		return nil
	}
	rows, err := tx.Query(ctx, `
WITH RECURSIVE upline AS (
    SELECT id, sponsor_id, 1 AS depth FROM profiles WHERE id = $1
    UNION ALL
    SELECT pr.id, pr.sponsor_id, u.depth + 1
    FROM profiles pr
    JOIN upline u ON pr.id = u.sponsor_id
    WHERE u.depth < 64
)
UPDATE profiles SET group_volume = group_volume + $2
WHERE id IN (SELECT id FROM upline)
RETURNING id::text, personal_volume, group_volume, rank_id::text
`, *sponsorID, sale.PersonalVolume)
	if err != nil {
		return fmt.Errorf("credit group volume: %w", err)
	}
	upline, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (standing, error) {
		var s standing
		err := row.Scan(&s.ID, &s.Personal, &s.Group, &s.RankID)
		return s, err
	})
	if err != nil {
		return fmt.Errorf("credit group volume: %w", err)
	}
	for _, member := range upline {
		promoted, err := requalify(ctx, tx, ladder, member)
		if err != nil {
			return err
		}
		if promoted != nil {
			if result.UplinePromotions == nil {
				result.UplinePromotions = map[string]domain.Rank{}
			}
			result.UplinePromotions[member.ID] = *promoted
		}
	}

	// The sponsor is paid at the rank this sale may just have earned them.
	result.Commission, err = creditSponsor(ctx, tx, *sponsorID, sale)
	return err
}

// settleOrder marks the order paid and empties the buyer's cart.
func settleOrder(ctx context.Context, tx pgx.Tx, t *domain.PaymentTransaction) error {
	if err := setOrderStatus(ctx, tx, t.OrderID, domain.OrderPaid); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, t.UserID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func creditSponsor(ctx context.Context, tx pgx.Tx, sponsorID string, sale *domain.Sale) (*domain.Commission, error) {
	var rate decimal.NullDecimal
	err := tx.QueryRow(ctx, `
SELECT r.commission_rate
FROM profiles p
LEFT JOIN ranks r ON r.id = p.rank_id
WHERE p.id = $1
`, sponsorID).Scan(&rate)
	if err != nil {
		return nil, fmt.Errorf("load sponsor rank: %w", err)
	}
	if !rate.Valid || !rate.Decimal.IsPositive() {
		return nil, nil
	}

	amount := sale.Amount.Mul(rate.Decimal).Div(hundred).Round(4)
	var c domain.Commission
	err = tx.QueryRow(ctx, `
INSERT INTO commissions (earner_id, sale_id, source_user_id, rate, amount)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (sale_id, earner_id) DO NOTHING
RETURNING id::text, earner_id::text, sale_id::text, source_user_id::text, rate, amount, created_at
`, sponsorID, sale.ID, sale.UserID, rate.Decimal, amount).Scan(
		&c.ID, &c.EarnerID, &c.SaleID, &c.SourceUserID, &c.Rate, &c.Amount, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert commission: %w", err)
	}
	return &c, nil
}

// requalify moves the profile to the highest rung its volumes meet. Ranks
// are only ever raised here; demotion is an admin decision.
func requalify(ctx context.Context, tx pgx.Tx, ladder rankladder.Ladder, who standing) (*domain.Rank, error) {
	target := ladder.Qualify(who.Personal, who.Group)
	if target == nil {
		return nil, nil
	}
	if who.RankID != nil {
		if *who.RankID == target.ID || ladder.IndexOf(*who.RankID) >= ladder.IndexOf(target.ID) {
			return nil, nil
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE profiles SET rank_id = $2 WHERE id = $1`, who.ID, target.ID); err != nil {
		return nil, fmt.Errorf("promote %s: %w", who.ID, err)
	}
	return target, nil
}

func setOrderStatus(ctx context.Context, tx pgx.Tx, orderID, status string) error {
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1 AND status = 'pending'`, orderID, status); err != nil {
		return fmt.Errorf("set order %s: %w", status, err)
	}
	return nil
}

func (r *postgresRepo) ExpireStale(ctx context.Context, cutoff time.Time) ([]string, error) {
	var expired []string
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
UPDATE payment_transactions
SET payment_status = 'cancelled', updated_at = now()
WHERE payment_status IN ('pending', 'initiated') AND created_at < $1
RETURNING id::text, order_id::text
`, cutoff)
		if err != nil {
			return err
		}
		var orderIDs []string
		for rows.Next() {
			var id, orderID string
			if err := rows.Scan(&id, &orderID); err != nil {
				rows.Close()
				return err
			}
			expired = append(expired, id)
			orderIDs = append(orderIDs, orderID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(orderIDs) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `UPDATE orders SET status = 'cancelled' WHERE id::text = ANY($1) AND status = 'pending'`, orderIDs)
		return err
	})
	if err != nil {
		r.logger.Error("expire stale", zap.Time("cutoff", cutoff), zap.Error(err))
		return nil, err
	}
	if len(expired) > 0 {
		r.logger.Info("expired stale payments", zap.Int("count", len(expired)), zap.Time("cutoff", cutoff))
	}
	return expired, nil
}

func scanTransaction(row pgx.Row) (*domain.PaymentTransaction, error) {
	var t domain.PaymentTransaction
	err := row.Scan(&t.ID, &t.UserID, &t.OrderID, &t.Amount, &t.PaymentMethod, &t.MerchantID, &t.MerchantKey,
		&t.Status, &t.GatewayPaymentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
