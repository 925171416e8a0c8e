// Package seed loads the default rank ladder and demo catalogue.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"directsales/internal/db"
)

//go:embed seed.yaml
var defaultData []byte

type rankSeed struct {
	Name           string  `yaml:"name"`
	CommissionRate float64 `yaml:"commission_rate"`
	ThresholdPV    int64   `yaml:"threshold_pv"`
	ThresholdGV    int64   `yaml:"threshold_gv"`
}

type productSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PriceCents  int64  `yaml:"price_cents"`
	Category    string `yaml:"category"`
	VPPoints    int64  `yaml:"vp_points"`
	ImageURL    string `yaml:"image_url"`
	Stock       int    `yaml:"stock"`
}

// Data is the parsed seed file.
type Data struct {
	Ranks    []rankSeed    `yaml:"ranks"`
	Products []productSeed `yaml:"products"`
}

// Result counts rows touched by Apply.
type Result struct {
	Ranks    int
	Products int
}

// Parse decodes seed YAML.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("decode seed: %w", err)
	}
	seen := make(map[int64]string, len(d.Ranks))
	for _, r := range d.Ranks {
		if r.Name == "" {
			return Data{}, fmt.Errorf("rank without name")
		}
		if other, ok := seen[r.ThresholdPV]; ok {
			return Data{}, fmt.Errorf("ranks %s and %s share threshold_pv %d", other, r.Name, r.ThresholdPV)
		}
		seen[r.ThresholdPV] = r.Name
	}
	return d, nil
}

// Default returns the embedded seed data.
func Default() (Data, error) {
	return Parse(defaultData)
}

// Apply writes d in one transaction. It is idempotent: ranks are upserted by
// name and products are inserted only when no product has the same name.
func Apply(ctx context.Context, pool *pgxpool.Pool, d Data) (Result, error) {
	var res Result
	err := db.InTx(ctx, pool, func(tx pgx.Tx) error {
		for _, r := range d.Ranks {
			if err := upsertRank(ctx, tx, r); err != nil {
				return fmt.Errorf("upsert rank %s: %w", r.Name, err)
			}
			res.Ranks++
		}
		for _, p := range d.Products {
			inserted, err := insertProduct(ctx, tx, p)
			if err != nil {
				return fmt.Errorf("insert product %s: %w", p.Name, err)
			}
			if inserted {
				res.Products++
			}
		}
		return nil
	})
	return res, err
}

func upsertRank(ctx context.Context, tx pgx.Tx, r rankSeed) error {
	const q = `
INSERT INTO ranks (name, commission_rate, threshold_pv, threshold_gv)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE
SET commission_rate = EXCLUDED.commission_rate,
    threshold_pv = EXCLUDED.threshold_pv,
    threshold_gv = EXCLUDED.threshold_gv
`
	_, err := tx.Exec(ctx, q, r.Name, r.CommissionRate, r.ThresholdPV, r.ThresholdGV)
	return err
}

func insertProduct(ctx context.Context, tx pgx.Tx, p productSeed) (bool, error) {
	const q = `
INSERT INTO products (name, description, price_cents, category, vp_points, image_url, stock)
SELECT $1::text, NULLIF($2::text, ''), $3::bigint, COALESCE(NULLIF($4::text, ''), 'Uncategorized'), $5::bigint, NULLIF($6::text, ''), $7::int
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1::text)
`
	tag, err := tx.Exec(ctx, q, p.Name, p.Description, p.PriceCents, p.Category, p.VPPoints, p.ImageURL, p.Stock)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
