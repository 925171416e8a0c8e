package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directsales/internal/dbtest"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	require.Len(t, d.Ranks, 4)
	assert.Equal(t, "Starter", d.Ranks[0].Name)
	assert.Equal(t, int64(0), d.Ranks[0].ThresholdPV)
	assert.NotEmpty(t, d.Products)
	for _, p := range d.Products {
		assert.NotEmpty(t, p.Name)
		assert.GreaterOrEqual(t, p.PriceCents, int64(0))
	}
}

func TestParse_DuplicateThreshold(t *testing.T) {
	_, err := Parse([]byte(`
ranks:
  - {name: A, commission_rate: 1, threshold_pv: 10}
  - {name: B, commission_rate: 2, threshold_pv: 10}
`))
	require.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("ranks: [this is: not valid"))
	require.Error(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()
	d, err := Default()
	require.NoError(t, err)

	first, err := Apply(ctx, pool, d)
	require.NoError(t, err)
	assert.Equal(t, len(d.Ranks), first.Ranks)
	assert.Equal(t, len(d.Products), first.Products)

	second, err := Apply(ctx, pool, d)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Products)

	var ranks int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM ranks`).Scan(&ranks))
	assert.Equal(t, len(d.Ranks), ranks)
}
