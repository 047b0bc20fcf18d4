package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplier-match/internal/matching"
	"supplier-match/internal/reconcile/model"
)

const (
	kevmorNail = `Spartan Gripper Domestic Concrete Nail 5/8" (extra wide) - SFS7230W`
	gibbonNail = "Spartan Gripper Domestic Concrete Nail 5/8-SFS 7230W"
)

func priced(name string, price float64) model.Product {
	return model.Product{Name: name, Price: price, HasPrice: true}
}

func defaultOpts() model.Options {
	return model.Options{
		UseSku:       true,
		EnableTokens: true,
		Threshold:    matching.DefaultThreshold,
		Workers:      4,
	}
}

func TestRun(t *testing.T) {
	a := []model.Product{
		{Name: kevmorNail, Sku: "SFS7230W", Price: 12.5, HasPrice: true},
		priced("Heavy Duty Knee Pads", 30),
		{Name: "Roberts Carpet Seam Roller", Sku: "R1"},
		priced("Columbus Grinder Disc", 99),
		{Name: "Grout Float"},
	}
	b := []model.Product{
		priced(gibbonNail, 11),
		priced("Knee Pads", 28),
		{Name: "Carpet Seam Roller Star Wheel", Sku: " R1 "},
		{Name: "Leister Triac ST"},
		{Name: "GROUT FLOAT (rubber)"},
	}

	res, err := Run(context.Background(), a, b, defaultOpts(), matching.DefaultMatcher())
	require.NoError(t, err)
	require.Len(t, res.Rows, 4)

	t.Run("rows sorted by score", func(t *testing.T) {
		assert.Equal(t, "Heavy Duty Knee Pads", res.Rows[0].NameA)
		assert.Equal(t, model.MethodTokens, res.Rows[0].Method)
		assert.Equal(t, 1.0, res.Rows[0].Score)

		assert.Equal(t, "Grout Float", res.Rows[1].NameA)
		assert.Equal(t, model.MethodExact, res.Rows[1].Method)

		assert.Equal(t, kevmorNail, res.Rows[2].NameA)
		assert.Equal(t, gibbonNail, res.Rows[2].NameB)
		assert.Equal(t, model.MethodTokens, res.Rows[2].Method)
		assert.InDelta(t, 7.0/9.0, res.Rows[2].Score, 1e-9)

		assert.Equal(t, "R1", res.Rows[3].SkuB)
		assert.Equal(t, model.MethodSku, res.Rows[3].Method)
		assert.InDelta(t, 0.6, res.Rows[3].Score, 1e-9)
	})

	t.Run("price delta", func(t *testing.T) {
		require.NotNil(t, res.Rows[2].Delta)
		assert.InDelta(t, 1.5, *res.Rows[2].Delta, 1e-9)
		assert.Nil(t, res.Rows[1].Delta, "no prices on either side")
		assert.Nil(t, res.Rows[1].PriceA)
	})

	t.Run("shared tokens explain the match", func(t *testing.T) {
		assert.Equal(t, []string{"knee", "pads"}, res.Rows[0].Shared)
	})

	t.Run("unmatched rows", func(t *testing.T) {
		require.Len(t, res.OnlyA, 1)
		assert.Equal(t, "Columbus Grinder Disc", res.OnlyA[0].Name)
		require.Len(t, res.OnlyB, 1)
		assert.Equal(t, "Leister Triac ST", res.OnlyB[0].Name)
	})

	t.Run("stats", func(t *testing.T) {
		assert.Equal(t, 5, res.Stats.RowsA)
		assert.Equal(t, 5, res.Stats.RowsB)
		assert.Equal(t, 1, res.Stats.BySku)
		assert.Equal(t, 1, res.Stats.ByExact)
		assert.Equal(t, 2, res.Stats.ByTokens)
		assert.Positive(t, res.Stats.Comparisons)
	})
}

func TestRun_InputUntouched(t *testing.T) {
	a := []model.Product{{Name: kevmorNail, Sku: " SFS7230W "}}
	b := []model.Product{priced(gibbonNail, 11)}
	before := append([]model.Product(nil), a...)

	res, err := Run(context.Background(), a, b, defaultOpts(), matching.DefaultMatcher())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "SFS7230W", res.Rows[0].SkuA)

	assert.Equal(t, before, a)
	assert.Empty(t, a[0].NameNorm)
	assert.Nil(t, b[0].Tokens)
}

func TestRun_Duplicates(t *testing.T) {
	a := []model.Product{
		priced("Grout Float", 10),
		priced("GROUT FLOAT (rubber)", 8),
		{Name: "grout float"},
	}
	res, err := Run(context.Background(), a, nil, defaultOpts(), matching.DefaultMatcher())
	require.NoError(t, err)

	require.Len(t, res.OnlyA, 1)
	assert.Equal(t, 8.0, res.OnlyA[0].Price, "cheapest listing kept")
	assert.Equal(t, 2, res.Stats.DupsA)
	assert.Empty(t, res.Rows)
	assert.NotNil(t, res.OnlyB)
}

func TestRun_OneToOne(t *testing.T) {
	a := []model.Product{
		{Name: "Carpet Seam Roller Wide"},
		{Name: "Carpet Seam Roller Steel"},
	}
	b := []model.Product{
		{Name: "Carpet Seam Roller Steel Wheel"},
	}
	res, err := Run(context.Background(), a, b, defaultOpts(), matching.DefaultMatcher())
	require.NoError(t, err)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Carpet Seam Roller Steel", res.Rows[0].NameA)
	assert.InDelta(t, 0.8, res.Rows[0].Score, 1e-9)
	require.Len(t, res.OnlyA, 1)
	assert.Equal(t, "Carpet Seam Roller Wide", res.OnlyA[0].Name)
}

func TestRun_Options(t *testing.T) {
	newA := func() []model.Product { return []model.Product{{Name: kevmorNail, Sku: "X1"}} }
	newB := func() []model.Product { return []model.Product{{Name: gibbonNail, Sku: "X1"}} }

	t.Run("sku disabled falls through to tokens", func(t *testing.T) {
		opt := defaultOpts()
		opt.UseSku = false
		res, err := Run(context.Background(), newA(), newB(), opt, matching.DefaultMatcher())
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, model.MethodTokens, res.Rows[0].Method)
	})

	t.Run("strict after norm", func(t *testing.T) {
		opt := defaultOpts()
		opt.UseSku = false
		opt.StrictAfterNorm = true
		res, err := Run(context.Background(), newA(), newB(), opt, matching.DefaultMatcher())
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Zero(t, res.Stats.Comparisons)
	})

	t.Run("threshold above score", func(t *testing.T) {
		opt := defaultOpts()
		opt.UseSku = false
		opt.Threshold = 0.9
		res, err := Run(context.Background(), newA(), newB(), opt, matching.DefaultMatcher())
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
		assert.Len(t, res.OnlyA, 1)
		assert.Len(t, res.OnlyB, 1)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		opt := defaultOpts()
		opt.Threshold = 1.5
		_, err := Run(context.Background(), newA(), newB(), opt, matching.DefaultMatcher())
		assert.ErrorIs(t, err, matching.ErrInvalidThreshold)
	})

	t.Run("default worker count", func(t *testing.T) {
		opt := defaultOpts()
		opt.UseSku = false
		opt.Workers = 0
		res, err := Run(context.Background(), newA(), newB(), opt, matching.DefaultMatcher())
		require.NoError(t, err)
		assert.Len(t, res.Rows, 1)
	})
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := []model.Product{{Name: kevmorNail}}
	b := []model.Product{{Name: gibbonNail}}
	_, err := Run(ctx, a, b, defaultOpts(), matching.DefaultMatcher())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(context.Background(), nil, nil, defaultOpts(), matching.DefaultMatcher())
	require.NoError(t, err)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
	assert.Empty(t, res.OnlyA)
	assert.Empty(t, res.OnlyB)
}

func TestCandidates(t *testing.T) {
	b := []model.Product{
		{NameNorm: "knee pads", Tokens: matching.NewTokenSet("knee", "pads")},
		{NameNorm: "seam roller", Tokens: matching.NewTokenSet("seam", "roller")},
		{NameNorm: "knee roller", Tokens: matching.NewTokenSet("knee", "roller")},
	}
	idx := buildIndexB(b)

	used := []bool{false, false, false}
	assert.Equal(t, []int{0, 2}, idx.candidates(matching.NewTokenSet("knee"), used))
	assert.Equal(t, []int{0, 1, 2}, idx.candidates(matching.NewTokenSet("knee", "seam"), used))
	assert.Empty(t, idx.candidates(matching.NewTokenSet("grout"), used))
	assert.Nil(t, idx.candidates(matching.NewTokenSet(), used))

	used[2] = true
	assert.Equal(t, []int{0}, idx.candidates(matching.NewTokenSet("knee"), used))
}
