package services

import (
	"context"
	"testing"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newBasket(id string, assets ...models.BasketAsset) *models.Basket {
	return &models.Basket{
		ID:     id,
		Name:   "Basket " + id,
		Symbol: id,
		Assets: assets,
	}
}

func TestBasketRegistry_CreateAndExpand(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	e.registerAsset(t, "USDB", nil)

	err := e.baskets.Create(context.Background(), newBasket("stable",
		models.BasketAsset{AssetID: "USDA", Weight: 60},
		models.BasketAsset{AssetID: "USDB", Weight: 40},
	))
	require.NoError(t, err)

	shares, err := e.baskets.Expand(context.Background(), "stable", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	require.Len(t, shares, 2)
	require.True(t, shares[0].Amount.Equal(decimal.NewFromInt(600)), "60%% of 1000 must be exactly 600, got %s", shares[0].Amount)
	require.True(t, shares[1].Amount.Equal(decimal.NewFromInt(400)), "40%% of 1000 must be exactly 400, got %s", shares[1].Amount)
}

func TestBasketRegistry_ExpandFractionalExact(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	e.registerAsset(t, "USDB", nil)
	e.registerAsset(t, "USDC", nil)

	require.NoError(t, e.baskets.Create(context.Background(), newBasket("tri",
		models.BasketAsset{AssetID: "USDA", Weight: 33},
		models.BasketAsset{AssetID: "USDB", Weight: 33},
		models.BasketAsset{AssetID: "USDC", Weight: 34},
	)))

	amount := decimal.RequireFromString("0.01")
	shares, err := e.baskets.Expand(context.Background(), "tri", amount, "")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share.Amount)
	}
	require.True(t, sum.Equal(amount), "shares must sum exactly to the input, got %s", sum)
	require.True(t, shares[0].Amount.Equal(decimal.RequireFromString("0.0033")))
}

func TestBasketRegistry_WeightSumReported(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	e.registerAsset(t, "USDB", nil)

	err := e.baskets.Create(context.Background(), newBasket("bad",
		models.BasketAsset{AssetID: "USDA", Weight: 60},
		models.BasketAsset{AssetID: "USDB", Weight: 50},
	))
	require.Error(t, err)
	require.True(t, errs.IsValidation(err))
	require.Contains(t, err.Error(), "110", "the reported sum must name the actual total")
}

func TestBasketRegistry_CreateRejectsUnknownAsset(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)

	err := e.baskets.Create(context.Background(), newBasket("b",
		models.BasketAsset{AssetID: "USDA", Weight: 50},
		models.BasketAsset{AssetID: "GHOST", Weight: 50},
	))
	require.True(t, errs.IsNotFound(err))
	require.Empty(t, e.baskets.List(context.Background()))
}

func TestBasketRegistry_CreateRejectsDuplicateAssetEntry(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)

	err := e.baskets.Create(context.Background(), newBasket("b",
		models.BasketAsset{AssetID: "USDA", Weight: 50},
		models.BasketAsset{AssetID: "USDA", Weight: 50},
	))
	require.True(t, errs.IsValidation(err))
}

func TestBasketRegistry_DuplicateID(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)

	basket := newBasket("b", models.BasketAsset{AssetID: "USDA", Weight: 100})
	require.NoError(t, e.baskets.Create(context.Background(), basket))

	err := e.baskets.Create(context.Background(), newBasket("b", models.BasketAsset{AssetID: "USDA", Weight: 100}))
	require.True(t, errs.IsConflict(err))
}

func TestBasketRegistry_ExpandTypeFilter(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	require.NoError(t, e.assets.Register(context.Background(), &models.Asset{
		ID: "ART", Type: models.AssetTypeNFT, Name: "Art", Symbol: "ART", ContractAddress: testAddr,
	}))

	require.NoError(t, e.baskets.Create(context.Background(), newBasket("mixed",
		models.BasketAsset{AssetID: "USDA", Weight: 70},
		models.BasketAsset{AssetID: "ART", Weight: 30},
	)))

	shares, err := e.baskets.Expand(context.Background(), "mixed", decimal.NewFromInt(100), models.AssetTypeMonetary)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, "USDA", shares[0].AssetID)
	require.True(t, shares[0].Amount.Equal(decimal.NewFromInt(70)), "filtered shares keep their original weights")
}

func TestBasketRegistry_ExpandRejectsNonPositiveAmount(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	require.NoError(t, e.baskets.Create(context.Background(), newBasket("b", models.BasketAsset{AssetID: "USDA", Weight: 100})))

	_, err := e.baskets.Expand(context.Background(), "b", decimal.Zero, "")
	require.True(t, errs.IsValidation(err))

	_, err = e.baskets.Expand(context.Background(), "b", decimal.NewFromInt(-5), "")
	require.True(t, errs.IsValidation(err))
}

func TestBasketRegistry_SetStatus(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	require.NoError(t, e.baskets.Create(context.Background(), newBasket("b", models.BasketAsset{AssetID: "USDA", Weight: 100})))

	basket, err := e.baskets.SetStatus(context.Background(), "b", models.BasketStatusPaused)
	require.NoError(t, err)
	require.Equal(t, models.BasketStatusPaused, basket.Status)

	_, err = e.baskets.SetStatus(context.Background(), "b", "bogus")
	require.True(t, errs.IsValidation(err))
}

func TestBasketRegistry_ZeroWeightEntry(t *testing.T) {
	e := newEnv(t)
	e.registerAsset(t, "USDA", nil)
	e.registerAsset(t, "USDB", nil)

	// a zero-weight entry is a valid placeholder and expands to zero
	err := e.baskets.Create(context.Background(), newBasket("tilted",
		models.BasketAsset{AssetID: "USDA", Weight: 100},
		models.BasketAsset{AssetID: "USDB", Weight: 0},
	))
	require.NoError(t, err)

	shares, err := e.baskets.Expand(context.Background(), "tilted", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	require.Len(t, shares, 2)
	require.True(t, shares[1].Amount.IsZero(), "zero weight must expand to a zero amount")

	// negative weights stay rejected
	err = e.baskets.Create(context.Background(), newBasket("neg",
		models.BasketAsset{AssetID: "USDA", Weight: 101},
		models.BasketAsset{AssetID: "USDB", Weight: -1},
	))
	require.Error(t, err)
	require.Contains(t, err.Error(), "[0,100]")
}
