package services

import (
	"context"
	"testing"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// multiChainFixture registers two chains and one asset deployed on both,
// then creates a basket supporting both chains.
func multiChainFixture(t *testing.T) *env {
	t.Helper()
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")
	e.registerMultiChainAsset(t, "USDX", "alpha", map[string]models.ChainDeployment{
		"alpha": {ContractAddress: testAddr},
		"beta":  {ContractAddress: testAddr2, Decimals: intPtr(6)},
	})
	require.NoError(t, e.mcBaskets.Create(context.Background(), &models.MultiChainBasket{
		ID: "global", Name: "Global", Symbol: "GLB",
		Assets:          []models.BasketAsset{{AssetID: "USDX", Weight: 100}},
		SupportedChains: []string{"alpha", "beta"},
		DefaultChainID:  "alpha",
	}))
	return e
}

func TestMultiChainBasket_CreateValidatesChainSet(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerMultiChainAsset(t, "USDX", "alpha", deployOn("alpha"))

	// default outside the supported set
	err := e.mcBaskets.Create(context.Background(), &models.MultiChainBasket{
		ID: "b", Name: "B", Symbol: "B",
		Assets:          []models.BasketAsset{{AssetID: "USDX", Weight: 100}},
		SupportedChains: []string{"alpha"},
		DefaultChainID:  "beta",
	})
	require.True(t, errs.IsValidation(err))

	// unknown supported chain
	err = e.mcBaskets.Create(context.Background(), &models.MultiChainBasket{
		ID: "b", Name: "B", Symbol: "B",
		Assets:          []models.BasketAsset{{AssetID: "USDX", Weight: 100}},
		SupportedChains: []string{"alpha", "ghost"},
		DefaultChainID:  "alpha",
	})
	require.True(t, errs.IsNotFound(err))

	// asset not deployed on every supported chain
	e.registerChain(t, "beta")
	err = e.mcBaskets.Create(context.Background(), &models.MultiChainBasket{
		ID: "b", Name: "B", Symbol: "B",
		Assets:          []models.BasketAsset{{AssetID: "USDX", Weight: 100}},
		SupportedChains: []string{"alpha", "beta"},
		DefaultChainID:  "alpha",
	})
	require.True(t, errs.IsValidation(err))

	require.Empty(t, e.mcBaskets.List(context.Background()))
}

func TestMultiChainBasket_RemoveChainReassignsDefault(t *testing.T) {
	e := multiChainFixture(t)

	basket, err := e.mcBaskets.RemoveChain(context.Background(), "global", "alpha")
	require.NoError(t, err)
	require.Equal(t, []string{"beta"}, basket.SupportedChains)
	require.Equal(t, "beta", basket.DefaultChainID, "default must be reassigned deterministically")
}

func TestMultiChainBasket_RemoveLastChainConflictsAndLeavesStateUnchanged(t *testing.T) {
	e := multiChainFixture(t)

	_, err := e.mcBaskets.RemoveChain(context.Background(), "global", "beta")
	require.NoError(t, err)

	_, err = e.mcBaskets.RemoveChain(context.Background(), "global", "alpha")
	require.True(t, errs.IsConflict(err))

	basket, err := e.mcBaskets.Get(context.Background(), "global")
	require.NoError(t, err)
	require.Equal(t, []string{"alpha"}, basket.SupportedChains)
	require.Equal(t, "alpha", basket.DefaultChainID)
}

func TestMultiChainBasket_AddChainRequiresAssetDeployment(t *testing.T) {
	e := multiChainFixture(t)
	e.registerChain(t, "gamma")

	_, err := e.mcBaskets.AddChain(context.Background(), "global", "gamma")
	require.True(t, errs.IsValidation(err), "adding a chain without asset deployments must fail, got %v", err)

	_, err = e.mcBaskets.AddChain(context.Background(), "global", "beta")
	require.True(t, errs.IsConflict(err), "adding an already supported chain must conflict")
}

func TestMultiChainBasket_ExpandResolvesDeployment(t *testing.T) {
	e := multiChainFixture(t)

	shares, chainID, err := e.mcBaskets.Expand(context.Background(), "global", "beta", decimal.NewFromInt(250), "")
	require.NoError(t, err)
	require.Equal(t, "beta", chainID)
	require.Len(t, shares, 1)
	require.Equal(t, testAddr2, shares[0].ContractAddress, "expansion must use the target chain's deployment")
	require.NotNil(t, shares[0].Decimals)
	require.Equal(t, 6, *shares[0].Decimals)
	require.True(t, shares[0].Amount.Equal(decimal.NewFromInt(250)))

	// empty chain id targets the default chain
	_, chainID, err = e.mcBaskets.Expand(context.Background(), "global", "", decimal.NewFromInt(10), "")
	require.NoError(t, err)
	require.Equal(t, "alpha", chainID)

	// unsupported chain
	e.registerChain(t, "gamma")
	_, _, err = e.mcBaskets.Expand(context.Background(), "global", "gamma", decimal.NewFromInt(10), "")
	require.True(t, errs.IsValidation(err))
}

func TestMultiChainBasket_ListByChain(t *testing.T) {
	e := multiChainFixture(t)

	onAlpha := e.mcBaskets.ListByChain(context.Background(), "alpha")
	require.Len(t, onAlpha, 1)
	require.Empty(t, e.mcBaskets.ListByChain(context.Background(), "ghost"))
}
