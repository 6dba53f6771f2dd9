package services

import (
	"context"
	"testing"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func deployOn(chains ...string) map[string]models.ChainDeployment {
	out := make(map[string]models.ChainDeployment, len(chains))
	for _, c := range chains {
		out[c] = models.ChainDeployment{ContractAddress: testAddr}
	}
	return out
}

func TestMultiChainAsset_RegisterRequiresDefaultDeployment(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")

	err := e.mcAssets.Register(context.Background(), &models.MultiChainAsset{
		ID: "USDX", Type: models.AssetTypeMonetary, Name: "USDX", Symbol: "USDX",
		Deployments:    deployOn("alpha"),
		DefaultChainID: "beta",
	})
	require.True(t, errs.IsValidation(err), "default chain without a deployment must be rejected, got %v", err)
}

func TestMultiChainAsset_RegisterRequiresKnownChains(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")

	err := e.mcAssets.Register(context.Background(), &models.MultiChainAsset{
		ID: "USDX", Type: models.AssetTypeMonetary, Name: "USDX", Symbol: "USDX",
		Deployments:    deployOn("alpha", "ghost"),
		DefaultChainID: "alpha",
	})
	require.True(t, errs.IsNotFound(err))
}

func TestMultiChainAsset_AddAndRemoveDeployment(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")
	e.registerMultiChainAsset(t, "USDX", "alpha", deployOn("alpha"))

	asset, err := e.mcAssets.AddDeployment(context.Background(), "USDX", "beta", models.ChainDeployment{ContractAddress: testAddr2})
	require.NoError(t, err)
	require.True(t, asset.DeployedOn("beta"))

	// duplicate deployment conflicts
	_, err = e.mcAssets.AddDeployment(context.Background(), "USDX", "beta", models.ChainDeployment{ContractAddress: testAddr2})
	require.True(t, errs.IsConflict(err))

	asset, err = e.mcAssets.RemoveDeployment(context.Background(), "USDX", "beta")
	require.NoError(t, err)
	require.False(t, asset.DeployedOn("beta"))
	require.Equal(t, "alpha", asset.DefaultChainID)
}

func TestMultiChainAsset_RemoveLastDeploymentConflicts(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerMultiChainAsset(t, "USDX", "alpha", deployOn("alpha"))

	_, err := e.mcAssets.RemoveDeployment(context.Background(), "USDX", "alpha")
	require.True(t, errs.IsConflict(err))

	asset, err := e.mcAssets.Get(context.Background(), "USDX")
	require.NoError(t, err)
	require.True(t, asset.DeployedOn("alpha"), "rejected removal must leave the deployment in place")
	require.Equal(t, "alpha", asset.DefaultChainID)
}

func TestMultiChainAsset_RemoveDefaultReassignsSmallest(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")
	e.registerChain(t, "gamma")
	e.registerMultiChainAsset(t, "USDX", "beta", deployOn("alpha", "beta", "gamma"))

	asset, err := e.mcAssets.RemoveDeployment(context.Background(), "USDX", "beta")
	require.NoError(t, err)
	require.Equal(t, "alpha", asset.DefaultChainID, "default must move to the lexicographically smallest remaining chain")
}

func TestMultiChainAsset_GetDeploymentDefaultFallback(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")
	e.registerMultiChainAsset(t, "USDX", "beta", map[string]models.ChainDeployment{
		"alpha": {ContractAddress: testAddr},
		"beta":  {ContractAddress: testAddr2},
	})

	dep, chainID, err := e.mcAssets.GetDeployment(context.Background(), "USDX", "")
	require.NoError(t, err)
	require.Equal(t, "beta", chainID)
	require.Equal(t, testAddr2, dep.ContractAddress)

	_, _, err = e.mcAssets.GetDeployment(context.Background(), "USDX", "ghost")
	require.True(t, errs.IsNotFound(err))
}

func TestMultiChainAsset_ListByChain(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "alpha")
	e.registerChain(t, "beta")
	e.registerMultiChainAsset(t, "USDX", "alpha", deployOn("alpha"))
	e.registerMultiChainAsset(t, "USDY", "alpha", deployOn("alpha", "beta"))

	onBeta := e.mcAssets.ListByChain(context.Background(), "beta")
	require.Len(t, onBeta, 1)
	require.Equal(t, "USDY", onBeta[0].ID)
}
