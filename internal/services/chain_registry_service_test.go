package services

import (
	"context"
	"testing"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"

	"github.com/stretchr/testify/require"
)

func TestChainRegistry_RegisterAndGet(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "sepolia")

	chain, err := e.chains.Get(context.Background(), "sepolia")
	require.NoError(t, err)
	require.Equal(t, "sepolia", chain.ID)
	require.Equal(t, "sepolia-net", chain.Network)
	require.False(t, chain.CreatedAt.IsZero())
}

func TestChainRegistry_DuplicateLeavesOriginalUntouched(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "sepolia")

	before, err := e.chains.Get(context.Background(), "sepolia")
	require.NoError(t, err)

	err = e.chains.Register(context.Background(), &models.Chain{
		ID:          "sepolia",
		Network:     "other-net",
		ChainID:     99,
		RPCEndpoint: "https://rpc.other.example",
		NativeCurrency: models.NativeCurrency{
			Name: "Other", Symbol: "OTH", Decimals: 18,
		},
	})
	require.Error(t, err)
	require.True(t, errs.IsConflict(err))

	after, err := e.chains.Get(context.Background(), "sepolia")
	require.NoError(t, err)
	require.Equal(t, before.Network, after.Network, "failed registration must not mutate the stored chain")
	require.Equal(t, before.RPCEndpoint, after.RPCEndpoint)
}

func TestChainRegistry_ValidationErrors(t *testing.T) {
	e := newEnv(t)

	cases := []models.Chain{
		{Network: "n", ChainID: 1, RPCEndpoint: "r", NativeCurrency: models.NativeCurrency{Symbol: "E"}},
		{ID: "c", ChainID: 1, RPCEndpoint: "r", NativeCurrency: models.NativeCurrency{Symbol: "E"}},
		{ID: "c", Network: "n", RPCEndpoint: "r", NativeCurrency: models.NativeCurrency{Symbol: "E"}},
		{ID: "c", Network: "n", ChainID: 1, NativeCurrency: models.NativeCurrency{Symbol: "E"}},
		{ID: "c", Network: "n", ChainID: 1, RPCEndpoint: "r"},
	}
	for _, chain := range cases {
		c := chain
		err := e.chains.Register(context.Background(), &c)
		require.Error(t, err)
		require.True(t, errs.IsValidation(err), "expected validation error, got %v", err)
	}

	require.Empty(t, e.chains.List(context.Background()), "failed registrations must leave the catalog empty")
}

func TestChainRegistry_GetUnknown(t *testing.T) {
	e := newEnv(t)
	_, err := e.chains.Get(context.Background(), "missing")
	require.True(t, errs.IsNotFound(err))
}

func TestChainRegistry_ListByNetType(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.chains.Register(context.Background(), &models.Chain{
		ID: "mainnet-a", Network: "a", ChainID: 1, RPCEndpoint: "r",
		NativeCurrency: models.NativeCurrency{Symbol: "ETH"},
	}))
	require.NoError(t, e.chains.Register(context.Background(), &models.Chain{
		ID: "testnet-b", Network: "b", ChainID: 2, RPCEndpoint: "r", Testnet: true,
		NativeCurrency: models.NativeCurrency{Symbol: "ETH"},
	}))

	mains := e.chains.ListByNetType(context.Background(), false)
	require.Len(t, mains, 1)
	require.Equal(t, "mainnet-a", mains[0].ID)

	tests := e.chains.ListByNetType(context.Background(), true)
	require.Len(t, tests, 1)
	require.Equal(t, "testnet-b", tests[0].ID)
}

func TestChainRegistry_Update(t *testing.T) {
	e := newEnv(t)
	e.registerChain(t, "sepolia")

	before, err := e.chains.Get(context.Background(), "sepolia")
	require.NoError(t, err)

	endpoint := "https://rpc.updated.example"
	name := "Sepolia Testnet"
	updated, err := e.chains.Update(context.Background(), "sepolia", &models.ChainUpdate{
		RPCEndpoint: &endpoint,
		DisplayName: &name,
	})
	require.NoError(t, err)
	require.Equal(t, endpoint, updated.RPCEndpoint)
	require.Equal(t, name, updated.DisplayName)
	require.Equal(t, before.Network, updated.Network, "untouched fields must survive a partial update")
	require.True(t, updated.UpdatedAt.After(before.UpdatedAt) || updated.UpdatedAt.Equal(before.UpdatedAt))

	_, err = e.chains.Update(context.Background(), "missing", &models.ChainUpdate{DisplayName: &name})
	require.True(t, errs.IsNotFound(err))
}
