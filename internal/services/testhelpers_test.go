package services

import (
	"context"
	"io"
	"testing"

	"basket-backend/internal/config"
	"basket-backend/internal/events"
	"basket-backend/internal/models"
	"basket-backend/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// env bundles the wired registries for a test, all on in-memory
// repositories with the snapshot worker writing into a temp dir.
type env struct {
	chains    *ChainRegistryService
	assets    *AssetRegistryService
	mcAssets  *MultiChainAssetService
	baskets   *BasketRegistryService
	mcBaskets *MultiChainBasketService
	mints     *MintStateService
	mcMints   *MultiChainMintService
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := testLogger()
	publisher := events.NewPublisher(nil, logger)
	snapshots := NewSnapshotService(config.BackupConfig{Dir: t.TempDir(), QueueSize: 16}, publisher, logger)
	snapshots.Start()
	t.Cleanup(snapshots.Stop)

	chains := NewChainRegistryService(repository.NewMemoryChainRepository(), snapshots, publisher, logger)
	assets := NewAssetRegistryService(repository.NewMemoryAssetRepository(), snapshots, publisher, logger)
	mcAssets := NewMultiChainAssetService(repository.NewMemoryMultiChainAssetRepository(), chains, snapshots, publisher, logger)
	baskets := NewBasketRegistryService(repository.NewMemoryBasketRepository(), assets, snapshots, publisher, logger)
	mcBaskets := NewMultiChainBasketService(repository.NewMemoryMultiChainBasketRepository(), chains, mcAssets, snapshots, publisher, logger)
	mints := NewMintStateService(repository.NewMemoryMintRepository(), snapshots, logger)
	mcMints := NewMultiChainMintService(repository.NewMemoryMultiChainMintRepository(), snapshots, logger)

	return &env{
		chains:    chains,
		assets:    assets,
		mcAssets:  mcAssets,
		baskets:   baskets,
		mcBaskets: mcBaskets,
		mints:     mints,
		mcMints:   mcMints,
	}
}

const (
	testAddr  = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testAddr2 = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
)

func (e *env) registerChain(t *testing.T, id string) {
	t.Helper()
	err := e.chains.Register(context.Background(), &models.Chain{
		ID:          id,
		Network:     id + "-net",
		ChainID:     uint64(len(id) + 1),
		RPCEndpoint: "https://rpc." + id + ".example",
		NativeCurrency: models.NativeCurrency{
			Name: "Ether", Symbol: "ETH", Decimals: 18,
		},
	})
	require.NoError(t, err)
}

func (e *env) registerAsset(t *testing.T, id string, decimals *int) {
	t.Helper()
	err := e.assets.Register(context.Background(), &models.Asset{
		ID:              id,
		Type:            models.AssetTypeMonetary,
		Name:            "Asset " + id,
		Symbol:          id,
		Decimals:        decimals,
		ContractAddress: testAddr,
	})
	require.NoError(t, err)
}

func (e *env) registerMultiChainAsset(t *testing.T, id, defaultChain string, deployments map[string]models.ChainDeployment) {
	t.Helper()
	err := e.mcAssets.Register(context.Background(), &models.MultiChainAsset{
		ID:             id,
		Type:           models.AssetTypeMonetary,
		Name:           "Asset " + id,
		Symbol:         id,
		Deployments:    deployments,
		DefaultChainID: defaultChain,
	})
	require.NoError(t, err)
}

func intPtr(v int) *int { return &v }
