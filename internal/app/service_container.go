// Package app wires the service container. All dependencies are passed
// explicitly; nothing in the tree reaches for a package global.
package app

import (
	"context"
	"fmt"

	"basket-backend/internal/clients"
	"basket-backend/internal/config"
	"basket-backend/internal/events"
	"basket-backend/internal/repository"
	"basket-backend/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container holds the wired services of one backend instance.
type Container struct {
	DB *gorm.DB // nil on the in-memory driver

	Chains            *services.ChainRegistryService
	Assets            *services.AssetRegistryService
	MultiChainAssets  *services.MultiChainAssetService
	Baskets           *services.BasketRegistryService
	MultiChainBaskets *services.MultiChainBasketService
	Mints             *services.MintStateService
	MultiChainMints   *services.MultiChainMintService
	Orchestrator      *services.MintOrchestratorService

	Snapshots *services.SnapshotService
	NATS      *clients.NATSClient
}

// NewContainer builds and loads the full service graph. gdb may be nil
// when the configured database driver is "memory"; the registries then
// run on in-memory repositories, which is the test and development mode.
func NewContainer(ctx context.Context, cfg *config.Config, gdb *gorm.DB, logger *logrus.Logger) (*Container, error) {
	var (
		chainRepo    repository.ChainRepository
		assetRepo    repository.AssetRepository
		mcAssetRepo  repository.MultiChainAssetRepository
		basketRepo   repository.BasketRepository
		mcBasketRepo repository.MultiChainBasketRepository
		mintRepo     repository.MintRepository
		mcMintRepo   repository.MultiChainMintRepository
	)
	if gdb != nil {
		chainRepo = repository.NewChainRepository(gdb)
		assetRepo = repository.NewAssetRepository(gdb)
		mcAssetRepo = repository.NewMultiChainAssetRepository(gdb)
		basketRepo = repository.NewBasketRepository(gdb)
		mcBasketRepo = repository.NewMultiChainBasketRepository(gdb)
		mintRepo = repository.NewMintRepository(gdb)
		mcMintRepo = repository.NewMultiChainMintRepository(gdb)
	} else {
		chainRepo = repository.NewMemoryChainRepository()
		assetRepo = repository.NewMemoryAssetRepository()
		mcAssetRepo = repository.NewMemoryMultiChainAssetRepository()
		basketRepo = repository.NewMemoryBasketRepository()
		mcBasketRepo = repository.NewMemoryMultiChainBasketRepository()
		mintRepo = repository.NewMemoryMintRepository()
		mcMintRepo = repository.NewMemoryMultiChainMintRepository()
	}

	var natsClient *clients.NATSClient
	if cfg.NATS.URL != "" {
		nc, err := clients.NewNATSClient(cfg.NATS, logger)
		if err != nil {
			// the event channel is best effort; the backend runs without it
			logger.WithError(err).Warn("NATS unavailable, events disabled")
		} else {
			natsClient = nc
		}
	}
	publisher := events.NewPublisher(natsClient, logger)

	snapshots := services.NewSnapshotService(cfg.Backup, publisher, logger)
	snapshots.Start()

	chains := services.NewChainRegistryService(chainRepo, snapshots, publisher, logger)
	assets := services.NewAssetRegistryService(assetRepo, snapshots, publisher, logger)
	mcAssets := services.NewMultiChainAssetService(mcAssetRepo, chains, snapshots, publisher, logger)
	baskets := services.NewBasketRegistryService(basketRepo, assets, snapshots, publisher, logger)
	mcBaskets := services.NewMultiChainBasketService(mcBasketRepo, chains, mcAssets, snapshots, publisher, logger)
	mints := services.NewMintStateService(mintRepo, snapshots, logger)
	mcMints := services.NewMultiChainMintService(mcMintRepo, snapshots, logger)

	for name, load := range map[string]func(context.Context) error{
		"chains":             chains.Load,
		"assets":             assets.Load,
		"multichain_assets":  mcAssets.Load,
		"baskets":            baskets.Load,
		"multichain_baskets": mcBaskets.Load,
		"mints":              mints.Load,
		"multichain_mints":   mcMints.Load,
	} {
		if err := load(ctx); err != nil {
			snapshots.Stop()
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
	}

	porClient := clients.NewHTTPPORClient(cfg.POR, logger)
	submitter := clients.NewEVMSubmissionClient(cfg.Submission, cfg.Blockchain.Networks, logger)
	orchestrator := services.NewMintOrchestratorService(cfg, baskets, mcBaskets, mints, mcMints, porClient, submitter, publisher, logger)

	return &Container{
		DB:                gdb,
		Chains:            chains,
		Assets:            assets,
		MultiChainAssets:  mcAssets,
		Baskets:           baskets,
		MultiChainBaskets: mcBaskets,
		Mints:             mints,
		MultiChainMints:   mcMints,
		Orchestrator:      orchestrator,
		Snapshots:         snapshots,
		NATS:              natsClient,
	}, nil
}

// Cleanup drains the snapshot queue and closes external connections.
func (c *Container) Cleanup() {
	if c.Snapshots != nil {
		c.Snapshots.Stop()
	}
	if c.NATS != nil {
		c.NATS.Close()
	}
}
