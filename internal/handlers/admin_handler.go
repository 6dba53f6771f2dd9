// Admin operations handlers - registry stats and on-demand backups
package handlers

import (
	"net/http"

	"basket-backend/internal/models"
	"basket-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler exposes operator-only views over the registries.
type AdminHandler struct {
	chains            *services.ChainRegistryService
	assets            *services.AssetRegistryService
	multiChainAssets  *services.MultiChainAssetService
	baskets           *services.BasketRegistryService
	multiChainBaskets *services.MultiChainBasketService
	mints             *services.MintStateService
	multiChainMints   *services.MultiChainMintService
	logger            *logrus.Logger
}

// NewAdminHandler creates the handler over the full service set.
func NewAdminHandler(
	chains *services.ChainRegistryService,
	assets *services.AssetRegistryService,
	multiChainAssets *services.MultiChainAssetService,
	baskets *services.BasketRegistryService,
	multiChainBaskets *services.MultiChainBasketService,
	mints *services.MintStateService,
	multiChainMints *services.MultiChainMintService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		chains:            chains,
		assets:            assets,
		multiChainAssets:  multiChainAssets,
		baskets:           baskets,
		multiChainBaskets: multiChainBaskets,
		mints:             mints,
		multiChainMints:   multiChainMints,
		logger:            logger,
	}
}

// StatsHandler reports entry counts per registry and the mint ledger
// broken down by status
// GET /api/admin/stats
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	mintsByStatus := gin.H{
		"pending":   len(h.mints.ListByStatus(ctx, models.MintStatusPending)),
		"completed": len(h.mints.ListByStatus(ctx, models.MintStatusCompleted)),
		"failed":    len(h.mints.ListByStatus(ctx, models.MintStatusFailed)),
	}
	ledger, err := h.multiChainMints.Stats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"chains":             len(h.chains.List(ctx)),
			"assets":             len(h.assets.List(ctx)),
			"multichain_assets":  len(h.multiChainAssets.List(ctx)),
			"baskets":            len(h.baskets.List(ctx)),
			"multichain_baskets": len(h.multiChainBaskets.List(ctx)),
			"mints":              mintsByStatus,
			"multichain_mints":   ledger,
		},
	})
}

// BackupRunHandler queues a snapshot of every registry
// POST /api/admin/backup/run
func (h *AdminHandler) BackupRunHandler(c *gin.Context) {
	h.chains.Snapshot()
	h.assets.Snapshot()
	h.multiChainAssets.Snapshot()
	h.baskets.Snapshot()
	h.multiChainBaskets.Snapshot()
	h.mints.Snapshot()
	h.multiChainMints.Snapshot()

	operator, _ := c.Get("admin_username")
	h.logger.WithField("operator", operator).Info("manual backup queued for all registries")
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Backup queued for all registries",
	})
}
