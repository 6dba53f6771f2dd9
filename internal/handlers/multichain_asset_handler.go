// Multi-chain asset registry handlers - cross-chain deployment catalog
package handlers

import (
	"net/http"

	"basket-backend/internal/models"
	"basket-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// MultiChainAssetHandler handles cross-chain asset registry operations.
type MultiChainAssetHandler struct {
	assets *services.MultiChainAssetService
}

// NewMultiChainAssetHandler creates a new MultiChainAssetHandler instance.
func NewMultiChainAssetHandler(assets *services.MultiChainAssetService) *MultiChainAssetHandler {
	return &MultiChainAssetHandler{assets: assets}
}

// RegisterHandler registers a new multi-chain asset
// POST /api/multichain/assets
func (h *MultiChainAssetHandler) RegisterHandler(c *gin.Context) {
	var req struct {
		ID             string                            `json:"id" binding:"required"`
		Type           string                            `json:"type" binding:"required"`
		Name           string                            `json:"name" binding:"required"`
		Symbol         string                            `json:"symbol" binding:"required"`
		Decimals       *int                              `json:"decimals"`
		Deployments    map[string]models.ChainDeployment `json:"deployments" binding:"required"`
		DefaultChainID string                            `json:"default_chain_id" binding:"required"`
		Metadata       map[string]string                 `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	asset := &models.MultiChainAsset{
		ID:             req.ID,
		Type:           models.AssetType(req.Type),
		Name:           req.Name,
		Symbol:         req.Symbol,
		Decimals:       req.Decimals,
		Deployments:    req.Deployments,
		DefaultChainID: req.DefaultChainID,
		Metadata:       req.Metadata,
	}
	if err := h.assets.Register(c.Request.Context(), asset); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// GetHandler gets one multi-chain asset
// GET /api/multichain/assets/:id
func (h *MultiChainAssetHandler) GetHandler(c *gin.Context) {
	asset, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// GetDeploymentHandler resolves an asset's deployment on one chain,
// falling back to the default chain when none is given
// GET /api/multichain/assets/:id/deployment?chain_id=...
func (h *MultiChainAssetHandler) GetDeploymentHandler(c *gin.Context) {
	dep, chainID, err := h.assets.GetDeployment(c.Request.Context(), c.Param("id"), c.Query("chain_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chain_id": chainID, "deployment": dep})
}

// ListHandler lists multi-chain assets, optionally filtered by chain
// GET /api/multichain/assets?chain_id=...
func (h *MultiChainAssetHandler) ListHandler(c *gin.Context) {
	var assets []*models.MultiChainAsset
	if chainID := c.Query("chain_id"); chainID != "" {
		assets = h.assets.ListByChain(c.Request.Context(), chainID)
	} else {
		assets = h.assets.List(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets, "total": len(assets)})
}

// AddDeploymentHandler deploys an asset onto one more chain
// POST /api/multichain/assets/:id/deployments
func (h *MultiChainAssetHandler) AddDeploymentHandler(c *gin.Context) {
	var req struct {
		ChainID         string            `json:"chain_id" binding:"required"`
		ContractAddress string            `json:"contract_address" binding:"required"`
		Decimals        *int              `json:"decimals"`
		Metadata        map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	asset, err := h.assets.AddDeployment(c.Request.Context(), c.Param("id"), req.ChainID, models.ChainDeployment{
		ContractAddress: req.ContractAddress,
		Decimals:        req.Decimals,
		Metadata:        req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// RemoveDeploymentHandler removes an asset's deployment from one chain
// DELETE /api/multichain/assets/:id/deployments/:chain_id
func (h *MultiChainAssetHandler) RemoveDeploymentHandler(c *gin.Context) {
	asset, err := h.assets.RemoveDeployment(c.Request.Context(), c.Param("id"), c.Param("chain_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}
