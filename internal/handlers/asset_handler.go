// Asset registry handlers - single-chain asset catalog operations
package handlers

import (
	"net/http"

	"basket-backend/internal/models"
	"basket-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AssetHandler handles single-chain asset registry operations.
type AssetHandler struct {
	assets *services.AssetRegistryService
}

// NewAssetHandler creates a new AssetHandler instance.
func NewAssetHandler(assets *services.AssetRegistryService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// RegisterAssetHandler registers a new asset
// POST /api/assets
func (h *AssetHandler) RegisterAssetHandler(c *gin.Context) {
	var req struct {
		ID              string            `json:"id" binding:"required"`
		Type            string            `json:"type" binding:"required"`
		Name            string            `json:"name" binding:"required"`
		Symbol          string            `json:"symbol" binding:"required"`
		Decimals        *int              `json:"decimals"`
		ContractAddress string            `json:"contract_address"`
		Metadata        map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	asset := &models.Asset{
		ID:              req.ID,
		Type:            models.AssetType(req.Type),
		Name:            req.Name,
		Symbol:          req.Symbol,
		Decimals:        req.Decimals,
		ContractAddress: req.ContractAddress,
		Metadata:        req.Metadata,
	}
	if err := h.assets.Register(c.Request.Context(), asset); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// GetAssetHandler gets one asset
// GET /api/assets/:id
func (h *AssetHandler) GetAssetHandler(c *gin.Context) {
	asset, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// ListAssetsHandler lists all assets, optionally filtered by type
// GET /api/assets?type=monetary
func (h *AssetHandler) ListAssetsHandler(c *gin.Context) {
	var assets []*models.Asset
	if t := c.Query("type"); t != "" {
		var err error
		assets, err = h.assets.ListByType(c.Request.Context(), models.AssetType(t))
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		assets = h.assets.List(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets, "total": len(assets)})
}
