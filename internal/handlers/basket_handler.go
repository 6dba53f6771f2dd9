// Basket registry handlers - single-chain basket catalog and expansion
package handlers

import (
	"net/http"

	"basket-backend/internal/models"
	"basket-backend/internal/services"
	"basket-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// BasketHandler handles single-chain basket operations.
type BasketHandler struct {
	baskets *services.BasketRegistryService
}

// NewBasketHandler creates a new BasketHandler instance.
func NewBasketHandler(baskets *services.BasketRegistryService) *BasketHandler {
	return &BasketHandler{baskets: baskets}
}

// basketAssetRequest is the composition entry shared by the basket
// creation endpoints.
type basketAssetRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	Weight  int    `json:"weight" binding:"gte=0,lte=100"`
}

func toBasketAssets(entries []basketAssetRequest) []models.BasketAsset {
	out := make([]models.BasketAsset, len(entries))
	for i, e := range entries {
		out[i] = models.BasketAsset{AssetID: e.AssetID, Weight: e.Weight}
	}
	return out
}

// CreateBasketHandler creates a new basket
// POST /api/baskets
func (h *BasketHandler) CreateBasketHandler(c *gin.Context) {
	var req struct {
		ID          string               `json:"id" binding:"required"`
		Name        string               `json:"name" binding:"required"`
		Symbol      string               `json:"symbol" binding:"required"`
		Description string               `json:"description"`
		Assets      []basketAssetRequest `json:"assets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	basket := &models.Basket{
		ID:          req.ID,
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Assets:      toBasketAssets(req.Assets),
	}
	if err := h.baskets.Create(c.Request.Context(), basket); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"basket": basket})
}

// GetBasketHandler gets one basket
// GET /api/baskets/:id
func (h *BasketHandler) GetBasketHandler(c *gin.Context) {
	basket, err := h.baskets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket})
}

// ListBasketsHandler lists all baskets
// GET /api/baskets
func (h *BasketHandler) ListBasketsHandler(c *gin.Context) {
	baskets := h.baskets.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"baskets": baskets, "total": len(baskets)})
}

// SetBasketStatusHandler transitions a basket's lifecycle status
// PATCH /api/baskets/:id/status
func (h *BasketHandler) SetBasketStatusHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	basket, err := h.baskets.SetStatus(c.Request.Context(), c.Param("id"), models.BasketStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket})
}

// ExpandBasketHandler previews the per-asset split of an amount
// POST /api/baskets/:id/expand
func (h *BasketHandler) ExpandBasketHandler(c *gin.Context) {
	var req struct {
		Amount string `json:"amount" binding:"required"`
		Type   string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	amount, err := utils.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount", "details": err.Error()})
		return
	}

	shares, err := h.baskets.Expand(c.Request.Context(), c.Param("id"), amount, models.AssetType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"basket_id": c.Param("id"),
		"amount":    amount.String(),
		"shares":    shares,
	})
}
