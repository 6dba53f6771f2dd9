// Multi-chain basket registry handlers - cross-chain basket catalog
package handlers

import (
	"net/http"

	"basket-backend/internal/models"
	"basket-backend/internal/services"
	"basket-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// MultiChainBasketHandler handles cross-chain basket operations.
type MultiChainBasketHandler struct {
	baskets *services.MultiChainBasketService
}

// NewMultiChainBasketHandler creates a new MultiChainBasketHandler instance.
func NewMultiChainBasketHandler(baskets *services.MultiChainBasketService) *MultiChainBasketHandler {
	return &MultiChainBasketHandler{baskets: baskets}
}

// CreateHandler creates a new multi-chain basket
// POST /api/multichain/baskets
func (h *MultiChainBasketHandler) CreateHandler(c *gin.Context) {
	var req struct {
		ID              string               `json:"id" binding:"required"`
		Name            string               `json:"name" binding:"required"`
		Symbol          string               `json:"symbol" binding:"required"`
		Description     string               `json:"description"`
		Assets          []basketAssetRequest `json:"assets" binding:"required"`
		SupportedChains []string             `json:"supported_chains" binding:"required"`
		DefaultChainID  string               `json:"default_chain_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	basket := &models.MultiChainBasket{
		ID:              req.ID,
		Name:            req.Name,
		Symbol:          req.Symbol,
		Description:     req.Description,
		Assets:          toBasketAssets(req.Assets),
		SupportedChains: req.SupportedChains,
		DefaultChainID:  req.DefaultChainID,
	}
	if err := h.baskets.Create(c.Request.Context(), basket); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"basket": basket})
}

// GetHandler gets one multi-chain basket
// GET /api/multichain/baskets/:id
func (h *MultiChainBasketHandler) GetHandler(c *gin.Context) {
	basket, err := h.baskets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket})
}

// ListHandler lists multi-chain baskets, optionally filtered by chain
// GET /api/multichain/baskets?chain_id=...
func (h *MultiChainBasketHandler) ListHandler(c *gin.Context) {
	var baskets []*models.MultiChainBasket
	if chainID := c.Query("chain_id"); chainID != "" {
		baskets = h.baskets.ListByChain(c.Request.Context(), chainID)
	} else {
		baskets = h.baskets.List(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"baskets": baskets, "total": len(baskets)})
}

// AddChainHandler extends a basket's supported chain set
// POST /api/multichain/baskets/:id/chains
func (h *MultiChainBasketHandler) AddChainHandler(c *gin.Context) {
	var req struct {
		ChainID string `json:"chain_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	basket, err := h.baskets.AddChain(c.Request.Context(), c.Param("id"), req.ChainID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket})
}

// RemoveChainHandler removes a chain from a basket's supported set
// DELETE /api/multichain/baskets/:id/chains/:chain_id
func (h *MultiChainBasketHandler) RemoveChainHandler(c *gin.Context) {
	basket, err := h.baskets.RemoveChain(c.Request.Context(), c.Param("id"), c.Param("chain_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basket": basket})
}

// ExpandHandler previews the per-asset split of an amount on one chain
// POST /api/multichain/baskets/:id/expand
func (h *MultiChainBasketHandler) ExpandHandler(c *gin.Context) {
	var req struct {
		Amount  string `json:"amount" binding:"required"`
		ChainID string `json:"chain_id"`
		Type    string `json:"type"`
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

	shares, chainID, err := h.baskets.Expand(c.Request.Context(), c.Param("id"), req.ChainID, amount, models.AssetType(req.Type))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"basket_id": c.Param("id"),
		"chain_id":  chainID,
		"amount":    amount.String(),
		"shares":    shares,
	})
}
