// Chain registry handlers - blockchain network catalog operations
package handlers

import (
	"net/http"
	"strconv"

	"basket-backend/internal/models"
	"basket-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ChainHandler handles chain registry operations.
type ChainHandler struct {
	chains *services.ChainRegistryService
}

// NewChainHandler creates a new ChainHandler instance.
func NewChainHandler(chains *services.ChainRegistryService) *ChainHandler {
	return &ChainHandler{chains: chains}
}

// RegisterChainHandler registers a new chain
// POST /api/chains
func (h *ChainHandler) RegisterChainHandler(c *gin.Context) {
	var req struct {
		ID             string                `json:"id" binding:"required"`
		Network        string                `json:"network" binding:"required"`
		DisplayName    string                `json:"display_name"`
		ChainID        uint64                `json:"chain_id" binding:"required"`
		RPCEndpoint    string                `json:"rpc_endpoint" binding:"required"`
		ExplorerURL    string                `json:"explorer_url"`
		NativeCurrency models.NativeCurrency `json:"native_currency" binding:"required"`
		Testnet        bool                  `json:"testnet"`
		Metadata       map[string]string     `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	chain := &models.Chain{
		ID:             req.ID,
		Network:        req.Network,
		DisplayName:    req.DisplayName,
		ChainID:        req.ChainID,
		RPCEndpoint:    req.RPCEndpoint,
		ExplorerURL:    req.ExplorerURL,
		NativeCurrency: req.NativeCurrency,
		Testnet:        req.Testnet,
		Metadata:       req.Metadata,
	}
	if err := h.chains.Register(c.Request.Context(), chain); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chain": chain})
}

// GetChainHandler gets one chain
// GET /api/chains/:id
func (h *ChainHandler) GetChainHandler(c *gin.Context) {
	chain, err := h.chains.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chain": chain})
}

// ListChainsHandler lists all chains, optionally filtered by net type
// GET /api/chains?testnet=true|false
func (h *ChainHandler) ListChainsHandler(c *gin.Context) {
	var chains []*models.Chain
	if raw, ok := c.GetQuery("testnet"); ok {
		testnet, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid testnet filter", "details": err.Error()})
			return
		}
		chains = h.chains.ListByNetType(c.Request.Context(), testnet)
	} else {
		chains = h.chains.List(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"chains": chains, "total": len(chains)})
}

// UpdateChainHandler partially updates a chain
// PATCH /api/chains/:id
func (h *ChainHandler) UpdateChainHandler(c *gin.Context) {
	var update models.ChainUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	chain, err := h.chains.Update(c.Request.Context(), c.Param("id"), &update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chain": chain})
}
