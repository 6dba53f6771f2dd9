// Mint handlers - mint request intake and ledger queries
package handlers

import (
	"errors"
	"net/http"

	"basket-backend/internal/errs"
	"basket-backend/internal/models"
	"basket-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// MintHandler handles mint requests and mint ledger queries for both the
// single-chain and the multi-chain surface.
type MintHandler struct {
	orchestrator    *services.MintOrchestratorService
	mints           *services.MintStateService
	multiChainMints *services.MultiChainMintService
}

// NewMintHandler creates a new MintHandler instance.
func NewMintHandler(orchestrator *services.MintOrchestratorService, mints *services.MintStateService, multiChainMints *services.MultiChainMintService) *MintHandler {
	return &MintHandler{orchestrator: orchestrator, mints: mints, multiChainMints: multiChainMints}
}

// mintFailureStatus maps a terminal mint failure onto its HTTP status.
// The record exists in both cases; the body carries it alongside the
// failure details.
func mintFailureStatus(err error) int {
	var porErr *errs.POREligibilityError
	if errors.As(err, &porErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// RequestMintHandler mints a single-chain basket
// POST /api/mints
func (h *MintHandler) RequestMintHandler(c *gin.Context) {
	var req struct {
		BasketID    string `json:"basket_id" binding:"required"`
		Beneficiary string `json:"beneficiary" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	record, err := h.orchestrator.RequestMint(c.Request.Context(), req.BasketID, req.Beneficiary, req.Amount)
	if err != nil {
		if record == nil {
			respondError(c, err)
			return
		}
		c.JSON(mintFailureStatus(err), gin.H{"record": record, "error": "Mint failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// GetMintHandler gets one mint record
// GET /api/mints/:id
func (h *MintHandler) GetMintHandler(c *gin.Context) {
	record, err := h.mints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// ListMintsHandler lists mint records with optional filters
// GET /api/mints?basket_id=...&beneficiary=...&status=...
func (h *MintHandler) ListMintsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var records []*models.MintRecord
	switch {
	case c.Query("basket_id") != "":
		records = h.mints.ListByBasket(ctx, c.Query("basket_id"))
	case c.Query("beneficiary") != "":
		records = h.mints.ListByBeneficiary(ctx, c.Query("beneficiary"))
	case c.Query("status") != "":
		records = h.mints.ListByStatus(ctx, models.MintStatus(c.Query("status")))
	default:
		records = h.mints.List(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": len(records)})
}

// RequestMultiChainMintHandler mints a multi-chain basket on one chain
// POST /api/multichain/mints
func (h *MintHandler) RequestMultiChainMintHandler(c *gin.Context) {
	var req struct {
		BasketID    string `json:"basket_id" binding:"required"`
		ChainID     string `json:"chain_id"` // empty targets the basket default
		Beneficiary string `json:"beneficiary" binding:"required"`
		Amount      string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	record, err := h.orchestrator.RequestMintMultiChain(c.Request.Context(), req.BasketID, req.ChainID, req.Beneficiary, req.Amount)
	if err != nil {
		if record == nil {
			respondError(c, err)
			return
		}
		c.JSON(mintFailureStatus(err), gin.H{"record": record, "error": "Mint failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// GetMultiChainMintHandler gets one multi-chain mint record
// GET /api/multichain/mints/:id
func (h *MintHandler) GetMultiChainMintHandler(c *gin.Context) {
	record, err := h.multiChainMints.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// ListMultiChainMintsHandler lists multi-chain mint records with filters
// GET /api/multichain/mints?chain_id=...&basket_id=...&beneficiary=...&status=...
func (h *MintHandler) ListMultiChainMintsHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var records []*models.MultiChainMintRecord
	switch {
	case c.Query("chain_id") != "":
		records = h.multiChainMints.ListByChain(ctx, c.Query("chain_id"))
	case c.Query("basket_id") != "":
		records = h.multiChainMints.ListByBasket(ctx, c.Query("basket_id"))
	case c.Query("beneficiary") != "":
		records = h.multiChainMints.ListByBeneficiary(ctx, c.Query("beneficiary"))
	case c.Query("status") != "":
		records = h.multiChainMints.ListByStatus(ctx, models.MintStatus(c.Query("status")))
	default:
		records = h.multiChainMints.List(ctx)
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": len(records)})
}

// BeneficiaryStatsHandler aggregates a beneficiary's mints across chains
// GET /api/multichain/beneficiaries/:address/stats
func (h *MintHandler) BeneficiaryStatsHandler(c *gin.Context) {
	stats, err := h.multiChainMints.StatsForBeneficiary(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// MultiChainStatsHandler aggregates the whole multi-chain mint ledger,
// grouped by chain and by asset
// GET /api/multichain/stats
func (h *MintHandler) MultiChainStatsHandler(c *gin.Context) {
	stats, err := h.multiChainMints.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
