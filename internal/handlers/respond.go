package handlers

import (
	"errors"
	"net/http"

	"basket-backend/internal/errs"

	"github.com/gin-gonic/gin"
)

// respondError maps the error taxonomy onto HTTP statuses in one place.
// Validation is 400, missing entities 404, structural conflicts 409, a
// POR gate rejection 422 and a failed transfer submission 502.
func respondError(c *gin.Context, err error) {
	var porErr *errs.POREligibilityError
	var subErr *errs.SubmissionError

	switch {
	case errs.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
	case errs.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errs.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "details": err.Error()})
	case errors.As(err, &porErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Mint rejected by proof-of-reserve gate",
			"reason":  porErr.Reason,
			"details": porErr.Message,
		})
	case errors.As(err, &subErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    "Transfer submission failed",
			"asset_id": subErr.AssetID,
			"details":  subErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
	}
}
