package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BasicHandler serves the liveness and readiness endpoints.
type BasicHandler struct {
	db      *gorm.DB // nil when running on the in-memory driver
	started time.Time
}

// NewBasicHandler creates the handler.
func NewBasicHandler(db *gorm.DB) *BasicHandler {
	return &BasicHandler{db: db, started: time.Now()}
}

// PingHandler responds to liveness probes
// GET /ping
func (h *BasicHandler) PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// HealthHandler reports readiness, including database reachability
// GET /health
func (h *BasicHandler) HealthHandler(c *gin.Context) {
	status := "healthy"
	dbStatus := "not_configured"

	if h.db != nil {
		dbStatus = "healthy"
		sqlDB, err := h.db.DB()
		if err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			dbStatus = "unhealthy"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
