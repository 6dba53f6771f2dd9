package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// APIKeyMiddleware guards the mutation endpoints with a shared secret.
// Reads stay open; an empty configured key disables the check entirely,
// which is the local development mode.
type APIKeyMiddleware struct {
	apiKey string
	logger *logrus.Logger
}

// NewAPIKeyMiddleware creates the middleware.
func NewAPIKeyMiddleware(apiKey string, logger *logrus.Logger) *APIKeyMiddleware {
	return &APIKeyMiddleware{apiKey: apiKey, logger: logger}
}

// RequireAPIKey validates the X-API-Key header with a constant-time
// comparison.
func (m *APIKeyMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader("X-API-Key")
		if provided == "" {
			m.logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("API key check failed - missing X-API-Key header")

			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "API key required",
				"code":    "MISSING_API_KEY",
			})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
			m.logger.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Warn("API key check failed - invalid key")

			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid API key",
				"code":    "INVALID_API_KEY",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
