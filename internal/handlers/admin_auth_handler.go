// Admin auth handlers - operator login and session token issuance
package handlers

import (
	"net/http"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthHandler handles operator authentication.
type AdminAuthHandler struct {
	cfg    config.AdminConfig
	logger *logrus.Logger
}

// AdminLoginResponse is the login endpoint response body.
type AdminLoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// NewAdminAuthHandler creates the handler. Credentials come from the
// admin section of the config; the password is stored as a bcrypt hash.
func NewAdminAuthHandler(cfg config.AdminConfig, logger *logrus.Logger) *AdminAuthHandler {
	if cfg.PasswordHash == "" || cfg.JWTSecret == "" {
		logger.Warn("admin credentials not fully configured, operator login will be rejected")
	}
	return &AdminAuthHandler{cfg: cfg, logger: logger}
}

// AdminLoginHandler verifies credentials and issues a session token
// POST /api/admin/login
func (h *AdminAuthHandler) AdminLoginHandler(c *gin.Context) {
	if h.cfg.PasswordHash == "" || h.cfg.JWTSecret == "" {
		c.JSON(http.StatusInternalServerError, AdminLoginResponse{
			Success: false,
			Message: "Server misconfiguration: admin credentials not set",
		})
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AdminLoginResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	// generic message on every credential failure
	if req.Username != h.cfg.Username {
		c.JSON(http.StatusUnauthorized, AdminLoginResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WithField("username", req.Username).Warn("admin login failed - wrong password")
		c.JSON(http.StatusUnauthorized, AdminLoginResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := h.generateToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, AdminLoginResponse{Success: false, Message: "Failed to generate token"})
		return
	}

	h.logger.WithField("username", req.Username).Info("admin login succeeded")
	c.JSON(http.StatusOK, AdminLoginResponse{Success: true, Token: token, Message: "Login successful"})
}

func (h *AdminAuthHandler) generateToken(username string) (string, error) {
	ttl := time.Duration(h.cfg.TokenTTL) * time.Minute
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	claims := middleware.AdminClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "basket-backend",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
