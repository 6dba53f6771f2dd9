package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"basket-backend/internal/app"
	"basket-backend/internal/config"
	"basket-backend/internal/handlers"
	"basket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// corsMiddleware applies the configured CORS policy. An empty origin list
// allows everything, which is the local development mode.
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowAll := len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*")
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 3600
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case allowAll:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "":
			for _, allowed := range cfg.AllowedOrigins {
				if strings.TrimSpace(allowed) == origin {
					c.Header("Access-Control-Allow-Origin", origin)
					if cfg.AllowCredentials {
						c.Header("Access-Control-Allow-Credentials", "true")
					}
					break
				}
			}
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger logs every request with its latency and status.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request handled")
	}
}

// SetupRouter builds the gin engine with all routes wired to the service
// container. Reads are open; mutations require the API key; operator
// endpoints require an admin session token.
func SetupRouter(cfg *config.Config, container *app.Container, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(corsMiddleware(cfg.CORS))

	apiKey := middleware.NewAPIKeyMiddleware(cfg.Server.APIKey, logger)
	adminAuth := middleware.NewAdminAuthMiddleware(cfg.Admin.JWTSecret, logger)

	basicHandler := handlers.NewBasicHandler(container.DB)
	chainHandler := handlers.NewChainHandler(container.Chains)
	assetHandler := handlers.NewAssetHandler(container.Assets)
	mcAssetHandler := handlers.NewMultiChainAssetHandler(container.MultiChainAssets)
	basketHandler := handlers.NewBasketHandler(container.Baskets)
	mcBasketHandler := handlers.NewMultiChainBasketHandler(container.MultiChainBaskets)
	mintHandler := handlers.NewMintHandler(container.Orchestrator, container.Mints, container.MultiChainMints)
	adminAuthHandler := handlers.NewAdminAuthHandler(cfg.Admin, logger)
	adminHandler := handlers.NewAdminHandler(
		container.Chains, container.Assets, container.MultiChainAssets,
		container.Baskets, container.MultiChainBaskets,
		container.Mints, container.MultiChainMints, logger)

	r.GET("/ping", basicHandler.PingHandler)
	r.GET("/health", basicHandler.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// chain registry
		api.GET("/chains", chainHandler.ListChainsHandler)
		api.GET("/chains/:id", chainHandler.GetChainHandler)
		api.POST("/chains", apiKey.RequireAPIKey(), chainHandler.RegisterChainHandler)
		api.PATCH("/chains/:id", apiKey.RequireAPIKey(), chainHandler.UpdateChainHandler)

		// single-chain asset registry
		api.GET("/assets", assetHandler.ListAssetsHandler)
		api.GET("/assets/:id", assetHandler.GetAssetHandler)
		api.POST("/assets", apiKey.RequireAPIKey(), assetHandler.RegisterAssetHandler)

		// single-chain basket registry
		api.GET("/baskets", basketHandler.ListBasketsHandler)
		api.GET("/baskets/:id", basketHandler.GetBasketHandler)
		api.POST("/baskets", apiKey.RequireAPIKey(), basketHandler.CreateBasketHandler)
		api.PATCH("/baskets/:id/status", apiKey.RequireAPIKey(), basketHandler.SetBasketStatusHandler)
		api.POST("/baskets/:id/expand", basketHandler.ExpandBasketHandler)

		// single-chain mints
		api.GET("/mints", mintHandler.ListMintsHandler)
		api.GET("/mints/:id", mintHandler.GetMintHandler)
		api.POST("/mints", apiKey.RequireAPIKey(), mintHandler.RequestMintHandler)

		multichain := api.Group("/multichain")
		{
			multichain.GET("/assets", mcAssetHandler.ListHandler)
			multichain.GET("/assets/:id", mcAssetHandler.GetHandler)
			multichain.GET("/assets/:id/deployment", mcAssetHandler.GetDeploymentHandler)
			multichain.POST("/assets", apiKey.RequireAPIKey(), mcAssetHandler.RegisterHandler)
			multichain.POST("/assets/:id/deployments", apiKey.RequireAPIKey(), mcAssetHandler.AddDeploymentHandler)
			multichain.DELETE("/assets/:id/deployments/:chain_id", apiKey.RequireAPIKey(), mcAssetHandler.RemoveDeploymentHandler)

			multichain.GET("/baskets", mcBasketHandler.ListHandler)
			multichain.GET("/baskets/:id", mcBasketHandler.GetHandler)
			multichain.POST("/baskets", apiKey.RequireAPIKey(), mcBasketHandler.CreateHandler)
			multichain.POST("/baskets/:id/chains", apiKey.RequireAPIKey(), mcBasketHandler.AddChainHandler)
			multichain.DELETE("/baskets/:id/chains/:chain_id", apiKey.RequireAPIKey(), mcBasketHandler.RemoveChainHandler)
			multichain.POST("/baskets/:id/expand", mcBasketHandler.ExpandHandler)

			multichain.GET("/mints", mintHandler.ListMultiChainMintsHandler)
			multichain.GET("/mints/:id", mintHandler.GetMultiChainMintHandler)
			multichain.GET("/beneficiaries/:address/stats", mintHandler.BeneficiaryStatsHandler)
			multichain.GET("/stats", mintHandler.MultiChainStatsHandler)
			multichain.POST("/mints", apiKey.RequireAPIKey(), mintHandler.RequestMultiChainMintHandler)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminAuthHandler.AdminLoginHandler)
			admin.GET("/whoami", adminAuth.RequireAdminAuth(), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"username": c.GetString("admin_username"),
					"role":     c.GetString("admin_role"),
				})
			})
			admin.GET("/stats", adminAuth.RequireAdminAuth(), adminHandler.StatsHandler)
			admin.POST("/backup/run", adminAuth.RequireAdminAuth(), adminHandler.BackupRunHandler)
		}
	}

	return r
}
