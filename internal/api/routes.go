package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toxzak-svg/Axievale/internal/api/handlers"
	"github.com/toxzak-svg/Axievale/internal/config"
	"github.com/toxzak-svg/Axievale/internal/metrics"
	"github.com/toxzak-svg/Axievale/internal/services"
)

func SetupRouter(
	cfg *config.Config,
	marketplace *services.MarketplaceService,
	valuation *services.ValuationService,
	cache *services.ValuationCache,
	policy *services.AccessPolicy,
	users *services.UserStore,
) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - allow origins from config or use defaults
	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "x-user-id", "x-user-key", "x-extension-secret"}
	router.Use(cors.New(corsConfig))

	// Initialize handlers
	marketplaceHandler := handlers.NewMarketplaceHandler(marketplace)
	valuationHandler := handlers.NewValuationHandler(valuation)
	extensionHandler := handlers.NewExtensionHandler(valuation, cache, policy, cfg.Extension.Secret)
	userHandler := handlers.NewUserHandler(users)

	// API routes
	apiGroup := router.Group("/api")
	{
		marketplaceGroup := apiGroup.Group("/marketplace")
		{
			marketplaceGroup.GET("", marketplaceHandler.GetListings)
			marketplaceGroup.GET("/recent-sales", marketplaceHandler.GetRecentSales)
		}

		axieGroup := apiGroup.Group("/axie")
		{
			axieGroup.GET("/:id", marketplaceHandler.GetAxie)
			axieGroup.GET("/:id/valuation", valuationHandler.GetValuation)
		}

		apiGroup.POST("/valuation/batch", valuationHandler.BatchValuation)
		apiGroup.POST("/extension/valuation", extensionHandler.Valuate)

		usersGroup := apiGroup.Group("/users")
		{
			usersGroup.POST("", userHandler.Create)
			usersGroup.POST("/:id/activate", userHandler.Activate)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
