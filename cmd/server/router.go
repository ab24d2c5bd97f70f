package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hotelbot/internal/config"
	"hotelbot/internal/handler"
	"hotelbot/internal/middleware"
	"hotelbot/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type routerDeps struct {
	chat handler.ChatResponder
	repo *repository.PostgresRepository // nil when the search log is disabled
	log  *zap.SugaredLogger
}

func newRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging(deps.log))

	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.Server.AllowedOrigins); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status":     "healthy",
			"service":    "cheapest-hotel-bot",
			"version":    Version,
			"search_log": deps.repo != nil,
		}
		if deps.repo != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.repo.Ping(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(deps.chat)
	limit := middleware.RateLimit(cfg.RateLimit)

	api := router.Group("/api")
	{
		api.POST("/chat", limit, chatHandler.Chat)
		api.POST("/chat/stream", limit, chatHandler.ChatStream)

		if deps.repo != nil {
			api.POST("/feedback", handler.NewFeedbackHandler(deps.repo).Submit)
		}
	}

	// implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, deps.log)

	return router
}

// splitOrigins turns a comma-separated origin list into a slice, defaulting to any origin
func splitOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// apiNotFound answers unknown /api paths with JSON and reports whether it did
func apiNotFound(c *gin.Context) bool {
	if !strings.HasPrefix(c.Request.URL.Path, "/api") {
		return false
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	return true
}
