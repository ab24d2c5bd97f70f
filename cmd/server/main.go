package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"hotelbot/internal/config"
	"hotelbot/internal/logger"
	"hotelbot/internal/metrics"
	"hotelbot/internal/repository"
	"hotelbot/internal/service"

	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Infow("Cheapest hotel bot",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	if err := cfg.Validate(); err != nil {
		zlog.Fatalw("Invalid configuration", "error", err)
	}

	loc, err := time.LoadLocation(cfg.NLU.Timezone)
	if err != nil {
		zlog.Fatalw("Unknown reference timezone", "timezone", cfg.NLU.Timezone, "error", err)
	}

	gin.SetMode(cfg.Server.GinMode)
	m := metrics.New()

	// Search log is optional
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			zlog.Fatalw("Failed to connect to database", "error", err)
		}
		defer repo.Close()

		if err := repo.Migrate(zlog); err != nil {
			zlog.Fatalw("Failed to migrate database", "error", err)
		}
		zlog.Info("Connected to PostgreSQL, search log enabled")
	} else {
		zlog.Info("No database configured, search log disabled")
	}

	llm := service.NewOpenAIClient(&cfg.OpenAI, zlog)
	extractor := service.NewIntentParser(llm, cfg.OpenAI.LenientJSON, zlog)
	normalizer := service.NewNormalizer(loc, cfg.NLU.MinConfidence, time.Now, zlog)
	geocoder := service.NewNominatimGeocoder(&cfg.Geocoder, m, zlog)
	amadeus := service.NewAmadeusClient(&cfg.Amadeus, m, zlog)
	searcher := service.NewOfferSearch(amadeus, service.NewRanker(cfg.Search.TopN), cfg.Search.MaxFallbackID, m, zlog)

	var searchLog service.SearchLogger
	if repo != nil {
		searchLog = repo
	}
	chat := service.NewChatService(extractor, normalizer, geocoder, searcher, searchLog, m, zlog)

	zlog.Info("Services initialized")

	router := newRouter(cfg, routerDeps{
		chat: chat,
		repo: repo,
		log:  zlog,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Infow("Starting server", "addr", addr, "web_ui", fmt.Sprintf("http://localhost:%d", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Errorw("Server forced to shut down", "error", err)
	}
	zlog.Info("Server stopped")
}
