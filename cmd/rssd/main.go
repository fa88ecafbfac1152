// ABOUTME: Main entry point for the RSS downloader daemon
// ABOUTME: Wires together all components, runs the dispatch loop, and serves the HTTP API

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"rss-downloader-api/api"
	"rss-downloader-api/api/handlers"
	"rss-downloader-api/core/config"
	"rss-downloader-api/core/domain"
	"rss-downloader-api/core/downloader"
	"rss-downloader-api/core/feed"
	"rss-downloader-api/core/interfaces"
	"rss-downloader-api/core/orchestrator"
	"rss-downloader-api/core/patterns"
	"rss-downloader-api/core/webhook"
	"rss-downloader-api/infrastructure/cache/memory"
	"rss-downloader-api/infrastructure/cache/redis"
	stdhttp "rss-downloader-api/infrastructure/http/standard"
	logruslogger "rss-downloader-api/infrastructure/logger/logrus"
	"rss-downloader-api/infrastructure/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the configuration file")
	dbPath := flag.String("db", "downloads.db", "path to the download ledger database")
	once := flag.Bool("once", false, "process every feed once and exit")
	web := flag.Bool("web", false, "serve the HTTP API even when disabled in the configuration")
	resetDB := flag.Bool("reset-db", false, "drop and recreate the download ledger before starting")
	flag.Parse()

	logger := logruslogger.New("info")

	cfgStore, err := config.NewStore(*configPath, logger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := cfgStore.Get()
	logger.SetLevel(cfg.Log.Level)
	cfgStore.OnChange(func(cfg domain.Config) {
		logger.SetLevel(cfg.Log.Level)
	})

	logger.Info("Starting RSS downloader", map[string]interface{}{
		"config":     *configPath,
		"feeds":      len(cfg.Feeds),
		"cache_type": cfg.Cache.Type,
	})

	ledger, err := sqlite.NewStore(*dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open download ledger: %v", err)
	}
	defer ledger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *resetDB {
		if err := ledger.Reset(ctx); err != nil {
			log.Fatalf("Failed to reset download ledger: %v", err)
		}
		logger.Info("Download ledger reset", nil)
	}

	// Create cache
	var cache interfaces.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := redis.NewRedisCache(cfg.Cache.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			cache = memory.NewMemoryCache()
		} else {
			cache = redisCache
			logger.Info("Using Redis cache", map[string]interface{}{
				"address": cfg.Cache.Redis.Address,
			})
		}
	default:
		cache = memory.NewMemoryCache()
	}

	httpClient := stdhttp.NewStandardHTTPClient(30 * time.Second)

	deps := interfaces.Dependencies{
		Cache:      cache,
		HTTPClient: httpClient,
		Logger:     logger,
	}

	patternCache := patterns.NewCache(cfgStore, logger)
	feedService := feed.NewService(deps, cfgStore, patternCache)

	registry, err := downloader.BuildRegistry(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up download back-ends: %v", err)
	}

	notifier := webhook.NewService(cfgStore, httpClient, logger)
	orch := orchestrator.NewService(cfgStore, feedService, ledger, registry, notifier, logger)

	if *once {
		orch.RunOnce(ctx)
		return
	}

	go cfgStore.Watch(ctx)
	go orch.RunPeriodically(ctx)

	var srv *http.Server
	if cfg.Web.Enabled || *web {
		srv = startAPIServer(cfg.Web.Host, cfg.Web.Port, logger, cfgStore, ledger, orch)
	}

	<-ctx.Done()
	logger.Info("Shutting down...", nil)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	logger.Info("Stopped", nil)
}

func startAPIServer(
	host string,
	port int,
	logger interfaces.Logger,
	cfgStore *config.Store,
	ledger *sqlite.Store,
	orch *orchestrator.Service,
) *http.Server {
	humaAPI, router := api.NewAPI(api.APIConfig{
		Logger:     logger,
		RateLimit:  100,
		RateWindow: time.Minute,
	})

	downloadHandler := handlers.NewDownloadHandler(ledger, orch)
	downloadHandler.RegisterRoutes(humaAPI)

	configHandler := handlers.NewConfigHandler(cfgStore)
	configHandler.RegisterRoutes(humaAPI)

	downloaderHandler := handlers.NewDownloaderHandler(logger)
	downloaderHandler.RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:         host + ":" + strconv.Itoa(port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	return srv
}
