// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as caching, HTTP communication, persistence, and logging.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: In-memory cache implementation with expiring entries
// - cache/redis: Redis-based cache implementation
// - http/standard: Standard library HTTP client with retry logic
// - logger/logrus: Structured logger built on logrus
// - storage/sqlite: SQLite-backed download ledger
//
// # Design Philosophy
//
// Infrastructure components are designed to be:
// - Pluggable: Easy to swap implementations
// - Configurable: Accept configuration objects
// - Testable: Include both unit and integration tests
// - Production-ready: Include retries, timeouts, and error handling
//
// # Cache Implementations
//
// Memory Cache Example:
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "key", []byte("value"), 1*time.Hour)
//	value, err := cache.Get(ctx, "key")
//
// Redis Cache Example:
//
//	cache, err := redis.NewRedisCache(domain.RedisConfig{
//	    Address: "localhost:6379",
//	})
//
// # Download Ledger
//
// The SQLite store records every dispatch attempt:
//
//	store, err := sqlite.NewStore("downloads.db", logger)
//	id := store.Insert(ctx, record)
//	found := store.IsDownloaded(ctx, record.DownloadURL)
//
// # HTTP Client
//
// The HTTP client includes automatic retry logic for transient failures:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://example.com")
//
// # Logger
//
// The logger supports structured logging with fields:
//
//	logger := logrus.New("info")
//	logger.Info("Processing feed", map[string]interface{}{
//	    "feed": "my-feed",
//	    "items": 12,
//	})
//
package infrastructure
