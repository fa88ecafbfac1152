// Package core contains the business logic for the RSS downloader.
// It is designed to be framework-agnostic and can be used independently
// of any web framework or infrastructure concerns.
//
// The core package is organized into several sub-packages:
//
// - domain: Pure domain models (Config, FeedConfig, DownloadRecord, ParsedItem)
// - config: Configuration store with validation, hot reload, and partial updates
// - patterns: Compiled include/exclude pattern cache keyed by config version
// - feed: Feed fetching, parsing, and link extraction
// - downloader: Clients for the aria2, qBittorrent, and Transmission back-ends
// - orchestrator: The ingestion-and-dispatch pipeline
// - webhook: Dispatch notifications to configured webhooks
// - errors: Custom error types for better error handling
// - interfaces: Contracts for external dependencies (cache, HTTP, logger, storage)
//
// # Design Principles
//
// The core package follows clean architecture principles:
// - No external framework dependencies
// - All external dependencies are injected via interfaces
// - Business logic is testable in isolation
// - Domain models are free from persistence concerns
//
// # Usage Example
//
//	import (
//	    "rss-downloader-api/core/config"
//	    "rss-downloader-api/core/feed"
//	    "rss-downloader-api/core/interfaces"
//	    "rss-downloader-api/core/patterns"
//	)
//
//	// Create dependencies
//	deps := interfaces.Dependencies{
//	    Cache:      myCache,      // implements interfaces.Cache
//	    HTTPClient: myHTTPClient, // implements interfaces.HTTPClient
//	    Logger:     myLogger,     // implements interfaces.Logger
//	}
//
//	// Load configuration and create services
//	store, err := config.NewStore("config.yml", myLogger)
//	patternCache := patterns.NewCache(store, myLogger)
//	feedService := feed.NewService(deps, store, patternCache)
//
//	// Parse a feed
//	total, items := feedService.Parse(ctx, "my-feed", "https://example.com/feed.rss")
//
package core
