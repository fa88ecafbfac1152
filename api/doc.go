// Package api provides the HTTP API layer for the RSS downloader.
// It uses the Huma framework to provide automatic OpenAPI documentation,
// request/response validation, and a clean handler interface.
//
// # Architecture
//
// The API package is structured as follows:
//
// - server.go: Huma API configuration and setup
// - handlers/: HTTP request handlers
// - middleware/: HTTP middleware for cross-cutting concerns
//
// # Key Features
//
// 1. Automatic OpenAPI Generation
//
// The API automatically generates OpenAPI 3.0 documentation:
// - JSON spec available at /openapi.json
// - Interactive Swagger UI at /docs
//
// 2. Request/Response Validation
//
// Huma provides automatic validation based on struct tags:
//
//	type SearchDownloadsInput struct {
//	    Status *int `query:"status" minimum:"0" maximum:"1"`
//	    Limit  int  `query:"limit" minimum:"1" maximum:"200" default:"20"`
//	    Offset int  `query:"offset" minimum:"0" default:"0"`
//	}
//
// 3. Middleware Support
//
// The API includes middleware for:
// - Request logging with unique request IDs
// - Rate limiting per IP address
// - CORS handling
//
// # Usage Example
//
//	// Create API with middleware
//	cfg := api.APIConfig{
//	    Logger:     logger,
//	    RateLimit:  100,
//	    RateWindow: time.Minute,
//	}
//	humaAPI, router := api.NewAPI(cfg)
//
//	// Register handlers
//	downloadHandler := handlers.NewDownloadHandler(ledger, orchestrator)
//	downloadHandler.RegisterRoutes(humaAPI)
//
//	// Start server
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// The API uses a consistent error format based on RFC 7807:
//
//	{
//	    "status": 404,
//	    "title": "Not Found",
//	    "detail": "download record not found: 42",
//	    "instance": "/downloads/42/redownload"
//	}
//
// Domain errors are automatically mapped to appropriate HTTP status codes.
package api
