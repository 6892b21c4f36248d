// Package middleware provides the gin middleware stack for the backend.
//
// Middleware stack includes:
//   - CORS: exact-match origins from configuration (tauri://localhost included)
//   - RateLimit: per-IP token bucket with idle client cleanup
//   - Recovery: panic recovery with a JSON 500 response
//   - Logger: structured request logging via zap
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORS.Origins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
