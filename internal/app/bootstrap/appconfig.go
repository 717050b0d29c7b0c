// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (COACHHUB_*), configuration
// files, or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig
// still owns ports, TLS, log level and request limits; everything here is
// CoachHub's own.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Audit destinations per category: "all", "db", "log" or "off"
	AuditLogReview string
	AuditLogAdmin  string

	// Serve /metrics and record request metrics
	MetricsEnabled bool
	// How often the pending_reviews gauge is recomputed
	PendingRefresh time.Duration

	// Per-client limit on mutating requests; zero disables
	RateLimitPerMinute int
	RateLimitBurst     int

	// Database operation deadlines; zero keeps the built-in default
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
