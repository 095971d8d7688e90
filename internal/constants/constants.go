// Package constants centralizes the fixed values used across the API:
// defaults, header names, query parameter names, error codes and
// user-facing messages. Keeping them here avoids magic strings drifting
// apart between handlers, services and tests.
package constants

import "time"

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Server defaults.
const (
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Database defaults.
const (
	DefaultDBMaxConnections = 25
	DefaultDBMinConnections = 5
)

// JWT defaults.
const (
	DefaultJWTExpiry = 24 * time.Hour
	DefaultJWTIssuer = "budget-tracker-api"
)

// Password reset.
const (
	// ResetTokenDuration is the validity window for a password reset token.
	ResetTokenDuration = 10 * time.Minute

	// PasswordChangedAtSkew is subtracted from the recorded password-change
	// time so a token minted in the same second as the change is not
	// rejected as stale.
	PasswordChangedAtSkew = 1 * time.Second
)

// Password hashing defaults (Argon2id).
const (
	DefaultHashMemory      uint32 = 64 * 1024
	DefaultHashIterations  uint32 = 3
	DefaultHashParallelism uint8  = 2
	DefaultHashSaltLength  uint32 = 16
	DefaultHashKeyLength   uint32 = 32

	DevHashMemory     uint32 = 16 * 1024
	DevHashIterations uint32 = 1
)

// Validation limits.
const (
	MinPasswordLength  = 8
	MaxRequestBodySize = 1 << 20 // 1 MB
)

// Headers.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	BearerTokenPrefix   = "Bearer "
	ContentTypeJSON     = "application/json"
)

// Security headers.
const (
	HeaderXContentTypeOptions = "X-Content-Type-Options"
	HeaderXFrameOptions       = "X-Frame-Options"
	HeaderXXSSProtection      = "X-XSS-Protection"
	HeaderReferrerPolicy      = "Referrer-Policy"

	ContentTypeOptionsNoSniff  = "nosniff"
	FrameOptionsDeny           = "DENY"
	XSSProtectionModeBlock     = "1; mode=block"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
)

// Rate limiting defaults for authentication endpoints.
const (
	DefaultAuthRateLimit  = 10
	DefaultAuthRateWindow = time.Minute
)

// MaxLoggedQueryLength caps SQL statement text in debug log lines.
const MaxLoggedQueryLength = 300

// Query builder reserved parameters and defaults.
const (
	QueryParamPage   = "page"
	QueryParamLimit  = "limit"
	QueryParamSort   = "sort"
	QueryParamFields = "fields"
	QueryParamSearch = "search"

	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 500
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Table names.
const (
	TableUsers    = "users"
	TableRecords  = "records"
	TableBudgets  = "budgets"
	TableSettings = "settings"
)
