package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// OTPExpiry is the time-to-live for OTP codes (5 minutes)
	OTPExpiry = 5 * time.Minute

	// OTPResendCooldown is the minimum gap between OTP resends for one user
	OTPResendCooldown = 90 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Store constants
const (
	TomanCurrency = "TMN"

	// MaxCartItemQuantity caps the per-line quantity a customer may order
	MaxCartItemQuantity = 10000

	// DefaultBulkOrderThreshold is the total item count at which an institute
	// order requires admin verification, unless overridden in config
	DefaultBulkOrderThreshold = 100

	// CatalogCacheTTL is how long cached catalog pages stay valid
	CatalogCacheTTL = 5 * time.Minute
)

// Named sequences for sequential integer identifiers. The values are the
// counter row names and must stay stable across deployments and migrations.
const (
	SequenceUserID     = "userId"
	SequenceProductID  = "productId"
	SequenceOrderID    = "orderId"
	SequenceCategoryID = "categoryId"
)
