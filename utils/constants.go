package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (1 hour)
	AccessTokenTTL = time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds
	AccessTokenTTLSeconds = 3600

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// OTPExpiry is the time-to-live for OTP codes (5 minutes)
	OTPExpiry = 5 * time.Minute

	// OTPMaxAttempts is how many wrong codes lock a challenge out
	OTPMaxAttempts = 3
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Ordering constants
const (
	// RecommendationCount is how many items a recommendation response carries
	RecommendationCount = 4

	// RecommendationTimeout bounds the call to the recommendation service
	RecommendationTimeout = 3 * time.Second

	// RecommendationCacheTTL is how long the popularity fallback is cached
	RecommendationCacheTTL = 10 * time.Minute
)
