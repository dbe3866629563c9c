package utils

import (
	"time"
)

// Listing and pagination constants
const (
	// DefaultPageSize is the number of prediction records returned per page
	// when the caller does not ask for a specific page size
	DefaultPageSize = 50

	// MaxPageSize caps the number of prediction records returned per page
	MaxPageSize = 500
)

// Cache constants
const (
	// RecentPredictionsCacheKey is the cache key for the unfiltered first
	// page of the prediction listing
	RecentPredictionsCacheKey = "predictions:recent"

	// RecentPredictionsCacheTTL is how long the cached listing page stays
	// valid when no write invalidates it first
	RecentPredictionsCacheTTL = 30 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
