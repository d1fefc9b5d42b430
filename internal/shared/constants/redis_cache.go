package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: ewait:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_SHORT = 6 * time.Hour // user profiles
)

const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // analytics
	TTL_DYNAMIC_SHORT  = 5 * time.Minute
)

// Queue data changes on every join; keep these short.
const (
	TTL_REALTIME_MEDIUM = 1 * time.Minute
	TTL_REALTIME_SHORT  = 30 * time.Second
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ewait"
)

// ================== QUEUES MODULE ==================

const (
	CACHE_KEY_QUEUE_BY_CODE = CACHE_PREFIX + ":queues:code:" // + queue-id
)

const (
	TTL_QUEUE_BY_CODE = TTL_REALTIME_SHORT
)

// ================== LOCATIONS MODULE ==================

const (
	CACHE_KEY_LOCATIONS_BY_OWNER = CACHE_PREFIX + ":locations:owner:uuid:" // + owner-id
)

const (
	TTL_LOCATIONS_BY_OWNER = TTL_REALTIME_MEDIUM
)

// ================== ANALYTICS MODULE ==================

const (
	CACHE_KEY_ANALYTICS_SUMMARY = CACHE_PREFIX + ":analytics:summary:owner:" // + owner-id:days:X:location:Y
)

const (
	TTL_ANALYTICS_SUMMARY = TTL_DYNAMIC_MEDIUM
)

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

const (
	TTL_USER_PROFILE = TTL_STATIC_SHORT
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_ANALYTICS = CACHE_PREFIX + ":analytics:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildQueueByCodeKey(queueID string) string {
	return CACHE_KEY_QUEUE_BY_CODE + queueID
}

func BuildLocationsByOwnerKey(ownerID string) string {
	return CACHE_KEY_LOCATIONS_BY_OWNER + ownerID
}

// BuildAnalyticsSummaryKey -> "ewait:analytics:summary:owner:<id>:days:7:location:all"
func BuildAnalyticsSummaryKey(ownerID string, days int, locationID string) string {
	if locationID == "" {
		locationID = "all"
	}
	return CACHE_KEY_ANALYTICS_SUMMARY + ownerID + ":days:" + fmt.Sprintf("%d", days) + ":location:" + locationID
}

func BuildUserProfileKey(userID string) string {
	return CACHE_KEY_USER_PROFILE + userID
}
