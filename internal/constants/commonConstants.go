package constants

type (
	APIStatus   string
	CachePrefix string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixHealthCounts CachePrefix = "HEALTH_COUNTS_"
)

// System status values reported by the health endpoint
const (
	SystemStatusHealthy   = "healthy"
	SystemStatusDegraded  = "degraded"
	SystemStatusUnhealthy = "unhealthy"
)

// Store names used by health probes and metrics labels
const (
	StoreDashboard   = "dashboard"
	StoreFerramentas = "ferramentas"
	StoreLegacy      = "legacy"
	StoreRedis       = "redis"
)
