package common

// AuthorizationHeader carries the bearer token on requests to the signing
// service.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// Size units used by planner thresholds and configuration.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// Default transfer tuning.
const (
	DefaultSinglePartThreshold = 50 * MiB
	DefaultPartSize            = 8 * MiB
	DefaultConcurrency         = 3
	// MaxMultipartParts is the part-count ceiling of S3-compatible stores.
	MaxMultipartParts = 10000
)
