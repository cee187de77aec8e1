// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort               = "8080"
	DefaultDBPath             = "cratedigger.db"
	DefaultOwner              = "local"
	DefaultCatalogURL         = "https://api.discogs.com"
	DefaultVideoURL           = "https://www.googleapis.com/youtube/v3"
	DefaultUserAgent          = "cratedigger/1.0"
	DefaultPollInterval       = 1600 * time.Millisecond
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultRequeueSchedule    = "@every 10m"
	DefaultRequeueCooldown    = 30 * time.Minute
	DefaultPageSize           = 50
	DefaultBusyTimeoutMillis  = 5000
	DefaultRetryBase          = 1 * time.Second
	MaxLastErrorLength        = 1200
	MaxSearchResults          = 8
	DefaultStorefrontMaxBytes = 2 << 20
)

// Provider names
const (
	ProviderCatalog    = "catalog"
	ProviderVideo      = "video"
	ProviderStorefront = "storefront"
)

// Minimum spacing between two dispatched calls to the same provider
const (
	CatalogMinGap    = 1200 * time.Millisecond
	VideoMinGap      = 800 * time.Millisecond
	StorefrontMinGap = 1000 * time.Millisecond
)

// Attempt ceilings per logical request
const (
	CatalogMaxAttempts    = 4
	VideoMaxAttempts      = 3
	StorefrontMaxAttempts = 2
)

// Response cache TTLs
const (
	TTLReleaseDetail = 14 * 24 * time.Hour
	TTLLabelPage     = 6 * time.Hour
	TTLVideoSearch   = 72 * time.Hour
	TTLIdentity      = 24 * time.Hour
	TTLWantlist      = 10 * time.Minute
	TTLStorefront    = 72 * time.Hour
)

// Block record TTLs
const (
	BlockQuota     = 8 * time.Hour
	BlockFatal     = 24 * time.Hour
	BlockTransient = 15 * time.Minute
)

// Match scoring
const (
	ScoreExact             = 10
	ScoreCandidateContains = 8
	ScoreTrackContains     = 5
	CatalogScoreThreshold  = 3
	StorefrontScore        = 9
	ReleaseVideoScore      = 2
	LongFormPenalty        = 2
	WeakRatio              = 0.6
	WeakMinimum            = 2
)

// Queue priorities by source
const (
	PriorityManual          = 100
	PriorityCatalog         = 50
	PriorityStorefront      = 45
	PrioritySearch          = 40
	PriorityReleaseVideo    = 20
	PriorityReleaseFallback = 10
)

// HTTP
const (
	HeaderOwnerID = "X-Owner-ID"
)
