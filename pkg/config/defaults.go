package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "labbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0
	DefaultCalendarTTL = 30 * time.Second

	DefaultKafkaEventTopic = "scheduling-events"

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Alternative-slot search is bounded: six same-day offsets plus three
	// next-day candidates, capped at this many returned slots.
	DefaultMaxAlternatives = 5

	DefaultSlotLockTTL = 10 * time.Second

	// Calendar reads without explicit bounds cover now..now+horizon.
	DefaultCalendarHorizon = 30 * 24 * time.Hour

	DefaultDefaultStartOfDay = "09:00"
	DefaultDefaultEndOfDay   = "18:00"
)
