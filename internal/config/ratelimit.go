package config

import "time"

// UnlockLimitConfig bounds how often a user may attempt to unlock the same
// day.  It is a token bucket: Capacity attempts up front, then RefillTokens
// more every RefillInterval.
type UnlockLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

func LoadUnlockLimitConfig() UnlockLimitConfig {
	def := UnlockLimitConfig{
		Enabled:        envBool("UNLOCK_LIMIT_ENABLED", true),
		Capacity:       envInt("UNLOCK_LIMIT_CAPACITY", 5),
		RefillTokens:   envInt("UNLOCK_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("UNLOCK_LIMIT_REFILL_INTERVAL", time.Minute),
		TTL:            envDur("UNLOCK_LIMIT_TTL", time.Hour),
		Prefix:         getenv("UNLOCK_LIMIT_PREFIX", "unlock"),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Minute
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
