package usecase

import "time"

const (
	// BillCacheTTL bounds staleness of cached bill views. Writes touching a
	// card period invalidate eagerly; the TTL is the backstop.
	BillCacheTTL = 60 * time.Second

	// GoalCacheTTL bounds staleness of cached goal progress.
	GoalCacheTTL = 60 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour
)
