package usecase

import "time"

const (
	// DefaultFetchTimeout bounds the invoice query of a single export.
	DefaultFetchTimeout = 30 * time.Second

	// DefaultHistoryTimeout bounds the best-effort history insert.
	DefaultHistoryTimeout = 5 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
