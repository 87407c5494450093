package usecase

import (
	"context"
	"time"

	"github.com/craftly/ops-fec/internal/domain"
)

// InvoiceRepository defines read access to the invoice store.
type InvoiceRepository interface {
	// ListByPeriod returns invoices created in [from, to), joined with their
	// client and items, ordered by creation date then ID.
	ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.Invoice, error)
}

// ExportHistoryRepository defines data access for generated export records.
type ExportHistoryRepository interface {
	Create(ctx context.Context, record *domain.ExportRecord) error
	List(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request failed.
	Release(ctx context.Context, key string) error
}
