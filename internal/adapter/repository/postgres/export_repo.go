package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/infrastructure/metrics"
	"github.com/craftly/ops-fec/internal/infrastructure/postgres/generated"
)

// ExportRepository implements usecase.ExportHistoryRepository.
type ExportRepository struct {
	queries *generated.Queries
	retrier *Retrier
	metrics *metrics.Metrics
}

// NewExportRepository creates a new ExportRepository. m may be nil.
func NewExportRepository(pool *pgxpool.Pool, retrier *Retrier, m *metrics.Metrics) *ExportRepository {
	return newExportRepositoryWithDB(pool, retrier, m)
}

func newExportRepositoryWithDB(db generated.DBTX, retrier *Retrier, m *metrics.Metrics) *ExportRepository {
	return &ExportRepository{
		queries: generated.New(db),
		retrier: retrier,
		metrics: m,
	}
}

// Create stores an export record, retrying on serialization failures and deadlocks.
func (r *ExportRepository) Create(ctx context.Context, record *domain.ExportRecord) error {
	params := generated.CreateFecExportParams{
		ID:            record.ID,
		Siren:         record.SIREN,
		PeriodStart:   dateToPgDate(record.PeriodStart),
		PeriodEnd:     dateToPgDate(record.PeriodEnd),
		Filename:      record.Filename,
		InvoiceCount:  int32(record.InvoiceCount),
		EntryCount:    int32(record.EntryCount),
		TotalDebit:    decimalToNumeric(record.TotalDebit),
		TotalCredit:   decimalToNumeric(record.TotalCredit),
		ContentSha256: record.ContentSHA256,
		CreatedAt:     timeToPgTimestamptz(record.CreatedAt),
	}

	start := time.Now()
	insert := func() error {
		return r.queries.CreateFecExport(ctx, params)
	}

	var err error
	if r.retrier != nil {
		err = r.retrier.Retry(ctx, insert)
	} else {
		err = insert()
	}
	observeQuery(r.metrics, "create", "fec_exports", start, err)

	return err
}

// List lists export records, most recent first.
func (r *ExportRepository) List(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	start := time.Now()
	rows, err := r.queries.ListFecExports(ctx, generated.ListFecExportsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	observeQuery(r.metrics, "list", "fec_exports", start, err)
	if err != nil {
		return nil, err
	}

	records := make([]*domain.ExportRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToExportRecord(row))
	}

	return records, nil
}

func rowToExportRecord(row generated.FecExport) *domain.ExportRecord {
	return &domain.ExportRecord{
		ID:            row.ID,
		SIREN:         row.Siren,
		PeriodStart:   row.PeriodStart.Time,
		PeriodEnd:     row.PeriodEnd.Time,
		Filename:      row.Filename,
		InvoiceCount:  int(row.InvoiceCount),
		EntryCount:    int(row.EntryCount),
		TotalDebit:    numericToDecimal(row.TotalDebit),
		TotalCredit:   numericToDecimal(row.TotalCredit),
		ContentSHA256: row.ContentSha256,
		CreatedAt:     row.CreatedAt.Time,
	}
}
