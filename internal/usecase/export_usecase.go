package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/fec"
	"github.com/craftly/ops-fec/internal/infrastructure/logger"
	"github.com/craftly/ops-fec/internal/infrastructure/metrics"
)

var (
	// ErrInconsistentLedger is returned when the generated ledger is not balanced.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: debits do not equal credits")
)

// GenerateExportInput is the input of an export run.
// PeriodStart and PeriodEnd are calendar dates, both included.
type GenerateExportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	SIREN       string
}

// ExportResult is a generated FEC file.
type ExportResult struct {
	Content      string
	Filename     string
	InvoiceCount int
	EntryCount   int
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	SHA256       string
}

// PreviewResult holds the entries an export would contain.
type PreviewResult struct {
	Filename     string
	Entries      []domain.AccountingEntry
	InvoiceCount int
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
}

// ExportUseCase orchestrates FEC exports: fetch, project, serialize.
type ExportUseCase struct {
	invoiceRepo InvoiceRepository
	historyRepo ExportHistoryRepository
	idGen       IDGenerator
	projector   *fec.Projector
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExportUseCase creates a new ExportUseCase. historyRepo and m may be nil.
func NewExportUseCase(
	invoiceRepo InvoiceRepository,
	historyRepo ExportHistoryRepository,
	idGen IDGenerator,
	projector *fec.Projector,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ExportUseCase {
	return &ExportUseCase{
		invoiceRepo: invoiceRepo,
		historyRepo: historyRepo,
		idGen:       idGen,
		projector:   projector,
		metrics:     m,
		logger:      logger.WithComponent(log, "export"),
		now:         time.Now,
	}
}

// WithClock replaces the clock used for history timestamps and durations.
func (uc *ExportUseCase) WithClock(now func() time.Time) *ExportUseCase {
	uc.now = now
	return uc
}

type projection struct {
	entries      []domain.AccountingEntry
	invoiceCount int
	totalDebit   decimal.Decimal
	totalCredit  decimal.Decimal
}

// GenerateExport builds the FEC file for the requested period.
// Nothing is returned on failure: no partial file.
func (uc *ExportUseCase) GenerateExport(ctx context.Context, in GenerateExportInput) (*ExportResult, error) {
	start := uc.now()
	log := logger.WithRequest(ctx, uc.logger)

	p, err := uc.project(ctx, in)
	if err != nil {
		uc.recordError(err)
		log.Warn().Err(err).
			Str("siren", in.SIREN).
			Str("period_start", in.PeriodStart.Format(time.DateOnly)).
			Str("period_end", in.PeriodEnd.Format(time.DateOnly)).
			Msg("fec export failed")
		return nil, err
	}

	content := fec.Serialize(p.entries)
	sum := sha256.Sum256([]byte(content))

	result := &ExportResult{
		Content:      content,
		Filename:     fec.Filename(in.SIREN, in.PeriodEnd),
		InvoiceCount: p.invoiceCount,
		EntryCount:   len(p.entries),
		TotalDebit:   p.totalDebit,
		TotalCredit:  p.totalCredit,
		SHA256:       hex.EncodeToString(sum[:]),
	}

	uc.recordHistory(ctx, log, in, result)

	if uc.metrics != nil {
		uc.metrics.ExportsGenerated.Inc()
		uc.metrics.ExportDuration.Observe(uc.now().Sub(start).Seconds())
		uc.metrics.ExportEntries.Observe(float64(result.EntryCount))
		uc.metrics.ExportInvoices.Observe(float64(result.InvoiceCount))
	}

	log.Info().
		Str("filename", result.Filename).
		Int("invoices", result.InvoiceCount).
		Int("entries", result.EntryCount).
		Str("total_debit", result.TotalDebit.StringFixed(2)).
		Msg("fec export generated")

	return result, nil
}

// PreviewExport runs the export up to the projection and returns the entries.
func (uc *ExportUseCase) PreviewExport(ctx context.Context, in GenerateExportInput) (*PreviewResult, error) {
	p, err := uc.project(ctx, in)
	if err != nil {
		uc.recordError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExportsPreviewed.Inc()
	}

	return &PreviewResult{
		Filename:     fec.Filename(in.SIREN, in.PeriodEnd),
		Entries:      p.entries,
		InvoiceCount: p.invoiceCount,
		TotalDebit:   p.totalDebit,
		TotalCredit:  p.totalCredit,
	}, nil
}

// ListExports returns the export history, most recent first.
func (uc *ExportUseCase) ListExports(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error) {
	if uc.historyRepo == nil {
		return []*domain.ExportRecord{}, nil
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.historyRepo.List(ctx, limit, offset)
}

func (uc *ExportUseCase) project(ctx context.Context, in GenerateExportInput) (*projection, error) {
	req := domain.FECExportRequest{
		PeriodStart: in.PeriodStart,
		PeriodEnd:   in.PeriodEnd,
		SIREN:       in.SIREN,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from, to := req.Bounds(uc.projector.Location())

	fetchCtx, cancel := context.WithTimeout(ctx, DefaultFetchTimeout)
	defer cancel()

	invoices, err := uc.invoiceRepo.ListByPeriod(fetchCtx, from, to)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	entries, err := uc.projector.Project(invoices)
	if err != nil {
		return nil, err
	}

	debit, credit := domain.SumEntries(entries)
	if !debit.Equal(credit) {
		return nil, fmt.Errorf("%w: debit=%s credit=%s", ErrInconsistentLedger, debit, credit)
	}

	return &projection{
		entries:      entries,
		invoiceCount: len(invoices),
		totalDebit:   debit,
		totalCredit:  credit,
	}, nil
}

func (uc *ExportUseCase) recordHistory(ctx context.Context, log zerolog.Logger, in GenerateExportInput, result *ExportResult) {
	if uc.historyRepo == nil {
		return
	}

	record := &domain.ExportRecord{
		ID:            uc.idGen.Generate(),
		SIREN:         domain.NormalizeSIREN(in.SIREN),
		PeriodStart:   in.PeriodStart,
		PeriodEnd:     in.PeriodEnd,
		Filename:      result.Filename,
		InvoiceCount:  result.InvoiceCount,
		EntryCount:    result.EntryCount,
		TotalDebit:    result.TotalDebit,
		TotalCredit:   result.TotalCredit,
		ContentSHA256: result.SHA256,
		CreatedAt:     uc.now().UTC(),
	}

	// The caller may already be gone; the row is still worth keeping.
	histCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultHistoryTimeout)
	defer cancel()

	if err := uc.historyRepo.Create(histCtx, record); err != nil {
		if uc.metrics != nil {
			uc.metrics.HistoryWriteFailures.Inc()
		}
		log.Error().Err(err).Str("export_id", record.ID).Msg("failed to record export history")
	}
}

func (uc *ExportUseCase) recordError(err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.ExportErrors.WithLabelValues(ErrorKind(err)).Inc()
}

// ErrorKind classifies an export error for metrics labels.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSiren), errors.Is(err, domain.ErrInvalidPeriod):
		return metrics.ErrorKindValidation
	case errors.Is(err, domain.ErrDataFetch):
		return metrics.ErrorKindDataFetch
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidInvoice),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrUnbalancedInvoice):
		return metrics.ErrorKindProjection
	case errors.Is(err, ErrInconsistentLedger):
		return metrics.ErrorKindLedger
	default:
		return metrics.ErrorKindInternal
	}
}

// wrapFetchError tags store failures with ErrDataFetch. Invalid stored data
// keeps its own sentinel.
func wrapFetchError(err error) error {
	switch {
	case errors.Is(err, domain.ErrDataFetch),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidStatus):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}
}
