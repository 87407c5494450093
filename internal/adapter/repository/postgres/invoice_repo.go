package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/infrastructure/metrics"
	"github.com/craftly/ops-fec/internal/infrastructure/postgres/generated"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	tx      *TxManager
	metrics *metrics.Metrics
}

// NewInvoiceRepository creates a new InvoiceRepository. m may be nil.
func NewInvoiceRepository(pool *pgxpool.Pool, m *metrics.Metrics) *InvoiceRepository {
	return newInvoiceRepositoryWithPool(pool, m)
}

func newInvoiceRepositoryWithPool(pool pgxPool, m *metrics.Metrics) *InvoiceRepository {
	return &InvoiceRepository{
		tx:      newTxManagerWithPool(pool),
		metrics: m,
	}
}

// ListByPeriod returns invoices created in [from, to) with their client and
// items, ordered by created_at then id. Invoices and items are read from the
// same snapshot.
func (r *InvoiceRepository) ListByPeriod(ctx context.Context, from, to time.Time) ([]domain.Invoice, error) {
	start := time.Now()

	var (
		rows  []generated.ListInvoicesByPeriodRow
		items []generated.InvoiceItem
	)

	err := r.tx.ReadSnapshot(ctx, func(q *generated.Queries) error {
		var err error

		rows, err = q.ListInvoicesByPeriod(ctx, generated.ListInvoicesByPeriodParams{
			FromTime: timeToPgTimestamptz(from),
			ToTime:   timeToPgTimestamptz(to),
		})
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}

		items, err = q.ListInvoiceItemsByInvoiceIDs(ctx, ids)
		return err
	})
	observeQuery(r.metrics, "list_by_period", "invoices", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}

	itemsByInvoice := make(map[string][]domain.LineItem, len(rows))
	for _, item := range items {
		itemsByInvoice[item.InvoiceID] = append(itemsByInvoice[item.InvoiceID], rowToLineItem(item))
	}

	invoices := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := rowToInvoice(row, itemsByInvoice[row.ID])
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

func rowToInvoice(row generated.ListInvoicesByPeriodRow, items []domain.LineItem) (domain.Invoice, error) {
	status, err := domain.ParseInvoiceStatus(row.Status)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", row.Number, err)
	}

	totals := make([]decimal.Decimal, 0, 3)
	for _, col := range []struct {
		name  string
		value pgtype.Numeric
	}{
		{"total_ht", row.TotalHt},
		{"total_vat", row.TotalVat},
		{"total_ttc", row.TotalTtc},
	} {
		amount, err := numericToAmount(col.value)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("invoice %s %s: %w", row.Number, col.name, err)
		}
		if err := domain.ValidateAmount(amount); err != nil {
			return domain.Invoice{}, fmt.Errorf("invoice %s %s: %w", row.Number, col.name, err)
		}
		totals = append(totals, amount)
	}

	inv := domain.Invoice{
		ID:        row.ID,
		Number:    row.Number,
		CreatedAt: row.CreatedAt.Time,
		DueDate:   pgDateToPtr(row.DueDate),
		PaidAt:    timestamptzToPtr(row.PaidAt),
		Status:    status,
		Items:     items,
		TotalHT:   totals[0],
		TotalVAT:  totals[1],
		TotalTTC:  totals[2],
	}

	if row.ClientID.Valid {
		inv.Client = &domain.Client{
			ID:   row.ClientID.String,
			Name: row.ClientName.String,
		}
	}

	return inv, nil
}

func rowToLineItem(row generated.InvoiceItem) domain.LineItem {
	return domain.LineItem{
		ID:          row.ID,
		Description: row.Description,
		Quantity:    numericToDecimal(row.Quantity),
		UnitPrice:   numericToDecimal(row.UnitPrice),
		VATRate:     numericToDecimal(row.VatRate),
		Total:       numericToDecimal(row.Total),
	}
}
