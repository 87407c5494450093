package fec_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/fec"
)

func newInvoice(number, ht, vat, ttc string, status domain.InvoiceStatus) domain.Invoice {
	return domain.Invoice{
		ID:        "id-" + number,
		Number:    number,
		CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Status:    status,
		Client:    &domain.Client{ID: "abcdef1234", Name: "Atelier Dupont"},
		TotalHT:   decimal.RequireFromString(ht),
		TotalVAT:  decimal.RequireFromString(vat),
		TotalTTC:  decimal.RequireFromString(ttc),
	}
}

func paid(inv domain.Invoice, at time.Time) domain.Invoice {
	inv.Status = domain.InvoiceStatusPaid
	inv.PaidAt = &at
	return inv
}

func TestProjector_NoVATUnpaidEmitsBalancedPair(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	for _, status := range []domain.InvoiceStatus{
		domain.InvoiceStatusDraft,
		domain.InvoiceStatusSent,
		domain.InvoiceStatusOverdue,
	} {
		t.Run(string(status), func(t *testing.T) {
			entries, err := p.Project([]domain.Invoice{newInvoice("INV-010", "250.00", "0", "250.00", status)})
			require.NoError(t, err)
			require.Len(t, entries, 2)

			debit, credit := domain.SumEntries(entries)
			assert.True(t, debit.Equal(credit), "debit %s != credit %s", debit, credit)
			assert.Equal(t, "250.00", debit.StringFixed(2))

			for _, e := range entries {
				assert.NotEqual(t, "445710", e.AccountNumber)
				assert.Empty(t, e.Lettering)
				assert.Nil(t, e.LetteringDate)
			}
		})
	}
}

func TestProjector_VATLineIncluded(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	entries, err := p.Project([]domain.Invoice{newInvoice("INV-002", "100.00", "20.00", "120.00", domain.InvoiceStatusSent)})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "411CABCDEF", entries[0].AccountNumber)
	assert.Equal(t, "120.00", entries[0].Debit.StringFixed(2))
	assert.True(t, entries[0].Credit.IsZero())
	assert.Equal(t, "CABCDEF", entries[0].AuxAccount)
	assert.Equal(t, "Atelier Dupont", entries[0].AuxLabel)

	assert.Equal(t, "706000", entries[1].AccountNumber)
	assert.Equal(t, "100.00", entries[1].Credit.StringFixed(2))
	assert.Empty(t, entries[1].AuxAccount)

	assert.Equal(t, "445710", entries[2].AccountNumber)
	assert.Equal(t, "20.00", entries[2].Credit.StringFixed(2))

	for _, e := range entries {
		assert.Equal(t, domain.JournalSales, e.JournalCode)
		assert.Equal(t, "Ventes", e.JournalLabel)
		assert.Equal(t, "INV-002", e.EntryNumber)
		assert.Equal(t, "INV-002", e.PieceRef)
		assert.Equal(t, "Facture INV-002 - Atelier Dupont", e.Label)
		assert.Equal(t, e.EntryDate, e.ValidationDate)
	}
}

func TestProjector_SettlementPair(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)
	paidAt := time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

	entries, err := p.Project([]domain.Invoice{paid(newInvoice("INV-001", "500.00", "100.00", "600.00", domain.InvoiceStatusSent), paidAt)})
	require.NoError(t, err)
	require.Len(t, entries, 5)

	receivable := entries[0]
	assert.Equal(t, domain.ReconciliationMark, receivable.Lettering)
	require.NotNil(t, receivable.LetteringDate)
	assert.Equal(t, "20240315", receivable.LetteringDate.Format("20060102"))

	bank, clientCredit := entries[3], entries[4]

	assert.Equal(t, "512000", bank.AccountNumber)
	assert.Equal(t, "600.00", bank.Debit.StringFixed(2))
	assert.Equal(t, "411CABCDEF", clientCredit.AccountNumber)
	assert.Equal(t, "600.00", clientCredit.Credit.StringFixed(2))
	assert.Equal(t, "CABCDEF", clientCredit.AuxAccount)

	for _, e := range []domain.AccountingEntry{bank, clientCredit} {
		assert.Equal(t, domain.JournalBank, e.JournalCode)
		assert.Equal(t, "REG-INV-001", e.EntryNumber)
		assert.Equal(t, "20240315", e.EntryDate.Format("20060102"))
		assert.Equal(t, "20240315", e.ValidationDate.Format("20060102"))
		assert.Equal(t, domain.ReconciliationMark, e.Lettering)
		require.NotNil(t, e.LetteringDate)
		assert.Equal(t, "20240315", e.LetteringDate.Format("20060102"))
		assert.Equal(t, "INV-001", e.PieceRef)
		assert.Equal(t, "20240301", e.PieceDate.Format("20060102"))
	}

	debit, credit := domain.SumEntries(entries)
	assert.Equal(t, "1200.00", debit.StringFixed(2))
	assert.True(t, debit.Equal(credit))
}

func TestProjector_PaidWithoutPaymentDate(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	entries, err := p.Project([]domain.Invoice{newInvoice("INV-003", "100.00", "20.00", "120.00", domain.InvoiceStatusPaid)})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, domain.ReconciliationMark, entries[0].Lettering)
	assert.Nil(t, entries[0].LetteringDate)
}

func TestProjector_UnknownClient(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	inv := newInvoice("INV-004", "10.00", "0", "10.00", domain.InvoiceStatusSent)
	inv.Client = nil

	entries, err := p.Project([]domain.Invoice{inv})
	require.NoError(t, err)

	assert.Equal(t, "411"+domain.UnknownClientCode, entries[0].AccountNumber)
	assert.Equal(t, domain.UnknownClientName, entries[0].AuxLabel)
	assert.Equal(t, "Facture INV-004 - "+domain.UnknownClientName, entries[0].Label)
}

func TestProjector_PreservesInvoiceOrder(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	invoices := []domain.Invoice{
		newInvoice("INV-B", "10.00", "2.00", "12.00", domain.InvoiceStatusSent),
		paid(newInvoice("INV-A", "10.00", "0", "10.00", domain.InvoiceStatusSent), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
		newInvoice("INV-C", "5.00", "1.00", "6.00", domain.InvoiceStatusDraft),
	}

	entries, err := p.Project(invoices)
	require.NoError(t, err)

	var numbers []string
	for _, e := range entries {
		numbers = append(numbers, e.EntryNumber)
	}

	assert.Equal(t, []string{
		"INV-B", "INV-B", "INV-B",
		"INV-A", "INV-A", "REG-INV-A", "REG-INV-A",
		"INV-C", "INV-C", "INV-C",
	}, numbers)
}

func TestProjector_RejectsInvalidInvoices(t *testing.T) {
	p := fec.NewProjector(fec.DefaultChart(), time.UTC)

	tests := []struct {
		name    string
		invoice domain.Invoice
		wantErr error
	}{
		{"negative total", newInvoice("INV-X", "-10.00", "0", "-10.00", domain.InvoiceStatusSent), domain.ErrInvalidAmount},
		{"unbalanced totals", newInvoice("INV-Y", "10.00", "2.00", "13.00", domain.InvoiceStatusSent), domain.ErrUnbalancedInvoice},
		{"missing number", newInvoice("", "10.00", "0", "10.00", domain.InvoiceStatusSent), domain.ErrInvalidInvoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := newInvoice("INV-OK", "1.00", "0", "1.00", domain.InvoiceStatusSent)

			entries, err := p.Project([]domain.Invoice{good, tt.invoice})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, entries, "no partial ledger expected")
		})
	}
}

func TestProjector_DatesUseInjectedLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	inv := newInvoice("INV-TZ", "10.00", "0", "10.00", domain.InvoiceStatusSent)
	// 23:30 UTC on Dec 31 is already Jan 1 in Paris.
	inv.CreatedAt = time.Date(2023, 12, 31, 23, 30, 0, 0, time.UTC)

	utcEntries, err := fec.NewProjector(fec.DefaultChart(), time.UTC).Project([]domain.Invoice{inv})
	require.NoError(t, err)
	parisEntries, err := fec.NewProjector(fec.DefaultChart(), paris).Project([]domain.Invoice{inv})
	require.NoError(t, err)

	assert.Equal(t, "20231231", utcEntries[0].EntryDate.Format("20060102"))
	assert.Equal(t, "20240101", parisEntries[0].EntryDate.Format("20060102"))
}

func TestProjector_CustomChart(t *testing.T) {
	chart := fec.DefaultChart()
	chart.Revenue = fec.Account{Number: "706100", Label: "Travaux"}

	entries, err := fec.NewProjector(chart, nil).Project([]domain.Invoice{newInvoice("INV-5", "10.00", "0", "10.00", domain.InvoiceStatusSent)})
	require.NoError(t, err)

	assert.Equal(t, "706100", entries[1].AccountNumber)
	assert.Equal(t, "Travaux", entries[1].AccountLabel)
}
