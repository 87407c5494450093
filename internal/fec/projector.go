package fec

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/craftly/ops-fec/internal/domain"
)

// SettlementPrefix prefixes the entry number of settlement pairs.
const SettlementPrefix = "REG-"

// DefaultTimezone is the zone FEC dates are expressed in.
const DefaultTimezone = "Europe/Paris"

// Projector turns invoices into ordered accounting entries.
// It holds no mutable state and is safe for concurrent use.
type Projector struct {
	chart ChartOfAccounts
	loc   *time.Location
}

// NewProjector creates a Projector booking into chart, with dates
// normalized to loc (UTC when nil).
func NewProjector(chart ChartOfAccounts, loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{chart: chart, loc: loc}
}

// Location returns the zone used for entry dates.
func (p *Projector) Location() *time.Location {
	return p.loc
}

// Project returns the entries for invoices, in input order. Callers supply
// invoices sorted by creation date. The first invalid invoice aborts the
// projection: no partial ledger is returned.
func (p *Projector) Project(invoices []domain.Invoice) ([]domain.AccountingEntry, error) {
	entries := make([]domain.AccountingEntry, 0, len(invoices)*5)

	for i := range invoices {
		lines, err := p.ProjectInvoice(invoices[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, lines...)
	}

	return entries, nil
}

// ProjectInvoice returns the sales lines of one invoice followed by its
// settlement pair when it has been paid.
func (p *Projector) ProjectInvoice(inv domain.Invoice) ([]domain.AccountingEntry, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	clientCode := inv.Client.AuxiliaryCode()
	clientName := inv.Client.DisplayName()
	receivable := p.chart.Receivable.Number + clientCode
	invoiceDate := p.day(inv.CreatedAt)

	var lettering string
	var letteringDate *time.Time
	if inv.Status.IsPaid() {
		lettering = domain.ReconciliationMark
		if inv.PaidAt != nil {
			d := p.day(*inv.PaidAt)
			letteringDate = &d
		}
	}

	sale := domain.AccountingEntry{
		JournalCode:    domain.JournalSales,
		JournalLabel:   domain.JournalSales.Label(),
		EntryNumber:    inv.Number,
		EntryDate:      invoiceDate,
		PieceRef:       inv.Number,
		PieceDate:      invoiceDate,
		Label:          fmt.Sprintf("Facture %s - %s", inv.Number, clientName),
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		ValidationDate: invoiceDate,
	}

	receivableDebit := sale
	receivableDebit.AccountNumber = receivable
	receivableDebit.AccountLabel = p.chart.Receivable.Label
	receivableDebit.AuxAccount = clientCode
	receivableDebit.AuxLabel = clientName
	receivableDebit.Debit = inv.TotalTTC
	receivableDebit.Lettering = lettering
	receivableDebit.LetteringDate = letteringDate

	revenueCredit := sale
	revenueCredit.AccountNumber = p.chart.Revenue.Number
	revenueCredit.AccountLabel = p.chart.Revenue.Label
	revenueCredit.Credit = inv.TotalHT

	lines := []domain.AccountingEntry{receivableDebit, revenueCredit}

	if inv.TotalVAT.IsPositive() {
		vatCredit := sale
		vatCredit.AccountNumber = p.chart.VAT.Number
		vatCredit.AccountLabel = p.chart.VAT.Label
		vatCredit.Credit = inv.TotalVAT
		lines = append(lines, vatCredit)
	}

	if !inv.IsSettled() {
		return lines, nil
	}

	paidDate := p.day(*inv.PaidAt)
	settlement := domain.AccountingEntry{
		JournalCode:    domain.JournalBank,
		JournalLabel:   domain.JournalBank.Label(),
		EntryNumber:    SettlementPrefix + inv.Number,
		EntryDate:      paidDate,
		PieceRef:       inv.Number,
		PieceDate:      invoiceDate,
		Label:          fmt.Sprintf("Règlement facture %s - %s", inv.Number, clientName),
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		Lettering:      domain.ReconciliationMark,
		LetteringDate:  &paidDate,
		ValidationDate: paidDate,
	}

	bankDebit := settlement
	bankDebit.AccountNumber = p.chart.Bank.Number
	bankDebit.AccountLabel = p.chart.Bank.Label
	bankDebit.Debit = inv.TotalTTC

	receivableCredit := settlement
	receivableCredit.AccountNumber = receivable
	receivableCredit.AccountLabel = p.chart.Receivable.Label
	receivableCredit.AuxAccount = clientCode
	receivableCredit.AuxLabel = clientName
	receivableCredit.Credit = inv.TotalTTC

	return append(lines, bankDebit, receivableCredit), nil
}

// day truncates t to the calendar day it falls on in the projector's zone.
func (p *Projector) day(t time.Time) time.Time {
	y, m, d := t.In(p.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc)
}
