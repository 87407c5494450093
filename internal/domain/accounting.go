package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalCode identifies the accounting journal an entry is booked in.
type JournalCode string

const (
	JournalSales         JournalCode = "VT"
	JournalBank          JournalCode = "BQ"
	JournalPurchases     JournalCode = "AC"
	JournalMiscellaneous JournalCode = "OD"
)

// Label returns the human-readable journal name.
func (j JournalCode) Label() string {
	switch j {
	case JournalSales:
		return "Ventes"
	case JournalBank:
		return "Banque"
	case JournalPurchases:
		return "Achats"
	case JournalMiscellaneous:
		return "Opérations diverses"
	default:
		return string(j)
	}
}

// ReconciliationMark is the lettering code for fully reconciled lines.
const ReconciliationMark = "A"

// AccountingEntry is one line of the double-entry ledger.
// Exactly one of Debit and Credit is non-zero.
type AccountingEntry struct {
	JournalCode    JournalCode
	JournalLabel   string
	EntryNumber    string
	EntryDate      time.Time
	AccountNumber  string
	AccountLabel   string
	AuxAccount     string
	AuxLabel       string
	PieceRef       string
	PieceDate      time.Time
	Label          string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	Lettering      string
	LetteringDate  *time.Time
	ValidationDate time.Time
	// Foreign currency fields stay empty: the ledger is single-currency.
	CurrencyAmount string
	CurrencyCode   string
}

// IsDebit reports whether the entry sits on the debit side.
func (e AccountingEntry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// SumEntries returns the total debit and credit of the given entries.
func SumEntries(entries []AccountingEntry) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}
