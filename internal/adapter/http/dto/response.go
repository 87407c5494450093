package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/usecase"
)

// EntryResponse represents an accounting entry in API responses.
type EntryResponse struct {
	JournalCode    string          `json:"journal_code"`
	JournalLabel   string          `json:"journal_label"`
	EntryNumber    string          `json:"entry_number"`
	EntryDate      string          `json:"entry_date"`
	AccountNumber  string          `json:"account_number"`
	AccountLabel   string          `json:"account_label"`
	AuxAccount     string          `json:"aux_account,omitempty"`
	AuxLabel       string          `json:"aux_label,omitempty"`
	PieceRef       string          `json:"piece_ref"`
	PieceDate      string          `json:"piece_date"`
	Label          string          `json:"label"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Lettering      string          `json:"lettering,omitempty"`
	LetteringDate  string          `json:"lettering_date,omitempty"`
	ValidationDate string          `json:"validation_date"`
}

// EntryFromDomain converts a domain entry to a response. Dates use YYYY-MM-DD.
func EntryFromDomain(e domain.AccountingEntry) EntryResponse {
	resp := EntryResponse{
		JournalCode:    string(e.JournalCode),
		JournalLabel:   e.JournalLabel,
		EntryNumber:    e.EntryNumber,
		EntryDate:      formatDate(e.EntryDate),
		AccountNumber:  e.AccountNumber,
		AccountLabel:   e.AccountLabel,
		AuxAccount:     e.AuxAccount,
		AuxLabel:       e.AuxLabel,
		PieceRef:       e.PieceRef,
		PieceDate:      formatDate(e.PieceDate),
		Label:          e.Label,
		Debit:          e.Debit,
		Credit:         e.Credit,
		Lettering:      e.Lettering,
		ValidationDate: formatDate(e.ValidationDate),
	}
	if e.LetteringDate != nil {
		resp.LetteringDate = formatDate(*e.LetteringDate)
	}
	return resp
}

// PreviewResponse is the JSON form of an export preview.
type PreviewResponse struct {
	Filename     string          `json:"filename"`
	InvoiceCount int             `json:"invoice_count"`
	EntryCount   int             `json:"entry_count"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	Entries      []EntryResponse `json:"entries"`
}

// PreviewFromUseCase converts a preview result to a response.
func PreviewFromUseCase(p *usecase.PreviewResult) *PreviewResponse {
	entries := make([]EntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = EntryFromDomain(e)
	}

	return &PreviewResponse{
		Filename:     p.Filename,
		InvoiceCount: p.InvoiceCount,
		EntryCount:   len(p.Entries),
		TotalDebit:   p.TotalDebit,
		TotalCredit:  p.TotalCredit,
		Entries:      entries,
	}
}

// ExportRecordResponse represents an export history row.
type ExportRecordResponse struct {
	ID            string          `json:"id"`
	SIREN         string          `json:"siren"`
	PeriodStart   string          `json:"period_start"`
	PeriodEnd     string          `json:"period_end"`
	Filename      string          `json:"filename"`
	InvoiceCount  int             `json:"invoice_count"`
	EntryCount    int             `json:"entry_count"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	ContentSHA256 string          `json:"content_sha256"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExportRecordsFromDomain converts history records to responses.
func ExportRecordsFromDomain(records []*domain.ExportRecord) []*ExportRecordResponse {
	result := make([]*ExportRecordResponse, len(records))
	for i, r := range records {
		result[i] = &ExportRecordResponse{
			ID:            r.ID,
			SIREN:         r.SIREN,
			PeriodStart:   formatDate(r.PeriodStart),
			PeriodEnd:     formatDate(r.PeriodEnd),
			Filename:      r.Filename,
			InvoiceCount:  r.InvoiceCount,
			EntryCount:    r.EntryCount,
			TotalDebit:    r.TotalDebit,
			TotalCredit:   r.TotalCredit,
			ContentSHA256: r.ContentSHA256,
			CreatedAt:     r.CreatedAt,
		}
	}
	return result
}

// ListResponse wraps a paginated list.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
