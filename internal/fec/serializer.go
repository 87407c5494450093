package fec

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/craftly/ops-fec/internal/domain"
)

const (
	fieldSeparator = "|"
	lineSeparator  = "\n"
	dateLayout     = "20060102"
	amountDecimals = 2
)

// Columns is the FEC header, in the mandated order.
var Columns = [...]string{
	"JournalCode",
	"JournalLib",
	"EcritureNum",
	"EcritureDate",
	"CompteNum",
	"CompteLib",
	"CompAuxNum",
	"CompAuxLib",
	"PieceRef",
	"PieceDate",
	"EcritureLib",
	"Debit",
	"Credit",
	"EcritureLet",
	"DateLet",
	"ValidDate",
	"Montantdevise",
	"Idevise",
}

// ColumnCount is the number of fields on every FEC line.
const ColumnCount = len(Columns)

// The format has no escaping, so separators and line breaks inside
// free text are replaced by a space.
var fieldSanitizer = strings.NewReplacer(fieldSeparator, " ", "\r\n", " ", "\r", " ", "\n", " ")

// Record returns the 18 fields of one entry.
func Record(e domain.AccountingEntry) [ColumnCount]string {
	return [ColumnCount]string{
		string(e.JournalCode),
		e.JournalLabel,
		e.EntryNumber,
		formatDate(e.EntryDate),
		e.AccountNumber,
		e.AccountLabel,
		e.AuxAccount,
		e.AuxLabel,
		e.PieceRef,
		formatDate(e.PieceDate),
		e.Label,
		e.Debit.StringFixed(amountDecimals),
		e.Credit.StringFixed(amountDecimals),
		e.Lettering,
		formatOptionalDate(e.LetteringDate),
		formatDate(e.ValidationDate),
		e.CurrencyAmount,
		e.CurrencyCode,
	}
}

// Serialize renders the header and one line per entry, joined by "\n",
// without a trailing newline.
func Serialize(entries []domain.AccountingEntry) string {
	var sb strings.Builder
	_, _ = WriteTo(&sb, entries)
	return sb.String()
}

// WriteTo streams the FEC content to w and returns the number of bytes written.
func WriteTo(w io.Writer, entries []domain.AccountingEntry) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	written, err := bw.WriteString(joinFields(Columns[:]))
	n += int64(written)
	if err != nil {
		return n, err
	}

	for _, e := range entries {
		record := Record(e)

		written, err = bw.WriteString(lineSeparator + joinFields(record[:]))
		n += int64(written)
		if err != nil {
			return n, err
		}
	}

	return n, bw.Flush()
}

// Filename returns the mandated file name: {SIREN}FEC{yyyyMMdd}.txt.
func Filename(siren string, periodEnd time.Time) string {
	return domain.NormalizeSIREN(siren) + "FEC" + periodEnd.Format(dateLayout) + ".txt"
}

func joinFields(fields []string) string {
	sanitized := make([]string, len(fields))
	for i, f := range fields {
		sanitized[i] = fieldSanitizer.Replace(f)
	}
	return strings.Join(sanitized, fieldSeparator)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
