package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FECExportRequest describes one FEC export run.
// PeriodStart and PeriodEnd are calendar dates, both included.
type FECExportRequest struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	SIREN       string
}

// Validate checks the SIREN and the period ordering.
func (r FECExportRequest) Validate() error {
	if err := ValidateSIREN(r.SIREN); err != nil {
		return err
	}

	if r.PeriodStart.IsZero() || r.PeriodEnd.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPeriod)
	}

	if dateOnly(r.PeriodEnd).Before(dateOnly(r.PeriodStart)) {
		return fmt.Errorf("%w: end %s is before start %s",
			ErrInvalidPeriod, r.PeriodEnd.Format(time.DateOnly), r.PeriodStart.Format(time.DateOnly))
	}

	return nil
}

// Bounds returns the half-open instant range [from, to) covering every day of
// the period in loc: from is midnight of the start date, to is midnight of the
// day after the end date.
func (r FECExportRequest) Bounds(loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}

	sy, sm, sd := r.PeriodStart.Date()
	ey, em, ed := r.PeriodEnd.Date()

	from = time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
	to = time.Date(ey, em, ed+1, 0, 0, 0, 0, loc)

	return from, to
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExportRecord is the history row kept for each generated FEC file.
type ExportRecord struct {
	ID            string
	SIREN         string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Filename      string
	InvoiceCount  int
	EntryCount    int
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	ContentSHA256 string
	CreatedAt     time.Time
}
